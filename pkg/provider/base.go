// Package provider contains the embeddable Base implementation shared by all
// algorithm providers. Base owns the per-provider algorithm registry and
// implements the default provider behavior: identity, activation state,
// output-format resolution and the load/refresh/unload lifecycle. Concrete
// providers embed *Base and supply an AlgorithmLoader that populates the
// registry on every refresh.
package provider

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/logging"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/pubsub"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// AddAlgorithmFunc registers an algorithm with the provider during a refresh.
// It reports false, leaving the existing registry entry unchanged, when the
// algorithm is nil, has an empty name, fails its own validity check, or a
// different algorithm is already registered under the same name.
type AddAlgorithmFunc func(types.Algorithm) bool

// AlgorithmLoader populates a provider's algorithm registry. Implementations
// call add once for each discovered algorithm. The loader is invoked from
// RefreshAlgorithms only; algorithms must not be registered from anywhere
// else.
type AlgorithmLoader interface {
	LoadAlgorithms(add AddAlgorithmFunc) error
}

// LoaderFunc adapts a plain function to the AlgorithmLoader interface.
type LoaderFunc func(add AddAlgorithmFunc) error

// LoadAlgorithms implements AlgorithmLoader.
func (f LoaderFunc) LoadAlgorithms(add AddAlgorithmFunc) error { return f(add) }

// nonSpatialExtensions are vector formats that can store attribute-only
// tables, with no geometry support required.
var nonSpatialExtensions = map[string]struct{}{
	"dbf":  {},
	"csv":  {},
	"xlsx": {},
	"ods":  {},
}

// Config describes the static identity and capabilities of a provider built
// on Base. Concrete providers fill it in their constructors.
type Config struct {
	ID          string
	Name        string
	LongName    string
	Description string

	IconPath    string
	SVGIconPath string

	// RasterExtensions and VectorExtensions list the output formats the
	// provider's algorithms can produce, in order of preference.
	RasterExtensions []string
	VectorExtensions []string

	// NonFileOutputs indicates support for non-file based outputs such as
	// memory layers or direct database outputs.
	NonFileOutputs bool
}

// Base provides the common registry functionality for all providers.
// It must not be copied after first use.
type Base struct {
	mu         sync.RWMutex
	cfg        Config
	active     bool
	loader     AlgorithmLoader
	algorithms map[string]types.Algorithm
	prefs      types.OutputPreferences
	broker     *pubsub.Broker[pubsub.ProviderEvent]
	metrics    types.MetricsCollector
	log        zerolog.Logger
}

// NewBase creates the shared provider core. The embedding provider installs
// its loader afterwards with SetLoader.
func NewBase(cfg Config) *Base {
	return &Base{
		cfg:        cfg,
		active:     true,
		algorithms: make(map[string]types.Algorithm),
		log:        logging.GetLogger("provider." + cfg.ID),
	}
}

// SetLoader installs the hook invoked by RefreshAlgorithms to populate the
// registry.
func (b *Base) SetLoader(loader AlgorithmLoader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loader = loader
}

// SetBroker installs the event broker used to publish algorithms-loaded
// notifications. Registries inject their shared broker here when the
// provider is added.
func (b *Base) SetBroker(broker *pubsub.Broker[pubsub.ProviderEvent]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broker = broker
}

// SetMetricsCollector installs an optional metrics collector.
func (b *Base) SetMetricsCollector(collector types.MetricsCollector) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics = collector
}

// SetOutputPreferences installs the user's preferred default output formats,
// consulted by DefaultVectorFileExtension and DefaultRasterFileExtension.
func (b *Base) SetOutputPreferences(prefs types.OutputPreferences) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prefs = prefs
}

// SetActive toggles whether the provider is able to run algorithms.
func (b *Base) SetActive(active bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = active
}

// ID returns the unique provider id.
func (b *Base) ID() string { return b.cfg.ID }

// Name returns the short display name.
func (b *Base) Name() string { return b.cfg.Name }

// LongName returns the long display name, falling back to Name.
func (b *Base) LongName() string {
	if b.cfg.LongName != "" {
		return b.cfg.LongName
	}
	return b.cfg.Name
}

// Description returns the provider description.
func (b *Base) Description() string { return b.cfg.Description }

// IconPath returns the provider icon path, or "".
func (b *Base) IconPath() string { return b.cfg.IconPath }

// SVGIconPath returns the provider SVG icon path, or "".
func (b *Base) SVGIconPath() string { return b.cfg.SVGIconPath }

// CanBeActivated reports whether the provider can be activated. The default
// is true; providers with external dependencies shadow this method.
func (b *Base) CanBeActivated() bool { return true }

// IsActive reports whether the provider is active and able to run
// algorithms.
func (b *Base) IsActive() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// SupportedOutputRasterLayerExtensions returns the supported raster output
// extensions in order of preference.
func (b *Base) SupportedOutputRasterLayerExtensions() []string {
	return append([]string(nil), b.cfg.RasterExtensions...)
}

// SupportedOutputVectorLayerExtensions returns the supported vector output
// extensions in order of preference.
func (b *Base) SupportedOutputVectorLayerExtensions() []string {
	return append([]string(nil), b.cfg.VectorExtensions...)
}

// DefaultVectorFileExtension returns the default vector output extension.
// The user's preferred extension is used when the provider supports it,
// otherwise the first supported extension. When hasGeometry is false the
// resolution is restricted to formats that can store non-spatial tables,
// falling back to the full list if the provider supports none of them.
// Returns "" when the provider reports no supported vector extensions.
func (b *Base) DefaultVectorFileExtension(hasGeometry bool) string {
	b.mu.RLock()
	preferred := b.prefs.VectorExtension
	b.mu.RUnlock()

	candidates := b.cfg.VectorExtensions
	if !hasGeometry {
		var nonSpatial []string
		for _, ext := range candidates {
			if _, ok := nonSpatialExtensions[ext]; ok {
				nonSpatial = append(nonSpatial, ext)
			}
		}
		if len(nonSpatial) > 0 {
			candidates = nonSpatial
		}
	}

	return resolveExtension(preferred, candidates)
}

// DefaultRasterFileExtension returns the default raster output extension,
// resolved the same way as DefaultVectorFileExtension.
func (b *Base) DefaultRasterFileExtension() string {
	b.mu.RLock()
	preferred := b.prefs.RasterExtension
	b.mu.RUnlock()

	return resolveExtension(preferred, b.cfg.RasterExtensions)
}

// resolveExtension picks preferred if it appears in supported, otherwise the
// first supported entry, otherwise "".
func resolveExtension(preferred string, supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	if preferred != "" {
		for _, ext := range supported {
			if ext == preferred {
				return preferred
			}
		}
	}
	return supported[0]
}

// SupportsNonFileBasedOutput reports whether the provider supports non-file
// based outputs.
func (b *Base) SupportsNonFileBasedOutput() bool { return b.cfg.NonFileOutputs }

// Load performs the initial population of the algorithm registry. Providers
// with additional setup shadow Load, perform their setup, and still trigger
// algorithm loading through RefreshAlgorithms rather than registering
// algorithms directly.
func (b *Base) Load() error {
	return b.RefreshAlgorithms()
}

// Unload tears down external resources. The default is a no-op.
func (b *Base) Unload() {}

// RefreshAlgorithms re-populates the provider's algorithm registry by
// invoking the configured loader, then publishes an algorithms-loaded event.
// The new algorithm set replaces the previous one atomically with respect to
// readers of Algorithms and Algorithm.
func (b *Base) RefreshAlgorithms() error {
	b.mu.RLock()
	loader := b.loader
	id := b.cfg.ID
	b.mu.RUnlock()

	if loader == nil {
		return types.NewProviderError(id, types.ErrCodeLoadFailed, "no algorithm loader configured").
			WithOperation("refresh_algorithms")
	}

	staged := make(map[string]types.Algorithm)
	add := func(alg types.Algorithm) bool {
		if alg == nil || alg.Name() == "" {
			return false
		}
		if err := alg.Validate(); err != nil {
			b.log.Debug().Str("algorithm", alg.Name()).Err(err).Msg("rejecting invalid algorithm")
			return false
		}
		if _, exists := staged[alg.Name()]; exists {
			b.log.Debug().Str("algorithm", alg.Name()).Msg("rejecting duplicate algorithm")
			return false
		}
		staged[alg.Name()] = alg
		return true
	}

	if err := loader.LoadAlgorithms(add); err != nil {
		return types.NewLoadError(id, err).WithOperation("refresh_algorithms")
	}

	b.mu.Lock()
	b.algorithms = staged
	broker := b.broker
	collector := b.metrics
	b.mu.Unlock()

	b.log.Debug().Int("algorithms", len(staged)).Msg("algorithms refreshed")

	if collector != nil {
		collector.RecordRefresh(id, len(staged))
	}
	if broker != nil {
		broker.Publish(pubsub.AlgorithmsLoadedEvent, pubsub.ProviderEvent{
			ProviderID:     id,
			AlgorithmCount: len(staged),
		})
	}
	return nil
}

// Algorithms returns all algorithms supplied by this provider, sorted by
// name.
func (b *Base) Algorithms() []types.Algorithm {
	b.mu.RLock()
	defer b.mu.RUnlock()

	algs := make([]types.Algorithm, 0, len(b.algorithms))
	for _, alg := range b.algorithms {
		algs = append(algs, alg)
	}
	sort.Slice(algs, func(i, j int) bool { return algs[i].Name() < algs[j].Name() })
	return algs
}

// Algorithm returns the algorithm matching name, or false if no matching
// algorithm is registered with this provider.
func (b *Base) Algorithm(name string) (types.Algorithm, bool) {
	b.mu.RLock()
	alg, ok := b.algorithms[name]
	collector := b.metrics
	id := b.cfg.ID
	b.mu.RUnlock()

	if collector != nil {
		collector.RecordLookup(id, ok)
	}
	return alg, ok
}

var _ types.Provider = (*Base)(nil)
