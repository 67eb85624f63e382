// Package registry provides the central registry of algorithm providers and
// a factory for constructing providers from configuration.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/logging"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/pubsub"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")

	// ErrInvalidProvider is returned when a provider is nil or has an empty ID
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrAlgorithmNotFound is returned when a qualified algorithm id does
	// not resolve to a registered algorithm
	ErrAlgorithmNotFound = errors.New("algorithm not found")

	// ErrInvalidAlgorithmID is returned when an algorithm id is not of the
	// form "provider:algorithm"
	ErrInvalidAlgorithmID = errors.New("invalid algorithm id")
)

// brokerAware is implemented by providers that accept a shared event broker.
type brokerAware interface {
	SetBroker(*pubsub.Broker[pubsub.ProviderEvent])
}

// metricsAware is implemented by providers that accept a metrics collector.
type metricsAware interface {
	SetMetricsCollector(types.MetricsCollector)
}

// preferencesAware is implemented by providers that accept user output
// preferences.
type preferencesAware interface {
	SetOutputPreferences(types.OutputPreferences)
}

// Registry manages the set of available algorithm providers, keyed by
// provider ID. It owns the shared event broker on which providers publish
// algorithms-loaded notifications.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]types.Provider

	// loading holds IDs reserved by in-flight AddProvider calls, so a
	// concurrent add of the same ID is rejected while the first is still
	// loading.
	loading map[string]struct{}

	broker  *pubsub.Broker[pubsub.ProviderEvent]
	metrics types.MetricsCollector
	prefs   types.OutputPreferences
	log     zerolog.Logger
}

// NewRegistry creates a new, empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]types.Provider),
		loading:   make(map[string]struct{}),
		broker:    pubsub.NewBroker[pubsub.ProviderEvent](),
		log:       logging.GetLogger("registry"),
	}
}

// SetMetricsCollector sets the metrics collector for the registry. Providers
// added afterwards that support metrics collection have it injected.
func (r *Registry) SetMetricsCollector(collector types.MetricsCollector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = collector
}

// SetOutputPreferences sets the user output preferences propagated to
// providers added afterwards.
func (r *Registry) SetOutputPreferences(prefs types.OutputPreferences) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = prefs
}

// AddProvider registers a provider and loads it. The provider is not
// registered when its ID is empty, a provider with the same ID already
// exists, or its initial load fails.
func (r *Registry) AddProvider(p types.Provider) error {
	if p == nil {
		return ErrInvalidProvider
	}
	id := p.ID()
	if id == "" {
		return fmt.Errorf("%w: empty provider id", ErrInvalidProvider)
	}

	// Reserve the ID before loading, so a concurrent AddProvider with the
	// same ID fails instead of overwriting this provider after its load.
	r.mu.Lock()
	_, registered := r.providers[id]
	_, inFlight := r.loading[id]
	if registered || inFlight {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, id)
	}
	r.loading[id] = struct{}{}
	broker := r.broker
	collector := r.metrics
	prefs := r.prefs
	r.mu.Unlock()

	// Inject shared infrastructure before the initial load so the first
	// algorithms-loaded event is observable.
	if ba, ok := p.(brokerAware); ok {
		ba.SetBroker(broker)
	}
	if ma, ok := p.(metricsAware); ok && collector != nil {
		ma.SetMetricsCollector(collector)
	}
	if pa, ok := p.(preferencesAware); ok {
		pa.SetOutputPreferences(prefs)
	}

	if err := p.Load(); err != nil {
		r.mu.Lock()
		delete(r.loading, id)
		r.mu.Unlock()
		r.log.Warn().Str("provider", id).Err(err).Msg("provider failed to load")
		return fmt.Errorf("loading provider %s: %w", id, err)
	}

	r.mu.Lock()
	r.providers[id] = p
	delete(r.loading, id)
	r.mu.Unlock()

	r.log.Info().Str("provider", id).Int("algorithms", len(p.Algorithms())).Msg("provider registered")
	broker.Publish(pubsub.ProviderAddedEvent, pubsub.ProviderEvent{
		ProviderID:     id,
		AlgorithmCount: len(p.Algorithms()),
	})
	return nil
}

// RemoveProvider unloads and removes a provider from the registry.
func (r *Registry) RemoveProvider(id string) error {
	r.mu.Lock()
	p, exists := r.providers[id]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	delete(r.providers, id)
	broker := r.broker
	r.mu.Unlock()

	p.Unload()
	r.log.Info().Str("provider", id).Msg("provider removed")
	broker.Publish(pubsub.ProviderRemovedEvent, pubsub.ProviderEvent{ProviderID: id})
	return nil
}

// ProviderByID returns the provider registered under id.
func (r *Registry) ProviderByID(id string) (types.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	return p, nil
}

// Providers returns all registered providers, sorted by ID.
func (r *Registry) Providers() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]types.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].ID() < providers[j].ID() })
	return providers
}

// Active returns the registered providers that are currently active.
func (r *Registry) Active() []types.Provider {
	var active []types.Provider
	for _, p := range r.Providers() {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// AlgorithmByID resolves a qualified algorithm id of the form
// "provider:algorithm" across all registered providers.
func (r *Registry) AlgorithmByID(id string) (types.Algorithm, error) {
	providerID, name, ok := strings.Cut(id, ":")
	if !ok || providerID == "" || name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgorithmID, id)
	}

	p, err := r.ProviderByID(providerID)
	if err != nil {
		return nil, err
	}
	alg, found := p.Algorithm(name)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrAlgorithmNotFound, id)
	}
	return alg, nil
}

// Subscribe returns a channel of provider lifecycle events. The subscription
// ends when ctx is cancelled or the registry is closed.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[pubsub.ProviderEvent] {
	return r.broker.Subscribe(ctx)
}

// Close unloads all providers and shuts down the event broker.
func (r *Registry) Close() {
	r.mu.Lock()
	providers := r.providers
	r.providers = make(map[string]types.Provider)
	r.mu.Unlock()

	for _, p := range providers {
		p.Unload()
	}
	r.broker.Close()
}
