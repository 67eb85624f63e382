package types

// ProviderType identifies a kind of provider implementation that the
// factory knows how to construct.
type ProviderType string

const (
	ProviderTypeNative ProviderType = "native"
	ProviderTypeScript ProviderType = "script"
	ProviderTypeRemote ProviderType = "remote"
)

// OutputPreferences holds the user's preferred default output formats.
// A provider resolves its default extensions against these preferences:
// a preferred extension is used only when the provider actually supports it.
type OutputPreferences struct {
	// VectorExtension is the preferred vector output file extension,
	// eg "gpkg". Empty means no preference.
	VectorExtension string `yaml:"default_vector_extension" json:"default_vector_extension,omitempty"`

	// RasterExtension is the preferred raster output file extension,
	// eg "tif". Empty means no preference.
	RasterExtension string `yaml:"default_raster_extension" json:"default_raster_extension,omitempty"`
}

// ============================================================================
// Interface Segregation - Focused Provider Interfaces
// ============================================================================

// CoreProvider defines the essential identity methods that all providers
// must implement.
type CoreProvider interface {
	// ID returns the unique provider id, used for identifying the
	// provider. This string should be a unique, short, character only
	// string, eg "native" or "script". It is not localised.
	ID() string

	// Name returns the provider name, used to describe the provider
	// within UIs. This string should be short, eg "Script tools".
	Name() string

	// LongName returns a longer version of the provider name, which can
	// include extra details such as version numbers. Defaults to the same
	// string as Name.
	LongName() string

	// Description returns an optional free-form description of the
	// provider.
	Description() string
}

// VisualProvider defines optional visual metadata for a provider.
type VisualProvider interface {
	// IconPath returns a path to an icon for the provider, or "" if the
	// generic icon should be used.
	IconPath() string

	// SVGIconPath returns a path to an SVG version of the provider's
	// icon, or "".
	SVGIconPath() string
}

// ActivatableProvider describes whether a provider is able to run.
type ActivatableProvider interface {
	// CanBeActivated returns false when the provider cannot be activated,
	// eg due to a missing external dependency.
	CanBeActivated() bool

	// IsActive returns true if the provider is active and able to run
	// algorithms.
	IsActive() bool
}

// OutputFormatProvider describes the output file formats a provider's
// algorithms can produce.
type OutputFormatProvider interface {
	// SupportedOutputRasterLayerExtensions returns the raster format file
	// extensions supported by this provider, in order of preference.
	SupportedOutputRasterLayerExtensions() []string

	// SupportedOutputVectorLayerExtensions returns the vector format file
	// extensions supported by this provider, in order of preference.
	SupportedOutputVectorLayerExtensions() []string

	// DefaultVectorFileExtension returns the default file extension to use
	// for vector outputs created by the provider. If hasGeometry is false
	// then non-spatial formats can be used.
	DefaultVectorFileExtension(hasGeometry bool) string

	// DefaultRasterFileExtension returns the default file extension to use
	// for raster outputs created by the provider.
	DefaultRasterFileExtension() string

	// SupportsNonFileBasedOutput returns true if the provider supports
	// non-file based outputs, such as memory layers or direct database
	// outputs.
	SupportsNonFileBasedOutput() bool
}

// LifecycleProvider defines the load/refresh/unload lifecycle of a provider.
type LifecycleProvider interface {
	// Load loads the provider. It is called once when the provider is
	// added to a registry; general setup actions belong here. Algorithms
	// must not be registered directly from Load - implementations trigger
	// an initial population by calling RefreshAlgorithms.
	Load() error

	// Unload tears down any external resources held by the provider.
	Unload()

	// RefreshAlgorithms clears the provider's algorithm registry and
	// re-populates it with all associated algorithms, publishing an
	// algorithms-loaded event afterwards.
	RefreshAlgorithms() error
}

// AlgorithmSource exposes the algorithms currently registered with a
// provider.
type AlgorithmSource interface {
	// Algorithms returns all algorithms supplied by this provider, sorted
	// by name.
	Algorithms() []Algorithm

	// Algorithm returns the algorithm matching name, or false if no
	// matching algorithm is registered. A miss is not an error.
	Algorithm(name string) (Algorithm, bool)
}

// ============================================================================
// Composite Provider Interface
// ============================================================================

// Provider represents a complete algorithm provider with all capabilities.
// It composes the smaller interfaces above; clients that only need a subset
// of the capabilities should depend on the focused interfaces instead.
type Provider interface {
	CoreProvider
	VisualProvider
	ActivatableProvider
	OutputFormatProvider
	LifecycleProvider
	AlgorithmSource
}

// ProviderFactory constructs providers from configuration.
type ProviderFactory interface {
	Register(providerType ProviderType, builder func(ProviderConfig) (Provider, error))
	Create(config ProviderConfig) (Provider, error)
	SupportedTypes() []ProviderType
}
