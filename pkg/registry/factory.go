package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// Builder constructs a provider from its configuration.
type Builder func(types.ProviderConfig) (types.Provider, error)

// Factory is the default provider factory implementation. It maps provider
// types to builder functions.
type Factory struct {
	mu       sync.RWMutex
	builders map[types.ProviderType]Builder
}

// NewFactory creates a new, empty provider factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[types.ProviderType]Builder),
	}
}

// Register registers a builder for a provider type, replacing any existing
// builder for that type.
func (f *Factory) Register(providerType types.ProviderType, builder func(types.ProviderConfig) (types.Provider, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[providerType] = builder
}

// Create builds a provider instance from config.
func (f *Factory) Create(config types.ProviderConfig) (types.Provider, error) {
	f.mu.RLock()
	builder, exists := f.builders[config.Type]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider type %s not registered", config.Type)
	}
	return builder(config)
}

// SupportedTypes returns all registered provider types, sorted.
func (f *Factory) SupportedTypes() []types.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]types.ProviderType, 0, len(f.builders))
	for t := range f.builders {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ types.ProviderFactory = (*Factory)(nil)
