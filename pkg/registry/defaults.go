package registry

import (
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/providers/native"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/providers/remote"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/providers/script"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// RegisterDefaultProviders registers all built-in provider types with the
// factory.
func RegisterDefaultProviders(factory *Factory) {
	factory.Register(types.ProviderTypeNative, func(config types.ProviderConfig) (types.Provider, error) {
		return native.New(), nil
	})

	factory.Register(types.ProviderTypeScript, func(config types.ProviderConfig) (types.Provider, error) {
		return script.New(config)
	})

	factory.Register(types.ProviderTypeRemote, func(config types.ProviderConfig) (types.Provider, error) {
		return remote.New(config)
	})
}
