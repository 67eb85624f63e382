// Package native implements the built-in algorithm provider. Its algorithms
// are compiled into the kit and are always available.
package native

import (
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/provider"
)

// Provider is the built-in algorithm provider.
type Provider struct {
	*provider.Base
}

// New creates the native provider.
func New() *Provider {
	p := &Provider{}
	p.Base = provider.NewBase(provider.Config{
		ID:               "native",
		Name:             "Native",
		LongName:         "Built-in geoprocessing algorithms",
		Description:      "Algorithms compiled into the geoprocessing kit",
		VectorExtensions: []string{"gpkg", "shp", "dbf"},
		RasterExtensions: []string{"tif", "png"},
		NonFileOutputs:   true,
	})
	p.Base.SetLoader(p)
	return p
}

// LoadAlgorithms registers every built-in algorithm.
func (p *Provider) LoadAlgorithms(add provider.AddAlgorithmFunc) error {
	for _, alg := range builtins() {
		add(alg)
	}
	return nil
}
