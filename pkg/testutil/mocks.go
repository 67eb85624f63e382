// Package testutil provides shared testing utilities and mocks for use
// across the geoprocessing kit test suite.
package testutil

import (
	"context"
	"sync"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/provider"
	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// MockAlgorithm is a configurable Algorithm implementation.
type MockAlgorithm struct {
	AlgName        string
	AlgDisplayName string
	AlgGroup       string
	ValidateErr    error
	RunFunc        func(ctx context.Context, params map[string]any) (map[string]any, error)

	mu       sync.Mutex
	runCalls int
}

// NewMockAlgorithm creates a valid mock algorithm with the given name.
func NewMockAlgorithm(name string) *MockAlgorithm {
	return &MockAlgorithm{AlgName: name, AlgDisplayName: name}
}

func (m *MockAlgorithm) Name() string        { return m.AlgName }
func (m *MockAlgorithm) DisplayName() string { return m.AlgDisplayName }
func (m *MockAlgorithm) Group() string       { return m.AlgGroup }
func (m *MockAlgorithm) Validate() error     { return m.ValidateErr }

func (m *MockAlgorithm) Run(ctx context.Context, params map[string]any) (map[string]any, error) {
	m.mu.Lock()
	m.runCalls++
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, params)
	}
	return map[string]any{}, nil
}

// RunCalls returns how many times Run was invoked.
func (m *MockAlgorithm) RunCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCalls
}

var _ types.Algorithm = (*MockAlgorithm)(nil)

// MockProvider is a provider whose loader behavior is configurable. Tests
// swap Algorithms or LoadErr between refreshes to simulate external state
// changes and load failures.
type MockProvider struct {
	*provider.Base

	mu        sync.Mutex
	algs      []types.Algorithm
	loadErr   error
	loadCalls int
}

// NewMockProvider creates a mock provider that registers the given
// algorithms on every refresh.
func NewMockProvider(id string, algs ...types.Algorithm) *MockProvider {
	p := &MockProvider{algs: algs}
	p.Base = provider.NewBase(provider.Config{
		ID:               id,
		Name:             id,
		VectorExtensions: []string{"gpkg", "shp"},
		RasterExtensions: []string{"tif"},
	})
	p.Base.SetLoader(p)
	return p
}

// SetAlgorithms replaces the set registered on the next refresh.
func (p *MockProvider) SetAlgorithms(algs ...types.Algorithm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.algs = algs
}

// SetLoadError makes subsequent refreshes fail with err.
func (p *MockProvider) SetLoadError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadErr = err
}

// LoadCalls returns how many times the loader ran.
func (p *MockProvider) LoadCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadCalls
}

// LoadAlgorithms implements provider.AlgorithmLoader.
func (p *MockProvider) LoadAlgorithms(add provider.AddAlgorithmFunc) error {
	p.mu.Lock()
	p.loadCalls++
	algs := p.algs
	err := p.loadErr
	p.mu.Unlock()

	if err != nil {
		return err
	}
	for _, alg := range algs {
		add(alg)
	}
	return nil
}

var _ types.Provider = (*MockProvider)(nil)
