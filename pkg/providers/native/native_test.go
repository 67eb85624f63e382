package native

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Load(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())

	algs := p.Algorithms()
	require.Len(t, algs, 5)

	names := make([]string, len(algs))
	for i, alg := range algs {
		names[i] = alg.Name()
	}
	assert.Equal(t, []string{"buffer", "centroids", "clip", "merge", "smoothgeometry"}, names)
}

func TestProvider_Identity(t *testing.T) {
	p := New()

	assert.Equal(t, "native", p.ID())
	assert.Equal(t, "Native", p.Name())
	assert.True(t, p.CanBeActivated())
	assert.True(t, p.SupportsNonFileBasedOutput())
	assert.Equal(t, "gpkg", p.DefaultVectorFileExtension(true))
	assert.Equal(t, "dbf", p.DefaultVectorFileExtension(false))
	assert.Equal(t, "tif", p.DefaultRasterFileExtension())
}

func TestBuffer(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("buffer")
	require.True(t, ok)

	out, err := alg.Run(context.Background(), map[string]any{
		"input":    []float64{0, 0, 10, 10},
		"distance": 2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, [4]float64{-2.5, -2.5, 12.5, 12.5}, out["output"])

	_, err = alg.Run(context.Background(), map[string]any{
		"input":    []float64{0, 0, 10, 10},
		"distance": -1.0,
	})
	assert.Error(t, err)

	_, err = alg.Run(context.Background(), map[string]any{"distance": 1.0})
	assert.Error(t, err, "missing input extent")
}

func TestClip(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("clip")
	require.True(t, ok)

	out, err := alg.Run(context.Background(), map[string]any{
		"input":   []float64{0, 0, 10, 10},
		"overlay": []float64{5, 5, 15, 15},
	})
	require.NoError(t, err)
	assert.Equal(t, [4]float64{5, 5, 10, 10}, out["output"])
	assert.Equal(t, false, out["empty"])

	out, err = alg.Run(context.Background(), map[string]any{
		"input":   []float64{0, 0, 1, 1},
		"overlay": []float64{5, 5, 6, 6},
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["empty"], "disjoint extents clip to empty")
}

func TestMerge(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("merge")
	require.True(t, ok)

	out, err := alg.Run(context.Background(), map[string]any{
		"inputs": []any{
			[]float64{0, 0, 5, 5},
			[]float64{3, -2, 10, 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0, -2, 10, 5}, out["output"])

	_, err = alg.Run(context.Background(), map[string]any{})
	assert.Error(t, err, "merge requires inputs")
}

func TestCentroids(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("centroids")
	require.True(t, ok)

	out, err := alg.Run(context.Background(), map[string]any{
		"input": []float64{0, 0, 10, 20},
	})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{5, 10}, out["output"])
}

func TestSmoothGeometry(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("smoothgeometry")
	require.True(t, ok)

	line := [][2]float64{{0, 0}, {10, 0}, {10, 10}}

	out, err := alg.Run(context.Background(), map[string]any{"input": line})
	require.NoError(t, err)

	smoothed, ok := out["output"].([][2]float64)
	require.True(t, ok)
	require.Len(t, smoothed, 4, "one interior vertex is replaced by two offset points")
	assert.Equal(t, [2]float64{0, 0}, smoothed[0], "endpoints are preserved")
	assert.Equal(t, [2]float64{7.5, 0}, smoothed[1])
	assert.Equal(t, [2]float64{10, 2.5}, smoothed[2])
	assert.Equal(t, [2]float64{10, 10}, smoothed[3])
}

func TestSmoothGeometry_MaxAnglePreservesSharpCorners(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("smoothgeometry")
	require.True(t, ok)

	// The corner at (10,0) turns 90 degrees from straight.
	line := [][2]float64{{0, 0}, {10, 0}, {10, 10}}

	out, err := alg.Run(context.Background(), map[string]any{
		"input":     line,
		"max_angle": 45.0,
	})
	require.NoError(t, err)

	smoothed := out["output"].([][2]float64)
	assert.Equal(t, line, smoothed, "corners sharper than max_angle are kept")
}

func TestSmoothGeometry_ParameterValidation(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("smoothgeometry")
	require.True(t, ok)

	line := [][2]float64{{0, 0}, {10, 0}, {10, 10}}

	testCases := []struct {
		name   string
		params map[string]any
	}{
		{"missing input", map[string]any{}},
		{"iterations too high", map[string]any{"input": line, "iterations": 11}},
		{"iterations too low", map[string]any{"input": line, "iterations": 0}},
		{"offset out of range", map[string]any{"input": line, "offset": 0.75}},
		{"max_angle out of range", map[string]any{"input": line, "max_angle": 270.0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := alg.Run(context.Background(), tc.params)
			assert.Error(t, err)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	p := New()
	require.NoError(t, p.Load())
	alg, ok := p.Algorithm("buffer")
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := alg.Run(ctx, map[string]any{"input": []float64{0, 0, 1, 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
