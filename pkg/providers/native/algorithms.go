package native

import (
	"context"
	"fmt"
	"math"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// staticAlgorithm is a built-in algorithm backed by a run function.
type staticAlgorithm struct {
	name        string
	displayName string
	group       string
	run         func(ctx context.Context, params map[string]any) (map[string]any, error)
}

func (a *staticAlgorithm) Name() string        { return a.name }
func (a *staticAlgorithm) DisplayName() string { return a.displayName }
func (a *staticAlgorithm) Group() string       { return a.group }

func (a *staticAlgorithm) Validate() error {
	if a.run == nil {
		return fmt.Errorf("algorithm %s has no run function", a.name)
	}
	return nil
}

func (a *staticAlgorithm) Run(ctx context.Context, params map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.run(ctx, params)
}

var _ types.Algorithm = (*staticAlgorithm)(nil)

// builtins returns fresh instances of every built-in algorithm.
func builtins() []types.Algorithm {
	return []types.Algorithm{
		&staticAlgorithm{
			name:        "buffer",
			displayName: "Buffer",
			group:       "Vector geometry",
			run:         runBuffer,
		},
		&staticAlgorithm{
			name:        "clip",
			displayName: "Clip",
			group:       "Vector overlay",
			run:         runClip,
		},
		&staticAlgorithm{
			name:        "merge",
			displayName: "Merge layers",
			group:       "Vector general",
			run:         runMerge,
		},
		&staticAlgorithm{
			name:        "centroids",
			displayName: "Centroids",
			group:       "Vector geometry",
			run:         runCentroids,
		},
		&staticAlgorithm{
			name:        "smoothgeometry",
			displayName: "Smooth geometry",
			group:       "Vector geometry",
			run:         runSmooth,
		},
	}
}

// extentParam reads a [minx, miny, maxx, maxy] extent from params.
func extentParam(params map[string]any, key string) ([4]float64, error) {
	var out [4]float64
	raw, ok := params[key]
	if !ok {
		return out, fmt.Errorf("missing parameter %q", key)
	}
	switch v := raw.(type) {
	case [4]float64:
		return v, nil
	case []float64:
		if len(v) != 4 {
			return out, fmt.Errorf("parameter %q must have 4 values", key)
		}
		copy(out[:], v)
		return out, nil
	case []any:
		if len(v) != 4 {
			return out, fmt.Errorf("parameter %q must have 4 values", key)
		}
		for i, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return out, fmt.Errorf("parameter %q has non-numeric value", key)
			}
			out[i] = f
		}
		return out, nil
	default:
		return out, fmt.Errorf("parameter %q is not an extent", key)
	}
}

func floatParam(params map[string]any, key string, def float64) float64 {
	if raw, ok := params[key]; ok {
		if f, ok := toFloat(raw); ok {
			return f
		}
	}
	return def
}

func intParam(params map[string]any, key string, def int) int {
	if raw, ok := params[key]; ok {
		switch v := raw.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return def
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func runBuffer(_ context.Context, params map[string]any) (map[string]any, error) {
	extent, err := extentParam(params, "input")
	if err != nil {
		return nil, err
	}
	distance := floatParam(params, "distance", 0)
	if distance < 0 {
		return nil, fmt.Errorf("distance must be non-negative")
	}
	return map[string]any{
		"output": [4]float64{
			extent[0] - distance, extent[1] - distance,
			extent[2] + distance, extent[3] + distance,
		},
	}, nil
}

func runClip(_ context.Context, params map[string]any) (map[string]any, error) {
	input, err := extentParam(params, "input")
	if err != nil {
		return nil, err
	}
	overlay, err := extentParam(params, "overlay")
	if err != nil {
		return nil, err
	}
	out := [4]float64{
		max(input[0], overlay[0]), max(input[1], overlay[1]),
		min(input[2], overlay[2]), min(input[3], overlay[3]),
	}
	empty := out[0] >= out[2] || out[1] >= out[3]
	if empty {
		out = [4]float64{}
	}
	return map[string]any{"output": out, "empty": empty}, nil
}

func runMerge(_ context.Context, params map[string]any) (map[string]any, error) {
	raw, ok := params["inputs"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("missing parameter %q", "inputs")
	}
	var out [4]float64
	for i, e := range raw {
		extent, err := extentParam(map[string]any{"input": e}, "input")
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		if i == 0 {
			out = extent
			continue
		}
		out[0] = min(out[0], extent[0])
		out[1] = min(out[1], extent[1])
		out[2] = max(out[2], extent[2])
		out[3] = max(out[3], extent[3])
	}
	return map[string]any{"output": out}, nil
}

func runCentroids(_ context.Context, params map[string]any) (map[string]any, error) {
	extent, err := extentParam(params, "input")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"output": [2]float64{(extent[0] + extent[2]) / 2, (extent[1] + extent[3]) / 2},
	}, nil
}

// runSmooth applies iterative corner-cutting to a polyline. Parameters:
// iterations (1-10, default 1), offset (0-0.5, default 0.25) and max_angle
// (0-180, default 180). Interior vertices whose corner turns more sharply
// than max_angle degrees from straight are kept in place.
func runSmooth(_ context.Context, params map[string]any) (map[string]any, error) {
	raw, ok := params["input"].([][2]float64)
	if !ok {
		return nil, fmt.Errorf("missing or invalid parameter %q", "input")
	}
	iterations := intParam(params, "iterations", 1)
	if iterations < 1 || iterations > 10 {
		return nil, fmt.Errorf("iterations must be between 1 and 10")
	}
	offset := floatParam(params, "offset", 0.25)
	if offset < 0 || offset > 0.5 {
		return nil, fmt.Errorf("offset must be between 0 and 0.5")
	}
	maxAngle := floatParam(params, "max_angle", 180)
	if maxAngle < 0 || maxAngle > 180 {
		return nil, fmt.Errorf("max_angle must be between 0 and 180")
	}

	line := append([][2]float64(nil), raw...)
	for i := 0; i < iterations && len(line) > 2; i++ {
		smoothed := make([][2]float64, 0, len(line)*2)
		smoothed = append(smoothed, line[0])
		for j := 1; j < len(line)-1; j++ {
			prev, cur, next := line[j-1], line[j], line[j+1]
			if turnAngle(prev, cur, next) > maxAngle {
				smoothed = append(smoothed, cur)
				continue
			}
			smoothed = append(smoothed,
				[2]float64{cur[0] + (prev[0]-cur[0])*offset, cur[1] + (prev[1]-cur[1])*offset},
				[2]float64{cur[0] + (next[0]-cur[0])*offset, cur[1] + (next[1]-cur[1])*offset},
			)
		}
		smoothed = append(smoothed, line[len(line)-1])
		line = smoothed
	}
	return map[string]any{"output": line}, nil
}

// turnAngle returns the deviation from a straight continuation at cur, in
// degrees. 0 means collinear, 180 means doubling back.
func turnAngle(prev, cur, next [2]float64) float64 {
	h1 := math.Atan2(cur[1]-prev[1], cur[0]-prev[0])
	h2 := math.Atan2(next[1]-cur[1], next[0]-cur[0])
	diff := math.Abs(h2 - h1)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff * 180 / math.Pi
}
