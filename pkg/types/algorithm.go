package types

import "context"

// Algorithm is a single, uniquely named unit of processing functionality.
// An algorithm is owned by exactly one provider, which keys it by Name, so
// Name must be stable and unique within that provider.
type Algorithm interface {
	// Name returns the algorithm name. This string should be short,
	// machine readable and unique within the owning provider, eg "buffer"
	// or "smoothgeometry". It is not localised.
	Name() string

	// DisplayName returns the human readable algorithm name, used to
	// describe the algorithm within UIs.
	DisplayName() string

	// Group returns the group this algorithm belongs to, or an empty
	// string if the algorithm is ungrouped.
	Group() string

	// Validate reports whether the algorithm is internally consistent.
	// Providers refuse to register algorithms that fail validation.
	Validate() error

	// Run executes the algorithm with the given parameters and returns
	// the produced outputs.
	Run(ctx context.Context, params map[string]any) (map[string]any, error)
}

// AlgorithmID builds the globally unique identifier for an algorithm,
// combining the owning provider's ID and the algorithm name,
// eg "native:buffer".
func AlgorithmID(providerID, name string) string {
	return providerID + ":" + name
}
