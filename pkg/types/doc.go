// Package types defines the core interfaces and data structures shared across
// the geoprocessing kit: algorithms, providers, provider configuration,
// standardized errors, and metrics.
//
// Providers are split into small, focused interfaces (CoreProvider,
// ActivatableProvider, OutputFormatProvider, ...) so that clients can depend
// only on the capabilities they actually use. The composite Provider interface
// combines all of them and is what the registry stores.
package types
