package types

import "time"

// ProviderMetrics represents bookkeeping metrics for a single provider.
type ProviderMetrics struct {
	RefreshCount    int64         `json:"refresh_count"`
	AlgorithmCount  int64         `json:"algorithm_count"`
	LookupCount     int64         `json:"lookup_count"`
	LookupMisses    int64         `json:"lookup_misses"`
	RunCount        int64         `json:"run_count"`
	RunErrors       int64         `json:"run_errors"`
	TotalRunLatency time.Duration `json:"total_run_latency"`
	LastRefreshTime time.Time     `json:"last_refresh_time"`
	LastError       string        `json:"last_error,omitempty"`
}

// MetricsCollector aggregates metrics across providers. All methods are safe
// for concurrent use. Providers record refreshes and lookups themselves;
// RecordRun is called by whatever hosts algorithm execution, since the kit
// hands out Algorithm values directly and does not sit on the run path.
// Consumers poll GetProviderMetrics, or register hooks for synchronous
// event callbacks.
type MetricsCollector interface {
	// RecordRefresh records a completed algorithm refresh and the number
	// of algorithms registered by it.
	RecordRefresh(providerID string, algorithmCount int)

	// RecordLookup records an algorithm lookup and whether it hit.
	RecordLookup(providerID string, hit bool)

	// RecordRun records an algorithm execution. The kit does not call this
	// itself; hosts that run algorithms are expected to.
	RecordRun(providerID, algorithm string, latency time.Duration, err error)

	// GetProviderMetrics returns a copy of the metrics tracked for a
	// provider, or nil if the provider is unknown.
	GetProviderMetrics(providerID string) *ProviderMetrics
}
