// Package metrics provides the default MetricsCollector implementation:
// per-provider counters with snapshot polling and synchronous hook
// callbacks.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/cecil-the-coder/geoprocessing-kit/pkg/types"
)

// EventType categorizes collector events delivered to hooks.
type EventType string

const (
	EventRefresh EventType = "refresh"
	EventLookup  EventType = "lookup"
	EventRun     EventType = "run"
)

// Event is delivered synchronously to registered hooks for every recorded
// measurement.
type Event struct {
	Type       EventType
	ProviderID string
	Algorithm  string
	Hit        bool
	Latency    time.Duration
	Err        error
	Timestamp  time.Time
}

// Hook receives collector events. Hooks run synchronously on the recording
// goroutine and must be fast.
type Hook func(Event)

// Snapshot is a point-in-time copy of all tracked metrics.
type Snapshot struct {
	GeneratedAt    time.Time                        `json:"generated_at"`
	TotalRefreshes int64                            `json:"total_refreshes"`
	TotalLookups   int64                            `json:"total_lookups"`
	TotalRuns      int64                            `json:"total_runs"`
	Providers      map[string]types.ProviderMetrics `json:"providers"`
}

// Collector is the default metrics collector. The zero value is not usable;
// create one with NewCollector.
type Collector struct {
	mu        sync.RWMutex
	providers map[string]*types.ProviderMetrics
	hooks     []Hook
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		providers: make(map[string]*types.ProviderMetrics),
	}
}

// RegisterHook adds a callback invoked for every recorded event.
func (c *Collector) RegisterHook(hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

func (c *Collector) provider(id string) *types.ProviderMetrics {
	m, ok := c.providers[id]
	if !ok {
		m = &types.ProviderMetrics{}
		c.providers[id] = m
	}
	return m
}

func (c *Collector) emit(event Event) {
	event.Timestamp = time.Now()
	c.mu.RLock()
	hooks := c.hooks
	c.mu.RUnlock()
	for _, hook := range hooks {
		hook(event)
	}
}

// RecordRefresh implements types.MetricsCollector.
func (c *Collector) RecordRefresh(providerID string, algorithmCount int) {
	c.mu.Lock()
	m := c.provider(providerID)
	m.RefreshCount++
	m.AlgorithmCount = int64(algorithmCount)
	m.LastRefreshTime = time.Now()
	c.mu.Unlock()

	c.emit(Event{Type: EventRefresh, ProviderID: providerID})
}

// RecordLookup implements types.MetricsCollector.
func (c *Collector) RecordLookup(providerID string, hit bool) {
	c.mu.Lock()
	m := c.provider(providerID)
	m.LookupCount++
	if !hit {
		m.LookupMisses++
	}
	c.mu.Unlock()

	c.emit(Event{Type: EventLookup, ProviderID: providerID, Hit: hit})
}

// RecordRun implements types.MetricsCollector.
func (c *Collector) RecordRun(providerID, algorithm string, latency time.Duration, err error) {
	c.mu.Lock()
	m := c.provider(providerID)
	m.RunCount++
	m.TotalRunLatency += latency
	if err != nil {
		m.RunErrors++
		m.LastError = err.Error()
	}
	c.mu.Unlock()

	c.emit(Event{Type: EventRun, ProviderID: providerID, Algorithm: algorithm, Latency: latency, Err: err})
}

// GetProviderMetrics implements types.MetricsCollector.
func (c *Collector) GetProviderMetrics(providerID string) *types.ProviderMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.providers[providerID]
	if !ok {
		return nil
	}
	out := *m
	return &out
}

// ProviderIDs returns a sorted list of all provider ids currently tracked.
func (c *Collector) ProviderIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.providers))
	for id := range c.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetSnapshot returns a point-in-time copy of all metrics.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		GeneratedAt: time.Now(),
		Providers:   make(map[string]types.ProviderMetrics, len(c.providers)),
	}
	for id, m := range c.providers {
		snap.Providers[id] = *m
		snap.TotalRefreshes += m.RefreshCount
		snap.TotalLookups += m.LookupCount
		snap.TotalRuns += m.RunCount
	}
	return snap
}

var _ types.MetricsCollector = (*Collector)(nil)
