package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRefresh(t *testing.T) {
	c := NewCollector()

	c.RecordRefresh("native", 5)
	c.RecordRefresh("native", 4)

	m := c.GetProviderMetrics("native")
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.RefreshCount)
	assert.Equal(t, int64(4), m.AlgorithmCount, "algorithm count reflects the latest refresh")
	assert.False(t, m.LastRefreshTime.IsZero())
}

func TestCollector_RecordLookup(t *testing.T) {
	c := NewCollector()

	c.RecordLookup("native", true)
	c.RecordLookup("native", true)
	c.RecordLookup("native", false)

	m := c.GetProviderMetrics("native")
	require.NotNil(t, m)
	assert.Equal(t, int64(3), m.LookupCount)
	assert.Equal(t, int64(1), m.LookupMisses)
}

func TestCollector_RecordRun(t *testing.T) {
	c := NewCollector()

	c.RecordRun("native", "buffer", 10*time.Millisecond, nil)
	c.RecordRun("native", "clip", 5*time.Millisecond, errors.New("bad params"))

	m := c.GetProviderMetrics("native")
	require.NotNil(t, m)
	assert.Equal(t, int64(2), m.RunCount)
	assert.Equal(t, int64(1), m.RunErrors)
	assert.Equal(t, 15*time.Millisecond, m.TotalRunLatency)
	assert.Equal(t, "bad params", m.LastError)
}

func TestCollector_UnknownProvider(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.GetProviderMetrics("ghost"))
}

func TestCollector_SnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.RecordRefresh("native", 5)
	c.RecordLookup("script", true)

	snap := c.GetSnapshot()
	assert.Equal(t, int64(1), snap.TotalRefreshes)
	assert.Equal(t, int64(1), snap.TotalLookups)
	require.Contains(t, snap.Providers, "native")
	require.Contains(t, snap.Providers, "script")

	c.RecordRefresh("native", 5)
	assert.Equal(t, int64(1), snap.Providers["native"].RefreshCount, "snapshot does not change after the fact")
}

func TestCollector_ProviderIDs(t *testing.T) {
	c := NewCollector()
	c.RecordRefresh("script", 1)
	c.RecordRefresh("native", 2)

	assert.Equal(t, []string{"native", "script"}, c.ProviderIDs())
}

func TestCollector_Hooks(t *testing.T) {
	c := NewCollector()

	var mu sync.Mutex
	var events []Event
	c.RegisterHook(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	c.RecordRefresh("native", 3)
	c.RecordLookup("native", false)
	c.RecordRun("native", "buffer", time.Millisecond, nil)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, EventRefresh, events[0].Type)
	assert.Equal(t, EventLookup, events[1].Type)
	assert.False(t, events[1].Hit)
	assert.Equal(t, EventRun, events[2].Type)
	assert.Equal(t, "buffer", events[2].Algorithm)
}
