package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_AndSnapshotRates(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	a.Record(Sample{Timestamp: now.Add(-30 * time.Second), LatencyMs: 100, HasLatency: true})
	a.Record(Sample{Timestamp: now.Add(-30 * time.Minute), LatencyMs: 200, HasLatency: true})
	a.Record(Sample{Timestamp: now.Add(-5 * time.Hour), LatencyMs: 300, HasLatency: true})

	snap := a.CurrentSnapshot()
	assert.Equal(t, 1, snap.RequestRate.PerMinute)
	assert.Equal(t, 2, snap.RequestRate.PerHour)
	assert.Equal(t, 3, snap.RequestRate.PerDay)
}

func TestSnapshot_LatencyPercentiles(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	for i := 1; i <= 100; i++ {
		a.Record(Sample{
			Timestamp:  now.Add(-time.Duration(i) * time.Second),
			LatencyMs:  int64(i * 10),
			HasLatency: true,
		})
	}

	snap := a.CurrentSnapshot()
	assert.Equal(t, int64(505), snap.Latency.Average)
	assert.Equal(t, int64(510), snap.Latency.Median)
	assert.Equal(t, int64(960), snap.Latency.P95)
	assert.Equal(t, int64(1000), snap.Latency.P99)
}

func TestSnapshot_TokenAndErrorStats(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	a.Record(Sample{Timestamp: now, PromptTokens: 100, CompletionTokens: 40})
	a.Record(Sample{Timestamp: now, PromptTokens: 50, CompletionTokens: 10})
	a.Record(Sample{Timestamp: now, ErrorType: "TIMEOUT"})
	a.Record(Sample{Timestamp: now, ErrorType: "TIMEOUT"})
	a.Record(Sample{Timestamp: now, ErrorType: "SERVER_ERROR"})

	snap := a.CurrentSnapshot()
	assert.Equal(t, 150, snap.TokenUsage.Prompt)
	assert.Equal(t, 50, snap.TokenUsage.Completion)
	assert.Equal(t, 200, snap.TokenUsage.Total)
	assert.Equal(t, 3, snap.ErrorRate.Total)
	assert.Equal(t, 2, snap.ErrorRate.ByType["TIMEOUT"])
	assert.Equal(t, 1, snap.ErrorRate.ByType["SERVER_ERROR"])
}

func TestSnapshot_CacheHitRate(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	hit, miss := true, false
	a.Record(Sample{Timestamp: now, CacheHit: &hit})
	a.Record(Sample{Timestamp: now, CacheHit: &hit})
	a.Record(Sample{Timestamp: now, CacheHit: &miss})
	a.Record(Sample{Timestamp: now})

	snap := a.CurrentSnapshot()
	assert.Equal(t, 67, snap.CacheHitRate)
}

func TestRecord_EventCap(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	for i := 0; i < maxEvents+500; i++ {
		a.Record(Sample{Timestamp: now})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Len(t, a.events, maxEvents)
}

func TestHistorical_HourlyBuckets(t *testing.T) {
	a := NewAggregation()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	a.Record(Sample{Timestamp: base.Add(10 * time.Minute), LatencyMs: 100, HasLatency: true})
	a.Record(Sample{Timestamp: base.Add(20 * time.Minute), LatencyMs: 300, HasLatency: true})
	a.Record(Sample{Timestamp: base.Add(90 * time.Minute), LatencyMs: 500, HasLatency: true})

	points := a.Historical("latency", base, base.Add(3*time.Hour), "hourly")
	assert.Len(t, points, 2)
	assert.Equal(t, int64(200), points[0].Value)
	assert.Equal(t, int64(500), points[1].Value)
	assert.True(t, points[0].Timestamp.Before(points[1].Timestamp))
}

func TestHistorical_RequestCounts(t *testing.T) {
	a := NewAggregation()
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		a.Record(Sample{Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	a.Record(Sample{Timestamp: base.Add(-time.Hour)}) // outside range

	points := a.Historical("requests", base, base.Add(time.Hour), "hourly")
	assert.Len(t, points, 1)
	assert.Equal(t, int64(5), points[0].Value)
}

func TestHistorical_UnknownSeries(t *testing.T) {
	a := NewAggregation()
	a.Record(Sample{Timestamp: time.Now()})

	points := a.Historical("bogus", time.Now().Add(-time.Hour), time.Now(), "hourly")
	assert.Empty(t, points)
}

func TestAlerts_LatencyThreshold(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	for i := 0; i < 20; i++ {
		a.Record(Sample{Timestamp: now, LatencyMs: 8000, HasLatency: true})
	}

	alerts := NewAlerts(a, DefaultThresholds())
	alerts.EvaluateAndRecord()

	got := alerts.Get(nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "latency-high", got[0].AlertID)
	assert.Equal(t, int64(8000), got[0].ActualValue)
}

func TestAlerts_ErrorRateThreshold(t *testing.T) {
	a := NewAggregation()
	now := time.Now()
	a.nowFunc = func() time.Time { return now }

	for i := 0; i < 8; i++ {
		a.Record(Sample{Timestamp: now, LatencyMs: 100, HasLatency: true})
	}
	a.Record(Sample{Timestamp: now, ErrorType: "SERVER_ERROR"})
	a.Record(Sample{Timestamp: now, ErrorType: "TIMEOUT"})

	alerts := NewAlerts(a, DefaultThresholds())
	alerts.EvaluateAndRecord()

	got := alerts.Get(nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "error-rate-high", got[0].AlertID)
}

func TestAlerts_SinceFilter(t *testing.T) {
	a := NewAggregation()
	alerts := NewAlerts(a, Thresholds{LatencyP95Ms: 1, ErrorRatePct: 100})

	now := time.Now()
	a.nowFunc = func() time.Time { return now }
	a.Record(Sample{Timestamp: now, LatencyMs: 100, HasLatency: true})
	alerts.EvaluateAndRecord()

	future := time.Now().Add(time.Hour)
	assert.Empty(t, alerts.Get(&future))
	past := time.Now().Add(-time.Hour)
	assert.Len(t, alerts.Get(&past), 1)
}
