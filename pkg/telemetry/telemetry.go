package telemetry

import (
	"sort"
	"sync"
	"time"
)

// maxEvents caps aggregation memory. Events are PII-free: no message
// text, no user identifiers.
const maxEvents = 5000

type Sample struct {
	Timestamp        time.Time
	LatencyMs        int64
	HasLatency       bool
	PromptTokens     int
	CompletionTokens int
	ErrorType        string
	CacheHit         *bool
}

type LatencyStats struct {
	Average int64 `json:"average"`
	Median  int64 `json:"median"`
	P95     int64 `json:"p95"`
	P99     int64 `json:"p99"`
}

type TokenStats struct {
	Total      int `json:"total"`
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

type ErrorStats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
}

type RequestRate struct {
	PerMinute int `json:"perMinute"`
	PerHour   int `json:"perHour"`
	PerDay    int `json:"perDay"`
}

type Snapshot struct {
	RequestRate  RequestRate  `json:"requestRate"`
	Latency      LatencyStats `json:"latency"`
	TokenUsage   TokenStats   `json:"tokenUsage"`
	ErrorRate    ErrorStats   `json:"errorRate"`
	CacheHitRate int          `json:"cacheHitRate"`
}

type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int64     `json:"value"`
}

// Aggregation is a bounded in-memory telemetry buffer backing the
// dashboard endpoints. Process-lifetime only.
type Aggregation struct {
	mu      sync.Mutex
	events  []Sample
	nowFunc func() time.Time
}

func NewAggregation() *Aggregation {
	return &Aggregation{nowFunc: time.Now}
}

func (a *Aggregation) Record(sample Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if sample.Timestamp.IsZero() {
		sample.Timestamp = a.nowFunc()
	}
	a.events = append(a.events, sample)
	if overflow := len(a.events) - maxEvents; overflow > 0 {
		a.events = append(a.events[:0:0], a.events[overflow:]...)
	}
}

func (a *Aggregation) CurrentSnapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowFunc()
	perMinute := a.since(now.Add(-time.Minute))
	perHour := a.since(now.Add(-time.Hour))
	perDay := a.since(now.Add(-24 * time.Hour))

	return Snapshot{
		RequestRate: RequestRate{
			PerMinute: len(perMinute),
			PerHour:   len(perHour),
			PerDay:    len(perDay),
		},
		Latency:      latencyStats(perHour),
		TokenUsage:   tokenStats(perHour),
		ErrorRate:    errorStats(perHour),
		CacheHitRate: cacheHitRate(perHour),
	}
}

// Historical buckets samples between start and end. Aggregation is
// "hourly" or "daily"; series type is one of latency, tokens, errors,
// requests, cache.
func (a *Aggregation) Historical(seriesType string, start, end time.Time, aggregation string) []DataPoint {
	a.mu.Lock()
	defer a.mu.Unlock()

	bucketSize := time.Hour
	if aggregation == "daily" {
		bucketSize = 24 * time.Hour
	}

	buckets := make(map[int64][]Sample)
	for _, e := range a.events {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		key := e.Timestamp.Truncate(bucketSize).Unix()
		buckets[key] = append(buckets[key], e)
	}

	points := make([]DataPoint, 0, len(buckets))
	for key, events := range buckets {
		point := DataPoint{Timestamp: time.Unix(key, 0).UTC()}
		switch seriesType {
		case "latency":
			point.Value = latencyStats(events).Average
		case "tokens":
			point.Value = int64(tokenStats(events).Total)
		case "errors":
			point.Value = int64(errorStats(events).Total)
		case "requests":
			point.Value = int64(len(events))
		case "cache":
			point.Value = int64(cacheHitRate(events))
		default:
			continue
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

func (a *Aggregation) since(cutoff time.Time) []Sample {
	var result []Sample
	for _, e := range a.events {
		if !e.Timestamp.Before(cutoff) {
			result = append(result, e)
		}
	}
	return result
}

func latencyStats(events []Sample) LatencyStats {
	var latencies []int64
	for _, e := range events {
		if e.HasLatency && e.LatencyMs >= 0 {
			latencies = append(latencies, e.LatencyMs)
		}
	}
	if len(latencies) == 0 {
		return LatencyStats{}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum int64
	for _, v := range latencies {
		sum += v
	}
	pct := func(p float64) int64 {
		idx := int(p * float64(len(latencies)))
		if idx >= len(latencies) {
			idx = len(latencies) - 1
		}
		return latencies[idx]
	}

	return LatencyStats{
		Average: sum / int64(len(latencies)),
		Median:  pct(0.5),
		P95:     pct(0.95),
		P99:     pct(0.99),
	}
}

func tokenStats(events []Sample) TokenStats {
	stats := TokenStats{}
	for _, e := range events {
		stats.Prompt += e.PromptTokens
		stats.Completion += e.CompletionTokens
	}
	stats.Total = stats.Prompt + stats.Completion
	return stats
}

func errorStats(events []Sample) ErrorStats {
	stats := ErrorStats{ByType: make(map[string]int)}
	for _, e := range events {
		if e.ErrorType == "" {
			continue
		}
		stats.Total++
		stats.ByType[e.ErrorType]++
	}
	return stats
}

func cacheHitRate(events []Sample) int {
	hits, attempts := 0, 0
	for _, e := range events {
		if e.CacheHit == nil {
			continue
		}
		attempts++
		if *e.CacheHit {
			hits++
		}
	}
	if attempts == 0 {
		return 0
	}
	return int(float64(hits)/float64(attempts)*100 + 0.5)
}
