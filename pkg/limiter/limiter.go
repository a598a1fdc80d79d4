package limiter

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Window is one fixed time scale with its own request ceiling.
type Window struct {
	Limit int
	Range time.Duration
}

// Config holds the three scales every client key is checked against.
type Config struct {
	Minute Window
	Hour   Window
	Day    Window
}

func DefaultConfig() Config {
	return Config{
		Minute: Window{Limit: 10, Range: time.Minute},
		Hour:   Window{Limit: 100, Range: time.Hour},
		Day:    Window{Limit: 500, Range: 24 * time.Hour},
	}
}

func (c Config) windows() []Window {
	return []Window{c.Minute, c.Hour, c.Day}
}

// bucket keeps the sliding-window timestamp logs for a single client
// key. One log per window, pruned lazily on access.
type bucket struct {
	mu   sync.Mutex
	logs [][]time.Time
}

// SlidingWindow is a per-client-key request limiter. Keys are created
// on first use and live for the process lifetime; memory grows with
// key cardinality (no eviction).
type SlidingWindow struct {
	cfg     Config
	buckets cmap.ConcurrentMap[string, *bucket]
	nowFunc func() time.Time
}

func NewSlidingWindow(cfg Config) *SlidingWindow {
	for _, w := range cfg.windows() {
		if w.Limit <= 0 || w.Range <= 0 {
			cfg = DefaultConfig()
			break
		}
	}
	return &SlidingWindow{
		cfg:     cfg,
		buckets: cmap.New[*bucket](),
		nowFunc: time.Now,
	}
}

// Allow checks all three windows for key. The request is rejected and
// NOT recorded if any window is at or over its limit; otherwise it is
// recorded against all windows and allowed.
func (s *SlidingWindow) Allow(key string) bool {
	b := s.bucketFor(key)
	now := s.nowFunc()

	b.mu.Lock()
	defer b.mu.Unlock()

	windows := s.cfg.windows()
	for i, w := range windows {
		b.logs[i] = pruneLog(b.logs[i], now.Add(-w.Range))
		if len(b.logs[i]) >= w.Limit {
			return false
		}
	}

	for i := range windows {
		b.logs[i] = append(b.logs[i], now)
	}
	return true
}

// Remaining reports how many requests the tightest window still
// admits for key, without recording anything.
func (s *SlidingWindow) Remaining(key string) int {
	b := s.bucketFor(key)
	now := s.nowFunc()

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := -1
	for i, w := range s.cfg.windows() {
		b.logs[i] = pruneLog(b.logs[i], now.Add(-w.Range))
		left := w.Limit - len(b.logs[i])
		if left < 0 {
			left = 0
		}
		if remaining < 0 || left < remaining {
			remaining = left
		}
	}
	return remaining
}

func (s *SlidingWindow) bucketFor(key string) *bucket {
	if b, ok := s.buckets.Get(key); ok {
		return b
	}
	b := &bucket{logs: make([][]time.Time, len(s.cfg.windows()))}
	// SetIfAbsent keeps the winner when two requests race on a new key.
	if !s.buckets.SetIfAbsent(key, b) {
		b, _ = s.buckets.Get(key)
	}
	return b
}

func pruneLog(log []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(log) && log[idx].Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return log
	}
	return append(log[:0:0], log[idx:]...)
}
