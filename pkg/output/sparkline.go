package output

import (
	"strings"
	"sync"

	"github.com/danpilch/weaktrack/pkg/track"
)

// TrendTracker keeps a rolling window of per-poll creation deltas for each type.
type TrendTracker struct {
	mu     sync.Mutex
	last   map[string]uint64
	deltas map[string][]float64
	maxLen int
}

// NewTrendTracker creates a tracker with a fixed window size.
func NewTrendTracker(maxLen int) *TrendTracker {
	if maxLen < 1 {
		maxLen = 20
	}
	return &TrendTracker{
		last:   make(map[string]uint64),
		deltas: make(map[string][]float64),
		maxLen: maxLen,
	}
}

// Observe records the change in each type's count since the previous poll.
// A count lower than last time means the remote side was reset.
func (t *TrendTracker) Observe(entries []track.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.Key] = true
		prev, ok := t.last[e.Key]
		delta := e.Count
		if ok && e.Count >= prev {
			delta = e.Count - prev
		}
		t.last[e.Key] = e.Count
		if !ok {
			// first sighting only seeds the baseline
			continue
		}
		t.push(e.Key, float64(delta))
	}
	for key := range t.last {
		if !seen[key] {
			t.last[key] = 0
			t.push(key, 0)
		}
	}
}

func (t *TrendTracker) push(key string, v float64) {
	d := append(t.deltas[key], v)
	if len(d) > t.maxLen {
		d = d[len(d)-t.maxLen:]
	}
	t.deltas[key] = d
}

// Sparkline returns a Unicode sparkline of the recent deltas for key.
func (t *TrendTracker) Sparkline(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return renderSparkline(t.deltas[key])
}

// sparkline block characters from lowest to highest
var sparkBlocks = []rune{
	'\u2581', // ▁
	'\u2582', // ▂
	'\u2583', // ▃
	'\u2584', // ▄
	'\u2585', // ▅
	'\u2586', // ▆
	'\u2587', // ▇
	'\u2588', // █
}

// renderSparkline scales values against their maximum so a flat zero line
// stays at the bottom block.
func renderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		idx := 0
		if peak > 0 {
			idx = min(max(int(v/peak*float64(top)), 0), top)
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
