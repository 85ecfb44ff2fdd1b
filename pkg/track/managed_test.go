package track

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLog struct {
	mu    sync.Mutex
	calls []Entry
}

func (c *captureLog) Capture(key string, count uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Entry{Key: key, Count: count})
}

func (c *captureLog) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newTestManaged(interval int) (*Managed, *captureLog) {
	caps := &captureLog{}
	return NewManaged(Config{Enabled: true, StackdumpInterval: interval}, caps, nil), caps
}

func lines(s ...string) string {
	var out string
	for _, l := range s {
		out += l + LineSeparator
	}
	return out
}

func TestRecordCountsPerKey(t *testing.T) {
	m, _ := newTestManaged(1000)
	for i := 0; i < 7; i++ {
		m.Record("example.com/pkg.Foo")
	}
	m.Record(NullKey)
	m.Record("")

	assert.Equal(t, uint64(7), m.Count("example.com/pkg.Foo"))
	assert.Equal(t, uint64(2), m.Count(NullKey))
	assert.Equal(t, uint64(0), m.Count("example.com/pkg.Bar"))
}

func TestRecordConcurrent(t *testing.T) {
	m, _ := newTestManaged(1000)
	const workers, perWorker = 16, 500

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.Record(fmt.Sprintf("T%d", w%4))
			}
		}(w)
	}
	wg.Wait()

	for k := 0; k < 4; k++ {
		assert.Equal(t, uint64(workers/4*perWorker), m.Count(fmt.Sprintf("T%d", k)))
	}
}

func TestStackCaptureOnInterval(t *testing.T) {
	m, caps := newTestManaged(3)
	m.Record("Foo")
	m.Record("Foo")
	assert.Equal(t, 0, caps.len())
	m.Record("Foo")

	require.Equal(t, 1, caps.len())
	assert.Equal(t, Entry{Key: "Foo", Count: 3}, caps.calls[0])
	assert.Equal(t, uint64(3), m.Count("Foo"))
}

func TestSetStackdumpIntervalClamps(t *testing.T) {
	m, _ := newTestManaged(DefaultStackdumpInterval)
	assert.Equal(t, 100, m.StackdumpInterval())

	for _, x := range []int{0, -1, -1000} {
		m.SetStackdumpInterval(x)
		assert.Equal(t, 1, m.StackdumpInterval(), "interval %d", x)
	}
	for _, x := range []int{1, 7, 250} {
		m.SetStackdumpInterval(x)
		assert.Equal(t, x, m.StackdumpInterval())
	}
}

func TestNewManagedClampsConfiguredInterval(t *testing.T) {
	m := NewManaged(Config{Enabled: true, StackdumpInterval: -5}, nil, nil)
	assert.Equal(t, 1, m.StackdumpInterval())
}

func TestToggleEnabled(t *testing.T) {
	m, _ := newTestManaged(10)
	for i := 0; i < 4; i++ {
		prior := m.IsEnabled()
		got := m.ToggleEnabled()
		assert.Equal(t, !prior, got)
		assert.Equal(t, got, m.IsEnabled())
	}
}

func TestDisabledRecordsAreDropped(t *testing.T) {
	m, _ := newTestManaged(10)
	m.SetEnabled(false)
	for i := 0; i < 5; i++ {
		m.Record("Foo")
	}
	m.SetEnabled(true)
	m.Record("Foo")

	assert.Equal(t, uint64(1), m.Count("Foo"))
}

func TestResetClearsCountsButNotFlags(t *testing.T) {
	m, _ := newTestManaged(10)
	m.Record("A")
	m.Record("B")
	m.SetStackdumpInterval(42)

	m.Reset()
	assert.Empty(t, m.DumpByName())
	assert.Empty(t, m.DumpByCount())
	assert.True(t, m.IsEnabled())
	assert.Equal(t, 42, m.StackdumpInterval())

	m.Record("A")
	assert.Equal(t, lines("A -> 1"), m.DumpByName())
}

func TestDumpByName(t *testing.T) {
	m, _ := newTestManaged(100)
	m.Record("B")
	m.Record("A")
	m.Record("A")

	assert.Equal(t, lines("A -> 2", "B -> 1"), m.DumpByName())
}

func TestDumpByCount(t *testing.T) {
	m, _ := newTestManaged(100)
	m.Record("Y")
	m.Record("X")
	m.Record("Y")
	m.Record("Y")

	assert.Equal(t, lines("1 -> X", "3 -> Y"), m.DumpByCount())
}
