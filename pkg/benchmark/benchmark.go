// Package benchmark measures what weak pointer tracking costs the caller.
package benchmark

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/weaktrack/pkg/track"
	"github.com/danpilch/weaktrack/pkg/weakref"
)

// Options configures a benchmark run.
type Options struct {
	Iterations int // timed batches per scenario
	BatchSize  int // weak pointers made per batch
	Warmup     int
}

// DefaultOptions returns sensible benchmark defaults.
func DefaultOptions() Options {
	return Options{
		Iterations: 20,
		BatchSize:  10000,
		Warmup:     3,
	}
}

// Scenario is one hook configuration under test.
type Scenario struct {
	Name string
	Hook *weakref.Hook
}

// Result holds benchmark results for a single scenario.
type Result struct {
	Scenario  string
	Latencies []time.Duration // per batch
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	PerOp     time.Duration // P50 divided by batch size
	Overhead  Overhead
}

// Overhead holds allocation and GC deltas across a scenario.
type Overhead struct {
	AllocBytes uint64
	AllocCount uint64
	GCPauses   uint32
}

var (
	bmTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bmHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	bmDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type payload struct {
	id  int
	buf [4]uint64
}

// DefaultScenarios compares an untracked baseline against a published hook
// with tracking disabled and enabled. Captures are effectively off so the
// numbers reflect counting alone.
func DefaultScenarios() []Scenario {
	quiet := track.Config{Enabled: true, StackdumpInterval: math.MaxInt32}

	disabled := weakref.NewHook()
	off := track.NewManaged(quiet, nil, nil)
	off.SetEnabled(false)
	disabled.Publish(off)

	enabled := weakref.NewHook()
	enabled.Publish(track.NewManaged(quiet, nil, nil))

	return []Scenario{
		{Name: "untracked", Hook: nil},
		{Name: "unpublished", Hook: weakref.NewHook()},
		{Name: "disabled", Hook: disabled},
		{Name: "enabled", Hook: enabled},
	}
}

// Run benchmarks each scenario with the given options.
func Run(scenarios []Scenario, opts Options) []Result {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}
	var results []Result

	for _, sc := range scenarios {
		for i := 0; i < opts.Warmup; i++ {
			batch(sc.Hook, opts.BatchSize)
		}

		before := MeasureOverhead()
		latencies := make([]time.Duration, opts.Iterations)
		for i := 0; i < opts.Iterations; i++ {
			start := time.Now()
			batch(sc.Hook, opts.BatchSize)
			latencies[i] = time.Since(start)
		}
		after := MeasureOverhead()

		slices.Sort(latencies)
		p50 := percentile(latencies, 0.50)
		results = append(results, Result{
			Scenario:  sc.Name,
			Latencies: latencies,
			P50:       p50,
			P95:       percentile(latencies, 0.95),
			P99:       percentile(latencies, 0.99),
			PerOp:     p50 / time.Duration(opts.BatchSize),
			Overhead: Overhead{
				AllocBytes: after.AllocBytes - before.AllocBytes,
				AllocCount: after.AllocCount - before.AllocCount,
				GCPauses:   after.GCPauses - before.GCPauses,
			},
		})
	}

	return results
}

var sink int

func batch(h *weakref.Hook, n int) {
	for i := 0; i < n; i++ {
		p := weakref.Make(h, &payload{id: i})
		if v := p.Value(); v != nil {
			sink += v.id
		}
	}
}

// MeasureOverhead returns the process's cumulative allocation and GC counters.
func MeasureOverhead() Overhead {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Overhead{
		AllocBytes: m.TotalAlloc,
		AllocCount: m.Mallocs,
		GCPauses:   m.NumGC,
	}
}

// RenderResults outputs styled benchmark results.
func RenderResults(w io.Writer, results []Result) {
	fmt.Fprintln(w, bmTitle.Render("Weak Pointer Tracking Overhead"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("═", 78)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		bmHeader.Render("SCENARIO      "),
		bmHeader.Render("P50 BATCH  "),
		bmHeader.Render("P99 BATCH  "),
		bmHeader.Render("PER OP     "),
		bmHeader.Render("ALLOCATED   "))
	fmt.Fprintln(w, "  "+bmDim.Render(strings.Repeat("─", 78)))

	for _, r := range results {
		fmt.Fprintf(w, "  %-15s %-12v %-12v %-12v %s\n",
			r.Scenario, r.P50, r.P99, r.PerOp, formatBytes(r.Overhead.AllocBytes))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bmTitle.Render("GC Activity"))
	fmt.Fprintln(w, bmDim.Render(strings.Repeat("─", 40)))
	for _, r := range results {
		fmt.Fprintf(w, "  %-15s %s allocations, %s GC cycles\n", r.Scenario,
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", r.Overhead.AllocCount)),
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", r.Overhead.GCPauses)))
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
