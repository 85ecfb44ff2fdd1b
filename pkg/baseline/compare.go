package baseline

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Severity indicates the magnitude of a count drift.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityRegress  Severity = "regression"
	SeverityNew      Severity = "new"
)

// Comparison holds the drift for a single type key.
type Comparison struct {
	Key         string
	BaselineVal uint64
	CurrentVal  uint64
	Delta       int64 // saturated at the int64 bounds
	DeltaPct    float64
	Severity    Severity
}

var (
	blTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	blHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	blDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	blErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blMinor  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Compare matches entries by key and calculates drift. Keys present on only
// one side compare against zero. Results are ordered by largest growth first.
func Compare(baseline *Baseline, current []track.Entry) []Comparison {
	baseMap := make(map[string]uint64, len(baseline.Entries))
	for _, e := range baseline.Entries {
		baseMap[e.Key] = e.Count
	}
	curMap := make(map[string]uint64, len(current))
	for _, e := range current {
		curMap[e.Key] = e.Count
	}

	keys := make([]string, 0, len(baseMap)+len(curMap))
	for k := range baseMap {
		keys = append(keys, k)
	}
	for k := range curMap {
		if _, ok := baseMap[k]; !ok {
			keys = append(keys, k)
		}
	}

	comparisons := make([]Comparison, 0, len(keys))
	for _, k := range keys {
		base, cur := baseMap[k], curMap[k]
		delta, diff := countDelta(base, cur)

		var deltaPct float64
		sev := SeverityNone
		switch {
		case base != 0:
			deltaPct = diff / float64(base) * 100
			sev = classifySeverity(deltaPct)
		case cur != 0:
			deltaPct = 100
			sev = SeverityNew
		}

		comparisons = append(comparisons, Comparison{
			Key:         k,
			BaselineVal: base,
			CurrentVal:  cur,
			Delta:       delta,
			DeltaPct:    deltaPct,
			Severity:    sev,
		})
	}

	slices.SortFunc(comparisons, func(a, b Comparison) int {
		if c := cmp.Compare(b.Delta, a.Delta); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return comparisons
}

// countDelta returns cur-base saturated to the int64 range, and the exact
// difference as a float for percentages.
func countDelta(base, cur uint64) (int64, float64) {
	if cur >= base {
		d := cur - base
		return int64(min(d, math.MaxInt64)), float64(d)
	}
	d := base - cur
	if d > math.MaxInt64 {
		return math.MinInt64, -float64(d)
	}
	return -int64(d), -float64(d)
}

// classifySeverity grades a relative change. Growth past 30% is a regression
// since more weak pointers means more collector work.
func classifySeverity(deltaPct float64) Severity {
	absDelta := deltaPct
	if absDelta < 0 {
		absDelta = -absDelta
	}
	if absDelta < 5 {
		return SeverityNone
	}
	if absDelta < 15 {
		return SeverityMinor
	}
	if absDelta < 30 {
		return SeverityModerate
	}
	if deltaPct > 0 {
		return SeverityRegress
	}
	return SeverityMajor
}

// RenderComparison outputs a styled comparison table.
func RenderComparison(w io.Writer, baseline *Baseline, comparisons []Comparison) {
	fmt.Fprintln(w, blTitle.Render("Baseline Comparison"))
	fmt.Fprintln(w, blDim.Render(strings.Repeat("═", 90)))
	fmt.Fprintf(w, "Comparing against %s (from %s)\n\n",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%q", baseline.Name)),
		blDim.Render(baseline.Timestamp.Format("2006-01-02 15:04:05")))
	if enabled, ok := baseline.Metadata[MetaEnabled]; ok {
		fmt.Fprintf(w, "%s\n\n", blDim.Render(fmt.Sprintf("Tracking at save: enabled=%s stackdump_interval=%s",
			enabled, baseline.Metadata[MetaStackdumpInterval])))
	}

	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		blHeader.Render("TYPE                                    "),
		blHeader.Render("BASELINE  "),
		blHeader.Render("CURRENT   "),
		blHeader.Render("DELTA    "),
		blHeader.Render("SEVERITY  "))
	fmt.Fprintln(w, "  "+blDim.Render(strings.Repeat("─", 90)))

	regressions := 0
	for _, c := range comparisons {
		deltaStr := fmt.Sprintf("%+.1f%%", c.DeltaPct)
		var sevStr string
		switch c.Severity {
		case SeverityRegress:
			sevStr = blErr.Render("REGRESSION")
			regressions++
		case SeverityNew:
			sevStr = blWarn.Render("new")
		case SeverityMajor:
			sevStr = blOK.Render("major drop")
		case SeverityModerate:
			sevStr = blWarn.Render("moderate")
		case SeverityMinor:
			sevStr = blMinor.Render("minor")
		default:
			sevStr = blOK.Render("none")
		}

		fmt.Fprintf(w, "  %-41s %-12d %-12d %-10s %s\n",
			c.Key, c.BaselineVal, c.CurrentVal, deltaStr, sevStr)
	}

	fmt.Fprintln(w)
	if regressions > 0 {
		fmt.Fprintf(w, "  %s\n", blErr.Render(fmt.Sprintf("%d types creating significantly more weak pointers.", regressions)))
	} else {
		fmt.Fprintf(w, "  %s\n", blOK.Render("No significant growth detected."))
	}
}
