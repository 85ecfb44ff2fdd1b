// Package output renders weak pointer count snapshots for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Format represents the output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatTSV   Format = "tsv"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatTable, FormatJSON, FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Summary aggregates a snapshot.
type Summary struct {
	Types int    `json:"types"`
	Total uint64 `json:"total"`
	Nulls uint64 `json:"nulls"`
}

// Summarize totals a snapshot.
func Summarize(entries []track.Entry) Summary {
	s := Summary{Types: len(entries)}
	for _, e := range entries {
		s.Total += e.Count
		if e.Key == track.NullKey {
			s.Nulls = e.Count
		}
	}
	return s
}

// Formatter handles output formatting.
type Formatter struct {
	format Format
	order  track.Order
	writer io.Writer
	trend  *TrendTracker
	limit  int
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, order track.Order, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		order:  order,
		writer: writer,
	}
}

// SetTrendTracker enables the trend column for watch mode.
func (f *Formatter) SetTrendTracker(t *TrendTracker) {
	f.trend = t
}

// SetLimit keeps only the n types with the largest counts, whatever the
// display order. Zero means no limit.
func (f *Formatter) SetLimit(n int) {
	f.limit = n
}

// HasDecorations reports whether a limit or trend tracker changes the rows
// beyond plain sorting.
func (f *Formatter) HasDecorations() bool {
	return f.limit > 0 || f.trend != nil
}

// Render outputs the snapshot in the configured format.
func (f *Formatter) Render(entries []track.Entry) error {
	if f.trend != nil {
		f.trend.Observe(entries)
	}
	if f.limit > 0 && len(entries) > f.limit {
		track.Sort(entries, track.OrderByCount)
		entries = entries[len(entries)-f.limit:]
	}
	track.Sort(entries, f.order)

	switch f.format {
	case FormatJSON:
		return f.renderJSON(entries)
	case FormatTSV:
		return f.renderTSV(entries)
	case FormatTable:
		return f.renderTable(entries)
	default:
		_, err := io.WriteString(f.writer, track.Render(entries, f.order))
		return err
	}
}

// renderJSON outputs entries as JSON.
func (f *Formatter) renderJSON(entries []track.Entry) error {
	output := struct {
		Order   track.Order   `json:"order"`
		Entries []track.Entry `json:"entries"`
		Summary Summary       `json:"summary"`
	}{
		Order:   f.order,
		Entries: entries,
		Summary: Summarize(entries),
	}
	if output.Entries == nil {
		output.Entries = []track.Entry{}
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// renderTable outputs entries as a styled table.
func (f *Formatter) renderTable(entries []track.Entry) error {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	countStyle := cellStyle.Align(lipgloss.Right)
	nullStyle := cellStyle.Foreground(lipgloss.Color("8"))

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Fprintln(f.writer, titleStyle.Render("Weak Pointer Creations by Type"))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	fmt.Fprintln(f.writer)

	summary := Summarize(entries)
	hasTrend := f.trend != nil
	rows := make([][]string, len(entries))
	for i, e := range entries {
		share := 0.0
		if summary.Total > 0 {
			share = float64(e.Count) / float64(summary.Total) * 100
		}
		row := []string{
			e.Key,
			strconv.FormatUint(e.Count, 10),
			fmt.Sprintf("%.1f%%", share),
		}
		if hasTrend {
			row = append(row, f.trend.Sparkline(e.Key))
		}
		rows[i] = row
	}

	headers := []string{"TYPE", "COUNT", "SHARE"}
	if hasTrend {
		headers = append(headers, "RATE")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 || col == 2 {
				return countStyle
			}
			if col == 0 && row >= 0 && row < len(entries) && entries[row].Key == track.NullKey {
				return nullStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	fmt.Fprintln(f.writer, t)
	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Summary: %s across %s\n",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d weak pointers", summary.Total)),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d types", summary.Types)))
	return nil
}

// renderTSV outputs entries as tab-separated values.
func (f *Formatter) renderTSV(entries []track.Entry) error {
	fmt.Fprintln(f.writer, "TYPE\tCOUNT")
	for _, e := range entries {
		fmt.Fprintf(f.writer, "%s\t%d\n", e.Key, e.Count)
	}
	return nil
}
