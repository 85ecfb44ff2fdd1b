package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/weaktrack/pkg/track"
)

func sample() []track.Entry {
	return []track.Entry{
		{Key: "B", Count: 1},
		{Key: "A", Count: 5},
		{Key: track.NullKey, Count: 2},
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatText, track.OrderByCount, &buf).Render(sample()))
	nl := track.LineSeparator
	assert.Equal(t, "1 -> B"+nl+"2 -> null"+nl+"5 -> A"+nl, buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, track.OrderByName, &buf).Render(sample()))

	var got struct {
		Order   track.Order   `json:"order"`
		Entries []track.Entry `json:"entries"`
		Summary Summary       `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, track.OrderByName, got.Order)
	assert.Equal(t, "A", got.Entries[0].Key)
	assert.Equal(t, Summary{Types: 3, Total: 8, Nulls: 2}, got.Summary)
}

func TestRenderJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, track.OrderByName, &buf).Render(nil))
	assert.Contains(t, buf.String(), `"entries": []`)
}

func TestRenderTableAndLimit(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatTable, track.OrderByCount, &buf)
	f.SetLimit(2)
	require.NoError(t, f.Render(sample()))

	out := buf.String()
	assert.Contains(t, out, "Weak Pointer Creations by Type")
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "71.4%")
	assert.NotContains(t, out, " B ")
	assert.Contains(t, out, "7 weak pointers")
}

func TestRenderTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTSV, track.OrderByName, &buf).Render(sample()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"TYPE\tCOUNT", "A\t5", "B\t1", "null\t2"}, lines)
}

func TestLimitKeepsLargestCountsInNameOrder(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatTSV, track.OrderByName, &buf)
	f.SetLimit(2)
	require.NoError(t, f.Render(sample()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"TYPE\tCOUNT", "A\t5", "null\t2"}, lines)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TABLE")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestTrendTracker(t *testing.T) {
	tr := NewTrendTracker(3)
	tr.Observe([]track.Entry{{Key: "A", Count: 10}})
	assert.Empty(t, tr.Sparkline("A"))

	tr.Observe([]track.Entry{{Key: "A", Count: 10}})
	tr.Observe([]track.Entry{{Key: "A", Count: 17}})
	tr.Observe([]track.Entry{{Key: "A", Count: 31}})
	assert.Equal(t, "▁▄█", tr.Sparkline("A"))

	// reset on the remote side
	tr.Observe(nil)
	tr.Observe([]track.Entry{{Key: "A", Count: 14}})
	assert.Equal(t, "█▁█", tr.Sparkline("A"))
}

func TestRenderSparklineFlat(t *testing.T) {
	assert.Equal(t, "▁▁▁", renderSparkline([]float64{0, 0, 0}))
	assert.Equal(t, "", renderSparkline(nil))
}

func TestHasDecorations(t *testing.T) {
	f := NewFormatter(FormatText, track.OrderByName, &bytes.Buffer{})
	assert.False(t, f.HasDecorations())
	f.SetLimit(3)
	assert.True(t, f.HasDecorations())
}
