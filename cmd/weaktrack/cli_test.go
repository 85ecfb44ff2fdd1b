package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/weaktrack/pkg/baseline"
	"github.com/danpilch/weaktrack/pkg/mgmt"
	"github.com/danpilch/weaktrack/pkg/track"
)

func startEndpoint(t *testing.T) (string, *track.Managed) {
	t.Helper()
	s := mgmt.NewServer(nil, nil)
	m := track.NewManaged(track.DefaultConfig(), nil, nil)
	require.NoError(t, s.Register("weak:type=Pointer", m))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL, m
}

func run(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--addr", addr}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusAndInterval(t *testing.T) {
	addr, m := startEndpoint(t)

	out, err := run(t, addr, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "enabled: true")
	assert.Contains(t, out, "stackdump interval: 100")

	out, err = run(t, addr, "interval", "--", "-5")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
	assert.Equal(t, 1, m.StackdumpInterval())

	_, err = run(t, addr, "interval", "abc")
	assert.Error(t, err)
}

func TestEnableDisableToggle(t *testing.T) {
	addr, m := startEndpoint(t)

	out, err := run(t, addr, "disable")
	require.NoError(t, err)
	assert.Equal(t, "enabled: false\n", out)
	assert.False(t, m.IsEnabled())

	out, err = run(t, addr, "toggle")
	require.NoError(t, err)
	assert.Equal(t, "enabled: true\n", out)

	_, err = run(t, addr, "enable")
	require.NoError(t, err)
	assert.True(t, m.IsEnabled())
}

func TestDumpAndReset(t *testing.T) {
	addr, m := startEndpoint(t)
	m.Record("X")
	m.Record("Y")
	m.Record("Y")
	m.Record("Y")

	out, err := run(t, addr, "dump", "--by", "count")
	require.NoError(t, err)
	assert.Equal(t, "1 -> X"+track.LineSeparator+"3 -> Y"+track.LineSeparator, out)

	out, err = run(t, addr, "dump", "--format", "tsv", "--top", "1")
	require.NoError(t, err)
	assert.Equal(t, "TYPE\tCOUNT\nY\t3\n", out)

	_, err = run(t, addr, "reset")
	require.NoError(t, err)
	out, err = run(t, addr, "dump")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, addr, "dump", "--by", "size")
	assert.Error(t, err)
}

func TestBaselineSaveCompare(t *testing.T) {
	addr, m := startEndpoint(t)
	dir := t.TempDir()
	m.Record("T")

	out, err := run(t, addr, "baseline", "save", "first", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `saved baseline "first" (1 types)`)

	saved, err := baseline.Load("first", dir)
	require.NoError(t, err)
	assert.Equal(t, "true", saved.Metadata[baseline.MetaEnabled])
	assert.Equal(t, "100", saved.Metadata[baseline.MetaStackdumpInterval])

	out, err = run(t, addr, "baseline", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "first\n", out)

	for i := 0; i < 3; i++ {
		m.Record("T")
	}
	out, err = run(t, addr, "baseline", "compare", "first", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "REGRESSION")
}
