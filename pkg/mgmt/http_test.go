package mgmt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpilch/weaktrack/pkg/track"
)

func newTestEndpoint(t *testing.T) (*Client, *track.Managed) {
	t.Helper()
	s := NewServer(nil, nil)
	m := track.NewManaged(track.Config{Enabled: true, StackdumpInterval: 100}, nil, nil)
	require.NoError(t, s.Register(testBean, m))

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, testBean), m
}

func TestClientAttributes(t *testing.T) {
	c, m := newTestEndpoint(t)
	ctx := context.Background()

	attrs, err := c.Attributes(ctx)
	require.NoError(t, err)
	assert.Equal(t, Attributes{Enabled: true, StackdumpInterval: 100}, attrs)

	got, err := c.SetStackdumpInterval(ctx, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, m.StackdumpInterval())

	enabled, err := c.SetEnabled(ctx, false)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, m.IsEnabled())

	enabled, err = c.ToggleEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.True(t, m.IsEnabled())
}

func TestClientDumpAndReset(t *testing.T) {
	c, m := newTestEndpoint(t)
	ctx := context.Background()
	m.Record("B")
	m.Record("A")
	m.Record("A")

	text, err := c.Dump(ctx, track.OrderByName)
	require.NoError(t, err)
	assert.Equal(t, "A -> 2"+track.LineSeparator+"B -> 1"+track.LineSeparator, text)

	text, err = c.Dump(ctx, track.OrderByCount)
	require.NoError(t, err)
	assert.Equal(t, "1 -> B"+track.LineSeparator+"2 -> A"+track.LineSeparator, text)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []track.Entry{{Key: "A", Count: 2}, {Key: "B", Count: 1}}, entries)

	require.NoError(t, c.Reset(ctx))
	text, err = c.Dump(ctx, track.OrderByName)
	require.NoError(t, err)
	assert.Empty(t, text)

	names, err := c.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testBean}, names)
}

func TestClientUnknownBean(t *testing.T) {
	c, _ := newTestEndpoint(t)
	c.name = "nope"
	_, err := c.Attributes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHandlerRejectsUnknownAttributeAndOperation(t *testing.T) {
	s := NewServer(nil, nil)
	require.NoError(t, s.Register(testBean, track.NewManaged(track.DefaultConfig(), nil, nil)))
	h := s.Handler()

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/beans/" + testBean + "/attributes/size", "", http.StatusNotFound},
		{http.MethodPut, "/beans/" + testBean + "/attributes/enabled", "maybe", http.StatusBadRequest},
		{http.MethodPut, "/beans/" + testBean + "/attributes/stackdumpInterval", `"x"`, http.StatusBadRequest},
		{http.MethodPost, "/beans/" + testBean + "/operations/explode", "", http.StatusNotFound},
		{http.MethodGet, "/beans/" + testBean + "/attributes/enabled", "", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	s := NewServer(nil, nil)
	m := track.NewManaged(track.DefaultConfig(), nil, nil)
	require.NoError(t, s.Register(testBean, m))
	m.Record("example.com/pkg.Foo")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `weaktrack_weak_pointers_total{bean="weak:type=Pointer",type="example.com/pkg.Foo"} 1`)
}

func TestListenAndServe(t *testing.T) {
	s := NewServer(nil, nil)
	require.NoError(t, s.Register(testBean, track.NewManaged(track.DefaultConfig(), nil, nil)))

	addr, stop, err := s.ListenAndServe("127.0.0.1:0")
	require.NoError(t, err)
	defer stop()
	<-s.Ready()

	attrs, err := NewClient(addr, testBean).Attributes(context.Background())
	require.NoError(t, err)
	assert.True(t, attrs.Enabled)
}

func TestListenAndServeStopIsIdempotent(t *testing.T) {
	s := NewServer(nil, nil)
	addr, stop, err := s.ListenAndServe("127.0.0.1:0")
	require.NoError(t, err)
	stop()
	stop()

	_, err = NewClient(addr, testBean).Names(context.Background())
	assert.Error(t, err)
}
