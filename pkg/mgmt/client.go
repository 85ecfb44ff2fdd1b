package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danpilch/weaktrack/pkg/track"
)

// Client invokes a remote bean's attributes and operations over HTTP.
type Client struct {
	base string
	name string
	http *http.Client
}

// NewClient creates a client for the bean registered as name at addr
// (host:port or a full http URL).
func NewClient(addr, name string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		base: strings.TrimRight(addr, "/"),
		name: name,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Attributes fetches all readable attributes.
func (c *Client) Attributes(ctx context.Context) (Attributes, error) {
	var attrs Attributes
	err := c.do(ctx, http.MethodGet, c.beanPath(), nil, &attrs)
	return attrs, err
}

// SetEnabled sets the enabled attribute and returns the stored value.
func (c *Client) SetEnabled(ctx context.Context, flag bool) (bool, error) {
	var got bool
	err := c.do(ctx, http.MethodPut, c.beanPath("attributes", AttrEnabled), flag, &got)
	return got, err
}

// SetStackdumpInterval sets the interval and returns the stored (clamped) value.
func (c *Client) SetStackdumpInterval(ctx context.Context, interval int) (int, error) {
	var got int
	err := c.do(ctx, http.MethodPut, c.beanPath("attributes", AttrStackdumpInterval), interval, &got)
	return got, err
}

// ToggleEnabled flips the enabled flag and returns the new value.
func (c *Client) ToggleEnabled(ctx context.Context) (bool, error) {
	var got bool
	err := c.do(ctx, http.MethodPost, c.beanPath("operations", OpToggleEnabled), nil, &got)
	return got, err
}

// Reset clears the remote counts.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.beanPath("operations", OpReset), nil, nil)
}

// Dump returns the remote text report in the given order.
func (c *Client) Dump(ctx context.Context, order track.Order) (string, error) {
	op := OpDumpByName
	if order == track.OrderByCount {
		op = OpDumpByCount
	}
	var text string
	err := c.do(ctx, http.MethodPost, c.beanPath("operations", op), nil, &text)
	return text, err
}

// Entries fetches a snapshot of the remote counts.
func (c *Client) Entries(ctx context.Context) ([]track.Entry, error) {
	var entries []track.Entry
	err := c.do(ctx, http.MethodGet, c.beanPath("entries"), nil, &entries)
	return entries, err
}

// Names lists the beans registered on the remote server.
func (c *Client) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := c.do(ctx, http.MethodGet, "/beans", nil, &names)
	return names, err
}

func (c *Client) beanPath(parts ...string) string {
	p := "/beans/" + url.PathEscape(c.name)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// do sends a request and decodes the response into out. A *string out
// receives the raw text body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, eb.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *string:
		*v = string(data)
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
