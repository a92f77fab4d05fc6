// Package upstream is the HTTP client for the course platform API. The
// gateway holds no state of its own: every catalog read, purchase and
// conversation mirror ends up here.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError is a response the platform did answer, with a non-2xx code.
// Transport failures (no response at all) surface as ordinary wrapped
// errors instead.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream replied %d: %s", e.Code, e.Body)
}

// Status unwraps the platform status code from an error, if there is one.
func Status(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

type Client struct {
	host   string
	client *http.Client
}

func New(host string, timeout time.Duration) *Client {
	return &Client{
		host:   host,
		client: &http.Client{Timeout: timeout},
	}
}

// Get fetches a resource, decoding the body into out when out is non-nil.
func (c *Client) Get(ctx context.Context, path string, bearer string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, bearer, nil, out)
}

// Post sends a JSON body, decoding the response into out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, bearer string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, bearer, body, out)
}

func (c *Client) do(ctx context.Context, method string, path string, bearer string, body interface{}, out interface{}) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &StatusError{Code: res.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}

	return nil
}
