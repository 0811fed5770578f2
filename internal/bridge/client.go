package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mooselabs/unitymcp/internal/clog"
	"github.com/mooselabs/unitymcp/internal/command"
)

// Client sends commands to a running bridge.
//
// The editor restarts the bridge across domain reloads and play mode
// transitions, so a refused connection is often transient. Call retries
// transport failures for a bounded window before giving up; envelope-level
// errors are never retried.
type Client struct {
	// BaseURL is the base URL of the bridge (e.g., "http://127.0.0.1:6405").
	BaseURL string

	// HTTPClient is the HTTP client used for requests.
	// If nil, a default client with a 10-second timeout is used.
	HTTPClient *http.Client

	// RetryWindow bounds how long transport failures are retried.
	// Zero means a single attempt.
	RetryWindow time.Duration

	// RetryInterval is the pause between retry attempts.
	RetryInterval time.Duration
}

// NewClient creates a bridge client for the given host:port.
func NewClient(addr string) *Client {
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", DefaultPort)
	}
	return &Client{
		BaseURL: fmt.Sprintf("http://%s", addr),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		RetryWindow:   15 * time.Second,
		RetryInterval: 500 * time.Millisecond,
	}
}

// Call sends a command to a tool and returns the response envelope. The
// action travels inside params like any other field.
func (c *Client) Call(ctx context.Context, tool string, params command.Params) (command.Response, error) {
	if params == nil {
		params = command.Params{}
	}

	var resp command.Response
	err := c.withRetry(ctx, func() error {
		return c.doRequest(ctx, http.MethodPost, "/command/"+tool, params, &resp)
	})
	if err != nil {
		return command.Response{}, err
	}
	return resp, nil
}

// Health probes whether the bridge is reachable, without retrying.
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// withRetry runs fn, retrying transport errors until the retry window
// closes or ctx is done.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	deadline := time.Now().Add(c.RetryWindow)
	for {
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return err
		}
		clog.Debug("bridge request failed, retrying: %v", err)
		interval := c.RetryInterval
		if interval <= 0 {
			interval = 500 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// doRequest executes one HTTP request and optionally decodes the response.
// If body is not nil, it's JSON-encoded and sent as the request body.
// If result is not nil, the response body is JSON-decoded into it.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The bridge answers every dispatched command with 200; other codes
	// carry an error envelope from the transport layer itself.
	if resp.StatusCode != http.StatusOK {
		var errResp command.Response
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
