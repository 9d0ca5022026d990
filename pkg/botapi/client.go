// Package botapi is a thin HTTP client for the Telegram Bot API.
//
// A Client performs one logical call per Call invocation. Non-2xx responses
// become *APIError; a 429 carrying retry_after is retried exactly once after
// the requested wait. Network failures surface as *TransportError.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the public Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 10 << 20 // 10 MiB
)

// Params is the parameter mapping of a Bot API call.
type Params map[string]any

// Client calls the Bot API on behalf of one bot token.
type Client struct {
	token    string
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	observer Observer

	// sleep waits before the rate-limit retry. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (e.g. a local Bot API server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client's own
// timeout takes precedence over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithObserver installs a hook that sees every HTTP attempt.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a Bot API client for token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	return c
}

// Token returns the bot token.
func (c *Client) Token() string { return c.token }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// endpoint joins base URL, token segment and method. The method is not
// validated; an empty method yields a URL ending in "/".
func (c *Client) endpoint(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// outcome is the result of one HTTP attempt that produced a response:
// exactly one of resp and apiErr is set.
type outcome struct {
	resp   *Response
	apiErr *APIError
}

// Call POSTs params as JSON to the given method.
//
// Any 2xx response is returned as decoded, including envelopes with
// ok=false. A 429 carrying parameters.retry_after is retried once after
// waiting that many seconds; if the retry also fails, the returned
// *APIError describes the retry, not the first response.
func (c *Client) Call(ctx context.Context, method string, params Params) (*Response, error) {
	if params == nil {
		params = Params{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("botapi: marshal %s request: %w", method, err)
	}

	out, err := c.post(ctx, method, "application/json", body, 1)
	if err != nil {
		return nil, err
	}
	if out.apiErr == nil {
		return out.resp, nil
	}

	wait, retry := out.apiErr.retryDelay()
	if !retry {
		return nil, out.apiErr
	}
	if err := c.sleep(ctx, wait); err != nil {
		return nil, err
	}

	out, err = c.post(ctx, method, "application/json", body, 2)
	if err != nil {
		return nil, err
	}
	if out.apiErr != nil {
		return nil, out.apiErr
	}
	return out.resp, nil
}

// CallSilent performs Call and reports only whether it succeeded. It never
// returns or panics on API or network failures.
func (c *Client) CallSilent(ctx context.Context, method string, params Params) bool {
	_, err := c.Call(ctx, method, params)
	return err == nil
}

// post performs a single HTTP attempt. A returned error means no response
// was obtained (or a 2xx body could not be decoded).
func (c *Client) post(ctx context.Context, method, contentType string, body []byte, attempt int) (out outcome, err error) {
	ctx, finish := c.observer.StartCall(ctx, method)
	start := time.Now()
	status := 0
	defer func() {
		ev := CallEvent{
			Method:     method,
			Attempt:    attempt,
			StatusCode: status,
			Duration:   time.Since(start),
			Err:        err,
		}
		if out.apiErr != nil {
			ev.Err = out.apiErr
		}
		finish(ev)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return outcome{}, fmt.Errorf("botapi: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return outcome{}, &TransportError{Method: method, Err: err, token: c.token}
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return outcome{}, &TransportError{Method: method, Err: err, token: c.token}
	}
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return outcome{apiErr: newAPIError(method, resp.StatusCode, respBody)}, nil
	}

	var env Response
	if err := json.Unmarshal(respBody, &env); err != nil {
		return outcome{}, fmt.Errorf("%w: %s: %v", ErrDecode, method, err)
	}
	return outcome{resp: &env}, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
