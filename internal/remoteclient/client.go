// Package remoteclient implements the client side of the remote wire
// protocol: existence probes and block/manifest upload/download, with a
// bounded retry policy for transient failures.
package remoteclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"shard/internal/shardfs"
)

// Client talks to a Shard remote server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	apiKey     string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries overrides the default bounded retry count for transient
// failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithAPIKey attaches a bearer token to mutating requests, matching an
// optionally-configured remoteserver.WithAPIKey deployment.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New builds a Client against baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasBlock probes for a block's existence via HEAD.
func (c *Client) HasBlock(ctx context.Context, id string) (bool, error) {
	return c.has(ctx, "/blocks/"+id)
}

// HasManifest probes for a manifest's existence via HEAD.
func (c *Client) HasManifest(ctx context.Context, id string) (bool, error) {
	return c.has(ctx, "/manifests/"+id)
}

func (c *Client) has(ctx context.Context, path string) (bool, error) {
	resp, err := c.doWithRetry(ctx, http.MethodHead, path, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// UploadBlock PUTs compressed block bytes under id. Idempotent on the
// server side.
func (c *Client) UploadBlock(ctx context.Context, id string, data []byte) error {
	return c.put(ctx, "/blocks/"+id, data)
}

// UploadManifest PUTs serialized manifest bytes under id.
func (c *Client) UploadManifest(ctx context.Context, id string, data []byte) error {
	return c.put(ctx, "/manifests/"+id, data)
}

func (c *Client) put(ctx context.Context, path string, data []byte) error {
	resp, err := c.doWithRetry(ctx, http.MethodPut, path, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return shardfs.RemoteError(fmt.Sprintf("PUT %s: status %d", path, resp.StatusCode), nil)
	}
	return nil
}

// DownloadBlock GETs compressed block bytes for id.
func (c *Client) DownloadBlock(ctx context.Context, id string) ([]byte, error) {
	return c.get(ctx, "/blocks/"+id, id)
}

// DownloadManifest GETs serialized manifest bytes for id.
func (c *Client) DownloadManifest(ctx context.Context, id string) ([]byte, error) {
	return c.get(ctx, "/manifests/"+id, id)
}

func (c *Client) get(ctx context.Context, path, id string) ([]byte, error) {
	resp, err := c.doWithRetry(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, shardfs.NotFound(id)
	}
	if resp.StatusCode/100 != 2 {
		return nil, shardfs.RemoteError(fmt.Sprintf("GET %s: status %d", path, resp.StatusCode), nil)
	}
	return io.ReadAll(resp.Body)
}

// doWithRetry executes one request, retrying transient failures (connect
// errors, timeouts, 5xx) up to maxRetries times with exponential backoff.
// Permanent failures (404 on GET, 4xx on PUT) are returned immediately
// without consuming a retry.
func (c *Client) doWithRetry(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, shardfs.RemoteError("request cancelled during backoff", ctx.Err())
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, shardfs.RemoteError("build request", err)
		}
		if c.apiKey != "" && method == http.MethodPut {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = shardfs.RemoteError("transport error", err)
			continue // connect/timeout errors are transient
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = shardfs.RemoteError(fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode), nil)
			continue
		}
		// 2xx, 3xx, and non-5xx 4xx (permanent) all return immediately.
		return resp, nil
	}
	return nil, lastErr
}
