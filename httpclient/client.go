// Package httpclient is the thin JSON wrapper every backend call goes through.
// It builds URLs against the configured base, attaches the bearer session
// token and turns non-2xx responses into *APIError.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 8 << 20

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Tokens     TokenStore
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logrus.FieldLogger
	Metrics    *Metrics
}

// Client performs requests against the backend REST API.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
	log        logrus.FieldLogger
	metrics    *Metrics
}

// New creates a client. BaseURL is required; a nil token store means
// requests are never authenticated.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:     tokens,
		httpClient: httpClient,
		log:        log,
		metrics:    cfg.Metrics,
	}, nil
}

// BaseURL returns the configured base without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Tokens exposes the session token slot used for authorization.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// RequestOptions describes one call. Body may be an io.Reader, in which
// case it is sent untouched and the caller owns the content headers;
// anything else non-nil is JSON-encoded.
type RequestOptions struct {
	Method   string
	Body     any
	Headers  map[string]string
	SkipAuth bool
}

// RequestOption tweaks the options of a verb shorthand.
type RequestOption func(*RequestOptions)

// WithoutAuth sends the request without the bearer token.
func WithoutAuth() RequestOption {
	return func(o *RequestOptions) { o.SkipAuth = true }
}

// WithHeader adds a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// Request executes the call and returns the parsed response body.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	bodyReader, err := encodeBody(opts.Body, headers)
	if err != nil {
		return Body{}, err
	}

	if !opts.SkipAuth {
		token, err := c.tokens.Token()
		if err != nil {
			return Body{}, fmt.Errorf("failed to read session token: %w", err)
		}
		if token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bodyReader)
	if err != nil {
		return Body{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = headers

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		c.log.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Debug("backend request failed")
		return Body{}, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.observe(method, resp.StatusCode, elapsed)
	if err != nil {
		return Body{}, fmt.Errorf("read response body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": elapsed,
	}).Debug("backend request")

	body := parseBody(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (Body, error) {
	return c.Request(ctx, path, buildOptions(http.MethodGet, nil, opts))
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (Body, error) {
	return c.Request(ctx, path, buildOptions(http.MethodPost, body, opts))
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (Body, error) {
	return c.Request(ctx, path, buildOptions(http.MethodPut, body, opts))
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (Body, error) {
	return c.Request(ctx, path, buildOptions(http.MethodPatch, body, opts))
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (Body, error) {
	return c.Request(ctx, path, buildOptions(http.MethodDelete, nil, opts))
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func buildOptions(method string, body any, opts []RequestOption) RequestOptions {
	o := RequestOptions{Method: method, Body: body}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func encodeBody(body any, headers http.Header) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		headers.Set("Content-Type", "application/json")
		return bytes.NewReader(encoded), nil
	}
}
