package curseforge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	apiKeyHeader     = "x-api-key"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "curseforge-mod-updater/dev"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds optional client settings. Zero values select defaults.
type Config struct {
	// BaseURL overrides the API root, mainly for tests.
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient Doer
	Logger     *zap.SugaredLogger
}

// Client handles communication with the CurseForge API.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	httpClient Doer
	log        *zap.SugaredLogger
}

// NewClient creates a client that authenticates with apiKey. cfg may be nil.
func NewClient(apiKey string, cfg *Config) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg == nil {
		cfg = &Config{}
	}

	c := &Client{
		baseURL:    apiBaseURL,
		apiKey:     apiKey,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
		log:        cfg.Logger,
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, &URLBuildError{Segments: []string{cfg.BaseURL}, Err: err}
		}
		c.baseURL = u
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return c, nil
}

// endpoint builds a URL below the API root.
func (c *Client) endpoint(query string, segments ...string) (*url.URL, error) {
	return buildURL(c.baseURL, query, segments...)
}

// makeRequest sends the request and returns the body of a 2xx response.
// Any other status is a *RequestError carrying the raw body.
func (c *Client) makeRequest(ctx context.Context, method string, u *url.URL, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debugw("curseforge API request", "method", method, "url", u.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The body is diagnostic only; a short read still reports the status.
		return nil, &RequestError{Method: method, URL: u.String(), StatusCode: resp.StatusCode, Body: respBody}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, nil
}

func get[T any](ctx context.Context, c *Client, u *url.URL) (T, *Pagination, error) {
	body, err := c.makeRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return decodeEnvelope[T](body)
}

func post[T any](ctx context.Context, c *Client, u *url.URL, payload any) (T, *Pagination, error) {
	body, err := c.makeRequest(ctx, http.MethodPost, u, payload)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return decodeEnvelope[T](body)
}
