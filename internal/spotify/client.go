// Package spotify fetches catalog metadata from the Spotify Web API
// "several items" endpoints.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Web API host; paths are appended as /v1/<kind>.
	DefaultBaseURL = "https://api.spotify.com"

	// DefaultTimeout bounds a single batch request.
	DefaultTimeout = 30 * time.Second

	userAgent = "spotify-history-warehouse/1.0"
)

// ErrEmptyIDs is returned when a fetch is attempted with no ids.
var ErrEmptyIDs = errors.New("no ids to fetch")

// Fetcher retrieves one page of catalog objects for a comma-joined id list.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, ids string) ([]byte, error)
}

// Client is a Fetcher backed by the Web API.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, e.g. for tests. Empty keeps the default.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.http.SetBaseURL(url)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRateLimit paces requests to at most rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// New creates a Client. httpClient should already attach the bearer token
// (see NewHTTPClient).
func New(httpClient *http.Client, opts ...Option) *Client {
	r := resty.NewWithClient(httpClient).
		SetBaseURL(DefaultBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	r.JSONMarshal = json.Marshal
	r.JSONUnmarshal = json.Unmarshal

	c := &Client{http: r}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the Web API error envelope.
type errorBody struct {
	Error spotify.Error `json:"error"`
}

// Fetch performs GET /v1/<kind>?ids=<ids> and returns the raw response body.
// A non-2xx response is returned as a *spotify.Error.
func (c *Client) Fetch(ctx context.Context, kind Kind, ids string) ([]byte, error) {
	if ids == "" {
		return nil, ErrEmptyIDs
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", ids).
		SetError(&errorBody{}).
		Get("/v1/" + kind.Path())
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", kind, err)
	}

	if !resp.IsSuccess() {
		return nil, apiError(resp)
	}
	return resp.Body(), nil
}

// apiError converts a failed response into a *spotify.Error.
func apiError(resp *resty.Response) error {
	apiErr := &spotify.Error{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body.Error.Message != "" {
		apiErr.Message = body.Error.Message
	} else {
		// Error bodies without a JSON content type are not parsed by resty.
		var fallback errorBody
		if json.Unmarshal(resp.Body(), &fallback) == nil && fallback.Error.Message != "" {
			apiErr.Message = fallback.Error.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
	}
	return apiErr
}
