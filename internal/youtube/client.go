// Package youtube is a minimal YouTube Data API v3 client covering the three
// list calls the dashboard composes: search, videos and channels.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/runger/tubedash/internal/sanitize"
)

const (
	// DefaultBaseURL is the public Data API v3 endpoint.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// PageSize is the fixed number of results requested from search.list.
	PageSize = 25

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 64 * 1024
)

// Operation names used in errors and logs.
const (
	OpSearch   = "search.list"
	OpVideos   = "videos.list"
	OpChannels = "channels.list"
)

// Client issues Data API requests. It never retries; callers decide what a
// failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchParams are the inputs to search.list.
type SearchParams struct {
	APIKey         string
	Query          string
	Order          Order
	PublishedAfter string // RFC 3339; empty to omit
}

// Search runs search.list for videos matching the query.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("key", p.APIKey)
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(PageSize))
	params.Set("q", p.Query)
	params.Set("order", string(p.Order))
	if p.PublishedAfter != "" {
		params.Set("publishedAfter", p.PublishedAfter)
	}

	var resp searchResponse
	if err := c.get(ctx, OpSearch, "/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Videos runs videos.list for the given ids in one batched request.
func (c *Client) Videos(ctx context.Context, apiKey string, ids []string) ([]VideoDetail, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))

	var resp videosResponse
	if err := c.get(ctx, OpVideos, "/videos", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Channels runs channels.list (statistics part) for the given ids.
func (c *Client) Channels(ctx context.Context, apiKey string, ids []string) ([]ChannelStat, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("part", "statistics")
	params.Set("id", strings.Join(ids, ","))

	var resp channelsResponse
	if err := c.get(ctx, OpChannels, "/channels", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// get performs one GET and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit wait: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors embed the request URL, key included.
		return fmt.Errorf("%s: %w", op, sanitize.DefaultSanitizer.WithLiteral(params.Get("key")).URLError(err))
	}
	defer resp.Body.Close()

	c.logger.Debug("youtube request",
		"op", op,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newUpstreamError(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// apiErrorBody is the Data API error envelope.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newUpstreamError(op string, resp *http.Response) *UpstreamError {
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil {
		var parsed apiErrorBody
		if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
	}
	return &UpstreamError{Op: op, Status: resp.StatusCode, Message: msg}
}
