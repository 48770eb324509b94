package jellyseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmcdole/seerrpad/internal/domain"
)

const (
	apiPrefix             = "/api/v1"
	defaultTimeout        = 5 * time.Second
	defaultMaxRetries     = 2
	defaultRetryDelay     = 500 * time.Millisecond
	defaultRequestsPerMin = 30
	userAgent             = "seerrpad/1.0"
)

// Options tune a Client. Zero values select defaults.
type Options struct {
	Timeout           time.Duration // per HTTP attempt
	MaxRetries        int           // extra attempts after the first
	RetryDelay        time.Duration // first backoff step, doubled each retry
	RequestsPerMinute int           // local budget for API calls, < 0 disables
	MaxImageBytes     int64         // poster download cap
	ImageBaseURL      string        // TMDB image host prefix
}

// Client talks to the Jellyseerr v1 API
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryDelay   time.Duration
	maxImage     int64
	imageBaseURL string
	logger       *slog.Logger
}

// NewClient creates a new Jellyseerr API client. baseURL is the server root,
// e.g. http://localhost:5055.
func NewClient(baseURL, apiKey string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = defaultRequestsPerMin
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = DefaultMaxImageBytes
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = DefaultImageBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if apiKey != "" && strings.HasPrefix(baseURL, "http://") {
		logger.Warn("using plain HTTP connection, API key is sent in cleartext", "url", baseURL)
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:      limiter,
		maxRetries:   opts.MaxRetries,
		retryDelay:   opts.RetryDelay,
		maxImage:     opts.MaxImageBytes,
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		logger:       logger,
	}
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CallBudget is the longest one API call can take: every attempt running to
// its timeout plus the backoff between them. Callers bounding a whole call
// should allow at least this much or retries never get a chance to run.
func (c *Client) CallBudget() time.Duration {
	budget := time.Duration(c.maxRetries+1) * c.httpClient.Timeout
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		budget += c.retryDelay * time.Duration(1<<(attempt-1))
	}
	return budget
}

// doRequest performs an authenticated request against the API.
// Network failures and 5xx responses are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "path", path)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		c.logger.Debug("jellyseerr request", "method", method, "path", path, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("jellyseerr request failed", "path", path, "attempt", attempt, "error", err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %v", domain.ErrFetch, err)
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.logger.Error("authentication failed, check API key", "status", resp.StatusCode)
			return nil, domain.ErrAuthFailed
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%w: server error %d", domain.ErrFetch, resp.StatusCode)
			c.logger.Warn("jellyseerr server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", c.maxRetries,
				"path", path,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.Error("jellyseerr request error", "status", resp.StatusCode, "path", path, "body", truncate(string(respBody), 200))
			return nil, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
		}

		return respBody, nil
	}

	c.logger.Error("jellyseerr request failed after retries", "error", lastErr, "path", path)
	return nil, lastErr
}

// allow spends one unit of the local request budget
func (c *Client) allow() error {
	if !c.limiter.Allow() {
		c.logger.Warn("local rate limit reached")
		return domain.ErrRateLimited
	}
	return nil
}

// Status checks connectivity and returns the server version
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/status", nil, nil)
	if err != nil {
		return nil, err
	}

	var status StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: failed to parse status: %v", domain.ErrDecode, err)
	}
	return &status, nil
}

// Search runs a multi-type search and keeps hits of mediaType
func (c *Client) Search(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]domain.MediaSummary, error) {
	if err := c.allow(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, http.MethodGet, "/search", q, nil)
	if err != nil {
		return nil, err
	}

	var resp PagedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse search response: %v", domain.ErrDecode, err)
	}

	items := MapResults(resp.Results, mediaType, domain.MediaTypeAll)
	c.logger.Info("search complete", "type", mediaType, "results", len(items), "raw", len(resp.Results))
	return items, nil
}

// Discover lists popular titles of a single type
func (c *Client) Discover(ctx context.Context, mediaType domain.MediaType, page int) ([]domain.MediaSummary, error) {
	var path string
	switch mediaType {
	case domain.MediaTypeMovie:
		path = "/discover/movies"
	case domain.MediaTypeTV:
		path = "/discover/tv"
	default:
		return nil, fmt.Errorf("%w: discover needs movie or tv, got %s", domain.ErrInvalidInput, mediaType)
	}

	if err := c.allow(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("sortBy", "popularity.desc")

	body, err := c.doRequest(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}

	var resp PagedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse discover response: %v", domain.ErrDecode, err)
	}

	items := MapResults(resp.Results, mediaType, mediaType)
	c.logger.Info("discover complete", "type", mediaType, "results", len(items))
	return items, nil
}

// Request asks the server to acquire a title. TV requests cover all seasons.
func (c *Client) Request(ctx context.Context, mediaID int, mediaType domain.MediaType) error {
	if err := c.allow(); err != nil {
		return err
	}

	reqBody := RequestBody{MediaID: mediaID, MediaType: mediaType.String()}
	if mediaType == domain.MediaTypeTV {
		reqBody.Seasons = "all"
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/request", nil, reqBody)
	if err != nil {
		return err
	}

	var resp RequestResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == 0 {
		// The server accepted the request; the body is informational
		c.logger.Warn("request submitted without confirmation", "media_id", mediaID, "type", mediaType)
		return nil
	}

	c.logger.Info("request submitted", "media_id", mediaID, "type", mediaType, "request_id", resp.ID)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isRetryable reports whether an image download error is worth another attempt
func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrServerOffline) || errors.Is(err, domain.ErrFetch)
}
