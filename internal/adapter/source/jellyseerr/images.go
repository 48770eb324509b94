package jellyseerr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/seerrpad/internal/domain"
)

const (
	// DefaultImageBaseURL serves TMDB posters referenced by the API
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	// DefaultPosterSize is used when the configured size is not recognised
	DefaultPosterSize = "w500"
	// DefaultMaxImageBytes caps a single poster download
	DefaultMaxImageBytes int64 = 5 * 1024 * 1024
)

var posterSizes = map[string]bool{
	"w92": true, "w154": true, "w185": true, "w342": true,
	"w500": true, "w780": true, "original": true,
}

// ValidPosterSize reports whether size is a TMDB poster size
func ValidPosterSize(size string) bool {
	return posterSizes[size]
}

// PosterURL builds the image URL for a poster path. Paths must be absolute
// and may not contain traversal sequences; invalid paths yield "".
func (c *Client) PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "..") || strings.Contains(path, "//") {
		c.logger.Warn("rejecting poster path", "path", path)
		return ""
	}
	if !posterSizes[size] {
		if size != "" {
			c.logger.Warn("invalid image size, using default", "size", size, "default", DefaultPosterSize)
		}
		size = DefaultPosterSize
	}
	return c.imageBaseURL + "/" + size + path
}

// FetchImage downloads an image, refusing anything over the size cap.
// The API key is never sent to the image host.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := c.fetchImageOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		c.logger.Debug("image download failed, retrying", "url", imageURL, "attempt", attempt, "error", err)
	}
	c.logger.Warn("image download failed", "url", imageURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) fetchImageOnce(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image url: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: image server error %d", domain.ErrFetch, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}

	if resp.ContentLength > c.maxImage {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrPayloadTooLarge, resp.ContentLength, c.maxImage)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImage+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading image: %v", domain.ErrFetch, err)
	}
	if int64(len(data)) > c.maxImage {
		return nil, fmt.Errorf("%w: exceeded %d bytes during download", domain.ErrPayloadTooLarge, c.maxImage)
	}
	return data, nil
}
