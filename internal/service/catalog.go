package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// DefaultPerTypeLimit caps each media type in a mixed popular listing
const DefaultPerTypeLimit = 10

// CatalogClient is the subset of the Jellyseerr client the service needs
type CatalogClient interface {
	Search(ctx context.Context, mediaType domain.MediaType, query string, page int) ([]domain.MediaSummary, error)
	Discover(ctx context.Context, mediaType domain.MediaType, page int) ([]domain.MediaSummary, error)
	Request(ctx context.Context, mediaID int, mediaType domain.MediaType) error
	FetchImage(ctx context.Context, url string) ([]byte, error)
	PosterURL(path, size string) string
}

// CatalogService implements domain.Catalog on top of the request server.
// It validates input, ranks search hits and reads posters through the
// optional disk store.
type CatalogService struct {
	client       CatalogClient
	images       domain.ImageStore
	perTypeLimit int
	posterSize   string
	logger       *slog.Logger
}

// CatalogOptions tune a CatalogService
type CatalogOptions struct {
	PerTypeLimit int
	PosterSize   string
}

// NewCatalogService creates the catalog. images may be nil.
func NewCatalogService(client CatalogClient, images domain.ImageStore, opts CatalogOptions, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PerTypeLimit <= 0 {
		opts.PerTypeLimit = DefaultPerTypeLimit
	}
	return &CatalogService{
		client:       client,
		images:       images,
		perTypeLimit: opts.PerTypeLimit,
		posterSize:   opts.PosterSize,
		logger:       logger,
	}
}

var _ domain.Catalog = (*CatalogService)(nil)
var _ domain.PosterResolver = (*CatalogService)(nil)

// SearchByQuery searches for titles of one type and ranks them by title match
func (s *CatalogService) SearchByQuery(ctx context.Context, mediaType domain.MediaType, text string, page int) ([]domain.MediaSummary, error) {
	query, err := domain.ValidateSearchQuery(text)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePage(page); err != nil {
		return nil, err
	}
	if err := domain.ValidateRequestType(mediaType); err != nil {
		return nil, err
	}

	s.logger.Debug("searching", "query", query, "type", mediaType, "page", page)

	items, err := s.client.Search(ctx, mediaType, query, page)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	ranked := RankByTitle(items, query)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// ListPopular returns popular titles. For MediaTypeAll movies and TV are
// fetched concurrently and each capped; one side failing still yields the other.
func (s *CatalogService) ListPopular(ctx context.Context, mediaType domain.MediaType, page int) ([]domain.MediaSummary, error) {
	if err := domain.ValidatePage(page); err != nil {
		return nil, err
	}

	if mediaType != domain.MediaTypeAll {
		if err := domain.ValidateRequestType(mediaType); err != nil {
			return nil, err
		}
		items, err := s.client.Discover(ctx, mediaType, page)
		if err != nil {
			return nil, fmt.Errorf("popular %s: %w", mediaType, err)
		}
		return capItems(items, s.perTypeLimit), nil
	}

	var (
		movies, shows     []domain.MediaSummary
		movieErr, showErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, movieErr = s.client.Discover(gctx, domain.MediaTypeMovie, page)
		return nil
	})
	g.Go(func() error {
		shows, showErr = s.client.Discover(gctx, domain.MediaTypeTV, page)
		return nil
	})
	g.Wait()

	if movieErr != nil && showErr != nil {
		return nil, fmt.Errorf("popular: %w", errors.Join(movieErr, showErr))
	}
	if movieErr != nil {
		s.logger.Warn("popular movies failed, showing tv only", "error", movieErr)
	}
	if showErr != nil {
		s.logger.Warn("popular tv failed, showing movies only", "error", showErr)
	}

	combined := make([]domain.MediaSummary, 0, 2*s.perTypeLimit)
	combined = append(combined, capItems(movies, s.perTypeLimit)...)
	combined = append(combined, capItems(shows, s.perTypeLimit)...)
	return combined, nil
}

// SubmitRequest validates and submits a request
func (s *CatalogService) SubmitRequest(ctx context.Context, mediaID int, mediaType domain.MediaType) error {
	if err := domain.ValidateMediaID(mediaID); err != nil {
		return err
	}
	if err := domain.ValidateRequestType(mediaType); err != nil {
		return err
	}
	if err := s.client.Request(ctx, mediaID, mediaType); err != nil {
		return fmt.Errorf("request %s %d: %w", mediaType, mediaID, err)
	}
	return nil
}

// FetchImageBytes returns poster bytes from the disk store or the network
func (s *CatalogService) FetchImageBytes(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image url", domain.ErrInvalidInput)
	}

	if s.images != nil {
		if data, ok := s.images.GetImage(url); ok {
			return data, nil
		}
	}

	data, err := s.client.FetchImage(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.images != nil {
		if err := s.images.SaveImage(url, data); err != nil {
			s.logger.Warn("failed to store image", "url", url, "error", err)
		}
	}
	return data, nil
}

// PosterURL resolves a poster path at the configured size
func (s *CatalogService) PosterURL(path string) string {
	return s.client.PosterURL(path, s.posterSize)
}

func capItems(items []domain.MediaSummary, limit int) []domain.MediaSummary {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
