package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/adapter/source/jellyseerr"
	"github.com/mmcdole/seerrpad/internal/service"
	"github.com/mmcdole/seerrpad/internal/store"
)

// Backend bundles everything built from the server section of the config.
// The catalog is what the kiosk consumes; the client stays exposed for the
// status check.
type Backend struct {
	Client  *jellyseerr.Client
	Store   *store.ImageStore
	Catalog *service.CatalogService
	logger  *slog.Logger
	maxDisk int
}

// NewBackend creates the Jellyseerr client, the optional poster store and
// the catalog service on top of them.
func NewBackend(cfg *adapter.Config, logger *slog.Logger) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	size := cfg.Cache.PosterSize
	if !jellyseerr.ValidPosterSize(size) {
		logger.Warn("unknown poster size, using default", "size", size, "default", jellyseerr.DefaultPosterSize)
		size = jellyseerr.DefaultPosterSize
	}

	client := jellyseerr.NewClient(cfg.Server.URL, cfg.Server.APIKey, jellyseerr.Options{
		Timeout:           cfg.Server.RequestTimeout,
		MaxRetries:        retries(cfg.Server.MaxRetries),
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
		MaxImageBytes:     cfg.Cache.MaxImageBytes,
	}, logger)

	images, err := store.NewImageStore(cfg.Cache.Dir, cfg.Server.URL)
	if err != nil {
		// The disk store only saves bandwidth; run without it
		logger.Warn("poster store unavailable, continuing without it", "dir", cfg.Cache.Dir, "error", err)
		images, _ = store.NewImageStore("", "")
	}

	catalog := service.NewCatalogService(client, images, service.CatalogOptions{
		PerTypeLimit: cfg.UI.MaxBrowsePerType,
		PosterSize:   size,
	}, logger)

	return &Backend{
		Client:  client,
		Store:   images,
		Catalog: catalog,
		logger:  logger,
		maxDisk: cfg.Cache.MaxDiskEntries,
	}, nil
}

// retries maps the config value onto client options, where zero means default
func retries(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

// Check asks the server for its status and returns the version string
func (b *Backend) Check(ctx context.Context) (string, error) {
	status, err := b.Client.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.Version, nil
}

// CallTimeout bounds one catalog call end to end, retries included
func (b *Backend) CallTimeout() time.Duration {
	return b.Client.CallBudget()
}

// Close prunes and closes the poster store
func (b *Backend) Close() error {
	var pruneErr error
	if b.Store.Enabled() && b.maxDisk > 0 {
		removed, err := b.Store.Prune(b.maxDisk)
		if err != nil {
			pruneErr = fmt.Errorf("prune poster store: %w", err)
		} else if removed > 0 {
			b.logger.Info("pruned poster store", "removed", removed)
		}
	}
	return errors.Join(pruneErr, b.Store.Close())
}
