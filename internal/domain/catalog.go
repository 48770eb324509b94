package domain

import "context"

// Catalog is the remote media service as seen by the interaction engine.
// Every call may block on the network and must only be made off the render loop.
type Catalog interface {
	// SearchByQuery returns titles of the given type matching text
	SearchByQuery(ctx context.Context, mediaType MediaType, text string, page int) ([]MediaSummary, error)

	// ListPopular returns popular titles. MediaTypeAll lists movies followed by TV.
	ListPopular(ctx context.Context, mediaType MediaType, page int) ([]MediaSummary, error)

	// SubmitRequest asks the server to acquire a title
	SubmitRequest(ctx context.Context, mediaID int, mediaType MediaType) error

	// FetchImageBytes downloads raw image data, bounded by a size limit
	FetchImageBytes(ctx context.Context, url string) ([]byte, error)
}

// PosterResolver turns a relative poster path into a fetchable URL.
// It returns "" for paths that fail validation.
type PosterResolver interface {
	PosterURL(path string) string
}
