package domain

// ImageStore persists downloaded poster bytes between runs.
// Decoded images never go here; that is the in-memory cache's job.
type ImageStore interface {
	GetImage(url string) ([]byte, bool)
	SaveImage(url string, data []byte) error

	// Prune keeps at most maxEntries images, dropping the oldest first
	Prune(maxEntries int) (int, error)

	Close() error
}
