package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrInvalidInput indicates a parameter was rejected before any request was sent
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch indicates a remote call failed for a reason other than those below
	ErrFetch = errors.New("fetch failed")

	// ErrServerOffline indicates the request server is unreachable
	ErrServerOffline = errors.New("request server is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("authentication failed - check API key")

	// ErrRateLimited indicates the local request budget is exhausted
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnexpectedStatus indicates a non-success HTTP status that is not retried
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrPayloadTooLarge indicates an image exceeded the download size limit
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrDecode indicates fetched bytes could not be decoded
	ErrDecode = errors.New("decode failed")

	// ErrCapacityViolation marks a broken cache invariant; it is raised by panic, never returned
	ErrCapacityViolation = errors.New("cache capacity exceeded")
)

// IsFetchError reports whether err belongs to the fetch failure family
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrServerOffline) ||
		errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnexpectedStatus) ||
		errors.Is(err, ErrPayloadTooLarge)
}
