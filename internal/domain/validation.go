package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxQueryLength = 200
	MaxPage        = 1000
)

// queryStripChars are removed from search text before it leaves the process
const queryStripChars = "<>\"';&|`$"

// ValidateSearchQuery checks and sanitizes free text search input
func ValidateSearchQuery(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: search query must not be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return "", fmt.Errorf("%w: search query longer than %d characters", ErrInvalidInput, MaxQueryLength)
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(queryStripChars, r) {
			return -1
		}
		return r
	}, query)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", fmt.Errorf("%w: search query has no searchable characters", ErrInvalidInput)
	}
	return cleaned, nil
}

// ValidatePage checks a 1-based result page number
func ValidatePage(page int) error {
	if page < 1 || page > MaxPage {
		return fmt.Errorf("%w: page %d out of range 1-%d", ErrInvalidInput, page, MaxPage)
	}
	return nil
}

// ValidateMediaID checks a catalog identifier
func ValidateMediaID(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: media id must be positive, got %d", ErrInvalidInput, id)
	}
	return nil
}

// ValidateRequestType checks that t names a single requestable type
func ValidateRequestType(t MediaType) error {
	if t != MediaTypeMovie && t != MediaTypeTV {
		return fmt.Errorf("%w: media type must be movie or tv, got %s", ErrInvalidInput, t)
	}
	return nil
}

// ParseMediaType converts a wire name into a MediaType
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaTypeMovie, nil
	case "tv":
		return MediaTypeTV, nil
	default:
		return 0, fmt.Errorf("%w: unknown media type %q", ErrInvalidInput, s)
	}
}
