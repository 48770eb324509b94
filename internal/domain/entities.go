package domain

import (
	"fmt"
	"strings"
)

// MediaType distinguishes requestable content types
type MediaType int

const (
	MediaTypeMovie MediaType = iota
	MediaTypeTV
	// MediaTypeAll is only meaningful for listings that span both types
	MediaTypeAll
)

// String returns the wire name used by the request server
func (t MediaType) String() string {
	switch t {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeTV:
		return "tv"
	case MediaTypeAll:
		return "all"
	default:
		return fmt.Sprintf("MediaType(%d)", int(t))
	}
}

// Label returns the short tag shown next to titles in mixed lists
func (t MediaType) Label() string {
	return strings.ToUpper(t.String())
}

// MediaSummary is a catalog entry as returned by search and discovery.
// Values are immutable once built.
type MediaSummary struct {
	ID          int       // Catalog (TMDB) identifier
	Type        MediaType // Movie or TV
	Title       string    // Display title
	PosterPath  string    // Relative poster path, empty when the catalog has none
	ReleaseDate string    // ISO date or empty
	VoteAverage float64   // 0-10 community rating
	Overview    string    // Plot synopsis
}

// Year returns the four digit release year, or "" when unknown
func (m MediaSummary) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// Release returns the date portion of ReleaseDate, or "Unknown"
func (m MediaSummary) Release() string {
	if m.ReleaseDate == "" {
		return "Unknown"
	}
	if len(m.ReleaseDate) > 10 {
		return m.ReleaseDate[:10]
	}
	return m.ReleaseDate
}

// HasPoster reports whether the item carries poster art
func (m MediaSummary) HasPoster() bool {
	return m.PosterPath != ""
}
