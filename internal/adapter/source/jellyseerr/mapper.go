package jellyseerr

import (
	"strings"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// MapResults converts API hits into summaries, keeping only valid items of
// the wanted type. Discover endpoints may omit mediaType, so fallback is
// assumed for those.
func MapResults(results []MediaResult, want domain.MediaType, fallback domain.MediaType) []domain.MediaSummary {
	items := make([]domain.MediaSummary, 0, len(results))
	for _, r := range results {
		item, ok := mapResult(r, fallback)
		if !ok {
			continue
		}
		if want != domain.MediaTypeAll && item.Type != want {
			continue
		}
		items = append(items, item)
	}
	return items
}

func mapResult(r MediaResult, fallback domain.MediaType) (domain.MediaSummary, bool) {
	if r.ID <= 0 {
		return domain.MediaSummary{}, false
	}

	mt := fallback
	if r.MediaType != "" {
		parsed, err := domain.ParseMediaType(r.MediaType)
		if err != nil {
			// "person" and anything else we cannot request
			return domain.MediaSummary{}, false
		}
		mt = parsed
	}
	if mt == domain.MediaTypeAll {
		return domain.MediaSummary{}, false
	}

	title := firstNonEmpty(r.Title, r.Name, r.OriginalName)
	if title == "" {
		title = "Unknown"
	}

	date := r.ReleaseDate
	if mt == domain.MediaTypeTV || date == "" {
		date = firstNonEmpty(r.FirstAirDate, r.ReleaseDate)
	}

	poster := ""
	if r.PosterPath != nil {
		poster = *r.PosterPath
	}

	return domain.MediaSummary{
		ID:          r.ID,
		Type:        mt,
		Title:       title,
		PosterPath:  poster,
		ReleaseDate: date,
		VoteAverage: r.VoteAverage,
		Overview:    strings.TrimSpace(r.Overview),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
