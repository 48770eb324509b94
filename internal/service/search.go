package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// RankByTitle orders search hits by how closely their titles match query.
// Ties keep the server's order, which already reflects popularity.
func RankByTitle(items []domain.MediaSummary, query string) []domain.MediaSummary {
	if len(items) == 0 {
		return items
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	type rankedItem struct {
		item  domain.MediaSummary
		score int
	}

	ranked := make([]rankedItem, len(items))
	for i, item := range items {
		ranked[i] = rankedItem{item: item, score: matchScore(strings.ToLower(item.Title), query)}
	}

	// Sort by score (lower is better)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.MediaSummary, len(ranked))
	for i, r := range ranked {
		results[i] = r.item
	}
	return results
}

// matchScore scores a lowercase title against a lowercase query.
// Lower score = better match
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case fuzzy.MatchFold(query, title):
		// every query rune appears in order
		return 75
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}
