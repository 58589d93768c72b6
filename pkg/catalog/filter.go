package catalog

import (
	"strings"

	"btb-downloader/pkg/domain"
)

// TitleFilter excludes catalog entries belonging to an unrelated co-hosted
// feed, matched by case-insensitive substring on the episode title.
type TitleFilter struct {
	phrase string
}

// NewTitleFilter creates a filter that drops episodes whose title contains
// phrase. An empty phrase keeps everything.
func NewTitleFilter(phrase string) TitleFilter {
	return TitleFilter{phrase: strings.ToLower(phrase)}
}

// Keep reports whether the episode should be retained.
func (f TitleFilter) Keep(e domain.Episode) bool {
	if f.phrase == "" {
		return true
	}
	return !strings.Contains(strings.ToLower(e.Title), f.phrase)
}

// Apply returns the episodes that pass the filter, preserving order.
func (f TitleFilter) Apply(episodes []domain.Episode) []domain.Episode {
	kept := make([]domain.Episode, 0, len(episodes))
	for _, e := range episodes {
		if f.Keep(e) {
			kept = append(kept, e)
		}
	}
	return kept
}
