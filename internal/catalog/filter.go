package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/tiercache/internal/domain"
)

// SectionOrder lists section keys in display order.
var SectionOrder = func() []string {
	keys := []string{"#"}
	for r := 'A'; r <= 'Z'; r++ {
		keys = append(keys, string(r))
	}
	return keys
}()

// Sections splits shows into alphabetical sections keyed by SectionKey.
// Every key of SectionOrder is present, possibly empty.
func Sections(shows []domain.Show) map[string][]domain.Show {
	sections := make(map[string][]domain.Show, len(SectionOrder))
	for _, key := range SectionOrder {
		sections[key] = nil
	}
	for _, show := range shows {
		key := show.SectionKey()
		sections[key] = append(sections[key], show)
	}
	return sections
}

// SearchByName ranks shows whose name fuzzily matches query, best first.
func SearchByName(shows []domain.Show, query string) []domain.Show {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	names := make([]string, len(shows))
	for i, show := range shows {
		names[i] = show.Name
	}

	matches := fuzzy.RankFindFold(query, names)
	sort.Stable(matches)

	results := make([]domain.Show, 0, len(matches))
	for _, match := range matches {
		results = append(results, shows[match.OriginalIndex])
	}
	return results
}

// FilterByGenre returns the shows tagged with genre
func FilterByGenre(shows []domain.Show, genre string) []domain.Show {
	filtered := make([]domain.Show, 0)
	for _, show := range shows {
		if show.HasGenre(genre) {
			filtered = append(filtered, show)
		}
	}
	return filtered
}
