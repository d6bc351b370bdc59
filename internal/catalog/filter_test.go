package catalog

import (
	"testing"

	"github.com/mmcdole/tiercache/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections(t *testing.T) {
	t.Parallel()

	shows := []domain.Show{
		{ID: "1", Name: "akira"},
		{ID: "2", Name: "Bleach"},
		{ID: "3", Name: "07-Ghost"},
		{ID: "4", Name: "Ápeiron"},
		{ID: "5", Name: "Angel Beats"},
	}

	sections := Sections(shows)
	assert.Len(t, sections, 27)
	assert.Equal(t, []string{"1", "5"}, ids(sections["A"]))
	assert.Equal(t, []string{"2"}, ids(sections["B"]))
	assert.Equal(t, []string{"3", "4"}, ids(sections["#"]))
	assert.Empty(t, sections["Z"])

	assert.Equal(t, "#", SectionOrder[0])
	assert.Equal(t, "Z", SectionOrder[len(SectionOrder)-1])
}

func TestSearchByName(t *testing.T) {
	t.Parallel()

	shows := []domain.Show{
		{ID: "1", Name: "Cowboy Bebop"},
		{ID: "2", Name: "Bleach"},
		{ID: "3", Name: "Bebop"},
	}

	results := SearchByName(shows, "bebop")
	require.Len(t, results, 2)
	assert.Equal(t, "3", results[0].ID, "closest match first")
	assert.Equal(t, "1", results[1].ID)

	assert.Empty(t, SearchByName(shows, "  "))
	assert.Empty(t, SearchByName(shows, "naruto"))
}

func TestFilterByGenre(t *testing.T) {
	t.Parallel()

	shows := []domain.Show{
		{ID: "1", Genres: []string{"Action", "Drama"}},
		{ID: "2", Genres: []string{"Comedy"}},
		{ID: "3"},
	}

	assert.Equal(t, []string{"1"}, ids(FilterByGenre(shows, "action")))
	assert.Empty(t, FilterByGenre(shows, "Horror"))
}

func TestKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "catalog:animetoon/GetAllMovies", CatalogKey(domain.APIAnimetoon, "/GetAllMovies"))
	assert.Equal(t, "genres:animeplus", GenresKey(domain.APIAnimeplus))
	assert.Equal(t, "episodes:animetoon:42", EpisodesKey(domain.APIAnimetoon, "42"))
	assert.Len(t, MainRoutes(domain.APIAnimetoon), 3)
	assert.Len(t, MainRoutes(domain.APIAnimeplus), 2)
}

func ids(shows []domain.Show) []string {
	out := make([]string, 0, len(shows))
	for _, s := range shows {
		out = append(out, s.ID)
	}
	return out
}
