package catalog

import "github.com/mmcdole/tiercache/internal/domain"

// Cache key prefixes for catalog content
const (
	// PrefixCatalog is the prefix for persisted route listings (catalog:{api}{route})
	PrefixCatalog = "catalog:"

	// PrefixGenres is the prefix for the session genre list (genres:{api})
	PrefixGenres = "genres:"

	// PrefixEpisodes is the prefix for session episode listings (episodes:{api}:{showID})
	PrefixEpisodes = "episodes:"
)

// CatalogKey returns the cache key for a route listing.
func CatalogKey(api domain.API, route string) string {
	return PrefixCatalog + string(api) + route
}

// GenresKey returns the cache key, and session flag, for an API's genres.
func GenresKey(api domain.API) string {
	return PrefixGenres + string(api)
}

// EpisodesKey returns the cache key for a show's episode listing.
func EpisodesKey(api domain.API, showID string) string {
	return PrefixEpisodes + string(api) + ":" + showID
}

// MainRoutes returns the routes listing every show of an API.
func MainRoutes(api domain.API) []string {
	if api == domain.APIAnimeplus {
		return []string{"/GetAllMovies", "/GetAllShows"}
	}
	return []string{"/GetAllCartoon", "/GetAllMovies", "/GetAllDubbed"}
}
