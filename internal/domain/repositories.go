package domain

import (
	"context"
)

// CatalogRepository provides access to a catalog API. Implementations make
// network requests; callers should go through the catalog service so results
// are cached.
type CatalogRepository interface {
	// GetShows returns every show listed under route (e.g. "/GetAllCartoon")
	GetShows(ctx context.Context, api API, route string) ([]Show, error)

	// GetGenres returns the genre names known to the API
	GetGenres(ctx context.Context, api API) ([]string, error)

	// GetEpisodeDetails returns the show details and episode list
	GetEpisodeDetails(ctx context.Context, api API, showID string) (*EpisodeDetails, error)
}
