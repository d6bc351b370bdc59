// Package catalog serves catalog listings through the tiered cache so
// repeated directory loads skip the network.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/tiercache/internal/cache"
	"github.com/mmcdole/tiercache/internal/domain"
)

// Service handles catalog browsing with caching.
// Route listings persist to disk for the cache's default lifetime; genres and
// episode listings live for the session only.
type Service struct {
	repo   domain.CatalogRepository
	cache  *cache.TieredCache
	logger *slog.Logger
}

// NewService creates a new catalog service
func NewService(repo domain.CatalogRepository, c *cache.TieredCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger}
}

// Items returns the shows listed under route.
func (s *Service) Items(ctx context.Context, api domain.API, route string) ([]domain.Show, error) {
	key := CatalogKey(api, route)
	shows, err := cache.GetOrFetch(s.cache, key, true, cache.UseDefaultLifetime, func() ([]domain.Show, error) {
		s.logger.Debug("cache miss", "key", key)
		return s.fetchShows(ctx, api, route)
	})
	if err != nil {
		s.logger.Error("failed to get shows", "api", api, "route", route, "error", err)
		return nil, err
	}
	return shows, nil
}

// AllShows returns the shows of every main route of api. Routes missing
// from the cache are fetched and stored together in one batch.
func (s *Service) AllShows(ctx context.Context, api domain.API) ([]domain.Show, error) {
	var all []domain.Show
	var fresh []cache.Entry

	for _, route := range MainRoutes(api) {
		key := CatalogKey(api, route)
		if shows, ok := cache.GetAs[[]domain.Show](s.cache, key, true); ok {
			all = append(all, shows...)
			continue
		}

		shows, err := s.fetchShows(ctx, api, route)
		if err != nil {
			s.logger.Error("failed to get shows", "api", api, "route", route, "error", err)
			return nil, err
		}
		all = append(all, shows...)
		fresh = append(fresh, cache.Entry{
			Key:           key,
			Value:         shows,
			Persist:       true,
			LifetimeHours: cache.UseDefaultLifetime,
		})
	}

	if len(fresh) > 0 {
		if err := s.cache.SetMany(fresh); err != nil {
			s.logger.Warn("failed to cache shows", "api", api, "error", err)
		}
		s.logger.Info("loaded main routes", "api", api, "fetched", len(fresh), "shows", len(all))
	}
	return all, nil
}

func (s *Service) fetchShows(ctx context.Context, api domain.API, route string) ([]domain.Show, error) {
	shows, err := s.repo.GetShows(ctx, api, route)
	if err != nil {
		return nil, fmt.Errorf("fetch %s%s: %w", api, route, err)
	}
	for i := range shows {
		shows[i].Name = strings.TrimSpace(shows[i].Name)
		shows[i].Description = strings.TrimSpace(shows[i].Description)
	}
	return shows, nil
}

// Genres returns the genre names of api, fetched at most once per session.
func (s *Service) Genres(ctx context.Context, api domain.API) ([]string, error) {
	key := GenresKey(api)
	if s.cache.TestFlag(key) {
		if genres, ok := cache.GetAs[[]string](s.cache, key, false); ok {
			return genres, nil
		}
	}

	raw, err := s.repo.GetGenres(ctx, api)
	if err != nil {
		s.logger.Error("failed to get genres", "api", api, "error", err)
		return nil, err
	}
	genres := cleanGenres(raw)

	if err := s.cache.Set(key, genres, false); err != nil {
		s.logger.Warn("failed to cache genres", "api", api, "error", err)
		return genres, nil
	}
	if err := s.cache.SetFlag(key); err != nil {
		s.logger.Warn("failed to flag genres", "api", api, "error", err)
	}
	return genres, nil
}

// cleanGenres trims names and drops empty and repeated entries.
func cleanGenres(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	genres := make([]string, 0, len(raw))
	for _, g := range raw {
		g = strings.TrimSpace(g)
		if g == "" || seen[strings.ToLower(g)] {
			continue
		}
		seen[strings.ToLower(g)] = true
		genres = append(genres, g)
	}
	return genres
}

// Episodes returns the episode listing of a show, kept for the session.
func (s *Service) Episodes(ctx context.Context, api domain.API, showID string) (*domain.EpisodeDetails, error) {
	key := EpisodesKey(api, showID)
	details, err := cache.GetOrFetch(s.cache, key, false, 0, func() (*domain.EpisodeDetails, error) {
		return s.repo.GetEpisodeDetails(ctx, api, showID)
	})
	if err != nil {
		s.logger.Error("failed to get episodes", "api", api, "showID", showID, "error", err)
		return nil, err
	}
	return details, nil
}

// Refresh drops the cached listing of route so the next Items call fetches it.
func (s *Service) Refresh(api domain.API, route string) {
	s.cache.Delete(CatalogKey(api, route), true)
	s.logger.Info("refreshing route", "api", api, "route", route)
}

// Flush writes pending listings to disk. Call once per directory change.
func (s *Service) Flush() {
	s.cache.Flush()
}
