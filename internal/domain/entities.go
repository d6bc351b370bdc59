package domain

import (
	"strings"
	"unicode"
)

// API identifies one of the two catalog backends
type API string

const (
	APIAnimetoon API = "animetoon"
	APIAnimeplus API = "animeplus"
)

// Show is a catalog entry (cartoon, movie, anime or dub)
type Show struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"` // May be empty
	Genres      []string `json:"genres,omitempty"`      // May be empty
	Released    string   `json:"released,omitempty"`
}

// SectionKey returns the alphabetical section the show is listed under:
// "A" through "Z", or "#" for names starting with anything else.
func (s Show) SectionKey() string {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return "#"
	}
	r := unicode.ToUpper([]rune(name)[0])
	if r >= 'A' && r <= 'Z' {
		return string(r)
	}
	return "#"
}

// HasGenre reports whether the show is tagged with genre (case-insensitive)
func (s Show) HasGenre(genre string) bool {
	for _, g := range s.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// Episode is a single episode of a show
type Episode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date,omitempty"`
	Part    int    `json:"part,omitempty"` // Multi-part episodes are split by the API
	ShowID  string `json:"showId"`
	Summary string `json:"summary,omitempty"`
}

// EpisodeDetails is the full episode listing for a show
type EpisodeDetails struct {
	ShowID      string    `json:"showId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Released    string    `json:"released,omitempty"`
	Episodes    []Episode `json:"episodes"`
}
