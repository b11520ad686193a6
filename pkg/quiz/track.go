// Package quiz turns a pool of normalized tracks into multiple-choice
// trivia questions. Nothing in this package performs I/O; aggregation and
// normalization happen upstream and generation is a pure function of the
// pool, the requested count and the supplied random source.
package quiz

import (
	"strings"

	"Music-Trivia-Go/pkg/music"
)

// Track is the normalized internal track shape questions are built from.
// Artist holds every upstream artist name joined with ", " in upstream
// order; two tracks are duplicates iff their IDs are equal. The JSON field
// names match what the game frontend consumes.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album,omitempty"`
	Image       string `json:"image,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	URI         string `json:"uri"`
	Popularity  int    `json:"popularity"`
}

// Normalize maps an upstream catalog record into the internal Track shape.
// Records are expected to carry at least an ID, a name and one artist;
// enforcing that is the aggregation layer's contract, not this function's.
func Normalize(t music.Track) Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	uri := t.URI
	if uri == "" {
		uri = "spotify:track:" + t.ID
	}
	out := Track{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		PreviewURL: t.PreviewURL,
		URI:        uri,
		Popularity: t.Popularity,
	}
	if len(t.Album.Images) > 0 {
		out.Image = t.Album.Images[0].URL
	}
	if t.ExternalURLs != nil {
		out.ExternalURL = t.ExternalURLs["spotify"]
	}
	return out
}

// NormalizeAll maps a whole pool, preserving order.
func NormalizeAll(tracks []music.Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = Normalize(t)
	}
	return out
}
