// Package music defines the data structures and interfaces used to talk to
// the user's music catalog. The concrete Spotify implementation lives in
// pkg/spotify; by depending only on the Catalog interface the aggregation
// logic can be exercised against fakes in tests.
//
// Track mirrors the upstream track record. Only the fields consumed by quiz
// generation are decoded; everything else the API returns is ignored.
package music

import "context"

// Artist is an upstream artist record. Only the identifier and display name
// are needed by the aggregation pipeline.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a single album art rendition.
type Image struct {
	URL string `json:"url"`
}

// Album carries the subset of album metadata shown alongside a question.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is an upstream track record as returned by the catalog API. A track
// is identified solely by ID; two records with equal IDs are duplicates.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []Artist          `json:"artists"`
	Album        Album             `json:"album"`
	PreviewURL   string            `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
	Popularity   int               `json:"popularity"`
}

// TimeRangeMedium is the lookback window used for personalised top lists.
const TimeRangeMedium = "medium_term"

// Catalog exposes the read operations the aggregator needs from the music
// service. All calls are authenticated with the user's access token and are
// cancellable through the context.
type Catalog interface {
	// TopTracks returns the user's most played tracks for the time range,
	// up to limit entries.
	TopTracks(ctx context.Context, token, timeRange string, limit int) ([]Track, error)

	// TopArtists returns the user's most played artists for the time range.
	TopArtists(ctx context.Context, token, timeRange string, limit int) ([]Artist, error)

	// RelatedArtists returns artists similar to the given artist.
	RelatedArtists(ctx context.Context, token, artistID string) ([]Artist, error)

	// ArtistTopTracks returns an artist's most popular tracks.
	ArtistTopTracks(ctx context.Context, token, artistID string) ([]Track, error)

	// SavedTracks returns the user's library tracks. Requires the
	// user-library-read scope.
	SavedTracks(ctx context.Context, token string) ([]Track, error)

	// RecentlyPlayed returns the user's listening history. Requires the
	// user-read-recently-played scope.
	RecentlyPlayed(ctx context.Context, token string) ([]Track, error)
}
