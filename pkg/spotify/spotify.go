// Package spotify implements the music.Catalog interface against the
// Spotify Web API. Unlike a full SDK wrapper this client speaks to the API
// directly so failures can be surfaced as typed errors carrying the HTTP
// status and originating endpoint, which the aggregation layer relies on to
// classify per-item failures.
//
// Network calls go through the provided http.Client allowing tests to
// substitute a test server. The client performs no retries; retry policy is
// a caller concern.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"Music-Trivia-Go/pkg/music"
)

// BaseURL is the Spotify Web API root.
const BaseURL = "https://api.spotify.com/v1"

// idPattern matches a full 22-character base62 catalog identifier, the
// fixed length Spotify uses for track and artist IDs.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

// APIError describes a non-2xx response from the Web API. Message is taken
// from the structured error payload when one can be decoded, otherwise it
// falls back to the HTTP status line.
type APIError struct {
	Message    string
	Endpoint   string
	StatusCode int
	// ResourceID is the catalog identifier extracted from the endpoint
	// path, when one was present. Best effort only.
	ResourceID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: %s (%d %s)", e.Message, e.StatusCode, e.Endpoint)
}

// HTTPStatus implements music.StatusError.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Client queries the Spotify Web API on behalf of a user. If HTTP is nil a
// client with a 10 second timeout is used. Limiter, when set, throttles all
// outgoing requests; the Web API rate limits aggressively during fan-out.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// Ensure interface compliance.
var _ music.Catalog = (*Client)(nil)

// New returns a Client with the production base URL and a request budget of
// rps calls per second.
func New(rps float64) *Client {
	return &Client{
		BaseURL: BaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// get performs an authenticated GET against endpoint and decodes the JSON
// body into v. Non-2xx responses become an *APIError.
func (c *Client) get(ctx context.Context, endpoint, token string, v any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	base := c.BaseURL
	if base == "" {
		base = BaseURL
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// apiError builds an *APIError from a failed response. The Web API wraps
// failures as {"error":{"status":..,"message":..}}; when that shape cannot
// be decoded the status line is used instead.
func apiError(resp *http.Response, endpoint string) *APIError {
	msg := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &APIError{
		Message:    msg,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		ResourceID: extractResourceID(endpoint),
	}
}

// extractResourceID returns the first path segment of endpoint that looks
// like a catalog identifier, or "".
func extractResourceID(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if idPattern.MatchString(seg) {
			return seg
		}
	}
	return ""
}

// TopTracks implements music.Catalog by fetching the user's most played
// tracks for the given time range.
func (c *Client) TopTracks(ctx context.Context, token, timeRange string, limit int) ([]music.Track, error) {
	params := url.Values{
		"time_range": {timeRange},
		"limit":      {strconv.Itoa(limit)},
	}
	var body struct {
		Items []music.Track `json:"items"`
	}
	if err := c.get(ctx, "/me/top/tracks?"+params.Encode(), token, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// TopArtists implements music.Catalog by fetching the user's most played
// artists for the given time range.
func (c *Client) TopArtists(ctx context.Context, token, timeRange string, limit int) ([]music.Artist, error) {
	params := url.Values{
		"time_range": {timeRange},
		"limit":      {strconv.Itoa(limit)},
	}
	var body struct {
		Items []music.Artist `json:"items"`
	}
	if err := c.get(ctx, "/me/top/artists?"+params.Encode(), token, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// RelatedArtists returns artists similar to artistID. Artists without
// related-artist data upstream produce a 404 *APIError.
func (c *Client) RelatedArtists(ctx context.Context, token, artistID string) ([]music.Artist, error) {
	var body struct {
		Artists []music.Artist `json:"artists"`
	}
	if err := c.get(ctx, "/artists/"+artistID+"/related-artists", token, &body); err != nil {
		return nil, err
	}
	return body.Artists, nil
}

// ArtistTopTracks returns the artist's most popular tracks for the US
// market.
func (c *Client) ArtistTopTracks(ctx context.Context, token, artistID string) ([]music.Track, error) {
	var body struct {
		Tracks []music.Track `json:"tracks"`
	}
	if err := c.get(ctx, "/artists/"+artistID+"/top-tracks?market=US", token, &body); err != nil {
		return nil, err
	}
	return body.Tracks, nil
}

// SavedTracks returns up to 50 tracks from the user's library. The endpoint
// nests each track under an item wrapper.
func (c *Client) SavedTracks(ctx context.Context, token string) ([]music.Track, error) {
	var body struct {
		Items []struct {
			Track music.Track `json:"track"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/me/tracks?limit=50", token, &body); err != nil {
		return nil, err
	}
	tracks := make([]music.Track, 0, len(body.Items))
	for _, it := range body.Items {
		tracks = append(tracks, it.Track)
	}
	return tracks, nil
}

// RecentlyPlayed returns up to 50 tracks from the user's listening history.
func (c *Client) RecentlyPlayed(ctx context.Context, token string) ([]music.Track, error) {
	var body struct {
		Items []struct {
			Track music.Track `json:"track"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/me/player/recently-played?limit=50", token, &body); err != nil {
		return nil, err
	}
	tracks := make([]music.Track, 0, len(body.Items))
	for _, it := range body.Items {
		tracks = append(tracks, it.Track)
	}
	return tracks, nil
}
