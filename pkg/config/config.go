// Package config loads service configuration from the environment. The
// variable names are stable; defaults cover local development so only the
// Spotify credentials and the cookie signing key are mandatory.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the service reads at startup.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":4000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"musictrivia.db"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID,required,notEmpty"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET,required,notEmpty"`
	SpotifyRedirectURL  string `env:"SPOTIFY_REDIRECT_URL" envDefault:"http://localhost:4000/callback"`

	// SigningKey signs the session cookies. Rotating it invalidates every
	// active session.
	SigningKey string `env:"SIGNING_KEY,required,notEmpty"`

	// Aggregation bounds. The defaults match the product's request shape.
	TopTrackLimit  int `env:"TOP_TRACK_LIMIT" envDefault:"50"`
	TopArtistLimit int `env:"TOP_ARTIST_LIMIT" envDefault:"20"`
	RelatedLimit   int `env:"RELATED_ARTIST_LIMIT" envDefault:"3"`

	// UpstreamRPS bounds the request rate against the Web API.
	UpstreamRPS float64 `env:"UPSTREAM_RPS" envDefault:"10"`
}

// Load parses the environment into a Config, reporting missing required
// variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
