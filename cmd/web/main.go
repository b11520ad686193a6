// Command web initializes the Music-Trivia-Go application and starts the
// HTTP server. Configuration is provided via environment variables for the
// Spotify API credentials, cookie signing key and database location. The
// server exposes a JSON API consumed by the game frontend plus the OAuth
// login flow and a Prometheus metrics endpoint.

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	libspotify "github.com/zmb3/spotify"

	"Music-Trivia-Go/pkg/config"
	"Music-Trivia-Go/pkg/db"
	"Music-Trivia-Go/pkg/handlers"
	"Music-Trivia-Go/pkg/music"
	"Music-Trivia-Go/pkg/spotify"
)

// routes registers all application endpoints on a fresh mux.
func routes(app *handlers.Application) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/logout", app.Logout)
	mux.HandleFunc("/api/quiz/generate", app.GenerateQuizJSON)
	mux.HandleFunc("/api/quiz/random-tracks", app.RandomTracksJSON)
	mux.HandleFunc("/api/results", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			app.AddResultJSON(w, r)
		} else {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/leaderboard", app.LeaderboardJSON)
	mux.HandleFunc("/api/profile/stats", app.ProfileStatsJSON)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// main configures application dependencies and starts the HTTP server.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	// The authenticator drives the OAuth flow for user logins. Scopes
	// cover everything the aggregation pipeline reads; the two library
	// scopes are optional for the user, aggregation degrades without them.
	auth := libspotify.NewAuthenticator(cfg.SpotifyRedirectURL,
		libspotify.ScopeUserTopRead,
		libspotify.ScopeUserLibraryRead,
		libspotify.ScopeUserReadRecentlyPlayed,
	)
	auth.SetAuthInfo(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer database.Close()

	aggregator := &music.Aggregator{
		Catalog:        spotify.New(cfg.UpstreamRPS),
		Log:            log,
		TopTrackLimit:  cfg.TopTrackLimit,
		TopArtistLimit: cfg.TopArtistLimit,
		RelatedLimit:   cfg.RelatedLimit,
	}

	app := &handlers.Application{
		Aggregator:    aggregator,
		Authenticator: auth,
		DB:            database,
		SignKey:       []byte(cfg.SigningKey),
		Log:           log,
	}

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := http.ListenAndServe(cfg.Addr, handlers.SecurityHeaders(routes(app))); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}
