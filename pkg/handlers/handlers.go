// Package handlers contains the HTTP handlers for Music-Trivia-Go. The
// service is an API backend for a separate game frontend, so every endpoint
// speaks JSON. Application bundles the dependencies the handlers need.

package handlers

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"

	libspotify "github.com/zmb3/spotify"

	"github.com/sirupsen/logrus"

	"Music-Trivia-Go/pkg/db"
	"Music-Trivia-Go/pkg/music"
)

// Application holds the shared dependencies for the route handlers.
type Application struct {
	Aggregator    *music.Aggregator
	Authenticator libspotify.Authenticator
	DB            *db.DB
	SignKey       []byte
	Log           logrus.FieldLogger

	// Rand seeds question generation. Left nil a fresh source is created
	// per request; tests set it for deterministic output.
	Rand *rand.Rand
}

func (app *Application) logger() logrus.FieldLogger {
	if app.Log != nil {
		return app.Log
	}
	return logrus.StandardLogger()
}

func (app *Application) rng() *rand.Rand {
	if app.Rand != nil {
		return app.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

// respondJSONError writes a JSON error payload in the shape the frontend
// expects: {"error": "..."}.
func respondJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
