// Package db provides the persistence layer used by the application. It
// wraps a SQLite database and exposes helper methods for storing OAuth
// tokens, recording quiz results and reading the coin leaderboard. Callers
// are expected to open a single DB instance using New and reuse it for all
// operations.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// DB wraps a sql.DB connection and exposes helper methods for the
// application's persistence layer.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path. If the file does not
// exist it is created along with the required schema.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tokens (user_id TEXT PRIMARY KEY, token TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			coins INTEGER NOT NULL,
			played_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &DB{d}, nil
}

// SaveToken persists the OAuth token for the given userID. If a token
// already exists it is replaced.
func (db *DB) SaveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO tokens(user_id, token) VALUES(?, ?) ON CONFLICT(user_id) DO UPDATE SET token=excluded.token`, userID, string(b))
	return err
}

// GetToken retrieves the OAuth token stored for userID. The returned token
// includes the refresh token if one was originally saved.
func (db *DB) GetToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var data string
	if err := db.QueryRowContext(ctx, `SELECT token FROM tokens WHERE user_id=?`, userID).Scan(&data); err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(data), &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Result is a single recorded play.
type Result struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Score    int       `json:"score"`
	Correct  int       `json:"correct_answers"`
	Total    int       `json:"total_questions"`
	Coins    int       `json:"coins_earned"`
	PlayedAt time.Time `json:"played_at"`
}

// RecordResult stores one finished game and returns the generated result
// ID.
func (db *DB) RecordResult(ctx context.Context, userID string, score, correct, total, coins int) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO results(id, user_id, score, correct, total, coins, played_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, userID, score, correct, total, coins, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Standing is one leaderboard row.
type Standing struct {
	UserID     string `json:"user_id"`
	Coins      int    `json:"coins"`
	GamesCount int    `json:"total_games"`
	Correct    int    `json:"correct_answers"`
	Total      int    `json:"total_questions"`
}

// Leaderboard returns up to limit users ranked by accumulated coins.
func (db *DB) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT user_id, SUM(coins), COUNT(*), SUM(correct), SUM(total)
		 FROM results GROUP BY user_id ORDER BY SUM(coins) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.UserID, &s.Coins, &s.GamesCount, &s.Correct, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UserStats returns the aggregate standing for a single user. A user with
// no recorded games gets a zeroed Standing, not an error.
func (db *DB) UserStats(ctx context.Context, userID string) (Standing, error) {
	s := Standing{UserID: userID}
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(coins),0), COUNT(*), COALESCE(SUM(correct),0), COALESCE(SUM(total),0)
		 FROM results WHERE user_id=?`, userID).
		Scan(&s.Coins, &s.GamesCount, &s.Correct, &s.Total)
	if err != nil {
		return Standing{}, err
	}
	return s, nil
}
