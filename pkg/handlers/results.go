// Game result recording and the coin leaderboard. A finished game earns
// the player coins proportional to their correct answers; leaderboard
// standings aggregate coins across all recorded plays.

package handlers

import (
	"net/http"
	"strconv"
)

// coinsPerCorrect is the virtual currency awarded per correct answer.
const coinsPerCorrect = 10

// AddResultJSON records a finished game for the authenticated user and
// responds with the stored result ID and the coins earned.
func (app *Application) AddResultJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	var req struct {
		Score          int `json:"score"`
		CorrectAnswers int `json:"correct_answers"`
		TotalQuestions int `json:"total_questions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TotalQuestions <= 0 || req.CorrectAnswers < 0 || req.CorrectAnswers > req.TotalQuestions || req.Score < 0 {
		respondJSONError(w, http.StatusBadRequest, "invalid game result")
		return
	}
	coins := req.CorrectAnswers * coinsPerCorrect
	id, err := app.DB.RecordResult(r.Context(), userID, req.Score, req.CorrectAnswers, req.TotalQuestions, coins)
	if err != nil {
		app.logger().WithError(err).Error("record result")
		respondJSONError(w, http.StatusInternalServerError, "failed to save result")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":           id,
		"coins_earned": coins,
	})
}

// LeaderboardJSON returns users ranked by accumulated coins. The limit
// query parameter defaults to 10 and is capped at 100. The leaderboard is
// public; no authentication is required.
func (app *Application) LeaderboardJSON(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	limit = clamp(limit, 1, 100)
	standings, err := app.DB.Leaderboard(r.Context(), limit)
	if err != nil {
		app.logger().WithError(err).Error("load leaderboard")
		respondJSONError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": standings})
}

// ProfileStatsJSON returns the authenticated user's aggregate standing.
func (app *Application) ProfileStatsJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	stats, err := app.DB.UserStats(r.Context(), userID)
	if err != nil {
		app.logger().WithError(err).Error("load user stats")
		respondJSONError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
