// Quiz endpoints: personalized question generation and the random track
// picker used by the audio rounds. Both aggregate the user's listening
// history on every request; nothing is cached server-side.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"Music-Trivia-Go/pkg/metrics"
	"Music-Trivia-Go/pkg/music"
	"Music-Trivia-Go/pkg/quiz"
)

// Question count bounds for a generated quiz.
const (
	minQuestions     = 5
	maxQuestions     = 20
	defaultQuestions = 10
)

type quizPayload struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Questions      []quiz.Question `json:"questions"`
	TotalQuestions int             `json:"totalQuestions"`
}

// GenerateQuizJSON builds a personalized quiz for the authenticated user.
// The count query parameter is clamped to [5, 20]. A failure of the
// foundational history fetches yields a 502 with no partial results; a pool
// too thin for distractor generation yields a 422.
func (app *Application) GenerateQuizJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	token, err := app.accessToken(w, r, userID)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count == 0 {
		count = defaultQuestions
	}
	count = clamp(count, minQuestions, maxQuestions)

	pool, sum, err := app.Aggregator.Aggregate(r.Context(), token.AccessToken)
	metrics.ObserveSkips(sum.NotFound, sum.PermissionDenied, sum.Other)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues("upstream").Inc()
		app.logger().WithError(err).Error("aggregate track pool")
		respondJSONError(w, http.StatusBadGateway, "failed to generate quiz")
		return
	}

	questions, err := quiz.Generate(app.rng(), quiz.NormalizeAll(pool), count)
	if err != nil {
		if errors.Is(err, quiz.ErrInsufficientPool) {
			metrics.GenerationFailures.WithLabelValues("insufficient_data").Inc()
			respondJSONError(w, http.StatusUnprocessableEntity, "not enough listening history to build a quiz")
			return
		}
		metrics.GenerationFailures.WithLabelValues("internal").Inc()
		app.logger().WithError(err).Error("generate questions")
		respondJSONError(w, http.StatusInternalServerError, "failed to generate quiz")
		return
	}
	if len(questions) == 0 {
		metrics.GenerationFailures.WithLabelValues("insufficient_data").Inc()
		respondJSONError(w, http.StatusUnprocessableEntity, "not enough listening history to build a quiz")
		return
	}

	metrics.QuizzesGenerated.Inc()
	metrics.QuestionsGenerated.Add(float64(len(questions)))
	writeJSON(w, http.StatusOK, map[string]quizPayload{"quiz": {
		Title:          "Your Personalized Music Quiz",
		Description:    "Test your knowledge of your favorite music!",
		Questions:      questions,
		TotalQuestions: len(questions),
	}})
}

// RandomTracksJSON returns a random selection from the user's aggregated
// pool, preferring tracks with a preview clip when enough exist so the
// audio player has something to play. The count parameter is clamped to
// [1, 20].
func (app *Application) RandomTracksJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	token, err := app.accessToken(w, r, userID)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count == 0 {
		count = defaultQuestions
	}
	count = clamp(count, 1, maxQuestions)

	pool, sum, err := app.Aggregator.Aggregate(r.Context(), token.AccessToken)
	metrics.ObserveSkips(sum.NotFound, sum.PermissionDenied, sum.Other)
	if err != nil {
		app.logger().WithError(err).Error("aggregate track pool")
		respondJSONError(w, http.StatusBadGateway, "failed to fetch random tracks")
		return
	}

	tracks := quiz.NormalizeAll(pool)
	withPreview := make([]quiz.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.PreviewURL != "" {
			withPreview = append(withPreview, t)
		}
	}
	if len(withPreview) >= count {
		tracks = withPreview
	}
	selected := music.Sample(app.rng(), tracks, count)

	writeJSON(w, http.StatusOK, map[string]any{
		"tracks": selected,
		"total":  len(selected),
	})
}
