package handlers

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"Music-Trivia-Go/pkg/db"
	"Music-Trivia-Go/pkg/music"
	"Music-Trivia-Go/pkg/quiz"
)

// fakeCatalog satisfies music.Catalog for handler tests. Unset endpoints
// return empty results.
type fakeCatalog struct {
	topTracks  func() ([]music.Track, error)
	topArtists func() ([]music.Artist, error)
}

var _ music.Catalog = (*fakeCatalog)(nil)

func (f *fakeCatalog) TopTracks(context.Context, string, string, int) ([]music.Track, error) {
	if f.topTracks == nil {
		return nil, nil
	}
	return f.topTracks()
}

func (f *fakeCatalog) TopArtists(context.Context, string, string, int) ([]music.Artist, error) {
	if f.topArtists == nil {
		return nil, nil
	}
	return f.topArtists()
}

func (f *fakeCatalog) RelatedArtists(context.Context, string, string) ([]music.Artist, error) {
	return nil, nil
}

func (f *fakeCatalog) ArtistTopTracks(context.Context, string, string) ([]music.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) SavedTracks(context.Context, string) ([]music.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) RecentlyPlayed(context.Context, string) ([]music.Track, error) {
	return nil, nil
}

var testKey = []byte("test-signing-key")

// richCatalog returns a fake whose top tracks cover enough distinct artists
// for full distractor sets.
func richCatalog() *fakeCatalog {
	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta"}
	tracks := make([]music.Track, len(names))
	for i, n := range names {
		tracks[i] = music.Track{
			ID:         strings.Repeat(string(rune('a'+i)), 22),
			Name:       "Song " + n,
			Artists:    []music.Artist{{ID: "ar" + n, Name: n}},
			PreviewURL: "https://p.scdn.co/" + n,
		}
	}
	return &fakeCatalog{
		topTracks: func() ([]music.Track, error) { return tracks, nil },
	}
}

func newTestApp(t *testing.T, cat music.Catalog) *Application {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return &Application{
		Aggregator: &music.Aggregator{Catalog: cat, Rand: rand.New(rand.NewPCG(1, 1))},
		DB:         database,
		SignKey:    testKey,
		Rand:       rand.New(rand.NewPCG(2, 2)),
	}
}

// authenticate attaches a signed user cookie and a token cookie to the
// request, mimicking a completed login.
func authenticate(t *testing.T, app *Application, r *http.Request, userID string) {
	t.Helper()
	r.AddCookie(&http.Cookie{Name: "spotify_user_id", Value: signValue(userID, app.SignKey)})
	r.AddCookie(app.encodeToken(&oauth2.Token{AccessToken: "tok"}, false))
}

func TestGenerateQuizRequiresAuth(t *testing.T) {
	app := newTestApp(t, richCatalog())
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/generate", nil)
	w := httptest.NewRecorder()
	app.GenerateQuizJSON(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGenerateQuizJSON(t *testing.T) {
	app := newTestApp(t, richCatalog())
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/generate?count=5", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.GenerateQuizJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Quiz struct {
			Title          string          `json:"title"`
			Questions      []quiz.Question `json:"questions"`
			TotalQuestions int             `json:"totalQuestions"`
		} `json:"quiz"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Quiz.TotalQuestions != 5 || len(resp.Quiz.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(resp.Quiz.Questions))
	}
	for _, q := range resp.Quiz.Questions {
		if len(q.Options) != 4 {
			t.Errorf("question %s has %d options", q.ID, len(q.Options))
		}
	}
}

// TestGenerateQuizClampsCount verifies the count parameter is clamped into
// the configured range before generation.
func TestGenerateQuizClampsCount(t *testing.T) {
	app := newTestApp(t, richCatalog())
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/generate?count=2", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.GenerateQuizJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Quiz struct {
			TotalQuestions int `json:"totalQuestions"`
		} `json:"quiz"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The clamp raises 2 to the minimum of 5, and the 6-track pool can
	// serve it.
	if resp.Quiz.TotalQuestions != 5 {
		t.Fatalf("totalQuestions = %d, want 5", resp.Quiz.TotalQuestions)
	}
}

func TestGenerateQuizUpstreamFailure(t *testing.T) {
	cat := &fakeCatalog{
		topTracks: func() ([]music.Track, error) {
			return nil, &failErr{"upstream down"}
		},
	}
	app := newTestApp(t, cat)
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/generate", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.GenerateQuizJSON(w, r)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to generate quiz") {
		t.Errorf("body = %s", w.Body.String())
	}
}

type failErr struct{ msg string }

func (e *failErr) Error() string { return e.msg }

func TestGenerateQuizInsufficientData(t *testing.T) {
	cat := &fakeCatalog{
		topTracks: func() ([]music.Track, error) {
			return []music.Track{
				{ID: "1", Name: "A", Artists: []music.Artist{{Name: "X"}}},
				{ID: "2", Name: "B", Artists: []music.Artist{{Name: "X"}}},
			}, nil
		},
	}
	app := newTestApp(t, cat)
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/generate", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.GenerateQuizJSON(w, r)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestRandomTracksJSON(t *testing.T) {
	app := newTestApp(t, richCatalog())
	r := httptest.NewRequest(http.MethodGet, "/api/quiz/random-tracks?count=3", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.RandomTracksJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Tracks []quiz.Track `json:"tracks"`
		Total  int          `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || len(resp.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(resp.Tracks))
	}
	for _, tr := range resp.Tracks {
		if tr.PreviewURL == "" {
			t.Errorf("track %s has no preview despite preview-rich pool", tr.ID)
		}
	}
}

func TestAddResultAndLeaderboard(t *testing.T) {
	app := newTestApp(t, richCatalog())

	body := strings.NewReader(`{"score":800,"correct_answers":8,"total_questions":10}`)
	r := httptest.NewRequest(http.MethodPost, "/api/results", body)
	authenticate(t, app, r, "user1")
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "csrf"})
	r.Header.Set("X-CSRF-Token", "csrf")
	w := httptest.NewRecorder()
	app.AddResultJSON(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID    string `json:"id"`
		Coins int    `json:"coins_earned"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Coins != 80 {
		t.Fatalf("unexpected result: %+v", created)
	}

	// The leaderboard is public and should now contain the play.
	lr := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	lw := httptest.NewRecorder()
	app.LeaderboardJSON(lw, lr)
	if lw.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d", lw.Code)
	}
	var lb struct {
		Leaderboard []db.Standing `json:"leaderboard"`
	}
	if err := json.Unmarshal(lw.Body.Bytes(), &lb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lb.Leaderboard) != 1 || lb.Leaderboard[0].UserID != "user1" || lb.Leaderboard[0].Coins != 80 {
		t.Fatalf("unexpected leaderboard: %+v", lb.Leaderboard)
	}
}

func TestAddResultRejectsMissingCSRF(t *testing.T) {
	app := newTestApp(t, richCatalog())
	body := strings.NewReader(`{"score":100,"correct_answers":1,"total_questions":5}`)
	r := httptest.NewRequest(http.MethodPost, "/api/results", body)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.AddResultJSON(w, r)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestAddResultRejectsInvalidPayload(t *testing.T) {
	app := newTestApp(t, richCatalog())
	body := strings.NewReader(`{"score":100,"correct_answers":9,"total_questions":5}`)
	r := httptest.NewRequest(http.MethodPost, "/api/results", body)
	authenticate(t, app, r, "user1")
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "csrf"})
	r.Header.Set("X-CSRF-Token", "csrf")
	w := httptest.NewRecorder()
	app.AddResultJSON(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestProfileStatsJSON(t *testing.T) {
	app := newTestApp(t, richCatalog())
	if _, err := app.DB.RecordResult(context.Background(), "user1", 500, 5, 10, 50); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	authenticate(t, app, r, "user1")
	w := httptest.NewRecorder()
	app.ProfileStatsJSON(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var s db.Standing
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.UserID != "user1" || s.Coins != 50 || s.GamesCount != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

// TestSignVerifyRoundTrip covers the cookie signing helpers including
// tamper detection.
func TestSignVerifyRoundTrip(t *testing.T) {
	signed := signValue("user42", testKey)
	v, ok := verifyValue(signed, testKey)
	if !ok || v != "user42" {
		t.Fatalf("round trip failed: %q %v", v, ok)
	}
	if _, ok := verifyValue(signed+"x", testKey); ok {
		t.Error("tampered value verified")
	}
	if _, ok := verifyValue(signed, []byte("other-key")); ok {
		t.Error("wrong key verified")
	}
}
