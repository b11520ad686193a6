// Question synthesis. Each drawn focus track becomes one multiple-choice
// question with exactly four unique options: the correct answer plus three
// distractors sampled from the rest of the pool, shuffled so the correct
// position is unpredictable.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"Music-Trivia-Go/pkg/music"
)

// Archetype is the question template: ask for the artist or for the song.
type Archetype string

const (
	ArchetypeArtistName Archetype = "artist_name"
	ArchetypeSongName   Archetype = "song_name"
)

const (
	optionCount     = 4
	distractorCount = optionCount - 1

	// minDistinctArtists is the pool eligibility threshold. With at least
	// four distinct artist strings an artist question always has three
	// distractors after excluding the focus track's artist.
	minDistinctArtists = 4
)

// ErrInsufficientPool is returned when the pool cannot supply a full
// distractor set. Callers should treat it as "not enough listening data".
var ErrInsufficientPool = errors.New("quiz: not enough distinct artists in track pool")

// Question is a single quiz entry. ID is deterministic for a given focus
// track and archetype, so it is unique within one generated batch because
// focus tracks are drawn without replacement.
type Question struct {
	ID            string    `json:"id"`
	Type          Archetype `json:"type"`
	Track         Track     `json:"track"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
}

// Generate builds min(count, len(pool)) questions from the pool. The pool
// must already be deduplicated by track ID. An empty pool yields an empty
// batch and no error; a non-empty pool with fewer than four distinct artist
// strings is rejected with ErrInsufficientPool rather than producing
// questions with short or duplicated option lists. Generation is
// deterministic for a fixed random source.
func Generate(r *rand.Rand, pool []Track, count int) ([]Question, error) {
	if len(pool) == 0 {
		return nil, nil
	}
	if countDistinctArtists(pool) < minDistinctArtists {
		return nil, ErrInsufficientPool
	}
	focus := music.Sample(r, pool, count)
	questions := make([]Question, 0, len(focus))
	for _, t := range focus {
		archetype := ArchetypeArtistName
		if r.IntN(2) == 1 {
			archetype = ArchetypeSongName
		}
		questions = append(questions, buildQuestion(r, t, archetype, pool))
	}
	return questions, nil
}

// buildQuestion composes the prompt, answer and options for one focus
// track. A song question whose distractor titles collapse below three after
// de-duplication falls back to the artist archetype, which the pool
// eligibility check guarantees can always be filled.
func buildQuestion(r *rand.Rand, t Track, archetype Archetype, pool []Track) Question {
	var prompt, correct string
	var candidates []string

	if archetype == ArchetypeSongName {
		candidates = songDistractors(t, pool)
		if len(candidates) < distractorCount {
			archetype = ArchetypeArtistName
		} else {
			prompt = fmt.Sprintf("Which song is by %s?", t.Artist)
			correct = t.Name
		}
	}
	if archetype == ArchetypeArtistName {
		candidates = artistDistractors(t, pool)
		prompt = fmt.Sprintf("Who is the artist of the song \"%s\"?", t.Name)
		correct = t.Artist
	}

	options := append([]string{correct}, music.Sample(r, candidates, distractorCount)...)
	return Question{
		ID:            fmt.Sprintf("question_%s_%s", t.ID, archetype),
		Type:          archetype,
		Track:         t,
		Question:      prompt,
		Options:       music.Shuffle(r, options),
		CorrectAnswer: correct,
	}
}

// artistDistractors returns the distinct artist strings of every pool track
// other than the focus track, excluding the focus artist itself.
func artistDistractors(focus Track, pool []Track) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range pool {
		if t.ID == focus.ID || t.Artist == focus.Artist {
			continue
		}
		if _, ok := seen[t.Artist]; ok {
			continue
		}
		seen[t.Artist] = struct{}{}
		out = append(out, t.Artist)
	}
	return out
}

// songDistractors returns distinct titles of pool tracks by a different
// artist than the focus track. Titles equal to the focus title are dropped
// so the correct answer can never appear twice in the options.
func songDistractors(focus Track, pool []Track) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range pool {
		if t.Artist == focus.Artist || t.Name == focus.Name {
			continue
		}
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		out = append(out, t.Name)
	}
	return out
}

func countDistinctArtists(pool []Track) int {
	seen := make(map[string]struct{})
	for _, t := range pool {
		seen[t.Artist] = struct{}{}
	}
	return len(seen)
}
