package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// specPool is the five-track pool from the product's acceptance scenario.
func specPool() []Track {
	return []Track{
		{ID: "a", Name: "Song A", Artist: "X"},
		{ID: "b", Name: "Song B", Artist: "Y"},
		{ID: "c", Name: "Song C", Artist: "Z"},
		{ID: "d", Name: "Song D", Artist: "X"},
		{ID: "e", Name: "Song E", Artist: "W"},
	}
}

// TestGenerateCount verifies exactly min(count, len(pool)) questions come
// back for eligible pools.
func TestGenerateCount(t *testing.T) {
	for _, c := range []struct {
		count int
		want  int
	}{
		{3, 3},
		{5, 5},
		{20, 5},
	} {
		qs, err := Generate(testRand(1), specPool(), c.count)
		if err != nil {
			t.Fatalf("Generate(count=%d): %v", c.count, err)
		}
		if len(qs) != c.want {
			t.Errorf("Generate(count=%d) returned %d questions, want %d", c.count, len(qs), c.want)
		}
	}
}

// TestGenerateQuestionValidity checks every question has four unique
// options containing the correct answer exactly once, and that the answer
// matches the archetype.
func TestGenerateQuestionValidity(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		qs, err := Generate(testRand(seed), specPool(), 5)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, q := range qs {
			if len(q.Options) != 4 {
				t.Fatalf("seed %d: question %s has %d options", seed, q.ID, len(q.Options))
			}
			seen := map[string]bool{}
			correctCount := 0
			for _, opt := range q.Options {
				if seen[opt] {
					t.Fatalf("seed %d: duplicate option %q in %s", seed, opt, q.ID)
				}
				seen[opt] = true
				if opt == q.CorrectAnswer {
					correctCount++
				}
			}
			if correctCount != 1 {
				t.Fatalf("seed %d: correct answer appears %d times in %s", seed, correctCount, q.ID)
			}
			switch q.Type {
			case ArchetypeArtistName:
				if q.CorrectAnswer != q.Track.Artist {
					t.Errorf("artist question %s: answer %q != artist %q", q.ID, q.CorrectAnswer, q.Track.Artist)
				}
			case ArchetypeSongName:
				if q.CorrectAnswer != q.Track.Name {
					t.Errorf("song question %s: answer %q != name %q", q.ID, q.CorrectAnswer, q.Track.Name)
				}
			default:
				t.Errorf("unknown archetype %q", q.Type)
			}
		}
	}
}

// TestGenerateIDsUnique verifies the deterministic question id format and
// that no two questions in a batch collide.
func TestGenerateIDsUnique(t *testing.T) {
	qs, err := Generate(testRand(4), specPool(), 3)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, q := range qs {
		want := fmt.Sprintf("question_%s_%s", q.Track.ID, q.Type)
		if q.ID != want {
			t.Errorf("question id %q, want %q", q.ID, want)
		}
		if seen[q.ID] {
			t.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
	}
}

// TestGenerateEmptyPool returns an empty batch, not an error.
func TestGenerateEmptyPool(t *testing.T) {
	qs, err := Generate(testRand(1), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("expected no questions, got %d", len(qs))
	}
}

// TestGenerateRejectsThinPool ensures pools without enough distinct artists
// are rejected instead of producing short or duplicated option lists.
func TestGenerateRejectsThinPool(t *testing.T) {
	pool := []Track{
		{ID: "a", Name: "Song A", Artist: "X"},
		{ID: "b", Name: "Song B", Artist: "Y"},
		{ID: "c", Name: "Song C", Artist: "X"},
	}
	if _, err := Generate(testRand(1), pool, 3); err != ErrInsufficientPool {
		t.Fatalf("expected ErrInsufficientPool, got %v", err)
	}
}

// TestGenerateSongFallback exercises the fallback to the artist archetype
// when too few distinct titles by other artists exist. With every track
// sharing one title, a song question can never fill its distractors, yet
// each question must still have four unique options.
func TestGenerateSongFallback(t *testing.T) {
	pool := []Track{
		{ID: "a", Name: "Same Title", Artist: "W"},
		{ID: "b", Name: "Same Title", Artist: "X"},
		{ID: "c", Name: "Same Title", Artist: "Y"},
		{ID: "d", Name: "Same Title", Artist: "Z"},
		{ID: "e", Name: "Same Title", Artist: "V"},
	}
	for seed := uint64(1); seed <= 10; seed++ {
		qs, err := Generate(testRand(seed), pool, 5)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, q := range qs {
			if q.Type != ArchetypeArtistName {
				t.Errorf("seed %d: expected fallback to artist archetype, got %s", seed, q.Type)
			}
			if len(q.Options) != 4 {
				t.Errorf("seed %d: %d options", seed, len(q.Options))
			}
		}
	}
}

// TestGeneratePrompts checks the composed question text mentions the focus
// track.
func TestGeneratePrompts(t *testing.T) {
	qs, err := Generate(testRand(2), specPool(), 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range qs {
		switch q.Type {
		case ArchetypeArtistName:
			if !strings.Contains(q.Question, q.Track.Name) {
				t.Errorf("artist prompt %q does not mention track name %q", q.Question, q.Track.Name)
			}
		case ArchetypeSongName:
			if !strings.Contains(q.Question, q.Track.Artist) {
				t.Errorf("song prompt %q does not mention artist %q", q.Question, q.Track.Artist)
			}
		}
	}
}

// TestGenerateDeterministic verifies a fixed seed reproduces the batch.
func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(testRand(11), specPool(), 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(testRand(11), specPool(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("batch sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Question != b[i].Question {
			t.Fatalf("question %d differs between identical seeds", i)
		}
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				t.Fatalf("option order differs between identical seeds")
			}
		}
	}
}

// TestGenerateDistractorsFromPool ensures every distractor is a value that
// actually occurs in the pool.
func TestGenerateDistractorsFromPool(t *testing.T) {
	pool := specPool()
	artists := map[string]bool{}
	names := map[string]bool{}
	for _, tr := range pool {
		artists[tr.Artist] = true
		names[tr.Name] = true
	}
	qs, err := Generate(testRand(6), pool, 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range qs {
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				continue
			}
			switch q.Type {
			case ArchetypeArtistName:
				if !artists[opt] {
					t.Errorf("distractor %q is not a pool artist", opt)
				}
			case ArchetypeSongName:
				if !names[opt] {
					t.Errorf("distractor %q is not a pool track name", opt)
				}
			}
		}
	}
}
