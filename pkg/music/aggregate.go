// This file implements the track pool aggregation used to source quiz
// material. Three independent strategies are combined: the user's top
// tracks, top tracks of artists related to the user's top artists, and the
// user's saved/recently played tracks. Only the first strategy is
// load-bearing; the other two degrade to an empty contribution when the
// upstream rejects them, so a partially failed aggregation still yields a
// usable pool.
package music

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Catalog artist and track identifiers are fixed-length base62 strings.
// Anything of a different length cannot resolve and is skipped up front.
const catalogIDLength = 22

// Default bounds for the fan-out. They match the product's observed request
// shape: 50 top tracks, 20 top artists, 3 related-artist expansions.
const (
	DefaultTopTrackLimit  = 50
	DefaultTopArtistLimit = 20
	DefaultRelatedLimit   = 3

	// relatedArtistCap bounds how many related artists have their top
	// tracks fetched, capping upstream request pressure.
	relatedArtistCap = 5
)

// Summary counts the per-item failures absorbed during a best-effort
// aggregation, keyed by reason. Callers can log it or feed it into metrics;
// it never influences the success of Aggregate itself.
type Summary struct {
	NotFound         int
	PermissionDenied int
	Other            int
}

// Skipped returns the total number of absorbed failures.
func (s Summary) Skipped() int { return s.NotFound + s.PermissionDenied + s.Other }

func (s Summary) add(o Summary) Summary {
	s.NotFound += o.NotFound
	s.PermissionDenied += o.PermissionDenied
	s.Other += o.Other
	return s
}

// Aggregator builds a deduplicated candidate track pool from the user's
// listening history. The zero value is not usable; Catalog must be set.
// Rand may be seeded for deterministic sampling in tests; leave it nil
// when the Aggregator serves concurrent callers.
type Aggregator struct {
	Catalog Catalog
	Rand    *rand.Rand
	Log     logrus.FieldLogger

	TopTrackLimit  int
	TopArtistLimit int
	RelatedLimit   int
}

// Aggregate fetches all three track sources and merges them into a single
// pool with no duplicate IDs. Top tracks come first, so when a track
// appears in several sources the top-tracks copy wins. Failure of either
// foundational fetch (top tracks, top artists) aborts the aggregation;
// every later per-item failure is classified into the returned Summary and
// absorbed. An empty pool is a valid result.
func (a *Aggregator) Aggregate(ctx context.Context, token string) ([]Track, Summary, error) {
	trackLimit := a.TopTrackLimit
	if trackLimit <= 0 {
		trackLimit = DefaultTopTrackLimit
	}
	artistLimit := a.TopArtistLimit
	if artistLimit <= 0 {
		artistLimit = DefaultTopArtistLimit
	}

	var (
		top     []Track
		artists []Artist
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withRetry(func() error {
			var err error
			top, err = a.Catalog.TopTracks(gctx, token, TimeRangeMedium, trackLimit)
			return err
		})
	})
	g.Go(func() error {
		return withRetry(func() error {
			var err error
			artists, err = a.Catalog.TopArtists(gctx, token, TimeRangeMedium, artistLimit)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, Summary{}, fmt.Errorf("fetch listening profile: %w", err)
	}

	artistIDs := make([]string, 0, len(artists))
	for _, ar := range artists {
		artistIDs = append(artistIDs, ar.ID)
	}

	// The two enrichment sources are independent and both best-effort, so
	// they run concurrently and report only skip counts.
	var (
		wg      sync.WaitGroup
		related []Track
		library []Track
		relSum  Summary
		librSum Summary
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		related, relSum = a.relatedArtistTracks(ctx, token, artistIDs)
	}()
	go func() {
		defer wg.Done()
		library, librSum = a.savedAndRecentTracks(ctx, token)
	}()
	wg.Wait()
	sum := relSum.add(librSum)

	all := make([]Track, 0, len(top)+len(related)+len(library))
	all = append(all, top...)
	all = append(all, related...)
	all = append(all, library...)

	// Records without an identity or artist list cannot become questions;
	// dropping them here keeps the normalizer total.
	dropped := 0
	valid := all[:0]
	for _, t := range all {
		if t.ID == "" || t.Name == "" || len(t.Artists) == 0 {
			dropped++
			continue
		}
		valid = append(valid, t)
	}
	pool := dedupeTracks(valid)

	if a.Log != nil {
		a.Log.WithFields(logrus.Fields{
			"pool":              len(pool),
			"malformed":         dropped,
			"top_tracks":        len(top),
			"related":           len(related),
			"library":           len(library),
			"skipped_not_found": sum.NotFound,
			"skipped_scope":     sum.PermissionDenied,
			"skipped_other":     sum.Other,
		}).Info("aggregated track pool")
	}
	return pool, sum, nil
}

// relatedArtistTracks expands the user's top artists into tracks by similar
// artists. Every per-artist failure is skipped: malformed IDs silently,
// 404s counted (many artists simply have no related-artist data upstream),
// anything else logged. The method never returns an error; when every
// sub-fetch fails the contribution is empty.
func (a *Aggregator) relatedArtistTracks(ctx context.Context, token string, artistIDs []string) ([]Track, Summary) {
	var sum Summary
	limit := a.RelatedLimit
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	sampled := Sample(a.rng(), artistIDs, 2*limit)

	var batches [][]Artist
	for _, id := range sampled {
		if len(id) != catalogIDLength {
			continue
		}
		arts, err := a.Catalog.RelatedArtists(ctx, token, id)
		if err != nil {
			if IsNotFound(err) {
				sum.NotFound++
			} else {
				sum.Other++
				a.warn(err, "fetch related artists")
			}
			continue
		}
		batches = append(batches, arts)
		if len(batches) >= limit {
			break
		}
	}

	seen := make(map[string]struct{})
	var relatedIDs []string
	for _, batch := range batches {
		for _, ar := range batch {
			if _, ok := seen[ar.ID]; ok {
				continue
			}
			seen[ar.ID] = struct{}{}
			relatedIDs = append(relatedIDs, ar.ID)
		}
	}

	var tracks []Track
	for _, id := range Sample(a.rng(), relatedIDs, relatedArtistCap) {
		tt, err := a.Catalog.ArtistTopTracks(ctx, token, id)
		if err != nil {
			sum.Other++
			a.warn(err, "fetch artist top tracks")
			continue
		}
		tracks = append(tracks, tt...)
	}
	return tracks, sum
}

// savedAndRecentTracks fetches the user's library and listening history.
// Both endpoints are scope-gated and optional: a permission error means the
// user never granted that scope and is absorbed without logging, other
// errors are logged and absorbed. The concatenation of whatever succeeded
// is returned deduplicated.
func (a *Aggregator) savedAndRecentTracks(ctx context.Context, token string) ([]Track, Summary) {
	var (
		sum    Summary
		tracks []Track
	)
	collect := func(fetch func() ([]Track, error), what string) {
		tt, err := fetch()
		if err != nil {
			if IsPermissionDenied(err) {
				sum.PermissionDenied++
			} else {
				sum.Other++
				a.warn(err, what)
			}
			return
		}
		tracks = append(tracks, tt...)
	}
	collect(func() ([]Track, error) { return a.Catalog.SavedTracks(ctx, token) }, "fetch saved tracks")
	collect(func() ([]Track, error) { return a.Catalog.RecentlyPlayed(ctx, token) }, "fetch recently played")
	return dedupeTracks(tracks), sum
}

// rng never writes back to the Aggregator, which is shared across
// concurrent requests. When no deterministic source is configured each
// call gets its own generator.
func (a *Aggregator) rng() *rand.Rand {
	if a.Rand != nil {
		return a.Rand
	}
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

func (a *Aggregator) warn(err error, what string) {
	if a.Log != nil {
		a.Log.WithError(err).Warn(what)
	}
}

// dedupeTracks removes duplicate IDs preserving first-seen order.
func dedupeTracks(in []Track) []Track {
	seen := make(map[string]struct{}, len(in))
	out := make([]Track, 0, len(in))
	for _, t := range in {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// withRetry reissues fn up to three times when the failure looks
// transient (rate limited or 5xx). Only the foundational fetches use it;
// best-effort calls are cheaper to skip than to retry.
func withRetry(fn func() error) error {
	return retry.Do(fn,
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
	)
}
