// This file implements uniform random sampling without replacement. The
// random source is passed in explicitly so callers (and tests) can seed it
// for deterministic output.
package music

import "math/rand/v2"

// Sample returns k elements drawn uniformly at random from items without
// replacement. When k >= len(items) the result is a full random permutation
// of items; when k <= 0 the result is empty. The input slice is never
// modified and the order of the returned elements is random.
func Sample[T any](r *rand.Rand, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	out := make([]T, 0, k)
	for _, i := range r.Perm(len(items))[:k] {
		out = append(out, items[i])
	}
	return out
}

// Shuffle returns a copy of items in random order.
func Shuffle[T any](r *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
