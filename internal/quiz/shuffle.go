package quiz

import "math/rand"

// Shuffle returns a uniformly shuffled copy of in (Fisher-Yates).
// The input slice is left untouched. A nil rng uses the global source.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}

	return out
}
