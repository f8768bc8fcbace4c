package playlist

import "math/rand/v2"

// Shuffle permutes items in place with a Fisher–Yates shuffle, so every
// permutation is equally likely for a uniform source.
func Shuffle[T any](items []T, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](items []T, rng *rand.Rand) []T {
	result := make([]T, len(items))
	copy(result, items)
	Shuffle(result, rng)
	return result
}
