package tournament

import (
	"math/rand"
	"sync"
)

// RandomSource is the only source of non-determinism used by the generators
type RandomSource interface {
	// Intn returns a uniform int in [0, n)
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a RandomSource seeded with seed. The same seed always yields the same schedule
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.Intn(n)
}

// Shuffle does an in-place Fisher–Yates shuffle of items
func Shuffle[T any](rng RandomSource, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy, leaving items untouched
func Shuffled[T any](rng RandomSource, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(rng, out)
	return out
}

// Pick returns a random element of items
func Pick[T any](rng RandomSource, items []T) T {
	return items[rng.Intn(len(items))]
}
