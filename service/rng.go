package service

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the source of randomness for game resolution. Injecting it keeps
// shuffles and draws deterministic and replayable under test.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a seeded, unsynchronized source for deterministic tests
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSeededRand returns a time-seeded source safe for concurrent use
func NewTimeSeededRand() Rand {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// lockedRand serializes access so concurrent game flows can share one source
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
