package upstream

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Coin decides whether a simulated upstream call succeeds.
type Coin interface {
	Flip() bool
}

type seededCoin struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCoin returns a fair coin driven by a seeded PCG source. The same seed
// yields the same sequence of flips. Safe for concurrent use.
func NewCoin(seed uint64) Coin {
	return &seededCoin{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *seededCoin) Flip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(2) == 1
}

// Fixed always lands the same way.
type Fixed bool

// Flip returns the fixed outcome.
func (f Fixed) Flip() bool {
	return bool(f)
}

type sequenceCoin struct {
	outcomes []bool
	next     atomic.Uint64
}

// Sequence replays outcomes in order and wraps around.
func Sequence(outcomes ...bool) Coin {
	if len(outcomes) == 0 {
		outcomes = []bool{true}
	}
	return &sequenceCoin{outcomes: outcomes}
}

func (s *sequenceCoin) Flip() bool {
	i := s.next.Add(1) - 1
	return s.outcomes[i%uint64(len(s.outcomes))]
}
