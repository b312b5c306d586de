package random

import (
	"math/rand"
)

// Source yields uniform integers in [0, n).
//
// *math/rand.Rand satisfies Source.
type Source interface {
	Intn(n int) int
}

// New returns a deterministic math/rand source for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Sequence is a scripted Source that replays fixed draws in order.
//
// Each draw is reduced modulo n so a script written for one range stays valid
// for another. Once exhausted the sequence starts over from the first draw.
type Sequence struct {
	draws []int
	next  int
}

// NewSequence builds a Sequence over draws. An empty sequence always yields 0.
func NewSequence(draws ...int) *Sequence {
	return &Sequence{draws: append([]int(nil), draws...)}
}

// Intn returns the next scripted draw reduced into [0, n).
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	if s == nil || len(s.draws) == 0 {
		return 0
	}
	value := s.draws[s.next%len(s.draws)]
	s.next++
	value %= n
	if value < 0 {
		value += n
	}
	return value
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int {
	if s == nil {
		return 0
	}
	return s.next
}
