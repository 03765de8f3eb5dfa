package session

import "math/rand"

// ValueSource picks the value of the next block to drop.
type ValueSource interface {
	Next(values []int) int
}

// RandomSource draws uniformly from the value set.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource creates a RandomSource seeded with seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// Next returns a uniformly chosen element of values.
func (s *RandomSource) Next(values []int) int {
	if len(values) == 0 {
		return 0
	}
	return values[s.rng.Intn(len(values))]
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
// The value set is ignored.
type SequenceSource struct {
	Values []int
	pos    int
}

// Next returns the next value of the sequence.
func (s *SequenceSource) Next([]int) int {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}
