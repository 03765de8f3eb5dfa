package engine

import (
	"strconv"

	"github.com/google/uuid"
)

// IDSource hands out identifiers for newly created blocks.
type IDSource interface {
	NextID() string
}

// UUIDSource generates random UUIDs. It is the default for real games.
type UUIDSource struct{}

// NextID returns a new random UUID string.
func (UUIDSource) NextID() string {
	return uuid.NewString()
}

// SequenceIDs generates "<prefix><n>" ids with n counting from 1.
// Used for reproducible tests and replays.
type SequenceIDs struct {
	Prefix string
	n      int
}

// NextID returns the next id in the sequence.
func (s *SequenceIDs) NextID() string {
	s.n++
	return s.Prefix + strconv.Itoa(s.n)
}
