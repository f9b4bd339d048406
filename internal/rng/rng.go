// Package rng provides a replayable pseudo-random number source.
//
// Every listener of a station derives the same seed for the same month, so
// two processes that walk the sequence from index 0 see identical values.
// That property is what makes independently computed playlists line up.
package rng

const (
	avalancheMultiplier = 0x45d9f3b
	maxUint32           = 0xFFFFFFFF
)

// Source generates a reproducible sequence of 32-bit values from a seed.
// It is not safe for concurrent use; each station owns its own Source.
type Source struct {
	seed  uint32
	index uint32
}

// New creates a Source positioned at index 0.
func New(seed uint32) *Source {
	return &Source{seed: seed}
}

// Reset re-seeds the source and rewinds it to index 0.
func (s *Source) Reset(seed uint32) {
	s.seed = seed
	s.index = 0
}

// Generate returns the value for the current (seed, index) pair without
// advancing. Calling it repeatedly yields the same value.
func (s *Source) Generate() uint32 {
	v := s.seed ^ s.index
	v = (v ^ (v >> 21)) * avalancheMultiplier
	v = (v ^ (v >> 15)) * avalancheMultiplier
	v ^= v >> 13
	return v
}

// Next returns the value for the current index and advances to the next one.
func (s *Source) Next() uint32 {
	v := s.Generate()
	s.index++
	return v
}

// Index returns the current position in the sequence.
func (s *Source) Index() uint32 {
	return s.index
}

// Float maps a raw 32-bit value onto [0, 1].
func Float(v uint32) float64 {
	return float64(v) / float64(maxUint32)
}
