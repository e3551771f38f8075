// Package entropy supplies the seedable random sources threaded through the
// node store, the response walk and the simulator.
package entropy

import (
	"math/rand/v2"
	"time"
)

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a PCG-backed source. Equal seeds give equal sequences.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SeedFromClock derives a seed from the wall clock for sessions that did not
// configure one.
func SeedFromClock() uint64 {
	return uint64(time.Now().UnixNano())
}

// Sequence replays fixed values, wrapping around. Tests use it to force
// specific walk decisions.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence returns a Source that cycles through values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 implements Source. An empty sequence always yields 0.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}
