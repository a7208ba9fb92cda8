// Package rng defines the injected random source used by every generation step.
package rng

import "math/rand/v2"

// #region source

// Source is the randomness capability the engine draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// New returns a PCG-backed source. The same seed always yields the same sequence.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>8|3))
}

// Scripted replays fixed draws in order and then defers to Fallback.
// With no Fallback, IntN returns 0 and Float64 returns 0.5.
type Scripted struct {
	Ints     []int
	Floats   []float64
	Fallback Source
}

// IntN returns the next scripted int reduced modulo n.
func (s *Scripted) IntN(n int) int {
	if len(s.Ints) > 0 {
		v := s.Ints[0]
		s.Ints = s.Ints[1:]
		return v % n
	}
	if s.Fallback != nil {
		return s.Fallback.IntN(n)
	}
	return 0
}

// Float64 returns the next scripted float.
func (s *Scripted) Float64() float64 {
	if len(s.Floats) > 0 {
		v := s.Floats[0]
		s.Floats = s.Floats[1:]
		return v
	}
	if s.Fallback != nil {
		return s.Fallback.Float64()
	}
	return 0.5
}

// #endregion

// #region helpers

// Pick returns a uniformly chosen element of items. ok is false for an empty slice.
func Pick[T any](src Source, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[src.IntN(len(items))], true
}

// Uniform returns a float64 in [lo, hi].
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// #endregion
