// Package sampler provides a reference photon.Sampler: a deterministic,
// per-dimension-independent random number stream built on math/rand, in the
// spirit of the teacher corpus's Sampler-wraps-*rand.Rand convention but
// extended with hashed substreams so distinct dimension tags (light
// position, hemisphere direction, Russian roulette, ...) never draw from the
// same correlated sequence.
package sampler

import "math/rand"

// Random is a photon.Sampler backed by math/rand. Initiate fixes the base
// seed; SetIndex selects which path's stream to draw from; Get1D/Get2D
// derive an independent substream per (seed, index, salt, dim) so that two
// different dimension tags never observe the same bits.
type Random struct {
	seed  int64
	index int
	salt  int64
}

// New returns a Random sampler. Call Initiate before first use.
func New() *Random {
	return &Random{}
}

func (s *Random) Initiate(seed int64) {
	s.seed = seed
	s.index = 0
	s.salt = 0
}

func (s *Random) SetIndex(i int) {
	s.index = i
}

// Shuffle perturbs the substream salt so a sampler reused across logically
// distinct passes over the same index (e.g. re-tracing a path) doesn't
// replay identical variates.
func (s *Random) Shuffle() {
	s.salt = mix(s.salt, -7046029254386353131) // two's-complement encoding of 0x9e3779b97f4a7c15
}

func (s *Random) rngFor(dim int, n int) *rand.Rand {
	h := mix(s.seed, int64(s.index), s.salt, int64(dim), int64(n))
	return rand.New(rand.NewSource(h))
}

func (s *Random) Get1D(dim int) float64 {
	return s.rngFor(dim, 0).Float64()
}

func (s *Random) Get2D(dim int) [2]float64 {
	r := s.rngFor(dim, 1)
	return [2]float64{r.Float64(), r.Float64()}
}

// mix combines a variable number of int64 values into one well-distributed
// seed using the FNV-1a mixing step.
func mix(vals ...int64) int64 {
	h := uint64(0xcbf29ce484222325)
	for _, v := range vals {
		h ^= uint64(v)
		h *= 0x100000001b3
	}
	return int64(h)
}
