// Package randutil builds the deterministic random sources used for deck
// shuffles and simulation runs. Every source in the repo goes through New,
// so one int64 seed reproduces a whole session.
package randutil

import rand "math/rand/v2"

// New returns a rand.Rand whose sequence is fully determined by seed.
// PCG wants two state words; the second is a splitmix step of the first so
// adjacent seeds start in unrelated states.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, splitmix(s)))
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
