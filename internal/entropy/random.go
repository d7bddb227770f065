// Package entropy supplies the random sources of a run. A zero seed is
// replaced by one drawn from crypto/rand, and the seed actually used is
// reported so a run can be replayed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand"
)

// ResolveSeed returns seed, or a fresh crypto-random seed when it is 0.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to the global source.
		slog.Warn("crypto seed unavailable", "error", err)
		return mrand.Int63() | 1
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		s = 1
	}
	return s
}

// NewRand returns a source seeded with ResolveSeed(seed) and the seed used.
func NewRand(seed int64) (*mrand.Rand, int64) {
	s := ResolveSeed(seed)
	return mrand.New(mrand.NewSource(s)), s
}

// CryptoFloat returns a random float in [0, 1) from crypto/rand.
func CryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Choice returns a uniformly chosen element of items; ok is false when
// items is empty.
func Choice[T any](rng *mrand.Rand, items []T) (v T, ok bool) {
	if len(items) == 0 {
		return v, false
	}
	return items[rng.Intn(len(items))], true
}

// Chance reports true with probability p.
func Chance(rng *mrand.Rand, p float64) bool {
	return p > 0 && rng.Float64() < p
}
