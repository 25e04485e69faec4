// Package jumpch implements Jump Consistent Hash (Lamping & Veach, https://arxiv.org/abs/1406.2294).
//
// Hash maps a 64-bit key to a bucket in [0, slots). When the number of slots grows from n to n+1,
// only ~1/(n+1) of the keys move, and they all move to the new bucket.
//
// JumpHasher plugs the algorithm behind any incremental 64-bit hash, so arbitrary values can be
// reduced to a bucket index:
//
//	h := jumpch.New(1000)
//	jumpch.WriteString(h, "some-key")
//	bucket := h.Sum32() // in [0, 1000)
package jumpch

import "cmp"

const (
	// Multiplier of the linear congruential generator used to advance the key.
	lcgMultiplier = 2862933555777941757

	// 2^31, the numerator of the jump distance.
	jumpScale = float64(int64(1) << 31)
)

// Hash returns the bucket of key among slots buckets, in [0, slots).
// The result is bit-exact with every other Jump Consistent Hash implementation.
//
// Hash panics when slots is 0.
func Hash(key uint64, slots uint32) uint32 {
	assertValue(slots > 0, "jumpch: slots must be greater than 0")

	var b int64 = -1
	var j int64

	for j < int64(slots) {
		b = j
		key = key*lcgMultiplier + 1
		j = int64(float64(b+1) * (jumpScale / float64((key>>33)+1)))
	}

	return uint32(b)
}

// Slots is a bucket count known to be greater than 0.
// The zero value is invalid: hashing with it panics.
type Slots struct {
	n uint32
}

// NewSlots validates n and wraps it. It panics when n is 0.
func NewSlots(n uint32) Slots {
	assertValue(n > 0, "jumpch: slots must be greater than 0")
	return Slots{n: n}
}

// Value returns the number of buckets.
func (s Slots) Value() uint32 {
	return s.n
}

// Hash returns the bucket of key in [0, s.Value()).
func (s Slots) Hash(key uint64) uint32 {
	return Hash(key, s.n)
}

// Compare returns -1, 0 or +1 depending on whether s is fewer, as many or more slots than other.
func (s Slots) Compare(other Slots) int {
	return cmp.Compare(s.n, other.n)
}
