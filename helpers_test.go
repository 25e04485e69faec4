package jumpch

import "io"

// splitmix64 returns the i-th output of a SplitMix64 stream seeded with 0.
// It gives tests a reproducible, well-spread key space.
func splitmix64(i uint64) uint64 {
	z := (i + 1) * 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func sampleKeys(n int) []uint64 {
	keys := make([]uint64, n)
	for i := range keys {
		keys[i] = splitmix64(uint64(i))
	}
	return keys
}

// xorHash64 is a minimal Hash64: no Reset, no BlockSize.
type xorHash64 struct {
	sum uint64
}

var _ Hash64 = (*xorHash64)(nil)

func (h *xorHash64) Write(p []byte) (int, error) {
	for _, b := range p {
		h.sum = (h.sum << 7) ^ (h.sum >> 57) ^ uint64(b)
	}
	return len(p), nil
}

func (h *xorHash64) Sum64() uint64 {
	return h.sum
}

// failingWriter rejects every write.
type failingWriter struct{}

var _ io.Writer = failingWriter{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, io.ErrShortWrite
}
