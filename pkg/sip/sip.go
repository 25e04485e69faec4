// Package sip implements SipHash-c-d as an incremental hash.Hash64.
//
// SipHash-1-3 keyed with zeros is the default reducer of jumpch: it is the algorithm
// behind the reference bucket fixtures, so buckets computed here agree with other
// implementations that hash keys the same way. SipHash-2-4 is offered for parity with
// github.com/dchest/siphash.
package sip

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

const (
	// BlockSize is the size of a SipHash message block in bytes.
	BlockSize = 8
	// Size is the size of a SipHash-64 digest in bytes.
	Size = 8
)

const (
	initV0 = 0x736f6d6570736575
	initV1 = 0x646f72616e646f6d
	initV2 = 0x6c7967656e657261
	initV3 = 0x7465646279746573
)

var _ hash.Hash64 = (*Digest)(nil)

// Digest is a running SipHash computation. It is not safe for concurrent use.
type Digest struct {
	k0, k1         uint64
	c, d           int
	v0, v1, v2, v3 uint64
	x              [BlockSize]byte // pending tail
	nx             int             // bytes in x
	t              uint64          // total length
}

// New returns a SipHash-1-3 digest keyed with (k0, k1).
func New(k0, k1 uint64) *Digest {
	return NewRounds(k0, k1, 1, 3)
}

// New24 returns a SipHash-2-4 digest keyed with (k0, k1).
func New24(k0, k1 uint64) *Digest {
	return NewRounds(k0, k1, 2, 4)
}

// NewRounds returns a SipHash-c-d digest: c compression rounds per block and
// d finalization rounds. It panics when c or d is lower than 1.
func NewRounds(k0, k1 uint64, c, d int) *Digest {
	if c < 1 || d < 1 {
		panic("sip: rounds must be greater than 0")
	}

	h := &Digest{k0: k0, k1: k1, c: c, d: d}
	h.Reset()
	return h
}

// Sum64 returns the SipHash-1-3 digest of p keyed with (k0, k1).
func Sum64(k0, k1 uint64, p []byte) uint64 {
	h := Digest{k0: k0, k1: k1, c: 1, d: 3}
	h.Reset()
	_, _ = h.Write(p)
	return h.Sum64()
}

// Reset restores the keyed initial state.
func (h *Digest) Reset() {
	h.v0 = h.k0 ^ initV0
	h.v1 = h.k1 ^ initV1
	h.v2 = h.k0 ^ initV2
	h.v3 = h.k1 ^ initV3
	h.nx = 0
	h.t = 0
}

// Size returns the number of bytes Sum appends.
func (h *Digest) Size() int { return Size }

// BlockSize returns the SipHash block size.
func (h *Digest) BlockSize() int { return BlockSize }

// Write adds p to the running hash. It never returns an error.
func (h *Digest) Write(p []byte) (int, error) {
	n := len(p)
	h.t += uint64(n)

	if h.nx > 0 {
		c := copy(h.x[h.nx:], p)
		h.nx += c
		p = p[c:]
		if h.nx < BlockSize {
			return n, nil
		}
		h.compress(binary.LittleEndian.Uint64(h.x[:]))
		h.nx = 0
	}

	for len(p) >= BlockSize {
		h.compress(binary.LittleEndian.Uint64(p))
		p = p[BlockSize:]
	}

	h.nx = copy(h.x[:], p)
	return n, nil
}

// WriteString adds the bytes of s to the running hash. It never returns an error.
func (h *Digest) WriteString(s string) (int, error) {
	n := len(s)
	for len(s) > 0 {
		var buf [64]byte
		c := copy(buf[:], s)
		_, _ = h.Write(buf[:c])
		s = s[c:]
	}
	return n, nil
}

// Sum appends the big-endian digest to b. It does not change the underlying state.
func (h *Digest) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, h.Sum64())
}

// Sum64 returns the digest of the bytes written so far. It does not change the underlying state.
func (h *Digest) Sum64() uint64 {
	v0, v1, v2, v3 := h.v0, h.v1, h.v2, h.v3

	m := (h.t & 0xff) << 56
	for i := h.nx - 1; i >= 0; i-- {
		m |= uint64(h.x[i]) << (8 * uint(i))
	}

	v3 ^= m
	for i := 0; i < h.c; i++ {
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
	}
	v0 ^= m

	v2 ^= 0xff
	for i := 0; i < h.d; i++ {
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
	}

	return v0 ^ v1 ^ v2 ^ v3
}

func (h *Digest) compress(m uint64) {
	v0, v1, v2, v3 := h.v0, h.v1, h.v2, h.v3

	v3 ^= m
	for i := 0; i < h.c; i++ {
		v0, v1, v2, v3 = round(v0, v1, v2, v3)
	}
	v0 ^= m

	h.v0, h.v1, h.v2, h.v3 = v0, v1, v2, v3
}

func round(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = bits.RotateLeft64(v1, 13)
	v1 ^= v0
	v0 = bits.RotateLeft64(v0, 32)

	v2 += v3
	v3 = bits.RotateLeft64(v3, 16)
	v3 ^= v2

	v0 += v3
	v3 = bits.RotateLeft64(v3, 21)
	v3 ^= v0

	v2 += v1
	v1 = bits.RotateLeft64(v1, 17)
	v1 ^= v2
	v2 = bits.RotateLeft64(v2, 32)

	return v0, v1, v2, v3
}
