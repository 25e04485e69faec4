package jumpch

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/samber/jumpch/internal"
	"github.com/samber/jumpch/pkg/sip"
)

// Hash64 is the capability JumpHasher needs from the wrapped algorithm:
// consume bytes, then read a 64-bit digest without consuming the state.
// Every hash.Hash64 satisfies it.
type Hash64 interface {
	io.Writer
	Sum64() uint64
}

var _ hash.Hash32 = (*JumpHasher[hash.Hash64])(nil)

// JumpHasher reduces the bytes written to it to a bucket index in [0, slots).
// The bytes are accumulated by the wrapped hash; Sum32 feeds its 64-bit digest to Hash.
//
// The slot count is fixed for the lifetime of the hasher. A JumpHasher is not safe for
// concurrent use: each goroutine must own its own.
type JumpHasher[H Hash64] struct {
	noCopy internal.NoCopy

	slots  Slots
	hasher H
}

// New returns a JumpHasher backed by SipHash-1-3 with a zero key.
// It panics when slots is 0.
func New(slots uint32) *JumpHasher[*sip.Digest] {
	return NewWithHasher(slots, sip.New(0, 0))
}

// NewWithHasher returns a JumpHasher accumulating bytes into h.
// h should be freshly created or reset. It panics when slots is 0.
func NewWithHasher[H Hash64](slots uint32, h H) *JumpHasher[H] {
	return &JumpHasher[H]{
		slots:  NewSlots(slots),
		hasher: h,
	}
}

// Write feeds p to the wrapped hash. It returns the wrapped hash's result.
func (h *JumpHasher[H]) Write(p []byte) (int, error) {
	return h.hasher.Write(p)
}

// WriteString feeds the raw bytes of s to the wrapped hash.
// Use the package-level WriteString for a prefix-free encoding of string keys.
func (h *JumpHasher[H]) WriteString(s string) (int, error) {
	if sw, ok := any(h.hasher).(io.StringWriter); ok {
		return sw.WriteString(s)
	}
	return h.hasher.Write([]byte(s))
}

// Sum32 returns the bucket of the bytes written so far.
// It does not change the underlying state: calling it twice without writing in between
// returns the same bucket, and further writes extend the same input.
func (h *JumpHasher[H]) Sum32() uint32 {
	return h.slots.Hash(h.hasher.Sum64())
}

// Sum appends the big-endian bucket index to b.
func (h *JumpHasher[H]) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, h.Sum32())
}

// Reset rewinds the wrapped hash. It panics if the wrapped hash has no Reset method.
func (h *JumpHasher[H]) Reset() {
	r, ok := any(h.hasher).(interface{ Reset() })
	assertValue(ok, "jumpch: wrapped hasher cannot be reset")
	r.Reset()
}

// Size returns the number of bytes Sum appends.
func (h *JumpHasher[H]) Size() int {
	return 4
}

// BlockSize returns the block size of the wrapped hash, or 1 when unknown.
func (h *JumpHasher[H]) BlockSize() int {
	if bs, ok := any(h.hasher).(interface{ BlockSize() int }); ok {
		return bs.BlockSize()
	}
	return 1
}

// Slots returns the fixed number of buckets.
func (h *JumpHasher[H]) Slots() Slots {
	return h.slots
}

// Hasher returns the wrapped hash.
func (h *JumpHasher[H]) Hasher() H {
	return h.hasher
}
