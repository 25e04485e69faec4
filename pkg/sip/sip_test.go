package sip

import (
	"encoding/binary"
	"testing"

	"github.com/dchest/siphash"
	sip13 "github.com/dgryski/go-sip13"
	"github.com/stretchr/testify/assert"
)

// input returns the bytes 0, 1, ..., n-1.
func input(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestSum64(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	testCases := []struct {
		n    int
		want uint64
	}{
		{0, 0xd1fba762150c532c},
		{1, 0x68a914128e01e473},
		{7, 0x2f098ab0c751325a},
		{8, 0xead411e67ebe2eea},
		{9, 0x75927f9d95124362},
		{15, 0xf30eb725bb91c9ea},
		{16, 0x8972188433a5c5b7},
		{63, 0x385d3e39e5f37359},
		{64, 0x75e05fd5bbc870c6},
	}

	for _, tc := range testCases {
		is.Equal(tc.want, Sum64(0, 0, input(tc.n)), "len=%d", tc.n)
	}

	is.Equal(uint64(0xc7dedb4632eec24c), Sum64(0, 0, []byte("test\xff")))
	is.Equal(uint64(0xe0969da9b8fb378d), Sum64(0, 0, []byte("test")))
	is.Equal(uint64(0xb1b1f2e707e4ac8a), Sum64(0, 0, []byte("hello world")))
}

func TestKeyed(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	key := input(16)
	k0 := binary.LittleEndian.Uint64(key[:8])
	k1 := binary.LittleEndian.Uint64(key[8:])

	is.Equal(uint64(0xd320d86d2a519956), Sum64(k0, k1, input(15)))

	// reference SipHash-2-4 vectors
	h := New24(k0, k1)
	is.Equal(uint64(0x726fdb47dd0e0e31), h.Sum64())
	_, _ = h.Write(input(15))
	is.Equal(uint64(0xa129ca6149be45e5), h.Sum64())
}

func TestNew24_MatchesDchest(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	k0, k1 := uint64(0x0706050403020100), uint64(0x0f0e0d0c0b0a0908)

	for n := 0; n < 200; n++ {
		p := input(n)
		h := New24(k0, k1)
		_, _ = h.Write(p)
		is.Equal(siphash.Hash(k0, k1, p), h.Sum64(), "len=%d", n)
	}
}

func TestSum64_MatchesSip13(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	for _, key := range [][2]uint64{{0, 0}, {0x0706050403020100, 0x0f0e0d0c0b0a0908}} {
		for n := 0; n < 200; n++ {
			p := input(n)
			want := sip13.Sum64(key[0], key[1], p)
			is.Equal(want, Sum64(key[0], key[1], p), "len=%d", n)

			h := New(key[0], key[1])
			_, _ = h.Write(p)
			is.Equal(want, h.Sum64(), "len=%d", n)
		}
	}
}

func TestDigest_Incremental(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	p := input(100)
	want := Sum64(0, 0, p)

	for _, chunk := range []int{1, 3, 7, 8, 9, 31, 64} {
		h := New(0, 0)
		for i := 0; i < len(p); i += chunk {
			end := min(i+chunk, len(p))
			n, err := h.Write(p[i:end])
			is.NoError(err)
			is.Equal(end-i, n)
		}
		is.Equal(want, h.Sum64(), "chunk=%d", chunk)
	}

	h := New(0, 0)
	n, err := h.WriteString(string(p))
	is.NoError(err)
	is.Equal(100, n)
	is.Equal(want, h.Sum64())
}

func TestDigest_SumDoesNotMutate(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	h := New(0, 0)
	_, _ = h.Write([]byte("te"))
	is.Equal(h.Sum64(), h.Sum64())

	_, _ = h.Write([]byte("st\xff"))
	is.Equal(uint64(0xc7dedb4632eec24c), h.Sum64())
	is.Equal(uint64(0xc7dedb4632eec24c), h.Sum64())

	sum := h.Sum([]byte{0x42})
	is.Len(sum, 9)
	is.Equal(byte(0x42), sum[0])
	is.Equal(uint64(0xc7dedb4632eec24c), binary.BigEndian.Uint64(sum[1:]))
}

func TestDigest_Reset(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	h := New(1, 2)
	empty := h.Sum64()

	_, _ = h.Write(input(21))
	is.NotEqual(empty, h.Sum64())

	h.Reset()
	is.Equal(empty, h.Sum64())
	is.Equal(8, h.Size())
	is.Equal(8, h.BlockSize())
}

func TestNewRounds(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	is.Panics(func() {
		_ = NewRounds(0, 0, 0, 3)
	})
	is.Panics(func() {
		_ = NewRounds(0, 0, 1, 0)
	})
	is.NotPanics(func() {
		_ = NewRounds(0, 0, 4, 8)
	})
}

func BenchmarkSum64(b *testing.B) {
	p := input(32)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Sum64(0, 0, p)
	}
}
