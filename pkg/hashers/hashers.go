// Package hashers names the 64-bit incremental hash algorithms that can feed a
// jumpch.JumpHasher, so the reducer can be picked from configuration.
package hashers

import (
	"errors"
	"fmt"
	"hash"
	"hash/fnv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"github.com/samber/jumpch"
	"github.com/samber/jumpch/pkg/sip"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// ErrUnknownAlgorithm is returned for algorithm names this package does not know.
var ErrUnknownAlgorithm = errors.New("hashers: unknown algorithm")

type Algorithm string

const (
	// SipHash13 is SipHash-1-3 with a zero key, the default reducer.
	SipHash13 Algorithm = "siphash13"
	// SipHash24 is SipHash-2-4 with a zero key.
	SipHash24 Algorithm = "siphash24"
	XXHash64  Algorithm = "xxhash64"
	XXH3      Algorithm = "xxh3"
	Murmur3   Algorithm = "murmur3"
	FNV1a     Algorithm = "fnv1a"
)

var algorithms = []Algorithm{SipHash13, SipHash24, XXHash64, XXH3, Murmur3, FNV1a}

var aliases = map[string]Algorithm{
	"":          SipHash13,
	"default":   SipHash13,
	"sip13":     SipHash13,
	"siphash":   SipHash24,
	"sip24":     SipHash24,
	"xxhash":    XXHash64,
	"xxh64":     XXHash64,
	"xxh3":      XXH3,
	"murmur":    Murmur3,
	"murmur3":   Murmur3,
	"fnv":       FNV1a,
	"fnv-1a":    FNV1a,
	"fnv64a":    FNV1a,
	"siphash13": SipHash13,
	"siphash24": SipHash24,
	"xxhash64":  XXHash64,
	"fnv1a":     FNV1a,
}

// Algorithms returns the supported algorithms, default first.
func Algorithms() []Algorithm {
	return append([]Algorithm{}, algorithms...)
}

// Parse resolves an algorithm name or alias, case-insensitively.
// The empty string resolves to SipHash13.
func Parse(name string) (Algorithm, error) {
	if alg, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return alg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// New returns a fresh digest for alg.
func New(alg Algorithm) (hash.Hash64, error) {
	switch alg {
	case SipHash13:
		return sip.New(0, 0), nil
	case SipHash24:
		return siphash.New(make([]byte, 16)), nil
	case XXHash64:
		return xxhash.New(), nil
	case XXH3:
		return xxh3.New(), nil
	case Murmur3:
		return murmur3.New64(), nil
	case FNV1a:
		return fnv.New64a(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
}

// NewJumpHasher returns a JumpHasher over a fresh alg digest.
// It panics when slots is 0, like jumpch.NewWithHasher.
func NewJumpHasher(alg Algorithm, slots uint32) (*jumpch.JumpHasher[hash.Hash64], error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}
	return jumpch.NewWithHasher(slots, h), nil
}

// KeyHasher returns a function reducing keys to 64 bits with alg and the
// jumpch.WriteValue encoding. The function is safe for concurrent use: it
// creates a digest per call. It panics on keys that cannot be encoded.
func KeyHasher[K jumpch.Key](alg Algorithm) (func(K) uint64, error) {
	if _, err := New(alg); err != nil {
		return nil, err
	}

	return func(key K) uint64 {
		h, _ := New(alg)
		jumpch.MustWriteValue(h, key)
		return h.Sum64()
	}, nil
}
