package sharded

import (
	"github.com/cespare/xxhash/v2"
	"github.com/samber/jumpch"
)

// Hasher is responsible for generating an unsigned, 64 bit hash of the provided key.
// The jump hash then maps it to a shard, so it must spread keys over the whole
// 64 bit space. For great performance, a fast function is preferable.
type Hasher[K any] func(K) uint64

func (fn Hasher[K]) computeShard(key K, shards uint32) uint32 {
	return jumpch.Hash(fn(key), shards)
}

// DefaultHasher hashes the jumpch.WriteValue encoding of keys with xxhash.
// It panics on keys WriteValue cannot encode, or whose MarshalBinary fails.
func DefaultHasher[K comparable]() Hasher[K] {
	return func(key K) uint64 {
		h := xxhash.New()
		jumpch.MustWriteValue(h, key)
		return h.Sum64()
	}
}
