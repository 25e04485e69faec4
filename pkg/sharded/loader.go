package sharded

import (
	"maps"
	"slices"
)

// Loader fetches values for keys from a backing store. Keys that cannot be found
// are left out of the returned map.
type Loader[K comparable, V any] func(keys []K) (found map[K]V, err error)

// ShardLoader is a Loader that also receives the shard the keys are routed to,
// e.g. to query the partition of a store that mirrors the shard layout.
// A concurrent Resize may re-home the keys before the results are stored.
type ShardLoader[K comparable, V any] func(shard uint32, keys []K) (found map[K]V, err error)

func (loader Loader[K, V]) perShard() ShardLoader[K, V] {
	return func(_ uint32, keys []K) (map[K]V, error) {
		return loader(keys)
	}
}

// LoaderChain runs loaders in order, one shard at a time.
type LoaderChain[K comparable, V any] []ShardLoader[K, V]

// run loads the keys of batch, shard by shard in ascending order. Within a shard, each
// loader only receives the keys its predecessors did not find. Values returned for keys
// outside the batch are kept. The first error aborts the whole run.
func (loaders LoaderChain[K, V]) run(batch map[uint32][]K) (found map[K]V, missing []K, err error) {
	found = map[K]V{}
	missing = []K{}

	shards := slices.Sorted(maps.Keys(batch))

	for _, shard := range shards {
		pending := batch[shard]

		for _, loader := range loaders {
			if len(pending) == 0 {
				break
			}

			values, err := loader(shard, pending)
			if err != nil {
				return map[K]V{}, []K{}, err
			}
			maps.Copy(found, values)

			next := make([]K, 0, len(pending))
			for _, key := range pending {
				if _, ok := values[key]; !ok {
					next = append(next, key)
				}
			}
			pending = next
		}

		missing = append(missing, pending...)
	}

	return found, missing, nil
}
