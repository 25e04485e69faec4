package sharded

import (
	"sync"

	"github.com/DmitriyVTitov/size"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/go-singleflightx"
	"github.com/samber/jumpch/internal"
	"github.com/samber/jumpch/pkg/metrics"
)

var _ prometheus.Collector = (*ShardedMap[string, any])(nil)

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func newShard[K comparable, V any]() *shard[K, V] {
	return &shard[K, V]{items: map[K]V{}}
}

func newShardedMap[K comparable, V any](
	shards uint32,
	fn Hasher[K],
	loaders LoaderChain[K, V],
	collector metrics.Collector,
) *ShardedMap[K, V] {
	table := make([]*shard[K, V], shards)
	for i := range table {
		table[i] = newShard[K, V]()
	}

	return &ShardedMap[K, V]{
		shards:    table,
		fn:        fn,
		loaders:   loaders,
		group:     singleflightx.Group[K, V]{},
		collector: collector,
	}
}

// ShardedMap is a concurrent map split into shards, where a key lives in the shard
// picked by the jump consistent hash of its 64 bit digest. Changing the number of
// shards with Resize only moves the keys whose shard changed.
type ShardedMap[K comparable, V any] struct {
	noCopy internal.NoCopy

	// mu guards the shard table. Only Resize takes it exclusively.
	mu     sync.RWMutex
	shards []*shard[K, V]

	fn      Hasher[K]
	loaders LoaderChain[K, V]
	group   singleflightx.Group[K, V]

	collector metrics.Collector
}

// shardFor must be called with m.mu held.
func (m *ShardedMap[K, V]) shardFor(key K) (uint32, *shard[K, V]) {
	i := m.fn.computeShard(key, uint32(len(m.shards)))
	return i, m.shards[i]
}

// batch groups keys by shard index. It must be called with m.mu held.
func (m *ShardedMap[K, V]) batch(keys []K) map[uint32][]K {
	batch := map[uint32][]K{}
	for _, key := range keys {
		i := m.fn.computeShard(key, uint32(len(m.shards)))
		batch[i] = append(batch[i], key)
	}
	return batch
}

// Set stores a value, replacing any previous one.
func (m *ShardedMap[K, V]) Set(key K, value V) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	length := len(s.items)
	s.mu.Unlock()

	m.collector.IncInsertion()
	m.collector.UpdateShardLength(i, int64(length))
}

// SetMany stores many values, locking each shard once.
func (m *ShardedMap[K, V]) SetMany(items map[K]V) {
	if len(items) == 0 {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	m.setManyUnsafe(items)
}

// setManyUnsafe must be called with m.mu held.
func (m *ShardedMap[K, V]) setManyUnsafe(items map[K]V) {
	batch := map[uint32]map[K]V{}
	for k, v := range items {
		i := m.fn.computeShard(k, uint32(len(m.shards)))
		if batch[i] == nil {
			batch[i] = map[K]V{}
		}
		batch[i][k] = v
	}

	for i, values := range batch {
		s := m.shards[i]
		s.mu.Lock()
		for k, v := range values {
			s.items[k] = v
		}
		length := len(s.items)
		s.mu.Unlock()

		m.collector.UpdateShardLength(i, int64(length))
	}

	m.collector.AddInsertions(int64(len(items)))
}

// Has reports whether the key is present.
func (m *ShardedMap[K, V]) Has(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, s := m.shardFor(key)
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()

	return ok
}

// HasMany reports the presence of each key.
func (m *ShardedMap[K, V]) HasMany(keys []K) map[K]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	output := make(map[K]bool, len(keys))
	for i, batch := range m.batch(keys) {
		s := m.shards[i]
		s.mu.RLock()
		for _, key := range batch {
			_, ok := s.items[key]
			output[key] = ok
		}
		s.mu.RUnlock()
	}

	return output
}

// Get returns the value of a key and records a hit or a miss.
func (m *ShardedMap[K, V]) Get(key K) (value V, ok bool) {
	value, ok = m.Peek(key)
	if ok {
		m.collector.IncHit()
	} else {
		m.collector.IncMiss()
	}
	return value, ok
}

// GetMany returns the values found and the keys that are missing.
func (m *ShardedMap[K, V]) GetMany(keys []K) (values map[K]V, missing []K) {
	values, missing = m.PeekMany(keys)
	m.collector.AddHits(int64(len(values)))
	m.collector.AddMisses(int64(len(missing)))
	return values, missing
}

// Peek is like Get without updating metrics.
func (m *ShardedMap[K, V]) Peek(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, s := m.shardFor(key)
	s.mu.RLock()
	value, ok = s.items[key]
	s.mu.RUnlock()

	return value, ok
}

// PeekMany is like GetMany without updating metrics.
func (m *ShardedMap[K, V]) PeekMany(keys []K) (values map[K]V, missing []K) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values = map[K]V{}
	missing = []K{}

	for i, batch := range m.batch(keys) {
		s := m.shards[i]
		s.mu.RLock()
		for _, key := range batch {
			if v, ok := s.items[key]; ok {
				values[key] = v
			} else {
				missing = append(missing, key)
			}
		}
		s.mu.RUnlock()
	}

	return values, missing
}

// GetOrLoad returns the value of a key, calling the loader chain when it is missing.
// Loaded values are stored. Concurrent loads of the same key call the loaders once.
// Missing keys are grouped by shard and each loader runs once per shard.
func (m *ShardedMap[K, V]) GetOrLoad(key K) (value V, found bool, err error) {
	values, _, err := m.GetManyOrLoad([]K{key})
	if err != nil {
		return value, false, err
	}

	value, found = values[key]
	return value, found, nil
}

// GetManyOrLoad is the batch version of GetOrLoad. Keys that no loader found are
// returned as missing. On loader error, nothing is returned.
func (m *ShardedMap[K, V]) GetManyOrLoad(keys []K) (values map[K]V, missing []K, err error) {
	values, missing = m.PeekMany(keys)
	m.collector.AddHits(int64(len(values)))
	m.collector.AddMisses(int64(len(missing)))

	if len(missing) == 0 || len(m.loaders) == 0 {
		return values, missing, nil
	}

	results := m.group.DoX(missing, func(keys []K) (map[K]V, error) {
		m.mu.RLock()
		batch := m.batch(keys)
		m.mu.RUnlock()

		found, _, err := m.loaders.run(batch)
		if err != nil {
			return nil, err
		}

		if len(found) > 0 {
			m.SetMany(found)
		}

		return found, nil
	})

	stillMissing := []K{}
	for _, key := range missing {
		result, ok := results[key]
		if !ok {
			stillMissing = append(stillMissing, key)
			continue
		}

		if result.Err != nil {
			return map[K]V{}, []K{}, result.Err
		}

		if result.Value.Valid {
			values[key] = result.Value.Value
		} else {
			stillMissing = append(stillMissing, key)
		}
	}

	return values, stillMissing, nil
}

// Delete removes a key and reports whether it was present.
func (m *ShardedMap[K, V]) Delete(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, s := m.shardFor(key)
	s.mu.Lock()
	_, ok := s.items[key]
	delete(s.items, key)
	length := len(s.items)
	s.mu.Unlock()

	if ok {
		m.collector.IncDeletion()
		m.collector.UpdateShardLength(i, int64(length))
	}

	return ok
}

// DeleteMany removes many keys and reports which ones were present.
func (m *ShardedMap[K, V]) DeleteMany(keys []K) map[K]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	output := make(map[K]bool, len(keys))
	deleted := int64(0)

	for i, batch := range m.batch(keys) {
		s := m.shards[i]
		s.mu.Lock()
		for _, key := range batch {
			_, ok := s.items[key]
			if ok {
				delete(s.items, key)
				deleted++
			}
			output[key] = output[key] || ok
		}
		length := len(s.items)
		s.mu.Unlock()

		m.collector.UpdateShardLength(i, int64(length))
	}

	m.collector.AddDeletions(deleted)
	return output
}

// Len returns the number of keys across all shards.
func (m *ShardedMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}
	return total
}

// Keys returns all keys, in no particular order.
func (m *ShardedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns all values, in no particular order.
func (m *ShardedMap[K, V]) Values() []V {
	values := make([]V, 0, m.Len())
	m.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

// All returns a copy of every key-value pair.
func (m *ShardedMap[K, V]) All() map[K]V {
	all := make(map[K]V, m.Len())
	m.Range(func(k K, v V) bool {
		all[k] = v
		return true
	})
	return all
}

// Range calls f for each key-value pair, shard by shard, until f returns false.
// f must not write to the map.
func (m *ShardedMap[K, V]) Range(f func(K, V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !f(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Purge removes every key. The shard count is kept.
func (m *ShardedMap[K, V]) Purge() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i, s := range m.shards {
		s.mu.Lock()
		s.items = map[K]V{}
		s.mu.Unlock()

		m.collector.UpdateShardLength(uint32(i), 0)
	}
}

// ShardOf returns the shard a key is routed to.
func (m *ShardedMap[K, V]) ShardOf(key K) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, _ := m.shardFor(key)
	return i
}

// Shards returns the current number of shards.
func (m *ShardedMap[K, V]) Shards() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint32(len(m.shards))
}

// ShardLengths returns the number of keys of each shard, indexed by shard.
func (m *ShardedMap[K, V]) ShardLengths() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lengths := make([]int, len(m.shards))
	for i, s := range m.shards {
		s.mu.RLock()
		lengths[i] = len(s.items)
		s.mu.RUnlock()
	}
	return lengths
}

// SizeBytes returns an estimate of the memory held by keys and values.
// Warning: This is very slow.
func (m *ShardedMap[K, V]) SizeBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := int64(0)
	for _, s := range m.shards {
		s.mu.RLock()
		total += int64(size.Of(s.items))
		s.mu.RUnlock()
	}
	return total
}

// Resize changes the number of shards and returns how many keys changed shard.
// Keys whose jump bucket is unchanged stay where they are: growing from n to n+1
// shards moves about 1/(n+1) of the keys, all into the new shard.
// It blocks every other operation while running. It panics when shards is 0.
func (m *ShardedMap[K, V]) Resize(shards uint32) (moved int) {
	assertValue(shards > 0, "sharded: shards must be greater than 0")

	m.mu.Lock()
	defer m.mu.Unlock()

	current := uint32(len(m.shards))
	if shards == current {
		return 0
	}

	table := make([]*shard[K, V], shards)
	copy(table, m.shards)
	for i := current; i < shards; i++ {
		table[i] = newShard[K, V]()
	}

	for i, s := range m.shards {
		for k, v := range s.items {
			target := m.fn.computeShard(k, shards)
			if target == uint32(i) {
				continue
			}

			table[target].items[k] = v
			if uint32(i) < shards {
				delete(s.items, k)
			}
			moved++
		}
	}

	m.shards = table

	m.collector.SetShards(shards)
	for i, s := range table {
		m.collector.UpdateShardLength(uint32(i), int64(len(s.items)))
	}
	m.collector.AddMoves(int64(moved))

	return moved
}

// Describe implements the prometheus.Collector interface.
func (m *ShardedMap[K, V]) Describe(ch chan<- *prometheus.Desc) {
	if collector, ok := m.collector.(prometheus.Collector); ok {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *ShardedMap[K, V]) Collect(ch chan<- prometheus.Metric) {
	if collector, ok := m.collector.(prometheus.Collector); ok {
		collector.Collect(ch)
	}
}
