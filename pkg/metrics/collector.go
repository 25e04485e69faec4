package metrics

// NewCollector returns a PrometheusCollector labelled with name when enabled,
// a NoOpCollector otherwise.
func NewCollector(name string, enabled bool, shards uint32) Collector {
	if !enabled {
		return &NoOpCollector{}
	}

	return NewPrometheusCollector(name, shards)
}

// Collector defines the interface for metric collection operations.
// This allows for both real Prometheus metrics and no-op implementations.
type Collector interface {
	IncHit()
	AddHits(count int64)
	IncMiss()
	AddMisses(count int64)
	IncInsertion()
	AddInsertions(count int64)
	IncDeletion()
	AddDeletions(count int64)

	// AddMoves records keys re-homed to another shard by a resize.
	AddMoves(count int64)
	// SetShards records the current shard count. It resets the per-shard lengths.
	SetShards(shards uint32)
	// UpdateShardLength records the number of keys held by a shard.
	UpdateShardLength(shard uint32, length int64)
}
