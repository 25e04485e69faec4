package metrics

var _ Collector = (*NoOpCollector)(nil)

// NoOpCollector is a no-op implementation of Collector that does nothing.
// This provides better performance than conditional checks when metrics are disabled.
type NoOpCollector struct{}

func (n *NoOpCollector) IncHit()                                      {}
func (n *NoOpCollector) AddHits(count int64)                          {}
func (n *NoOpCollector) IncMiss()                                     {}
func (n *NoOpCollector) AddMisses(count int64)                        {}
func (n *NoOpCollector) IncInsertion()                                {}
func (n *NoOpCollector) AddInsertions(count int64)                    {}
func (n *NoOpCollector) IncDeletion()                                 {}
func (n *NoOpCollector) AddDeletions(count int64)                     {}
func (n *NoOpCollector) AddMoves(count int64)                         {}
func (n *NoOpCollector) SetShards(shards uint32)                      {}
func (n *NoOpCollector) UpdateShardLength(shard uint32, length int64) {}
