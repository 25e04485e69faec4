package metrics

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var _ Collector = (*PrometheusCollector)(nil)
var _ prometheus.Collector = (*PrometheusCollector)(nil)

// PrometheusCollector implements Collector using Prometheus metrics.
type PrometheusCollector struct {
	name   string
	labels prometheus.Labels

	// Counters - use atomic operations for lock-free performance
	hitCount       int64
	missCount      int64
	insertionCount int64
	deletionCount  int64
	moveCount      int64

	// Gauges
	mu           sync.RWMutex // guards the shardLengths slice header, not its items
	shards       uint32
	shardLengths []int64

	// Prometheus metric descriptors
	hitDesc         *prometheus.Desc
	missDesc        *prometheus.Desc
	insertionDesc   *prometheus.Desc
	deletionDesc    *prometheus.Desc
	moveDesc        *prometheus.Desc
	shardsDesc      *prometheus.Desc
	shardLengthDesc *prometheus.Desc
}

// NewPrometheusCollector creates a new Prometheus-based metric collector.
func NewPrometheusCollector(name string, shards uint32) *PrometheusCollector {
	labels := prometheus.Labels{
		"name": name,
	}

	collector := &PrometheusCollector{
		name:   name,
		labels: labels,
	}
	collector.SetShards(shards)

	collector.hitDesc = prometheus.NewDesc(
		"jumpch_hit_total",
		"Total number of lookups that found their key",
		nil, labels,
	)
	collector.missDesc = prometheus.NewDesc(
		"jumpch_miss_total",
		"Total number of lookups that did not find their key",
		nil, labels,
	)
	collector.insertionDesc = prometheus.NewDesc(
		"jumpch_insertion_total",
		"Total number of keys written",
		nil, labels,
	)
	collector.deletionDesc = prometheus.NewDesc(
		"jumpch_deletion_total",
		"Total number of keys deleted",
		nil, labels,
	)
	collector.moveDesc = prometheus.NewDesc(
		"jumpch_moved_total",
		"Total number of keys re-homed to another shard by a resize",
		nil, labels,
	)
	collector.shardsDesc = prometheus.NewDesc(
		"jumpch_shards",
		"Current number of shards",
		nil, labels,
	)
	collector.shardLengthDesc = prometheus.NewDesc(
		"jumpch_shard_length",
		"Current number of keys held by a shard",
		[]string{"shard"}, labels,
	)

	return collector
}

// IncHit atomically increments the hit counter.
func (p *PrometheusCollector) IncHit() {
	atomic.AddInt64(&p.hitCount, 1)
}

// AddHits atomically adds the specified count to the hit counter.
func (p *PrometheusCollector) AddHits(count int64) {
	atomic.AddInt64(&p.hitCount, count)
}

// IncMiss atomically increments the miss counter.
func (p *PrometheusCollector) IncMiss() {
	atomic.AddInt64(&p.missCount, 1)
}

// AddMisses atomically adds the specified count to the miss counter.
func (p *PrometheusCollector) AddMisses(count int64) {
	atomic.AddInt64(&p.missCount, count)
}

// IncInsertion atomically increments the insertion counter.
func (p *PrometheusCollector) IncInsertion() {
	atomic.AddInt64(&p.insertionCount, 1)
}

// AddInsertions atomically adds the specified count to the insertion counter.
func (p *PrometheusCollector) AddInsertions(count int64) {
	atomic.AddInt64(&p.insertionCount, count)
}

// IncDeletion atomically increments the deletion counter.
func (p *PrometheusCollector) IncDeletion() {
	atomic.AddInt64(&p.deletionCount, 1)
}

// AddDeletions atomically adds the specified count to the deletion counter.
func (p *PrometheusCollector) AddDeletions(count int64) {
	atomic.AddInt64(&p.deletionCount, count)
}

// AddMoves atomically adds the specified count to the moved keys counter.
func (p *PrometheusCollector) AddMoves(count int64) {
	atomic.AddInt64(&p.moveCount, count)
}

// SetShards replaces the per-shard gauges with shards zeroed gauges.
func (p *PrometheusCollector) SetShards(shards uint32) {
	p.mu.Lock()
	p.shards = shards
	p.shardLengths = make([]int64, shards)
	p.mu.Unlock()
}

// UpdateShardLength atomically stores the length of a shard.
// Unknown shards are ignored.
func (p *PrometheusCollector) UpdateShardLength(shard uint32, length int64) {
	p.mu.RLock()
	if int(shard) < len(p.shardLengths) {
		atomic.StoreInt64(&p.shardLengths[shard], length)
	}
	p.mu.RUnlock()
}

// Describe implements prometheus.Collector interface.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.hitDesc
	ch <- p.missDesc
	ch <- p.insertionDesc
	ch <- p.deletionDesc
	ch <- p.moveDesc
	ch <- p.shardsDesc
	ch <- p.shardLengthDesc
}

// Collect implements prometheus.Collector interface.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	// Collect counters
	ch <- prometheus.MustNewConstMetric(
		p.hitDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.hitCount)),
	)
	ch <- prometheus.MustNewConstMetric(
		p.missDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.missCount)),
	)
	ch <- prometheus.MustNewConstMetric(
		p.insertionDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.insertionCount)),
	)
	ch <- prometheus.MustNewConstMetric(
		p.deletionDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.deletionCount)),
	)
	ch <- prometheus.MustNewConstMetric(
		p.moveDesc,
		prometheus.CounterValue,
		float64(atomic.LoadInt64(&p.moveCount)),
	)

	p.mu.RLock()
	defer p.mu.RUnlock()

	// Collect shard gauges
	ch <- prometheus.MustNewConstMetric(
		p.shardsDesc,
		prometheus.GaugeValue,
		float64(p.shards),
	)
	for i := range p.shardLengths {
		ch <- prometheus.MustNewConstMetric(
			p.shardLengthDesc,
			prometheus.GaugeValue,
			float64(atomic.LoadInt64(&p.shardLengths[i])),
			strconv.Itoa(i),
		)
	}
}
