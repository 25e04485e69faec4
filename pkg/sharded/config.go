package sharded

import (
	"slices"

	"github.com/samber/jumpch/pkg/metrics"
)

// NewShardedMap starts the configuration of a ShardedMap with the given number of shards.
// It panics when shards is 0.
func NewShardedMap[K comparable, V any](shards uint32) ShardedMapConfig[K, V] {
	assertValue(shards > 0, "sharded: shards must be greater than 0")

	return ShardedMapConfig[K, V]{
		shards: shards,
	}
}

// ShardedMapConfig is an immutable builder: every With* method returns a modified copy.
type ShardedMapConfig[K comparable, V any] struct {
	shards uint32
	hasher Hasher[K]

	loaderFns LoaderChain[K, V]

	prometheusMetricsEnabled bool
	name                     string
}

// WithHasher sets the function reducing keys to 64 bits. Defaults to DefaultHasher.
func (cfg ShardedMapConfig[K, V]) WithHasher(fn Hasher[K]) ShardedMapConfig[K, V] {
	assertValue(fn != nil, "sharded: hasher must not be nil")

	cfg.hasher = fn
	return cfg
}

// WithLoaders appends loaders to the chain used by GetOrLoad and GetManyOrLoad
// on missing keys. Each loader is called once per shard holding missing keys.
func (cfg ShardedMapConfig[K, V]) WithLoaders(loaders ...Loader[K, V]) ShardedMapConfig[K, V] {
	chain := slices.Clip(cfg.loaderFns)
	for _, loader := range loaders {
		assertValue(loader != nil, "sharded: loader must not be nil")
		chain = append(chain, loader.perShard())
	}

	cfg.loaderFns = chain
	return cfg
}

// WithShardLoaders is like WithLoaders for loaders that need the shard index.
func (cfg ShardedMapConfig[K, V]) WithShardLoaders(loaders ...ShardLoader[K, V]) ShardedMapConfig[K, V] {
	chain := slices.Clip(cfg.loaderFns)
	for _, loader := range loaders {
		assertValue(loader != nil, "sharded: loader must not be nil")
		chain = append(chain, loader)
	}

	cfg.loaderFns = chain
	return cfg
}

// WithPrometheusMetrics enables metric collection. The map must then be registered
// as a prometheus.Collector.
func (cfg ShardedMapConfig[K, V]) WithPrometheusMetrics(name string) ShardedMapConfig[K, V] {
	assertValue(name != "", "sharded: metrics name must not be empty")

	cfg.prometheusMetricsEnabled = true
	cfg.name = name
	return cfg
}

func (cfg ShardedMapConfig[K, V]) Build() *ShardedMap[K, V] {
	hasher := cfg.hasher
	if hasher == nil {
		hasher = DefaultHasher[K]()
	}

	return newShardedMap(
		cfg.shards,
		hasher,
		cfg.loaderFns,
		metrics.NewCollector(cfg.name, cfg.prometheusMetricsEnabled, cfg.shards),
	)
}

// assertValue panics with the given message if the condition is false.
// This is used for validating configuration parameters.
func assertValue(ok bool, msg string) {
	if !ok {
		panic(msg)
	}
}
