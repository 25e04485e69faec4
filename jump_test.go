package jumpch

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	testCases := []struct {
		key   uint64
		slots uint32
		want  uint32
	}{
		{123456, 1000, 984},
		{1, 1, 0},
		{42, 57, 43},
		{0xDEAD10CC, 1, 0},
		{0xDEAD10CC, 2, 1},
		{0xDEAD10CC, 3, 1},
		{0xDEAD10CC, 10, 5},
		{0xDEAD10CC, 100, 94},
		{0xDEAD10CC, 666, 361},
		{0xDEAD10CC, 1000, 361},
		{0xDEAD10CC, 1 << 31, 1321988195},
		{0xDEAD10CC, math.MaxUint32, 1321988195},
		{256, 1024, 520},
		{0, 1000, 0},
		{1, 1000, 549},
		{2, 1000, 338},
		{math.MaxUint64, 1000, 313},
		{123456, math.MaxUint32, 2881629858},
		{math.MaxUint64, math.MaxUint32, 2680453518},
	}

	for _, tc := range testCases {
		is.Equal(tc.want, Hash(tc.key, tc.slots), "Hash(%d, %d)", tc.key, tc.slots)
	}
}

func TestHash_ZeroSlots(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	is.PanicsWithValue("jumpch: slots must be greater than 0", func() {
		_ = Hash(123456, 0)
	})
}

func TestHash_Range(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	keys := append(sampleKeys(2_000), 0, 1, math.MaxUint64, math.MaxUint64-1, 1<<63)
	slots := []uint32{1, 2, 3, 7, 10, 64, 100, 999, 1000, 65_536, 1 << 31, math.MaxUint32}

	for _, s := range slots {
		for _, key := range keys {
			if b := Hash(key, s); b >= s {
				is.Failf("out of range", "Hash(%d, %d) = %d", key, s, b)
			}
		}
	}

	for _, key := range keys {
		is.Equal(uint32(0), Hash(key, 1))
	}
}

func TestHash_Deterministic(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	for _, key := range sampleKeys(1_000) {
		is.Equal(Hash(key, 1234), Hash(key, 1234))
	}
}

// A key assigned to bucket b with n slots stays in b for every slot count in (b, n].
func TestHash_Monotonic(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	for _, key := range sampleKeys(50) {
		for slots := uint32(1); slots < 300; slots++ {
			b := Hash(key, slots)
			for i := b + 1; i <= slots; i++ {
				if got := Hash(key, i); got != b {
					is.Failf("bucket changed", "key=%d: %d slots -> %d, %d slots -> %d", key, slots, b, i, got)
				}
			}
		}
	}
}

func TestHash_MinimalDisruption(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	keys := sampleKeys(100_000)

	for _, n := range []uint32{1, 2, 3, 5, 10, 31, 50, 100, 1000} {
		moved := 0
		for _, key := range keys {
			before, after := Hash(key, n), Hash(key, n+1)
			if before == after {
				continue
			}
			moved++
			// growing only ever moves keys into the new bucket
			is.Equal(n, after)
		}

		expected := 1 / float64(n+1)
		ratio := float64(moved) / float64(len(keys))
		is.InEpsilon(expected, ratio, 0.2, "n=%d", n)
	}
}

func TestHash_Distribution(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	keys := sampleKeys(100_000)

	testCases := []struct {
		slots     uint32
		tolerance float64
	}{
		{10, 0.05},
		{100, 0.15},
	}

	for _, tc := range testCases {
		counts := make([]int, tc.slots)
		for _, key := range keys {
			counts[Hash(key, tc.slots)]++
		}

		expected := float64(len(keys)) / float64(tc.slots)
		for bucket, count := range counts {
			is.InEpsilon(expected, float64(count), tc.tolerance, "slots=%d bucket=%d", tc.slots, bucket)
		}
	}
}

func TestHash_Concurrent(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	keys := sampleKeys(1_000)
	want := make([]uint32, len(keys))
	for i, key := range keys {
		want[i] = Hash(key, 4096)
	}

	var wg sync.WaitGroup
	results := make([][]uint32, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			out := make([]uint32, len(keys))
			for i, key := range keys {
				out[i] = Hash(key, 4096)
			}
			results[g] = out
		}(g)
	}
	wg.Wait()

	for _, got := range results {
		is.Equal(want, got)
	}
}

func TestHash_NoAllocation(t *testing.T) {
	is := assert.New(t)

	allocs := testing.AllocsPerRun(100, func() {
		_ = Hash(123456, 1000)
	})
	is.Zero(allocs)
}

func TestNewSlots(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	is.PanicsWithValue("jumpch: slots must be greater than 0", func() {
		_ = NewSlots(0)
	})

	s := NewSlots(1000)
	is.Equal(uint32(1000), s.Value())
	is.Equal(uint32(984), s.Hash(123456))
	is.Equal(Hash(42, 1000), s.Hash(42))

	largest := NewSlots(math.MaxUint32)
	is.Equal(uint32(math.MaxUint32), largest.Value())
}

func TestSlots_ZeroValue(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	var s Slots
	is.Equal(uint32(0), s.Value())
	is.Panics(func() {
		_ = s.Hash(123456)
	})
}

func TestSlots_Compare(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	a, b := NewSlots(10), NewSlots(20)

	is.Equal(-1, a.Compare(b))
	is.Equal(1, b.Compare(a))
	is.Equal(0, a.Compare(NewSlots(10)))
	is.True(a == NewSlots(10))
	is.False(a == b)
}

func BenchmarkHash(b *testing.B) {
	for _, slots := range []uint32{10, 1_000, 1_000_000} {
		b.Run(fmt.Sprintf("slots=%d", slots), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Hash(uint64(i), slots)
			}
		})
	}
}
