package concurrent

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	in := make([]int, 100)
	for i := range in {
		in[i] = i
	}
	for _, workers := range []int{0, 1, 4, 200} {
		out := ParallelMap(in, workers, func(v int) int { return v * v })
		require.Len(t, out, len(in))
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	}
}

func TestParallelMapBoundsWorkers(t *testing.T) {
	var running, peak atomic.Int32
	in := make([]int, 32)
	ParallelMap(in, 3, func(int) struct{} {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		running.Add(-1)
		return struct{}{}
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Empty(t, ParallelMap([]int{}, 4, func(v int) int { return v }))
}
