// Package concurrent holds small bounded fan-out helpers over slices.
package concurrent

import "sync"

// ParallelMap applies mapFn to each element in parallel, preserving order.
// With one worker or fewer than two elements it runs inline.
func ParallelMap[T any, R any](in []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(in))
	if workers <= 1 || len(in) < 2 {
		for i, v := range in {
			out[i] = mapFn(v)
		}
		return out
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for idx, val := range in {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v T) {
			defer wg.Done()
			out[i] = mapFn(v)
			<-sem
		}(idx, val)
	}
	wg.Wait()
	return out
}
