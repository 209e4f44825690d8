package ingestion_engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runBatches calls fn for every index in [0, n), at most size at a time. Batches run one
// after another and a batch only ends once every item in it has returned. fn reports
// success; item failures never cancel siblings. It returns the number of successes.
func runBatches(ctx context.Context, n, size int, fn func(ctx context.Context, i int) bool) int {
	if size <= 0 {
		size = 1
	}
	stored := 0
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		ok := make([]bool, end-start)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				ok[i-start] = fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()

		for _, v := range ok {
			if v {
				stored++
			}
		}
	}
	return stored
}
