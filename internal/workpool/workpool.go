// Package workpool runs a fixed-size pool of workers over disjoint row ranges of an
// output image: row-level parallelism, sequential per-pixel work, cooperative
// cancellation between row batches.
package workpool

import (
	"context"
	"runtime"
	"sync"
)

// RowFunc computes one output row. Implementations must not share mutable state
// across rows without their own synchronization; per-row work is expected to only
// read shared, already-constructed buffers (distance weights, tolerances, ...) and
// write exclusively to that row's slice of the output.
type RowFunc func(row int) error

// Rows runs fn(row) for every row in [0,height), spread across
// runtime.GOMAXPROCS(0) workers, returning the first error encountered (if any).
// ctx is checked between rows; a canceled context stops dispatching new rows and
// returns ctx.Err().
func Rows(ctx context.Context, height int, fn RowFunc) error {
	if height <= 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}

	rows := make(chan int)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			failed := false
			for row := range rows {
				if failed {
					continue // keep draining so the dispatcher never blocks
				}
				if err := fn(row); err != nil {
					errs <- err
					failed = true
				}
			}
		}()
	}

	dispatchErr := func() error {
		for row := 0; row < height; row++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rows <- row:
			}
		}
		return nil
	}()
	close(rows)
	wg.Wait()
	close(errs)

	if dispatchErr != nil {
		return dispatchErr
	}
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
