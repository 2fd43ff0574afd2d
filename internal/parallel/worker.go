// Package parallel provides a small worker pool for fanning independent
// pieces of pipeline work across CPUs while preserving input order.
package parallel

import (
	"runtime"
	"sync"
)

// WorkerPool bounds the number of goroutines running pool work at once.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool with the given concurrency. Zero or
// negative means one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// NumWorkers returns the pool's concurrency.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

type indexedResult[R any] struct {
	index  int
	result R
	err    error
}

// Process applies fn to every item concurrently and returns the results in
// input order. All workers run to completion; on failure the error of the
// lowest-index failing item is returned and results are discarded.
func Process[T, R any](wp *WorkerPool, items []T, fn func(T) (R, error)) ([]R, error) {
	return ProcessIndexed(wp, items, func(_ int, item T) (R, error) {
		return fn(item)
	})
}

// ProcessIndexed is Process with the item's input index passed to fn.
func ProcessIndexed[T, R any](wp *WorkerPool, items []T, fn func(int, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	out := make(chan indexedResult[R], len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result, err := fn(idx, items[idx])
				out <- indexedResult[R]{index: idx, result: result, err: err}
			}
		}()
	}

	for idx := range items {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	close(out)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	for r := range out {
		results[r.index] = r.result
		errs[r.index] = r.err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
