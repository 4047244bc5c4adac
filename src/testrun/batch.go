package testrun

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// RunBatch executes a set of independent invocations and collects every
// result. Test failures and timeouts are reported per invocation and do not
// abort the batch unless failFast is set. limit bounds how many invocations
// run at once; 1 gives strictly sequential execution, which is the safe
// default for invocations sharing a backend.
//
// A non-nil error means some invocation could not be run at all; results
// gathered up to that point are still returned.
func RunBatch(ctx context.Context, r *Runner, invs []Invocation, limit int64, failFast bool) ([]*Result, error) {
	if limit < 1 {
		limit = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(limit)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]*Result, len(invs))
		runErr  error
	)

	for i, inv := range invs {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // canceled by fail-fast or caller
		}

		wg.Add(1)
		go func(i int, inv Invocation) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := r.Run(ctx, inv)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if runErr == nil && ctx.Err() == nil {
					runErr = err
				}
				cancel()
				return
			}
			results[i] = res
			if failFast && !res.Passed() {
				cancel()
			}
		}(i, inv)
	}

	wg.Wait()

	// Compact away invocations that never ran (fail-fast cut them off).
	collected := make([]*Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			collected = append(collected, res)
		}
	}
	return collected, runErr
}

// Failed counts the non-passing results in a batch.
func Failed(results []*Result) int {
	n := 0
	for _, res := range results {
		if !res.Passed() {
			n++
		}
	}
	return n
}
