// Package batch fans out independent generation requests and gathers the
// ones that succeed.
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"postcraft/internal/faults"
	"postcraft/internal/logging"
)

// FailureMessage is the message of the error returned when no task succeeds.
const FailureMessage = "Generation failed. Please check your API key / project billing."

// Task produces the i-th result.
type Task[T any] func(ctx context.Context, i int) (T, error)

// Gather runs n tasks concurrently, at most limit at a time (limit <= 0
// means all at once), and returns the successful results in issue order.
//
// A failing task leaves an empty slot. An entity-not-found error aborts the
// batch and is returned as is. If every task fails, Gather returns a
// KindBatchFailed fault wrapping the last error observed.
func Gather[T any](ctx context.Context, n, limit int, fn Task[T]) ([]T, error) {
	if n <= 0 {
		return nil, faults.Invalidf("variation count must be at least 1")
	}

	timer := logging.StartTimer(logging.CategoryGeneration, "batch.Gather")
	defer timer.Stop()

	type slot struct {
		value T
		ok    bool
	}
	slots := make([]slot, n)

	var (
		mu      sync.Mutex
		lastErr error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		eg.Go(func() error {
			v, err := fn(egCtx, i)
			if err != nil {
				if faults.IsEntityNotFound(err) {
					return err
				}
				logging.Get(logging.CategoryGeneration).Warn("variation %d/%d failed: %v", i+1, n, err)
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			slots[i] = slot{value: v, ok: true}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	results := make([]T, 0, n)
	for _, s := range slots {
		if s.ok {
			results = append(results, s.value)
		}
	}
	if len(results) == 0 {
		return nil, faults.Wrap(faults.KindBatchFailed, FailureMessage, lastErr)
	}

	logging.Generation("batch finished: %d/%d succeeded", len(results), n)
	return results, nil
}
