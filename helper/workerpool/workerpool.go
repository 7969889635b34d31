// Package workerpool provides a small bounded-concurrency fan-out helper
// used by the JSON and HCL loaders (spec §5: "fan out across files with a
// bounded concurrency"). It is grounded on the same errgroup+semaphore shape
// oras-project-oras-go uses in internal/syncutil/limit.go, adapted from a
// generic GoFunc-over-region API to a simpler typed-slice map/collect helper
// that fits the loaders' "one file in, zero-or-more policies out" shape.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Size returns the default bounded concurrency per spec §5: 75% of available
// cores, clamped to [2, 16].
func Size() int64 {
	n := int64(runtime.NumCPU()) * 3 / 4
	if n < 2 {
		n = 2
	}
	if n > 16 {
		n = 16
	}
	return n
}

// Map runs fn over every item with at most `limit` concurrent invocations,
// honoring ctx cancellation, and returns the per-item results in input
// order alongside a slice of per-item errors (nil entries for items that
// succeeded). The caller decides whether a non-nil error aborts the batch
// (continueOnError=false) or is merely collected as a warning
// (continueOnError=true); this helper never itself aborts early, so both
// policies are representable by the caller inspecting the returned errors.
func Map[T any, R any](ctx context.Context, limit int64, items []T, fn func(context.Context, T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	sem := semaphore.NewWeighted(limit)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, item := range items {
		i, item := i, item

		if err := sem.Acquire(egCtx, 1); err != nil {
			// Context was cancelled while waiting for a slot; record it for
			// every remaining item and stop scheduling new work.
			errs[i] = err
			continue
		}

		eg.Go(func() error {
			defer sem.Release(1)

			r, err := fn(egCtx, item)
			results[i] = r
			errs[i] = err
			return nil
		})
	}

	// The errgroup itself never returns an error: per-item failures are
	// carried in errs so the caller can apply continueOnError semantics
	// without a single bad file aborting every sibling's in-flight work.
	_ = eg.Wait()

	return results, errs
}
