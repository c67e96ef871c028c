// Package group runs independent tasks in fixed-size groups.
package group

import (
	"context"
	"sync"
)

// Run executes fn for every item, at most size at a time. Items are
// processed in fixed-size groups: each group is awaited fully before the
// next starts, which caps in-flight work without giving any ordering
// guarantee within a group. Results and errors are index-aligned with the
// input; a failed item leaves the zero value in its result slot.
func Run[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error)) ([]R, []error) {
	if size <= 0 {
		size = 1
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				for j := i; j < len(items); j++ {
					errs[j] = err
				}
				wg.Wait()
				return results, errs
			}

			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()
	}

	return results, errs
}
