// Package batch runs independent per-item tasks in parallel and keeps
// whatever succeeds.
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Failure records an item whose task returned an error.
type Failure[T any] struct {
	Item T
	Err  error
}

// Result holds the successes in completion order and the failures.
type Result[T, R any] struct {
	Succeeded []R
	Failed    []Failure[T]
}

// Map runs fn for every item with at most limit tasks in flight
// (limit <= 0 means unbounded). A failing task never cancels its siblings.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) Result[T, R] {
	var (
		mu  sync.Mutex
		res Result[T, R]
		g   errgroup.Group
	)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			out, err := fn(ctx, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, Failure[T]{Item: item, Err: err})
				return nil
			}
			res.Succeeded = append(res.Succeeded, out)
			return nil
		})
	}
	_ = g.Wait()
	return res
}
