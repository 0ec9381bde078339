// Package fanout runs per-item work with bounded concurrency.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when a non-positive limit is given
const DefaultConcurrency = 8

// Map applies fn to every item with at most limit calls in flight and returns
// the outputs in input order. fn reports per-item failures inside its output;
// a non-nil error from fn cancels the remaining items and is returned.
func Map[In, Out any](ctx context.Context, items []In, limit int, fn func(ctx context.Context, item In) (Out, error)) ([]Out, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	out := make([]Out, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
