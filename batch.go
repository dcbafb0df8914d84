package hl7

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TransformAll transforms each raw input as an independent message, running
// at most limit at once (no limit when limit <= 0). Results are in input order.
// The first failure cancels the inputs that have not started.
func TransformAll(ctx context.Context, raws []string, limit int, opts ...Option) ([]*Message, error) {
	out := make([]*Message, len(raws))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, raw := range raws {
		g.Go(func() error {
			m := FromString(raw, opts...)
			if err := <-m.Transform(ctx, nil); err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
