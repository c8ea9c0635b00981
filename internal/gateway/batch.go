package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rail44/roster/internal/row"
)

// GetMany fetches ids concurrently. Results keep the order of ids; the first
// failure cancels the remaining requests and is returned.
func (c *Client) GetMany(ctx context.Context, ids []string) ([]row.Row, error) {
	results := make([]row.Row, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			r, err := c.Get(ctx, id)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
