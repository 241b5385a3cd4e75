package dashboard

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var loadGroup singleflight.Group

// coalesce runs fn once per key for concurrent callers; each caller may still
// give up on its own context.
func coalesce(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	resultChan := loadGroup.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}
