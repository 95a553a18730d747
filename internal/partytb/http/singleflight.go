package http

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

var reportGroup singleflight.Group

// coalesce shares one in-flight build between identical requests. Nothing is
// kept once the call returns. The build outlives a single caller's cancel so
// other sharers still get a result, but never runs past timeout.
func coalesce(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := reportGroup.DoChan(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(buildCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
