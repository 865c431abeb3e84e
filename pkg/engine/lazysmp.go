package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

var errSearchTimeout = errors.New("search timeout")

// lazySmp runs the main thread on the calling goroutine and the helper
// threads on an errgroup. Helpers share only the transposition table and
// stop when the main thread is done.
func lazySmp(ctx context.Context, e *Engine, multiPV int) {
	var helperCtx, cancelHelpers = context.WithCancel(ctx)
	var g errgroup.Group
	for i := 1; i < len(e.threads); i++ {
		var t = &e.threads[i]
		t.ctx = helperCtx
		var startDepth = 1 + i&1
		g.Go(func() error {
			t.iterativeDeepening(startDepth, 1)
			return nil
		})
	}

	var main = &e.threads[0]
	main.ctx = ctx
	main.iterativeDeepening(1, multiPV)

	cancelHelpers()
	g.Wait()
}
