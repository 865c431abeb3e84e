package uci

import (
	"context"
	"errors"
)

var ErrSearchRunning = errors.New("search is running")

// searchController runs at most one search at a time. done is closed
// whenever no search runs, so waiting on it never blocks while idle. The
// methods are called from the read loop only.
type searchController struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func newSearchController() *searchController {
	var c = &searchController{
		done: make(chan struct{}),
	}
	close(c.done)
	return c
}

func (c *searchController) Running() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Start runs search on a new goroutine. The context passed to search is
// cancelled by Stop.
func (c *searchController) Start(search func(ctx context.Context)) error {
	if c.Running() {
		return ErrSearchRunning
	}
	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan struct{})
	c.cancel = cancel
	c.done = done
	go func() {
		defer close(done)
		defer cancel()
		search(ctx)
	}()
	return nil
}

// Stop requests the search to end and waits until it has.
func (c *searchController) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}
