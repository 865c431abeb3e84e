package engine

import (
	"context"
	"time"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

type simpleTimeManager struct {
	start     time.Time
	limits    common.SearchLimits
	softLimit time.Duration
	hardLimit time.Duration
	cancel    context.CancelFunc
}

// newSimpleTimeManager derives the search context. The hard limit becomes a
// context deadline. The soft limit is checked after each iteration.
func newSimpleTimeManager(ctx context.Context, start time.Time,
	limits common.SearchLimits) (context.Context, *simpleTimeManager) {

	var tm = &simpleTimeManager{
		start:  start,
		limits: limits,
	}

	if !limits.Infinite {
		if limits.MoveTime > 0 {
			tm.hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
		} else if limits.Time > 0 {
			var main = time.Duration(limits.Time) * time.Millisecond
			var inc = time.Duration(limits.Inc) * time.Millisecond
			tm.softLimit, tm.hardLimit = calcLimits(main, inc, limits.MovesToGo)
		}
	}

	var cancel context.CancelFunc
	if tm.hardLimit != 0 {
		ctx, cancel = context.WithDeadline(ctx, start.Add(tm.hardLimit))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	tm.cancel = cancel
	return ctx, tm
}

// OnIterationComplete stops the search once a completed iteration satisfies
// the depth or mate target, or the soft limit has passed.
func (tm *simpleTimeManager) OnIterationComplete(depth, score int) {
	if tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if tm.limits.Mate != 0 && score >= valueWin && mateDistance(score) <= tm.limits.Mate {
		tm.cancel()
		return
	}
	if tm.limits.TimeLimit &&
		(score >= winIn(depth-5) || score <= lossIn(depth-5)) {
		tm.cancel()
		return
	}
	if tm.softLimit != 0 &&
		time.Since(tm.start) >= tm.softLimit {
		tm.cancel()
		return
	}
}

func (tm *simpleTimeManager) Close() {
	tm.cancel()
}

func calcLimits(main, inc time.Duration, moves int) (soft, hard time.Duration) {
	const (
		DefaultMovesToGo = 40
		MoveOverhead     = 300 * time.Millisecond
		MinTimeLimit     = 1 * time.Millisecond
	)

	main -= MoveOverhead
	if main < MinTimeLimit {
		main = MinTimeLimit
	}

	if moves == 0 {
		var ideal = main/35 + inc/2
		soft = ideal * 7 / 10
		hard = ideal * 21 / 10
	} else {
		moves = common.Min(moves, DefaultMovesToGo)
		soft = (main/time.Duration(moves+1) + inc) * 7 / 10
		hard = (main/time.Duration(moves+1) + inc) * 21 / 10
	}

	hard = common.Clamp(hard, MinTimeLimit, main)
	soft = common.Clamp(soft, MinTimeLimit, main)

	return
}
