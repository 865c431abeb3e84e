package engine

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const reportBoundAfter = 3 * time.Second

func (t *thread) iterativeDeepening(startDepth, multiPV int) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	var e = t.engine
	for depth := startDepth; depth <= maxHeight; depth++ {
		if t.ctx.Err() != nil {
			return
		}
		for i := range t.rootMoves {
			t.rootMoves[i].prevScore = t.rootMoves[i].score
		}
		for pvIdx := 0; pvIdx < multiPV; pvIdx++ {
			t.pvIdx = pvIdx
			t.aspirationWindow(depth)
			var rest = t.rootMoves[pvIdx:]
			sort.SliceStable(rest, func(i, j int) bool {
				return rest[i].score > rest[j].score
			})
		}
		if t.main {
			e.onIterationComplete(t, depth)
			if len(t.rootMoves) == 1 && e.limits.TimeLimit {
				return
			}
		}
	}
}

func (t *thread) aspirationWindow(depth int) int {
	var c = &t.engine.Config
	var prev = t.rootMoves[t.pvIdx].prevScore
	if depth >= 5 && c.Aspi > 0 && prev > valueLoss && prev < valueWin {
		var window = c.Aspi + prev*prev/common.Max(1, c.AspiScoreDiv)
		var alpha = common.Max(-valueInfinity, prev-window)
		var beta = common.Min(valueInfinity, prev+window)
		for window < 1000 {
			var score = t.searchRoot(alpha, beta, depth)
			if score > alpha && score < beta {
				return score
			}
			if t.main && time.Since(t.engine.start) >= reportBoundAfter {
				t.engine.reportProgress(t, depth, alpha, beta)
			}
			window *= 2
			if score <= alpha {
				alpha = common.Max(-valueInfinity, score-window)
			} else {
				beta = common.Min(valueInfinity, score+window)
			}
		}
	}
	return t.searchRoot(-valueInfinity, valueInfinity, depth)
}

// searchRoot searches the root moves from pvIdx on. Moves before pvIdx
// already own a multi-PV line and are excluded.
func (t *thread) searchRoot(alpha, beta, depth int) int {
	const height = 0
	t.clearPV(height)
	var p = &t.position
	var inCheck = p.InCheck()
	var best = -valueInfinity
	var oldAlpha = alpha
	for i := t.pvIdx; i < len(t.rootMoves); i++ {
		var rm = &t.rootMoves[i]
		var undo = t.makeMove(rm.move)
		var newDepth = depth - 1
		if p.InCheck() {
			newDepth++
		}
		var score int
		if i == t.pvIdx {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1)
		} else {
			var reduction = 0
			var info = rm.info
			if depth >= 3 && !inCheck && !info.isCaptureOrPromotion() {
				reduction = common.Clamp(t.engine.reductions.get(true, depth, i-t.pvIdx+1)-1, 0, newDepth-1)
			}
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1)
			if score > alpha && reduction > 0 {
				score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1)
			}
			if score > alpha && score < beta {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1)
			}
		}
		undo()

		if i == t.pvIdx || score > alpha {
			rm.score = score
			rm.pv = append(rm.pv[:0], rm.move)
			rm.pv = append(rm.pv, t.stack[height+1].pv.items[:t.stack[height+1].pv.size]...)
		} else {
			rm.score = -valueInfinity
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, rm.move)
			if alpha >= beta {
				break
			}
		}
	}
	if t.pvIdx == 0 && t.stack[height].pv.size > 0 {
		var bound = boundExact
		if best >= beta {
			bound = boundLower
		} else if best <= oldAlpha {
			bound = boundUpper
		}
		t.engine.transTable.Update(p.Key(), depth, valueToTT(best, height), bound, t.stack[height].pv.items[0])
	}
	return best
}

func (t *thread) alphaBeta(alpha, beta, depth, height int) int {
	if depth <= 0 {
		return t.quiescence(alpha, beta, height)
	}
	t.clearPV(height)

	var p = &t.position
	var c = &t.engine.Config
	var pvNode = beta != alpha+1

	if height >= maxHeight {
		return evaluate(p, c.Tempo)
	}
	if p.IsDraw() {
		return valueDraw
	}

	// mate distance pruning
	alpha = common.Max(alpha, lossIn(height))
	beta = common.Min(beta, winIn(height+1))
	if alpha >= beta {
		return alpha
	}

	var inCheck = p.InCheck()

	var ttDepth, ttValue, ttBound, ttMove, ttHit = t.engine.transTable.Read(p.Key())
	if ttHit {
		ttValue = valueFromTT(ttValue, height)
		if ttDepth >= depth && !pvNode {
			if ttValue >= beta && (ttBound&boundLower) != 0 {
				return ttValue
			}
			if ttValue <= alpha && (ttBound&boundUpper) != 0 {
				return ttValue
			}
		}
	}

	// internal iterative reduction
	if ttMove == common.MoveEmpty && c.IIRDepth > 0 && depth >= c.IIRDepth {
		depth--
	}

	var staticEval = -valueInfinity
	if !inCheck {
		staticEval = evaluate(p, c.Tempo)
	}
	t.stack[height].staticEval = staticEval
	var improving = !inCheck && height >= 2 && staticEval > t.stack[height-2].staticEval

	if height+2 < stackSize {
		t.stack[height+2].killer1 = common.MoveEmpty
		t.stack[height+2].killer2 = common.MoveEmpty
	}

	// reverse futility pruning
	if !pvNode && !inCheck && depth <= c.RFPDepth &&
		beta > valueLoss && staticEval < valueWin &&
		staticEval-c.RFPBase*depth >= beta {
		return staticEval
	}

	var mi = t.initMoveIterator(height, ttMove, false)
	if mi.count == 0 {
		if inCheck {
			return lossIn(height)
		}
		return valueDraw
	}

	var side = p.WhiteMove()
	var killer1 = t.stack[height].killer1
	var killer2 = t.stack[height].killer2
	var quietsSearched = t.stack[height].quietsSearched[:0]
	var movesSearched, quietsSeen = 0, 0
	var best = -valueInfinity
	var bestMove = common.MoveEmpty
	var oldAlpha = alpha

	for mi.Reset(); ; {
		var move, info = mi.Next()
		if move == common.MoveEmpty {
			break
		}
		var isNoisy = info.isCaptureOrPromotion()
		var isKiller = move == killer1 || move == killer2
		var history = 0
		if !isNoisy {
			quietsSeen++
			history = t.history.read(side, move)
		}

		if best > valueLoss && !inCheck && !isNoisy && !isKiller {
			// late move pruning
			if depth <= 8 && quietsSeen > c.lmpLimit(depth, improving) {
				continue
			}
			// history pruning
			if depth <= c.HistPruneDepth && history < -c.HistPrune*depth {
				continue
			}
		}

		var undo = t.makeMove(move)
		movesSearched++
		var givesCheck = p.InCheck()

		var extension, reduction int
		if givesCheck && depth >= 3 {
			extension = 1
		}

		if depth >= 3 && movesSearched > 1 {
			reduction = t.engine.reductions.get(!isNoisy, depth, movesSearched)
			if !isNoisy {
				reduction -= history / common.Max(1, c.LMRHist)
				if isKiller {
					reduction--
				}
				if !improving {
					reduction++
				}
			}
			if pvNode {
				reduction--
			}
			if inCheck || givesCheck {
				reduction--
			}
			reduction = common.Clamp(reduction, 0, depth-2)
		}

		if !isNoisy {
			quietsSearched = append(quietsSearched, move)
		}

		var newDepth = depth - 1 + extension

		var score = alpha + 1
		// LMR
		if reduction > 0 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1)
		}
		// PVS
		if score > alpha && pvNode && movesSearched > 1 && newDepth > 0 {
			score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1)
		}
		// full search
		if score > alpha {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1)
		}

		undo()

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if alpha > oldAlpha && bestMove != common.MoveEmpty && !describeMove(p, bestMove).isCaptureOrPromotion() {
		t.updateHistory(side, quietsSearched, bestMove, depth)
		t.updateKiller(bestMove, height)
	}

	var bound = 0
	if best > oldAlpha {
		bound |= boundLower
	}
	if best < beta {
		bound |= boundUpper
	}
	t.engine.transTable.Update(p.Key(), depth, valueToTT(best, height), bound, bestMove)

	return best
}

func (t *thread) quiescence(alpha, beta, height int) int {
	t.clearPV(height)
	var p = &t.position
	var c = &t.engine.Config
	if p.IsDraw() {
		return valueDraw
	}
	if height >= maxHeight {
		return evaluate(p, c.Tempo)
	}

	var _, ttValue, ttBound, _, ttHit = t.engine.transTable.Read(p.Key())
	if ttHit {
		ttValue = valueFromTT(ttValue, height)
		if ttBound == boundExact ||
			ttBound == boundLower && ttValue >= beta ||
			ttBound == boundUpper && ttValue <= alpha {
			return ttValue
		}
	}

	var inCheck = p.InCheck()
	var best = -valueInfinity
	var eval = 0
	if !inCheck {
		eval = evaluate(p, c.Tempo)
		best = eval
		if eval > alpha {
			alpha = eval
			if alpha >= beta {
				return alpha
			}
		}
	}

	var mi = t.initMoveIterator(height, common.MoveEmpty, true)
	if inCheck && mi.count == 0 {
		return lossIn(height)
	}
	for mi.Reset(); ; {
		var move, info = mi.Next()
		if move == common.MoveEmpty {
			break
		}
		// delta pruning
		if !inCheck && info.promoted == dragontoothmg.Nothing &&
			eval+materialEnd[info.captured]+c.QSFutility <= alpha {
			continue
		}
		var undo = t.makeMove(move)
		var score = -t.quiescence(-beta, -alpha, height+1)
		undo()
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}
	return best
}

// makeMove counts the node and aborts the search by panic once the
// context is done. The check runs every 1024 nodes.
func (t *thread) makeMove(m common.Move) (undo func()) {
	var nodes = atomic.AddUint64(&t.position.Nodes, 1)
	if nodes&1023 == 0 && t.ctx.Err() != nil {
		panic(errSearchTimeout)
	}
	return t.position.MakeMove(m)
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.size = 0
}

func (t *thread) assignPV(height int, m common.Move) {
	t.stack[height].pv.assign(m, &t.stack[height+1].pv)
}

type pv struct {
	items [stackSize]common.Move
	size  int
}

func (pv *pv) assign(m common.Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		var n = copy(pv.items[1:], child.items[:child.size])
		pv.size += n
	}
}
