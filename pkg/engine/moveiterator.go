package engine

import (
	"github.com/dylhunn/dragontoothmg"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const sortTableKeyImportant = 1 << 20

type orderedMove struct {
	move common.Move
	key  int32
	info moveInfo
}

type moveIterator struct {
	buffer []orderedMove
	count  int
	index  int
}

// initMoveIterator generates the legal moves of the position at height.
// In quiescence without check only captures and promotions are kept.
func (t *thread) initMoveIterator(height int, transMove common.Move, quiescence bool) moveIterator {
	var p = &t.position
	var side = p.WhiteMove()
	var buffer = t.stack[height].moveList[:]
	var moves = p.LegalMoves()
	var inCheck = quiescence && p.InCheck()
	var count = 0
	for _, m := range moves {
		var info = describeMove(p, m)
		var noisy = info.isCaptureOrPromotion()
		if quiescence && !inCheck && !noisy {
			continue
		}
		var key int
		switch {
		case m == transMove:
			key = sortTableKeyImportant + 2000
		case noisy:
			key = sortTableKeyImportant + 1000 + mvvlva(info)
		case m == t.stack[height].killer1:
			key = sortTableKeyImportant + 1
		case m == t.stack[height].killer2:
			key = sortTableKeyImportant
		default:
			key = t.history.read(side, m)
		}
		buffer[count] = orderedMove{move: m, key: int32(key), info: info}
		count++
	}
	return moveIterator{buffer: buffer, count: count}
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

// Next returns the next move and its description, or MoveEmpty when done.
func (mi *moveIterator) Next() (common.Move, moveInfo) {
	if mi.index >= mi.count {
		return common.MoveEmpty, moveInfo{}
	}
	const sortMovesIndex = 1
	if mi.index <= sortMovesIndex {
		if mi.index == sortMovesIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var om = &mi.buffer[mi.index]
	mi.index++
	return om.move, om.info
}

var sortPieceValues = [...]int{
	dragontoothmg.Nothing: 0,
	dragontoothmg.Pawn:    1,
	dragontoothmg.Knight:  2,
	dragontoothmg.Bishop:  3,
	dragontoothmg.Rook:    4,
	dragontoothmg.Queen:   5,
	dragontoothmg.King:    6,
}

func mvvlva(info moveInfo) int {
	return 8*(sortPieceValues[info.captured]+sortPieceValues[info.promoted]) -
		sortPieceValues[info.moving]
}

func sortMoves(moves []orderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].key < t.key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []orderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].key > ml[bestIndex].key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
