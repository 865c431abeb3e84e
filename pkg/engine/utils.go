package engine

import (
	"github.com/dylhunn/dragontoothmg"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const (
	valueDraw     = common.ValueDraw
	valueMate     = common.ValueMate
	valueInfinity = common.ValueInfinity
	valueWin      = common.MateInMax
	valueLoss     = -valueWin
	maxHeight     = common.MaxPly - 1
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}

	if v <= valueLoss {
		return v - height
	}

	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}

	if v <= valueLoss {
		return v + height
	}

	return v
}

// mateDistance converts a mate score to moves to mate, signed like the score.
func mateDistance(v int) int {
	var d = (valueMate - common.Abs(v) + 1) / 2
	if v < 0 {
		return -d
	}
	return d
}

type moveInfo struct {
	moving   dragontoothmg.Piece
	captured dragontoothmg.Piece
	promoted dragontoothmg.Piece
}

func describeMove(p *common.Position, m common.Move) moveInfo {
	var from, to = int(m.From()), int(m.To())
	var moving, _ = p.PieceAt(from)
	var captured, _ = p.PieceAt(to)
	if moving == dragontoothmg.Pawn && captured == dragontoothmg.Nothing && common.File(from) != common.File(to) {
		captured = dragontoothmg.Pawn
	}
	return moveInfo{
		moving:   moving,
		captured: captured,
		promoted: m.Promote(),
	}
}

func (mi moveInfo) isCaptureOrPromotion() bool {
	return mi.captured != dragontoothmg.Nothing || mi.promoted != dragontoothmg.Nothing
}

func cloneMoves(ml []common.Move) []common.Move {
	var result = make([]common.Move, len(ml))
	copy(result, ml)
	return result
}

func findMoveIndex(ml []common.Move, move common.Move) int {
	for i := range ml {
		if ml[i] == move {
			return i
		}
	}
	return -1
}
