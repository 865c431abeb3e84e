package engine

import (
	"github.com/dylhunn/dragontoothmg"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const (
	minorPhase = 1
	rookPhase  = 2
	queenPhase = 4
	totalPhase = 2 * (4*minorPhase + 2*rookPhase + queenPhase)
)

var materialMiddle = [...]int{
	dragontoothmg.Pawn:   82,
	dragontoothmg.Knight: 337,
	dragontoothmg.Bishop: 365,
	dragontoothmg.Rook:   477,
	dragontoothmg.Queen:  1025,
	dragontoothmg.King:   0,
}

var materialEnd = [...]int{
	dragontoothmg.Pawn:   94,
	dragontoothmg.Knight: 281,
	dragontoothmg.Bishop: 297,
	dragontoothmg.Rook:   512,
	dragontoothmg.Queen:  936,
	dragontoothmg.King:   0,
}

// Piece-square tables are written from White's side with rank 8 first.
var pstPawn = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pstKnight = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var pstBishop = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var pstRook = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var pstQueen = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var pstKingMiddle = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var pstKingEnd = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

type score struct {
	middle int
	end    int
}

func (s *score) add(piece dragontoothmg.Piece, sq int, sign int) {
	var mg, eg = materialMiddle[piece], materialEnd[piece]
	switch piece {
	case dragontoothmg.Pawn:
		mg += pstPawn[sq]
		eg += pstPawn[sq]
	case dragontoothmg.Knight:
		mg += pstKnight[sq]
		eg += pstKnight[sq]
	case dragontoothmg.Bishop:
		mg += pstBishop[sq]
		eg += pstBishop[sq]
	case dragontoothmg.Rook:
		mg += pstRook[sq]
		eg += pstRook[sq]
	case dragontoothmg.Queen:
		mg += pstQueen[sq]
		eg += pstQueen[sq]
	case dragontoothmg.King:
		mg += pstKingMiddle[sq]
		eg += pstKingEnd[sq]
	}
	s.middle += sign * mg
	s.end += sign * eg
}

func addSide(s *score, bb *dragontoothmg.Bitboards, white bool) (phase int) {
	var sets = [...]struct {
		piece dragontoothmg.Piece
		bits  uint64
		phase int
	}{
		{dragontoothmg.Pawn, bb.Pawns, 0},
		{dragontoothmg.Knight, bb.Knights, minorPhase},
		{dragontoothmg.Bishop, bb.Bishops, minorPhase},
		{dragontoothmg.Rook, bb.Rooks, rookPhase},
		{dragontoothmg.Queen, bb.Queens, queenPhase},
		{dragontoothmg.King, bb.Kings, 0},
	}
	var sign = -1
	if white {
		sign = 1
	}
	for _, set := range sets {
		for x := set.bits; x != 0; x &= x - 1 {
			var sq = common.FirstOne(x)
			if white {
				sq = common.FlipSquare(sq)
			}
			s.add(set.piece, sq, sign)
			phase += set.phase
		}
	}
	return phase
}

// evaluate returns a tapered material and piece-square score from the side
// to move point of view, including the tempo bonus.
func evaluate(p *common.Position, tempo int) int {
	var s score
	var phase = addSide(&s, &p.Board.White, true) + addSide(&s, &p.Board.Black, false)
	if phase > totalPhase {
		phase = totalPhase
	}
	var result = (s.middle*phase + s.end*(totalPhase-phase)) / totalPhase
	if !p.WhiteMove() {
		result = -result
	}
	return result + tempo
}
