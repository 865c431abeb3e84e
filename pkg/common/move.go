package common

import (
	"fmt"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

func promotionName(piece dragontoothmg.Piece) string {
	switch piece {
	case dragontoothmg.Knight:
		return "n"
	case dragontoothmg.Bishop:
		return "b"
	case dragontoothmg.Rook:
		return "r"
	case dragontoothmg.Queen:
		return "q"
	}
	return ""
}

// MoveString formats a move in UCI long algebraic notation.
func MoveString(m Move) string {
	if m == MoveEmpty {
		return "0000"
	}
	return SquareName(int(m.From())) + SquareName(int(m.To())) + promotionName(m.Promote())
}

// IsCastling reports whether m is a king move of two files in p.
func (p *Position) IsCastling(m Move) bool {
	var from, to = int(m.From()), int(m.To())
	var us, _ = p.sides()
	return us.Kings&(uint64(1)<<uint(from)) != 0 &&
		Rank(from) == Rank(to) && Abs(File(from)-File(to)) == 2
}

// MoveToString formats m for the position it is played from. With chess960
// castling is written as the king capturing its own rook.
func (p *Position) MoveToString(m Move, chess960 bool) string {
	if chess960 && p.IsCastling(m) {
		var from, to = int(m.From()), int(m.To())
		var rookFile = FileH
		if File(to) < File(from) {
			rookFile = FileA
		}
		return SquareName(from) + SquareName(MakeSquare(rookFile, Rank(from)))
	}
	return MoveString(m)
}

// FormatLine formats a line of moves played from p. p is not modified.
func (p *Position) FormatLine(moves []Move, chess960 bool) []string {
	var result = make([]string, len(moves))
	if !chess960 {
		for i := range moves {
			result[i] = MoveString(moves[i])
		}
		return result
	}
	var child = *p
	for i := range moves {
		result[i] = child.MoveToString(moves[i], true)
		child.MakeMove(moves[i])
	}
	return result
}

// ParseMove resolves a UCI move against the legal moves of p. Castling is
// accepted both as a two-file king move and as king takes own rook.
func (p *Position) ParseMove(s string) (Move, error) {
	var lan = strings.ToLower(s)
	var moves = p.LegalMoves()
	for i := range moves {
		if MoveString(moves[i]) == lan {
			return moves[i], nil
		}
	}
	if alt, ok := p.kingTakesRook(lan); ok {
		for i := range moves {
			if MoveString(moves[i]) == alt {
				return moves[i], nil
			}
		}
	}
	return MoveEmpty, fmt.Errorf("%w: %v", ErrIllegalMove, s)
}

func (p *Position) kingTakesRook(lan string) (string, bool) {
	if len(lan) != 4 {
		return "", false
	}
	var from, to = ParseSquare(lan[:2]), ParseSquare(lan[2:])
	if from == SquareNone || to == SquareNone || Rank(from) != Rank(to) {
		return "", false
	}
	var us, _ = p.sides()
	if us.Kings&(uint64(1)<<uint(from)) == 0 || us.Rooks&(uint64(1)<<uint(to)) == 0 {
		return "", false
	}
	var kingTo = from + 2
	if to < from {
		kingTo = from - 2
	}
	return SquareName(from) + SquareName(kingTo), true
}
