package common

func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	var moves = p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var result uint64
	for _, move := range moves {
		var undo = p.Board.Apply(move)
		result += Perft(p, depth-1)
		undo()
	}
	return result
}

type PerftEntry struct {
	Move  Move
	Nodes uint64
}

// Divide returns the perft count below every legal move of p.
func Divide(p *Position, depth int) []PerftEntry {
	var moves = p.LegalMoves()
	var result = make([]PerftEntry, 0, len(moves))
	for _, move := range moves {
		var undo = p.Board.Apply(move)
		result = append(result, PerftEntry{Move: move, Nodes: Perft(p, depth-1)})
		undo()
	}
	return result
}
