package uci

import (
	"errors"
	"strings"
	"testing"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

func TestParsePosition(t *testing.T) {
	var initial = mustPosition(t, common.InitialPositionFen)
	var tests = []struct {
		line      string
		fen       string
		gameMoves int
		histPly   int
		rule50    int
	}{
		{"position startpos", initial.FEN(), 0, 0, 0},
		{"startpos", initial.FEN(), 0, 0, 0},
		{"position startpos moves e2e4 e7e5 g1f3",
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", 1, 1, 1},
		{"position startpos moves g1f3 g8f6 f3g1 f6g8",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 4 3", 2, 4, 4},
		{"position fen 8/8/8/8/8/4k3/8/4K2R w K - 10 40 moves e1g1",
			"8/8/8/8/8/4k3/8/5RK1 b - - 11 40", 0, 1, 11},
	}
	for _, test := range tests {
		var p, err = ParsePosition(test.line)
		if err != nil {
			t.Error(test.line, err)
			continue
		}
		var want = mustPosition(t, test.fen)
		if boardFields(p.FEN()) != boardFields(want.FEN()) {
			t.Error(test.line, p.FEN())
		}
		if p.GameMoves != test.gameMoves || p.HistPly != test.histPly || p.Rule50 != test.rule50 {
			t.Error(test.line, p.GameMoves, p.HistPly, p.Rule50)
		}
		if p.Nodes != 0 {
			t.Error("nodes not reset", test.line)
		}
	}
}

// boardFields keeps placement, side to move and castling rights.
func boardFields(fen string) string {
	var fields = strings.Fields(fen)
	if len(fields) > 3 {
		fields = fields[:3]
	}
	return strings.Join(fields, " ")
}

func TestParsePositionRepetition(t *testing.T) {
	var p, err = ParsePosition("position startpos moves g1f3 g8f6 f3g1 f6g8")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsRepetition() {
		t.Error("repetition lost from game history")
	}
	p, err = ParsePosition("position startpos moves g1f3 g8f6 f3g1 f6g8 e2e4")
	if err != nil {
		t.Fatal(err)
	}
	if p.HistPly != 0 {
		t.Error("history not reset after a pawn move", p.HistPly)
	}
}

func TestParsePositionLongGame(t *testing.T) {
	var shuffle = strings.Repeat(" g1f3 g8f6 f3g1 f6g8", 300)
	var p, err = ParsePosition("position startpos moves" + shuffle)
	if err != nil {
		t.Fatal(err)
	}
	if p.HistPly >= gameHistoryLimit {
		t.Error("game history overflow", p.HistPly)
	}
}

func TestParsePositionErrors(t *testing.T) {
	var tests = []struct {
		line string
		err  error
	}{
		{"position", nil},
		{"position moves e2e4", nil},
		{"position foo", nil},
		{"position fen 8/8/8 w - - 0 1", common.ErrInvalidFEN},
		{"position fen moves e2e4", common.ErrInvalidFEN},
		{"position fen 4k3/8/8/8/8/8/8/4K3 w K - 0 1 moves e1g1", common.ErrInvalidFEN},
		{"position startpos moves e2e5", common.ErrIllegalMove},
		{"position startpos moves e2e4 e2e4", common.ErrIllegalMove},
	}
	for _, test := range tests {
		var _, err = ParsePosition(test.line)
		if err == nil {
			t.Error("expected error", test.line)
			continue
		}
		if test.err != nil && !errors.Is(err, test.err) {
			t.Error(test.line, err)
		}
	}
}
