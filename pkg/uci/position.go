package uci

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

// gameHistoryLimit keeps room for a full search above the game history.
const gameHistoryLimit = common.HistorySize - common.MaxPly - 1

// ParsePosition builds the position of a position command. GameMoves counts
// the moves after which White is to move. The key history restarts after
// every irreversible move.
func ParsePosition(line string) (common.Position, error) {
	var args = strings.Fields(line)
	if len(args) != 0 && args[0] == "position" {
		args = args[1:]
	}
	if len(args) == 0 {
		return common.Position{}, errors.New("position: missing arguments")
	}

	var movesIndex = common.FindIndexString(args, "moves")
	var fen string
	switch args[0] {
	case "startpos":
		fen = common.InitialPositionFen
	case "fen":
		var end = len(args)
		if movesIndex >= 0 {
			end = movesIndex
		}
		fen = strings.Join(args[1:end], " ")
	default:
		return common.Position{}, fmt.Errorf("position: unknown token %v", args[0])
	}

	var p, err = common.NewPositionFromFEN(fen)
	if err != nil {
		return common.Position{}, err
	}

	if movesIndex >= 0 {
		for _, smove := range args[movesIndex+1:] {
			var move, err = p.ParseMove(smove)
			if err != nil {
				return common.Position{}, err
			}
			p.MakeMove(move)
			// full moves: one more each time Black has moved
			if p.WhiteMove() {
				p.GameMoves++
			}
			if p.Rule50 == 0 || p.HistPly >= gameHistoryLimit {
				p.ResetHistory()
			}
		}
	}

	p.Nodes = 0
	return p, nil
}
