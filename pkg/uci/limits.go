package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const defaultDepth = 100

// ParseTimeControl fills limits from a go command. MultiPV is kept. Time
// and increment are taken for the side to move in pos.
func ParseTimeControl(limits *common.SearchLimits, line string, pos *common.Position) error {
	limits.Reset()
	limits.Start = time.Now()

	var args = strings.Fields(line)
	if len(args) != 0 && args[0] == "go" {
		args = args[1:]
	}

	var timeName, incName = "btime", "binc"
	if pos.WhiteMove() {
		timeName, incName = "wtime", "winc"
	}

	for i := 0; i < len(args); i++ {
		var name = args[i]
		var target *int
		switch name {
		case "infinite":
			limits.Infinite = true
			continue
		case "searchmoves":
			var moves, err = parseSearchMoves(args[i+1:], pos)
			if err != nil {
				return err
			}
			limits.SearchMoves = moves
			i = len(args)
			continue
		case timeName:
			target = &limits.Time
		case incName:
			target = &limits.Inc
		case "movestogo":
			target = &limits.MovesToGo
		case "movetime":
			target = &limits.MoveTime
		case "depth":
			target = &limits.Depth
		case "mate":
			target = &limits.Mate
		case "wtime", "btime", "winc", "binc", "nodes":
			// the opponent's clock and unsupported limits still carry a value
		default:
			continue
		}
		if i+1 >= len(args) {
			return fmt.Errorf("go %v: missing value", name)
		}
		var v, err = strconv.Atoi(args[i+1])
		if err != nil {
			return fmt.Errorf("go %v: %w", name, err)
		}
		if target != nil {
			*target = v
		}
		i++
	}

	limits.TimeLimit = limits.Time > 0 || limits.MoveTime > 0
	if limits.Depth == 0 {
		limits.Depth = defaultDepth
	}
	return nil
}

func parseSearchMoves(args []string, pos *common.Position) ([]common.Move, error) {
	if len(args) > common.MaxMoves {
		return nil, fmt.Errorf("searchmoves: too many moves (%v)", len(args))
	}
	var result = make([]common.Move, 0, len(args))
	for _, smove := range args {
		var move, err = pos.ParseMove(smove)
		if err != nil {
			return nil, fmt.Errorf("searchmoves: %w", err)
		}
		result = append(result, move)
	}
	return result, nil
}
