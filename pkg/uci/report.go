package uci

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

// output serialises protocol lines from the read loop and the search
// goroutine. Every write is flushed.
type output struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newOutput(w io.Writer) *output {
	return &output{w: bufio.NewWriter(w)}
}

func (o *output) WriteString(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w.WriteString(s)
	o.w.Flush()
}

func (o *output) Println(a ...interface{}) {
	o.WriteString(fmt.Sprintln(a...))
}

func (o *output) Printf(format string, a ...interface{}) {
	o.WriteString(fmt.Sprintf(format, a...))
}

func (o *output) InfoString(s string) {
	o.WriteString("info string " + s + "\n")
}

// mateScore translates a score to moves to mate, signed like the score.
func mateScore(score int) int {
	var d = (common.ValueMate - common.Abs(score) + 1) / 2
	if score > 0 {
		return d
	}
	return -d
}

// scoreToUci formats a score. Scores close to zero with a very short PV are
// reported as 0.
func scoreToUci(score, pvLength int) string {
	if common.Abs(score) >= common.MateInMax {
		return fmt.Sprintf("mate %v", mateScore(score))
	}
	if common.Abs(score) <= 8 && pvLength <= 2 {
		score = 0
	}
	return fmt.Sprintf("cp %v", score)
}

func boundToUci(score, alpha, beta int) string {
	if score >= beta {
		return " lowerbound"
	}
	if score <= alpha {
		return " upperbound"
	}
	return ""
}

// formatThinking renders one info line per root move up to multiPV,
// stopping at the first root move without a PV.
func formatThinking(si *common.SearchInfo, pos *common.Position, chess960 bool, multiPV int) string {
	var elapsed = si.Elapsed.Milliseconds()
	var nps = si.Nodes * 1000 / uint64(elapsed+1)
	var sb strings.Builder
	for i := 0; i < multiPV && i < len(si.RootMoves); i++ {
		var rm = &si.RootMoves[i]
		if len(rm.PV) == 0 {
			break
		}
		fmt.Fprintf(&sb, "info depth %v seldepth %v multipv %v score %v%v time %v nodes %v nps %v tbhits %v hashfull %v pv",
			si.Depth, si.SelDepth, i+1,
			scoreToUci(rm.Score, len(rm.PV)), boundToUci(rm.Score, si.Alpha, si.Beta),
			elapsed, si.Nodes, nps, si.TBHits, si.HashFull)
		for _, move := range pos.FormatLine(rm.PV, chess960) {
			sb.WriteString(" ")
			sb.WriteString(move)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatConclusion reports the move of the first root move only.
func formatConclusion(si *common.SearchInfo, pos *common.Position, chess960 bool) string {
	var move = si.BestMove()
	if move == common.MoveEmpty {
		return "bestmove " + common.MoveString(move) + "\n"
	}
	return "bestmove " + pos.MoveToString(move, chess960) + "\n"
}
