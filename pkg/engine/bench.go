package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ChizhovVadim/counteruci/pkg/common"
)

const DefaultBenchDepth = 8

var benchFens = []string{
	common.InitialPositionFen,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"2r3k1/pp3ppp/4p3/3p4/3P4/2P1PN2/P4PPP/5RK1 b - - 0 20",
	"8/8/1p2k1p1/3p3p/1p1P1P1P/1P2PK2/8/8 w - - 3 54",
}

// Benchmark searches a fixed set of positions to depth and writes the
// node count, time and speed to w.
func Benchmark(ctx context.Context, e *Engine, depth int, w io.Writer) error {
	if depth <= 0 {
		depth = DefaultBenchDepth
	}
	e.Prepare()
	e.Clear()
	var start = time.Now()
	var nodes uint64
	for _, fen := range benchFens {
		p, err := common.NewPositionFromFEN(fen)
		if err != nil {
			return err
		}
		var si = e.Search(ctx, common.SearchParams{
			Position: p,
			Limits:   common.SearchLimits{Depth: depth, MultiPV: 1},
		})
		nodes += si.Nodes
		fmt.Fprintf(w, "%v bestmove %v nodes %v\n", fen, common.MoveString(si.BestMove()), si.Nodes)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	var elapsed = time.Since(start)
	fmt.Fprintln(w, "Time", elapsed)
	fmt.Fprintln(w, "Nodes", nodes)
	fmt.Fprintln(w, "NPS", nodes*1000/uint64(elapsed.Milliseconds()+1))
	return nil
}
