package engine

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/counteruci/pkg/common"
	"github.com/ChizhovVadim/counteruci/pkg/online"
)

func newTestEngine() *Engine {
	return NewEngine(zerolog.Nop(), nil)
}

func mustPosition(t *testing.T, fen string) common.Position {
	t.Helper()
	var p, err = common.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustParse(t *testing.T, p *common.Position, s string) common.Move {
	t.Helper()
	var move, err = p.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	return move
}

func TestMateInOne(t *testing.T) {
	for _, threads := range []int{1, 2} {
		var e = newTestEngine()
		e.Threads = threads
		var p = mustPosition(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
		var si = e.Search(context.Background(), common.SearchParams{
			Position: p,
			Limits:   common.SearchLimits{Depth: 4, MultiPV: 1},
		})
		if s := common.MoveString(si.BestMove()); s != "a1a8" {
			t.Error(threads, "bestmove", s)
		}
		var score = si.RootMoves[0].Score
		if score < valueWin || mateDistance(score) != 1 {
			t.Error(threads, "score", score)
		}
		if si.Nodes == 0 {
			t.Error(threads, "no nodes counted")
		}
	}
}

func TestMateLimitStopsSearch(t *testing.T) {
	var e = newTestEngine()
	var p = mustPosition(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	var si = e.Search(context.Background(), common.SearchParams{
		Position: p,
		Limits:   common.SearchLimits{Depth: 100, Mate: 1, MultiPV: 1},
	})
	if si.Depth >= 100 {
		t.Error("mate target ignored", si.Depth)
	}
}

func TestDepthLimitAndProgress(t *testing.T) {
	var e = newTestEngine()
	var depths []int
	var si = e.Search(context.Background(), common.SearchParams{
		Position: mustPosition(t, common.InitialPositionFen),
		Limits:   common.SearchLimits{Depth: 3, MultiPV: 1},
		Progress: func(si common.SearchInfo) {
			depths = append(depths, si.Depth)
		},
	})
	if si.Depth != 3 {
		t.Error("depth", si.Depth)
	}
	if len(depths) != 3 || depths[0] != 1 || depths[2] != 3 {
		t.Error("progress", depths)
	}
	if si.SelDepth < si.Depth {
		t.Error("seldepth", si.SelDepth)
	}
}

func TestSearchMoves(t *testing.T) {
	var e = newTestEngine()
	var p = mustPosition(t, common.InitialPositionFen)
	var restricted = []common.Move{mustParse(t, &p, "a2a3"), mustParse(t, &p, "h2h3")}
	var si = e.Search(context.Background(), common.SearchParams{
		Position: p,
		Limits:   common.SearchLimits{Depth: 3, MultiPV: 5, SearchMoves: restricted},
	})
	if len(si.RootMoves) != 2 {
		t.Fatal("root moves", len(si.RootMoves))
	}
	for _, rm := range si.RootMoves {
		if findMoveIndex(restricted, rm.Move) < 0 {
			t.Error("unexpected root move", common.MoveString(rm.Move))
		}
	}
}

func TestMultiPV(t *testing.T) {
	var e = newTestEngine()
	var si = e.Search(context.Background(), common.SearchParams{
		Position: mustPosition(t, common.InitialPositionFen),
		Limits:   common.SearchLimits{Depth: 4, MultiPV: 3},
	})
	if len(si.RootMoves) != 3 {
		t.Fatal(len(si.RootMoves))
	}
	var seen = map[common.Move]bool{}
	for i, rm := range si.RootMoves {
		if seen[rm.Move] {
			t.Error("duplicate line", common.MoveString(rm.Move))
		}
		seen[rm.Move] = true
		if len(rm.PV) == 0 || rm.PV[0] != rm.Move {
			t.Error("pv", i)
		}
	}
}

func TestNoLegalMoves(t *testing.T) {
	var e = newTestEngine()
	var si = e.Search(context.Background(), common.SearchParams{
		Position: mustPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"),
		Limits:   common.SearchLimits{Depth: 5, MultiPV: 1},
	})
	if si.BestMove() != common.MoveEmpty {
		t.Error(common.MoveString(si.BestMove()))
	}
}

func TestAbortInfinite(t *testing.T) {
	var e = newTestEngine()
	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan common.SearchInfo)
	go func() {
		done <- e.Search(ctx, common.SearchParams{
			Position: mustPosition(t, common.InitialPositionFen),
			Limits:   common.SearchLimits{Depth: 100, Infinite: true, MultiPV: 1},
		})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case si := <-done:
		if si.BestMove() == common.MoveEmpty {
			t.Error("aborted search must keep a best move")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop")
	}
}

func TestMoveTime(t *testing.T) {
	var e = newTestEngine()
	var start = time.Now()
	e.Search(context.Background(), common.SearchParams{
		Position: mustPosition(t, common.InitialPositionFen),
		Limits:   common.SearchLimits{Start: start, MoveTime: 100, TimeLimit: true, Depth: 100, MultiPV: 1},
	})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Error("movetime ignored", elapsed)
	}
}

func TestCalcLimits(t *testing.T) {
	var soft, hard = calcLimits(60*time.Second, time.Second, 0)
	if !(soft > 0 && soft < hard && hard < 60*time.Second) {
		t.Error(soft, hard)
	}
	soft, hard = calcLimits(100*time.Millisecond, 0, 1)
	if soft < time.Millisecond || hard < time.Millisecond {
		t.Error("minimum limit", soft, hard)
	}
}

func TestTransTable(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()
	const key = uint64(0x1234567890abcdef)
	if _, _, _, _, ok := tt.Read(key); ok {
		t.Fatal("empty table hit")
	}
	var move = common.Move(0x0123)
	tt.Update(key, 5, 42, boundLower, move)
	depth, score, bound, ttMove, ok := tt.Read(key)
	if !ok || depth != 5 || score != 42 || bound != boundLower || ttMove != move {
		t.Error(depth, score, bound, ttMove, ok)
	}
	tt.Update(key, 6, 43, boundExact, common.MoveEmpty)
	if _, _, _, ttMove, _ = tt.Read(key); ttMove != move {
		t.Error("move of the same position must be kept")
	}
	tt.Clear()
	if _, _, _, _, ok := tt.Read(key); ok {
		t.Error("clear")
	}
}

func TestTransTableBucket(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()
	const deep, shallow, other = uint64(7) | 1<<32, uint64(7) | 2<<32, uint64(7) | 3<<32
	tt.Update(deep, 10, 1, boundExact, common.MoveEmpty)
	tt.Update(shallow, 2, 2, boundExact, common.MoveEmpty)
	if d, _, _, _, ok := tt.Read(deep); !ok || d != 10 {
		t.Error("deep entry replaced by a shallow one")
	}
	if d, _, _, _, ok := tt.Read(shallow); !ok || d != 2 {
		t.Error("shallow entry lost")
	}
	tt.Update(other, 3, 3, boundExact, common.MoveEmpty)
	if _, _, _, _, ok := tt.Read(shallow); ok {
		t.Error("always-replace slot kept the old entry")
	}
	tt.IncDate()
	tt.Update(shallow, 1, 4, boundUpper, common.MoveEmpty)
	if _, _, _, _, ok := tt.Read(deep); ok {
		t.Error("entry of an old search kept over a new one")
	}
}

func TestHashFull(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()
	for i := 0; i < 500; i++ {
		tt.Update(uint64(i)|uint64(i+1)<<32, 1, 0, boundExact, common.MoveEmpty)
	}
	if hf := tt.HashFull(); hf != 500 {
		t.Error(hf)
	}
	tt.IncDate()
	if hf := tt.HashFull(); hf != 0 {
		t.Error("new search", hf)
	}
}

func TestMateDistance(t *testing.T) {
	var prev = 0
	for score := valueWin; score < valueMate; score++ {
		var d = mateDistance(score)
		if d <= 0 || (prev != 0 && d > prev) {
			t.Fatal(score, d)
		}
		prev = d
		if mateDistance(-score) != -d {
			t.Fatal("sign", score)
		}
	}
	if mateDistance(winIn(1)) != 1 || mateDistance(winIn(3)) != 2 {
		t.Error(mateDistance(winIn(1)), mateDistance(winIn(3)))
	}
}

func TestSetTablebasePath(t *testing.T) {
	var dir1, dir2 = t.TempDir(), t.TempDir()
	for _, name := range []string{"KQvK.rtbw", "KQvK.rtbz", "KRPvKR.rtbw"} {
		if err := os.WriteFile(filepath.Join(dir1, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir2, "KBNvK.rtbw"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var e = newTestEngine()
	largest, err := e.SetTablebasePath(dir1 + string(os.PathListSeparator) + dir2)
	if err != nil {
		t.Fatal(err)
	}
	if largest != 5 || e.tablebase.files != 3 {
		t.Error(largest, e.tablebase.files)
	}
	if largest, err = e.SetTablebasePath("<empty>"); err != nil || largest != 0 {
		t.Error(largest, err)
	}
	if _, err = e.SetTablebasePath(filepath.Join(dir1, "missing")); err == nil {
		t.Error("missing directory accepted")
	}
}

func TestOnlineTablebaseProbe(t *testing.T) {
	var server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"category":"win","moves":[{"uci":"a7a8q","category":"loss"}]}`))
	}))
	defer server.Close()

	var e = NewEngine(zerolog.Nop(), online.NewClient(online.WithTablebaseURL(server.URL)))
	e.Config.OnlineSyzygy = true
	var reported = 0
	var si = e.Search(context.Background(), common.SearchParams{
		Position: mustPosition(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1"),
		Limits:   common.SearchLimits{Depth: 10, MultiPV: 1},
		Progress: func(common.SearchInfo) { reported++ },
	})
	if s := common.MoveString(si.BestMove()); s != "a7a8q" {
		t.Error(s)
	}
	if si.TBHits != 1 || si.RootMoves[0].Score != common.ValueTBWin || reported != 1 {
		t.Error(si.TBHits, si.RootMoves[0].Score, reported)
	}
}

func TestOnlineBookLimit(t *testing.T) {
	var requests = 0
	var server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte("move:g1f3"))
	}))
	defer server.Close()

	var e = NewEngine(zerolog.Nop(), online.NewClient(online.WithBookURL(server.URL)))
	e.Config.NoobBook = true
	e.Config.NoobBookLimit = 5
	var p = mustPosition(t, common.InitialPositionFen)
	var si = e.Search(context.Background(), common.SearchParams{
		Position: p,
		Limits:   common.SearchLimits{Depth: 2, MultiPV: 1},
	})
	if s := common.MoveString(si.BestMove()); s != "g1f3" {
		t.Error(s)
	}
	p.GameMoves = 6
	e.Search(context.Background(), common.SearchParams{
		Position: p,
		Limits:   common.SearchLimits{Depth: 2, MultiPV: 1},
	})
	if requests != 1 {
		t.Error("book queried past its limit", requests)
	}
}

func TestBenchmark(t *testing.T) {
	var e = newTestEngine()
	var buf bytes.Buffer
	if err := Benchmark(context.Background(), e, 2, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "NPS") {
		t.Error(buf.String())
	}
}

func TestClearResetsOnlineFailures(t *testing.T) {
	var client = online.NewClient(online.WithBookURL("http://127.0.0.1:1"))
	var e = NewEngine(zerolog.Nop(), client)
	e.Config.NoobBook = true
	var p = mustPosition(t, common.InitialPositionFen)
	for i := 0; i < 3; i++ {
		e.Search(context.Background(), common.SearchParams{
			Position: p,
			Limits:   common.SearchLimits{Depth: 1, MultiPV: 1},
		})
	}
	if client.Available() {
		t.Fatal("client must be disabled after failures")
	}
	e.Clear()
	if !client.Available() {
		t.Error("clear must reset failures")
	}
}
