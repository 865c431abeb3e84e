package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChizhovVadim/counteruci/pkg/common"
	"github.com/ChizhovVadim/counteruci/pkg/online"
)

const onlineTablebasePieces = 7

type tablebaseInfo struct {
	path    string
	files   int
	largest int
}

// SetTablebasePath scans the directories of path (separated like PATH) for
// Syzygy WDL files. An empty path or "<empty>" disables tablebases.
func (e *Engine) SetTablebasePath(path string) (largest int, err error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "<empty>" {
		e.tablebase = tablebaseInfo{}
		return 0, nil
	}
	var info = tablebaseInfo{path: path}
	for _, dir := range filepath.SplitList(path) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return 0, fmt.Errorf("syzygy path %v: %w", dir, err)
		}
		for _, entry := range entries {
			var name = entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".rtbw" {
				continue
			}
			info.files++
			info.largest = common.Max(info.largest, syzygyPieces(strings.TrimSuffix(name, ".rtbw")))
		}
	}
	e.tablebase = info
	e.logger.Info().Str("path", path).
		Int("files", info.files).
		Int("largest", info.largest).
		Msg("syzygy tablebases found")
	return info.largest, nil
}

// syzygyPieces counts the pieces of a table name such as KQvKR.
func syzygyPieces(name string) int {
	var n = 0
	for _, ch := range name {
		if strings.ContainsRune("KQRBNP", ch) {
			n++
		}
	}
	return n
}

// probeOnline asks the online tablebase and then the online book for the
// root move. A hit ends the search.
func (e *Engine) probeOnline(ctx context.Context, p *common.Position, rootMoves []rootMove) (common.SearchInfo, bool) {
	if e.online == nil || len(e.limits.SearchMoves) != 0 || !e.online.Available() {
		return common.SearchInfo{}, false
	}
	var fen = p.FEN()

	if e.Config.OnlineSyzygy && p.PieceCount() <= onlineTablebasePieces {
		result, err := e.online.QueryTablebase(ctx, fen)
		if err == nil {
			var score = valueDraw
			if result.Win() {
				score = common.ValueTBWin
			} else if result.Loss() {
				score = -common.ValueTBWin
			}
			if si, ok := e.onlineResult(p, rootMoves, result.Move, score); ok {
				return si, true
			}
		} else {
			e.logOnlineError(err, "tablebase")
		}
	}

	if e.Config.NoobBook && (e.Config.NoobBookLimit == 0 || p.GameMoves <= e.Config.NoobBookLimit) {
		move, err := e.online.QueryBook(ctx, fen)
		if err == nil {
			if si, ok := e.onlineResult(p, rootMoves, move, valueDraw); ok {
				return si, true
			}
		} else {
			e.logOnlineError(err, "book")
		}
	}
	return common.SearchInfo{}, false
}

func (e *Engine) onlineResult(p *common.Position, rootMoves []rootMove, smove string, score int) (common.SearchInfo, bool) {
	move, err := p.ParseMove(smove)
	if err != nil {
		e.logger.Warn().Err(err).Msg("online move rejected")
		return common.SearchInfo{}, false
	}
	if findRootMove(rootMoves, move) < 0 {
		return common.SearchInfo{}, false
	}
	e.tbHits.Add(1)
	return common.SearchInfo{
		Depth:     1,
		SelDepth:  1,
		RootMoves: []common.RootMove{{Move: move, Score: score, PV: []common.Move{move}}},
		Alpha:     -valueInfinity,
		Beta:      valueInfinity,
		Elapsed:   time.Since(e.start),
		TBHits:    e.tbHits.Load(),
		HashFull:  e.HashFull(),
	}, true
}

func (e *Engine) logOnlineError(err error, service string) {
	if errors.Is(err, online.ErrNotFound) || errors.Is(err, online.ErrUnavailable) {
		e.logger.Debug().Err(err).Str("service", service).Msg("online probe miss")
		return
	}
	e.logger.Warn().Err(err).Str("service", service).Msg("online probe failed")
}

func findRootMove(rootMoves []rootMove, move common.Move) int {
	for i := range rootMoves {
		if rootMoves[i].move == move {
			return i
		}
	}
	return -1
}
