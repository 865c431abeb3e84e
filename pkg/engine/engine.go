package engine

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/counteruci/pkg/common"
	"github.com/ChizhovVadim/counteruci/pkg/online"
)

const stackSize = common.MaxPly + 1

// MaxHash bounds the transposition table in megabytes.
const MaxHash = 4096

// Engine owns the transposition table and the search threads. Hash,
// Threads and Config are written only while no search runs and take effect
// on the next Prepare.
type Engine struct {
	Hash    int
	Threads int
	Config  Config

	logger     zerolog.Logger
	online     *online.Client
	transTable *transTable
	reductions reductions
	threads    []thread
	tablebase  tablebaseInfo

	start    time.Time
	limits   common.SearchLimits
	tm       *simpleTimeManager
	progress func(common.SearchInfo)
	result   common.SearchInfo
	tbHits   atomic.Uint64
}

type thread struct {
	position  common.Position
	engine    *Engine
	ctx       context.Context
	main      bool
	history   historyTable
	rootMoves []rootMove
	pvIdx     int
	stack     [stackSize]struct {
		moveList       [common.MaxMoves]orderedMove
		quietsSearched [common.MaxMoves]common.Move
		pv             pv
		staticEval     int
		killer1        common.Move
		killer2        common.Move
	}
}

type rootMove struct {
	move      common.Move
	info      moveInfo
	score     int
	prevScore int
	pv        []common.Move
}

func NewEngine(logger zerolog.Logger, client *online.Client) *Engine {
	return &Engine{
		Hash:    16,
		Threads: 1,
		Config:  NewConfig(),
		logger:  logger,
		online:  client,
	}
}

// Prepare allocates the hash table and the search threads when their sizes
// changed.
func (e *Engine) Prepare() {
	var hash = common.Clamp(e.Hash, 1, MaxHash)
	if e.transTable == nil || e.transTable.Size() != hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(hash)
		e.logger.Debug().Int("megabytes", hash).Msg("hash table allocated")
	}
	var threads = common.Max(1, e.Threads)
	if len(e.threads) != threads {
		e.threads = make([]thread, threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.engine = e
			t.main = i == 0
		}
		e.logger.Debug().Int("threads", threads).Msg("search threads allocated")
	}
}

// Clear forgets everything learned in previous searches.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		e.threads[i].history.clear()
	}
	if e.online != nil {
		e.online.ResetFailures()
	}
}

func (e *Engine) Search(ctx context.Context, params common.SearchParams) common.SearchInfo {
	e.start = params.Limits.Start
	if e.start.IsZero() {
		e.start = time.Now()
	}
	e.Prepare()
	e.limits = params.Limits
	e.progress = params.Progress
	e.tbHits.Store(0)
	e.reductions.init(&e.Config)
	for i := range e.threads {
		atomic.StoreUint64(&e.threads[i].position.Nodes, 0)
	}

	var root = params.Position
	root.Nodes = 0
	root.ClearSearchHistory()

	var rootMoves = e.genRootMoves(&root, params.Limits.SearchMoves)
	if len(rootMoves) == 0 {
		e.result = common.SearchInfo{Elapsed: time.Since(e.start)}
		return e.result
	}

	if si, ok := e.probeOnline(ctx, &root, rootMoves); ok {
		e.result = si
		if e.progress != nil {
			e.progress(si)
		}
		return si
	}

	var searchCtx, tm = newSimpleTimeManager(ctx, e.start, params.Limits)
	defer tm.Close()
	e.tm = tm

	e.transTable.IncDate()
	for i := range e.threads {
		var t = &e.threads[i]
		t.position = root
		t.rootMoves = cloneRootMoves(rootMoves)
		for h := range t.stack {
			t.stack[h].killer1 = common.MoveEmpty
			t.stack[h].killer2 = common.MoveEmpty
		}
	}
	var multiPV = common.Clamp(params.Limits.MultiPV, 1, len(rootMoves))
	e.result = e.snapshot(&e.threads[0], 0, multiPV, -valueInfinity, valueInfinity)

	lazySmp(searchCtx, e, multiPV)

	e.result.Elapsed = time.Since(e.start)
	e.result.Nodes = e.TotalNodes()
	e.result.TBHits = e.tbHits.Load()
	e.result.HashFull = e.transTable.HashFull()
	return e.result
}

func (e *Engine) genRootMoves(p *common.Position, searchMoves []common.Move) []rootMove {
	var moves = p.LegalMoves()
	var result = make([]rootMove, 0, len(moves))
	for _, m := range moves {
		if len(searchMoves) != 0 && findMoveIndex(searchMoves, m) < 0 {
			continue
		}
		result = append(result, rootMove{
			move:  m,
			info:  describeMove(p, m),
			score: -valueInfinity,
			pv:    []common.Move{m},
		})
	}
	return result
}

func cloneRootMoves(rootMoves []rootMove) []rootMove {
	var result = make([]rootMove, len(rootMoves))
	for i := range rootMoves {
		result[i] = rootMoves[i]
		result[i].pv = cloneMoves(rootMoves[i].pv)
	}
	return result
}

func (e *Engine) snapshot(t *thread, depth, multiPV, alpha, beta int) common.SearchInfo {
	var rootMoves = make([]common.RootMove, common.Min(multiPV, len(t.rootMoves)))
	for i := range rootMoves {
		var rm = &t.rootMoves[i]
		rootMoves[i] = common.RootMove{
			Move:  rm.move,
			Score: rm.score,
			PV:    cloneMoves(rm.pv),
		}
	}
	return common.SearchInfo{
		Depth:     depth,
		SelDepth:  t.position.SelDepth(),
		RootMoves: rootMoves,
		Alpha:     alpha,
		Beta:      beta,
		Elapsed:   time.Since(e.start),
		Nodes:     e.TotalNodes(),
		TBHits:    e.tbHits.Load(),
		HashFull:  e.transTable.HashFull(),
	}
}

func (e *Engine) onIterationComplete(t *thread, depth int) {
	var multiPV = common.Clamp(e.limits.MultiPV, 1, len(t.rootMoves))
	e.result = e.snapshot(t, depth, multiPV, -valueInfinity, valueInfinity)
	e.tm.OnIterationComplete(depth, t.rootMoves[0].score)
	if e.progress != nil {
		e.progress(e.result)
	}
}

// reportProgress publishes an aspiration window failure of the current
// iteration without replacing the last complete result.
func (e *Engine) reportProgress(t *thread, depth, alpha, beta int) {
	if e.progress == nil {
		return
	}
	var multiPV = common.Clamp(e.limits.MultiPV, 1, len(t.rootMoves))
	e.progress(e.snapshot(t, depth, multiPV, alpha, beta))
}

// TotalNodes sums the nodes of all threads. It may be called while a search
// runs.
func (e *Engine) TotalNodes() uint64 {
	var total uint64
	for i := range e.threads {
		total += atomic.LoadUint64(&e.threads[i].position.Nodes)
	}
	return total
}

func (e *Engine) TotalTBHits() uint64 {
	return e.tbHits.Load()
}

func (e *Engine) HashFull() int {
	if e.transTable == nil {
		return 0
	}
	return e.transTable.HashFull()
}

// Evaluate returns the static evaluation of p from the side to move.
func (e *Engine) Evaluate(p *common.Position) int {
	return evaluate(p, e.Config.Tempo)
}
