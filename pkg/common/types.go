package common

import (
	"errors"
	"time"

	"github.com/dylhunn/dragontoothmg"
)

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const (
	MaxPly   = 128
	MaxMoves = 256
	// HistorySize bounds the key history: the game part is kept below
	// HistorySize-MaxPly so a search can always append MaxPly keys.
	HistorySize = 1024
)

const (
	ValueDraw     = 0
	ValueMate     = 30000
	ValueInfinity = ValueMate + 1
	MateInMax     = ValueMate - MaxPly
	ValueTBWin    = MateInMax - 1
)

var (
	ErrInvalidFEN  = errors.New("invalid fen")
	ErrIllegalMove = errors.New("illegal move")
)

type Move = dragontoothmg.Move

const MoveEmpty Move = 0

// SearchLimits is rebuilt for every go command. MultiPV is owned by the
// MultiPV option and survives Reset.
type SearchLimits struct {
	Start       time.Time
	Time        int
	Inc         int
	MovesToGo   int
	MoveTime    int
	Depth       int
	Mate        int
	Infinite    bool
	TimeLimit   bool
	SearchMoves []Move
	MultiPV     int
}

func (l *SearchLimits) Reset() {
	*l = SearchLimits{MultiPV: l.MultiPV}
}

type SearchParams struct {
	Position Position
	Limits   SearchLimits
	Progress func(si SearchInfo)
}

type RootMove struct {
	Move  Move
	Score int
	PV    []Move
}

type SearchInfo struct {
	Depth     int
	SelDepth  int
	RootMoves []RootMove
	Alpha     int
	Beta      int
	Elapsed   time.Duration
	Nodes     uint64
	TBHits    uint64
	HashFull  int
}

func (si *SearchInfo) BestMove() Move {
	if len(si.RootMoves) == 0 {
		return MoveEmpty
	}
	return si.RootMoves[0].Move
}
