package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Position is the engine board plus the bookkeeping the protocol and the
// search share: fifty-move counter, full moves played since setup and the
// ply-indexed key history used for repetitions and selective depth.
type Position struct {
	// Nodes is updated atomically by the owning search thread.
	Nodes     uint64
	Board     dragontoothmg.Board
	Rule50    int
	GameMoves int
	HistPly   int
	history   [HistorySize]uint64
}

func NewPositionFromFEN(fen string) (Position, error) {
	var normalized, rule50, err = normalizeFEN(fen)
	if err != nil {
		return Position{}, err
	}
	var board dragontoothmg.Board
	if err := parseBoard(normalized, &board); err != nil {
		return Position{}, err
	}
	var p = Position{
		Board:  board,
		Rule50: rule50,
	}
	p.history[0] = board.Hash()
	return p, nil
}

func parseBoard(fen string, board *dragontoothmg.Board) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, fen)
		}
	}()
	*board = dragontoothmg.ParseFen(fen)
	return nil
}

// normalizeFEN validates the fields of a FEN and fills in missing move
// counters, so that four-field EPD style positions are accepted.
func normalizeFEN(fen string) (string, int, error) {
	var fields = strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidFEN, fen)
	}
	if !validPlacement(fields[0]) {
		return "", 0, fmt.Errorf("%w: bad placement %v", ErrInvalidFEN, fields[0])
	}
	if fields[1] != "w" && fields[1] != "b" {
		return "", 0, fmt.Errorf("%w: bad side to move %v", ErrInvalidFEN, fields[1])
	}
	if fields[2] != "-" && strings.Trim(fields[2], "KQkq") != "" {
		return "", 0, fmt.Errorf("%w: bad castling %v", ErrInvalidFEN, fields[2])
	}
	if fields[2] != "-" && !castlingMatchesBoard(fields[0], fields[2]) {
		return "", 0, fmt.Errorf("%w: castling %v does not match the board", ErrInvalidFEN, fields[2])
	}
	if fields[3] != "-" {
		var epRank = "6"
		if fields[1] == "b" {
			epRank = "3"
		}
		if ParseSquare(fields[3]) == SquareNone || fields[3][1:] != epRank {
			return "", 0, fmt.Errorf("%w: bad en passant %v", ErrInvalidFEN, fields[3])
		}
	}
	var rule50, fullMove = 0, 1
	if len(fields) > 4 {
		var v, err = strconv.Atoi(fields[4])
		if err != nil || v < 0 || v > 255 {
			return "", 0, fmt.Errorf("%w: bad halfmove clock %v", ErrInvalidFEN, fields[4])
		}
		rule50 = v
	}
	if len(fields) > 5 {
		var v, err = strconv.Atoi(fields[5])
		if err != nil || v < 1 || v > 65535 {
			return "", 0, fmt.Errorf("%w: bad fullmove number %v", ErrInvalidFEN, fields[5])
		}
		fullMove = v
	}
	var normalized = strings.Join(fields[:4], " ") +
		" " + strconv.Itoa(rule50) + " " + strconv.Itoa(fullMove)
	return normalized, rule50, nil
}

// castlingMatchesBoard requires the king on its e-file home square and the
// rook on its corner for every right. placement must be valid.
func castlingMatchesBoard(placement, castling string) bool {
	var ranks = strings.Split(placement, "/")
	var pieceAt = func(rank int, file byte) byte {
		var row = ranks[8-rank]
		var f = byte('a')
		for i := 0; i < len(row); i++ {
			var ch = row[i]
			if ch >= '1' && ch <= '8' {
				f += ch - '0'
				continue
			}
			if f == file {
				return ch
			}
			f++
		}
		return 0
	}
	for _, right := range castling {
		var rank, king, rook, rookFile = 1, byte('K'), byte('R'), byte('h')
		switch right {
		case 'Q':
			rookFile = 'a'
		case 'k':
			rank, king, rook = 8, 'k', 'r'
		case 'q':
			rank, king, rook, rookFile = 8, 'k', 'r', 'a'
		}
		if pieceAt(rank, 'e') != king || pieceAt(rank, rookFile) != rook {
			return false
		}
	}
	return true
}

func validPlacement(s string) bool {
	var ranks = strings.Split(s, "/")
	if len(ranks) != 8 {
		return false
	}
	var whiteKings, blackKings int
	for _, rank := range ranks {
		var n = 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				n += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				if ch == 'K' {
					whiteKings++
				} else if ch == 'k' {
					blackKings++
				}
				n++
			default:
				return false
			}
		}
		if n != 8 {
			return false
		}
	}
	return whiteKings == 1 && blackKings == 1
}

func (p *Position) WhiteMove() bool {
	return p.Board.Wtomove
}

func (p *Position) Key() uint64 {
	return p.history[p.HistPly]
}

func (p *Position) InCheck() bool {
	return p.Board.OurKingInCheck()
}

func (p *Position) LegalMoves() []Move {
	return p.Board.GenerateLegalMoves()
}

func (p *Position) FEN() string {
	return p.Board.ToFen()
}

// MakeMove plays a legal move and returns the function that takes it back.
func (p *Position) MakeMove(m Move) (undo func()) {
	var from, to = uint64(1) << m.From(), uint64(1) << m.To()
	var us, them = p.sides()
	var resetsRule50 = us.Pawns&from != 0 || them.All&to != 0
	var prevRule50 = p.Rule50
	var unapply = p.Board.Apply(m)
	if resetsRule50 {
		p.Rule50 = 0
	} else {
		p.Rule50++
	}
	p.HistPly++
	p.history[p.HistPly] = p.Board.Hash()
	return func() {
		unapply()
		p.HistPly--
		p.Rule50 = prevRule50
	}
}

// ResetHistory makes the current position the first entry of the key history.
func (p *Position) ResetHistory() {
	var key = p.history[p.HistPly]
	p.HistPly = 0
	p.history[0] = key
}

// ClearSearchHistory wipes the keys above the current ply before a search.
func (p *Position) ClearSearchHistory() {
	var end = Clamp(p.HistPly+MaxPly+1, 0, HistorySize)
	for i := p.HistPly + 1; i < end; i++ {
		p.history[i] = 0
	}
}

// HistoryKey returns the key stored offset plies after the current position.
func (p *Position) HistoryKey(offset int) uint64 {
	var i = p.HistPly + offset
	if i < 0 || i >= HistorySize {
		return 0
	}
	return p.history[i]
}

// SelDepth is the highest ply above the current position that holds a key.
func (p *Position) SelDepth() int {
	var seldepth = MaxPly
	for ; seldepth > 0; seldepth-- {
		if p.HistoryKey(seldepth-1) != 0 {
			break
		}
	}
	return seldepth
}

func (p *Position) IsRepetition() bool {
	var key = p.history[p.HistPly]
	var limit = Clamp(p.HistPly-p.Rule50, 0, p.HistPly)
	for i := p.HistPly - 2; i >= limit; i -= 2 {
		if p.history[i] == key {
			return true
		}
	}
	return false
}

func (p *Position) IsDraw() bool {
	if p.Rule50 >= 100 {
		return true
	}
	if p.IsRepetition() {
		return true
	}
	var w, b = &p.Board.White, &p.Board.Black
	if (w.Pawns|w.Rooks|w.Queens|b.Pawns|b.Rooks|b.Queens) == 0 &&
		PopCount(w.Knights|w.Bishops|b.Knights|b.Bishops) <= 1 {
		return true
	}
	return false
}

func (p *Position) PieceCount() int {
	return PopCount(p.Board.White.All | p.Board.Black.All)
}

func (p *Position) sides() (us, them *dragontoothmg.Bitboards) {
	if p.Board.Wtomove {
		return &p.Board.White, &p.Board.Black
	}
	return &p.Board.Black, &p.Board.White
}

// PieceAt returns the piece type on sq (dragontoothmg.Nothing if empty)
// and whether it is white.
func (p *Position) PieceAt(sq int) (dragontoothmg.Piece, bool) {
	if piece := pieceTypeAt(&p.Board.White, sq); piece != dragontoothmg.Nothing {
		return piece, true
	}
	return pieceTypeAt(&p.Board.Black, sq), false
}

func pieceTypeAt(bb *dragontoothmg.Bitboards, sq int) dragontoothmg.Piece {
	var b = uint64(1) << uint(sq)
	switch {
	case bb.All&b == 0:
		return dragontoothmg.Nothing
	case bb.Pawns&b != 0:
		return dragontoothmg.Pawn
	case bb.Knights&b != 0:
		return dragontoothmg.Knight
	case bb.Bishops&b != 0:
		return dragontoothmg.Bishop
	case bb.Rooks&b != 0:
		return dragontoothmg.Rook
	case bb.Queens&b != 0:
		return dragontoothmg.Queen
	case bb.Kings&b != 0:
		return dragontoothmg.King
	}
	return dragontoothmg.Nothing
}

// String renders the board from White's side followed by the FEN.
func (p *Position) String() string {
	const pieceNames = ".pnbrqk"
	var sb strings.Builder
	for rank := Rank8; rank >= Rank1; rank-- {
		sb.WriteString(" ")
		for file := FileA; file <= FileH; file++ {
			var piece, white = p.PieceAt(MakeSquare(file, rank))
			var ch = pieceNames[piece]
			if white && piece != dragontoothmg.Nothing {
				ch -= 'a' - 'A'
			}
			sb.WriteByte(' ')
			sb.WriteByte(ch)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n Fen: ")
	sb.WriteString(p.FEN())
	return sb.String()
}
