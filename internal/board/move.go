package board

import "fmt"

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-15: flag (see Flag* constants)
//
// Castling is encoded "king captures own rook": From is the king's origin
// square and To is the origin square of the castling rook, not the king's
// landing square. This is the standard (D)FRC-compatible encoding and lets
// the same representation describe standard and Chess960 castling without a
// side channel.
type Move uint16

// Move flags. Sixteen flag values fit in 4 bits; two are currently unused.
const (
	FlagNormal        uint16 = 0
	FlagDoublePush    uint16 = 1
	FlagShortCastling uint16 = 2
	FlagLongCastling  uint16 = 3
	FlagPromoQueen    uint16 = 4
	FlagPromoRook     uint16 = 5
	FlagPromoBishop   uint16 = 6
	FlagPromoKnight   uint16 = 7
	FlagCapture       uint16 = 8
	FlagEnPassant     uint16 = 9
	FlagCapPromoQueen uint16 = 10
	FlagCapPromoRook  uint16 = 11
	FlagCapPromoBishop uint16 = 12
	FlagCapPromoKnight uint16 = 13
)

const flagShift = 12
const flagMask uint16 = 0xF << flagShift

// NoMove represents an invalid or null move.
const NoMove Move = 0

func packMove(from, to Square, flag uint16) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<flagShift
}

// NewMove creates a quiet, non-special move.
func NewMove(from, to Square) Move {
	return packMove(from, to, FlagNormal)
}

// NewDoublePush creates a two-square pawn push.
func NewDoublePush(from, to Square) Move {
	return packMove(from, to, FlagDoublePush)
}

// NewCapture creates a non-promoting capture.
func NewCapture(from, to Square) Move {
	return packMove(from, to, FlagCapture)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return packMove(from, to, FlagEnPassant)
}

// NewCastling creates a castling move. to is the castling rook's origin
// square (king-captures-own-rook encoding), not the king's landing square.
func NewCastling(kingFrom, rookFrom Square, kingSide bool) Move {
	if kingSide {
		return packMove(kingFrom, rookFrom, FlagShortCastling)
	}
	return packMove(kingFrom, rookFrom, FlagLongCastling)
}

var promoFlags = [4]uint16{FlagPromoQueen, FlagPromoRook, FlagPromoBishop, FlagPromoKnight}
var capPromoFlags = [4]uint16{FlagCapPromoQueen, FlagCapPromoRook, FlagCapPromoBishop, FlagCapPromoKnight}

func promoSlot(promo PieceType) int {
	switch promo {
	case Queen:
		return 0
	case Rook:
		return 1
	case Bishop:
		return 2
	case Knight:
		return 3
	default:
		return 0
	}
}

// NewPromotion creates a non-capturing promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return packMove(from, to, promoFlags[promoSlot(promo)])
}

// NewCapturePromotion creates a promoting capture move.
func NewCapturePromotion(from, to Square, promo PieceType) Move {
	return packMove(from, to, capPromoFlags[promoSlot(promo)])
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square. For castling moves this is the
// castling rook's origin square, not the king's landing square — use
// CastlingKingTo/CastlingRookTo to recover board squares.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() uint16 {
	return (uint16(m) & flagMask) >> flagShift
}

// IsPromotion returns true if this move promotes a pawn (with or without capturing).
func (m Move) IsPromotion() bool {
	f := m.Flag()
	return (f >= FlagPromoQueen && f <= FlagPromoKnight) || (f >= FlagCapPromoQueen && f <= FlagCapPromoKnight)
}

// Promotion returns the promotion piece type. Only valid if IsPromotion() is true.
func (m Move) Promotion() PieceType {
	switch m.Flag() {
	case FlagPromoQueen, FlagCapPromoQueen:
		return Queen
	case FlagPromoRook, FlagCapPromoRook:
		return Rook
	case FlagPromoBishop, FlagCapPromoBishop:
		return Bishop
	default:
		return Knight
	}
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == FlagShortCastling || f == FlagLongCastling
}

// IsShortCastling returns true if this is kingside castling.
func (m Move) IsShortCastling() bool {
	return m.Flag() == FlagShortCastling
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsDoublePush returns true if this is a two-square pawn push.
func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// IsCaptureFlag returns true if the move's flag marks it as a capture
// (including en passant and capture-promotions). This is a pure function of
// the move's bits, unlike IsCapture which also consults board state for
// castling's "captures its own rook" encoding quirk.
func (m Move) IsCaptureFlag() bool {
	f := m.Flag()
	return f == FlagCapture || f == FlagEnPassant || (f >= FlagCapPromoQueen && f <= FlagCapPromoKnight)
}

// IsCapture returns true if this move captures an enemy piece. Castling's
// king-captures-own-rook encoding is never a capture in the chess sense.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsCastling() {
		return false
	}
	return m.IsCaptureFlag()
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// CastlingKingTo returns the king's landing square for a castling move,
// given the castling side. Standard chess lands the king on g1/g8 (short)
// or c1/c8 (long); Chess960 uses the same landing files.
func (m Move) CastlingKingTo(us Color) Square {
	rank := 0
	if us == Black {
		rank = 7
	}
	if m.IsShortCastling() {
		return NewSquare(6, rank) // g-file
	}
	return NewSquare(2, rank) // c-file
}

// CastlingRookTo returns the rook's landing square for a castling move.
func (m Move) CastlingRookTo(us Color) Square {
	rank := 0
	if us == Black {
		rank = 7
	}
	if m.IsShortCastling() {
		return NewSquare(5, rank) // f-file
	}
	return NewSquare(3, rank) // d-file
}

// EffectiveTo returns the square the moving piece actually lands on: the
// king's landing square for castling moves (whose To() names the rook's
// origin square instead), or To() for everything else. The mover's color is
// inferred from From()'s rank, so callers that only have the move itself
// (history tables, move-ordering heuristics) don't need to thread a Color
// through.
func (m Move) EffectiveTo() Square {
	if !m.IsCastling() {
		return m.To()
	}
	us := White
	if m.From().Rank() != 0 {
		us = Black
	}
	return m.CastlingKingTo(us)
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q"). For
// castling, the UCI destination square is the king's landing square per the
// standard (non-Chess960) UCI convention; UCIString(true) gives the Chess960
// king-takes-rook form.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	from := m.From()
	to := m.To()
	if m.IsCastling() {
		us := White
		if from.Rank() == 7 {
			us = Black
		}
		to = m.CastlingKingTo(us)
	}

	s := from.String() + to.String()

	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}

	return s
}

// UCIString returns the UCI-format move the same way String does, except in
// Chess960 mode castling is reported as king-takes-own-rook (the raw To(),
// which already names the rook's origin square) instead of being redirected
// to the king's standard landing square.
func (m Move) UCIString(chess960 bool) string {
	if m == NoMove {
		return "0000"
	}

	if !chess960 || !m.IsCastling() {
		return m.String()
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}
	return s
}

// ParseMove parses a UCI format move string against a position, inferring
// special-move flags (double push, en passant, castling, capture) from
// board state.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	captures := !pos.IsEmpty(to)

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if captures {
			return NewCapturePromotion(from, to, promo), nil
		}
		return NewPromotion(from, to, promo), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		kingSide := to > from
		rookFrom := pos.CastlingAvailability[piece.Color()].kingRookOrNull(kingSide)
		return NewCastling(from, rookFrom, kingSide), nil
	}

	if pt == Pawn && to == pos.EnPassant && pos.EnPassant != NoSquare {
		return NewEnPassant(from, to), nil
	}

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		return NewDoublePush(from, to), nil
	}

	if captures {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece        Piece
	CastlingAvailability [2]CastlingAvailability
	EnPassant            Square
	HalfMoveClock        int
	Hash                 uint64
	PawnKey              uint64
	MajorKey             uint64
	MinorKey             uint64
	NonPawnKey           [2]uint64
	Checkers             Bitboard
	OrthogonalPins       Bitboard
	DiagonalPins         Bitboard
	Threats              Bitboard
	FromNull             bool
	KingSquare           [2]Square
	Pieces               [2][6]Bitboard
	Occupied             [2]Bitboard
	AllOccupied          Bitboard
	Valid                bool
}
