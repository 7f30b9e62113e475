package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		pos.EnPassant = sq
	}

	// Parse half-move clock (field 4, optional)
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		pos.HalfMoveClock = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	// Update derived state
	pos.updateOccupied()
	pos.findKings()
	pos.recomputeAllKeys()
	pos.UpdateCheckers()
	pos.updatePinsAndThreats()

	return pos, nil
}

// recomputeAllKeys rebuilds every Zobrist key from scratch. Used by FEN
// parsing and by tests verifying the incremental make/unmake machinery
// against a from-scratch recomputation (§8 Testable Properties).
func (p *Position) recomputeAllKeys() {
	p.Hash, p.PawnKey, p.MajorKey, p.MinorKey = 0, 0, 0, 0
	p.NonPawnKey[White], p.NonPawnKey[Black] = 0, 0

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				p.xorPieceKeys(NewPiece(pt, c), sq)
			}
		}
	}

	if p.SideToMove == Black {
		p.Hash ^= zobristSideToMove
	}
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
			} else {
				// Place a piece
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				sq := NewSquare(file, rank)
				pos.setPiece(piece, sq)
				file++
			}
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
// Accepts both standard "KQkq" notation and Chess960/FRC notation, where a
// letter A-H (or a-h) names the file of the castling rook directly. Under
// "KQkq" on a non-standard starting setup, the outermost rook on the
// relevant side of the king is taken, matching the common Shredder-FEN
// convention.
func parseCastlingRights(pos *Position, castling string) error {
	pos.CastlingAvailability[White] = CastlingAvailability{KingRook: NoSquare, QueenRook: NoSquare}
	pos.CastlingAvailability[Black] = CastlingAvailability{KingRook: NoSquare, QueenRook: NoSquare}

	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}

	for _, c := range castling {
		switch {
		case c == 'K':
			if rook, ok := pos.findOutermostRook(White, true); ok {
				pos.CastlingAvailability[White].KingRook = rook
				pos.CastlingRights |= WhiteKingSideCastle
			}
		case c == 'Q':
			if rook, ok := pos.findOutermostRook(White, false); ok {
				pos.CastlingAvailability[White].QueenRook = rook
				pos.CastlingRights |= WhiteQueenSideCastle
			}
		case c == 'k':
			if rook, ok := pos.findOutermostRook(Black, true); ok {
				pos.CastlingAvailability[Black].KingRook = rook
				pos.CastlingRights |= BlackKingSideCastle
			}
		case c == 'q':
			if rook, ok := pos.findOutermostRook(Black, false); ok {
				pos.CastlingAvailability[Black].QueenRook = rook
				pos.CastlingRights |= BlackQueenSideCastle
			}
		case c >= 'A' && c <= 'H':
			sq := NewSquare(int(c-'A'), 0)
			pos.setFRCRook(White, sq)
		case c >= 'a' && c <= 'h':
			sq := NewSquare(int(c-'a'), 7)
			pos.setFRCRook(Black, sq)
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// findOutermostRook finds the rook furthest from the king on the requested
// side, for the "KQkq" shorthand.
func (p *Position) findOutermostRook(c Color, kingSide bool) (Square, bool) {
	ksq := p.Pieces[c][King].LSB()
	if ksq == NoSquare {
		return NoSquare, false
	}
	rooks := p.Pieces[c][Rook]
	best := NoSquare
	for rooks != 0 {
		sq := rooks.PopLSB()
		if kingSide == (sq.File() > ksq.File()) {
			if best == NoSquare ||
				(kingSide && sq.File() > best.File()) ||
				(!kingSide && sq.File() < best.File()) {
				best = sq
			}
		}
	}
	if best == NoSquare {
		return NoSquare, false
	}
	return best, true
}

// setFRCRook records an explicit rook-file castling availability (Chess960
// FEN notation) on the correct side relative to that color's king.
func (p *Position) setFRCRook(c Color, rookSq Square) {
	ksq := p.Pieces[c][King].LSB()
	if ksq == NoSquare {
		return
	}
	if rookSq.File() > ksq.File() {
		p.CastlingAvailability[c].KingRook = rookSq
		if c == White {
			p.CastlingRights |= WhiteKingSideCastle
		} else {
			p.CastlingRights |= BlackKingSideCastle
		}
	} else {
		p.CastlingAvailability[c].QueenRook = rookSq
		if c == White {
			p.CastlingRights |= WhiteQueenSideCastle
		} else {
			p.CastlingRights |= BlackQueenSideCastle
		}
	}
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// ComputeHash recomputes the full Zobrist key from scratch, for tests that
// verify the incrementally-maintained Hash against a from-scratch rebuild.
func (p *Position) ComputeHash() uint64 {
	save := *p
	p.recomputeAllKeys()
	hash := p.Hash
	*p = save
	return hash
}

// ComputePawnKey recomputes the pawn-only Zobrist key from scratch.
func (p *Position) ComputePawnKey() uint64 {
	save := *p
	p.recomputeAllKeys()
	key := p.PawnKey
	*p = save
	return key
}
