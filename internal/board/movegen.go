package board

// GenerateLegalMoves generates all legal moves for the position using the
// pin-and-check-aware generator (§4.2): no pseudolegal-then-filter pass is
// needed for the bulk of moves, only en passant gets an explicit
// discovered-check simulation.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateLegal(ml, false)
	return ml
}

// GeneratePseudoLegalMoves exists for callers (perft cross-checks, tests)
// that want a pseudolegal set without the check-evasion mask. Pawn moves
// still come from the pin-aware pawn generator, so the set is not fully
// unfiltered. Heimdall's own search never calls this, since
// GenerateLegalMoves is already legal.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generatePseudoLegalAll(ml)
	return ml
}

// GenerateCaptures generates all legal captures (including en passant and
// capturing promotions), for quiescence search. Promotions onto an empty
// square are not generated.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.generateLegal(ml, true)
	return ml
}

// generateLegal is the pin-and-check-aware legal move generator.
// capturesOnly restricts the destination mask to enemy-occupied squares
// (en passant is still generated), matching the quiescence move set.
func (p *Position) generateLegal(ml *MoveList, capturesOnly bool) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	friendly := p.Occupied[us]
	enemies := p.Occupied[them]

	// 1. King moves first: filtered by not-attacked-on-occupancy-minus-king.
	occWithoutKing := p.AllOccupied &^ SquareBB(ksq)
	kingTargets := KingAttacks(ksq) &^ friendly
	if capturesOnly {
		kingTargets &= enemies
	}
	for kingTargets != 0 {
		to := kingTargets.PopLSB()
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(NewMove(ksq, to))
		}
	}

	numCheckers := p.Checkers.PopCount()
	if numCheckers > 1 {
		// Double check: only king moves are legal.
		return
	}

	// 2. Destination mask.
	destMask := ^friendly
	if numCheckers == 1 {
		checkerSq := p.Checkers.LSB()
		destMask = Between(checkerSq, ksq) | p.Checkers
	}
	if capturesOnly {
		destMask &= enemies
	}

	p.generatePawnMovesLegal(ml, us, enemies, destMask, ksq, capturesOnly)
	p.generateKnightMovesLegal(ml, us, destMask, ksq)
	p.generateSliderMovesLegal(ml, us, Bishop, destMask, ksq)
	p.generateSliderMovesLegal(ml, us, Rook, destMask, ksq)
	p.generateSliderMovesLegal(ml, us, Queen, destMask, ksq)

	if numCheckers == 0 && !capturesOnly {
		p.generateCastlingMoves(ml, us)
	}
}

// pinnedVertically reports whether sq (assumed to lie in OrthogonalPins or
// DiagonalPins) is pinned vertically (file-aligned with the king) as
// opposed to horizontally, used to apply the spec's distinct pawn-pin rules.
func pinnedVertically(ksq, sq Square) bool {
	return ksq.File() == sq.File()
}

func (p *Position) isPinned(sq Square) bool {
	bb := SquareBB(sq)
	return (p.OrthogonalPins|p.DiagonalPins)&bb != 0
}

func (p *Position) isOrthogonallyPinned(sq Square) bool {
	return p.OrthogonalPins&SquareBB(sq) != 0
}

func (p *Position) isDiagonallyPinned(sq Square) bool {
	return p.DiagonalPins&SquareBB(sq) != 0
}

// generatePawnMovesLegal generates legal pawn moves respecting the
// destination mask and the diagonal/horizontal/vertical pin rules of §4.2.
func (p *Position) generatePawnMovesLegal(ml *MoveList, us Color, enemies, destMask Bitboard, ksq Square, capturesOnly bool) {
	pawns := p.Pieces[us][Pawn]
	occupied := p.AllOccupied
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	pushPinOK := func(from, to Square) bool {
		if p.isOrthogonallyPinned(from) {
			if !pinnedVertically(ksq, from) {
				return false // horizontally pinned: cannot push
			}
			if !Line(ksq, from).IsSet(to) {
				return false // vertical pin but push leaves the file (shouldn't happen for pushes)
			}
		} else if p.isDiagonallyPinned(from) {
			return false // diagonally pinned pawns can never push
		}
		return true
	}
	addPush := func(from, to Square) bool {
		return pushPinOK(from, to) && destMask.IsSet(to)
	}

	addCapture := func(from, to Square) bool {
		if p.isOrthogonallyPinned(from) {
			return false // horizontally or vertically pinned pawns cannot capture
		}
		if p.isDiagonallyPinned(from) && !Line(ksq, from).IsSet(to) {
			return false // diagonally pinned: only captures along that same diagonal
		}
		return destMask.IsSet(to)
	}

	if !capturesOnly {
		nonPromo := push1 & ^promotionRank
		for nonPromo != 0 {
			to := nonPromo.PopLSB()
			from := Square(int(to) - pushDir)
			if addPush(from, to) {
				ml.Add(NewMove(from, to))
			}
		}
		for push2 != 0 {
			to := push2.PopLSB()
			from := Square(int(to) - 2*pushDir)
			if pushPinOK(from, to) && destMask.IsSet(to) {
				ml.Add(NewDoublePush(from, to))
			}
		}
	}

	nonPromoL := attackL & ^promotionRank
	for nonPromoL != 0 {
		to := nonPromoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addCapture(from, to) {
			ml.Add(NewCapture(from, to))
		}
	}
	nonPromoR := attackR & ^promotionRank
	for nonPromoR != 0 {
		to := nonPromoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addCapture(from, to) {
			ml.Add(NewCapture(from, to))
		}
	}

	promoPush := push1 & promotionRank
	for promoPush != 0 {
		to := promoPush.PopLSB()
		from := Square(int(to) - pushDir)
		if addPush(from, to) {
			addPromotions(ml, from, to)
		}
	}
	promoL := attackL & promotionRank
	for promoL != 0 {
		to := promoL.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if addCapture(from, to) {
			addCapturePromotions(ml, from, to)
		}
	}
	promoR := attackR & promotionRank
	for promoR != 0 {
		to := promoR.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if addCapture(from, to) {
			addCapturePromotions(ml, from, to)
		}
	}

	if p.EnPassant != NoSquare {
		p.generateEnPassant(ml, us, pawns, ksq, destMask)
	}
}

// generateEnPassant emits en passant captures, verifying each with the
// spec's required discovered-check simulation: remove both the capturing
// and captured pawn from the occupancy and re-test for a slider check.
func (p *Position) generateEnPassant(ml *MoveList, us Color, pawns Bitboard, ksq Square, destMask Bitboard) {
	them := us.Other()
	epBB := SquareBB(p.EnPassant)
	var epAttackers Bitboard
	var capturedSq Square
	if us == White {
		epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		capturedSq = p.EnPassant - 8
	} else {
		epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		capturedSq = p.EnPassant + 8
	}

	// The captured pawn itself counts as blocking a check, so en passant
	// must also be allowed when the destination mask only permits capturing
	// the checker via its square being captured.
	if !destMask.IsSet(p.EnPassant) && !destMask.IsSet(capturedSq) {
		return
	}

	for epAttackers != 0 {
		from := epAttackers.PopLSB()

		if p.isDiagonallyPinned(from) && !Line(ksq, from).IsSet(p.EnPassant) {
			continue
		}
		if p.isOrthogonallyPinned(from) {
			continue
		}

		simOcc := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(capturedSq)) | SquareBB(p.EnPassant)
		rookAttackers := RookAttacks(ksq, simOcc) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		bishopAttackers := BishopAttacks(ksq, simOcc) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
		if rookAttackers|bishopAttackers != 0 {
			continue
		}

		ml.Add(NewEnPassant(from, p.EnPassant))
	}
}

// generateKnightMovesLegal skips pinned knights entirely (§4.2: a pinned
// knight can never move without exposing the king).
func (p *Position) generateKnightMovesLegal(ml *MoveList, us Color, destMask Bitboard, ksq Square) {
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		if p.isPinned(from) {
			continue
		}
		attacks := KnightAttacks(from) & destMask
		for attacks != 0 {
			to := attacks.PopLSB()
			p.addQuietOrCapture(ml, from, to)
		}
	}
}

// generateSliderMovesLegal splits sliders into pinned-along-ray (movement
// restricted to the pin line) and unpinned (free within destMask).
func (p *Position) generateSliderMovesLegal(ml *MoveList, us Color, pt PieceType, destMask Bitboard, ksq Square) {
	occupied := p.AllOccupied
	pieces := p.Pieces[us][pt]

	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks Bitboard
		switch pt {
		case Bishop:
			attacks = BishopAttacks(from, occupied)
		case Rook:
			attacks = RookAttacks(from, occupied)
		case Queen:
			attacks = QueenAttacks(from, occupied)
		}
		attacks &= destMask

		if p.isPinned(from) {
			attacks &= Line(ksq, from)
		}

		for attacks != 0 {
			to := attacks.PopLSB()
			p.addQuietOrCapture(ml, from, to)
		}
	}
}

func (p *Position) addQuietOrCapture(ml *MoveList, from, to Square) {
	if !p.IsEmpty(to) {
		ml.Add(NewCapture(from, to))
	} else {
		ml.Add(NewMove(from, to))
	}
}

// addPromotions adds all four non-capturing promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// addCapturePromotions adds all four capturing promotion moves.
func addCapturePromotions(ml *MoveList, from, to Square) {
	ml.Add(NewCapturePromotion(from, to, Queen))
	ml.Add(NewCapturePromotion(from, to, Rook))
	ml.Add(NewCapturePromotion(from, to, Bishop))
	ml.Add(NewCapturePromotion(from, to, Knight))
}

// generateCastlingMoves emits castling moves in the FRC "king captures own
// rook" encoding (§4.2 rule 6): availability must be set, all squares
// between the king's start/target and the rook's start/target must be
// empty (ignoring the castling king and rook themselves), and no square on
// the king's path (including its start square) may be attacked.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	ca := p.CastlingAvailability[us]
	ksq := p.KingSquare[us]

	tryCastle := func(rookFrom Square, kingSide bool) {
		if rookFrom == NoSquare {
			return
		}
		rank := 0
		if us == Black {
			rank = 7
		}
		var kingToSq, rookToSq Square
		if kingSide {
			kingToSq = NewSquare(6, rank) // g-file
			rookToSq = NewSquare(5, rank) // f-file
		} else {
			kingToSq = NewSquare(2, rank) // c-file
			rookToSq = NewSquare(3, rank) // d-file
		}

		occupiedIgnoringCastlers := p.AllOccupied &^ SquareBB(ksq) &^ SquareBB(rookFrom)

		kingPath := Between(ksq, kingToSq) | SquareBB(kingToSq)
		rookPath := Between(rookFrom, rookToSq) | SquareBB(rookToSq)
		required := kingPath | rookPath
		if required&occupiedIgnoringCastlers != 0 {
			return
		}

		// No square on the king's path (including start) may be attacked.
		walk := Between(ksq, kingToSq) | SquareBB(kingToSq) | SquareBB(ksq)
		for sq := walk; sq != 0; {
			s := sq.PopLSB()
			if p.IsSquareAttacked(s, them) {
				return
			}
		}

		ml.Add(NewCastling(ksq, rookFrom, kingSide))
	}

	tryCastle(ca.KingRook, true)
	tryCastle(ca.QueenRook, false)
}

// generatePseudoLegalAll generates moves without the check-evasion
// destination mask (it does not restrict to blocking/capturing a checker),
// reusing the pin-aware pawn helper rather than a second hand-built one.
// Kept for perft cross-validation against the legal generator.
func (p *Position) generatePseudoLegalAll(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	p.generatePawnMovesLegal(ml, us, enemies, ^p.Occupied[us], p.KingSquare[us], false)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			p.addQuietOrCapture(ml, from, to)
		}
	}
	for _, pt := range [3]PieceType{Bishop, Rook, Queen} {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Bishop:
				attacks = BishopAttacks(from, occupied)
			case Rook:
				attacks = RookAttacks(from, occupied)
			case Queen:
				attacks = QueenAttacks(from, occupied)
			}
			attacks &= ^p.Occupied[us]
			for attacks != 0 {
				to := attacks.PopLSB()
				p.addQuietOrCapture(ml, from, to)
			}
		}
	}

	from := p.KingSquare[us]
	attacks := KingAttacks(from) & ^p.Occupied[us]
	for attacks != 0 {
		to := attacks.PopLSB()
		p.addQuietOrCapture(ml, from, to)
	}
	p.generateCastlingMoves(ml, us)
}

// IsLegal returns true if the move is a member of GenerateLegalMoves.
func (p *Position) IsLegal(m Move) bool {
	ml := p.GenerateLegalMoves()
	return ml.Contains(m)
}

// MakeMove applies a move to the position and returns undo information.
// All six Zobrist keys, the mailbox/bitboard occupancies, castling
// availability, checkers, pin masks and threats are updated incrementally.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:        NoPiece,
		CastlingAvailability: p.CastlingAvailability,
		EnPassant:            p.EnPassant,
		HalfMoveClock:        p.HalfMoveClock,
		Hash:                 p.Hash,
		PawnKey:              p.PawnKey,
		MajorKey:             p.MajorKey,
		MinorKey:             p.MinorKey,
		NonPawnKey:           p.NonPawnKey,
		Checkers:             p.Checkers,
		OrthogonalPins:       p.OrthogonalPins,
		DiagonalPins:         p.DiagonalPins,
		Threats:              p.Threats,
		FromNull:             p.FromNull,
		Valid:                false,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}
	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare
	p.FromNull = false

	// Castling moves encode `to` as the rook's origin square; resolve the
	// real king/rook landing squares before touching any bitboards.
	if m.IsCastling() {
		rookFrom := to
		kingTo := m.CastlingKingTo(us)
		rookTo := m.CastlingRookTo(us)

		p.removePiece(from)
		p.xorPieceKeys(piece, from)
		p.removePiece(rookFrom)
		rookPiece := NewPiece(Rook, us)
		p.xorPieceKeys(rookPiece, rookFrom)

		p.setPiece(piece, kingTo)
		p.xorPieceKeys(piece, kingTo)
		p.setPiece(rookPiece, rookTo)
		p.xorPieceKeys(rookPiece, rookTo)

		p.revokeCastling(us, true)
		p.revokeCastling(us, false)
		p.Hash ^= zobristCastling[p.CastlingRights]

		p.finishMakeMove(us, them, pt, undo)
		return undo
	}

	// Captures (including en passant) remove the victim first.
	if m.IsEnPassant() {
		var capturedSq Square
		if us == White {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.xorPieceKeys(undo.CapturedPiece, capturedSq)
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.xorPieceKeys(captured, to)
		if captured.Type() == Rook {
			p.revokeCastlingIfRookSquare(them, to)
		}
	}

	p.movePiece(from, to)
	p.xorPieceKeys(piece, from)

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.xorPieceKeys(promoPt.toPiece(us), to)
	} else {
		p.xorPieceKeys(piece, to)
	}

	if pt == King {
		p.revokeCastling(us, true)
		p.revokeCastling(us, false)
	} else if pt == Rook {
		p.revokeCastlingIfRookSquare(us, from)
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.IsDoublePush() {
		epSquare := Square((int(from) + int(to)) / 2)
		if p.enPassantWouldBeLegal(them, epSquare, to) {
			p.EnPassant = epSquare
			p.Hash ^= zobristEnPassant[epSquare.File()]
		}
	}

	p.finishMakeMove(us, them, pt, undo)
	return undo
}

func (pt PieceType) toPiece(c Color) Piece {
	return NewPiece(pt, c)
}

func (p *Position) finishMakeMove(us, them Color, pt PieceType, undo UndoInfo) {
	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = them
	p.UpdateCheckers()
	p.updatePinsAndThreats()
}

// enPassantWouldBeLegal checks, per §4.2's makeMove contract, whether a
// pawn capable of capturing en passant actually exists and would not expose
// its own king — stabilizing the Zobrist key so that positions reachable
// only via a double push whose en passant can never legally be played
// still hash identically to one reached without the ep-square set.
func (p *Position) enPassantWouldBeLegal(capturingSide Color, epSquare, pushedTo Square) bool {
	var attackers Bitboard
	epBB := SquareBB(epSquare)
	if capturingSide == White {
		attackers = (epBB.SouthWest() | epBB.SouthEast()) & p.Pieces[White][Pawn]
	} else {
		attackers = (epBB.NorthWest() | epBB.NorthEast()) & p.Pieces[Black][Pawn]
	}
	if attackers == 0 {
		return false
	}

	ksq := p.KingSquare[capturingSide]
	them := capturingSide.Other()
	for attackers != 0 {
		from := attackers.PopLSB()
		simOcc := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(pushedTo)) | epBB
		rookAttackers := RookAttacks(ksq, simOcc) & (p.Pieces[them][Rook] | p.Pieces[them][Queen])
		bishopAttackers := BishopAttacks(ksq, simOcc) & (p.Pieces[them][Bishop] | p.Pieces[them][Queen])
		if rookAttackers|bishopAttackers == 0 {
			return true
		}
	}
	return false
}

// revokeCastling clears one side's castling availability (both the rook
// origin in CastlingAvailability and the matching CastlingRights bit).
func (p *Position) revokeCastling(c Color, kingSide bool) {
	if kingSide {
		p.CastlingAvailability[c].KingRook = NoSquare
		if c == White {
			p.CastlingRights &^= WhiteKingSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle
		}
	} else {
		p.CastlingAvailability[c].QueenRook = NoSquare
		if c == White {
			p.CastlingRights &^= WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackQueenSideCastle
		}
	}
}

// revokeCastlingIfRookSquare revokes c's castling availability on whichever
// side sq corresponds to, if sq is presently one of c's castling rooks.
func (p *Position) revokeCastlingIfRookSquare(c Color, sq Square) {
	ca := p.CastlingAvailability[c]
	if ca.KingRook == sq {
		p.revokeCastling(c, true)
	}
	if ca.QueenRook == sq {
		p.revokeCastling(c, false)
	}
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingAvailability = undo.CastlingAvailability
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.MajorKey = undo.MajorKey
	p.MinorKey = undo.MinorKey
	p.NonPawnKey = undo.NonPawnKey
	p.Checkers = undo.Checkers
	p.OrthogonalPins = undo.OrthogonalPins
	p.DiagonalPins = undo.DiagonalPins
	p.Threats = undo.Threats
	p.FromNull = undo.FromNull
	p.SideToMove = us
	p.recomputeCastlingRightsFromAvailability()

	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsCastling() {
		rookFrom := to
		kingTo := m.CastlingKingTo(us)
		rookTo := m.CastlingRookTo(us)

		p.removePiece(kingTo)
		p.removePiece(rookTo)
		p.setPiece(NewPiece(King, us), from)
		p.setPiece(NewPiece(Rook, us), rookFrom)
		return
	}

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][promoPt] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			var capturedSq Square
			if us == White {
				capturedSq = to - 8
			} else {
				capturedSq = to + 8
			}
			p.setPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.setPiece(undo.CapturedPiece, to)
		}
	}
}

// recomputeCastlingRightsFromAvailability keeps the derived K/Q/k/q cache
// in sync with CastlingAvailability after an unmake restores the latter.
func (p *Position) recomputeCastlingRightsFromAvailability() {
	cr := NoCastling
	if p.CastlingAvailability[White].KingRook != NoSquare {
		cr |= WhiteKingSideCastle
	}
	if p.CastlingAvailability[White].QueenRook != NoSquare {
		cr |= WhiteQueenSideCastle
	}
	if p.CastlingAvailability[Black].KingRook != NoSquare {
		cr |= BlackKingSideCastle
	}
	if p.CastlingAvailability[Black].QueenRook != NoSquare {
		cr |= BlackQueenSideCastle
	}
	p.CastlingRights = cr
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw (stalemate, 50-move, insufficient material).
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}

	return false
}
