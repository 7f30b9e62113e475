//go:build !heimdall_richnnue

package engine

import (
	"github.com/heimdall-engine/heimdall/internal/board"
	"github.com/heimdall-engine/heimdall/internal/nnue"
)

// appendActiveIndices computes the active feature-transformer indices for a
// perspective directly from the bitboards, avoiding any PieceAt scans.
func appendActiveIndices(perspective int, pos *board.Position, buf []int) []int {
	perspectiveWhite := perspective == int(board.White)
	ksq := int(pos.KingSquare[perspective])
	n := 0
	for c := 0; c < 2; c++ {
		pieceWhite := c == int(board.White)
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := uint64(pos.Pieces[c][pt])
			for bb != 0 {
				sq := trailingZeros64(bb)
				bb &= bb - 1
				buf[n] = nnue.FeatureIndex(perspectiveWhite, pieceWhite, int(pt), sq, ksq)
				n++
			}
		}
	}
	return buf[:n]
}

// trailingZeros64 returns the number of trailing zero bits in x.
func trailingZeros64(x uint64) int {
	if x == 0 {
		return 64
	}
	n := 0
	if x&0xFFFFFFFF == 0 {
		n += 32
		x >>= 32
	}
	if x&0xFFFF == 0 {
		n += 16
		x >>= 16
	}
	if x&0xFF == 0 {
		n += 8
		x >>= 8
	}
	if x&0xF == 0 {
		n += 4
		x >>= 4
	}
	if x&0x3 == 0 {
		n += 2
		x >>= 2
	}
	if x&0x1 == 0 {
		n++
	}
	return n
}

// countPieces returns the total number of pieces on the board.
func countPieces(pos *board.Position) int {
	count := 0
	bb := pos.AllOccupied
	for bb != 0 {
		bb &= bb - 1
		count++
	}
	return count
}

func popCount64(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

// computeDirtyPieces records the feature changes a move causes, using
// board.Piece's own color*6+type encoding directly as DirtyPiece.Piece — no
// separate piece table is needed since the feature index formula takes
// color and kind apart anyway.
// Must be called before MakeMove, while the position still holds the
// pre-move state. Returns true if an incremental update is possible (no
// king move for either perspective).
func (w *Worker) computeDirtyPieces(m board.Move) bool {
	if !w.useNNUE || w.nnueAcc == nil {
		return false
	}

	w.dirtyState.Count = 0
	w.dirtyState.KingMoved[0] = false
	w.dirtyState.KingMoved[1] = false
	w.dirtyState.Computed = false

	pos := w.pos
	from := m.From()
	to := m.To()
	movingPiece := pos.PieceAt(from)
	if movingPiece == board.NoPiece {
		return false
	}

	us := int(movingPiece.Color())
	pt := movingPiece.Type()

	w.dirtyState.KingSq[0] = int(pos.KingSquare[board.White])
	w.dirtyState.KingSq[1] = int(pos.KingSquare[board.Black])

	if pt == board.King {
		w.dirtyState.KingMoved[us] = true
		kingTo := to
		if m.IsCastling() {
			kingTo = m.CastlingKingTo(movingPiece.Color())
		}
		w.dirtyState.KingSq[us] = int(kingTo)
		w.dirtyState.Computed = true
		return false
	}

	w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{
		Piece:  int(movingPiece),
		FromSq: int(from),
		ToSq:   int(to),
	}
	w.dirtyState.Count++

	if m.IsEnPassant() {
		var capturedSq board.Square
		if us == int(board.White) {
			capturedSq = to - 8
		} else {
			capturedSq = to + 8
		}
		capturedPiece := board.NewPiece(board.Pawn, board.Color(1-us))
		w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{
			Piece:  int(capturedPiece),
			FromSq: int(capturedSq),
			ToSq:   -1,
		}
		w.dirtyState.Count++
	} else {
		capturedPiece := pos.PieceAt(to)
		if capturedPiece != board.NoPiece {
			w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{
				Piece:  int(capturedPiece),
				FromSq: int(to),
				ToSq:   -1,
			}
			w.dirtyState.Count++
		}
	}

	if m.IsPromotion() {
		promoPiece := board.NewPiece(m.Promotion(), movingPiece.Color())
		w.dirtyState.Pieces[0] = DirtyPiece{
			Piece:  int(movingPiece),
			FromSq: int(from),
			ToSq:   -1,
		}
		w.dirtyState.Pieces[w.dirtyState.Count] = DirtyPiece{
			Piece:  int(promoPiece),
			FromSq: -1,
			ToSq:   int(to),
		}
		w.dirtyState.Count++
	}

	w.dirtyState.Computed = true
	return true
}

// computeFeatureDeltas computes removed and added feature indices for an
// incremental accumulator update, using w.activeIndicesBuffer split in half.
func (w *Worker) computeFeatureDeltas(perspective, ksq int) (removed, added []int) {
	perspectiveWhite := perspective == int(board.White)
	removedBuf := w.activeIndicesBuffer[0:32]
	addedBuf := w.activeIndicesBuffer[32:64]
	removedCount := 0
	addedCount := 0

	for i := 0; i < w.dirtyState.Count; i++ {
		dp := &w.dirtyState.Pieces[i]
		pieceWhite := dp.Piece < 6
		kind := dp.Piece % 6

		if dp.FromSq >= 0 {
			removedBuf[removedCount] = nnue.FeatureIndex(perspectiveWhite, pieceWhite, kind, dp.FromSq, ksq)
			removedCount++
		}
		if dp.ToSq >= 0 {
			addedBuf[addedCount] = nnue.FeatureIndex(perspectiveWhite, pieceWhite, kind, dp.ToSq, ksq)
			addedCount++
		}
	}

	return removedBuf[:removedCount], addedBuf[:addedCount]
}

// refreshAccumulator fully recomputes a perspective's accumulator, checking
// the Finny refresh cache first and diffing against it when a cached
// accumulator for this (king bucket, mirror) already exists.
func (w *Worker) refreshAccumulator(net *nnue.Network, acc *nnue.Accumulator, perspective int) {
	pos := w.pos
	ksq := int(pos.KingSquare[perspective])
	bucket := nnue.InputBucket(ksq)
	mirrored := nnue.Mirrored(ksq)
	perspectiveWhite := perspective == int(board.White)

	var pieces [2][6]uint64
	for c := 0; c < 2; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			pieces[c][pt] = uint64(pos.Pieces[c][pt])
		}
	}

	if cached, cachedPieces, valid := w.nnueAcc.FinnyLookup(perspective, bucket, mirrored); valid {
		acc.Values[perspective] = *cached
		for c := 0; c < 2; c++ {
			pieceWhite := c == int(board.White)
			for pt := board.Pawn; pt <= board.King; pt++ {
				added := pieces[c][pt] &^ cachedPieces[c][pt]
				removed := cachedPieces[c][pt] &^ pieces[c][pt]
				for added != 0 {
					sq := trailingZeros64(added)
					added &= added - 1
					idx := nnue.FeatureIndex(perspectiveWhite, pieceWhite, int(pt), sq, ksq)
					base := idx * nnue.HLSize
					for i := 0; i < nnue.HLSize; i++ {
						acc.Values[perspective][i] += net.FTWeights[base+i]
					}
				}
				for removed != 0 {
					sq := trailingZeros64(removed)
					removed &= removed - 1
					idx := nnue.FeatureIndex(perspectiveWhite, pieceWhite, int(pt), sq, ksq)
					base := idx * nnue.HLSize
					for i := 0; i < nnue.HLSize; i++ {
						acc.Values[perspective][i] -= net.FTWeights[base+i]
					}
				}
			}
		}
	} else {
		active := appendActiveIndices(perspective, pos, w.activeIndicesBuffer[:])
		net.Refresh(&acc.Values[perspective], active)
	}

	w.nnueAcc.FinnyStore(perspective, bucket, mirrored, acc.Values[perspective], pieces)
	acc.Computed[perspective] = true
	acc.NeedsRefresh[perspective] = false
	acc.KingSq[perspective] = ksq
}

// ensureAccumulatorComputed brings both perspectives of acc up to date,
// applying an incremental update when the dirty state allows it and a
// Finny-cached refresh otherwise.
func (w *Worker) ensureAccumulatorComputed(net *nnue.Network, acc *nnue.Accumulator) {
	prevAcc := w.nnueAcc.Previous()

	for perspective := 0; perspective < 2; perspective++ {
		if acc.Computed[perspective] {
			continue
		}

		canIncremental := prevAcc != nil &&
			prevAcc.Computed[perspective] &&
			!acc.NeedsRefresh[perspective] &&
			w.dirtyState.Computed && w.dirtyState.Count > 0 &&
			w.dirtyState.Count <= 2

		if canIncremental {
			ksq := int(w.pos.KingSquare[perspective])
			acc.Values[perspective] = prevAcc.Values[perspective]

			removed, added := w.computeFeatureDeltas(perspective, ksq)
			switch len(removed) {
			case 1:
				net.AddSub(&acc.Values[perspective], added[0], removed[0])
			case 2:
				net.AddSubSub(&acc.Values[perspective], added[0], removed[0], removed[1])
			}
			acc.Computed[perspective] = true
			acc.KingSq[perspective] = ksq
		} else {
			w.refreshAccumulator(net, acc, perspective)
		}
	}
}

// nnueEvaluate runs the single hidden-layer NNUE forward pass for the
// worker's current position, falling back to the classical evaluator when
// no network has been loaded.
func (w *Worker) nnueEvaluate() int {
	if w.nnueNet == nil || w.nnueNet.Big == nil || w.nnueAcc == nil {
		return EvaluateWithPawnTable(w.pos, w.pawnTable)
	}

	net := w.nnueNet.Big
	acc := w.nnueAcc.Current()
	w.ensureAccumulatorComputed(net, acc)

	pieceCount := countPieces(w.pos)
	sideToMove := 0
	if w.pos.SideToMove == board.Black {
		sideToMove = 1
	}

	score := net.Evaluate(&acc.Values[sideToMove], &acc.Values[1-sideToMove], pieceCount)

	optimism := w.optimism[sideToMove]
	pawnCount := popCount64(uint64(w.pos.Pieces[board.White][board.Pawn])) +
		popCount64(uint64(w.pos.Pieces[board.Black][board.Pawn]))
	material := 534*pawnCount + nonPawnMaterial(w.pos)
	score += optimism * (7191 + material) / 77871

	rule50 := int(w.pos.HalfMoveClock)
	score -= score * rule50 / 199

	return clampEval(score)
}

// nonPawnMaterial sums centipawn values for every piece except pawns and
// kings, used to scale the optimism adjustment in nnueEvaluate.
func nonPawnMaterial(pos *board.Position) int {
	pieceValues := [6]int{0, 320, 330, 500, 900, 0}
	total := 0
	for c := 0; c < 2; c++ {
		for pt := board.Knight; pt <= board.Queen; pt++ {
			total += popCount64(uint64(pos.Pieces[c][pt])) * pieceValues[pt]
		}
	}
	return total
}

// resetNNUEAccumulators clears the accumulator stack and Finny cache for a
// new search.
func (w *Worker) resetNNUEAccumulators() {
	if w.nnueAcc != nil {
		w.nnueAcc.Reset()
	}
}

// nnuePush advances the accumulator stack for a move just made. The dirty
// state must already have been computed via computeDirtyPieces. Only the
// perspectives whose king moved are marked for a full refresh; the rest
// are left for ensureAccumulatorComputed to update incrementally.
func (w *Worker) nnuePush() {
	if !w.useNNUE || w.nnueAcc == nil {
		return
	}
	w.nnueAcc.Push()
	acc := w.nnueAcc.Current()

	if !w.dirtyState.Computed {
		acc.NeedsRefresh[0] = true
		acc.NeedsRefresh[1] = true
		acc.Computed[0] = false
		acc.Computed[1] = false
		return
	}

	for p := 0; p < 2; p++ {
		acc.NeedsRefresh[p] = w.dirtyState.KingMoved[p]
		acc.Computed[p] = false
	}
}

// nnuePop restores the accumulator stack after unmaking a move.
func (w *Worker) nnuePop() {
	if w.useNNUE && w.nnueAcc != nil {
		w.nnueAcc.Pop()
	}
}
