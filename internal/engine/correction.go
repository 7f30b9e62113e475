package engine

import (
	"github.com/heimdall-engine/heimdall/internal/board"
)

// corrHistSize is the table size for each correction table; keys are
// truncated to this many low bits, same tradeoff as the teacher's single
// combined 65536-entry table.
const corrHistSize = 1 << 14
const corrHistMask = corrHistSize - 1

// CorrectionHistory adjusts static evaluation based on search results, split
// across five specialized tables the way Stockfish's correction history
// does: pawn structure, major-piece placement, minor-piece placement,
// non-pawn material per side, and the move pair that led to the position.
// Each table uses the same gravity update as the teacher's single-table
// version; they're summed and averaged rather than weighted by Stockfish's
// tuned fixed-point constants, which aren't available anywhere in the
// retrieved pack to port faithfully.
type CorrectionHistory struct {
	pawn         [corrHistSize]int16
	major        [corrHistSize]int16
	minor        [corrHistSize]int16
	nonPawn      [2][corrHistSize]int16
	continuation [corrHistSize]int16
}

// NewCorrectionHistory creates a new correction history table set.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

func continuationCorrKey(prevMove board.Move) uint64 {
	return uint64(prevMove.From())<<6 | uint64(prevMove.EffectiveTo())
}

// Get returns the correction to add to the static evaluation, blending all
// five tables. prevMove may be board.NoMove (e.g. at the root), in which
// case the continuation table contributes nothing.
func (ch *CorrectionHistory) Get(pos *board.Position, prevMove board.Move) int {
	pawnC := int(ch.pawn[pos.PawnKey&corrHistMask])
	majorC := int(ch.major[pos.MajorKey&corrHistMask])
	minorC := int(ch.minor[pos.MinorKey&corrHistMask])
	nonPawnC := int(ch.nonPawn[board.White][pos.NonPawnKey[board.White]&corrHistMask]) +
		int(ch.nonPawn[board.Black][pos.NonPawnKey[board.Black]&corrHistMask])

	contC := 0
	if prevMove != board.NoMove {
		contC = int(ch.continuation[continuationCorrKey(prevMove)&corrHistMask])
	}

	return (pawnC + majorC + minorC + nonPawnC/2 + contC) / 4
}

// Update records a correction based on the difference between the static
// evaluation and the search result, applying the same gravity update to
// each of the five tables. prevMove may be board.NoMove, in which case the
// continuation table is left untouched.
func (ch *CorrectionHistory) Update(pos *board.Position, prevMove board.Move, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}

	diff := searchScore - staticEval
	bonus := diff * depth / 8
	if bonus > 256 {
		bonus = 256
	} else if bonus < -256 {
		bonus = -256
	}

	gravityUpdate(&ch.pawn, pos.PawnKey&corrHistMask, bonus)
	gravityUpdate(&ch.major, pos.MajorKey&corrHistMask, bonus)
	gravityUpdate(&ch.minor, pos.MinorKey&corrHistMask, bonus)
	gravityUpdate(&ch.nonPawn[board.White], pos.NonPawnKey[board.White]&corrHistMask, bonus)
	gravityUpdate(&ch.nonPawn[board.Black], pos.NonPawnKey[board.Black]&corrHistMask, bonus)

	if prevMove != board.NoMove {
		gravityUpdate(&ch.continuation, continuationCorrKey(prevMove)&corrHistMask, bonus)
	}
}

// gravityUpdate nudges table[key&mask] toward bonus by 1/16th, the same
// step the teacher's single-table version used.
func gravityUpdate(table *[corrHistSize]int16, key uint64, bonus int) {
	idx := key & corrHistMask
	old := int(table[idx])
	newVal := old + (bonus-old)/16

	if newVal > 16000 {
		newVal = 16000
	} else if newVal < -16000 {
		newVal = -16000
	}
	table[idx] = int16(newVal)
}

// Clear resets all correction tables.
func (ch *CorrectionHistory) Clear() {
	*ch = CorrectionHistory{}
}

// Age scales down all correction values (called between games/positions).
func (ch *CorrectionHistory) Age() {
	for i := range ch.pawn {
		ch.pawn[i] /= 2
		ch.major[i] /= 2
		ch.minor[i] /= 2
		ch.nonPawn[board.White][i] /= 2
		ch.nonPawn[board.Black][i] /= 2
		ch.continuation[i] /= 2
	}
}

// Snapshot exports every non-zero entry from all five tables, keyed the way
// internal/persist.CorrectionSnapshot expects for serialization.
func (ch *CorrectionHistory) Snapshot() (pawn, major, minor map[uint32]int16, nonPawn [2]map[uint32]int16, continuation map[uint64]int16) {
	pawn = sparsify(&ch.pawn)
	major = sparsify(&ch.major)
	minor = sparsify(&ch.minor)
	nonPawn[board.White] = sparsify(&ch.nonPawn[board.White])
	nonPawn[board.Black] = sparsify(&ch.nonPawn[board.Black])

	continuation = make(map[uint64]int16)
	for i, v := range ch.continuation {
		if v != 0 {
			continuation[uint64(i)] = v
		}
	}
	return
}

// Restore loads a previously exported snapshot back into the live tables.
func (ch *CorrectionHistory) Restore(pawn, major, minor map[uint32]int16, nonPawn [2]map[uint32]int16, continuation map[uint64]int16) {
	ch.Clear()
	unsparsify(&ch.pawn, pawn)
	unsparsify(&ch.major, major)
	unsparsify(&ch.minor, minor)
	unsparsify(&ch.nonPawn[board.White], nonPawn[board.White])
	unsparsify(&ch.nonPawn[board.Black], nonPawn[board.Black])
	for k, v := range continuation {
		if k < corrHistSize {
			ch.continuation[k] = v
		}
	}
}

func sparsify(table *[corrHistSize]int16) map[uint32]int16 {
	out := make(map[uint32]int16)
	for i, v := range table {
		if v != 0 {
			out[uint32(i)] = v
		}
	}
	return out
}

func unsparsify(table *[corrHistSize]int16, values map[uint32]int16) {
	for k, v := range values {
		if int(k) < corrHistSize {
			table[k] = v
		}
	}
}
