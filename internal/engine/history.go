package engine

import "sync/atomic"

// sharedHistoryCap bounds the magnitude of a shared history score, the same
// gravity limit MoveOrderer.history uses for its per-worker table.
const sharedHistoryCap = 400000

// SharedHistory is a from/to quiet-move history table shared by every
// worker in the Lazy-SMP pool, so a beta cutoff found by one worker
// immediately improves move ordering for the others. Each cell is an
// independent atomic counter rather than a lock around the whole table:
// contention is spread across 4096 cells and an occasional stale read from
// a concurrent writer only costs move-ordering quality, not correctness.
type SharedHistory struct {
	scores [64][64]atomic.Int32
}

// NewSharedHistory creates an empty shared history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the current shared history score for a from/to pair.
func (sh *SharedHistory) Get(from, to int) int {
	return int(sh.scores[from][to].Load())
}

// Update applies a history-gravity bonus to a from/to pair, shrinking
// toward zero as scores approach the cap so recent cutoffs outweigh stale
// ones without ever overflowing.
func (sh *SharedHistory) Update(from, to, bonus int) {
	cell := &sh.scores[from][to]
	for {
		old := cell.Load()
		gravity := int32(bonus) - old*int32(abs(bonus))/sharedHistoryCap
		next := old + gravity
		if next > sharedHistoryCap {
			next = sharedHistoryCap
		} else if next < -sharedHistoryCap {
			next = -sharedHistoryCap
		}
		if cell.CompareAndSwap(old, next) {
			return
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
