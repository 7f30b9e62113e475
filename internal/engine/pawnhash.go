package engine

import "math/bits"

// PawnEntry caches one position's pawn-structure evaluation, keyed by the
// position's PawnKey. Key is kept in full (unlike TTEntry's truncated
// Key16) since a false pawn-hash hit would silently corrupt an eval rather
// than just costing a wasted re-search, and the entry is small enough that
// the extra width barely affects table density.
type PawnEntry struct {
	Key     uint64
	MgScore int16
	EgScore int16
}

// PawnTable is a per-worker cache of pawn-structure evaluations. It is not
// shared across the Lazy-SMP pool the way TranspositionTable is: each
// Worker gets its own, since pawn-structure eval is read far more often
// than it changes and contention on a shared table would cost more than
// the occasional redundant recomputation it would save.
type PawnTable struct {
	entries []PawnEntry
	size    uint64
}

// NewPawnTable creates a pawn hash table sized in MB. Indexing reuses
// TranspositionTable's 64x64->128-bit-multiply scheme (see
// transposition.go) rather than a power-of-two mask, so sizeMB isn't
// silently rounded down to the nearest power of two.
func NewPawnTable(sizeMB int) *PawnTable {
	const entrySize = 16 // sizeof(PawnEntry), padded to the uint64 key's alignment
	size := uint64(sizeMB) * 1024 * 1024 / entrySize
	if size == 0 {
		size = 1
	}
	return &PawnTable{
		entries: make([]PawnEntry, size),
		size:    size,
	}
}

func (pt *PawnTable) index(key uint64) uint64 {
	hi, _ := bits.Mul64(key, pt.size)
	return hi
}

// Probe looks up a pawn structure evaluation. Returns the middlegame and
// endgame scores if found.
func (pt *PawnTable) Probe(key uint64) (mg, eg int, found bool) {
	entry := &pt.entries[pt.index(key)]
	if entry.Key == key {
		return int(entry.MgScore), int(entry.EgScore), true
	}
	return 0, 0, false
}

// Store saves a pawn structure evaluation, unconditionally overwriting
// whatever previously occupied the slot — there is no depth or recency to
// weigh a replacement decision against, unlike TranspositionTable.
func (pt *PawnTable) Store(key uint64, mg, eg int) {
	entry := &pt.entries[pt.index(key)]
	entry.Key = key
	entry.MgScore = int16(mg)
	entry.EgScore = int16(eg)
}

// Clear empties the pawn hash table for a new search.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}
