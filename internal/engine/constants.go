package engine

import "github.com/heimdall-engine/heimdall/internal/board"

// Search bounds and scoring constants shared across the worker pool.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation found at each ply of a single
// worker's search, triangular-indexed: length[ply] gives the PV length
// rooted at that ply, moves[ply][ply:length[ply]] the moves themselves.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}
