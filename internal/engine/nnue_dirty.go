package engine

// DirtyPiece tracks a piece change for incremental accumulator updates.
// FromSq = -1 means the piece was added (not moved from anywhere); ToSq =
// -1 means it was removed (captured). Piece is an opaque per-build piece
// encoding filled in by whichever NNUE bridge variant is compiled.
type DirtyPiece struct {
	Piece  int
	FromSq int
	ToSq   int
}

// MaxDirtyPieces is the maximum number of dirty pieces per move: normal
// move 1, capture 2, en passant 2, promotion+capture 3.
const MaxDirtyPieces = 3

// DirtyState tracks piece changes for incremental NNUE updates, computed
// once before a move is made and consumed by the accumulator update on
// the following push.
type DirtyState struct {
	Pieces    [MaxDirtyPieces]DirtyPiece
	Count     int
	KingMoved [2]bool
	KingSq    [2]int
	Computed  bool
}
