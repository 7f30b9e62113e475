package engine

import (
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heimdall-engine/heimdall/internal/board"
	"github.com/heimdall-engine/heimdall/internal/book"
	"github.com/heimdall-engine/heimdall/internal/nnue"
	"github.com/heimdall-engine/heimdall/internal/tablebase"
)

// NumWorkers is the default number of parallel search workers (matches CPU cores).
var NumWorkers = runtime.GOMAXPROCS(0)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
	MultiPV  int           // Number of principal variations to find (0 or 1 = single best move)
}

// SearchResult contains the result of a single PV search.
type SearchResult struct {
	Move  board.Move
	Score int
	PV    []board.Move
	Depth int
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // ~2-3 ply, 500ms
	Medium                   // depth 7, 1s
	Hard                     // Maximum strength, 3s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 3, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 7, MoveTime: 1 * time.Second},
	Hard:   {Depth: 40, MoveTime: 3 * time.Second}, // Max strength (time-limited)
}

// Engine is the chess AI engine.
type Engine struct {
	// Workers for parallel search
	workers       []*Worker
	tt            *TranspositionTable
	sharedHistory *SharedHistory // Shared history for Lazy SMP
	stopFlag      atomic.Bool

	difficulty Difficulty
	book       *book.Book
	tablebase  tablebase.Prober

	// Position history for repetition detection
	rootPosHashes []uint64

	// NNUE evaluation
	useNNUE bool
	nnueNet *nnue.Networks // Shared networks (immutable after load)

	// UCI-configurable search parameters
	contempt     int
	moveOverhead time.Duration
	chess960     bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB, NumWorkers)
	sharedHistory := NewSharedHistory()

	e := &Engine{
		tt:            tt,
		sharedHistory: sharedHistory,
		difficulty:    Medium,
	}
	e.spawnWorkers(NumWorkers)

	return e
}

// spawnWorkers (re)builds the worker pool at the given size, sharing the
// existing transposition table and history tables.
func (e *Engine) spawnWorkers(n int) {
	if n < 1 {
		n = 1
	}
	log.Printf("[Engine] Creating %d workers (GOMAXPROCS=%d)", n, runtime.GOMAXPROCS(0))

	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		workerPawnTable := NewPawnTable(1) // 1MB per worker
		w := NewWorker(i, e.tt, workerPawnTable, e.sharedHistory, &e.stopFlag)
		w.SetContempt(e.contempt)
		if e.tablebase != nil {
			w.SetTablebase(e.tablebase, 1)
		}
		if e.useNNUE && e.nnueNet != nil {
			w.initNNUE(e.nnueNet)
			w.useNNUE = true
		}
		if len(e.rootPosHashes) > 0 {
			w.SetRootHistory(e.rootPosHashes)
		}
		workers[i] = w
	}
	e.workers = workers
}

// SetWorkerCount resizes the Lazy-SMP worker pool (the UCI Threads option).
func (e *Engine) SetWorkerCount(n int) {
	if n < 1 {
		n = 1
	}
	e.spawnWorkers(n)
}

// WorkerCount returns the current number of search workers.
func (e *Engine) WorkerCount() int {
	return len(e.workers)
}

// SetContempt sets the draw-scoring contempt in centipawns (positive favors
// avoiding draws as White).
func (e *Engine) SetContempt(contempt int) {
	e.contempt = contempt
	for _, w := range e.workers {
		w.SetContempt(contempt)
	}
}

// SetMoveOverhead sets the per-move buffer subtracted from the time budget
// to account for GUI/network latency.
func (e *Engine) SetMoveOverhead(d time.Duration) {
	e.moveOverhead = d
}

// MoveOverhead returns the configured move-overhead buffer.
func (e *Engine) MoveOverhead() time.Duration {
	return e.moveOverhead
}

// SetChess960 enables or disables Chess960 (FRC) castling notation.
func (e *Engine) SetChess960(enabled bool) {
	e.chess960 = enabled
}

// Chess960 returns whether Chess960 castling notation is enabled.
func (e *Engine) Chess960() bool {
	return e.chess960
}

// ResizeHash reallocates the transposition table to the given size in MB.
func (e *Engine) ResizeHash(sizeMB int) {
	e.tt.Resize(sizeMB, len(e.workers))
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// LoadBook loads an opening book from a Polyglot file.
func (e *Engine) LoadBook(filename string) error {
	b, err := book.LoadPolyglot(filename)
	if err != nil {
		return err
	}
	e.book = b
	return nil
}

// SetBook sets the opening book.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// HasBook returns true if an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// SetTablebase sets the tablebase prober.
func (e *Engine) SetTablebase(tb tablebase.Prober) {
	e.tablebase = tb
	for _, w := range e.workers {
		w.SetTablebase(tb, 1)
	}
}

// SetSyzygyProbeDepth sets the minimum depth at which workers probe the
// tablebase.
func (e *Engine) SetSyzygyProbeDepth(depth int) {
	for _, w := range e.workers {
		w.SetTablebase(e.tablebase, depth)
	}
}

// EnableLichessTablebase enables Lichess online tablebase lookups.
func (e *Engine) EnableLichessTablebase() {
	e.SetTablebase(tablebase.NewLichessProber())
}

// HasTablebase returns true if a tablebase is available.
func (e *Engine) HasTablebase() bool {
	return e.tablebase != nil && e.tablebase.Available()
}

// SetPositionHistory sets the position history for repetition detection.
// This should be called before Search() with hashes from the game's move history.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = make([]uint64, len(hashes))
	copy(e.rootPosHashes, hashes)

	for _, w := range e.workers {
		w.SetRootHistory(hashes)
	}
}

// Search finds the best move for the given position.
func (e *Engine) Search(pos *board.Position) board.Move {
	limits := DifficultySettings[e.difficulty]
	return e.SearchWithLimits(pos, limits)
}

// SearchWithLimits finds the best move with specific search limits.
// Uses Lazy SMP with multiple workers searching in parallel.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	log.Printf("[Search] Received position with SideToMove=%v", pos.SideToMove)

	// Try opening book first
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}

	// Try tablebase for endgames
	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	// Reset for new search
	e.stopFlag.Store(false)
	e.tt.NewSearch()

	if e.useNNUE && e.nnueNet != nil {
		log.Printf("[Engine] Starting search with NNUE evaluation")
	} else {
		log.Printf("[Engine] Starting search with Classical evaluation")
	}

	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime - e.moveOverhead)
	}

	numWorkers := len(e.workers)
	resultCh := make(chan WorkerResult, numWorkers*maxDepth)

	// errgroup supervises spawning the worker goroutines: a setup error
	// inside workerSearch before the search loop starts is surfaced through
	// g.Wait() rather than silently losing that worker. errgroup does not
	// recover panics.
	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		workerID := i
		g.Go(func() error {
			return e.workerSearch(workerID, pos, maxDepth, resultCh)
		})
	}

	done := make(chan struct{})
	go func() {
		if err := g.Wait(); err != nil {
			log.Printf("[Engine] worker pool error: %v", err)
		}
		close(resultCh)
		close(done)
	}()

	var totalNodes uint64

resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			totalNodes += result.Nodes

			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {
					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					if e.OnInfo != nil {
						elapsed := time.Since(startTime)
						e.OnInfo(SearchInfo{
							Depth:    bestDepth,
							Score:    bestScore,
							Nodes:    e.getTotalNodes(),
							Time:     elapsed,
							PV:       bestPV,
							HashFull: e.tt.HashFull(),
						})
					}

					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}
				}
			}

			if !deadline.IsZero() && time.Now().After(deadline) {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	e.stopFlag.Store(true)
	<-done

	return bestMove
}

// SearchWithUCILimits finds the best move using UCI time controls.
// Supports wtime/btime/winc/binc for proper tournament time management.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) board.Move {
	if e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			return move
		}
	}

	if e.tablebase != nil && e.tablebase.Available() {
		pieceCount := tablebase.CountPieces(pos)
		if pieceCount <= e.tablebase.MaxPieces() {
			result := e.tablebase.ProbeRoot(pos)
			if result.Found && result.Move != board.NoMove {
				return result.Move
			}
		}
	}

	tm := NewTimeManager()
	tm.Init(limits, pos.SideToMove, ply, e.moveOverhead)

	e.stopFlag.Store(false)
	e.tt.NewSearch()

	for _, w := range e.workers {
		w.Reset()
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestPV []board.Move
	var bestDepth int
	var lastBestMove board.Move
	var stabilityCount int
	var instabilityCount int

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	numWorkers := len(e.workers)
	resultCh := make(chan WorkerResult, numWorkers*maxDepth)

	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		workerID := i
		g.Go(func() error {
			return e.workerSearch(workerID, pos, maxDepth, resultCh)
		})
	}

	done := make(chan struct{})
	go func() {
		if err := g.Wait(); err != nil {
			log.Printf("[Engine] worker pool error: %v", err)
		}
		close(resultCh)
		close(done)
	}()

resultLoop:
	for {
		select {
		case result, ok := <-resultCh:
			if !ok {
				break resultLoop
			}

			if result.Move != board.NoMove {
				if result.Depth > bestDepth ||
					(result.Depth == bestDepth && result.Score > bestScore) {

					if result.Depth > bestDepth {
						if result.Move == lastBestMove {
							stabilityCount++
							instabilityCount = 0
						} else {
							instabilityCount++
							stabilityCount = 0
						}
						lastBestMove = result.Move
					}

					bestMove = result.Move
					bestScore = result.Score
					bestPV = result.PV
					bestDepth = result.Depth

					if e.OnInfo != nil {
						elapsed := time.Since(startTime)
						e.OnInfo(SearchInfo{
							Depth:    bestDepth,
							Score:    bestScore,
							Nodes:    e.getTotalNodes(),
							Time:     elapsed,
							PV:       bestPV,
							HashFull: e.tt.HashFull(),
						})
					}

					if bestScore > MateScore-100 || bestScore < -MateScore+100 {
						e.stopFlag.Store(true)
						break resultLoop
					}

					if tm.PastOptimum() {
						if stabilityCount >= 4 {
							e.stopFlag.Store(true)
							break resultLoop
						}
					}
				}
			}

			if tm.ShouldStop() {
				e.stopFlag.Store(true)
				break resultLoop
			}

			if limits.Nodes > 0 && e.getTotalNodes() >= limits.Nodes {
				e.stopFlag.Store(true)
				break resultLoop
			}

		case <-done:
			break resultLoop
		}
	}

	e.stopFlag.Store(true)
	<-done

	return bestMove
}

// workerSearch runs iterative deepening search in a worker goroutine.
// Uses depth staggering: workers start at different depths to reduce redundant shallow work.
// Returns an error only if the worker's per-goroutine setup fails before it
// can reach the search loop; errgroup.Group returns that first error from
// g.Wait() once every worker goroutine has returned.
func (e *Engine) workerSearch(workerID int, pos *board.Position, maxDepth int, resultCh chan<- WorkerResult) error {
	if workerID < 0 || workerID >= len(e.workers) {
		return &workerSetupError{workerID: workerID}
	}
	worker := e.workers[workerID]
	worker.InitSearch(pos.Copy())

	var prevScore int

	// Depth staggering: helper workers skip shallow depths
	startDepth := 1
	if workerID >= 6 {
		startDepth = 4
	} else if workerID >= 3 {
		startDepth = 3
	} else if workerID >= 1 {
		startDepth = 2
	}

	recentScores := make([]int, 0, 10)

	for depth := startDepth; depth <= maxDepth; depth++ {
		if e.stopFlag.Load() {
			return nil
		}

		var move board.Move
		var score int

		if depth >= 5 && prevScore != 0 {
			volatility := 0
			if len(recentScores) >= 2 {
				minScore, maxScore := recentScores[0], recentScores[0]
				for _, s := range recentScores {
					if s < minScore {
						minScore = s
					}
					if s > maxScore {
						maxScore = s
					}
				}
				volatility = maxScore - minScore
			}

			var window int
			if volatility > 400 {
				window = 150 + volatility/4
			} else if volatility < 50 {
				window = 25
			} else {
				window = 50 + volatility/8
			}

			window += (workerID % 8) * 3

			alpha := prevScore - window
			beta := prevScore + window
			retryCount := 0

			for {
				move, score = worker.SearchDepth(depth, alpha, beta)

				if e.stopFlag.Load() {
					return nil
				}

				if score <= alpha {
					retryCount++
					if retryCount >= 2 {
						alpha = -Infinity
					} else {
						alpha = prevScore - window*2
					}
				} else if score >= beta {
					retryCount++
					if retryCount >= 2 {
						beta = Infinity
					} else {
						beta = prevScore + window*2
					}
				} else {
					break
				}

				if alpha == -Infinity && beta == Infinity {
					break
				}
			}
		} else {
			move, score = worker.SearchDepth(depth, -Infinity, Infinity)
		}

		if e.stopFlag.Load() {
			return nil
		}

		prevScore = score

		recentScores = append(recentScores, score)
		if len(recentScores) > 10 {
			recentScores = recentScores[1:]
		}

		pv := worker.GetPV()
		resultCh <- WorkerResult{
			WorkerID: workerID,
			Depth:    depth,
			Score:    score,
			Move:     move,
			PV:       pv,
			Nodes:    worker.Nodes(),
		}
	}

	return nil
}

// workerSetupError reports that a worker could not be dispatched to a
// valid slot in the pool.
type workerSetupError struct {
	workerID int
}

func (e *workerSetupError) Error() string {
	return "engine: invalid worker id " + itoa(e.workerID)
}

// getTotalNodes returns the total nodes searched by all workers.
func (e *Engine) getTotalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		total += w.Nodes()
	}
	return total
}

// SearchMultiPV finds multiple best moves (principal variations) for
// analysis, driving the real worker's full PVS/Lazy-SMP search path once
// per line with the previously found root moves excluded.
func (e *Engine) SearchMultiPV(pos *board.Position, limits SearchLimits) []SearchResult {
	numPV := limits.MultiPV
	if numPV <= 0 {
		numPV = 1
	}

	results := make([]SearchResult, 0, numPV)
	excludedMoves := make([]board.Move, 0, numPV)

	for i := 0; i < numPV; i++ {
		move, score, pv, depth := e.searchWithExclusions(pos, limits, excludedMoves)
		if move == board.NoMove {
			break
		}

		results = append(results, SearchResult{
			Move:  move,
			Score: score,
			PV:    pv,
			Depth: depth,
		})
		excludedMoves = append(excludedMoves, move)
	}

	for i := 0; i < len(results)-1; i++ {
		maxIdx := i
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[maxIdx].Score {
				maxIdx = j
			}
		}
		if maxIdx != i {
			results[i], results[maxIdx] = results[maxIdx], results[i]
		}
	}

	return results
}

// searchWithExclusions runs iterative deepening on the pool's main worker,
// excluding the given root moves, so SearchMultiPV's lines come from the
// same PVS/aspiration/pruning search every other caller uses instead of a
// separate, weaker implementation.
func (e *Engine) searchWithExclusions(pos *board.Position, limits SearchLimits, excluded []board.Move) (board.Move, int, []board.Move, int) {
	worker := e.workers[0]
	e.stopFlag.Store(false)
	worker.Reset()
	worker.SetExcludedMoves(excluded)
	worker.InitSearch(pos.Copy())
	e.tt.NewSearch()

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	var bestDepth int

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if e.stopFlag.Load() {
			break
		}

		move, score := worker.SearchDepth(depth, -Infinity, Infinity)

		if move != board.NoMove {
			bestMove = move
			bestScore = score
			bestDepth = depth
		}

		if score > MateScore-100 || score < -MateScore+100 {
			break
		}
	}

	pv := worker.GetPV()
	worker.SetExcludedMoves(nil)

	return bestMove, bestScore, pv, bestDepth
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	for _, w := range e.workers {
		w.orderer.Clear()
	}
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// LoadNNUE loads NNUE network files.
func (e *Engine) LoadNNUE(bigPath, smallPath string) error {
	log.Printf("[Engine] Loading NNUE networks...")
	log.Printf("[Engine]   Big network: %s", bigPath)
	log.Printf("[Engine]   Small network: %s", smallPath)

	nets, err := nnue.LoadNetworks(bigPath, smallPath)
	if err != nil {
		log.Printf("[Engine] Failed to load NNUE: %v", err)
		return err
	}
	e.nnueNet = nets

	for _, w := range e.workers {
		w.initNNUE(nets)
	}

	log.Printf("[Engine] NNUE networks loaded successfully")
	return nil
}

// SetUseNNUE enables or disables NNUE evaluation.
func (e *Engine) SetUseNNUE(use bool) {
	e.useNNUE = use
	for _, w := range e.workers {
		w.useNNUE = use
	}

	if use {
		log.Printf("[Engine] Evaluation mode: NNUE")
	} else {
		log.Printf("[Engine] Evaluation mode: Classical")
	}
}

// UseNNUE returns whether NNUE evaluation is enabled.
func (e *Engine) UseNNUE() bool {
	return e.useNNUE
}

// HasNNUE returns whether NNUE networks are loaded.
func (e *Engine) HasNNUE() bool {
	return e.nnueNet != nil
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
