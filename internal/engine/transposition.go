package engine

import (
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/heimdall-engine/heimdall/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry is one transposition table slot. The key is truncated to 16 bits
// since the slot index already consumes the high bits of the hash. RawEval
// is written only by StoreEval, which the search does not call; Store
// leaves it as it was, and the search never reads it.
type TTEntry struct {
	Key16    uint16
	Score    int16
	RawEval  int16
	BestMove board.Move
	Depth    uint8
	Flag     TTFlag
	IsPV     bool
	age      uint8
}

const maxAge = 0x1F

// ttShard pads the per-shard hit/probe counters to a cache line so workers
// probing concurrently don't bounce each other's counters between cores.
type ttShard struct {
	hits, probes atomic.Uint64
	_            cpu.CacheLinePad
}

// TranspositionTable is a hash table for storing search results, shared
// across a Lazy-SMP worker pool. Indexing uses a 64x64->128 bit multiply
// instead of a modulo so the table size need not be a power of two.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64 // number of entries
	age     uint8
	shards  []ttShard
}

// NewTranspositionTable creates a transposition table sized in MB, with
// per-shard statistics counters for threads concurrent probers.
func NewTranspositionTable(sizeMB int, threads int) *TranspositionTable {
	tt := &TranspositionTable{}
	tt.resize(uint64(sizeMB)*1024*1024, threads)
	return tt
}

// resize reallocates the table to the given byte budget, clearing it across
// threads goroutines so the allocator's lazy zero pages get faulted in in
// parallel rather than by a single core walking the whole table.
func (tt *TranspositionTable) resize(bytes uint64, threads int) {
	entrySize := uint64(12) // sizeof(TTEntry)
	numEntries := bytes / entrySize
	if numEntries == 0 {
		numEntries = 1
	}

	tt.entries = make([]TTEntry, numEntries)
	tt.size = numEntries
	tt.age = 0
	if threads < 1 {
		threads = 1
	}
	tt.shards = make([]ttShard, threads)
	tt.clearEntries(threads)
}

// Resize is the exported entry point the UCI Hash option calls.
func (tt *TranspositionTable) Resize(sizeMB int, threads int) {
	tt.resize(uint64(sizeMB)*1024*1024, threads)
}

// index maps a 64-bit hash into [0, tt.size) via a 64x64->128 bit multiply,
// taking the high 64 bits of the product (Lemire's trick) instead of
// hash % size.
func (tt *TranspositionTable) index(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, tt.size)
	return hi
}

func (tt *TranspositionTable) shardFor(hash uint64) *ttShard {
	return &tt.shards[hash%uint64(len(tt.shards))]
}

// Probe looks up a position in the transposition table. Returns the entry
// and true if found, otherwise an empty entry and false. A slot whose depth
// is 0 (empty, eval-only from StoreEval, or stored at depth 0 by quiescence)
// is reported as not found.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	shard := tt.shardFor(hash)
	shard.probes.Add(1)

	idx := tt.index(hash)
	tt.prefetchHint(idx)
	entry := tt.entries[idx]

	if entry.Key16 == uint16(hash) && entry.Depth > 0 {
		shard.hits.Add(1)
		return entry, true
	}

	return TTEntry{}, false
}

// Prefetch warms the cache line for hash's slot ahead of a probe that will
// follow once move generation has produced the position to look up. Pure
// Go has no prefetch intrinsic, so this issues a dummy read of the slot.
func (tt *TranspositionTable) Prefetch(hash uint64) {
	tt.prefetchHint(tt.index(hash))
}

func (tt *TranspositionTable) prefetchHint(idx uint64) {
	_ = tt.entries[idx]
}

// Store saves a position in the transposition table. Per the table's
// single-entry-per-slot design this always overwrites whatever was there;
// there is no depth- or age-gated replacement policy to second-guess.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, wasPV bool) {
	idx := tt.index(hash)
	entry := &tt.entries[idx]

	entry.Key16 = uint16(hash)
	entry.BestMove = bestMove
	entry.Score = int16(score)
	entry.Depth = uint8(depth)
	entry.Flag = flag
	entry.IsPV = wasPV
	entry.age = tt.age
}

// StoreEval records a raw static evaluation into an existing slot without
// disturbing its score/bound/move, or creates a fresh eval-only entry.
func (tt *TranspositionTable) StoreEval(hash uint64, rawEval int) {
	idx := tt.index(hash)
	entry := &tt.entries[idx]
	if entry.Key16 != uint16(hash) {
		*entry = TTEntry{Key16: uint16(hash), age: tt.age}
	}
	entry.RawEval = int16(rawEval)
}

// NewSearch advances the generation counter, wrapping at its 5-bit width.
func (tt *TranspositionTable) NewSearch() {
	tt.age = (tt.age + 1) & maxAge
}

// Clear wipes the table across GOMAXPROCS goroutines.
func (tt *TranspositionTable) Clear() {
	tt.clearEntries(runtime.GOMAXPROCS(0))
}

func (tt *TranspositionTable) clearEntries(threads int) {
	if threads < 1 {
		threads = 1
	}
	n := len(tt.entries)
	chunk := (n + threads - 1) / threads
	if chunk == 0 {
		chunk = n
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			clear := tt.entries[lo:hi]
			for i := range clear {
				clear[i] = TTEntry{}
			}
		}(start, end)
	}
	wg.Wait()

	tt.age = 0
	for i := range tt.shards {
		tt.shards[i].hits.Store(0)
		tt.shards[i].probes.Store(0)
	}
}

// HashFull returns the permille of the table that is used, sampled from
// the first 1000 entries.
func (tt *TranspositionTable) HashFull() int {
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].age == tt.age {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage, summed across shards.
func (tt *TranspositionTable) HitRate() float64 {
	var hits, probes uint64
	for i := range tt.shards {
		hits += tt.shards[i].hits.Load()
		probes += tt.shards[i].probes.Load()
	}
	if probes == 0 {
		return 0
	}
	return float64(hits) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT adjusts a score read from the transposition table.
// Mate scores need to be adjusted based on ply distance.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
