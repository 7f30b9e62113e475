// Package persist provides an optional, off-by-default BadgerDB-backed
// snapshot store that lets the engine warm-start a transposition table and
// its correction histories from a prior UCI session keyed by root FEN.
//
// The transposition table itself remains process-local and in-memory, as
// required by the core's racy-by-design TT contract. No other package
// imports this one: the UCI driver neither loads nor saves a snapshot, so
// Save and Load run only when a caller invokes them directly.
package persist

import (
	"bytes"
	"encoding/gob"

	"github.com/dgraph-io/badger/v4"

	"github.com/heimdall-engine/heimdall/internal/storage"
)

// Store wraps a BadgerDB instance dedicated to engine snapshots.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the default snapshot database under
// the platform data directory.
func Open() (*Store, error) {
	dir, err := storage.GetPersistDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dir)
}

// OpenAt opens the snapshot database at an explicit directory, primarily
// for tests.
func OpenAt(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TTRecord mirrors one retained transposition-table slot across a snapshot
// boundary: enough to repopulate a fresh table without replaying search.
type TTRecord struct {
	Key      uint64
	BestMove uint16
	Score    int16
	RawEval  int16
	Depth    int8
	Flag     uint8
}

// CorrectionSnapshot mirrors the five correction-history tables (§3 Data
// Model: pawn/major/minor/nonpawn/continuation).
type CorrectionSnapshot struct {
	Pawn         map[uint32]int16
	Major        map[uint32]int16
	Minor        map[uint32]int16
	NonPawn      [2]map[uint32]int16
	Continuation map[uint64]int16
}

// snapshot is the serialized unit keyed by root FEN.
type snapshot struct {
	TT         []TTRecord
	Correction CorrectionSnapshot
}

func snapshotKey(rootFEN string) []byte {
	return append([]byte("snapshot:"), []byte(rootFEN)...)
}

// Save persists a TT sample plus correction histories for a given root FEN,
// overwriting any prior snapshot for that FEN.
func (s *Store) Save(rootFEN string, tt []TTRecord, corr CorrectionSnapshot) error {
	snap := snapshot{TT: tt, Correction: corr}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(rootFEN), buf.Bytes())
	})
}

// Load retrieves a previously saved snapshot for a root FEN. The second
// return value is false if no snapshot exists (not an error).
func (s *Store) Load(rootFEN string) ([]TTRecord, CorrectionSnapshot, bool, error) {
	var snap snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(rootFEN))
		if err == badger.ErrKeyNotFound {
			return badger.ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&snap)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, CorrectionSnapshot{}, false, nil
	}
	if err != nil {
		return nil, CorrectionSnapshot{}, false, err
	}
	return snap.TT, snap.Correction, true, nil
}
