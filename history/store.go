package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/lightgodwoken/unlock-workers/entities"
)

const CategoryWithdrawal = "withdrawal"

var (
	entryPrefix = []byte("history\x00")
	seqPrefix   = []byte("historyseq\x00")
)

// Store is an append-only transaction log, one log per key.
type Store interface {
	Append(key string, entry entities.HistoryEntry) error
	List(key string) ([]entities.HistoryEntry, error)
}

// Key names the log of one account on one chain generation.
func Key(version string, address string, category string) string {
	return fmt.Sprintf("%s/%s/%s", version, address, category)
}

type LevelStore struct {
	db  *leveldb.DB
	mux sync.Mutex
}

func NewLevelStore(db *leveldb.DB) *LevelStore {
	return &LevelStore{db: db}
}

func OpenLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not open history db %v: %w", path, err)
	}
	return NewLevelStore(db), nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

func logPrefix(key string) []byte {
	prefix := make([]byte, 0, len(entryPrefix)+len(key)+1)
	prefix = append(prefix, entryPrefix...)
	prefix = append(prefix, key...)
	return append(prefix, 0)
}

func seqKey(key string) []byte {
	return append(append([]byte{}, seqPrefix...), key...)
}

func (s *LevelStore) Append(key string, entry entities.HistoryEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	var seq uint64
	seqBytes, err := s.db.Get(seqKey(key), nil)
	switch {
	case err == leveldb.ErrNotFound:
	case err != nil:
		return fmt.Errorf("could not read history sequence of %v: %w", key, err)
	default:
		seq = binary.BigEndian.Uint64(seqBytes)
	}

	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)
	nextSeq := make([]byte, 8)
	binary.BigEndian.PutUint64(nextSeq, seq+1)

	batch := new(leveldb.Batch)
	batch.Put(append(logPrefix(key), seqBuf[:]...), value)
	batch.Put(seqKey(key), nextSeq)
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("could not append history entry to %v: %w", key, err)
	}
	return nil
}

// List returns the entries of key in append order.
func (s *LevelStore) List(key string) ([]entities.HistoryEntry, error) {
	iter := s.db.NewIterator(util.BytesPrefix(logPrefix(key)), nil)
	defer iter.Release()

	entries := []entities.HistoryEntry{}
	for iter.Next() {
		var entry entities.HistoryEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("corrupted history entry in %v: %w", key, err)
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}
