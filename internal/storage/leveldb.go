package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"foldcode/internal/model"
)

// LevelDB key prefix scheme — "|" separates parts so ids stay
// unambiguous:
//
//	e|<id>            → Entry JSON (primary record)
//	x|<batch>|<id>    → nil        (batch membership index)
//	l|<batch>         → lookup JSON
//	b|<batch>         → BatchSummary JSON
const (
	prefixEntry  = "e|"
	prefixIdx    = "x|"
	prefixLookup = "l|"
	prefixBatch  = "b|"
)

// LevelDBStore persists encoded chains in a LevelDB directory.
// LevelDB is single-writer, so one process owns the store at a time.
type LevelDBStore struct {
	path string

	mu sync.RWMutex
	db *leveldb.DB
}

func NewLevelDBStore(path string) *LevelDBStore {
	return &LevelDBStore{path: path}
}

func (s *LevelDBStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("leveldb path is required")
	}
	if s.db != nil {
		return nil
	}
	db, err := leveldb.OpenFile(s.path, nil)
	if err != nil {
		return fmt.Errorf("open leveldb at %s: %w", s.path, err)
	}
	s.db = db
	return nil
}

func (s *LevelDBStore) SaveEntry(_ context.Context, entry model.Entry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(prefixEntry+entry.ID), payload)
	batch.Put([]byte(prefixIdx+entry.BatchID+"|"+entry.ID), nil)
	return db.Write(batch, nil)
}

func (s *LevelDBStore) GetEntry(_ context.Context, id string) (model.Entry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Entry{}, false, err
	}
	payload, err := db.Get([]byte(prefixEntry+id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return model.Entry{}, false, nil
		}
		return model.Entry{}, false, err
	}
	entry, err := DecodeEntry(payload)
	if err != nil {
		return model.Entry{}, false, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return entry, true, nil
}

func (s *LevelDBStore) ListEntries(_ context.Context, batchID string) ([]model.Entry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	prefix := prefixIdx + batchID + "|"
	iter := db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	var out []model.Entry
	for iter.Next() {
		id := string(iter.Key())[len(prefix):]
		payload, err := db.Get([]byte(prefixEntry+id), nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				continue
			}
			return nil, err
		}
		entry, err := DecodeEntry(payload)
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", id, err)
		}
		out = append(out, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileNumber != out[j].FileNumber {
			return out[i].FileNumber < out[j].FileNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *LevelDBStore) SaveLookup(_ context.Context, batchID string, entries []model.LookupEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeLookup(entries)
	if err != nil {
		return err
	}
	return db.Put([]byte(prefixLookup+batchID), payload, nil)
}

func (s *LevelDBStore) GetLookup(_ context.Context, batchID string) ([]model.LookupEntry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	payload, err := db.Get([]byte(prefixLookup+batchID), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	lookup, err := DecodeLookup(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode lookup %s: %w", batchID, err)
	}
	return lookup, true, nil
}

func (s *LevelDBStore) SaveBatch(_ context.Context, batch model.BatchSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeBatch(batch)
	if err != nil {
		return err
	}
	return db.Put([]byte(prefixBatch+batch.ID), payload, nil)
}

func (s *LevelDBStore) GetBatch(_ context.Context, id string) (model.BatchSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.BatchSummary{}, false, err
	}
	payload, err := db.Get([]byte(prefixBatch+id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return model.BatchSummary{}, false, nil
		}
		return model.BatchSummary{}, false, err
	}
	batch, err := DecodeBatch(payload)
	if err != nil {
		return model.BatchSummary{}, false, fmt.Errorf("decode batch %s: %w", id, err)
	}
	return batch, true, nil
}

func (s *LevelDBStore) ListBatches(_ context.Context) ([]model.BatchSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	iter := db.NewIterator(util.BytesPrefix([]byte(prefixBatch)), nil)
	defer iter.Release()

	var out []model.BatchSummary
	for iter.Next() {
		batch, err := DecodeBatch(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode batch list: %w", err)
		}
		out = append(out, batch)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC != out[j].CreatedAtUTC {
			return out[i].CreatedAtUTC > out[j].CreatedAtUTC
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *LevelDBStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LevelDBStore) getDB() (*leveldb.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}
