package storage

import (
	"context"
	"sort"
	"sync"

	"foldcode/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.Entry
	lookups map[string][]model.LookupEntry
	batches map[string]model.BatchSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]model.Entry)
	s.lookups = make(map[string][]model.LookupEntry)
	s.batches = make(map[string]model.BatchSummary)
	return nil
}

func (s *MemoryStore) SaveEntry(_ context.Context, entry model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.CA = append([]float32(nil), entry.CA...)
	s.entries[entry.ID] = entry
	return nil
}

func (s *MemoryStore) GetEntry(_ context.Context, id string) (model.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return model.Entry{}, false, nil
	}
	entry.CA = append([]float32(nil), entry.CA...)
	return entry, true, nil
}

func (s *MemoryStore) ListEntries(_ context.Context, batchID string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Entry
	for _, entry := range s.entries {
		if entry.BatchID != batchID {
			continue
		}
		entry.CA = append([]float32(nil), entry.CA...)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileNumber != out[j].FileNumber {
			return out[i].FileNumber < out[j].FileNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SaveLookup(_ context.Context, batchID string, entries []model.LookupEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.LookupEntry, len(entries))
	copy(copied, entries)
	s.lookups[batchID] = copied
	return nil
}

func (s *MemoryStore) GetLookup(_ context.Context, batchID string) ([]model.LookupEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lookup, ok := s.lookups[batchID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LookupEntry, len(lookup))
	copy(copied, lookup)
	return copied, true, nil
}

func (s *MemoryStore) SaveBatch(_ context.Context, batch model.BatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[batch.ID] = batch
	return nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id string) (model.BatchSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	return batch, ok, nil
}

func (s *MemoryStore) ListBatches(_ context.Context) ([]model.BatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BatchSummary, 0, len(s.batches))
	for _, batch := range s.batches {
		out = append(out, batch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC != out[j].CreatedAtUTC {
			return out[i].CreatedAtUTC > out[j].CreatedAtUTC
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
