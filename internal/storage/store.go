package storage

import (
	"context"

	"foldcode/internal/model"
)

// Store defines persistence operations for encoded chains and the
// batches that produced them.
type Store interface {
	Init(ctx context.Context) error
	SaveEntry(ctx context.Context, entry model.Entry) error
	GetEntry(ctx context.Context, id string) (model.Entry, bool, error)
	ListEntries(ctx context.Context, batchID string) ([]model.Entry, error)
	SaveLookup(ctx context.Context, batchID string, entries []model.LookupEntry) error
	GetLookup(ctx context.Context, batchID string) ([]model.LookupEntry, bool, error)
	SaveBatch(ctx context.Context, batch model.BatchSummary) error
	GetBatch(ctx context.Context, id string) (model.BatchSummary, bool, error)
	ListBatches(ctx context.Context) ([]model.BatchSummary, error)
}
