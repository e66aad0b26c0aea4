//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"foldcode/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveEntry(ctx context.Context, entry model.Entry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO entries (id, batch_id, file_number, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			batch_id = excluded.batch_id,
			file_number = excluded.file_number,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, entry.ID, entry.BatchID, entry.FileNumber, entry.SchemaVersion, entry.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (model.Entry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Entry{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM entries WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) ListEntries(ctx context.Context, batchID string) ([]model.Entry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT payload FROM entries WHERE batch_id = ? ORDER BY file_number, id
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		entry, err := DecodeEntry(payload)
		if err != nil {
			return nil, fmt.Errorf("decode entry in batch %s: %w", batchID, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveLookup(ctx context.Context, batchID string, entries []model.LookupEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeLookup(entries)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO lookups (batch_id, payload)
		VALUES (?, ?)
		ON CONFLICT(batch_id) DO UPDATE SET
			payload = excluded.payload
	`, batchID, payload)
	return err
}

func (s *SQLiteStore) GetLookup(ctx context.Context, batchID string) ([]model.LookupEntry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM lookups WHERE batch_id = ?`, batchID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) SaveBatch(ctx context.Context, batch model.BatchSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeBatch(batch)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO batches (id, created_at_utc, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, batch.ID, batch.CreatedAtUTC, batch.SchemaVersion, batch.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetBatch(ctx context.Context, id string) (model.BatchSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.BatchSummary{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM batches WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) ListBatches(ctx context.Context) ([]model.BatchSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM batches ORDER BY created_at_utc DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BatchSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		batch, err := DecodeBatch(payload)
		if err != nil {
			return nil, fmt.Errorf("decode batch list: %w", err)
		}
		out = append(out, batch)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			file_number INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS entries_batch ON entries (batch_id);
		CREATE TABLE IF NOT EXISTS lookups (
			batch_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS batches (
			id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
