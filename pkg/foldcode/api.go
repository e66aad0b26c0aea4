// Package foldcode is the public face of the structural-alphabet
// encoder: load a model asset once, then encode batches of coordinate
// files into state strings persisted in a Store. Parallelism lives
// here, not in the core — every worker owns its own encoder, while
// the asset is shared read-only.
package foldcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"foldcode/internal/alphabet"
	"foldcode/internal/asset"
	"foldcode/internal/chainio"
	"foldcode/internal/model"
	"foldcode/internal/storage"
	"foldcode/internal/threedi"
)

const defaultDBPath = "foldcode.db"

type Options struct {
	StoreKind string
	DBPath    string
	AssetPath string
	// LockPath guards disk-backed stores against concurrent batch
	// encodes. Empty derives "<db path>.lock"; only used when the
	// store kind writes to disk.
	LockPath string
}

type Client struct {
	store storage.Store
	asset *asset.Asset

	storeKind   string
	lockPath    string
	initialized bool
}

type EncodeRequest struct {
	Paths   []string
	Workers int
	BatchID string
}

type EncodeSummary struct {
	BatchID         string
	Files           int
	FailedFiles     int
	Chains          int
	Residues        int
	InvalidResidues int
	StateBytes      int64
}

// New loads the asset named in opts and opens the store.
func New(opts Options) (*Client, error) {
	if opts.AssetPath == "" {
		return nil, errors.New("asset path is required")
	}
	a, err := asset.LoadFile(opts.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", opts.AssetPath, err)
	}
	return NewWithAsset(a, opts)
}

// NewWithAsset wraps an asset the caller already holds, typically a
// synthetic one in tests.
func NewWithAsset(a *asset.Asset, opts Options) (*Client, error) {
	if a == nil {
		return nil, errors.New("asset is required")
	}
	// The encoder constructor validates the asset against the feature
	// protocol up front, before any store is touched.
	if _, err := threedi.NewEncoder(a); err != nil {
		return nil, err
	}

	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = dbPath + ".lock"
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:     store,
		asset:     a,
		storeKind: storeKind,
		lockPath:  lockPath,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Asset exposes the loaded model bundle.
func (c *Client) Asset() *asset.Asset { return c.asset }

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Encode runs the per-file pipeline over req.Paths and persists one
// entry per chain under req.BatchID, or a fresh uuid when that is
// empty. Files that fail to open or parse are
// counted and skipped; the batch carries on, matching the original
// converter's tolerance for broken inputs.
func (c *Client) Encode(ctx context.Context, req EncodeRequest) (EncodeSummary, error) {
	if len(req.Paths) == 0 {
		return EncodeSummary{}, errors.New("no input files")
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.Workers > len(req.Paths) {
		req.Workers = len(req.Paths)
	}
	if err := c.Init(ctx); err != nil {
		return EncodeSummary{}, err
	}

	if c.diskBacked() {
		unlock, err := acquireLock(c.lockPath, 10*time.Second)
		if err != nil {
			return EncodeSummary{}, err
		}
		defer unlock()
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.New().String()
	}

	results := make([]fileResult, len(req.Paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < req.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			encoder, err := threedi.NewEncoder(c.asset)
			if err != nil {
				for idx := range jobs {
					results[idx] = fileResult{err: err}
				}
				return
			}
			for idx := range jobs {
				results[idx] = encodeFile(ctx, encoder, req.Paths[idx])
			}
		}()
	}
	for i := range req.Paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return EncodeSummary{}, err
	}

	summary := EncodeSummary{BatchID: batchID, Files: len(req.Paths)}
	var lookup []model.LookupEntry
	for fileNumber, result := range results {
		if result.err != nil {
			slog.Warn("skipping input file", "path", req.Paths[fileNumber], "error", result.err)
			summary.FailedFiles++
			continue
		}
		for _, encoded := range result.chains {
			entry := model.Entry{
				VersionedRecord: model.VersionedRecord{
					SchemaVersion: storage.CurrentSchemaVersion,
					CodecVersion:  storage.CurrentCodecVersion,
				},
				ID:         uuid.New().String(),
				BatchID:    batchID,
				Name:       encoded.name,
				FileNumber: fileNumber,
				Sequence:   encoded.sequence,
				States:     encoded.states,
				CA:         encoded.ca,
			}
			if entry.Name == "" {
				entry.Name = filepath.Base(req.Paths[fileNumber])
			}
			if err := c.store.SaveEntry(ctx, entry); err != nil {
				return EncodeSummary{}, err
			}
			lookup = append(lookup, model.LookupEntry{
				ID:         entry.ID,
				EntryName:  entry.Name,
				FileNumber: fileNumber,
			})
			summary.Chains++
			summary.Residues += len(encoded.states)
			summary.InvalidResidues += encoded.invalid
			summary.StateBytes += int64(len(encoded.states))
		}
	}

	if err := c.store.SaveLookup(ctx, batchID, lookup); err != nil {
		return EncodeSummary{}, err
	}
	if err := c.store.SaveBatch(ctx, model.BatchSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:              batchID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		Files:           summary.Files,
		FailedFiles:     summary.FailedFiles,
		Chains:          summary.Chains,
		Residues:        summary.Residues,
		InvalidResidues: summary.InvalidResidues,
	}); err != nil {
		return EncodeSummary{}, err
	}
	return summary, nil
}

// EncodeChain encodes one in-memory chain and returns the state
// letters, without touching the store.
func (c *Client) EncodeChain(ctx context.Context, ch chainio.Chain) (string, error) {
	encoder, err := threedi.NewEncoder(c.asset)
	if err != nil {
		return "", err
	}
	states, err := encoder.Encode(ctx, ch.CA, ch.N, ch.C, ch.CB)
	if err != nil {
		return "", err
	}
	return alphabet.String(states), nil
}

func (c *Client) Entries(ctx context.Context, batchID string) ([]model.Entry, error) {
	if batchID == "" {
		return nil, errors.New("batch id is required")
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListEntries(ctx, batchID)
}

func (c *Client) Entry(ctx context.Context, id string) (model.Entry, bool, error) {
	if err := c.Init(ctx); err != nil {
		return model.Entry{}, false, err
	}
	return c.store.GetEntry(ctx, id)
}

func (c *Client) Lookup(ctx context.Context, batchID string) ([]model.LookupEntry, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	lookup, ok, err := c.store.GetLookup(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lookup not found for batch: %s", batchID)
	}
	return lookup, nil
}

func (c *Client) Batches(ctx context.Context) ([]model.BatchSummary, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListBatches(ctx)
}

func (c *Client) diskBacked() bool {
	return c.storeKind == "sqlite" || c.storeKind == "leveldb"
}

type encodedChain struct {
	name     string
	sequence string
	states   string
	ca       []float32
	invalid  int
}

type fileResult struct {
	chains []encodedChain
	err    error
}

func encodeFile(ctx context.Context, encoder *threedi.Encoder, path string) fileResult {
	f, err := os.Open(path)
	if err != nil {
		return fileResult{err: err}
	}
	defer f.Close()

	chains, err := chainio.Read(f)
	if err != nil {
		return fileResult{err: err}
	}
	if len(chains) == 0 {
		return fileResult{err: errors.New("no chains in file")}
	}

	out := make([]encodedChain, 0, len(chains))
	invalidState := encoder.InvalidState()
	for _, ch := range chains {
		states, err := encoder.Encode(ctx, ch.CA, ch.N, ch.C, ch.CB)
		if err != nil {
			return fileResult{err: err}
		}
		invalid := 0
		for _, s := range states {
			if s == invalidState {
				invalid++
			}
		}
		out = append(out, encodedChain{
			name:     ch.Name,
			sequence: ch.Sequence,
			states:   alphabet.String(states),
			ca:       flattenCA(ch),
			invalid:  invalid,
		})
	}
	return fileResult{chains: out}
}

// flattenCA lays the trace out as all x, then all y, then all z, the
// layout downstream C-alpha consumers expect.
func flattenCA(ch chainio.Chain) []float32 {
	l := ch.Len()
	out := make([]float32, 0, 3*l)
	for i := 0; i < l; i++ {
		out = append(out, float32(ch.CA[i].X))
	}
	for i := 0; i < l; i++ {
		out = append(out, float32(ch.CA[i].Y))
	}
	for i := 0; i < l; i++ {
		out = append(out, float32(ch.CA[i].Z))
	}
	return out
}

// acquireLock obtains the advisory batch lock, retrying until timeout.
func acquireLock(path string, timeout time.Duration) (func(), error) {
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire batch lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another encode is in progress (lock: %s)", path)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
