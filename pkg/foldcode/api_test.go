package foldcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foldcode/internal/alphabet"
	"foldcode/internal/asset"
	"foldcode/internal/chainio"
)

// writeStrandFile writes one chain of l residues on an idealised
// extended strand, C-beta missing everywhere.
func writeStrandFile(t *testing.T, dir, name string, l int) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "> %s\n", name)
	fmt.Fprintf(&b, "@ %s\n", strings.Repeat("A", l))
	for i := 0; i < l; i++ {
		z := 0.5
		ny := 1.0
		if i%2 == 1 {
			z = -0.5
			ny = -1.0
		}
		x := 3.5 * float64(i)
		fmt.Fprintf(&b, "%g 0 %g  %g %g %g  %g %g %g\n",
			x, z,
			x-1.2, 0.5*ny, z,
			x+1.2, 0.4*ny, z)
	}
	path := filepath.Join(dir, name+".coords")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write chain file: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	client, err := NewWithAsset(asset.Demo(), opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestEncodeBatchMemoryStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client := newTestClient(t, Options{})

	paths := []string{
		writeStrandFile(t, dir, "d1", 20),
		writeStrandFile(t, dir, "d2", 12),
	}
	summary, err := client.Encode(ctx, EncodeRequest{Paths: paths, Workers: 2})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if summary.Files != 2 || summary.FailedFiles != 0 || summary.Chains != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Residues != 32 {
		t.Fatalf("expected 32 residues, got %d", summary.Residues)
	}
	// Each chain loses exactly its two endpoints.
	if summary.InvalidResidues != 4 {
		t.Fatalf("expected 4 invalid residues, got %+v", summary)
	}
	if summary.StateBytes != 32 {
		t.Fatalf("unexpected state bytes: %d", summary.StateBytes)
	}

	entries, err := client.Entries(ctx, summary.BatchID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0]
	if first.Name != "d1" || first.FileNumber != 0 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if len(first.States) != 20 || len(first.Sequence) != 20 || len(first.CA) != 60 {
		t.Fatalf("entry shape wrong: states=%d seq=%d ca=%d", len(first.States), len(first.Sequence), len(first.CA))
	}
	if first.States[0] != alphabet.InvalidLetter || first.States[19] != alphabet.InvalidLetter {
		t.Fatalf("endpoints should render as %c: %s", alphabet.InvalidLetter, first.States)
	}
	for _, letter := range []byte(first.States[1:19]) {
		if letter == alphabet.InvalidLetter {
			t.Fatalf("interior residue invalid: %s", first.States)
		}
		if _, err := alphabet.State(letter); err != nil {
			t.Fatalf("letter outside alphabet: %c", letter)
		}
	}

	lookup, err := client.Lookup(ctx, summary.BatchID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(lookup) != 2 || lookup[0].EntryName != "d1" || lookup[1].FileNumber != 1 {
		t.Fatalf("unexpected lookup: %+v", lookup)
	}

	batches, err := client.Batches(ctx)
	if err != nil {
		t.Fatalf("batches: %v", err)
	}
	if len(batches) != 1 || batches[0].ID != summary.BatchID {
		t.Fatalf("unexpected batches: %+v", batches)
	}
}

func TestEncodeDeterministicAcrossRuns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeStrandFile(t, dir, "d1", 20)

	stateStrings := make([]string, 2)
	for run := 0; run < 2; run++ {
		client := newTestClient(t, Options{})
		summary, err := client.Encode(ctx, EncodeRequest{Paths: []string{path}})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		entries, err := client.Entries(ctx, summary.BatchID)
		if err != nil {
			t.Fatalf("run %d entries: %v", run, err)
		}
		stateStrings[run] = entries[0].States
	}
	if stateStrings[0] != stateStrings[1] {
		t.Fatalf("states differ across runs:\n%s\n%s", stateStrings[0], stateStrings[1])
	}
}

func TestEncodeCountsFailedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	good := writeStrandFile(t, dir, "d1", 10)

	bad := filepath.Join(dir, "broken.coords")
	if err := os.WriteFile(bad, []byte("not coordinates\n"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	client := newTestClient(t, Options{})
	summary, err := client.Encode(ctx, EncodeRequest{Paths: []string{good, bad, filepath.Join(dir, "missing.coords")}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if summary.Files != 3 || summary.FailedFiles != 2 || summary.Chains != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestEncodeLevelDBStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeStrandFile(t, dir, "d1", 15)

	client := newTestClient(t, Options{
		StoreKind: "leveldb",
		DBPath:    filepath.Join(dir, "entries.ldb"),
	})
	summary, err := client.Encode(ctx, EncodeRequest{Paths: []string{path}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	entries, err := client.Entries(ctx, summary.BatchID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || len(entries[0].States) != 15 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestEncodeChainMatchesStoredEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeStrandFile(t, dir, "d1", 20)

	client := newTestClient(t, Options{})
	summary, err := client.Encode(ctx, EncodeRequest{Paths: []string{path}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	entries, err := client.Entries(ctx, summary.BatchID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	chains, err := chainio.Read(f)
	if err != nil {
		t.Fatalf("read chains: %v", err)
	}
	states, err := client.EncodeChain(ctx, chains[0])
	if err != nil {
		t.Fatalf("encode chain: %v", err)
	}
	if states != entries[0].States {
		t.Fatalf("EncodeChain disagrees with batch:\n%s\n%s", states, entries[0].States)
	}
}

func TestEncodeRequiresInputs(t *testing.T) {
	client := newTestClient(t, Options{})
	if _, err := client.Encode(context.Background(), EncodeRequest{}); err == nil {
		t.Fatal("expected error for empty path list")
	}
}

func TestNewRequiresAssetPath(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for missing asset path")
	}
}

func TestNewLoadsAssetFromDisk(t *testing.T) {
	dir := t.TempDir()
	assetPath := filepath.Join(dir, "model.3di")
	f, err := os.Create(assetPath)
	if err != nil {
		t.Fatalf("create asset file: %v", err)
	}
	if err := asset.Write(f, asset.Demo()); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close asset: %v", err)
	}

	client, err := New(Options{AssetPath: assetPath})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer client.Close()
	if client.Asset().StateCount() != 20 {
		t.Fatalf("unexpected alphabet size: %d", client.Asset().StateCount())
	}
}
