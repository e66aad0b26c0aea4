package storage

import (
	"errors"
	"testing"

	"foldcode/internal/model"
)

func TestEntryCodecRoundTrip(t *testing.T) {
	entry := testEntry("e1", "b", 3)
	data, err := EncodeEntry(entry)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeEntry(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != entry.ID || decoded.States != entry.States || decoded.FileNumber != 3 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestDecodeEntryRejectsVersionMismatch(t *testing.T) {
	entry := testEntry("e1", "b", 0)
	entry.SchemaVersion = 99
	data, err := EncodeEntry(entry)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeEntry(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeEntryRejectsGarbage(t *testing.T) {
	if _, err := DecodeEntry([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBatchCodecRoundTrip(t *testing.T) {
	data, err := EncodeBatch(testBatch("b1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "b1" || decoded.Residues != 3 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestLookupCodecRoundTrip(t *testing.T) {
	in := []model.LookupEntry{{ID: "e1", EntryName: "d1", FileNumber: 2}}
	data, err := EncodeLookup(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeLookup(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
