package storage

import (
	"path/filepath"
	"testing"
)

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestNewStoreDefaultsToMemory(t *testing.T) {
	store, err := NewStore("", "")
	if err != nil {
		t.Fatalf("new default store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("default store is %T", store)
	}
}

func TestNewStoreLevelDB(t *testing.T) {
	store, err := NewStore("leveldb", filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("new leveldb store: %v", err)
	}
	if _, ok := store.(*LevelDBStore); !ok {
		t.Fatalf("leveldb store is %T", store)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	if _, err := NewStore("unknown", ""); err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestCloseIfSupported(t *testing.T) {
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("memory store close: %v", err)
	}
	if err := CloseIfSupported(NewLevelDBStore("")); err != nil {
		t.Fatalf("unopened leveldb close: %v", err)
	}
}
