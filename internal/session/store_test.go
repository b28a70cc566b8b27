package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := s.Set(KeyUserID, "0812345678"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(KeyHasSubmitted, "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok := reopened.Get(KeyUserID); !ok || v != "0812345678" {
		t.Fatalf("user_id after reopen = %q %v", v, ok)
	}
	if v, _ := reopened.Get(KeyHasSubmitted); v != "true" {
		t.Fatalf("has_submitted after reopen = %q", v)
	}

	if err := reopened.Delete(KeyHasSubmitted); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	third, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen after delete: %v", err)
	}
	if _, ok := third.Get(KeyHasSubmitted); ok {
		t.Fatal("deleted key survived reopen")
	}
}

func TestFileStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore on corrupt file: %v", err)
	}
	if _, ok := s.Get(KeyUserID); ok {
		t.Fatal("corrupt file produced data")
	}
	if err := s.Set(KeyUserID, "0812345678"); err != nil {
		t.Fatalf("Set after corrupt load: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get("missing"); ok {
		t.Fatal("missing key reported present")
	}
	s.Set(KeyMuted, "true")
	if v, ok := s.Get(KeyMuted); !ok || v != "true" {
		t.Fatalf("Get = %q %v", v, ok)
	}
	s.Delete(KeyMuted)
	if _, ok := s.Get(KeyMuted); ok {
		t.Fatal("deleted key reported present")
	}
}
