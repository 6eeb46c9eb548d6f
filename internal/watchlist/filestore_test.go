package watchlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	store := NewFileStore(path)

	in := map[string]struct{}{
		"bitcoin":  {},
		"ethereum": {},
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Load() returned %d ids, want 2", len(out))
	}
	for id := range in {
		if _, ok := out[id]; !ok {
			t.Errorf("Load() missing id %q", id)
		}
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error for missing file: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Load() returned %d ids for missing file, want 0", len(out))
	}
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if _, err := store.Load(); err == nil {
		t.Error("Load() expected error for corrupt file, got nil")
	}
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "watchlist.json")
	store := NewFileStore(path)

	if err := store.Save(map[string]struct{}{"bitcoin": {}}); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if _, ok := out["bitcoin"]; !ok {
		t.Error("Load() missing id saved to nested path")
	}
}

func TestFileStore_LastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	store := NewFileStore(path)

	if err := store.Save(map[string]struct{}{"bitcoin": {}, "ethereum": {}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(map[string]struct{}{"tether": {}}); err != nil {
		t.Fatal(err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("Load() returned %d ids, want 1", len(out))
	}
	if _, ok := out["tether"]; !ok {
		t.Error("Load() missing id from the last write")
	}
}
