package watchlist

import (
	"log/slog"
	"sort"
	"sync"
)

// Storage persists the starred-id set. Both calls are best-effort with
// last-write-wins semantics; the in-memory set stays authoritative when a
// call fails.
type Storage interface {
	Load() (map[string]struct{}, error)
	Save(ids map[string]struct{}) error
}

// Watchlist is the user's starred-asset set, backed by an injected Storage.
type Watchlist struct {
	mu      sync.Mutex
	ids     map[string]struct{}
	storage Storage
	logger  *slog.Logger
}

// New creates a Watchlist seeded from storage. storage may be nil for a
// purely in-memory list.
func New(storage Storage, logger *slog.Logger) *Watchlist {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watchlist{
		ids:     make(map[string]struct{}),
		storage: storage,
		logger:  logger,
	}
	if storage != nil {
		ids, err := storage.Load()
		if err != nil {
			w.logger.Warn("failed to load watchlist", "error", err)
		} else if ids != nil {
			w.ids = ids
		}
	}
	return w
}

// Toggle flips membership for id, persists the set fire-and-forget, and
// reports the new membership.
func (w *Watchlist) Toggle(id string) bool {
	w.mu.Lock()
	if _, ok := w.ids[id]; ok {
		delete(w.ids, id)
	} else {
		w.ids[id] = struct{}{}
	}
	_, member := w.ids[id]
	snapshot := make(map[string]struct{}, len(w.ids))
	for k := range w.ids {
		snapshot[k] = struct{}{}
	}
	w.mu.Unlock()

	if w.storage != nil {
		if err := w.storage.Save(snapshot); err != nil {
			w.logger.Warn("failed to save watchlist", "id", id, "error", err)
		}
	}
	return member
}

// Contains reports whether id is starred.
func (w *Watchlist) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.ids[id]
	return ok
}

// IDs returns the starred ids in sorted order.
func (w *Watchlist) IDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.ids))
	for id := range w.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
