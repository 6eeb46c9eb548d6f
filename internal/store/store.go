package store

import (
	"slices"
	"sync"
	"time"

	"cryptotracker/internal/fetcher"
	"cryptotracker/internal/market"
	"cryptotracker/internal/metrics"
	"cryptotracker/internal/scheduler"
)

// Snapshot is the consumer-visible view of the poller: the last good dataset,
// when and from where it was fetched, the current error message if the latest
// cycle failed, and any in-flight retry progress. A failed cycle never clears
// previously displayed data.
type Snapshot struct {
	Assets    []market.Asset
	UpdatedAt time.Time
	Endpoint  fetcher.Endpoint
	Err       string
	Retrying  *scheduler.Progress
}

// Store holds the current Snapshot and fans out changes to subscribers.
// Each settled cycle replaces the visible state atomically; subscribers
// never observe a partial update.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

// New creates an empty Store.
func New() *Store {
	return &Store{subs: make(map[int]func(Snapshot))}
}

// Apply records a settled cycle. On success it replaces the dataset, clears
// the error and stamps the serving endpoint and time; on failure it keeps the
// last good dataset and surfaces the message.
func (s *Store) Apply(res scheduler.Result) {
	s.mu.Lock()
	s.snap.Retrying = nil
	s.snap.Endpoint = res.Endpoint
	if res.Err != nil {
		s.snap.Err = res.Err.Error()
	} else {
		s.snap.Assets = res.Assets
		s.snap.UpdatedAt = res.FetchedAt
		s.snap.Err = ""
	}
	metrics.SnapshotAssets.Set(float64(len(s.snap.Assets)))
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(snap)
	}
}

// SetProgress surfaces in-flight retry status for the current cycle.
func (s *Store) SetProgress(p scheduler.Progress) {
	s.mu.Lock()
	s.snap.Retrying = &p
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, cb := range subs {
		cb(snap)
	}
}

// Snapshot returns a copy of the current view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers cb to receive every snapshot change and returns its
// unsubscribe function. Callbacks run on the publishing goroutine and must
// not block.
func (s *Store) Subscribe(cb func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := s.snap
	snap.Assets = slices.Clone(s.snap.Assets)
	if s.snap.Retrying != nil {
		p := *s.snap.Retrying
		snap.Retrying = &p
	}
	return snap
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, cb := range s.subs {
		subs = append(subs, cb)
	}
	return subs
}
