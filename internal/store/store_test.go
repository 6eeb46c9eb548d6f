package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/internal/fetcher"
	"cryptotracker/internal/market"
	"cryptotracker/internal/scheduler"
)

func assets(ids ...string) []market.Asset {
	out := make([]market.Asset, len(ids))
	for i, id := range ids {
		out[i] = market.Asset{ID: id, Symbol: id, Name: id, MarketCapRank: i + 1}
	}
	return out
}

func TestStore_ApplySuccess(t *testing.T) {
	s := New()
	fetched := time.Now()

	s.Apply(scheduler.Result{
		Assets:    assets("bitcoin", "ethereum"),
		Endpoint:  fetcher.EndpointPrimary,
		FetchedAt: fetched,
	})

	snap := s.Snapshot()
	assert.Len(t, snap.Assets, 2)
	assert.Equal(t, fetched, snap.UpdatedAt)
	assert.Equal(t, fetcher.EndpointPrimary, snap.Endpoint)
	assert.Empty(t, snap.Err)
	assert.Nil(t, snap.Retrying)
}

func TestStore_FailurePreservesLastGoodDataset(t *testing.T) {
	s := New()
	fetched := time.Now()

	s.Apply(scheduler.Result{
		Assets:    assets("bitcoin"),
		Endpoint:  fetcher.EndpointPrimary,
		FetchedAt: fetched,
	})
	s.Apply(scheduler.Result{
		Endpoint: fetcher.EndpointBackup,
		Err:      errors.New("rate limit exceeded"),
	})

	snap := s.Snapshot()
	assert.Len(t, snap.Assets, 1, "a failed cycle must not clear displayed data")
	assert.Equal(t, fetched, snap.UpdatedAt, "timestamp still refers to the last good dataset")
	assert.Equal(t, "rate limit exceeded", snap.Err)
	assert.Equal(t, fetcher.EndpointBackup, snap.Endpoint)
}

func TestStore_SuccessClearsError(t *testing.T) {
	s := New()

	s.Apply(scheduler.Result{Err: errors.New("invalid data format")})
	s.Apply(scheduler.Result{Assets: assets("bitcoin"), FetchedAt: time.Now()})

	snap := s.Snapshot()
	assert.Empty(t, snap.Err)
	assert.Len(t, snap.Assets, 1)
}

func TestStore_NewResultSupersedesOld(t *testing.T) {
	s := New()

	s.Apply(scheduler.Result{Assets: assets("bitcoin", "ethereum"), FetchedAt: time.Now()})
	s.Apply(scheduler.Result{Assets: assets("tether"), FetchedAt: time.Now()})

	snap := s.Snapshot()
	require.Len(t, snap.Assets, 1)
	assert.Equal(t, "tether", snap.Assets[0].ID)
}

func TestStore_ProgressSurfacedAndClearedOnSettle(t *testing.T) {
	s := New()

	s.SetProgress(scheduler.Progress{Delay: 5 * time.Second, Attempt: 2, MaxRetries: 5})
	snap := s.Snapshot()
	require.NotNil(t, snap.Retrying)
	assert.Equal(t, 2, snap.Retrying.Attempt)
	assert.Equal(t, 5*time.Second, snap.Retrying.Delay)

	s.Apply(scheduler.Result{Assets: assets("bitcoin"), FetchedAt: time.Now()})
	assert.Nil(t, s.Snapshot().Retrying, "settlement clears in-flight retry status")
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	s := New()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	s.Apply(scheduler.Result{Assets: assets("bitcoin"), FetchedAt: time.Now()})
	s.SetProgress(scheduler.Progress{Attempt: 1, MaxRetries: 5})
	require.Len(t, got, 2)
	assert.Len(t, got[0].Assets, 1)
	assert.NotNil(t, got[1].Retrying)

	unsubscribe()
	s.Apply(scheduler.Result{Assets: assets("ethereum"), FetchedAt: time.Now()})
	assert.Len(t, got, 2, "no notifications after unsubscribe")
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	s.Apply(scheduler.Result{Assets: assets("bitcoin"), FetchedAt: time.Now()})

	snap := s.Snapshot()
	snap.Assets[0].ID = "mutated"

	assert.Equal(t, "bitcoin", s.Snapshot().Assets[0].ID, "consumers must not be able to mutate the store")
}
