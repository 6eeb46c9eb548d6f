package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring the poll/retry pipeline
var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "markets_poll_cycles_total",
		Help: "Settled poll cycles by outcome",
	}, []string{"outcome"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "markets_fetch_retries_total",
		Help: "Retries scheduled within poll cycles, by trigger",
	}, []string{"reason"})

	FailoversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "markets_endpoint_failovers_total",
		Help: "Primary to backup endpoint switches",
	})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "markets_fetch_duration_seconds",
		Help:    "Duration of individual fetch attempts",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	LastSuccessTime = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "markets_last_success_timestamp_seconds",
		Help: "Unix time of the last successful poll cycle",
	})

	SnapshotAssets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "markets_snapshot_assets",
		Help: "Number of assets in the current snapshot",
	})
)
