package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptotracker/internal/config"
	"cryptotracker/internal/fetcher"
	"cryptotracker/internal/poller"
	"cryptotracker/internal/ratelimit"
	"cryptotracker/internal/scheduler"
	"cryptotracker/internal/store"
	"cryptotracker/internal/watchlist"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	limiter := ratelimit.New(cfg.RequestsPerSecond)
	client := fetcher.NewClient(cfg.PrimaryBaseURL, cfg.BackupBaseURL, fetcher.Params{
		Currency:  cfg.VsCurrency,
		Order:     cfg.Order,
		PerPage:   cfg.PerPage,
		Page:      cfg.Page,
		Precision: cfg.Precision,
	}, cfg.FetchTimeout, limiter)

	st := store.New()
	sched := scheduler.New(scheduler.Config{
		MaxRetries:        cfg.MaxRetries,
		InitialRetryDelay: cfg.InitialRetryDelay,
		RateLimitDelay:    cfg.RateLimitDelay,
		FetchDeadline:     cfg.FetchTimeout,
	}, client, st.SetProgress, logger)

	wl := watchlist.New(watchlist.NewFileStore(cfg.WatchlistPath), logger)

	unsubscribe := st.Subscribe(func(snap store.Snapshot) {
		render(snap, wl)
	})
	defer unsubscribe()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	p := poller.New(poller.Config{
		Interval:      cfg.PollInterval,
		StartEndpoint: fetcher.EndpointPrimary,
	}, sched, poller.ResultHandlerFunc(st.Apply), logger)

	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
}

// render prints a terse snapshot of the top of the market to stdout, marking
// starred assets.
func render(snap store.Snapshot, wl *watchlist.Watchlist) {
	if snap.Retrying != nil {
		fmt.Printf("retrying (attempt %d of %d) in %s...\n",
			snap.Retrying.Attempt, snap.Retrying.MaxRetries, snap.Retrying.Delay)
		return
	}
	if snap.Err != "" {
		fmt.Printf("ERROR: %s\n", snap.Err)
		if len(snap.Assets) == 0 {
			return
		}
		fmt.Println("showing last known data:")
	}

	limit := 10
	if len(snap.Assets) < limit {
		limit = len(snap.Assets)
	}
	for _, a := range snap.Assets[:limit] {
		star := " "
		if wl.Contains(a.ID) {
			star = "*"
		}
		fmt.Printf("%s #%-3d %-8s $%.2f (%+.2f%%)\n",
			star, a.MarketCapRank, strings.ToUpper(a.Symbol), a.CurrentPrice, a.PriceChangePct24h)
	}
	if !snap.UpdatedAt.IsZero() {
		fmt.Printf("updated %s via %s endpoint\n",
			snap.UpdatedAt.Format(time.TimeOnly), snap.Endpoint)
	}
}
