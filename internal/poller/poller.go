package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cryptotracker/internal/fetcher"
	"cryptotracker/internal/scheduler"
)

// CycleRunner settles one poll cycle starting on the given endpoint.
type CycleRunner interface {
	Run(ctx context.Context, start fetcher.Endpoint) (scheduler.Result, error)
}

// ResultHandler receives each settled cycle result.
type ResultHandler interface {
	HandleResult(res scheduler.Result)
}

// ResultHandlerFunc is a function adapter for ResultHandler.
type ResultHandlerFunc func(scheduler.Result)

func (f ResultHandlerFunc) HandleResult(res scheduler.Result) {
	f(res)
}

// Config holds poll loop configuration.
type Config struct {
	Interval      time.Duration    // Wait between a cycle's settlement and the next cycle
	StartEndpoint fetcher.Endpoint // Endpoint seeding the first cycle
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:      60 * time.Second,
		StartEndpoint: fetcher.EndpointPrimary,
	}
}

// Poller drives cycles on a completion-gated cadence: a new cycle is armed
// only after the previous one settles, then waits the interval. Cycles never
// overlap, and the endpoint a cycle ends on seeds the next cycle, so a
// sustained backup fallback persists instead of re-probing primary each time.
type Poller struct {
	cfg     Config
	runner  CycleRunner
	handler ResultHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Poller.
func New(cfg Config, runner CycleRunner, handler ResultHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		runner:  runner,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("market poller started",
		"interval", p.cfg.Interval,
		"start_endpoint", p.cfg.StartEndpoint,
	)
}

// Stop tears down the loop: it cancels any in-flight cycle and pending timer
// and waits for the loop goroutine to exit. No further cycles run after Stop
// returns.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("market poller stopped")
}

func (p *Poller) run() {
	defer p.wg.Done()

	endpoint := p.cfg.StartEndpoint
	for {
		res, err := p.runner.Run(p.ctx, endpoint)
		if err != nil {
			// Canceled mid-cycle; the partial result is discarded.
			return
		}
		endpoint = res.Endpoint
		p.handler.HandleResult(res)

		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-p.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
