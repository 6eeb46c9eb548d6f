package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"cryptotracker/internal/fetcher"
	"cryptotracker/internal/market"
	"cryptotracker/internal/metrics"
)

// Terminal cycle failures surfaced to the consumer boundary.
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrAccessDenied      = errors.New("access denied")
	ErrNotAvailable      = errors.New("requested data not available")
	ErrInvalidData       = errors.New("invalid data format")
)

// Fetcher performs one classified fetch attempt.
type Fetcher interface {
	Fetch(ctx context.Context, req fetcher.Request) fetcher.Outcome
}

// Config bounds a cycle's retry behavior.
type Config struct {
	MaxRetries        int           // Attempts per endpoint before a retryable failure turns terminal
	InitialRetryDelay time.Duration // Base of the exponential transient backoff
	RateLimitDelay    time.Duration // Fixed wait after HTTP 429
	FetchDeadline     time.Duration // Hard per-attempt deadline
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        5,
		InitialRetryDelay: 1 * time.Second,
		RateLimitDelay:    5 * time.Second,
		FetchDeadline:     20 * time.Second,
	}
}

// Progress reports an imminent retry wait so a caller can render
// "retrying, attempt k of n" while a cycle is still in flight.
type Progress struct {
	Delay      time.Duration
	Attempt    int
	MaxRetries int
	Endpoint   fetcher.Endpoint
}

// Result is the settled state of one poll cycle. Err is nil on success;
// otherwise it carries the terminal failure and Assets is empty. Endpoint is
// the endpoint the cycle ended on and seeds the next cycle's start.
type Result struct {
	Assets    []market.Asset
	Endpoint  fetcher.Endpoint
	FetchedAt time.Time
	Attempts  int
	Err       error
}

// Scheduler drives one poll cycle at a time through retry, backoff and
// endpoint failover. It owns all waiting; the fetcher never retries.
type Scheduler struct {
	cfg      Config
	fetch    Fetcher
	progress func(Progress)
	logger   *slog.Logger
}

// New creates a Scheduler. progress may be nil; logger defaults to
// slog.Default().
func New(cfg Config, f Fetcher, progress func(Progress), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:      cfg,
		fetch:    f,
		progress: progress,
		logger:   logger,
	}
}

// Run executes one cycle starting on start and returns its settled Result.
// The returned error is non-nil only when ctx is canceled mid-cycle; the
// Result is then meaningless and must be discarded.
//
// Transition rules, by classified outcome:
//   - Success: settle with the payload.
//   - RateLimited: fixed delay, same endpoint, until attempts run out.
//   - Forbidden: switch primary to backup once, resetting the attempt count;
//     forbidden on backup is terminal.
//   - NotFound, Malformed: terminal immediately.
//   - Timeout on the very first attempt on primary: try the backup before
//     backing off; any later timeout is treated as transient.
//   - Transient: exponential backoff, same endpoint, until attempts run out.
func (s *Scheduler) Run(ctx context.Context, start fetcher.Endpoint) (Result, error) {
	endpoint := start
	attempt := 0
	transientWaits := retry.NewExponential(s.cfg.InitialRetryDelay)
	rateLimitWaits := retry.NewConstant(s.cfg.RateLimitDelay)

	for {
		began := time.Now()
		out := s.fetch.Fetch(ctx, fetcher.Request{
			Endpoint: endpoint,
			Attempt:  attempt,
			Deadline: s.cfg.FetchDeadline,
		})
		metrics.FetchDuration.WithLabelValues(endpoint.String()).Observe(time.Since(began).Seconds())

		// A result that arrives after teardown is advisory only.
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		switch out.Kind {
		case fetcher.KindSuccess:
			s.logger.Info("poll cycle succeeded",
				"endpoint", endpoint,
				"assets", len(out.Assets),
				"attempts", attempt,
			)
			metrics.CyclesTotal.WithLabelValues("succeeded").Inc()
			metrics.LastSuccessTime.SetToCurrentTime()
			return Result{
				Assets:    out.Assets,
				Endpoint:  endpoint,
				FetchedAt: time.Now(),
				Attempts:  attempt,
			}, nil

		case fetcher.KindRateLimited:
			attempt++
			if attempt >= s.cfg.MaxRetries {
				return s.settleFailed(ErrRateLimitExceeded, endpoint, attempt), nil
			}
			delay, _ := rateLimitWaits.Next()
			if err := s.waitBeforeRetry(ctx, out.Kind, delay, attempt, endpoint); err != nil {
				return Result{}, err
			}

		case fetcher.KindForbidden:
			if endpoint == fetcher.EndpointPrimary {
				s.failover(endpoint, "access denied by primary endpoint")
				endpoint = fetcher.EndpointBackup
				attempt = 0
				transientWaits = retry.NewExponential(s.cfg.InitialRetryDelay)
				continue
			}
			return s.settleFailed(ErrAccessDenied, endpoint, attempt), nil

		case fetcher.KindNotFound:
			return s.settleFailed(ErrNotAvailable, endpoint, attempt), nil

		case fetcher.KindMalformed:
			s.logger.Warn("malformed payload", "endpoint", endpoint, "reason", out.Reason)
			return s.settleFailed(ErrInvalidData, endpoint, attempt), nil

		default: // KindTimeout and KindTransient
			if out.Kind == fetcher.KindTimeout && attempt == 0 && endpoint == fetcher.EndpointPrimary {
				// An unresponsive primary is cause to try the mirror
				// before backing off.
				s.failover(endpoint, "primary endpoint unresponsive")
				endpoint = fetcher.EndpointBackup
				continue
			}
			attempt++
			if attempt >= s.cfg.MaxRetries {
				return s.settleFailed(errors.New(out.Reason), endpoint, attempt), nil
			}
			delay, _ := transientWaits.Next()
			if err := s.waitBeforeRetry(ctx, out.Kind, delay, attempt, endpoint); err != nil {
				return Result{}, err
			}
		}
	}
}

// waitBeforeRetry publishes retry progress and sleeps for delay, returning
// early if ctx is canceled.
func (s *Scheduler) waitBeforeRetry(ctx context.Context, kind fetcher.Kind, delay time.Duration, attempt int, endpoint fetcher.Endpoint) error {
	s.logger.Info("retrying poll cycle",
		"reason", kind,
		"delay", delay,
		"attempt", attempt,
		"max_retries", s.cfg.MaxRetries,
		"endpoint", endpoint,
	)
	metrics.RetriesTotal.WithLabelValues(kind.String()).Inc()
	if s.progress != nil {
		s.progress(Progress{
			Delay:      delay,
			Attempt:    attempt,
			MaxRetries: s.cfg.MaxRetries,
			Endpoint:   endpoint,
		})
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Scheduler) failover(from fetcher.Endpoint, reason string) {
	s.logger.Warn("switching to backup endpoint", "from", from, "reason", reason)
	metrics.FailoversTotal.Inc()
}

func (s *Scheduler) settleFailed(err error, endpoint fetcher.Endpoint, attempts int) Result {
	s.logger.Error("poll cycle failed",
		"error", err,
		"endpoint", endpoint,
		"attempts", attempts,
	)
	metrics.CyclesTotal.WithLabelValues("failed").Inc()
	return Result{
		Endpoint: endpoint,
		Attempts: attempts,
		Err:      err,
	}
}
