package fetcher

import (
	"context"
	"strconv"
	"time"

	"resty.dev/v3"
)

// Endpoint selects which configured base URL an attempt targets.
type Endpoint int

const (
	// EndpointPrimary is the preferred data source
	EndpointPrimary Endpoint = iota
	// EndpointBackup is the fallback mirror
	EndpointBackup
)

// String returns the endpoint's name for logging and metrics labels.
func (e Endpoint) String() string {
	if e == EndpointBackup {
		return "backup"
	}
	return "primary"
}

// Params are the market query parameters sent on every attempt.
type Params struct {
	Currency  string
	Order     string
	PerPage   int
	Page      int
	Precision int
}

// Request describes one fetch attempt. It is created per attempt and
// discarded after classification.
type Request struct {
	Endpoint Endpoint
	Attempt  int
	Deadline time.Duration
}

// Limiter paces outbound requests per endpoint.
type Limiter interface {
	Wait(ctx context.Context, endpoint Endpoint) error
}

// Client performs one bounded-duration markets request per Fetch call.
// Retry and failover decisions belong to the caller; the client never
// retries on its own.
type Client struct {
	clients [2]*resty.Client
	params  Params
	limiter Limiter
	timeout time.Duration
}

// NewClient creates a client for the primary/backup endpoint pair. timeout is
// the hard per-attempt deadline; limiter may be nil to disable pacing.
func NewClient(primaryURL, backupURL string, params Params, timeout time.Duration, limiter Limiter) *Client {
	return &Client{
		clients: [2]*resty.Client{
			newHTTPClient(primaryURL),
			newHTTPClient(backupURL),
		},
		params:  params,
		limiter: limiter,
		timeout: timeout,
	}
}

func newHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Cache-Control", "no-cache")
}

// Fetch issues the markets request described by req and classifies the
// result. The deadline cancels the in-flight call; a transport that completes
// after cancellation is discarded.
func (c *Client) Fetch(ctx context.Context, req Request) Outcome {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, req.Endpoint); err != nil {
			return Outcome{Kind: KindTransient, Reason: "rate limiter wait aborted: " + err.Error()}
		}
	}

	timeout := req.Deadline
	if timeout <= 0 {
		timeout = c.timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.clients[req.Endpoint].R().
		SetContext(attemptCtx).
		SetQueryParams(map[string]string{
			"vs_currency": c.params.Currency,
			"order":       c.params.Order,
			"per_page":    strconv.Itoa(c.params.PerPage),
			"page":        strconv.Itoa(c.params.Page),
			"sparkline":   "false",
			"locale":      "en",
			"precision":   strconv.Itoa(c.params.Precision),
		}).
		Get("/coins/markets")

	return Classify(resp, err)
}
