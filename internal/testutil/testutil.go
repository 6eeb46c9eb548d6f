package testutil

import (
	"context"
	"net/http"
	"sync"

	"cryptotracker/internal/fetcher"
)

// ScriptedFetcher replays a fixed sequence of outcomes while recording the
// requests it saw. After the script is exhausted it keeps returning the last
// outcome.
type ScriptedFetcher struct {
	mu       sync.Mutex
	Outcomes []fetcher.Outcome
	requests []fetcher.Request
}

// NewScriptedFetcher creates a fetcher replaying the given outcomes in order.
func NewScriptedFetcher(outcomes ...fetcher.Outcome) *ScriptedFetcher {
	return &ScriptedFetcher{Outcomes: outcomes}
}

// Fetch implements the scheduler's Fetcher interface.
func (s *ScriptedFetcher) Fetch(ctx context.Context, req fetcher.Request) fetcher.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i >= len(s.Outcomes) {
		i = len(s.Outcomes) - 1
	}
	return s.Outcomes[i]
}

// Requests returns a copy of the requests seen so far.
func (s *ScriptedFetcher) Requests() []fetcher.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fetcher.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// MarketsJSON is a well-formed three-asset /coins/markets payload used across
// tests.
const MarketsJSON = `[
	{
		"id": "bitcoin",
		"symbol": "btc",
		"name": "Bitcoin",
		"image": "https://assets.example/btc.png",
		"current_price": 64250.12,
		"price_change_percentage_24h": 1.84,
		"market_cap": 1265000000000,
		"total_volume": 28400000000,
		"market_cap_rank": 1,
		"high_24h": 65100.00,
		"low_24h": 62900.50,
		"circulating_supply": 19690000
	},
	{
		"id": "ethereum",
		"symbol": "eth",
		"name": "Ethereum",
		"image": "https://assets.example/eth.png",
		"current_price": 3150.40,
		"price_change_percentage_24h": -0.52,
		"market_cap": 378000000000,
		"total_volume": 14100000000,
		"market_cap_rank": 2,
		"high_24h": 3201.00,
		"low_24h": 3088.20,
		"circulating_supply": 120200000
	},
	{
		"id": "tether",
		"symbol": "usdt",
		"name": "Tether",
		"image": "https://assets.example/usdt.png",
		"current_price": 1.00,
		"price_change_percentage_24h": 0.01,
		"market_cap": 110000000000,
		"total_volume": 53000000000,
		"market_cap_rank": 3,
		"high_24h": 1.001,
		"low_24h": 0.999,
		"circulating_supply": 110000000000
	}
]`

// ScriptedHandler returns each scripted HTTP response in order, then keeps
// repeating the last one. It also counts requests.
type ScriptedHandler struct {
	mu        sync.Mutex
	Responses []ScriptedResponse
	hits      int
}

// ScriptedResponse is one canned HTTP reply.
type ScriptedResponse struct {
	Status int
	Body   string
}

// ServeHTTP implements http.Handler.
func (h *ScriptedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	i := h.hits
	h.hits++
	if i >= len(h.Responses) {
		i = len(h.Responses) - 1
	}
	resp := h.Responses[i]
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}

// Hits returns the number of requests served.
func (h *ScriptedHandler) Hits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits
}
