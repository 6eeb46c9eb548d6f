package fetcher

import "cryptotracker/internal/market"

// Kind categorizes the classified result of one fetch attempt.
type Kind int

const (
	// KindSuccess indicates a well-formed, non-empty dataset was received
	KindSuccess Kind = iota
	// KindTransient indicates a retryable failure (network error, 5xx, etc.)
	KindTransient
	// KindRateLimited indicates the request was rejected with HTTP 429
	KindRateLimited
	// KindForbidden indicates the request was rejected with HTTP 403
	KindForbidden
	// KindNotFound indicates the resource is missing (HTTP 404)
	KindNotFound
	// KindMalformed indicates a 2xx response whose body broke the contract
	KindMalformed
	// KindTimeout indicates the attempt exceeded its deadline
	KindTimeout
)

// String returns the kind's name for logging and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a single fetch attempt. Exactly one is
// produced per attempt. Assets is set only for KindSuccess; Reason carries a
// human-readable message for the failure kinds.
type Outcome struct {
	Kind   Kind
	Assets []market.Asset
	Reason string
}
