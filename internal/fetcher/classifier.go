package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
	"resty.dev/v3"

	"cryptotracker/internal/market"
)

// Classify maps a completed attempt to its Outcome. It is pure: no retries,
// no sleeps, no hidden state. Classifying the same captured response twice
// yields the same Outcome.
func Classify(resp *resty.Response, err error) Outcome {
	if err != nil {
		if isTimeout(err) {
			return Outcome{Kind: KindTimeout, Reason: "request timed out"}
		}
		return Outcome{Kind: KindTransient, Reason: fmt.Sprintf("network request failed: %v", err)}
	}

	status := resp.StatusCode()
	body := resp.Bytes()

	switch {
	case status == http.StatusTooManyRequests:
		return Outcome{Kind: KindRateLimited, Reason: errorMessage(body, status)}
	case status == http.StatusForbidden:
		return Outcome{Kind: KindForbidden, Reason: errorMessage(body, status)}
	case status == http.StatusNotFound:
		return Outcome{Kind: KindNotFound, Reason: errorMessage(body, status)}
	case !resp.IsSuccess():
		return Outcome{Kind: KindTransient, Reason: errorMessage(body, status)}
	}

	if _, err := market.ValidateDocument(body); err != nil {
		return Outcome{Kind: KindMalformed, Reason: err.Error()}
	}

	var assets []market.Asset
	if err := json.Unmarshal(body, &assets); err != nil {
		return Outcome{Kind: KindMalformed, Reason: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return Outcome{Kind: KindSuccess, Assets: assets}
}

// errorMessage extracts a structured error message from a non-2xx body,
// falling back to a generic status line when the body has none.
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"status.error_message", "error", "message"} {
			if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
