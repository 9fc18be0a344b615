// Package webhook verifies and decodes signed provider callbacks and routes
// them to ledger handlers.
package webhook

import (
	"net/http"
	"time"
)

// Delivery is what a verifier learned from the signed headers.
type Delivery struct {
	ID        string
	Timestamp time.Time
}

// Verifier authenticates a raw body against provider headers. It must not
// interpret the body beyond the bytes it signs.
type Verifier interface {
	Verify(body []byte, headers http.Header) (Delivery, error)
}

// withinTolerance reports whether ts is no further than tolerance from now.
// A non-positive tolerance disables the check.
func withinTolerance(ts, now time.Time, tolerance time.Duration, allowFuture bool) bool {
	if tolerance <= 0 {
		return true
	}
	age := now.Sub(ts)
	if age > tolerance {
		return false
	}
	if !allowFuture && -age > tolerance {
		return false
	}
	return true
}
