// Package certificate decides when a certificate may be issued and renders it.
package certificate

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	NotEligible Status = "NOT_ELIGIBLE"
	Processing  Status = "PROCESSING"
	Available   Status = "AVAILABLE"
)

// DefaultDelay is how long after a passing exam the certificate stays in processing.
const DefaultDelay = 48 * time.Hour

// DefaultPrefix is used when no certificate prefix is configured.
const DefaultPrefix = "CERT"

// Gate is evaluated lazily on read; nothing flips the state in the background.
func Gate(availableAt *time.Time, now time.Time) Status {
	if availableAt == nil || availableAt.IsZero() {
		return NotEligible
	}
	if now.Before(*availableAt) {
		return Processing
	}
	return Available
}

func AvailableAt(passedAt time.Time, delay time.Duration) time.Time {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return passedAt.Add(delay)
}

// NewNumber returns PREFIX-XXXXXXXX built from the first eight hex digits of a UUID.
func NewNumber(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:8])
}
