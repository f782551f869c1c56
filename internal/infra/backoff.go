package infra

import (
	"time"

	"github.com/s2ungeda/kac/pkg/backoff"
)

const (
	// Standard backoff constants
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff duration for a given
// retry count: baseDelay * 2^retryCount, capped at maxDelay. If
// retryCount is negative it returns baseDelay.
func CalculateBackoff(retryCount int) time.Duration {
	return backoff.Delay(baseDelay, maxDelay, retryCount)
}
