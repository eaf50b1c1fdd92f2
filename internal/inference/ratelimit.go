package inference

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// newRateLimiter creates a token bucket allowing requestsPerMinute calls per
// minute with a full bucket at start. Zero or less means unlimited.
func newRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute)
}

// waitForToken blocks until the limiter admits one request or ctx is done.
func waitForToken(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter canceled: %w", err)
	}
	return nil
}
