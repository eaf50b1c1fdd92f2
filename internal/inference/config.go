package inference

import "time"

// Limits and retry defaults shared by every provider.
const (
	// MaxInputChars bounds the serialized input of a single analysis.
	MaxInputChars = 2_000_000
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the wait before the first retry; it doubles after each one.
	DefaultRetryDelay = time.Second
)

// Config holds configuration for inference providers.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	// RateLimit is the request budget per minute. Zero disables limiting.
	RateLimit  int
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}
