package query

import "time"

// maxRetryDelay caps the doubling retry delay.
const maxRetryDelay = 30 * time.Second

// Options is the per-kind fetch policy.
type Options struct {
	// StaleTime is how long a fetched value is served without revalidation.
	StaleTime time.Duration
	// GCTime is how long an entry is kept at all. Zero uses the cache default.
	GCTime time.Duration
	// Retry is the number of extra attempts after a transport failure.
	Retry int
	// RetryDelay is the wait before the first retry; it doubles per attempt.
	RetryDelay time.Duration
}

// DefaultOptions returns the policy for kind.
func DefaultOptions(kind Kind) Options {
	switch kind {
	case KindCurrent:
		return Options{StaleTime: 5 * time.Minute, Retry: 2, RetryDelay: time.Second}
	case KindForecast:
		return Options{StaleTime: 10 * time.Minute, Retry: 2, RetryDelay: time.Second}
	case KindSearch:
		return Options{StaleTime: 15 * time.Minute, Retry: 1, RetryDelay: time.Second}
	default:
		return Options{}
	}
}
