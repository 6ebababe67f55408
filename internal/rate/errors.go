package rate

import "errors"

var (
	// ErrRateLimited is returned once a counter has passed its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps every Redis failure seen by the limiter.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
