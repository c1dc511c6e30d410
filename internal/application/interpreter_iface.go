package application

import (
	"context"
	"time"
)

// CommandLimiter throttles operator commands. Implemented by the Redis fixed-window limiter.
type CommandLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// InterpreterOptions tune the driver. Zero values disable rate limiting.
type InterpreterOptions struct {
	SendTimeout time.Duration
	RateLimit   int
	RateWindow  time.Duration
}
