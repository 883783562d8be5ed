// Package ratelimit counts login attempts per key inside a fixed window.
package ratelimit

import "context"

// Limiter reports whether another attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	Close() error
}

// Noop allows everything. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) bool { return true }
func (Noop) Close() error                       { return nil }
