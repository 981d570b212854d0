// Package services holds the engagement and notification pipeline: counts,
// the notification generator, the aggregated feed and the unread watermark.
package services

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthorized is returned when a caller acts on something it does not own
	ErrUnauthorized = errors.New("not allowed")
	// ErrInvalidKind is returned for an unknown engagement kind
	ErrInvalidKind = errors.New("invalid engagement kind")
)

// DefaultQueryTimeout bounds every storage operation when no timeout is configured
const DefaultQueryTimeout = 5 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}
