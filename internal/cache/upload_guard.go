package cache

import (
	"context"
	"fmt"
	"time"
)

// UploadGuard tracks bad receipt uploads per user. A user reaching the limit
// inside the window is refused until the window expires.
type UploadGuard struct {
	counter Counter
	limit   int
	window  time.Duration
}

// NewUploadGuard creates a new UploadGuard.
func NewUploadGuard(counter Counter, limit int, window time.Duration) *UploadGuard {
	return &UploadGuard{
		counter: counter,
		limit:   limit,
		window:  window,
	}
}

// keyBadUploads returns the Redis key counting a user's bad uploads.
func (g *UploadGuard) keyBadUploads(userID string) string {
	return fmt.Sprintf("upload:bad:%s", userID)
}

// Allowed reports whether userID may upload. A non-positive limit disables the guard.
func (g *UploadGuard) Allowed(ctx context.Context, userID string) (bool, error) {
	if g.limit <= 0 {
		return true, nil
	}
	n, err := g.counter.GetInt(ctx, g.keyBadUploads(userID))
	if err != nil {
		return false, fmt.Errorf("failed to read bad upload count: %w", err)
	}
	return n < int64(g.limit), nil
}

// RecordBad counts one bad upload and returns the count in the current window.
func (g *UploadGuard) RecordBad(ctx context.Context, userID string) (int64, error) {
	n, err := g.counter.IncrWithTTL(ctx, g.keyBadUploads(userID), g.window)
	if err != nil {
		return 0, fmt.Errorf("failed to record bad upload: %w", err)
	}
	return n, nil
}
