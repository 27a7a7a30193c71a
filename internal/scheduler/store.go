package scheduler

import (
	"context"
	"time"
)

// ViewStore persists view counters and retired posts across restarts.
// It is implemented by the Redis store; a nil ViewStore keeps everything in
// memory.
type ViewStore interface {
	AllViews(ctx context.Context) (map[string]int64, error)
	DeleteViews(ctx context.Context, id string) error
	SyncRetired(ctx context.Context, retired map[string]time.Time, revived []string) error
	Retired(ctx context.Context) (map[string]time.Time, error)
}

// Trigger requests a reload without blocking. It reports false when a
// request is already pending.
func Trigger(ch chan<- struct{}) bool {
	select {
	case ch <- struct{}{}:
		return true
	default:
		return false
	}
}
