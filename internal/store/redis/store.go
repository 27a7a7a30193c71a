package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists view counters and retired posts so they survive restarts.
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a new Redis store
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		client: client,
	}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// IncrementViews adds one view to a post and returns the new count.
func (s *Store) IncrementViews(ctx context.Context, id string) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, ViewsKey(id))
	pipe.SAdd(ctx, KeyKnownPosts, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return incr.Val(), nil
}

// GetViews returns the view count of a post, 0 when it has none.
func (s *Store) GetViews(ctx context.Context, id string) (int64, error) {
	n, err := s.client.Get(ctx, ViewsKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get views: %w", err)
	}
	return n, nil
}

// AllViews returns the counters of every known post.
func (s *Store) AllViews(ctx context.Context) (map[string]int64, error) {
	ids, err := s.client.SMembers(ctx, KeyKnownPosts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get known posts: %w", err)
	}
	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.Get(ctx, ViewsKey(id))
	}
	// redis.Nil for posts whose counter expired or was deleted is expected.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get views: %w", err)
	}

	views := make(map[string]int64, len(ids))
	for id, cmd := range cmds {
		n, err := cmd.Int64()
		if err != nil {
			// Skip counters that couldn't be read
			continue
		}
		views[id] = n
	}
	return views, nil
}

// DeleteViews removes every trace of a post.
func (s *Store) DeleteViews(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, ViewsKey(id))
	pipe.SRem(ctx, KeyKnownPosts, id)
	pipe.HDel(ctx, KeyRetiredPosts, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete views: %w", err)
	}
	return nil
}

// SyncRetired records newly retired posts and clears revived ones in one
// round trip. Existing retirement times are kept.
func (s *Store) SyncRetired(ctx context.Context, retired map[string]time.Time, revived []string) error {
	if len(retired) == 0 && len(revived) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for id, at := range retired {
		pipe.HSetNX(ctx, KeyRetiredPosts, id, at.Unix())
	}
	if len(revived) > 0 {
		pipe.HDel(ctx, KeyRetiredPosts, revived...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save retired posts: %w", err)
	}
	return nil
}

// Retired returns the retired posts with their retirement time.
func (s *Store) Retired(ctx context.Context) (map[string]time.Time, error) {
	raw, err := s.client.HGetAll(ctx, KeyRetiredPosts).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get retired posts: %w", err)
	}

	out := make(map[string]time.Time, len(raw))
	for id, v := range raw {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[id] = time.Unix(sec, 0)
	}
	return out, nil
}
