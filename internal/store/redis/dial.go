package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

// DialOptions configures the view counter client and how long Dial keeps
// pinging before giving up.
type DialOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
	PoolSize int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Pings start RetryInterval apart and back off up to MaxWait until
	// ConnectTimeout has elapsed.
	ConnectTimeout time.Duration
	RetryInterval  time.Duration
	MaxWait        time.Duration
	PingTimeout    time.Duration

	// Failed attempts past WarnAfter are logged as errors.
	WarnAfter int
}

func (o DialOptions) validate() error {
	var err error
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	} {
		if d.val <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be > 0, got %v", d.name, d.val))
		}
	}
	if o.WarnAfter < 0 {
		err = multierr.Append(err, fmt.Errorf("WarnAfter must be >= 0, got %d", o.WarnAfter))
	}
	return err
}

// Dial opens the client and waits until Redis answers. The client is closed
// when Redis stays unreachable or ctx ends first.
func Dial(ctx context.Context, opts DialOptions, log logger.Logger) (*Store, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if err := waitReady(ctx, client, opts, log.With(logger.String("addr", opts.Addr))); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewStore(client), nil
}

// backoff doubles the delay on every call, capped at max.
type backoff struct {
	next, max time.Duration
}

func (b *backoff) delay() time.Duration {
	d := b.next
	b.next = min(b.next*2, b.max)
	return min(d, b.max)
}

func waitReady(parent context.Context, client redis.UniversalClient, opts DialOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting to redis for view counters", logger.Duration("timeout", opts.ConnectTimeout))
	start := time.Now()
	b := backoff{next: opts.RetryInterval, max: opts.MaxWait}

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()
		if err == nil {
			log.Info("connected to redis",
				logger.Int("attempts", attempt),
				logger.Duration("elapsed", time.Since(start)))
			return nil
		}

		wait := b.delay()
		logf := log.Warn
		if attempt > opts.WarnAfter {
			logf = log.Error
		}
		logf("redis ping failed",
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", wait),
			logger.Error(err))

		select {
		case <-ctx.Done():
			if parent.Err() != nil {
				return fmt.Errorf("redis dial %s canceled: %w", opts.Addr, parent.Err())
			}
			log.Error("redis unreachable, giving up", logger.Int("attempts", attempt))
			return fmt.Errorf("redis unreachable at %s after %d attempts in %v: %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)
		case <-time.After(wait):
		}
	}
}
