package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 500 * time.Millisecond

var _ httprate.LimitCounter = (*Counter)(nil)

// Counter is a fixed-window httprate.LimitCounter kept in redis. Redis
// failures are logged and the request is let through.
type Counter struct {
	rdb          redis.Cmdable
	prefix       string
	windowLength time.Duration
	lg           logger.Logger
}

func NewCounter(rdb redis.Cmdable, class string, lg logger.Logger) *Counter {
	return &Counter{
		rdb:          rdb,
		prefix:       "ratelimit:" + class + ":",
		windowLength: time.Minute,
		lg:           lg,
	}
}

func (c *Counter) Config(_ int, windowLength time.Duration) {
	c.windowLength = windowLength
}

func (c *Counter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *Counter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	k := c.key(key, currentWindow)

	pipe := c.rdb.TxPipeline()
	pipe.IncrBy(ctx, k, int64(amount))
	pipe.Expire(ctx, k, c.windowLength*2) //nolint:gomnd

	if _, err := pipe.Exec(ctx); err != nil {
		c.lg.Errorf("rate limit increment %s error: %s", k, err.Error())
	}

	return nil
}

// Get reports no previous window count, which turns httprate's sliding
// estimate into a fixed window.
func (c *Counter) Get(key string, currentWindow, _ time.Time) (int, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	k := c.key(key, currentWindow)

	n, err := c.rdb.Get(ctx, k).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.lg.Errorf("rate limit get %s error: %s", k, err.Error())
		}

		return 0, 0, nil
	}

	return n, 0, nil
}

func (c *Counter) key(key string, window time.Time) string {
	return c.prefix + key + ":" + strconv.FormatInt(window.Unix(), 10)
}
