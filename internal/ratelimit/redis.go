package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "checkout:ratelimit:"
	redisCallTimeout = 500 * time.Millisecond
)

var _ httprate.LimitCounter = (*redisCounter)(nil)

// A window key lives for two windows so it can still serve as the previous
// window of the next one.
var incrScript = redis.NewScript(`
local n = redis.call('INCRBY', KEYS[1], ARGV[1])
if n == tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return n
`)

type redisCounter struct {
	client redis.UniversalClient
	window time.Duration
}

// NewRedisCounter stores httprate window counters in Redis so that every
// instance shares them.
func NewRedisCounter(client redis.UniversalClient) *redisCounter {
	return &redisCounter{client: client}
}

func (c *redisCounter) Config(_ int, windowLength time.Duration) {
	c.window = windowLength
}

func (c *redisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

func (c *redisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	const op = "ratelimit.redisCounter.IncrementBy"

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	err := incrScript.Run(ctx, c.client, []string{windowKey(key, currentWindow)}, amount, (2 * c.window).Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *redisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	const op = "ratelimit.redisCounter.Get"

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	vals, err := c.client.MGet(ctx, windowKey(key, currentWindow), windowKey(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	curr, err := count(vals[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: current window: %w", op, err)
	}
	prev, err := count(vals[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: previous window: %w", op, err)
	}

	return curr, prev, nil
}

func windowKey(key string, window time.Time) string {
	return keyPrefix + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

func count(v any) (int, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.Atoi(s)
	default:
		return 0, errors.New("unexpected counter value")
	}
}
