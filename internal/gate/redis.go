package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces gate counters in Redis.
const DefaultKeyPrefix = "brandbot:gate:"

// acquireScript increments the counter only while it is below the limit.
// The TTL bounds how long a crashed process can hold slots.
var acquireScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return 0
end
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// releaseScript decrements the counter, flooring at zero.
var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 1 then
  redis.call('DEL', KEYS[1])
  return 0
end
return redis.call('DECR', KEYS[1])
`)

// Redis is a Gate shared by every process pointing at the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis gate.
type RedisOption func(*Redis)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithTTL sets how long an idle counter survives. Zero keeps the default.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ConnectRedis parses a redis:// URL and verifies the connection.
func ConnectRedis(ctx context.Context, redisURL string, opts ...RedisOption) (*Redis, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedis(client, opts...), nil
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// TryAcquire implements Gate.
func (r *Redis) TryAcquire(ctx context.Context, key string, limit int) (bool, error) {
	n, err := acquireScript.Run(ctx, r.client, []string{r.key(key)}, limit, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("gate acquire failed: %w", err)
	}
	return n == 1, nil
}

// Release implements Gate.
func (r *Redis) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key(key)}).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("gate release failed: %w", err)
	}
	return nil
}

// Active implements Gate.
func (r *Redis) Active(ctx context.Context, key string) (int, error) {
	n, err := r.client.Get(ctx, r.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("gate read failed: %w", err)
	}
	return n, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
