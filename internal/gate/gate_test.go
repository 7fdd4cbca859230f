package gate

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

// gates runs each test against both implementations.
func gates(t *testing.T) map[string]Gate {
	r, _ := newTestRedis(t)
	return map[string]Gate{
		"memory": NewMemory(),
		"redis":  r,
	}
}

func TestGate_HobbyAllowsOneRun(t *testing.T) {
	ctx := context.Background()
	for name, g := range gates(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := g.TryAcquire(ctx, "user-1", TierHobby.Limit())
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = g.TryAcquire(ctx, "user-1", TierHobby.Limit())
			require.NoError(t, err)
			assert.False(t, ok, "second run must be rejected")

			n, err := g.Active(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, 1, n, "rejection must not change the count")
		})
	}
}

func TestGate_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, g := range gates(t) {
		t.Run(name, func(t *testing.T) {
			ok, _ := g.TryAcquire(ctx, "a", 1)
			assert.True(t, ok)
			ok, _ = g.TryAcquire(ctx, "b", 1)
			assert.True(t, ok)
		})
	}
}

func TestGate_ReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	for name, g := range gates(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, g.Release(ctx, "user-1"))
			require.NoError(t, g.Release(ctx, "user-1"))

			n, err := g.Active(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			ok, err := g.TryAcquire(ctx, "user-1", 1)
			require.NoError(t, err)
			assert.True(t, ok, "spurious releases must not create extra capacity beyond the limit")
			ok, _ = g.TryAcquire(ctx, "user-1", 1)
			assert.False(t, ok)
		})
	}
}

func TestGate_RandomSequencesStayInBounds(t *testing.T) {
	ctx := context.Background()
	const limit = 3

	for name, g := range gates(t) {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			expected := 0
			for i := 0; i < 500; i++ {
				if rng.Intn(2) == 0 {
					ok, err := g.TryAcquire(ctx, "k", limit)
					require.NoError(t, err)
					assert.Equal(t, expected < limit, ok)
					if ok {
						expected++
					}
				} else {
					require.NoError(t, g.Release(ctx, "k"))
					if expected > 0 {
						expected--
					}
				}

				n, err := g.Active(ctx, "k")
				require.NoError(t, err)
				require.Equal(t, expected, n)
				require.GreaterOrEqual(t, n, 0)
				require.LessOrEqual(t, n, limit)
			}
		})
	}
}

func TestRedis_KeyPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	g := NewRedis(client, WithKeyPrefix("test:"))
	ok, err := g.TryAcquire(ctx, "user-9", 2)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, mr.Exists("test:user-9"))
	assert.Greater(t, mr.TTL("test:user-9"), time.Duration(0))
}

func TestConnectRedis_BadURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "://not-a-url")
	assert.Error(t, err)
}

func TestConnectRedis_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	g, err := ConnectRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer g.Close()

	ok, err := g.TryAcquire(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
