package gate

import "context"

// Gate counts active runs per key against a caller-supplied limit.
type Gate interface {
	// TryAcquire takes a slot if fewer than limit are held for key.
	// It returns false, with no side effects, when the limit is reached.
	TryAcquire(ctx context.Context, key string, limit int) (bool, error)
	// Release gives a slot back. The count never drops below zero.
	Release(ctx context.Context, key string) error
	// Active returns the number of slots currently held for key.
	Active(ctx context.Context, key string) (int, error)
}
