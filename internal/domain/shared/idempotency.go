package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so that a
// retried request does not create a second record.
type IdempotencyStore interface {
	// Claim records key with a TTL. It returns true when the key was newly
	// claimed and false when it was already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so that a failed request can be retried.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
