package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get for a missing or expired id.
var ErrNotFound = errors.New("session: not found")

// Store persists encoded sessions. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	// Set stores data under id, replacing any previous value, for ttl.
	Set(ctx context.Context, id string, data []byte, ttl time.Duration) error
	// Touch pushes the expiry of id to ttl from now. It returns ErrNotFound
	// for a missing or expired id.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	Close() error
}
