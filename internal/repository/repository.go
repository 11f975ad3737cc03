package repository

import (
	"context"
	"time"

	"github.com/30-dung/salon-web/internal/domain"
)

// SessionRepository defines the interface for session persistence operations.
type SessionRepository interface {
	// Get retrieves a session by its id.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save persists a session, overwriting any existing one with the same id.
	// ttl bounds how long the session lives; zero uses the repository default.
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error

	// Delete removes a session by its id.
	Delete(ctx context.Context, id string) error
}

// SubmitGuard rejects a second submission of the same booking while the
// first is in flight or just completed.
type SubmitGuard interface {
	// Acquire reports whether the caller holds the key for ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the key early, e.g. after a failed submission.
	Release(ctx context.Context, key string) error
}

// Cache stores short-lived JSON documents such as catalog lists.
type Cache interface {
	// Get decodes the cached value into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores v under key for ttl.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}
