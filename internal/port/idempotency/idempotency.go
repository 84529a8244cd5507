package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// Store remembers the result of an operation under a client-chosen key.
// Keys are scoped to (userID, opType); the same key from two users names two
// different operations.
type Store interface {
	Check(ctx context.Context, userID uuid.UUID, opType, key string) ([]byte, bool, error)
	Store(ctx context.Context, userID uuid.UUID, opType, key string, resultJSON []byte) error
}
