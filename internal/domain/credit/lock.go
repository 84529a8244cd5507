package credit

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// LockKey hashes a user id to the advisory lock key guarding that user's balance.
// Every code path that checks then mutates a balance must hold it.
func LockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("credits:"))
	h.Write(userID[:])
	return int64(h.Sum64())
}
