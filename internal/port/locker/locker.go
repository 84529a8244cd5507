package locker

import "context"

// AdvisoryLocker serialises critical sections using Postgres session advisory locks.
// Credit mutations for one user run under the same key so balance checks and
// ledger writes never interleave.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
