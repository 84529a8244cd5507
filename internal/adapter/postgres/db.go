package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags every connection in pg_stat_activity.
const ApplicationName = "agent-market"

// maxConnsFloor leaves room for the three realtime LISTEN connections, which
// are held for the life of the process, plus one for queries.
const maxConnsFloor = 4

type PoolOptions struct {
	// MaxConns overrides pgx's default pool size when positive. It is raised
	// to maxConnsFloor if set lower.
	MaxConns int32
}

// Connect opens and pings a pool for the marketplace.
func Connect(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	if opts.MaxConns > 0 {
		config.MaxConns = max(opts.MaxConns, maxConnsFloor)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
