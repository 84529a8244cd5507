//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgdb "github.com/alanyang/agent-market/internal/adapter/postgres"
)

func testURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	return url
}

func TestConnect_TagsApplicationName(t *testing.T) {
	pool, err := pgdb.Connect(context.Background(), testURL(t), pgdb.PoolOptions{})
	require.NoError(t, err)
	defer pool.Close()

	var name string
	require.NoError(t, pool.QueryRow(context.Background(), "SHOW application_name").Scan(&name))
	assert.Equal(t, pgdb.ApplicationName, name)
}

func TestConnect_MaxConnsHasFloor(t *testing.T) {
	tests := []struct {
		name string
		in   int32
		want int32
	}{
		{name: "raised to floor", in: 1, want: 4},
		{name: "kept above floor", in: 12, want: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := pgdb.Connect(context.Background(), testURL(t), pgdb.PoolOptions{MaxConns: tt.in})
			require.NoError(t, err)
			defer pool.Close()
			assert.Equal(t, tt.want, pool.Config().MaxConns)
		})
	}
}

func TestConnect_BadURL(t *testing.T) {
	_, err := pgdb.Connect(context.Background(), "postgres://%zz", pgdb.PoolOptions{})
	assert.ErrorContains(t, err, "parsing connection string")
}
