//go:build integration

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
)

// SetupTestDB connects to the test database and applies the schema.
// It skips the test if TEST_DATABASE_URL is not set.
// Every call shares one database; callers isolate by seeding fresh profiles.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping test DB: %v", err)
	}

	applyMigrations(t, pool)

	t.Cleanup(func() { pool.Close() })
	return pool
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "adapter", "postgres", "migrations")

	migrations := []string{"001_initial.sql"}
	for _, name := range migrations {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			t.Logf("migration %s: %v (may already be applied)", name, err)
		}
	}
}

// SeedProfile inserts a profile with a unique email and returns it.
func SeedProfile(t *testing.T, pool *pgxpool.Pool, role domainprofile.Role) domainprofile.Profile {
	t.Helper()
	p := domainprofile.Profile{
		ID:          uuid.New(),
		DisplayName: "tester",
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	p.Email = p.ID.String() + "@example.test"
	_, err := pool.Exec(context.Background(), `
		INSERT INTO profiles (id, email, display_name, role, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.Email, p.DisplayName, string(p.Role), p.CreatedAt)
	require.NoError(t, err)
	return p
}
