package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprofile "github.com/alanyang/agent-market/internal/domain/profile"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainprofile.Profile, error) {
	var p domainprofile.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name, role, created_at FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprofile.Profile{}, domainprofile.ErrNotFound
		}
		return domainprofile.Profile{}, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// Create is used by seeding and integration tests; sign-up happens upstream.
func (r *Repository) Create(ctx context.Context, p domainprofile.Profile) (domainprofile.Profile, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, email, display_name, role, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.Email, p.DisplayName, string(p.Role), p.CreatedAt)
	if err != nil {
		return domainprofile.Profile{}, fmt.Errorf("inserting profile: %w", err)
	}
	return p, nil
}
