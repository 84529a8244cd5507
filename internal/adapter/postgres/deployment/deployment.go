package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaindeployment "github.com/alanyang/agent-market/internal/domain/deployment"
)

const columns = `id, agent_id, developer_id, environment, endpoint, status, detail, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, d domaindeployment.Deployment) (domaindeployment.Deployment, error) {
	query := `
		INSERT INTO deployments (` + columns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING ` + columns

	created, err := scan(r.pool.QueryRow(ctx, query,
		d.ID, d.AgentID, d.DeveloperID, d.Environment, d.Endpoint,
		string(d.Status), d.Detail, d.CreatedAt, d.UpdatedAt,
	))
	if err != nil {
		return domaindeployment.Deployment{}, fmt.Errorf("inserting deployment: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaindeployment.Deployment, error) {
	d, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM deployments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domaindeployment.Deployment{}, domaindeployment.ErrNotFound
		}
		return domaindeployment.Deployment{}, fmt.Errorf("querying deployment: %w", err)
	}
	return d, nil
}

func (r *Repository) List(ctx context.Context, filters domaindeployment.ListFilters) ([]domaindeployment.Deployment, error) {
	query := `SELECT ` + columns + ` FROM deployments WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filters.DeveloperID != nil {
		query += fmt.Sprintf(" AND developer_id = $%d", argIdx)
		args = append(args, *filters.DeveloperID)
		argIdx++
	}
	if filters.AgentID != nil {
		query += fmt.Sprintf(" AND agent_id = $%d", argIdx)
		args = append(args, *filters.AgentID)
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filters.Status))
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deployments: %w", err)
	}
	defer rows.Close()

	var out []domaindeployment.Deployment
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deployment row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domaindeployment.Status, detail string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deployments SET status = $1, detail = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		string(to), detail, id, string(from))
	if err != nil {
		return fmt.Errorf("updating deployment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deployment %s not in status %s: %w", id, from, domaindeployment.ErrInvalidTransition)
	}
	return nil
}

func scan(row pgx.Row) (domaindeployment.Deployment, error) {
	var d domaindeployment.Deployment
	err := row.Scan(
		&d.ID, &d.AgentID, &d.DeveloperID, &d.Environment, &d.Endpoint,
		&d.Status, &d.Detail, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}
