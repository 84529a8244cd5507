package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
)

const columns = `id, developer_id, name, description, category, tags, price_per_call,
	api_endpoint, api_key, status, featured, rating, review_count, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error) {
	query := `
		INSERT INTO agents (` + columns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING ` + columns

	created, err := scanAgent(r.pool.QueryRow(ctx, query,
		a.ID, a.DeveloperID, a.Name, a.Description, a.Category, a.Tags, a.PricePerCall,
		a.APIEndpoint, a.APIKey, string(a.Status), a.Featured, a.Rating, a.ReviewCount,
		a.CreatedAt, a.UpdatedAt,
	))
	if err != nil {
		return domainagent.Agent{}, fmt.Errorf("inserting agent: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainagent.Agent, error) {
	a, err := scanAgent(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM agents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainagent.Agent{}, domainagent.ErrNotFound
		}
		return domainagent.Agent{}, fmt.Errorf("querying agent: %w", err)
	}
	return a, nil
}

// List applies the storage-level filters (developer, status, category).
// Free-text search and ordering other than newest happen in the domain.
func (r *Repository) List(ctx context.Context, filters domainagent.ListFilters) ([]domainagent.Agent, error) {
	query := `SELECT ` + columns + ` FROM agents WHERE 1=1`

	args := []interface{}{}
	argIdx := 1

	if filters.DeveloperID != nil {
		query += fmt.Sprintf(" AND developer_id = $%d", argIdx)
		args = append(args, *filters.DeveloperID)
		argIdx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filters.Status))
		argIdx++
	}
	if filters.Category != nil {
		query += fmt.Sprintf(" AND lower(category) = lower($%d)", argIdx)
		args = append(args, *filters.Category)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var agents []domainagent.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent row: %w", err)
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *Repository) Update(ctx context.Context, a domainagent.Agent) (domainagent.Agent, error) {
	query := `
		UPDATE agents SET name = $2, description = $3, category = $4, tags = $5,
			price_per_call = $6, api_endpoint = $7, api_key = $8, updated_at = $9
		WHERE id = $1
		RETURNING ` + columns

	updated, err := scanAgent(r.pool.QueryRow(ctx, query,
		a.ID, a.Name, a.Description, a.Category, a.Tags,
		a.PricePerCall, a.APIEndpoint, a.APIKey, a.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainagent.Agent{}, domainagent.ErrNotFound
		}
		return domainagent.Agent{}, fmt.Errorf("updating agent: %w", err)
	}
	return updated, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domainagent.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE agents SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("updating agent status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s not in status %s: %w", id, from, domainagent.ErrInvalidStatus)
	}
	return nil
}

// AddReview inserts the review and refreshes the agent's rating aggregate in one transaction.
func (r *Repository) AddReview(ctx context.Context, rv domainagent.Review) (domainagent.Review, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO agent_reviews (id, agent_id, user_id, rating, comment, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			rv.ID, rv.AgentID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting review: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			UPDATE agents SET
				rating = (SELECT AVG(rating)::float8 FROM agent_reviews WHERE agent_id = $1),
				review_count = (SELECT COUNT(*) FROM agent_reviews WHERE agent_id = $1)
			WHERE id = $1`, rv.AgentID)
		if err != nil {
			return fmt.Errorf("refreshing rating: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domainagent.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domainagent.Review{}, err
	}
	return rv, nil
}

func (r *Repository) ListReviews(ctx context.Context, agentID uuid.UUID) ([]domainagent.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, agent_id, user_id, rating, comment, created_at
		FROM agent_reviews WHERE agent_id = $1 ORDER BY created_at DESC`, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domainagent.Review
	for rows.Next() {
		var rv domainagent.Review
		if err := rows.Scan(&rv.ID, &rv.AgentID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func scanAgent(row pgx.Row) (domainagent.Agent, error) {
	var a domainagent.Agent
	err := row.Scan(
		&a.ID, &a.DeveloperID, &a.Name, &a.Description, &a.Category, &a.Tags,
		&a.PricePerCall, &a.APIEndpoint, &a.APIKey, &a.Status, &a.Featured,
		&a.Rating, &a.ReviewCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domainagent.Agent{}, err
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, nil
}
