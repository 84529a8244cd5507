package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domainusage "github.com/alanyang/agent-market/internal/domain/usage"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Record(ctx context.Context, rec domainusage.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO usage_records (id, user_id, agent_id, developer_id, outcome, status_code,
			latency_ms, cost, error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.UserID, rec.AgentID, rec.DeveloperID, string(rec.Outcome), rec.StatusCode,
		rec.Latency.Milliseconds(), rec.Cost, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context, filters domainusage.ListFilters) ([]domainusage.Record, error) {
	query := `
		SELECT id, user_id, agent_id, developer_id, outcome, status_code, latency_ms, cost, error, created_at
		FROM usage_records WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filters.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filters.UserID)
		argIdx++
	}
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
	if filters.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.Since)
		argIdx++
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing usage: %w", err)
	}
	defer rows.Close()

	var out []domainusage.Record
	for rows.Next() {
		var rec domainusage.Record
		var latencyMS int64
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.AgentID, &rec.DeveloperID, &rec.Outcome,
			&rec.StatusCode, &latencyMS, &rec.Cost, &rec.Error, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		rec.Latency = time.Duration(latencyMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
