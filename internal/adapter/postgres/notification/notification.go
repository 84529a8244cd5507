package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, n domainnotification.Notification) (domainnotification.Notification, error) {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, read_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, user_id, kind, title, body, read_at, created_at`

	var created domainnotification.Notification
	err := r.pool.QueryRow(ctx, query,
		n.ID, n.UserID, string(n.Kind), n.Title, n.Body, n.ReadAt, n.CreatedAt,
	).Scan(
		&created.ID, &created.UserID, &created.Kind, &created.Title,
		&created.Body, &created.ReadAt, &created.CreatedAt,
	)
	if err != nil {
		return domainnotification.Notification{}, fmt.Errorf("inserting notification: %w", err)
	}
	return created, nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID, filters domainnotification.ListFilters) ([]domainnotification.Notification, error) {
	query := `SELECT id, user_id, kind, title, body, read_at, created_at FROM notifications WHERE user_id = $1`
	args := []interface{}{userID}
	if filters.UnreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, filters.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var out []domainnotification.Notification
	for rows.Next() {
		var n domainnotification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, NOW()) WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainnotification.ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
