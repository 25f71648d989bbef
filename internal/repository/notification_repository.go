package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, session_id, kind, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.SessionID,
		n.Kind,
		n.Message,
		n.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const query = `
		SELECT id, user_id, session_id, kind, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.SessionID,
			&n.Kind,
			&n.Message,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, userID string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// PurgeRead drops read notifications older than the retention window.
func (r *NotificationRepository) PurgeRead(ctx context.Context, retentionDays int) (int64, error) {
	const query = `
		DELETE FROM notifications
		WHERE read = TRUE AND created_at < NOW() - make_interval(days => $1)
	`
	cmd, err := r.pool.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
