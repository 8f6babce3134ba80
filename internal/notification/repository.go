package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupapply/internal/database"
)

// Repository handles notification data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new notification repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

const notificationColumns = `id, user_id, type, job_id, job_title, from_user_name, message, is_read, created_at`

// Create inserts a new notification into the database
func (r *Repository) Create(ctx context.Context, userID string, typ Type, p Payload) (*Notification, error) {
	n := &Notification{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         typ,
		JobID:        optional(p.JobID),
		JobTitle:     optional(p.JobTitle),
		FromUserName: optional(p.FromUserName),
		Message:      p.Message,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.JobID, n.JobTitle, n.FromUserName, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

// GetByID retrieves a notification by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByUserID retrieves a user's notifications, newest first
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkAsRead flips the read flag and reports whether a row changed
func (r *Repository) MarkAsRead(ctx context.Context, id string) (bool, error) {
	query := `UPDATE notifications SET is_read = $1 WHERE id = $2 AND is_read = $3`
	result, err := r.db.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET is_read = $1 WHERE user_id = $2 AND is_read = $3`
	if _, err := r.db.ExecContext(ctx, query, true, userID, false); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *Repository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = $2`
	if err := r.db.QueryRowContext(ctx, query, userID, false).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row scanner) (*Notification, error) {
	n := &Notification{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.JobID,
		&n.JobTitle,
		&n.FromUserName,
		&n.Message,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
