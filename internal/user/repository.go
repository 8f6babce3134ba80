package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/groupapply/internal/database"
)

// Repository handles user and friend persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Upsert creates the user or refreshes their display name and email
func (r *Repository) Upsert(ctx context.Context, id, name string, email *string) (*User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name,
		    email = COALESCE(excluded.email, users.email),
		    updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, id, name, email, now, now); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("failed to upsert user: row %s vanished", id)
	}
	return user, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// AddFriendEdge writes the directed edge userID -> friendID if it is missing
func (r *Repository) AddFriendEdge(ctx context.Context, userID, friendID string) error {
	query := `
		INSERT INTO friends (user_id, friend_user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, friend_user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, friendID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

// ListFriends retrieves the outgoing friend edges of a user. Friends without
// a synced profile are listed under their id.
func (r *Repository) ListFriends(ctx context.Context, userID string) ([]*Friend, error) {
	query := `
		SELECT f.friend_user_id, COALESCE(u.name, f.friend_user_id), f.created_at
		FROM friends f
		LEFT JOIN users u ON u.id = f.friend_user_id
		WHERE f.user_id = $1
		ORDER BY f.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []*Friend{}
	for rows.Next() {
		friend := &Friend{}
		if err := rows.Scan(&friend.UserID, &friend.Name, &friend.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	return friends, nil
}
