package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/groupapply/internal/database"
)

// Repository handles group data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new group repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository running its statements in tx
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

const memberColumns = `id, group_id, name, user_id, status, participation_status, created_at, updated_at`

// Create inserts a group and its members. Run it through WithTx so the
// group and its members land atomically.
func (r *Repository) Create(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO groups (id, owner_id, owner_name, job_id, required_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.OwnerID, g.OwnerName, g.JobID, g.RequiredCount, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, m := range g.Members {
		if err := r.AddMember(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a group with its members
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, owner_id, owner_name, job_id, required_count, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID,
		&g.OwnerID,
		&g.OwnerName,
		&g.JobID,
		&g.RequiredCount,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := r.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Members = members

	return g, nil
}

// ListForUser retrieves the groups userID owns or is a linked member of,
// optionally narrowed to one job, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string, jobID *string) ([]*Group, error) {
	filter := `(g.owner_id = $1 OR g.id IN (SELECT group_id FROM group_members WHERE user_id = $2))`
	args := []interface{}{userID, userID}
	if jobID != nil {
		filter += ` AND g.job_id = $3`
		args = append(args, *jobID)
	}

	query := `
		SELECT g.id, g.owner_id, g.owner_name, g.job_id, g.required_count, g.created_at, g.updated_at
		FROM groups g
		WHERE ` + filter + `
		ORDER BY g.created_at DESC, g.id
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := []*Group{}
	byID := make(map[string]*Group)
	for rows.Next() {
		g := &Group{Members: []*Member{}}
		if err := rows.Scan(
			&g.ID,
			&g.OwnerID,
			&g.OwnerName,
			&g.JobID,
			&g.RequiredCount,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
		byID[g.ID] = g
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	// members of every listed group in one pass
	members, err := r.listMembers(ctx, `
		SELECT m.id, m.group_id, m.name, m.user_id, m.status, m.participation_status, m.created_at, m.updated_at
		FROM group_members m
		JOIN groups g ON g.id = m.group_id
		WHERE `+filter+`
		ORDER BY m.created_at, m.id
	`, args...)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if g, ok := byID[m.GroupID]; ok {
			g.Members = append(g.Members, m)
		}
	}

	return groups, nil
}

// GetMembers retrieves all members of a group in join order
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	return r.listMembers(ctx, `
		SELECT `+memberColumns+`
		FROM group_members
		WHERE group_id = $1
		ORDER BY created_at, id
	`, groupID)
}

// AddMember inserts a member row. A duplicate (group, user) pair surfaces
// as a unique violation.
func (r *Repository) AddMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO group_members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.GroupID, m.Name, m.userIDColumn(), m.Status, m.ParticipationStatus, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateMemberStatus moves a pending member to status. It reports false
// when the member is missing or no longer pending.
func (r *Repository) UpdateMemberStatus(ctx context.Context, groupID, memberID string, status MemberStatus) (bool, error) {
	query := `
		UPDATE group_members
		SET status = $1, updated_at = $2
		WHERE id = $3 AND group_id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), memberID, groupID, MemberStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update member status: %w", err)
	}
	return affected(result)
}

// UpdateParticipation sets an approved member's participation status. It
// reports false when the member is missing or not approved.
func (r *Repository) UpdateParticipation(ctx context.Context, groupID, memberID string, status ParticipationStatus) (bool, error) {
	query := `
		UPDATE group_members
		SET participation_status = $1, updated_at = $2
		WHERE id = $3 AND group_id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), memberID, groupID, MemberStatusApproved)
	if err != nil {
		return false, fmt.Errorf("failed to update participation status: %w", err)
	}
	return affected(result)
}

// Touch bumps the group's updated_at
func (r *Repository) Touch(ctx context.Context, groupID string) error {
	query := `UPDATE groups SET updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), groupID); err != nil {
		return fmt.Errorf("failed to touch group: %w", err)
	}
	return nil
}

func (r *Repository) listMembers(ctx context.Context, query string, args ...interface{}) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		m := &Member{}
		var userID *string
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.Name,
			&userID,
			&m.Status,
			&m.ParticipationStatus,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Link = LinkFor(userID)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
