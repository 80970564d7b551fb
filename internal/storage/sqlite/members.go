package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/storage"
)

// GetMember retrieves a member by id.
func (s *SQLiteStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.getMemberBy(ctx, "id = ?", id)
}

// GetMemberByEmail retrieves a member by login email.
func (s *SQLiteStore) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.getMemberBy(ctx, "email = ?", email)
}

func (s *SQLiteStore) getMemberBy(ctx context.Context, where string, arg any) (*models.Member, error) {
	member := &models.Member{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, phone, active, created_at FROM members WHERE "+where, arg,
	).Scan(&member.ID, &member.Name, &member.Email, &member.PasswordHash, &member.Phone, &member.Active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.CreatedAt = time.Unix(createdAt, 0).UTC()
	return member, nil
}

// ListMembers returns all members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, password_hash, phone, active, created_at FROM members ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var createdAt int64
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.PasswordHash, &member.Phone, &member.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.CreatedAt = time.Unix(createdAt, 0).UTC()
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// CreateMember persists a new member.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, name, email, password_hash, phone, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		member.ID, member.Name, member.Email, member.PasswordHash, member.Phone, member.Active, member.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// UpdateMember saves the member's mutable fields.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET name = ?, email = ?, password_hash = ?, phone = ?, active = ? WHERE id = ?",
		member.Name, member.Email, member.PasswordHash, member.Phone, member.Active, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s: %w", member.ID, storage.ErrNotFound)
	}
	return nil
}
