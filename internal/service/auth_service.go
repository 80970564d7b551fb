package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/comanda-app/comanda/internal/auth"
	"github.com/comanda-app/comanda/internal/models"
	"github.com/comanda-app/comanda/internal/storage"
)

// AuthService logs members and admins in and manages member accounts.
// Token issuance itself lives in the auth package; this service owns the
// business rules around it (active flag, role assignment).
type AuthService struct {
	store         storage.Store
	jwt           *auth.JWTManager
	adminPassword string
}

// NewAuthService wires an AuthService. adminPassword guards the restaurant
// panel login.
func NewAuthService(store storage.Store, jwt *auth.JWTManager, adminPassword string) *AuthService {
	return &AuthService{store: store, jwt: jwt, adminPassword: adminPassword}
}

// MemberLogin verifies a member's credentials and issues a member token.
// Deactivated members cannot log in.
func (s *AuthService) MemberLogin(ctx context.Context, email, password string) (string, *models.Member, error) {
	member, err := s.store.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, auth.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := auth.VerifyPassword(member.PasswordHash, password); err != nil {
		return "", nil, err
	}
	if !member.Active {
		return "", nil, auth.ErrInactiveAccount
	}

	token, err := s.jwt.Generate(member.ID, auth.RoleMember)
	if err != nil {
		return "", nil, err
	}
	slog.Info("member logged in", "member_id", member.ID)
	return token, member, nil
}

// AdminLogin checks the panel password and issues an admin token.
func (s *AuthService) AdminLogin(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return "", auth.ErrInvalidCredentials
	}
	return s.jwt.Generate("", auth.RoleAdmin)
}

// Member returns a member by id.
func (s *AuthService) Member(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, id)
		}
		return nil, err
	}
	return member, nil
}

// ListMembers returns all members ordered by name.
func (s *AuthService) ListMembers(ctx context.Context) ([]*models.Member, error) {
	return s.store.ListMembers(ctx)
}

// CreateMemberRequest is the admin payload for registering a member.
type CreateMemberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// CreateMember registers a new active member with a hashed password.
func (s *AuthService) CreateMember(ctx context.Context, req CreateMemberRequest) (*models.Member, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Active:       true,
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	slog.Info("member created", "member_id", member.ID)
	return member, nil
}

// UpdateMemberRequest carries optional member fields; nil means unchanged.
type UpdateMemberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"phone"`
	Active   *bool   `json:"active"`
}

// UpdateMember applies the provided fields to an existing member.
// Deactivation goes through here; members are never deleted.
func (s *AuthService) UpdateMember(ctx context.Context, id string, req UpdateMemberRequest) (*models.Member, error) {
	member, err := s.Member(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Active != nil {
		member.Active = *req.Active
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		member.PasswordHash = hash
	}

	if err := s.store.UpdateMember(ctx, member); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}
