package services

import (
	"context"
	"errors"
	"fmt"

	"famledger/internal/models"
	"famledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// IdentityStore is the identity-table lookup the auth service needs. Both
// the end-user and the operator repositories implement it, which is what
// keeps the two login surfaces on independent tables.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

// AuthService turns credentials into a single live session token. The
// membership and role repositories are optional; the operator console
// instance runs without them.
type AuthService struct {
	ids         IdentityStore
	tokens      *TokenService
	memberships repositories.MembershipRepository
	roles       repositories.RoleRepository
}

func NewAuthService(ids IdentityStore, tokens *TokenService, memberships repositories.MembershipRepository, roles repositories.RoleRepository) *AuthService {
	return &AuthService{
		ids:         ids,
		tokens:      tokens,
		memberships: memberships,
		roles:       roles,
	}
}

// Login verifies the credentials, supersedes any previous session for the
// user, and returns the new token together with the default-family role
// context when one exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	ident, err := s.ids.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	if ident.IsDeleted {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, ident.Salt, ident.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if ident.IsDisabled {
		return nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(ctx, ident.ID, ident.Username)
	if err != nil {
		return nil, err
	}

	response := &models.LoginResponse{
		UserID:      ident.ID,
		Username:    ident.Username,
		Nickname:    ident.Nickname,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokens.TTLSeconds(),
	}

	if s.memberships != nil {
		member, err := s.memberships.GetDefaultActive(ctx, ident.ID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("default membership lookup failed: %w", err)
			}
			return response, nil
		}
		response.FamilyID = &member.FamilyID
		response.RoleID = &member.RoleID
		if s.roles != nil {
			role, err := s.roles.GetByID(ctx, member.RoleID)
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("role lookup failed: %w", err)
				}
			} else {
				response.RoleName = &role.Name
			}
		}
	}

	return response, nil
}

// Logout revokes the session for the token. Unknown tokens succeed.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// FindIdentity loads the identity row for an authenticated subject
func (s *AuthService) FindIdentity(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return s.ids.FindByID(ctx, id)
}
