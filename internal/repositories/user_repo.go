package repositories

import (
	"context"

	"famledger/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, nickname string) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountByUsername(ctx context.Context, username string) (int, error)

	// Identity lookups used by the auth service
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

type userRepo struct {
	db PgxIface
}

func NewUserRepo(db PgxIface) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, salt, nickname, is_disabled, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.Salt, user.Nickname)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, nickname, is_disabled, created_at, updated_at
		FROM users
		WHERE id = $1 AND is_deleted = FALSE
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Nickname, &user.IsDisabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, nickname string) error {
	query := `
		UPDATE users
		SET nickname = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, nickname, id)
	return err
}

func (r *userRepo) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	query := `
		UPDATE users
		SET is_disabled = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, disabled, id)
	return err
}

func (r *userRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) CountByUsername(ctx context.Context, username string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&count)
	return count, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	ident := &models.Identity{}
	query := `
		SELECT id, username, password_hash, salt, nickname, is_disabled, is_deleted
		FROM users
		WHERE username = $1
	`
	err := r.db.QueryRow(ctx, query, username).Scan(&ident.ID, &ident.Username, &ident.PasswordHash, &ident.Salt, &ident.Nickname, &ident.IsDisabled, &ident.IsDeleted)
	if err != nil {
		return nil, err
	}
	return ident, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	ident := &models.Identity{}
	query := `
		SELECT id, username, password_hash, salt, nickname, is_disabled, is_deleted
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&ident.ID, &ident.Username, &ident.PasswordHash, &ident.Salt, &ident.Nickname, &ident.IsDisabled, &ident.IsDeleted)
	if err != nil {
		return nil, err
	}
	return ident, nil
}
