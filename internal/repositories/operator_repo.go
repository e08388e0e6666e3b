package repositories

import (
	"context"

	"famledger/internal/models"

	"github.com/google/uuid"
)

// OperatorRepository reads the platform console identity table, which is
// fully independent of the end-user users table.
type OperatorRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

type operatorRepo struct {
	db PgxIface
}

func NewOperatorRepo(db PgxIface) OperatorRepository {
	return &operatorRepo{db: db}
}

func (r *operatorRepo) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	ident := &models.Identity{}
	query := `
		SELECT id, username, password_hash, salt, nickname, is_disabled, is_deleted
		FROM operators
		WHERE username = $1
	`
	err := r.db.QueryRow(ctx, query, username).Scan(&ident.ID, &ident.Username, &ident.PasswordHash, &ident.Salt, &ident.Nickname, &ident.IsDisabled, &ident.IsDeleted)
	if err != nil {
		return nil, err
	}
	return ident, nil
}

func (r *operatorRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	ident := &models.Identity{}
	query := `
		SELECT id, username, password_hash, salt, nickname, is_disabled, is_deleted
		FROM operators
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&ident.ID, &ident.Username, &ident.PasswordHash, &ident.Salt, &ident.Nickname, &ident.IsDisabled, &ident.IsDeleted)
	if err != nil {
		return nil, err
	}
	return ident, nil
}
