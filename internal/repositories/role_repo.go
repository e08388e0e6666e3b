package repositories

import (
	"context"

	"famledger/internal/models"

	"github.com/google/uuid"
)

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByCode(ctx context.Context, familyID uuid.UUID, code string) (*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	SetDisabled(ctx context.Context, familyID, id uuid.UUID, disabled bool) error
	SoftDelete(ctx context.Context, familyID, id uuid.UUID) error
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.Role, error)
}

type roleRepo struct {
	db PgxIface
}

func NewRoleRepo(db PgxIface) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, code, name, family_id, is_disabled, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, role.ID, role.Code, role.Name, role.FamilyID)
	return err
}

func (r *roleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, code, name, family_id, is_disabled, is_deleted, created_at, updated_at
		FROM roles
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.Code, &role.Name, &role.FamilyID, &role.IsDisabled, &role.IsDeleted, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) GetByCode(ctx context.Context, familyID uuid.UUID, code string) (*models.Role, error) {
	role := &models.Role{}
	query := `
		SELECT id, code, name, family_id, is_disabled, is_deleted, created_at, updated_at
		FROM roles
		WHERE family_id = $1 AND code = $2 AND is_deleted = FALSE
	`
	err := r.db.QueryRow(ctx, query, familyID, code).Scan(&role.ID, &role.Code, &role.Name, &role.FamilyID, &role.IsDisabled, &role.IsDeleted, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *roleRepo) Update(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE roles
		SET code = $1, name = $2, updated_at = NOW()
		WHERE id = $3 AND family_id = $4 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, role.Code, role.Name, role.ID, role.FamilyID)
	return err
}

func (r *roleRepo) SetDisabled(ctx context.Context, familyID, id uuid.UUID, disabled bool) error {
	query := `
		UPDATE roles
		SET is_disabled = $1, updated_at = NOW()
		WHERE id = $2 AND family_id = $3 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, disabled, id, familyID)
	return err
}

func (r *roleRepo) SoftDelete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		UPDATE roles
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND family_id = $2
	`
	_, err := r.db.Exec(ctx, query, id, familyID)
	return err
}

func (r *roleRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.Role, error) {
	query := `
		SELECT id, code, name, family_id, is_disabled, is_deleted, created_at, updated_at
		FROM roles
		WHERE family_id = $1 AND is_deleted = FALSE
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Code, &role.Name, &role.FamilyID, &role.IsDisabled, &role.IsDeleted, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
