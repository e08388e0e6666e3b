package repositories

import (
	"context"

	"famledger/internal/models"

	"github.com/google/uuid"
)

type FamilyRepository interface {
	Create(ctx context.Context, family *models.Family) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error)
	Update(ctx context.Context, family *models.Family) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Family, error)
}

type familyRepo struct {
	db PgxIface
}

func NewFamilyRepo(db PgxIface) FamilyRepository {
	return &familyRepo{db: db}
}

func (r *familyRepo) Create(ctx context.Context, family *models.Family) error {
	query := `
		INSERT INTO families (id, name, owner_user_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, family.ID, family.Name, family.OwnerUserID)
	return err
}

func (r *familyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Family, error) {
	family := &models.Family{}
	query := `
		SELECT id, name, owner_user_id, created_at, updated_at
		FROM families
		WHERE id = $1 AND is_deleted = FALSE
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&family.ID, &family.Name, &family.OwnerUserID, &family.CreatedAt, &family.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return family, nil
}

func (r *familyRepo) Update(ctx context.Context, family *models.Family) error {
	query := `
		UPDATE families
		SET name = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
	`
	_, err := r.db.Exec(ctx, query, family.Name, family.ID)
	return err
}

func (r *familyRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE families
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// ListByUser returns the non-deleted families in which the user holds an
// active membership, most recently joined first.
func (r *familyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Family, error) {
	query := `
		SELECT f.id, f.name, f.owner_user_id, f.created_at, f.updated_at
		FROM families f
		JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = $1 AND fm.status = 'active' AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
		ORDER BY fm.joined_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []*models.Family
	for rows.Next() {
		family := &models.Family{}
		if err := rows.Scan(&family.ID, &family.Name, &family.OwnerUserID, &family.CreatedAt, &family.UpdatedAt); err != nil {
			return nil, err
		}
		families = append(families, family)
	}
	return families, rows.Err()
}
