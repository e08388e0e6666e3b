package repositories

import (
	"context"
	"time"

	"famledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MembershipRepository interface {
	Create(ctx context.Context, member *models.FamilyMember) error
	GetActive(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error)
	GetDefaultActive(ctx context.Context, userID uuid.UUID) (*models.FamilyMember, error)
	GetByFamilyAndUser(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error)
	UpdateStatus(ctx context.Context, familyID, id uuid.UUID, status string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SweepStaleInvites(ctx context.Context, olderThan time.Time) (int64, error)
}

type membershipRepo struct {
	db PgxIface
}

func NewMembershipRepo(db PgxIface) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, member *models.FamilyMember) error {
	query := `
		INSERT INTO family_members (id, family_id, user_id, role_id, status, is_deleted, joined_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
	`
	_, err := r.db.Exec(ctx, query, member.ID, member.FamilyID, member.UserID, member.RoleID, member.Status)
	return err
}

// GetActive resolves the membership authorization state for an explicit
// family: the (family, user) pair with status=active in a live family.
func (r *membershipRepo) GetActive(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error) {
	member := &models.FamilyMember{}
	query := `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.family_id = $1 AND fm.user_id = $2 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
	`
	err := r.db.QueryRow(ctx, query, familyID, userID).Scan(&member.ID, &member.FamilyID, &member.UserID, &member.RoleID, &member.Status, &member.JoinedAt)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetDefaultActive picks the implicit current family for a user: the most
// recently joined active membership in a non-deleted family.
func (r *membershipRepo) GetDefaultActive(ctx context.Context, userID uuid.UUID) (*models.FamilyMember, error) {
	member := &models.FamilyMember{}
	query := `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.user_id = $1 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
		ORDER BY fm.joined_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&member.ID, &member.FamilyID, &member.UserID, &member.RoleID, &member.Status, &member.JoinedAt)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *membershipRepo) GetByFamilyAndUser(ctx context.Context, familyID, userID uuid.UUID) (*models.FamilyMember, error) {
	member := &models.FamilyMember{}
	query := `
		SELECT id, family_id, user_id, role_id, status, joined_at
		FROM family_members
		WHERE family_id = $1 AND user_id = $2 AND is_deleted = FALSE
	`
	err := r.db.QueryRow(ctx, query, familyID, userID).Scan(&member.ID, &member.FamilyID, &member.UserID, &member.RoleID, &member.Status, &member.JoinedAt)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *membershipRepo) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role_id, status, joined_at
		FROM family_members
		WHERE family_id = $1 AND is_deleted = FALSE
		ORDER BY joined_at ASC
	`
	rows, err := r.db.Query(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.FamilyMember
	for rows.Next() {
		member := &models.FamilyMember{}
		if err := rows.Scan(&member.ID, &member.FamilyID, &member.UserID, &member.RoleID, &member.Status, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// UpdateStatus flips a membership's status. The update is scoped to the
// family so a member id from another tenant never matches; a miss surfaces
// as pgx.ErrNoRows.
func (r *membershipRepo) UpdateStatus(ctx context.Context, familyID, id uuid.UUID, status string) error {
	query := `
		UPDATE family_members
		SET status = $1
		WHERE id = $2 AND family_id = $3 AND is_deleted = FALSE
	`
	tag, err := r.db.Exec(ctx, query, status, id, familyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *membershipRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE family_members
		SET is_deleted = TRUE
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// SweepStaleInvites soft-deletes invitations that were never accepted
// before the cutoff.
func (r *membershipRepo) SweepStaleInvites(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE family_members
		SET is_deleted = TRUE
		WHERE status = 'invited' AND is_deleted = FALSE AND joined_at < $1
	`
	tag, err := r.db.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
