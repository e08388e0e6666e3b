package repositories

import (
	"context"

	"github.com/google/uuid"
)

// PermissionRepository resolves permission codes for roles. Disabled and
// soft-deleted permissions never appear in any result.
type PermissionRepository interface {
	ListCodesByRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
	ListCodesByGlobalRoleCode(ctx context.Context, roleCode string) ([]string, error)
}

type permissionRepo struct {
	db PgxIface
}

func NewPermissionRepo(db PgxIface) PermissionRepository {
	return &permissionRepo{db: db}
}

// ListCodesByRole returns the permission codes granted directly to a role.
func (r *permissionRepo) ListCodesByRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT p.code
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND p.is_disabled = FALSE AND p.is_deleted = FALSE
	`
	rows, err := r.db.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ListCodesByGlobalRoleCode returns the union of permission codes reachable
// from every live global template role (family_id IS NULL) with the code.
func (r *permissionRepo) ListCodesByGlobalRoleCode(ctx context.Context, roleCode string) ([]string, error) {
	query := `
		SELECT DISTINCT p.code
		FROM roles r
		JOIN role_permissions rp ON rp.role_id = r.id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE r.family_id IS NULL AND r.code = $1
		AND r.is_disabled = FALSE AND r.is_deleted = FALSE
		AND p.is_disabled = FALSE AND p.is_deleted = FALSE
	`
	rows, err := r.db.Query(ctx, query, roleCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
