package repositories

import (
	"context"

	"famledger/internal/models"
)

type ModuleRepository interface {
	ListActive(ctx context.Context) ([]*models.Module, error)
}

type moduleRepo struct {
	db PgxIface
}

func NewModuleRepo(db PgxIface) ModuleRepository {
	return &moduleRepo{db: db}
}

// ListActive returns all non-deleted modules ordered by sort, ready for
// navigation tree assembly.
func (r *moduleRepo) ListActive(ctx context.Context) ([]*models.Module, error) {
	query := `
		SELECT id, parent_id, name, route_path, permission_code, sort
		FROM modules
		WHERE is_deleted = FALSE
		ORDER BY sort ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []*models.Module
	for rows.Next() {
		module := &models.Module{}
		if err := rows.Scan(&module.ID, &module.ParentID, &module.Name, &module.RoutePath, &module.PermissionCode, &module.Sort); err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}
