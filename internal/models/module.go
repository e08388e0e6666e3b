package models

import "github.com/google/uuid"

// Module is a navigation tree node. An empty PermissionCode marks a
// structural/group node that is always visible.
type Module struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	Name           string     `json:"name" db:"name"`
	RoutePath      string     `json:"route_path" db:"route_path"`
	PermissionCode string     `json:"permission_code" db:"permission_code"`
	Sort           int        `json:"sort" db:"sort"`
	IsDeleted      bool       `json:"-" db:"is_deleted"`
}

// NavNode is one level of the assembled navigation tree
type NavNode struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	RoutePath string     `json:"route_path"`
	Sort      int        `json:"sort"`
	Children  []*NavNode `json:"children,omitempty"`
}
