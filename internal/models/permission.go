package models

import "github.com/google/uuid"

type Permission struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Code       string    `json:"code" db:"code"`
	ModuleID   uuid.UUID `json:"module_id" db:"module_id"`
	IsDisabled bool      `json:"is_disabled" db:"is_disabled"`
	IsDeleted  bool      `json:"-" db:"is_deleted"`
}
