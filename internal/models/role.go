package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is either tenant-local (FamilyID set) or a global template role
// (FamilyID nil). Template roles are never assigned to memberships; they
// only serve as inheritance sources for local roles sharing their code.
type Role struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	Name       string     `json:"name" db:"name"`
	FamilyID   *uuid.UUID `json:"family_id,omitempty" db:"family_id"`
	IsDisabled bool       `json:"is_disabled" db:"is_disabled"`
	IsDeleted  bool       `json:"-" db:"is_deleted"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Built-in role codes seeded for every family
const (
	RoleCodeOwner  = "OWNER"
	RoleCodeMember = "MEMBER"
)
