package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership status values
const (
	MemberStatusInvited  = "invited"
	MemberStatusActive   = "active"
	MemberStatusDisabled = "disabled"
)

type FamilyMember struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FamilyID  uuid.UUID `json:"family_id" db:"family_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	RoleID    uuid.UUID `json:"role_id" db:"role_id"`
	Status    string    `json:"status" db:"status"`
	IsDeleted bool      `json:"-" db:"is_deleted"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
}
