package models

import "github.com/google/uuid"

// Identity is the credential-bearing projection of a user or operator row,
// loaded only for authentication
type Identity struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Salt         string    `db:"salt"`
	Nickname     string    `db:"nickname"`
	IsDisabled   bool      `db:"is_disabled"`
	IsDeleted    bool      `db:"is_deleted"`
}

// SessionIdentity is the cached value a live session token resolves to
type SessionIdentity struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}
