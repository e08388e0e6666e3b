package models

import "github.com/google/uuid"

// LoginResponse is returned on a successful login. The role/family fields
// are only populated for end-user logins with a default family membership.
type LoginResponse struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	FamilyID    *uuid.UUID `json:"family_id,omitempty"`
	RoleID      *uuid.UUID `json:"role_id,omitempty"`
	RoleName    *string    `json:"role_name,omitempty"`
}
