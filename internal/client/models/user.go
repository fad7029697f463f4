package models

import "time"

// User is an account known to the API.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	ShortName string `json:"short_name,omitempty"`
	Language  string `json:"language,omitempty"`
}

// UserFilters narrows user lookups (used when sharing).
type UserFilters struct {
	Query   string
	ItemID  string
	PageMax int
}

// UpdateUserRequest is a partial user update.
type UpdateUserRequest struct {
	Language *string `json:"language,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// Role is the permission level granted on an item.
type Role string

const (
	RoleReader        Role = "reader"
	RoleEditor        Role = "editor"
	RoleAdministrator Role = "administrator"
	RoleOwner         Role = "owner"
)

// Access grants a user (or team) a role on an item.
type Access struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	User *User  `json:"user,omitempty"`
	Team string `json:"team,omitempty"`
}

// CreateAccessRequest grants UserID the given role.
type CreateAccessRequest struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Invitation is a pending access for someone without an account yet.
type Invitation struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Issuer    string    `json:"issuer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInvitationRequest invites Email with the given role.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
