package models

import "time"

// Workspace is the top-level container for projects and issues.
// Exactly one workspace is current at a time.
type Workspace struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	Icon      *string   `json:"icon" yaml:"icon"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// UserRole represents a user's role within a workspace.
type UserRole string

const (
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// User is read-only reference data for assignee and creator lookups.
type User struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Name      *string   `json:"name" yaml:"name"`
	AvatarURL *string   `json:"avatar_url" yaml:"avatar_url"`
	Role      UserRole  `json:"role,omitempty" yaml:"role,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
