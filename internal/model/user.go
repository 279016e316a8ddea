package model

import "time"

// Role values are stored as-is in user_profiles.role.
type Role string

const (
	RoleProposer      Role = "Project Proposer"
	RoleFinance       Role = "Finance"
	RoleLegal         Role = "Legal"
	RoleOperations    Role = "Operations"
	RoleDirector      Role = "Director"
	RoleAdministrator Role = "Administrator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleProposer, RoleFinance, RoleLegal, RoleOperations, RoleDirector, RoleAdministrator:
		return true
	}
	return false
}

// User is an identity record; profile data lives in UserProfile.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile is keyed 1:1 by UserID and created lazily on first
// authenticated access if absent.
type UserProfile struct {
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department"`
}
