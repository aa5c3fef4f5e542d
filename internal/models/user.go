package models

import "time"

type UserRole string

const (
	UserRolePerson  UserRole = "person"
	UserRoleStartup UserRole = "startup"
	UserRoleProject UserRole = "project"
	UserRolePyme    UserRole = "pyme"
)

// UserProfile represents a registered platform user
type UserProfile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	Name          string    `json:"name"`
	Role          UserRole  `json:"role"` // person, startup, project, pyme
	WalletAddress *string   `gorm:"size:56" json:"wallet_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Complete reports whether the profile has everything required to donate
func (u *UserProfile) Complete() bool {
	return u.Name != "" && u.Role != ""
}

// ValidRole reports whether the given role is one of the recognized values
func ValidRole(role UserRole) bool {
	switch role {
	case UserRolePerson, UserRoleStartup, UserRoleProject, UserRolePyme:
		return true
	}
	return false
}
