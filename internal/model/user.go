// internal/model/user.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"uid"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	Email        string     `gorm:"type:citext;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null" json:"-"`
	Role         UserRole   `gorm:"type:text;not null;default:'user'" json:"role"`
	Status       UserStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	State        string     `gorm:"type:text" json:"state"`

	// Primary organization. Distinct from bare membership rows: a user
	// references at most one organization here, claimed on first join or
	// creation and cleared only when leaving that same organization.
	OrganizationID *uuid.UUID `gorm:"type:uuid" json:"organizationId,omitempty"`
	OrgRole        string     `gorm:"type:text" json:"orgRole,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// IsAdmin reports whether the user holds the site-wide admin role. Admins
// bypass the pending/rejected status gate entirely.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
