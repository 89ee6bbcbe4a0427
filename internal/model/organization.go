// internal/model/organization.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	State       string    `gorm:"type:text" json:"state"`
	JoiningCode string    `gorm:"type:text;not null" json:"joiningCode,omitempty"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`

	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"-"`
}

// OrganizationMember records membership as boolean presence of a row.
type OrganizationMember struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time

	Organization Organization `gorm:"foreignKey:OrganizationID"`
	User         User         `gorm:"foreignKey:UserID"`
}

// JoinRequest is a pending request to join an organization, awaiting the
// creator's approval.
type JoinRequest struct {
	OrganizationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt      time.Time

	Organization Organization `gorm:"foreignKey:OrganizationID"`
	User         User         `gorm:"foreignKey:UserID"`
}
