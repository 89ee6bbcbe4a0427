// internal/model/refresh_token.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the single live refresh record for a user. A fresh login
// or registration overwrites it, which is what makes rotation effective:
// refresh validation requires an exact match against the stored token, so a
// superseded token is rejected even while cryptographically valid. Deleting
// the row revokes the user's refresh capability immediately.
type RefreshToken struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
