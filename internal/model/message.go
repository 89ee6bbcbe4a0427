// internal/model/message.go
package model

import (
	"github.com/google/uuid"
)

// Message is an organization-scoped chat message. Sender name and role are
// snapshots taken at send time and are not refreshed afterwards.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"senderId"`
	SenderName     string    `gorm:"type:text;not null" json:"senderName"`
	SenderRole     UserRole  `gorm:"type:text;not null" json:"senderRole"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Timestamp      int64     `gorm:"not null;index" json:"timestamp"`
}
