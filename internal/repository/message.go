// internal/repository/message.go
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/model"
	"gorm.io/gorm"
)

type MessageRepositoryIface interface {
	Create(ctx context.Context, msg *model.Message) error
	FindRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]*model.Message, error)
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.Message) error {
	result := r.db.WithContext(ctx).Create(msg)
	if result.Error != nil {
		return fmt.Errorf("failed to create message: %w", result.Error)
	}
	return nil
}

// FindRecent returns the newest limit messages for the organization,
// ordered oldest first for display.
func (r *MessageRepository) FindRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]*model.Message, error) {
	var msgs []*model.Message
	result := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&msgs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find messages: %w", result.Error)
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
