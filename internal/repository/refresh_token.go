// internal/repository/refresh_token.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefreshTokenRepositoryIface interface {
	Save(ctx context.Context, record *model.RefreshToken) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Save overwrites any prior record for the user. At most one refresh token
// is live per user; the previous one becomes unverifiable.
func (r *RefreshTokenRepository) Save(ctx context.Context, record *model.RefreshToken) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to save refresh token: %w", result.Error)
	}
	return nil
}

func (r *RefreshTokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.RefreshToken, error) {
	var record model.RefreshToken
	result := r.db.WithContext(ctx).First(&record, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", result.Error)
	}
	return &record, nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.RefreshToken{}, "user_id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete refresh token: %w", result.Error)
	}
	return nil
}
