// internal/repository/organization.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"gorm.io/gorm"
)

type OrganizationRepositoryIface interface {
	Create(ctx context.Context, org *model.Organization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	FindAll(ctx context.Context) ([]*model.Organization, error)
	FindByMember(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error)
	Update(ctx context.Context, org *model.Organization) error
	IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	HasPendingRequest(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	AddJoinRequest(ctx context.Context, orgID, userID uuid.UUID) error
	AddMember(ctx context.Context, orgID, userID uuid.UUID) error
	ApproveMember(ctx context.Context, orgID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error
	Members(ctx context.Context, orgID uuid.UUID) ([]*model.User, error)
	PendingRequests(ctx context.Context, orgID uuid.UUID) ([]*model.User, error)
	CountMembers(ctx context.Context, orgID uuid.UUID) (int64, error)
	CountPending(ctx context.Context, orgID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts the organization and its creator's membership row in one
// transaction: the creator is a member atomically with creation.
func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("creating organization: %w", err)
		}

		member := &model.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         org.CreatedByID,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("creating creator membership: %w", err)
		}

		// First-claim primary organization for the creator.
		if err := tx.Model(&model.User{}).
			Where("id = ? AND organization_id IS NULL", org.CreatedByID).
			Updates(map[string]interface{}{"organization_id": org.ID, "org_role": "admin"}).Error; err != nil {
			return fmt.Errorf("claiming primary organization: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("finding organization: %w", err)
	}
	return &org, nil
}

// FindAll returns all organizations.
func (r *OrganizationRepository) FindAll(ctx context.Context) ([]*model.Organization, error) {
	var orgs []*model.Organization
	result := r.db.WithContext(ctx).Find(&orgs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find all organizations: %w", result.Error)
	}
	return orgs, nil
}

func (r *OrganizationRepository) FindByMember(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error) {
	var orgs []*model.Organization
	if err := r.db.WithContext(ctx).
		Joins("JOIN organization_members ON organizations.id = organization_members.organization_id").
		Where("organization_members.user_id = ?", userID).
		Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("finding user organizations: %w", err)
	}
	return orgs, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org *model.Organization) error {
	if err := r.db.WithContext(ctx).Save(org).Error; err != nil {
		return fmt.Errorf("updating organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return count > 0, nil
}

func (r *OrganizationRepository) HasPendingRequest(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.JoinRequest{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking join request: %w", err)
	}
	return count > 0, nil
}

func (r *OrganizationRepository) AddJoinRequest(ctx context.Context, orgID, userID uuid.UUID) error {
	req := &model.JoinRequest{OrganizationID: orgID, UserID: userID}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A repeated request is a no-op.
			return nil
		}
		return fmt.Errorf("creating join request: %w", err)
	}
	return nil
}

// AddMember records a direct (code) join: the membership row is inserted and
// any stray pending request is cleared in the same transaction.
func (r *OrganizationRepository) AddMember(ctx context.Context, orgID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := &model.OrganizationMember{OrganizationID: orgID, UserID: userID}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("creating membership: %w", err)
		}
		if err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&model.JoinRequest{}).Error; err != nil {
			return fmt.Errorf("clearing pending request: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// ApproveMember moves a user from pendingRequests to members and stamps
// their primary organization if they have none yet, all in one transaction.
func (r *OrganizationRepository) ApproveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&model.JoinRequest{}).Error; err != nil {
			return fmt.Errorf("removing pending request: %w", err)
		}

		member := &model.OrganizationMember{OrganizationID: orgID, UserID: userID}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("creating membership: %w", err)
		}

		if err := tx.Model(&model.User{}).
			Where("id = ? AND organization_id IS NULL", userID).
			Updates(map[string]interface{}{"organization_id": orgID, "org_role": "user"}).Error; err != nil {
			return fmt.Errorf("claiming primary organization: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// RemoveMember deletes the membership row. The departing user's primary
// organization fields are cleared only when they reference the organization
// being left, so an unrelated primary-org assignment survives.
func (r *OrganizationRepository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&model.OrganizationMember{}).Error; err != nil {
			return fmt.Errorf("deleting membership: %w", err)
		}

		if err := tx.Model(&model.User{}).
			Where("id = ? AND organization_id = ?", userID, orgID).
			Updates(map[string]interface{}{"organization_id": nil, "org_role": ""}).Error; err != nil {
			return fmt.Errorf("clearing primary organization: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// Members returns the user records of all current members.
func (r *OrganizationRepository) Members(ctx context.Context, orgID uuid.UUID) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN organization_members ON users.id = organization_members.user_id").
		Where("organization_members.organization_id = ?", orgID).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("finding members: %w", err)
	}
	return users, nil
}

// PendingRequests returns the user records of all users awaiting approval.
func (r *OrganizationRepository) PendingRequests(ctx context.Context, orgID uuid.UUID) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN join_requests ON users.id = join_requests.user_id").
		Where("join_requests.organization_id = ?", orgID).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("finding pending requests: %w", err)
	}
	return users, nil
}

func (r *OrganizationRepository) CountMembers(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.OrganizationMember{}).
		Where("organization_id = ?", orgID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

func (r *OrganizationRepository) CountPending(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.JoinRequest{}).
		Where("organization_id = ?", orgID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting pending requests: %w", err)
	}
	return count, nil
}

func (r *OrganizationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Organization{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting organizations: %w", err)
	}
	return count, nil
}
