// internal/service/admin.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/email"
	"github.com/jiyadkamal/bike/internal/email/mailer"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
)

type AdminService struct {
	users          repository.UserRepositoryIface
	orgs           repository.OrganizationRepositoryIface
	passwordHasher *auth.PasswordHasher
	emailService   *email.Service
	validate       *validator.Validate
}

// NewAdminService builds the admin surface. emailService may be nil; the
// application decision emails are best-effort and never fail the operation.
func NewAdminService(
	users repository.UserRepositoryIface,
	orgs repository.OrganizationRepositoryIface,
	passwordHasher *auth.PasswordHasher,
	emailService *email.Service,
) *AdminService {
	return &AdminService{
		users:          users,
		orgs:           orgs,
		passwordHasher: passwordHasher,
		emailService:   emailService,
		validate:       validator.New(),
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.FindAll(ctx)
}

type CreateUserInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
	State    string `json:"state"`
}

// CreateUser registers a user on an admin's behalf. Admin-created users are
// auto-approved.
func (s *AdminService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := model.RoleUser
	if input.Role == string(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusApproved,
		State:        input.State,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	State  *string `json:"state"`
	Status *string `json:"status"`
}

func (s *AdminService) UpdateUser(ctx context.Context, userID uuid.UUID, input UpdateUserInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		switch model.UserRole(*input.Role) {
		case model.RoleUser, model.RoleAdmin:
			user.Role = model.UserRole(*input.Role)
		default:
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *input.Role)
		}
	}
	if input.State != nil {
		user.State = *input.State
	}
	if input.Status != nil {
		switch model.UserStatus(*input.Status) {
		case model.StatusPending, model.StatusApproved, model.StatusRejected:
			user.Status = model.UserStatus(*input.Status)
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *input.Status)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user and, with them, their refresh-token record. An
// admin never deletes themselves.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID uuid.UUID) error {
	if adminID == userID {
		return domain.ErrSelfDelete
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

// ListApplications returns all users awaiting an admin decision.
func (s *AdminService) ListApplications(ctx context.Context) ([]*model.User, error) {
	return s.users.FindByStatus(ctx, model.StatusPending)
}

// ApproveApplication sets the account approved and notifies the applicant.
func (s *AdminService) ApproveApplication(ctx context.Context, userID uuid.UUID) error {
	return s.decideApplication(ctx, userID, model.StatusApproved)
}

// RejectApplication sets the account rejected and notifies the applicant.
func (s *AdminService) RejectApplication(ctx context.Context, userID uuid.UUID) error {
	return s.decideApplication(ctx, userID, model.StatusRejected)
}

func (s *AdminService) decideApplication(ctx context.Context, userID uuid.UUID, decision model.UserStatus) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	user.Status = decision
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.emailService != nil {
		if err := mailer.SendApplicationDecision(s.emailService, user.Email, user.Name, decision == model.StatusApproved); err != nil {
			slog.ErrorContext(ctx, "sending application decision email", "error", err, "user", user.ID)
		}
	}
	return nil
}

type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	PendingUsers  int64 `json:"pendingUsers"`
	ApprovedUsers int64 `json:"approvedUsers"`
	Admins        int64 `json:"admins"`
	TotalOrgs     int64 `json:"totalOrgs"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.PendingUsers, err = s.users.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, err
	}
	if stats.ApprovedUsers, err = s.users.CountByStatus(ctx, model.StatusApproved); err != nil {
		return nil, err
	}
	if stats.Admins, err = s.users.CountByRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	if stats.TotalOrgs, err = s.orgs.Count(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
