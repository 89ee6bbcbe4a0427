// internal/service/auth.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
)

type AuthService struct {
	users          repository.UserRepositoryIface
	refreshTokens  repository.RefreshTokenRepositoryIface
	passwordHasher *auth.PasswordHasher
	accessTokens   *auth.TokenManager
	refreshManager *auth.TokenManager
	validate       *validator.Validate
}

func NewAuthService(
	users repository.UserRepositoryIface,
	refreshTokens repository.RefreshTokenRepositoryIface,
	passwordHasher *auth.PasswordHasher,
	accessTokens *auth.TokenManager,
	refreshManager *auth.TokenManager,
) *AuthService {
	return &AuthService{
		users:          users,
		refreshTokens:  refreshTokens,
		passwordHasher: passwordHasher,
		accessTokens:   accessTokens,
		refreshManager: refreshManager,
		validate:       validator.New(),
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	State    string `json:"state"`
}

type RegisterOutput struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Register creates a pending account and opens a session for it. The session
// is of limited use: a pending non-admin cannot log in again until approved.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	// Application-level pre-check for a clean conflict message; the unique
	// index in the store closes the race the check alone cannot.
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

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.StatusPending,
		State:        input.State,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RegisterOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates credentials, gates on account status (admins bypass
// the gate) and issues a fresh token pair. The stored refresh record is
// overwritten, so refresh tokens held by other sessions stop working.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Indistinguishable from a wrong password.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	verified, err := s.passwordHasher.Verify(input.Password, user.PasswordHash)
	if err != nil || !verified {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsAdmin() {
		switch user.Status {
		case model.StatusPending:
			return nil, domain.ErrPendingApproval
		case model.StatusRejected:
			return nil, domain.ErrAccountRejected
		}
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates a refresh token against its stored record and mints a
// new access token. The refresh token itself is not rotated. The stored
// record must match byte for byte; a superseded or revoked token fails even
// while cryptographically valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.ErrNoToken
	}

	claims, err := s.refreshManager.Validate(refreshToken)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	stored, err := s.refreshTokens.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	if stored.Token != refreshToken {
		return "", domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	accessToken, err := s.accessTokens.Generate(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the user's refresh capability by deleting the stored
// record. Cookie clearing is the transport layer's job and happens even
// when this fails.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.refreshTokens.DeleteByUserID(ctx, userID)
}

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	State *string `json:"state"`
}

// UpdateProfile applies a self-edit of the profile fields a user may change.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		user.Name = *input.Name
	}
	if input.State != nil {
		user.State = *input.State
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User) (string, string, error) {
	accessToken, err := s.accessTokens.Generate(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("generating access token: %w", err)
	}

	refreshToken, err := s.refreshManager.Generate(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	record := &model.RefreshToken{
		UserID: user.ID,
		Token:  refreshToken,
	}
	if err := s.refreshTokens.Save(ctx, record); err != nil {
		return "", "", fmt.Errorf("persisting refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
