// internal/service/session.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
)

// Principal is the authenticated actor behind a request. Every field comes
// from the current stored user record, not from token claims: a role or
// status change takes effect on the next request, without waiting for the
// token to expire.
type Principal struct {
	UserID uuid.UUID        `json:"uid"`
	Email  string           `json:"email"`
	Name   string           `json:"name"`
	Role   model.UserRole   `json:"role"`
	State  string           `json:"state"`
	Status model.UserStatus `json:"status"`
}

type SessionService struct {
	users        repository.UserRepositoryIface
	accessTokens *auth.TokenManager
}

func NewSessionService(users repository.UserRepositoryIface, accessTokens *auth.TokenManager) *SessionService {
	return &SessionService{
		users:        users,
		accessTokens: accessTokens,
	}
}

// Resolve verifies an access token and hydrates the Principal from storage.
func (s *SessionService) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.ErrNoToken
	}

	claims, err := s.accessTokens.Validate(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", domain.ErrInvalidToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		State:  user.State,
		Status: user.Status,
	}, nil
}
