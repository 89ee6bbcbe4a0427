package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/mocks"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthFixture(t *testing.T) (*service.AuthService, *mocks.MockUserRepositoryIface, *mocks.MockRefreshTokenRepositoryIface, *auth.TokenManager, *auth.TokenManager) {
	t.Helper()
	ctrl := gomock.NewController(t)

	userRepo := mocks.NewMockUserRepositoryIface(ctrl)
	refreshRepo := mocks.NewMockRefreshTokenRepositoryIface(ctrl)
	accessTokens := auth.NewTokenManager("access-secret", 15*time.Minute)
	refreshTokens := auth.NewTokenManager("refresh-secret", 7*24*time.Hour)

	svc := service.NewAuthService(userRepo, refreshRepo, auth.NewPasswordHasher(), accessTokens, refreshTokens)
	return svc, userRepo, refreshRepo, accessTokens, refreshTokens
}

func approvedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := auth.NewPasswordHasher().Hash(password)
	require.NoError(t, err)
	return &model.User{
		ID:           uuid.New(),
		Name:         "Test Rider",
		Email:        "rider@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.StatusApproved,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending user and persists refresh record", func(t *testing.T) {
		svc, userRepo, refreshRepo, accessTokens, refreshTokens := newAuthFixture(t)

		var saved *model.RefreshToken
		userRepo.EXPECT().
			FindByEmail(gomock.Any(), "new@example.com").
			Return(nil, domain.ErrUserNotFound)
		userRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *model.User) error {
				user.ID = uuid.New()
				return nil
			})
		refreshRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, record *model.RefreshToken) error {
				saved = record
				return nil
			})

		out, err := svc.Register(ctx, service.RegisterInput{
			Name:     "New Rider",
			Email:    "new@example.com",
			Password: "longenoughpassword",
			State:    "Kerala",
		})
		require.NoError(t, err)

		assert.Equal(t, model.StatusPending, out.User.Status)
		assert.Equal(t, model.RoleUser, out.User.Role)

		accessClaims, err := accessTokens.Validate(out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, out.User.ID.String(), accessClaims.UserID)

		refreshClaims, err := refreshTokens.Validate(out.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, out.User.ID.String(), refreshClaims.UserID)

		require.NotNil(t, saved)
		assert.Equal(t, out.User.ID, saved.UserID)
		assert.Equal(t, out.RefreshToken, saved.Token)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), "taken@example.com").
			Return(&model.User{ID: uuid.New(), Email: "taken@example.com"}, nil)

		_, err := svc.Register(ctx, service.RegisterInput{
			Name:     "New Rider",
			Email:    "taken@example.com",
			Password: "longenoughpassword",
		})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc, _, _, _, _ := newAuthFixture(t)

		_, err := svc.Register(ctx, service.RegisterInput{
			Name:     "New Rider",
			Email:    "new@example.com",
			Password: "short",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues fresh pair and overwrites refresh record", func(t *testing.T) {
		svc, userRepo, refreshRepo, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), user.Email).
			Return(user, nil)
		refreshRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(nil)

		out, err := svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "correct_password"})
		require.NoError(t, err)
		assert.NotEmpty(t, out.AccessToken)
		assert.NotEmpty(t, out.RefreshToken)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), "nobody@example.com").
			Return(nil, domain.ErrUserNotFound)
		_, err := svc.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), user.Email).
			Return(user, nil)
		_, err = svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "wrong_password"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("pending account is gated", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")
		user.Status = model.StatusPending

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), user.Email).
			Return(user, nil)

		_, err := svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "correct_password"})
		assert.ErrorIs(t, err, domain.ErrPendingApproval)
	})

	t.Run("rejected account is gated", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")
		user.Status = model.StatusRejected

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), user.Email).
			Return(user, nil)

		_, err := svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "correct_password"})
		assert.ErrorIs(t, err, domain.ErrAccountRejected)
	})

	t.Run("admin bypasses the status gate", func(t *testing.T) {
		svc, userRepo, refreshRepo, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")
		user.Role = model.RoleAdmin
		user.Status = model.StatusPending

		userRepo.EXPECT().
			FindByEmail(gomock.Any(), user.Email).
			Return(user, nil)
		refreshRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(nil)

		out, err := svc.Login(ctx, service.LoginInput{Email: user.Email, Password: "correct_password"})
		require.NoError(t, err)
		assert.NotEmpty(t, out.AccessToken)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("mints new access token for the stored refresh token", func(t *testing.T) {
		svc, userRepo, refreshRepo, accessTokens, refreshTokens := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		refreshToken, err := refreshTokens.Generate(user.ID.String(), user.Email, string(user.Role))
		require.NoError(t, err)

		refreshRepo.EXPECT().
			FindByUserID(gomock.Any(), user.ID).
			Return(&model.RefreshToken{UserID: user.ID, Token: refreshToken}, nil)
		userRepo.EXPECT().
			FindByID(gomock.Any(), user.ID).
			Return(user, nil)

		accessToken, err := svc.Refresh(ctx, refreshToken)
		require.NoError(t, err)

		claims, err := accessTokens.Validate(accessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
	})

	t.Run("empty token", func(t *testing.T) {
		svc, _, _, _, _ := newAuthFixture(t)

		_, err := svc.Refresh(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNoToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		svc, _, _, accessTokens, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		accessToken, err := accessTokens.Generate(user.ID.String(), user.Email, string(user.Role))
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, accessToken)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("superseded token fails the exact-match check", func(t *testing.T) {
		svc, _, refreshRepo, _, refreshTokens := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		oldToken, err := refreshTokens.Generate(user.ID.String(), user.Email, string(user.Role))
		require.NoError(t, err)
		// A later login stored a different token for the same user.
		refreshRepo.EXPECT().
			FindByUserID(gomock.Any(), user.ID).
			Return(&model.RefreshToken{UserID: user.ID, Token: "a-newer-token"}, nil)

		_, err = svc.Refresh(ctx, oldToken)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("revoked token has no record", func(t *testing.T) {
		svc, _, refreshRepo, _, refreshTokens := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		refreshToken, err := refreshTokens.Generate(user.ID.String(), user.Email, string(user.Role))
		require.NoError(t, err)

		refreshRepo.EXPECT().
			FindByUserID(gomock.Any(), user.ID).
			Return(nil, domain.ErrNotFound)

		_, err = svc.Refresh(ctx, refreshToken)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	svc, _, refreshRepo, _, _ := newAuthFixture(t)
	userID := uuid.New()

	refreshRepo.EXPECT().
		DeleteByUserID(gomock.Any(), userID).
		Return(nil)

	require.NoError(t, svc.Logout(context.Background(), userID))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies name and state", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		userRepo.EXPECT().
			FindByID(gomock.Any(), user.ID).
			Return(user, nil)
		userRepo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			Return(nil)

		name := "Renamed Rider"
		state := "Goa"
		updated, err := svc.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{Name: &name, State: &state})
		require.NoError(t, err)
		assert.Equal(t, "Renamed Rider", updated.Name)
		assert.Equal(t, "Goa", updated.State)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthFixture(t)
		user := approvedUser(t, "correct_password")

		userRepo.EXPECT().
			FindByID(gomock.Any(), user.ID).
			Return(user, nil)

		empty := ""
		_, err := svc.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{Name: &empty})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
