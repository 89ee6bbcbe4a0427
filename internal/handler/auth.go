// internal/handler/auth.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/jiyadkamal/bike/internal/config"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/middleware"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *service.SessionService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cfg:         cfg,
	}
}

type RegisterResponse struct {
	BaseResponse
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Pending bool        `json:"pending"`
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	output, err := h.authService.Register(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "User registration error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Name, email, and password are required")
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			respondWithError(w, http.StatusConflict, "Email already registered")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.setSessionCookies(w, output.AccessToken, output.RefreshToken)

	respondWithJSON(w, http.StatusCreated, RegisterResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      "Registration successful. Your account is pending admin approval.",
		User:         output.User,
		Pending:      true,
	})
}

type LoginResponse struct {
	BaseResponse
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	output, err := h.authService.Login(r.Context(), input)
	if err != nil {
		slog.ErrorContext(r.Context(), "User login error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, domain.ErrPendingApproval):
			respondWithError(w, http.StatusForbidden, "Your account is pending admin approval.")
		case errors.Is(err, domain.ErrAccountRejected):
			respondWithError(w, http.StatusForbidden, "Your application has been rejected.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.setSessionCookies(w, output.AccessToken, output.RefreshToken)

	respondWithJSON(w, http.StatusOK, LoginResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      "Login successful",
		User:         output.User,
	})
}

// RefreshHandler mints a fresh access token from the refresh cookie. The
// refresh cookie itself is left untouched.
func (h *AuthHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}

	accessToken, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoToken):
			respondWithError(w, http.StatusUnauthorized, "Refresh token required")
		case errors.Is(err, domain.ErrUserNotFound):
			respondWithError(w, http.StatusUnauthorized, "User not found")
		case errors.Is(err, domain.ErrInvalidToken):
			respondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		default:
			slog.ErrorContext(r.Context(), "Token refresh error", "error", err, "requestID", chmw.GetReqID(r.Context()))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, accessToken, int(h.cfg.JWT.AccessExpiry.Seconds()))
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed"})
}

// LogoutHandler revokes the refresh record when the session resolves and
// clears the cookies regardless: a broken session must still end up logged
// out on the client.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(middleware.AccessTokenCookie); err == nil {
		token = cookie.Value
	}

	if principal, err := h.sessions.Resolve(r.Context(), token); err == nil {
		if err := h.authService.Logout(r.Context(), principal.UserID); err != nil {
			slog.ErrorContext(r.Context(), "User logout error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		}
	}

	h.clearSessionCookies(w)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": principal})
}

func (h *AuthHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.authService.UpdateProfile(r.Context(), principal.UserID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "User not found")
		default:
			slog.ErrorContext(r.Context(), "Profile update error", "error", err, "requestID", chmw.GetReqID(r.Context()))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	h.setCookie(w, middleware.AccessTokenCookie, accessToken, int(h.cfg.JWT.AccessExpiry.Seconds()))
	h.setCookie(w, middleware.RefreshTokenCookie, refreshToken, int(h.cfg.JWT.RefreshExpiry.Seconds()))
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	h.setCookie(w, middleware.AccessTokenCookie, "", -1)
	h.setCookie(w, middleware.RefreshTokenCookie, "", -1)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
