// internal/handler/admin.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/middleware"
	"github.com/jiyadkamal/bike/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.respondAdminError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *AdminHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.adminService.CreateUser(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Name, email and password are required")
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			respondWithError(w, http.StatusConflict, "Email already registered")
		default:
			h.respondAdminError(w, r, err)
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created",
		"user":    user,
	})
}

func (h *AdminHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var input service.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.adminService.UpdateUser(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			respondWithError(w, http.StatusConflict, "Email already registered")
		default:
			h.respondAdminError(w, r, err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated",
		"user":    user,
	})
}

func (h *AdminHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), principal.UserID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfDelete):
			respondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
		default:
			h.respondAdminError(w, r, err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (h *AdminHandler) ListApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	applications, err := h.adminService.ListApplications(r.Context())
	if err != nil {
		h.respondAdminError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"applications": applications})
}

func (h *AdminHandler) ApproveApplicationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.ApproveApplication(r.Context(), userID); err != nil {
		h.respondAdminError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Application approved"})
}

func (h *AdminHandler) RejectApplicationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.adminService.RejectApplication(r.Context(), userID); err != nil {
		h.respondAdminError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Application rejected"})
}

func (h *AdminHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		h.respondAdminError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func (h *AdminHandler) respondAdminError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	default:
		slog.ErrorContext(r.Context(), "Admin operation error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return uuid.Nil, false
	}
	return userID, true
}
