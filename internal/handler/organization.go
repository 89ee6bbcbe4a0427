// internal/handler/organization.go
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

type OrganizationHandler struct {
	orgService *service.OrganizationService
}

func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

func (h *OrganizationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgService.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Organization list error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

func (h *OrganizationHandler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	orgs, err := h.orgService.ListMine(r.Context(), principal)
	if err != nil {
		slog.ErrorContext(r.Context(), "Organization list error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

type CreateOrganizationResponse struct {
	BaseResponse
	Message     string    `json:"message"`
	OrgID       uuid.UUID `json:"orgId"`
	JoiningCode string    `json:"joiningCode"`
}

func (h *OrganizationHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	var input service.CreateOrganizationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	org, err := h.orgService.Create(r.Context(), principal, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Organization name is required")
		default:
			slog.ErrorContext(r.Context(), "Organization create error", "error", err, "requestID", chmw.GetReqID(r.Context()))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, CreateOrganizationResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      "Organization created",
		OrgID:        org.ID,
		JoiningCode:  org.JoiningCode,
	})
}

func (h *OrganizationHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	detail, err := h.orgService.Get(r.Context(), orgID)
	if err != nil {
		h.respondOrgError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"organization": detail})
}

type JoinRequestBody struct {
	JoiningCode string `json:"joiningCode"`
}

type JoinResponse struct {
	BaseResponse
	Message string `json:"message"`
	Direct  bool   `json:"direct"`
}

func (h *OrganizationHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	var body JoinRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	direct, err := h.orgService.Join(r.Context(), principal, orgID, body.JoiningCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyMember):
			respondWithError(w, http.StatusBadRequest, "Already a member")
		case errors.Is(err, domain.ErrInvalidJoiningCode):
			respondWithError(w, http.StatusBadRequest, "Invalid joining code")
		default:
			h.respondOrgError(w, r, err)
		}
		return
	}

	message := "Join request sent"
	if direct {
		message = "Joined organization successfully"
	}
	respondWithJSON(w, http.StatusOK, JoinResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      message,
		Direct:       direct,
	})
}

func (h *OrganizationHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.orgService.Approve(r.Context(), principal, orgID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Join request not found")
		default:
			h.respondOrgError(w, r, err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Member approved"})
}

func (h *OrganizationHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.orgService.RemoveMember(r.Context(), principal, orgID, userID); err != nil {
		h.respondOrgError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}

func (h *OrganizationHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	var input service.UpdateOrganizationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.orgService.Update(r.Context(), principal, orgID, input); err != nil {
		h.respondOrgError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Organization updated"})
}

func (h *OrganizationHandler) respondOrgError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOrganizationNotFound):
		respondWithError(w, http.StatusNotFound, "Organization not found")
	case errors.Is(err, domain.ErrNotOrganizationOwner):
		respondWithError(w, http.StatusForbidden, "Only the organization admin may do this")
	default:
		slog.ErrorContext(r.Context(), "Organization error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseOrgID reads the {id} path parameter. An unparsable id cannot name any
// organization, so it reports NotFound.
func parseOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Organization not found")
		return uuid.Nil, false
	}
	return orgID, true
}
