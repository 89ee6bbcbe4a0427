// internal/handler/message.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/middleware"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, err := uuid.Parse(chi.URLParam(r, "orgId"))
	if err != nil {
		respondWithError(w, http.StatusForbidden, "You are not a member of this organization")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := h.messageService.List(r.Context(), principal, orgID, limit)
	if err != nil {
		h.respondMessageError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	BaseResponse
	Message string         `json:"message"`
	Data    *model.Message `json:"data"`
}

func (h *MessageHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	orgID, err := uuid.Parse(chi.URLParam(r, "orgId"))
	if err != nil {
		respondWithError(w, http.StatusForbidden, "You are not a member of this organization")
		return
	}

	var body SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	msg, err := h.messageService.Send(r.Context(), principal, orgID, body.Text)
	if err != nil {
		h.respondMessageError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, SendMessageResponse{
		BaseResponse: BaseResponse{Ok: true},
		Message:      "Message sent",
		Data:         msg,
	})
}

func (h *MessageHandler) respondMessageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		respondWithError(w, http.StatusBadRequest, "Message text is required")
	case errors.Is(err, domain.ErrNotMember):
		respondWithError(w, http.StatusForbidden, "You are not a member of this organization")
	default:
		slog.ErrorContext(r.Context(), "Message error", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
