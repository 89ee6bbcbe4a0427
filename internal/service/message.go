// internal/service/message.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
)

// DefaultMessageLimit bounds a message listing when the client asks for
// nothing specific.
const DefaultMessageLimit = 50

type MessageService struct {
	messages repository.MessageRepositoryIface
	orgs     repository.OrganizationRepositoryIface
}

func NewMessageService(messages repository.MessageRepositoryIface, orgs repository.OrganizationRepositoryIface) *MessageService {
	return &MessageService{
		messages: messages,
		orgs:     orgs,
	}
}

// List returns the most recent messages of an organization, oldest first.
// Membership is checked on every call.
func (s *MessageService) List(ctx context.Context, principal *Principal, orgID uuid.UUID, limit int) ([]*model.Message, error) {
	member, err := s.orgs.IsMember(ctx, orgID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotMember
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return s.messages.FindRecent(ctx, orgID, limit)
}

// Send appends a message. The sender's name and role are snapshotted into
// the message at send time.
func (s *MessageService) Send(ctx context.Context, principal *Principal, orgID uuid.UUID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	member, err := s.orgs.IsMember(ctx, orgID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, domain.ErrNotMember
	}

	msg := &model.Message{
		OrganizationID: orgID,
		SenderID:       principal.UserID,
		SenderName:     principal.Name,
		SenderRole:     principal.Role,
		Text:           text,
		Timestamp:      time.Now().UnixMilli(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
