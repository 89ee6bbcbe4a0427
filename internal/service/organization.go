// internal/service/organization.go
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
)

type OrganizationService struct {
	orgs     repository.OrganizationRepositoryIface
	validate *validator.Validate
}

func NewOrganizationService(orgs repository.OrganizationRepositoryIface) *OrganizationService {
	return &OrganizationService{
		orgs:     orgs,
		validate: validator.New(),
	}
}

type CreateOrganizationInput struct {
	Name  string `json:"name" validate:"required"`
	State string `json:"state"`
}

// Create makes a new organization with the caller as its sole administrator
// and first member. The caller claims it as their primary organization only
// if they have none yet.
func (s *OrganizationService) Create(ctx context.Context, principal *Principal, input CreateOrganizationInput) (*model.Organization, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	code, err := generateJoiningCode()
	if err != nil {
		return nil, fmt.Errorf("generating joining code: %w", err)
	}

	org := &model.Organization{
		Name:        input.Name,
		State:       input.State,
		JoiningCode: code,
		CreatedByID: principal.UserID,
	}

	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// OrganizationSummary is the public listing view. The joining code and
// pending count are filled only for organizations the viewer belongs to.
type OrganizationSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	State        string    `json:"state"`
	JoiningCode  string    `json:"joiningCode,omitempty"`
	CreatedBy    uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	MemberCount  int64     `json:"memberCount"`
	PendingCount int64     `json:"pendingCount,omitempty"`
}

// List returns all organizations with member counts.
func (s *OrganizationService) List(ctx context.Context) ([]OrganizationSummary, error) {
	orgs, err := s.orgs.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrganizationSummary, 0, len(orgs))
	for _, org := range orgs {
		members, err := s.orgs.CountMembers(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, OrganizationSummary{
			ID:          org.ID,
			Name:        org.Name,
			State:       org.State,
			CreatedAt:   org.CreatedAt,
			MemberCount: members,
		})
	}
	return summaries, nil
}

// ListMine returns the organizations the caller is a member of, including
// the joining code and pending-request count.
func (s *OrganizationService) ListMine(ctx context.Context, principal *Principal) ([]OrganizationSummary, error) {
	orgs, err := s.orgs.FindByMember(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrganizationSummary, 0, len(orgs))
	for _, org := range orgs {
		members, err := s.orgs.CountMembers(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		pending, err := s.orgs.CountPending(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, OrganizationSummary{
			ID:           org.ID,
			Name:         org.Name,
			State:        org.State,
			JoiningCode:  org.JoiningCode,
			CreatedBy:    org.CreatedByID,
			CreatedAt:    org.CreatedAt,
			MemberCount:  members,
			PendingCount: pending,
		})
	}
	return summaries, nil
}

type MemberView struct {
	UserID uuid.UUID `json:"uid"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role,omitempty"`
}

type OrganizationDetail struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	State           string       `json:"state"`
	JoiningCode     string       `json:"joiningCode"`
	CreatedBy       uuid.UUID    `json:"createdBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	Members         []MemberView `json:"members"`
	PendingRequests []MemberView `json:"pendingRequests"`
}

// Get returns an organization with hydrated member and pending lists.
func (s *OrganizationService) Get(ctx context.Context, orgID uuid.UUID) (*OrganizationDetail, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	members, err := s.orgs.Members(ctx, orgID)
	if err != nil {
		return nil, err
	}
	pending, err := s.orgs.PendingRequests(ctx, orgID)
	if err != nil {
		return nil, err
	}

	detail := &OrganizationDetail{
		ID:              org.ID,
		Name:            org.Name,
		State:           org.State,
		JoiningCode:     org.JoiningCode,
		CreatedBy:       org.CreatedByID,
		CreatedAt:       org.CreatedAt,
		Members:         make([]MemberView, 0, len(members)),
		PendingRequests: make([]MemberView, 0, len(pending)),
	}
	for _, u := range members {
		role := u.OrgRole
		if u.OrganizationID == nil || *u.OrganizationID != orgID {
			role = "user"
		}
		detail.Members = append(detail.Members, MemberView{UserID: u.ID, Name: u.Name, Email: u.Email, Role: role})
	}
	for _, u := range pending {
		detail.PendingRequests = append(detail.PendingRequests, MemberView{UserID: u.ID, Name: u.Name, Email: u.Email})
	}
	return detail, nil
}

// Join moves the caller toward membership. With a joining code the join is
// direct and any stray pending request is cleared; without one a pending
// request is recorded for the creator to decide. Returns whether the join
// was direct.
func (s *OrganizationService) Join(ctx context.Context, principal *Principal, orgID uuid.UUID, joiningCode string) (bool, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return false, err
	}

	member, err := s.orgs.IsMember(ctx, orgID, principal.UserID)
	if err != nil {
		return false, err
	}
	if member {
		return false, domain.ErrAlreadyMember
	}

	if joiningCode != "" {
		if joiningCode != org.JoiningCode {
			return false, domain.ErrInvalidJoiningCode
		}
		if err := s.orgs.AddMember(ctx, orgID, principal.UserID); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := s.orgs.AddJoinRequest(ctx, orgID, principal.UserID); err != nil {
		return false, err
	}
	return false, nil
}

// Approve turns a pending request into membership. Only the organization's
// creator may approve. The organization is read before the ownership check,
// so a missing organization reports NotFound rather than Forbidden.
func (s *OrganizationService) Approve(ctx context.Context, principal *Principal, orgID, userID uuid.UUID) error {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.CreatedByID != principal.UserID {
		return domain.ErrNotOrganizationOwner
	}

	pending, err := s.orgs.HasPendingRequest(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !pending {
		return domain.ErrNotFound
	}

	return s.orgs.ApproveMember(ctx, orgID, userID)
}

// RemoveMember removes a member; creator only.
func (s *OrganizationService) RemoveMember(ctx context.Context, principal *Principal, orgID, userID uuid.UUID) error {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.CreatedByID != principal.UserID {
		return domain.ErrNotOrganizationOwner
	}

	return s.orgs.RemoveMember(ctx, orgID, userID)
}

type UpdateOrganizationInput struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// Update edits the organization's name/state; creator only.
func (s *OrganizationService) Update(ctx context.Context, principal *Principal, orgID uuid.UUID, input UpdateOrganizationInput) error {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.CreatedByID != principal.UserID {
		return domain.ErrNotOrganizationOwner
	}

	if input.Name != "" {
		org.Name = input.Name
	}
	if input.State != "" {
		org.State = input.State
	}

	return s.orgs.Update(ctx, org)
}

const joiningCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateJoiningCode returns a 6-character uppercase alphanumeric code.
func generateJoiningCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joiningCodeAlphabet[int(b)%len(joiningCodeAlphabet)]
	}
	return string(buf), nil
}
