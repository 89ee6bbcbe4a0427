package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/domain"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for the database backing all four
// repositories, mirroring their transactional side effects: membership rows,
// pending-request clearing, primary-organization stamping and cascaded
// deletes.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*model.User
	orgs     map[uuid.UUID]*model.Organization
	members  map[uuid.UUID]map[uuid.UUID]bool
	pending  map[uuid.UUID]map[uuid.UUID]bool
	refresh  map[uuid.UUID]*model.RefreshToken
	messages []*model.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]*model.User),
		orgs:    make(map[uuid.UUID]*model.Organization),
		members: make(map[uuid.UUID]map[uuid.UUID]bool),
		pending: make(map[uuid.UUID]map[uuid.UUID]bool),
		refresh: make(map[uuid.UUID]*model.RefreshToken),
	}
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	delete(r.s.refresh, id)
	for orgID := range r.s.members {
		delete(r.s.members[orgID], id)
	}
	for orgID := range r.s.pending {
		delete(r.s.pending[orgID], id)
	}
	return nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *memUserRepo) FindByStatus(_ context.Context, status model.UserStatus) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*model.User
	for _, u := range r.s.users {
		if u.Status == status {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *memUserRepo) CountByStatus(_ context.Context, status model.UserStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role model.UserRole) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type memOrgRepo struct{ s *memStore }

func (r *memOrgRepo) Create(_ context.Context, org *model.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	org.CreatedAt = time.Now()
	r.s.orgs[org.ID] = org
	r.s.members[org.ID] = map[uuid.UUID]bool{org.CreatedByID: true}
	r.s.pending[org.ID] = map[uuid.UUID]bool{}
	if creator, ok := r.s.users[org.CreatedByID]; ok && creator.OrganizationID == nil {
		id := org.ID
		creator.OrganizationID = &id
		creator.OrgRole = "admin"
	}
	return nil
}

func (r *memOrgRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if org, ok := r.s.orgs[id]; ok {
		return org, nil
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *memOrgRepo) FindAll(_ context.Context) ([]*model.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	orgs := make([]*model.Organization, 0, len(r.s.orgs))
	for _, org := range r.s.orgs {
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func (r *memOrgRepo) FindByMember(_ context.Context, userID uuid.UUID) ([]*model.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orgs []*model.Organization
	for orgID, members := range r.s.members {
		if members[userID] {
			orgs = append(orgs, r.s.orgs[orgID])
		}
	}
	return orgs, nil
}

func (r *memOrgRepo) Update(_ context.Context, org *model.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[org.ID]; !ok {
		return domain.ErrOrganizationNotFound
	}
	r.s.orgs[org.ID] = org
	return nil
}

func (r *memOrgRepo) IsMember(_ context.Context, orgID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.members[orgID][userID], nil
}

func (r *memOrgRepo) HasPendingRequest(_ context.Context, orgID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pending[orgID][userID], nil
}

func (r *memOrgRepo) AddJoinRequest(_ context.Context, orgID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.pending[orgID][userID] = true
	return nil
}

func (r *memOrgRepo) AddMember(_ context.Context, orgID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[orgID][userID] = true
	delete(r.s.pending[orgID], userID)
	return nil
}

func (r *memOrgRepo) ApproveMember(_ context.Context, orgID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.pending[orgID], userID)
	r.s.members[orgID][userID] = true
	if user, ok := r.s.users[userID]; ok && user.OrganizationID == nil {
		id := orgID
		user.OrganizationID = &id
		user.OrgRole = "user"
	}
	return nil
}

func (r *memOrgRepo) RemoveMember(_ context.Context, orgID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.members[orgID], userID)
	if user, ok := r.s.users[userID]; ok && user.OrganizationID != nil && *user.OrganizationID == orgID {
		user.OrganizationID = nil
		user.OrgRole = ""
	}
	return nil
}

func (r *memOrgRepo) Members(_ context.Context, orgID uuid.UUID) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*model.User
	for userID := range r.s.members[orgID] {
		if u, ok := r.s.users[userID]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *memOrgRepo) PendingRequests(_ context.Context, orgID uuid.UUID) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*model.User
	for userID := range r.s.pending[orgID] {
		if u, ok := r.s.users[userID]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *memOrgRepo) CountMembers(_ context.Context, orgID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.members[orgID])), nil
}

func (r *memOrgRepo) CountPending(_ context.Context, orgID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.pending[orgID])), nil
}

func (r *memOrgRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orgs)), nil
}

type memRefreshRepo struct{ s *memStore }

func (r *memRefreshRepo) Save(_ context.Context, record *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refresh[record.UserID] = record
	return nil
}

func (r *memRefreshRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if record, ok := r.s.refresh[userID]; ok {
		return record, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memRefreshRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.refresh, userID)
	return nil
}

type memMessageRepo struct{ s *memStore }

func (r *memMessageRepo) Create(_ context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	r.s.messages = append(r.s.messages, msg)
	return nil
}

func (r *memMessageRepo) FindRecent(_ context.Context, orgID uuid.UUID, limit int) ([]*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var msgs []*model.Message
	for _, m := range r.s.messages {
		if m.OrganizationID == orgID {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

type world struct {
	auth     *service.AuthService
	sessions *service.SessionService
	orgs     *service.OrganizationService
	messages *service.MessageService
	admin    *service.AdminService
}

func newWorld(t *testing.T) (*world, *memStore) {
	t.Helper()
	store := newMemStore()
	users := &memUserRepo{s: store}
	orgs := &memOrgRepo{s: store}
	refresh := &memRefreshRepo{s: store}
	messages := &memMessageRepo{s: store}

	hasher := auth.NewPasswordHasher()
	accessTokens := auth.NewTokenManager("access-secret", 15*time.Minute)
	refreshTokens := auth.NewTokenManager("refresh-secret", 7*24*time.Hour)

	return &world{
		auth:     service.NewAuthService(users, refresh, hasher, accessTokens, refreshTokens),
		sessions: service.NewSessionService(users, accessTokens),
		orgs:     service.NewOrganizationService(orgs),
		messages: service.NewMessageService(messages, orgs),
		admin:    service.NewAdminService(users, orgs, hasher, nil),
	}, store
}

func mustLogin(t *testing.T, w *world, email, password string) *service.LoginOutput {
	t.Helper()
	out, err := w.auth.Login(context.Background(), service.LoginInput{Email: email, Password: password})
	require.NoError(t, err)
	return out
}

func mustPrincipal(t *testing.T, w *world, accessToken string) *service.Principal {
	t.Helper()
	principal, err := w.sessions.Resolve(context.Background(), accessToken)
	require.NoError(t, err)
	return principal
}

// Walks a community through its whole life: applications, approval, an
// organization with both join paths, chat, removal and logout.
func TestCommunityLifecycle(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorld(t)

	// Seeded admin, the way the bootstrap CLI would create one.
	admin, err := w.admin.CreateUser(ctx, service.CreateUserInput{
		Name:     "Site Admin",
		Email:    "admin@example.com",
		Password: "admin-password-1",
		Role:     "admin",
	})
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())

	// A rider applies. The account starts pending and cannot log in.
	reg, err := w.auth.Register(ctx, service.RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "asha-password-1",
		State:    "Kerala",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reg.User.Status)

	_, err = w.auth.Login(ctx, service.LoginInput{Email: "asha@example.com", Password: "asha-password-1"})
	assert.ErrorIs(t, err, domain.ErrPendingApproval)

	// The pending application shows up on the admin surface.
	apps, err := w.admin.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "asha@example.com", apps[0].Email)

	require.NoError(t, w.admin.ApproveApplication(ctx, reg.User.ID))

	asha := mustLogin(t, w, "asha@example.com", "asha-password-1")
	ashaPrincipal := mustPrincipal(t, w, asha.AccessToken)
	assert.Equal(t, model.StatusApproved, ashaPrincipal.Status)

	// Asha founds an organization and becomes its first member and primary
	// org admin.
	org, err := w.orgs.Create(ctx, ashaPrincipal, service.CreateOrganizationInput{Name: "Coastal Riders", State: "Kerala"})
	require.NoError(t, err)
	require.Len(t, org.JoiningCode, 6)

	ashaPrincipal = mustPrincipal(t, w, asha.AccessToken)
	mine, err := w.orgs.ListMine(ctx, ashaPrincipal)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, org.JoiningCode, mine[0].JoiningCode)
	assert.Equal(t, int64(1), mine[0].MemberCount)

	// Dev joins directly with the code.
	devReg, err := w.auth.Register(ctx, service.RegisterInput{
		Name:     "Dev",
		Email:    "dev@example.com",
		Password: "dev-password-12",
	})
	require.NoError(t, err)
	require.NoError(t, w.admin.ApproveApplication(ctx, devReg.User.ID))
	dev := mustLogin(t, w, "dev@example.com", "dev-password-12")
	devPrincipal := mustPrincipal(t, w, dev.AccessToken)

	direct, err := w.orgs.Join(ctx, devPrincipal, org.ID, org.JoiningCode)
	require.NoError(t, err)
	assert.True(t, direct)

	// Meera has no code, so her join waits on the creator.
	meeraReg, err := w.auth.Register(ctx, service.RegisterInput{
		Name:     "Meera",
		Email:    "meera@example.com",
		Password: "meera-password-1",
	})
	require.NoError(t, err)
	require.NoError(t, w.admin.ApproveApplication(ctx, meeraReg.User.ID))
	meera := mustLogin(t, w, "meera@example.com", "meera-password-1")
	meeraPrincipal := mustPrincipal(t, w, meera.AccessToken)

	direct, err = w.orgs.Join(ctx, meeraPrincipal, org.ID, "")
	require.NoError(t, err)
	assert.False(t, direct)

	// Until approved she is not a member and cannot read the chat.
	_, err = w.messages.List(ctx, meeraPrincipal, org.ID, 0)
	assert.ErrorIs(t, err, domain.ErrNotMember)

	// Only the creator can approve; Dev cannot.
	err = w.orgs.Approve(ctx, devPrincipal, org.ID, meeraPrincipal.UserID)
	assert.ErrorIs(t, err, domain.ErrNotOrganizationOwner)

	require.NoError(t, w.orgs.Approve(ctx, ashaPrincipal, org.ID, meeraPrincipal.UserID))

	detail, err := w.orgs.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Members, 3)
	assert.Empty(t, detail.PendingRequests)

	// Members chat; history comes back oldest first.
	_, err = w.messages.Send(ctx, ashaPrincipal, org.ID, "welcome everyone")
	require.NoError(t, err)
	_, err = w.messages.Send(ctx, meeraPrincipal, org.ID, "glad to be here")
	require.NoError(t, err)

	history, err := w.messages.List(ctx, devPrincipal, org.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "welcome everyone", history[0].Text)
	assert.Equal(t, "glad to be here", history[1].Text)

	// The creator removes Dev; his membership and chat access end together.
	require.NoError(t, w.orgs.RemoveMember(ctx, ashaPrincipal, org.ID, devPrincipal.UserID))
	_, err = w.messages.List(ctx, devPrincipal, org.ID, 0)
	assert.ErrorIs(t, err, domain.ErrNotMember)

	// Logout revokes refresh: the once-valid token dies with its record.
	require.NoError(t, w.auth.Logout(ctx, ashaPrincipal.UserID))
	_, err = w.auth.Refresh(ctx, asha.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

// A second login overwrites the stored refresh record, so the first
// session's refresh token stops working while the new one lives on.
func TestLoginSupersedesEarlierRefreshToken(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorld(t)

	user, err := w.admin.CreateUser(ctx, service.CreateUserInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "asha-password-1",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	first := mustLogin(t, w, "asha@example.com", "asha-password-1")
	// Tokens embed issued-at with second precision; a later login must not
	// produce a byte-identical token.
	time.Sleep(1100 * time.Millisecond)
	second := mustLogin(t, w, "asha@example.com", "asha-password-1")
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = w.auth.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = w.auth.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

// Role changes take effect on the next request because the Principal is
// hydrated from storage, not from token claims.
func TestPrincipalReflectsLiveRole(t *testing.T) {
	ctx := context.Background()
	w, _ := newWorld(t)

	user, err := w.admin.CreateUser(ctx, service.CreateUserInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "asha-password-1",
	})
	require.NoError(t, err)

	session := mustLogin(t, w, "asha@example.com", "asha-password-1")
	principal := mustPrincipal(t, w, session.AccessToken)
	assert.Equal(t, model.RoleUser, principal.Role)

	role := "admin"
	_, err = w.admin.UpdateUser(ctx, user.ID, service.UpdateUserInput{Role: &role})
	require.NoError(t, err)

	principal = mustPrincipal(t, w, session.AccessToken)
	assert.Equal(t, model.RoleAdmin, principal.Role)
}
