package mocks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/admin-console-api/internal/auth"
	"github.com/admin-console-api/internal/events"
	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/shell"
	"github.com/admin-console-api/internal/stats"
	"github.com/admin-console-api/internal/userview"
)

// MockAuthService is a mock implementation of AuthService. Tokens map to
// identities; any unknown token is unauthenticated.
type MockAuthService struct {
	Tokens        map[string]*auth.Identity
	SignInFunc    func(ctx context.Context, email, password string) (*auth.Session, error)
	AllowFunc     func(clientKey string) error
	IdentifyError error
	SignedOut     []string
	hub           *events.Hub[auth.AuthEvent]
}

// Verify interface compliance
var _ service.AuthService = (*MockAuthService)(nil)

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{
		Tokens: make(map[string]*auth.Identity),
		hub:    events.NewHub[auth.AuthEvent](events.DefaultBuffer),
	}
}

// Grant registers token as a session for email
func (m *MockAuthService) Grant(token, email string) {
	m.Tokens[token] = &auth.Identity{Email: email, TokenID: token, ExpiresAt: time.Now().Add(time.Hour)}
}

func (m *MockAuthService) Allow(clientKey string) error {
	if m.AllowFunc != nil {
		return m.AllowFunc(clientKey)
	}
	return nil
}

func (m *MockAuthService) SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return m.session(email), nil
}

func (m *MockAuthService) SignInWithProvider(ctx context.Context, provider, code, redirectURI string) (*auth.Session, error) {
	if provider != models.ProviderGoogle {
		return nil, auth.ErrUnknownProvider
	}
	return m.session(code + "@example.com"), nil
}

func (m *MockAuthService) session(email string) *auth.Session {
	token := "token-" + strings.ToLower(email)
	m.Grant(token, email)
	m.hub.Publish(auth.AuthEvent{Email: email, SignedIn: true, At: time.Now()})
	return &auth.Session{Token: token, Email: email, ExpiresAt: m.Tokens[token].ExpiresAt}
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	id, ok := m.Tokens[token]
	if !ok {
		return auth.ErrUnauthenticated
	}
	delete(m.Tokens, token)
	m.SignedOut = append(m.SignedOut, token)
	m.hub.Publish(auth.AuthEvent{Email: id.Email, SignedIn: false, At: time.Now()})
	return nil
}

func (m *MockAuthService) Identify(ctx context.Context, token string) (*auth.Identity, error) {
	if m.IdentifyError != nil {
		return nil, m.IdentifyError
	}
	id, ok := m.Tokens[token]
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return id, nil
}

func (m *MockAuthService) Subscribe() (<-chan auth.AuthEvent, func()) {
	return m.hub.Subscribe()
}

// Publish emits an event to subscribers
func (m *MockAuthService) Publish(ev auth.AuthEvent) {
	m.hub.Publish(ev)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	Users        []models.User
	FetchError   error
	SetStatusErr error
	SetRoleErr   error
	InviteErr    error
	Calls        []string
}

// Verify interface compliance
var _ service.UserService = (*MockUserService)(nil)

func NewMockUserService(users ...models.User) *MockUserService {
	return &MockUserService{Users: users}
}

func (m *MockUserService) Fetch(ctx context.Context, refresh bool) ([]models.User, error) {
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return append([]models.User(nil), m.Users...), nil
}

func (m *MockUserService) Query(ctx context.Context, q userview.Query, refresh bool) (userview.Result, error) {
	users, err := m.Fetch(ctx, refresh)
	if err != nil {
		return userview.Result{}, err
	}
	return q.Run(users)
}

func (m *MockUserService) SetStatus(ctx context.Context, actor, id, status string) (*service.MutationResult, error) {
	m.Calls = append(m.Calls, "status:"+id+":"+status)
	if m.SetStatusErr != nil {
		return nil, m.SetStatusErr
	}
	return m.mutate(id, func(u *models.User) { u.Status = status }, "Updated status.")
}

func (m *MockUserService) SetRole(ctx context.Context, actor, id, role string) (*service.MutationResult, error) {
	m.Calls = append(m.Calls, "role:"+id+":"+role)
	if m.SetRoleErr != nil {
		return nil, m.SetRoleErr
	}
	return m.mutate(id, func(u *models.User) { u.Role = role }, "Updated role.")
}

func (m *MockUserService) mutate(id string, apply func(*models.User), msg string) (*service.MutationResult, error) {
	for i := range m.Users {
		if m.Users[i].ID == id {
			apply(&m.Users[i])
			return &service.MutationResult{Message: msg, User: m.Users[i], Users: m.Users}, nil
		}
	}
	return nil, service.ErrUserNotFound
}

func (m *MockUserService) Invite(ctx context.Context, actor, email string) (*service.MutationResult, error) {
	m.Calls = append(m.Calls, "invite:"+email)
	if m.InviteErr != nil {
		return nil, m.InviteErr
	}
	u := models.User{ID: "invited-" + email, Email: email, Status: models.StatusPending, Role: models.RoleViewer, InvitedAt: time.Now()}
	m.Users = append(m.Users, u)
	return &service.MutationResult{Message: "Invited " + email + " successfully.", User: u, Users: m.Users}, nil
}

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	Posts     []*models.Post
	ListError error
}

// Verify interface compliance
var _ service.PostService = (*MockPostService)(nil)

func (m *MockPostService) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []*models.Post
	for _, p := range m.Posts {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockLogService is a mock implementation of LogService
type MockLogService struct {
	Entries   []*models.LogEntry
	ListError error
	LastLimit int
}

// Verify interface compliance
var _ service.LogService = (*MockLogService)(nil)

func (m *MockLogService) Latest(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	m.LastLimit = limit
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.Entries, nil
}

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	Users []models.User
	Err   error
}

// Verify interface compliance
var _ service.DashboardService = (*MockDashboardService)(nil)

func (m *MockDashboardService) Summary(ctx context.Context, refresh bool) (*stats.Summary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	s := stats.Summarize(m.Users, time.UTC)
	return &s, nil
}

// MockPreferenceService is a mock implementation of PreferenceService
type MockPreferenceService struct {
	Themes map[string]string
}

// Verify interface compliance
var _ service.PreferenceService = (*MockPreferenceService)(nil)

func NewMockPreferenceService() *MockPreferenceService {
	return &MockPreferenceService{Themes: make(map[string]string)}
}

func (m *MockPreferenceService) Theme(ctx context.Context, email string) (string, error) {
	if t, ok := m.Themes[email]; ok {
		return t, nil
	}
	return shell.ThemeLight, nil
}

func (m *MockPreferenceService) SetTheme(ctx context.Context, email, theme string) error {
	if !shell.ValidThemes[theme] {
		return service.ErrInvalidTheme
	}
	m.Themes[email] = theme
	return nil
}

func (m *MockPreferenceService) Transition(ctx context.Context, email string, state shell.ViewState, action shell.Action) (shell.ViewState, error) {
	next, err := shell.Apply(state, action)
	if err != nil {
		return state, err
	}
	if shell.ThemeChanged(state, next) {
		m.Themes[email] = next.Theme
	}
	return next, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamUsersFunc func(ctx context.Context, w http.ResponseWriter, format string, q userview.Query) error
	Counts          map[string]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"users":    0,
			"posts":    0,
			"logs":     0,
			"accounts": 0,
		},
	}
}

func (m *MockExportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format string, q userview.Query) error {
	if m.StreamUsersFunc != nil {
		return m.StreamUsersFunc(ctx, w, format, q)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	count, ok := m.Counts[resource]
	if !ok {
		return 0, service.ErrUnknownResource
	}
	return count, nil
}
