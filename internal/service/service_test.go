package service_test

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/mocks"
	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
	"github.com/admin-console-api/internal/service"
	"github.com/admin-console-api/internal/shell"
	"github.com/admin-console-api/internal/userview"
)

type fixture struct {
	svc       *service.Services
	users     *mocks.MockUserRepository
	posts     *mocks.MockPostRepository
	logs      *mocks.MockLogRepository
	accounts  *mocks.MockAccountRepository
	snapshots *mocks.MockSnapshotCache
	prefs     *mocks.MockPreferenceStore
}

func at(day, hour int) *time.Time {
	t := time.Date(2025, 5, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func seedUsers() []models.UserDocument {
	return []models.UserDocument{
		{ID: "u1", Email: "carol@example.com", Status: models.StatusPending, Role: models.RoleViewer, InvitedAt: at(5, 9)},
		{ID: "u2", Email: "alice@example.com", Status: models.StatusApproved, Role: models.RoleAdmin, InvitedAt: at(6, 9)},
		{ID: "u3", Email: "bob@corp.io", Status: models.StatusApproved, InvitedAt: at(12, 9)},
	}
}

func newFixture(t *testing.T, docs ...models.UserDocument) *fixture {
	t.Helper()
	f := &fixture{
		users:     mocks.NewMockUserRepository(docs...),
		posts:     mocks.NewMockPostRepository(),
		logs:      mocks.NewMockLogRepository(),
		accounts:  mocks.NewMockAccountRepository(),
		snapshots: mocks.NewMockSnapshotCache(),
		prefs:     mocks.NewMockPreferenceStore(),
	}
	cfg := &config.Config{Stats: config.StatsConfig{Timezone: "UTC"}}
	svc, err := service.NewServices(service.Deps{
		Repos: &repository.Repositories{
			User:    f.users,
			Post:    f.posts,
			Log:     f.logs,
			Account: f.accounts,
		},
		Snapshots:   f.snapshots,
		Preferences: f.prefs,
		Auth:        mocks.NewMockAuthService(),
	}, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(svc.Invalidator.Close)
	f.svc = svc
	return f
}

func TestNewServices_InvalidTimezone(t *testing.T) {
	cfg := &config.Config{Stats: config.StatsConfig{Timezone: "Mars/Olympus"}}
	_, err := service.NewServices(service.Deps{Repos: &repository.Repositories{}}, cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestUserService_FetchUsesSnapshot(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	ctx := context.Background()

	first, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.users.ListCalls)

	_, err = f.svc.Users.Fetch(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.users.ListCalls)
}

func TestUserService_FetchKeepsStoreOrder(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	users, err := f.svc.Users.Fetch(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, []string{users[0].ID, users[1].ID, users[2].ID})
	assert.Equal(t, "", users[2].Role)
}

func TestUserService_FetchSnapshotErrorFallsBackToStore(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	f.snapshots.GetError = errors.New("redis down")

	users, err := f.svc.Users.Fetch(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestUserService_ReloadRacingMutationKeepsNewerSnapshot(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	ctx := context.Background()

	// The mutation commits after the first reader has read the old rows but
	// before it writes its snapshot
	f.users.ListHook = func() {
		_, err := f.svc.Users.SetStatus(ctx, "admin@example.com", "u1", models.StatusApproved)
		require.NoError(t, err)
	}

	stale, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stale[0].Status)
	assert.Equal(t, 1, f.snapshots.Skipped)

	users, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, users[0].Status)
	assert.Equal(t, 2, f.users.ListCalls)
}

func TestUserService_GenerationErrorSkipsSnapshot(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	f.snapshots.GenerationError = errors.New("redis down")
	ctx := context.Background()

	users, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Empty(t, f.snapshots.Entries)

	_, err = f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.users.ListCalls)
}

func TestUserService_FetchLoadError(t *testing.T) {
	f := newFixture(t)
	f.users.ListError = errors.New("connection refused")

	_, err := f.svc.Users.Fetch(context.Background(), true)
	require.Error(t, err)

	var loadErr *service.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "Failed to load users.", err.Error())
}

func TestUserService_Query(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	q := userview.NewQuery(1).SetStatus(models.StatusApproved).RequestSort(userview.KeyEmail)
	res, err := f.svc.Users.Query(context.Background(), q, false)
	require.NoError(t, err)
	require.Len(t, res.Matched, 2)
	assert.Equal(t, "u2", res.Page.Items[0].ID)
	assert.Equal(t, 2, res.Page.TotalPages)

	_, err = f.svc.Users.Query(context.Background(), userview.NewQuery(8).RequestSort("password"), false)
	assert.ErrorIs(t, err, userview.ErrUnknownSortKey)
}

func TestUserService_SetStatus(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	ctx := context.Background()

	events, cancel := f.svc.Invalidator.Subscribe()
	defer cancel()

	_, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)

	res, err := f.svc.Users.SetStatus(ctx, "root@example.com", "u1", models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, res.User.Status)
	assert.Equal(t, "carol@example.com", res.User.Email)
	assert.Len(t, res.Users, 3)
	assert.Equal(t, models.StatusApproved, f.users.Users["u1"].Status)

	require.Len(t, f.logs.Entries, 1)
	assert.Equal(t, "carol@example.com", f.logs.Entries[0].Email)
	assert.Equal(t, models.ActionStatusPrefix+models.StatusApproved, f.logs.Entries[0].Action)
	assert.NotEmpty(t, f.logs.Entries[0].ID)

	assert.Contains(t, f.snapshots.Deleted, service.CollectionUsers)
	assert.Equal(t, 2, f.users.ListCalls)

	select {
	case inv := <-events:
		assert.Equal(t, service.CollectionUsers, inv.Collection)
		assert.Equal(t, "status", inv.Reason)
	case <-time.After(time.Second):
		t.Fatal("no invalidation received")
	}

	// The reloaded snapshot already reflects the write
	users, err := f.svc.Users.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, users[0].Status)
	assert.Equal(t, 2, f.users.ListCalls)
}

func TestUserService_SetRole(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	res, err := f.svc.Users.SetRole(context.Background(), "root@example.com", "u3", models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, res.User.Role)
	require.Len(t, f.logs.Entries, 1)
	assert.Equal(t, "role:editor", f.logs.Entries[0].Action)
}

func TestUserService_MutationErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		mutate  func(f *fixture) error
		wantErr error
	}{
		{
			name: "invalid status",
			mutate: func(f *fixture) error {
				_, err := f.svc.Users.SetStatus(context.Background(), "root", "u1", "archived")
				return err
			},
			wantErr: service.ErrInvalidStatus,
		},
		{
			name: "invalid role",
			mutate: func(f *fixture) error {
				_, err := f.svc.Users.SetRole(context.Background(), "root", "u1", "owner")
				return err
			},
			wantErr: service.ErrInvalidRole,
		},
		{
			name: "unknown id",
			mutate: func(f *fixture) error {
				_, err := f.svc.Users.SetStatus(context.Background(), "root", "missing", models.StatusRevoked)
				return err
			},
			wantErr: service.ErrUserNotFound,
		},
		{
			name:  "store failure",
			setup: func(f *fixture) { f.users.UpdateError = errors.New("write conflict") },
			mutate: func(f *fixture) error {
				_, err := f.svc.Users.SetRole(context.Background(), "root", "u1", models.RoleAdmin)
				return err
			},
			wantErr: service.ErrUpdateFailed,
		},
		{
			name:  "lookup failure",
			setup: func(f *fixture) { f.users.GetError = errors.New("timeout") },
			mutate: func(f *fixture) error {
				_, err := f.svc.Users.SetStatus(context.Background(), "root", "u1", models.StatusRevoked)
				return err
			},
			wantErr: service.ErrUpdateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, seedUsers()...)
			if tt.setup != nil {
				tt.setup(f)
			}

			err := tt.mutate(f)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.logs.Entries)
			assert.Empty(t, f.snapshots.Deleted)
		})
	}
}

func TestUserService_InvalidEnumIsInputError(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	_, err := f.svc.Users.SetStatus(context.Background(), "root", "u1", "archived")
	var inputErr *service.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "status", inputErr.Field.Field)
	assert.Contains(t, err.Error(), "pending, approved, revoked")
}

func TestUserService_LogFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	f.logs.AppendError = errors.New("logs unavailable")

	res, err := f.svc.Users.SetStatus(context.Background(), "root", "u2", models.StatusRevoked)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, res.User.Status)
}

func TestUserService_Invite(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	res, err := f.svc.Users.Invite(context.Background(), "root@example.com", "  new@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Invited new@example.com successfully.", res.Message)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, models.StatusPending, res.User.Status)
	assert.Equal(t, models.RoleViewer, res.User.Role)
	assert.False(t, res.User.InvitedAt.IsZero())
	assert.Len(t, res.Users, 4)

	require.Len(t, f.logs.Entries, 1)
	assert.Equal(t, models.ActionInvite, f.logs.Entries[0].Action)
	assert.Equal(t, "new@example.com", f.logs.Entries[0].Email)
	assert.Contains(t, f.snapshots.Deleted, service.CollectionUsers)
}

func TestUserService_InviteRejectsBeforeWrite(t *testing.T) {
	tests := []struct {
		email   string
		wantErr error
	}{
		{"", service.ErrEmptyEmail},
		{"   ", service.ErrEmptyEmail},
		{"not-an-email", service.ErrInvalidEmail},
		{"a@", service.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Users.Invite(context.Background(), "root", tt.email)
			assert.ErrorIs(t, err, tt.wantErr)

			count, _ := f.users.Count(context.Background())
			assert.Zero(t, count)
			assert.Zero(t, f.users.ListCalls)
		})
	}
}

func TestUserService_InviteStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.users.InsertError = errors.New("duplicate key")

	_, err := f.svc.Users.Invite(context.Background(), "root", "dup@example.com")
	require.Error(t, err)
	assert.Equal(t, "Failed to invite user. Error: duplicate key", err.Error())
	assert.Empty(t, f.logs.Entries)
	assert.Empty(t, f.snapshots.Deleted)
}

func TestPostService_List(t *testing.T) {
	f := newFixture(t)
	f.posts.Posts = []*models.Post{
		{ID: "p1", Platform: models.PlatformBlog, Status: "draft", CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Platform: models.PlatformTwitter, Status: "published", CreatedAt: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "p3", Platform: models.PlatformBlog, Status: "queued", CreatedAt: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)},
	}

	all, err := f.svc.Posts.List(context.Background(), models.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p2", all[0].ID)

	blogs, err := f.svc.Posts.List(context.Background(), models.PostFilter{Platform: models.PlatformBlog})
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, "p3", blogs[0].ID)

	unknown, err := f.svc.Posts.List(context.Background(), models.PostFilter{Status: models.PostStatusUnknown})
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "p3", unknown[0].ID)
}

func TestPostService_LoadError(t *testing.T) {
	f := newFixture(t)
	f.posts.ListError = errors.New("boom")

	_, err := f.svc.Posts.List(context.Background(), models.PostFilter{})
	assert.EqualError(t, err, "Failed to load posts.")
}

func TestLogService_LimitIsCapped(t *testing.T) {
	f := newFixture(t)

	for _, limit := range []int{0, -3, 500} {
		_, err := f.svc.Logs.Latest(context.Background(), limit)
		require.NoError(t, err)
		assert.Equal(t, models.MaxLogEntries, f.logs.LastLimit)
	}

	_, err := f.svc.Logs.Latest(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, f.logs.LastLimit)

	f.logs.ListError = errors.New("boom")
	_, err = f.svc.Logs.Latest(context.Background(), 20)
	assert.EqualError(t, err, "Failed to load logs.")
}

func TestDashboardService_Summary(t *testing.T) {
	f := newFixture(t, seedUsers()...)

	s, err := f.svc.Dashboard.Summary(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalUsers)
	assert.Equal(t, 2, s.ApprovedUsers)
	assert.Equal(t, "66.7%", s.ApprovalRateLabel)
	assert.Equal(t, "Viewer", s.MostCommonRole)
	require.Len(t, s.Weekly, 2)
	assert.Equal(t, "2025-05-04", s.Weekly[0].Date)

	f.users.ListError = errors.New("boom")
	_, err = f.svc.Dashboard.Summary(context.Background(), true)
	assert.EqualError(t, err, "Failed to load users.")
}

func TestPreferenceService_Theme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	theme, err := f.svc.Preferences.Theme(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, shell.ThemeLight, theme)

	require.NoError(t, f.svc.Preferences.SetTheme(ctx, "root@example.com", shell.ThemeOceanic))
	theme, err = f.svc.Preferences.Theme(ctx, "Root@Example.com")
	require.NoError(t, err)
	assert.Equal(t, shell.ThemeOceanic, theme)

	assert.ErrorIs(t, f.svc.Preferences.SetTheme(ctx, "root@example.com", "neon"), service.ErrInvalidTheme)

	f.prefs.Themes["root@example.com"] = "neon"
	theme, err = f.svc.Preferences.Theme(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, shell.ThemeLight, theme)
}

func TestPreferenceService_TransitionPersistsTheme(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	state := shell.NewViewState(1024, shell.ThemeLight)

	next, err := f.svc.Preferences.Transition(ctx, "root@example.com", state, shell.Action{Type: shell.ActionCycleTheme})
	require.NoError(t, err)
	assert.Equal(t, shell.ThemeDark, next.Theme)
	assert.Equal(t, shell.ThemeDark, f.prefs.Themes["root@example.com"])

	next, err = f.svc.Preferences.Transition(ctx, "root@example.com", next, shell.Action{Type: shell.ActionNavigate, Page: shell.PageLogs})
	require.NoError(t, err)
	assert.Equal(t, "Logs", next.Title())
	assert.Equal(t, shell.ThemeDark, f.prefs.Themes["root@example.com"])

	_, err = f.svc.Preferences.Transition(ctx, "root@example.com", next, shell.Action{Type: "explode"})
	assert.ErrorIs(t, err, shell.ErrUnknownAction)
}

func TestPreferenceService_TransitionSurvivesStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.prefs.SetError = errors.New("redis down")

	next, err := f.svc.Preferences.Transition(context.Background(), "root", shell.NewViewState(400, ""), shell.Action{Type: shell.ActionSetTheme, Theme: shell.ThemeOceanic})
	require.NoError(t, err)
	assert.Equal(t, shell.ThemeOceanic, next.Theme)
}

func TestExportService_StreamUsersCSV(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	w := httptest.NewRecorder()

	q := userview.NewQuery(1).SetStatus(models.StatusApproved).RequestSort(userview.KeyEmail)
	require.NoError(t, f.svc.Export.StreamUsers(context.Background(), w, service.FormatCSV, q))

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "email", "status", "role", "invited_at"}, rows[0])
	assert.Equal(t, "alice@example.com", rows[1][1])
	// Missing role is exported as viewer; export is not paginated
	assert.Equal(t, []string{"u3", "bob@corp.io", "approved", "viewer", "2025-05-12T09:00:00Z"}, rows[2])
}

func TestExportService_StreamUsersNDJSON(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	w := httptest.NewRecorder()

	require.NoError(t, f.svc.Export.StreamUsers(context.Background(), w, service.FormatNDJSON, userview.NewQuery(8)))
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	scanner := bufio.NewScanner(w.Body)
	count := 0
	for scanner.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		assert.NotEmpty(t, row["email"])
		count++
	}
	assert.Equal(t, 3, count)
}

func TestExportService_StreamUsersJSON(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	w := httptest.NewRecorder()

	q := userview.NewQuery(8).SetSearch("EXAMPLE")
	require.NoError(t, f.svc.Export.StreamUsers(context.Background(), w, service.FormatJSON, q))

	var rows []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "u1", rows[0].ID)
}

func TestExportService_EmptyJSONIsArray(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()

	require.NoError(t, f.svc.Export.StreamUsers(context.Background(), w, service.FormatJSON, userview.NewQuery(8)))
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestExportService_UnsupportedFormatWritesNothing(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	w := httptest.NewRecorder()

	err := f.svc.Export.StreamUsers(context.Background(), w, "xml", userview.NewQuery(8))
	assert.ErrorIs(t, err, service.ErrUnsupportedFormat)
	assert.Zero(t, w.Body.Len())
	assert.Zero(t, f.users.ListCalls)
}

func TestExportService_GetCount(t *testing.T) {
	f := newFixture(t, seedUsers()...)
	require.NoError(t, f.accounts.Create(context.Background(), &models.Account{ID: "a1", Email: "root@example.com"}))

	for resource, want := range map[string]int{"users": 3, "posts": 0, "logs": 0, "accounts": 1} {
		got, err := f.svc.Export.GetCount(context.Background(), resource)
		require.NoError(t, err)
		assert.Equal(t, want, got, resource)
	}

	_, err := f.svc.Export.GetCount(context.Background(), "articles")
	assert.ErrorIs(t, err, service.ErrUnknownResource)
}

func TestInvalidator_DeleteFailureStillPublishes(t *testing.T) {
	snapshots := mocks.NewMockSnapshotCache()
	snapshots.DeleteError = errors.New("redis down")
	inv := service.NewInvalidator(snapshots, zerolog.Nop())
	defer inv.Close()

	ch, cancel := inv.Subscribe()
	defer cancel()

	got := inv.Invalidate(context.Background(), service.CollectionUsers, "invite")
	assert.Equal(t, "invite", got.Reason)

	select {
	case ev := <-ch:
		assert.Equal(t, got, ev)
	case <-time.After(time.Second):
		t.Fatal("no invalidation received")
	}
}
