package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/admin-console-api/internal/models"
	"github.com/admin-console-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.PostRepository    = (*MockPostRepository)(nil)
	_ repository.LogRepository     = (*MockLogRepository)(nil)
	_ repository.AccountRepository = (*MockAccountRepository)(nil)
)

// MockUserRepository is a mock implementation of UserRepository.
// ListAll returns users in insertion order.
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.UserDocument
	order       []string
	ListError   error
	GetError    error
	InsertError error
	UpdateError error
	ListCalls   int

	// ListHook runs once, after ListAll has read the rows and before it
	// returns them
	ListHook func()
}

func NewMockUserRepository(docs ...models.UserDocument) *MockUserRepository {
	m := &MockUserRepository{Users: make(map[string]*models.UserDocument)}
	for i := range docs {
		d := docs[i]
		m.put(&d)
	}
	return m
}

func (m *MockUserRepository) put(doc *models.UserDocument) {
	if _, ok := m.Users[doc.ID]; !ok {
		m.order = append(m.order, doc.ID)
	}
	m.Users[doc.ID] = doc
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]models.UserDocument, error) {
	m.mu.Lock()
	m.ListCalls++
	if m.ListError != nil {
		m.mu.Unlock()
		return nil, m.ListError
	}
	out := make([]models.UserDocument, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.Users[id])
	}
	hook := m.ListHook
	m.ListHook = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.UserDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	doc, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.UserDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	cp := *user
	m.put(&cp)
	return nil
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return m.update(id, func(d *models.UserDocument) { d.Status = status })
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	return m.update(id, func(d *models.UserDocument) { d.Role = role })
}

func (m *MockUserRepository) update(id string, apply func(*models.UserDocument)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	doc, ok := m.Users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(doc)
	return nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	Posts     []*models.Post
	ListError error
}

func NewMockPostRepository(posts ...*models.Post) *MockPostRepository {
	return &MockPostRepository{Posts: posts}
}

func (m *MockPostRepository) ListByCreatedDesc(ctx context.Context) ([]*models.Post, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := append([]*models.Post(nil), m.Posts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.Posts = append(m.Posts, post)
	return nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	return len(m.Posts), nil
}

// MockLogRepository is a mock implementation of LogRepository
type MockLogRepository struct {
	mu          sync.Mutex
	Entries     []*models.LogEntry
	ListError   error
	AppendError error
	LastLimit   int
}

func NewMockLogRepository() *MockLogRepository {
	return &MockLogRepository{}
}

func (m *MockLogRepository) Latest(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastLimit = limit
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := append([]*models.LogEntry(nil), m.Entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockLogRepository) Append(ctx context.Context, entry *models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendError != nil {
		return m.AppendError
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockLogRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries), nil
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	Accounts map[string]*models.Account
	GetError error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[string]*models.Account)}
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Accounts[strings.ToLower(email)], nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.Accounts[strings.ToLower(account.Email)] = account
	return nil
}

func (m *MockAccountRepository) Count(ctx context.Context) (int, error) {
	return len(m.Accounts), nil
}
