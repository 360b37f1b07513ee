package mocks

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/admin-console-api/internal/service"
)

// Verify interface compliance
var (
	_ service.SnapshotCache   = (*MockSnapshotCache)(nil)
	_ service.PreferenceStore = (*MockPreferenceStore)(nil)
)

// MockSnapshotCache keeps encoded snapshots and generations in memory
type MockSnapshotCache struct {
	mu              sync.Mutex
	Entries         map[string][]byte
	Generations     map[string]int64
	GetError        error
	GenerationError error
	SetError        error
	DeleteError     error
	Deleted         []string
	Skipped         int
}

func NewMockSnapshotCache() *MockSnapshotCache {
	return &MockSnapshotCache{
		Entries:     make(map[string][]byte),
		Generations: make(map[string]int64),
	}
}

func (m *MockSnapshotCache) Get(ctx context.Context, collection string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return false, m.GetError
	}
	data, ok := m.Entries[collection]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (m *MockSnapshotCache) Generation(ctx context.Context, collection string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GenerationError != nil {
		return 0, m.GenerationError
	}
	return m.Generations[collection], nil
}

func (m *MockSnapshotCache) Set(ctx context.Context, collection string, gen int64, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return false, m.SetError
	}
	if m.Generations[collection] != gen {
		m.Skipped++
		return false, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	m.Entries[collection] = data
	return true, nil
}

func (m *MockSnapshotCache) Delete(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, collection)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.Generations[collection]++
	delete(m.Entries, collection)
	return nil
}

// MockPreferenceStore keeps themes in memory keyed by lowercased email
type MockPreferenceStore struct {
	mu       sync.Mutex
	Themes   map[string]string
	GetError error
	SetError error
}

func NewMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{Themes: make(map[string]string)}
}

func (m *MockPreferenceStore) GetTheme(ctx context.Context, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return "", m.GetError
	}
	return m.Themes[strings.ToLower(email)], nil
}

func (m *MockPreferenceStore) SetTheme(ctx context.Context, email, theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	m.Themes[strings.ToLower(email)] = theme
	return nil
}
