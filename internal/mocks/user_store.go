package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/store"
)

// MockUserStore is an in-memory store.UserStore.
type MockUserStore struct {
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	SearchByEmailFn func(ctx context.Context, fragment string, limit int) ([]*domain.User, error)

	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

// Create implements store.UserStore. Emails are unique case-insensitively.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "invalid user", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailExists
		}
	}
	stored := *user
	stored.Password = ""
	stored.Skills = append([]string(nil), user.Skills...)
	m.users[user.ID] = &stored
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// SearchByEmail implements store.UserStore.
func (m *MockUserStore) SearchByEmail(ctx context.Context, fragment string, limit int) ([]*domain.User, error) {
	if m.SearchByEmailFn != nil {
		return m.SearchByEmailFn(ctx, fragment, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(fragment)
	var found []*domain.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			found = append(found, copyUser(u))
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Email < found[j].Email })
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// GetByIDs implements store.UserStore. Unknown IDs are skipped.
func (m *MockUserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			found = append(found, copyUser(u))
		}
	}
	return found, nil
}

// WithTx implements store.UserStore and returns the same store.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

// Add stores user directly, bypassing validation.
func (m *MockUserStore) Add(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = copyUser(user)
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Skills = append([]string(nil), u.Skills...)
	return &c
}
