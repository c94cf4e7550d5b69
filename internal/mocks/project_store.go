package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/store"
)

// MockProjectStore is an in-memory store.ProjectStore. Rosters keep insertion
// order, matching the join-time order of the Postgres store.
type MockProjectStore struct {
	CreateFn         func(ctx context.Context, project *domain.Project) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListMembersFn    func(ctx context.Context, projectID uuid.UUID) ([]domain.TeamMember, error)
	UpdateProgressFn func(ctx context.Context, id uuid.UUID, progress float64) error

	// Users resolves member details in AddMember. When nil only the ID is
	// recorded.
	Users *MockUserStore

	mu       sync.Mutex
	projects map[uuid.UUID]*domain.Project
	members  map[uuid.UUID][]domain.TeamMember
}

var _ store.ProjectStore = (*MockProjectStore)(nil)

// NewMockProjectStore creates an empty store.
func NewMockProjectStore() *MockProjectStore {
	return &MockProjectStore{
		projects: make(map[uuid.UUID]*domain.Project),
		members:  make(map[uuid.UUID][]domain.TeamMember),
	}
}

// Create implements store.ProjectStore.
func (m *MockProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, project)
	}
	if err := project.Validate(); err != nil {
		return store.NewStoreError("project", "create", "invalid project", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[project.ID]; exists {
		return store.ErrDuplicate
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

// AddMember implements store.ProjectStore.
func (m *MockProjectStore) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member := domain.TeamMember{ID: userID, Role: "member"}
	if m.Users != nil {
		u, err := m.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		member = u.AsTeamMember()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return store.ErrProjectNotFound
	}
	for _, existing := range m.members[projectID] {
		if existing.ID == userID {
			return nil
		}
	}
	m.members[projectID] = append(m.members[projectID], member)
	return nil
}

// GetByID implements store.ProjectStore.
func (m *MockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	c := *p
	return &c, nil
}

// ListMembers implements store.ProjectStore.
func (m *MockProjectStore) ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.TeamMember, error) {
	if m.ListMembersFn != nil {
		return m.ListMembersFn(ctx, projectID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	members := make([]domain.TeamMember, len(m.members[projectID]))
	copy(members, m.members[projectID])
	return members, nil
}

// ListForUser implements store.ProjectStore.
func (m *MockProjectStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []*domain.Project
	for id, p := range m.projects {
		if p.OwnerID == userID || m.isMember(id, userID) {
			c := *p
			found = append(found, &c)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found, nil
}

// UpdateProgress implements store.ProjectStore.
func (m *MockProjectStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	if m.UpdateProgressFn != nil {
		return m.UpdateProgressFn(ctx, id, progress)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return store.ErrProjectNotFound
	}
	p.Progress = progress
	return nil
}

// WithTx implements store.ProjectStore and returns the same store.
func (m *MockProjectStore) WithTx(*sql.Tx) store.ProjectStore {
	return m
}

// Add stores project with the given roster, bypassing validation.
func (m *MockProjectStore) Add(project *domain.Project, members ...domain.TeamMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *project
	m.projects[project.ID] = &c
	m.members[project.ID] = append([]domain.TeamMember(nil), members...)
}

// Progress returns the stored progress of project id.
func (m *MockProjectStore) Progress(id uuid.UUID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		return p.Progress
	}
	return 0
}

func (m *MockProjectStore) isMember(projectID, userID uuid.UUID) bool {
	for _, member := range m.members[projectID] {
		if member.ID == userID {
			return true
		}
	}
	return false
}
