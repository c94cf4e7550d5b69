package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. Listing order follows
// insertion order, which stands in for creation time.
type MockTaskStore struct {
	CreateFn        func(ctx context.Context, task *domain.Task) error
	// FailCreate, when set, is consulted by the default Create. A non-nil
	// result is returned and the task is not stored.
	FailCreate      func(task *domain.Task) error
	AssignFn        func(ctx context.Context, taskID, memberID uuid.UUID, memberName string) error
	CountProgressFn func(ctx context.Context, projectID uuid.UUID) (int, int, error)

	mu    sync.Mutex
	tasks []*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if m.FailCreate != nil {
		if err := m.FailCreate(task); err != nil {
			return err
		}
	}
	if err := task.Validate(); err != nil {
		return store.NewStoreError("task", "create", "invalid task", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, copyTask(task))
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.find(id); t != nil {
		return copyTask(t), nil
	}
	return nil, store.ErrTaskNotFound
}

// UpdateStatus implements store.TaskStore.
func (m *MockTaskStore) UpdateStatus(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(task.ID)
	if t == nil {
		return store.ErrTaskNotFound
	}
	t.Status = task.Status
	t.CompletedAt = task.CompletedAt
	t.UpdatedAt = task.UpdatedAt
	return nil
}

// Assign implements store.TaskStore.
func (m *MockTaskStore) Assign(ctx context.Context, taskID, memberID uuid.UUID, memberName string) error {
	if m.AssignFn != nil {
		return m.AssignFn(ctx, taskID, memberID, memberName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.find(taskID)
	if t == nil {
		return store.ErrTaskNotFound
	}
	id := memberID
	t.AssignedTo = &id
	t.AssignedToName = memberName
	return nil
}

// ListByProject implements store.TaskStore.
func (m *MockTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.ProjectID == projectID }), nil
}

// ListUnassigned implements store.TaskStore.
func (m *MockTaskStore) ListUnassigned(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.ProjectID == projectID && t.AssignedTo == nil }), nil
}

// ListByAssignee implements store.TaskStore.
func (m *MockTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	found := m.filter(func(t *domain.Task) bool { return t.AssignedTo != nil && *t.AssignedTo == userID })
	sortByDeadline(found)
	return found, nil
}

// ListDueBetween implements store.TaskStore.
func (m *MockTaskStore) ListDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	found := m.filter(func(t *domain.Task) bool {
		return t.AssignedTo != nil && *t.AssignedTo == userID &&
			!t.Deadline.Before(from) && t.Deadline.Before(to)
	})
	sortByDeadline(found)
	return found, nil
}

// CountProgress implements store.TaskStore.
func (m *MockTaskStore) CountProgress(ctx context.Context, projectID uuid.UUID) (int, int, error) {
	if m.CountProgressFn != nil {
		return m.CountProgressFn(ctx, projectID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var completed, total int
	for _, t := range m.tasks {
		if t.ProjectID != projectID {
			continue
		}
		total++
		if t.Status == domain.TaskStatusCompleted {
			completed++
		}
	}
	return completed, total, nil
}

// WithTx implements store.TaskStore and returns the same store.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

// Add stores tasks directly, bypassing validation.
func (m *MockTaskStore) Add(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.tasks = append(m.tasks, copyTask(t))
	}
}

// All returns every stored task in insertion order.
func (m *MockTaskStore) All() []*domain.Task {
	return m.filter(func(*domain.Task) bool { return true })
}

func (m *MockTaskStore) find(id uuid.UUID) *domain.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (m *MockTaskStore) filter(keep func(*domain.Task) bool) []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if keep(t) {
			found = append(found, copyTask(t))
		}
	}
	return found
}

func sortByDeadline(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Deadline.Before(tasks[j].Deadline) })
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	c.RequiredSkills = append([]string(nil), t.RequiredSkills...)
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		c.AssignedTo = &id
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.EstimatedHours != nil {
		h := *t.EstimatedHours
		c.EstimatedHours = &h
	}
	return &c
}
