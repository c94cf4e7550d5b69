package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create saves a new task with its required skills.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateStatus persists Status, CompletedAt and UpdatedAt of task.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, task *domain.Task) error

	// Assign sets the assignee of a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Assign(ctx context.Context, taskID, memberID uuid.UUID, memberName string) error

	// ListByProject returns the project's tasks ordered by creation.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)

	// ListUnassigned returns the project's tasks without an assignee, ordered
	// by creation.
	ListUnassigned(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)

	// ListByAssignee returns the user's tasks ordered by deadline.
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListDueBetween returns the user's tasks with a deadline in [from, to),
	// ordered by deadline.
	ListDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)

	// CountProgress returns how many of the project's tasks are COMPLETED and
	// how many exist in total.
	CountProgress(ctx context.Context, projectID uuid.UUID) (completed, total int, err error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
