package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
)

// ProjectStore defines the interface for projects and their rosters.
type ProjectStore interface {
	// Create saves a new project. The owner must exist.
	Create(ctx context.Context, project *domain.Project) error

	// AddMember attaches a user to the project roster. Adding an existing
	// member is a no-op.
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error

	// GetByID returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// ListMembers returns the roster ordered by join time, then name. The
	// order is stable across calls so round-robin assignment is repeatable.
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.TeamMember, error)

	// ListForUser returns the projects the user owns or belongs to, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// UpdateProgress stores a recomputed progress value.
	// Returns ErrProjectNotFound if the project does not exist.
	UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error

	// WithTx returns a ProjectStore bound to tx.
	WithTx(tx *sql.Tx) ProjectStore
}
