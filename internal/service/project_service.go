package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/store"
)

// CreateProjectInput is the data needed to create a project.
type CreateProjectInput struct {
	Title       string
	Description string
	Category    string
	StartDate   time.Time
	Deadline    time.Time
	// MemberIDs lists users to put on the roster. Unknown IDs are skipped.
	MemberIDs []uuid.UUID
}

// ProjectDetails is a project with its roster and task counts.
type ProjectDetails struct {
	Project             *domain.Project
	Members             []domain.TeamMember
	TasksCount          int
	CompletedTasksCount int
}

// ProjectService provides project operations.
type ProjectService interface {
	// CreateProject creates a project owned by ownerID. The owner is not added
	// to the roster unless listed in MemberIDs.
	CreateProject(ctx context.Context, ownerID uuid.UUID, in CreateProjectInput) (*ProjectDetails, error)

	// GetProject returns store.ErrProjectNotFound for unknown IDs.
	GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectDetails, error)

	// ListProjects returns the projects userID owns or belongs to.
	ListProjects(ctx context.Context, userID uuid.UUID) ([]*ProjectDetails, error)
}

type projectServiceImpl struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	users    store.UserStore
	tx       store.Transactor
	logger   *slog.Logger
}

var _ ProjectService = (*projectServiceImpl)(nil)

// NewProjectService returns an error if any required dependency is nil.
func NewProjectService(
	projects store.ProjectStore,
	tasks store.TaskStore,
	users store.UserStore,
	tx store.Transactor,
	l *slog.Logger,
) (ProjectService, error) {
	switch {
	case projects == nil:
		return nil, &ServiceError{Service: "project", Operation: "create_service", Message: "projects store cannot be nil"}
	case tasks == nil:
		return nil, &ServiceError{Service: "project", Operation: "create_service", Message: "tasks store cannot be nil"}
	case users == nil:
		return nil, &ServiceError{Service: "project", Operation: "create_service", Message: "users store cannot be nil"}
	case tx == nil:
		return nil, &ServiceError{Service: "project", Operation: "create_service", Message: "transactor cannot be nil"}
	}
	if l == nil {
		l = slog.Default()
	}
	return &projectServiceImpl{
		projects: projects,
		tasks:    tasks,
		users:    users,
		tx:       tx,
		logger:   l.With("component", "project_service"),
	}, nil
}

// CreateProject implements ProjectService.
func (s *projectServiceImpl) CreateProject(
	ctx context.Context,
	ownerID uuid.UUID,
	in CreateProjectInput,
) (*ProjectDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, newServiceError("project", "create_project", "failed to load owner", err)
	}

	project, err := domain.NewProject(ownerID, in.Title, in.Description, in.Category, in.StartDate, in.Deadline)
	if err != nil {
		return nil, err
	}

	memberIDs := uniqueIDs(in.MemberIDs)
	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		projects := s.projects.WithTx(tx)
		if err := projects.Create(ctx, project); err != nil {
			return err
		}

		members, err := s.users.WithTx(tx).GetByIDs(ctx, memberIDs)
		if err != nil {
			return err
		}
		if skipped := len(memberIDs) - len(members); skipped > 0 {
			log.Debug("skipping unknown member ids", "project_id", project.ID, "skipped", skipped)
		}
		for _, m := range members {
			if err := projects.AddMember(ctx, project.ID, m.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create project", "error", err, "owner_id", ownerID)
		return nil, newServiceError("project", "create_project", "failed to save project", err)
	}

	log.Info("project created", "project_id", project.ID, "owner_id", ownerID)
	return s.details(ctx, project)
}

// GetProject implements ProjectService.
func (s *projectServiceImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectDetails, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, newServiceError("project", "get_project", "failed to load project", err)
	}
	return s.details(ctx, project)
}

// ListProjects implements ProjectService.
func (s *projectServiceImpl) ListProjects(ctx context.Context, userID uuid.UUID) ([]*ProjectDetails, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, newServiceError("project", "list_projects", "failed to list projects", err)
	}

	out := make([]*ProjectDetails, 0, len(projects))
	for _, p := range projects {
		d, err := s.details(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *projectServiceImpl) details(ctx context.Context, project *domain.Project) (*ProjectDetails, error) {
	members, err := s.projects.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, newServiceError("project", "load_members", "failed to load roster", err)
	}
	completed, total, err := s.tasks.CountProgress(ctx, project.ID)
	if err != nil {
		return nil, newServiceError("project", "count_tasks", "failed to count tasks", err)
	}
	return &ProjectDetails{
		Project:             project,
		Members:             members,
		TasksCount:          total,
		CompletedTasksCount: completed,
	}, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
