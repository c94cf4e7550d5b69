package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/store"
)

// CreateTaskInput is the data needed to create a task by hand.
type CreateTaskInput struct {
	ProjectID      uuid.UUID
	Title          string
	Description    string
	AssignedTo     *uuid.UUID
	Deadline       time.Time
	Priority       domain.TaskPriority
	RequiredSkills []string
	EstimatedHours *int
}

// TaskService manages the task lifecycle.
type TaskService interface {
	// CreateTask creates a TODO task. The project and, if given, the assignee
	// must exist.
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)

	// UpdateTaskStatus moves a task to status. Entering COMPLETED stamps
	// CompletedAt. Project progress is recomputed by the task.status_changed
	// subscriber.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status domain.TaskStatus) (*domain.Task, error)

	// ListMyTasks returns the tasks assigned to userID ordered by deadline.
	ListMyTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListTodayTasks returns the tasks assigned to userID that are due today.
	ListTodayTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
}

// TaskServiceOption configures a TaskService.
type TaskServiceOption func(*taskServiceImpl)

// WithClock replaces time.Now and the location used to find "today".
func WithClock(now func() time.Time, loc *time.Location) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.now = now
		s.loc = loc
	}
}

type taskServiceImpl struct {
	tasks    store.TaskStore
	projects store.ProjectStore
	users    store.UserStore
	tx       store.Transactor
	emitter  events.EventEmitter
	now      func() time.Time
	loc      *time.Location
	logger   *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService returns an error if any required dependency is nil.
func NewTaskService(
	tasks store.TaskStore,
	projects store.ProjectStore,
	users store.UserStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	l *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	switch {
	case tasks == nil:
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "tasks store cannot be nil"}
	case projects == nil:
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "projects store cannot be nil"}
	case users == nil:
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "users store cannot be nil"}
	case tx == nil:
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "transactor cannot be nil"}
	case emitter == nil:
		return nil, &ServiceError{Service: "task", Operation: "create_service", Message: "event emitter cannot be nil"}
	}
	if l == nil {
		l = slog.Default()
	}

	s := &taskServiceImpl{
		tasks:    tasks,
		projects: projects,
		users:    users,
		tx:       tx,
		emitter:  emitter,
		now:      time.Now,
		loc:      time.Local,
		logger:   l.With("component", "task_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTask implements TaskService.
func (s *taskServiceImpl) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, newServiceError("task", "create_task", "failed to load project", err)
	}

	task, err := domain.NewTask(project.ID, in.Title, in.Description, in.Deadline, in.Priority)
	if err != nil {
		return nil, err
	}
	task.ProjectTitle = project.Title
	task.RequiredSkills = cleanSkills(in.RequiredSkills)
	task.EstimatedHours = in.EstimatedHours
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if in.AssignedTo != nil {
		assignee, err := s.users.GetByID(ctx, *in.AssignedTo)
		if err != nil {
			return nil, newServiceError("task", "create_task", "failed to load assignee", err)
		}
		task.AssignTo(assignee.AsTeamMember())
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		log.Error("failed to create task", "error", err, "project_id", project.ID)
		return nil, newServiceError("task", "create_task", "failed to save task", err)
	}

	log.Info("task created", "task_id", task.ID, "project_id", project.ID)
	s.emit(ctx, log, events.TypeTaskCreated, events.TaskPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		Status:    string(task.Status),
	})
	return task, nil
}

// UpdateTaskStatus implements TaskService.
func (s *taskServiceImpl) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	var (
		task     *domain.Task
		previous domain.TaskStatus
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		var err error
		task, err = txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		previous = task.Status
		if err := task.TransitionTo(status, s.now().UTC()); err != nil {
			return err
		}
		return txTasks.UpdateStatus(ctx, task)
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update task status", "error", err, "task_id", taskID)
		}
		return nil, newServiceError("task", "update_task_status", "failed to update status", err)
	}

	log.Info("task status updated",
		"task_id", task.ID,
		"from", previous,
		"to", task.Status)
	s.emit(ctx, log, events.TypeTaskStatusChanged, events.TaskPayload{
		TaskID:         task.ID,
		ProjectID:      task.ProjectID,
		Status:         string(task.Status),
		PreviousStatus: string(previous),
	})
	return task, nil
}

// ListMyTasks implements TaskService.
func (s *taskServiceImpl) ListMyTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, newServiceError("task", "list_my_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// ListTodayTasks implements TaskService.
func (s *taskServiceImpl) ListTodayTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	from := domain.TruncateToDate(s.now().In(s.loc))
	to := from.AddDate(0, 0, 1)

	tasks, err := s.tasks.ListDueBetween(ctx, userID, from, to)
	if err != nil {
		return nil, newServiceError("task", "list_today_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// emit publishes a task event. The write has already been committed, so a
// failing subscriber is logged and not returned.
func (s *taskServiceImpl) emit(ctx context.Context, log *slog.Logger, eventType string, payload events.TaskPayload) {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build task event", "error", err, "event_type", eventType)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task event handler failed",
			"error", err,
			"event_type", eventType,
			"task_id", payload.TaskID)
	}
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
