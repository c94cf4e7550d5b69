package distribution

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
	"github.com/teamai/teamai-api/internal/store"
)

// Provenance tags stored in Task.AIReasoning.
const (
	AIProvenance       = "Создано AI на основе анализа проекта и навыков команды"
	TemplateProvenance = "Создано автоматически по шаблону, без участия AI"
)

// TaskMaterializer turns proposals into persisted, assigned tasks.
type TaskMaterializer struct {
	tasks store.TaskStore
	// location is the zone deadlines are placed in. Nil keeps the zone of
	// the project's start date.
	location *time.Location
	logger   *slog.Logger
}

// NewTaskMaterializer creates a materializer saving through tasks.
func NewTaskMaterializer(tasks store.TaskStore, l *slog.Logger) *TaskMaterializer {
	if l == nil {
		l = slog.Default()
	}
	return &TaskMaterializer{
		tasks:  tasks,
		logger: l.With(slog.String("component", "task_materializer")),
	}
}

// Materialize creates one task per proposal and returns the tasks that were
// saved.
//
// The assignee comes from resolver, with the number of tasks saved so far as
// the round-robin key. Deadlines are StartDate + DaysFromStart at 23:59 in the
// materializer's location. Each
// task is saved on its own: a failed save is logged and does not affect the
// others.
func (m *TaskMaterializer) Materialize(
	ctx context.Context,
	project *domain.Project,
	resolver *AssignmentResolver,
	proposals []Proposal,
) []*domain.Task {
	log := logger.FromContextOrDefault(ctx, m.logger)

	created := make([]*domain.Task, 0, len(proposals))
	for i, p := range proposals {
		task, err := domain.NewTask(
			project.ID,
			p.Title,
			p.Description,
			domain.DeadlineAt(project.StartDate, p.DaysFromStart, m.location),
			domain.PriorityOrDefault(string(p.Priority)),
		)
		if err != nil {
			log.WarnContext(ctx, "skipping invalid proposal",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		task.AssignTo(resolver.Resolve(p.AssignTo, len(created)))
		task.AIReasoning = AIProvenance

		if m.save(ctx, log, task) {
			created = append(created, task)
		}
	}
	return created
}

// Persist saves tasks independently and returns those that were saved.
func (m *TaskMaterializer) Persist(ctx context.Context, tasks []*domain.Task) []*domain.Task {
	log := logger.FromContextOrDefault(ctx, m.logger)

	saved := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if m.save(ctx, log, task) {
			saved = append(saved, task)
		}
	}
	return saved
}

func (m *TaskMaterializer) save(ctx context.Context, log *slog.Logger, task *domain.Task) bool {
	if err := m.tasks.Create(ctx, task); err != nil {
		log.ErrorContext(ctx, "failed to save task",
			slog.String("task_title", task.Title),
			slog.String("project_id", task.ProjectID.String()),
			slog.String("error", redact.Error(err)))
		return false
	}
	return true
}
