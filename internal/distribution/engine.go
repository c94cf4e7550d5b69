package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
	"github.com/teamai/teamai-api/internal/store"
)

// Mode is the kind of work a distribution performed.
type Mode string

const (
	// ModeNone means nothing was done because the roster is empty.
	ModeNone Mode = "none"
	// ModeGenerate means new tasks were created.
	ModeGenerate Mode = "generate"
	// ModeAssign means existing unassigned tasks were assigned.
	ModeAssign Mode = "assign"
)

// Source tells who authored the tasks of a generate run.
type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
)

// User-facing result messages.
const (
	MessageNoMembers        = "В проекте нет участников"
	MessageAICreated        = "AI создал и распределил задачи"
	MessageTemplateCreated  = "Созданы автоматические задачи"
	MessageTemplateAfterErr = "Созданы автоматические задачи (ошибка AI)"
	MessageAssigned         = "Задачи распределены между участниками"
)

// Result describes one distribution run.
type Result struct {
	Mode    Mode
	Source  Source
	Message string
	// CreatedTasks is set in ModeGenerate and ModeNone.
	CreatedTasks int
	// AssignedCount is set in ModeAssign.
	AssignedCount int
	// AIReasoning is the raw model answer when Source is SourceAI.
	AIReasoning string
	Tasks       []*domain.Task
}

// Engine distributes tasks among project members.
type Engine struct {
	projects     store.ProjectStore
	tasks        store.TaskStore
	client       generation.CompletionClient
	parser       *ResponseParser
	materializer *TaskMaterializer
	fallback     *FallbackGenerator
	progress     *ProgressRecalculator
	locks        *ProjectLocks
	emitter      events.EventEmitter
	location     *time.Location
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLocation places generated deadlines at 23:59 wall time in loc instead of
// the zone of the project's start date.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) {
		e.location = loc
	}
}

// NewEngine wires an engine. The engine shares the recalculator's project
// locks. emitter may be nil, in which case no tasks.distributed events are
// published.
func NewEngine(
	projects store.ProjectStore,
	tasks store.TaskStore,
	client generation.CompletionClient,
	progress *ProgressRecalculator,
	emitter events.EventEmitter,
	l *slog.Logger,
	opts ...EngineOption,
) (*Engine, error) {
	if projects == nil {
		return nil, errors.New("projects store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("tasks store cannot be nil")
	}
	if client == nil {
		return nil, errors.New("completion client cannot be nil")
	}
	if progress == nil {
		return nil, errors.New("progress recalculator cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}

	materializer := NewTaskMaterializer(tasks, l)
	e := &Engine{
		projects:     projects,
		tasks:        tasks,
		client:       client,
		parser:       NewResponseParser(l),
		materializer: materializer,
		fallback:     NewFallbackGenerator(materializer),
		progress:     progress,
		locks:        progress.Locks(),
		emitter:      emitter,
		logger:       l.With(slog.String("component", "distribution_engine")),
	}
	for _, opt := range opts {
		opt(e)
	}
	materializer.location = e.location
	return e, nil
}

// DistributeTasks assigns work to the members of project id.
//
// With an empty roster nothing happens. If the project has unassigned tasks
// they are assigned round-robin without calling the model. Otherwise a new
// batch is generated by the model, or from templates when the model fails.
// Only a missing project is reported as an error (store.ErrProjectNotFound).
//
// Cancelling ctx while the model is being called does not abandon the run: the
// batch that follows, model or template, is still saved and progress updated.
func (e *Engine) DistributeTasks(ctx context.Context, id uuid.UUID) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, e.logger).With(slog.String("project_id", id.String()))
	ctx = logger.WithLogger(ctx, log)

	unlock, err := e.locks.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	result, err := e.distributeLocked(ctx, log, id)
	unlock()
	if err != nil {
		return nil, err
	}

	e.publish(context.WithoutCancel(ctx), log, id, result)
	return result, nil
}

func (e *Engine) distributeLocked(ctx context.Context, log *slog.Logger, id uuid.UUID) (*Result, error) {
	project, err := e.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	roster, err := e.projects.ListMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(roster) == 0 {
		log.InfoContext(ctx, "project has no members, nothing to distribute")
		return &Result{Mode: ModeNone, Message: MessageNoMembers}, nil
	}

	resolver, err := NewAssignmentResolver(roster)
	if err != nil {
		return nil, err
	}

	unassigned, err := e.tasks.ListUnassigned(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load unassigned tasks: %w", err)
	}

	var result *Result
	if len(unassigned) > 0 {
		result = e.assignExisting(ctx, log, resolver, unassigned)
	} else {
		result = e.generate(ctx, log, project, roster, resolver)
	}

	if err := e.progress.recalculateLocked(context.WithoutCancel(ctx), id); err != nil {
		log.WarnContext(ctx, "failed to recalculate progress after distribution",
			slog.String("error", redact.Error(err)))
	}
	return result, nil
}

// assignExisting hands task i to roster[i mod size]. Failed updates are
// logged and not counted.
func (e *Engine) assignExisting(
	ctx context.Context,
	log *slog.Logger,
	resolver *AssignmentResolver,
	unassigned []*domain.Task,
) *Result {
	assigned := make([]*domain.Task, 0, len(unassigned))
	for i, task := range unassigned {
		member := resolver.RoundRobin(i)
		if err := e.tasks.Assign(ctx, task.ID, member.ID, member.Name); err != nil {
			log.ErrorContext(ctx, "failed to assign task",
				slog.String("task_id", task.ID.String()),
				slog.String("member_id", member.ID.String()),
				slog.String("error", redact.Error(err)))
			continue
		}
		task.AssignTo(member)
		assigned = append(assigned, task)
	}

	log.InfoContext(ctx, "assigned existing tasks",
		slog.Int("assigned", len(assigned)),
		slog.Int("unassigned", len(unassigned)))
	return &Result{
		Mode:          ModeAssign,
		Message:       MessageAssigned,
		AssignedCount: len(assigned),
		Tasks:         assigned,
	}
}

func (e *Engine) generate(
	ctx context.Context,
	log *slog.Logger,
	project *domain.Project,
	roster []domain.TeamMember,
	resolver *AssignmentResolver,
) *Result {
	prompt := BuildPrompt(project, roster)

	raw, err := e.client.Complete(ctx, prompt.System, prompt.User)
	// From here on the batch is saved even if the caller has gone away.
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		return e.generateFromTemplates(ctx, log, project, resolver, err)
	}

	proposals, err := e.parser.Parse(ctx, raw)
	if err != nil {
		return e.generateFromTemplates(ctx, log, project, resolver, err)
	}

	created := e.materializer.Materialize(ctx, project, resolver, proposals)
	log.InfoContext(ctx, "created tasks from model proposals",
		slog.Int("proposals", len(proposals)),
		slog.Int("created", len(created)))
	return &Result{
		Mode:         ModeGenerate,
		Source:       SourceAI,
		Message:      MessageAICreated,
		CreatedTasks: len(created),
		AIReasoning:  raw,
		Tasks:        created,
	}
}

func (e *Engine) generateFromTemplates(
	ctx context.Context,
	log *slog.Logger,
	project *domain.Project,
	resolver *AssignmentResolver,
	cause error,
) *Result {
	message := MessageTemplateAfterErr
	if errors.Is(cause, generation.ErrConfigurationMissing) {
		message = MessageTemplateCreated
		log.InfoContext(ctx, "no completion credential, using task templates")
	} else {
		log.WarnContext(ctx, "model output unusable, using task templates",
			slog.String("error", redact.Error(cause)))
	}

	created := e.fallback.Generate(ctx, project, resolver)
	return &Result{
		Mode:         ModeGenerate,
		Source:       SourceTemplate,
		Message:      message,
		CreatedTasks: len(created),
		Tasks:        created,
	}
}

func (e *Engine) publish(ctx context.Context, log *slog.Logger, id uuid.UUID, result *Result) {
	if e.emitter == nil || result.Mode == ModeNone {
		return
	}

	count := result.CreatedTasks
	if result.Mode == ModeAssign {
		count = result.AssignedCount
	}
	event, err := events.NewEvent(events.TypeTasksDistributed, events.DistributionPayload{
		ProjectID: id,
		Mode:      string(result.Mode),
		Source:    string(result.Source),
		Count:     count,
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to build distribution event", slog.String("error", err.Error()))
		return
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		log.WarnContext(ctx, "distribution event handler failed",
			slog.String("error", redact.Error(err)))
	}
}
