package distribution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/store"
)

// ProgressRecalculator keeps Project.Progress equal to the share of
// completed tasks. It handles task.created and task.status_changed events.
type ProgressRecalculator struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	tx       store.Transactor
	locks    *ProjectLocks
	logger   *slog.Logger
}

var _ events.EventHandler = (*ProgressRecalculator)(nil)

// NewProgressRecalculator returns an error if a required dependency is nil.
func NewProgressRecalculator(
	projects store.ProjectStore,
	tasks store.TaskStore,
	tx store.Transactor,
	locks *ProjectLocks,
	l *slog.Logger,
) (*ProgressRecalculator, error) {
	if projects == nil {
		return nil, errors.New("projects store cannot be nil")
	}
	if tasks == nil {
		return nil, errors.New("tasks store cannot be nil")
	}
	if tx == nil {
		return nil, errors.New("transactor cannot be nil")
	}
	if locks == nil {
		locks = NewProjectLocks()
	}
	if l == nil {
		l = slog.Default()
	}
	return &ProgressRecalculator{
		projects: projects,
		tasks:    tasks,
		tx:       tx,
		locks:    locks,
		logger:   l.With(slog.String("component", "progress_recalculator")),
	}, nil
}

// Locks returns the lock table the recalculator serializes on.
func (r *ProgressRecalculator) Locks() *ProjectLocks {
	return r.locks
}

// Recalculate recomputes and stores the progress of project id under the
// project lock. A project without tasks is left unchanged.
func (r *ProgressRecalculator) Recalculate(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.locks.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("acquire project lock: %w", err)
	}
	defer unlock()
	return r.recalculateLocked(ctx, id)
}

// recalculateLocked expects the caller to hold the lock for id.
func (r *ProgressRecalculator) recalculateLocked(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	return r.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		completed, total, err := r.tasks.WithTx(tx).CountProgress(ctx, id)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}

		progress, ok := domain.ComputeProgress(completed, total)
		if !ok {
			log.DebugContext(ctx, "project has no tasks, progress unchanged",
				slog.String("project_id", id.String()))
			return nil
		}

		if err := r.projects.WithTx(tx).UpdateProgress(ctx, id, progress); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}
		log.DebugContext(ctx, "project progress updated",
			slog.String("project_id", id.String()),
			slog.Int("completed", completed),
			slog.Int("total", total),
			slog.Float64("progress", progress))
		return nil
	})
}

// HandleEvent implements events.EventHandler.
func (r *ProgressRecalculator) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeTaskCreated, events.TypeTaskStatusChanged:
	default:
		return nil
	}

	var payload events.TaskPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return r.Recalculate(ctx, payload.ProjectID)
}
