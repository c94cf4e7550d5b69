package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
	"github.com/teamai/teamai-api/internal/store"
)

const taskSelect = `SELECT t.id, t.project_id, p.title, t.title, t.description, t.assigned_to,
       t.assigned_to_name, t.deadline, t.status, t.priority, t.ai_reasoning,
       t.estimated_hours, t.created_at, t.updated_at, t.completed_at
FROM tasks t
JOIN projects p ON p.id = t.project_id`

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a task store on db.
func NewPostgresTaskStore(db store.DBTX, l *slog.Logger) *PostgresTaskStore {
	if l == nil {
		l = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: l.With(slog.String("component", "task_store")),
	}
}

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, t *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var assignedTo uuid.NullUUID
	if t.AssignedTo != nil {
		assignedTo = uuid.NullUUID{UUID: *t.AssignedTo, Valid: true}
	}
	var hours sql.NullInt64
	if t.EstimatedHours != nil {
		hours = sql.NullInt64{Int64: int64(*t.EstimatedHours), Valid: true}
	}
	var completedAt sql.NullTime
	if t.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, assigned_to, assigned_to_name,
		                    deadline, status, priority, ai_reasoning, estimated_hours,
		                    created_at, updated_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.ProjectID, t.Title, t.Description, assignedTo, nullString(t.AssignedToName),
		t.Deadline, string(t.Status), string(t.Priority), nullString(t.AIReasoning), hours,
		t.CreatedAt, t.UpdatedAt, completedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("task_id", t.ID.String()),
			slog.String("project_id", t.ProjectID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	if err := saveSkills(ctx, s.db, "task_skills", "task_id", t.ID, t.RequiredSkills); err != nil {
		log.Error("failed to insert task skills",
			slog.String("task_id", t.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	if err := s.attachSkills(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus implements store.TaskStore.
func (s *PostgresTaskStore) UpdateStatus(ctx context.Context, t *domain.Task) error {
	var completedAt sql.NullTime
	if t.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = $2, completed_at = $3, updated_at = $4 WHERE id = $1`,
		t.ID, string(t.Status), completedAt, t.UpdatedAt)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Assign implements store.TaskStore.
func (s *PostgresTaskStore) Assign(ctx context.Context, taskID, memberID uuid.UUID, memberName string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET assigned_to = $2, assigned_to_name = $3, updated_at = NOW() WHERE id = $1`,
		taskID, memberID, memberName)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// ListByProject implements store.TaskStore.
func (s *PostgresTaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx, taskSelect+` WHERE t.project_id = $1 ORDER BY t.created_at, t.id`, projectID)
}

// ListUnassigned implements store.TaskStore.
func (s *PostgresTaskStore) ListUnassigned(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx,
		taskSelect+` WHERE t.project_id = $1 AND t.assigned_to IS NULL ORDER BY t.created_at, t.id`,
		projectID)
}

// ListByAssignee implements store.TaskStore.
func (s *PostgresTaskStore) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.list(ctx, taskSelect+` WHERE t.assigned_to = $1 ORDER BY t.deadline, t.id`, userID)
}

// ListDueBetween implements store.TaskStore.
func (s *PostgresTaskStore) ListDueBetween(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]*domain.Task, error) {
	return s.list(ctx,
		taskSelect+` WHERE t.assigned_to = $1 AND t.deadline >= $2 AND t.deadline < $3 ORDER BY t.deadline, t.id`,
		userID, from, to)
}

// CountProgress implements store.TaskStore.
func (s *PostgresTaskStore) CountProgress(ctx context.Context, projectID uuid.UUID) (int, int, error) {
	var completed, total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'COMPLETED'), COUNT(*) FROM tasks WHERE project_id = $1`,
		projectID).Scan(&completed, &total)
	if err != nil {
		return 0, 0, MapError(err)
	}
	return completed, total, nil
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	_ = rows.Close()

	if err := s.attachSkills(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *PostgresTaskStore) attachSkills(ctx context.Context, tasks []*domain.Task) error {
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	skills, err := loadSkills(ctx, s.db, "task_skills", "task_id", ids)
	if err != nil {
		return MapError(err)
	}
	for _, t := range tasks {
		if names, ok := skills[t.ID]; ok {
			t.RequiredSkills = names
		}
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t              domain.Task
		assignedTo     uuid.NullUUID
		assignedToName sql.NullString
		status         string
		priority       string
		reasoning      sql.NullString
		hours          sql.NullInt64
		completedAt    sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.ProjectTitle, &t.Title, &t.Description, &assignedTo,
		&assignedToName, &t.Deadline, &status, &priority, &reasoning,
		&hours, &t.CreatedAt, &t.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.AssignedToName = assignedToName.String
	t.AIReasoning = reasoning.String
	t.RequiredSkills = []string{}
	if assignedTo.Valid {
		id := assignedTo.UUID
		t.AssignedTo = &id
	}
	if hours.Valid {
		h := int(hours.Int64)
		t.EstimatedHours = &h
	}
	if completedAt.Valid {
		c := completedAt.Time
		t.CompletedAt = &c
	}
	return &t, nil
}
