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

const projectColumns = "p.id, p.owner_id, p.title, p.description, p.category, p.start_date, p.deadline, " +
	"p.status, p.progress, p.created_at, p.updated_at"

// PostgresProjectStore implements store.ProjectStore.
//
// start_date and deadline are DATE columns. They are returned as midnight in
// the store's location so that deadlines derived from them are wall-clock
// times of the server's zone.
type PostgresProjectStore struct {
	db       store.DBTX
	location *time.Location
	logger   *slog.Logger
}

var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// NewPostgresProjectStore creates a project store on db. Project dates are
// read in loc; nil means time.Local.
func NewPostgresProjectStore(db store.DBTX, loc *time.Location, l *slog.Logger) *PostgresProjectStore {
	if l == nil {
		l = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &PostgresProjectStore{
		db:       db,
		location: loc,
		logger:   l.With(slog.String("component", "project_store")),
	}
}

// WithTx implements store.ProjectStore.
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{db: tx, location: s.location, logger: s.logger}
}

// Create implements store.ProjectStore.
func (s *PostgresProjectStore) Create(ctx context.Context, p *domain.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, title, description, category, start_date, deadline,
		                       status, progress, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Category, p.StartDate, p.Deadline,
		string(p.Status), p.Progress, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert project",
			slog.String("project_id", p.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}
	return nil
}

// AddMember implements store.ProjectStore.
func (s *PostgresProjectStore) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		projectID, userID)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ProjectStore.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	p, err := scanProject(row, s.location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, MapError(err)
	}
	return p, nil
}

// ListMembers implements store.ProjectStore.
func (s *PostgresProjectStore) ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.experience_years
		 FROM project_members pm
		 JOIN users u ON u.id = pm.user_id
		 WHERE pm.project_id = $1
		 ORDER BY pm.joined_at, u.name, u.id`,
		projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	members := []domain.TeamMember{}
	var ids []uuid.UUID
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.ExperienceYears); err != nil {
			return nil, MapError(err)
		}
		m.Skills = []string{}
		members = append(members, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	_ = rows.Close()

	skills, err := loadSkills(ctx, s.db, "user_skills", "user_id", ids)
	if err != nil {
		return nil, MapError(err)
	}
	for i := range members {
		if names, ok := skills[members[i].ID]; ok {
			members[i].Skills = names
		}
	}
	return members, nil
}

// ListForUser implements store.ProjectStore.
func (s *PostgresProjectStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects p
		 WHERE p.owner_id = $1
		    OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)
		 ORDER BY p.created_at DESC, p.id`,
		userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows, s.location)
		if err != nil {
			return nil, MapError(err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return projects, nil
}

// UpdateProgress implements store.ProjectStore.
func (s *PostgresProjectStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE projects SET progress = $2, updated_at = NOW() WHERE id = $1`,
		id, progress)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProjectNotFound)
}

func scanProject(row rowScanner, loc *time.Location) (*domain.Project, error) {
	var p domain.Project
	var status string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category,
		&p.StartDate, &p.Deadline, &status, &p.Progress, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	p.StartDate = domain.DateIn(p.StartDate, loc)
	p.Deadline = domain.DateIn(p.Deadline, loc)
	return &p, nil
}
