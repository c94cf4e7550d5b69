package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
	"github.com/teamai/teamai-api/internal/store"
)

const userColumns = "id, email, name, role, experience_years, hashed_password, created_at, updated_at"

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a user store on db.
func NewPostgresUserStore(db store.DBTX, l *slog.Logger) *PostgresUserStore {
	if l == nil {
		l = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: l.With(slog.String("component", "user_store")),
	}
}

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.Name, user.Role, user.ExperienceYears,
		user.HashedPassword, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to insert user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}

	if err := saveSkills(ctx, s.db, "user_skills", "user_id", user.ID, user.Skills); err != nil {
		log.Error("failed to insert user skills",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.getOne(ctx, row)
}

// GetByEmail implements store.UserStore.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`,
		strings.TrimSpace(email))
	return s.getOne(ctx, row)
}

// SearchByEmail implements store.UserStore.
func (s *PostgresUserStore) SearchByEmail(ctx context.Context, fragment string, limit int) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email ILIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY email
		 LIMIT $2`,
		escapeLike(strings.TrimSpace(fragment)), limit)
	if err != nil {
		return nil, MapError(err)
	}
	return s.collect(ctx, rows)
}

// GetByIDs implements store.UserStore.
func (s *PostgresUserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name, id`,
		idStrings(ids))
	if err != nil {
		return nil, MapError(err)
	}
	return s.collect(ctx, rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.ExperienceYears,
		&u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Skills = []string{}
	return &u, nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, row *sql.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	skills, err := loadSkills(ctx, s.db, "user_skills", "user_id", []uuid.UUID{u.ID})
	if err != nil {
		return nil, MapError(err)
	}
	if names, ok := skills[u.ID]; ok {
		u.Skills = names
	}
	return u, nil
}

func (s *PostgresUserStore) collect(ctx context.Context, rows *sql.Rows) ([]*domain.User, error) {
	defer func() { _ = rows.Close() }()

	users := []*domain.User{}
	var ids []uuid.UUID
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, MapError(err)
		}
		users = append(users, u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	// release the connection before the follow-up query inside a transaction
	_ = rows.Close()

	skills, err := loadSkills(ctx, s.db, "user_skills", "user_id", ids)
	if err != nil {
		return nil, MapError(err)
	}
	for _, u := range users {
		if names, ok := skills[u.ID]; ok {
			u.Skills = names
		}
	}
	return users, nil
}
