package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user with its skills. The user must carry a
	// HashedPassword. Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail matches the email case-insensitively and returns
	// ErrUserNotFound if no user has it.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SearchByEmail returns up to limit users whose email contains fragment,
	// ordered by email.
	SearchByEmail(ctx context.Context, fragment string, limit int) ([]*domain.User, error)

	// GetByIDs returns the users that exist among ids. Unknown ids are
	// skipped silently.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
