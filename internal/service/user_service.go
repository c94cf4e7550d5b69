package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/service/auth"
	"github.com/teamai/teamai-api/internal/store"
)

// DefaultSearchLimit caps SearchUsersByEmail results.
const DefaultSearchLimit = 20

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email           string
	Password        string
	Name            string
	Role            string
	ExperienceYears int
	Skills          []string
}

// UserService provides account operations.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Authenticate returns the user owning email if password matches.
	// Returns ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser returns store.ErrUserNotFound for unknown IDs.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SearchUsersByEmail returns users whose email contains fragment.
	SearchUsersByEmail(ctx context.Context, fragment string) ([]*domain.User, error)
}

type userServiceImpl struct {
	users    store.UserStore
	tx       store.Transactor
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService returns an error if any required dependency is nil.
func NewUserService(
	users store.UserStore,
	tx store.Transactor,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	l *slog.Logger,
) (UserService, error) {
	switch {
	case users == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "users store cannot be nil"}
	case tx == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "transactor cannot be nil"}
	case hasher == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "hasher cannot be nil"}
	case verifier == nil:
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "verifier cannot be nil"}
	}
	if l == nil {
		l = slog.Default()
	}
	return &userServiceImpl{
		users:    users,
		tx:       tx,
		hasher:   hasher,
		verifier: verifier,
		logger:   l.With("component", "user_service"),
	}, nil
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Email, in.Password, in.Name, in.Role, in.ExperienceYears, in.Skills)
	if err != nil {
		log.Debug("registration rejected", "error", err)
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, newServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("email already registered", "email", user.Email)
		} else {
			log.Error("failed to save user", "error", err, "email", user.Email)
		}
		return nil, newServiceError("user", "register", "failed to save user", err)
	}

	log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, newServiceError("user", "authenticate", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("password verification failed", "error", err, "user_id", user.ID)
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, newServiceError("user", "get_user", "failed to load user", err)
	}
	return user, nil
}

// SearchUsersByEmail implements UserService. A blank fragment matches nobody.
func (s *userServiceImpl) SearchUsersByEmail(ctx context.Context, fragment string) ([]*domain.User, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []*domain.User{}, nil
	}
	users, err := s.users.SearchByEmail(ctx, fragment, DefaultSearchLimit)
	if err != nil {
		return nil, newServiceError("user", "search_users", "failed to search users", err)
	}
	return users, nil
}
