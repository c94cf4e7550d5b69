package service

import (
	"errors"
	"fmt"

	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/store"
)

// Service sentinel errors.
var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmptyMessage indicates a chat request without a question.
	ErrEmptyMessage = fmt.Errorf("%w: message cannot be empty", domain.ErrValidation)
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	// Service is the failing service, e.g. "task".
	Service string
	// Operation is the operation that failed, e.g. "update_task_status".
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError wraps err unless it is a sentinel the API layer maps on
// its own, in which case err is returned unchanged.
func newServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isPassthrough(err) {
		return err
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isPassthrough(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, ErrInvalidCredentials)
}
