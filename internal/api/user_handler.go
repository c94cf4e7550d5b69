package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/api/shared"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/service"
)

// UserHandler serves user lookups.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService, l *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if l == nil {
		l = slog.Default()
	}
	return &UserHandler{users: users, logger: l.With(slog.String("component", "user_handler"))}
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	h.respondWithUser(w, r, userID)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}
	h.respondWithUser(w, r, id)
}

// Search handles GET /api/users/search?email=.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SearchUsersByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

func (h *UserHandler) respondWithUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
