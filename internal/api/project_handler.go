package api

import (
	"log/slog"
	"net/http"

	"github.com/teamai/teamai-api/internal/api/shared"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/service"
)

// ProjectHandler serves project endpoints.
type ProjectHandler struct {
	projects service.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects service.ProjectService, l *slog.Logger) *ProjectHandler {
	if projects == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("projects cannot be nil for ProjectHandler")
	}
	if l == nil {
		l = slog.Default()
	}
	return &ProjectHandler{projects: projects, logger: l.With(slog.String("component", "project_handler"))}
}

// Create handles POST /api/projects. The caller becomes the owner.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid startDate: expected YYYY-MM-DD")
		return
	}
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deadline: expected YYYY-MM-DD")
		return
	}

	details, err := h.projects.CreateProject(r.Context(), userID, service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartDate:   startDate,
		Deadline:    deadline,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create project")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(details))
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjects(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list projects")
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectToResponse(p))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	projectID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	details, err := h.projects.GetProject(r.Context(), projectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load project")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(details))
}
