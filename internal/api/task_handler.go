package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/teamai/teamai-api/internal/api/shared"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/service"
)

// TaskHandler serves task endpoints.
type TaskHandler struct {
	tasks    service.TaskService
	location *time.Location
	logger   *slog.Logger
}

// NewTaskHandler creates a TaskHandler. Deadlines sent without a zone are read
// in loc; nil means time.Local.
func NewTaskHandler(tasks service.TaskService, loc *time.Location, l *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if loc == nil {
		loc = time.Local
	}
	if l == nil {
		l = slog.Default()
	}
	return &TaskHandler{
		tasks:    tasks,
		location: loc,
		logger:   l.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	deadline, err := parseDateTime(req.Deadline, h.location)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deadline")
		return
	}

	// Missing priority defaults to MEDIUM; an unknown one is rejected.
	priority := domain.TaskPriorityMedium
	if req.Priority != "" {
		p, ok := domain.ParsePriority(req.Priority)
		if !ok {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid priority")
			return
		}
		priority = p
	}

	task, err := h.tasks.CreateTask(r.Context(), service.CreateTaskInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		AssignedTo:     req.AssignedToID,
		Deadline:       deadline,
		Priority:       priority,
		RequiredSkills: req.RequiredSkills,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListMine handles GET /api/tasks.
func (h *TaskHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListMyTasks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// ListToday handles GET /api/tasks/today.
func (h *TaskHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTodayTasks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// UpdateStatus handles PUT /api/tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID, ok := requirePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.UpdateTaskStatus(r.Context(), taskID, domain.TaskStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	log.Debug("task status updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
