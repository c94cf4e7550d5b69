package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/api/shared"
	"github.com/teamai/teamai-api/internal/distribution"
	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/service"
)

// TaskDistributor runs a task distribution for one project.
// *distribution.Engine implements it.
type TaskDistributor interface {
	DistributeTasks(ctx context.Context, projectID uuid.UUID) (*distribution.Result, error)
}

var _ TaskDistributor = (*distribution.Engine)(nil)

// AIHandler serves the assistant chat and task distribution.
type AIHandler struct {
	chat        service.ChatService
	distributor TaskDistributor
	logger      *slog.Logger
}

// NewAIHandler creates an AIHandler.
func NewAIHandler(chat service.ChatService, distributor TaskDistributor, l *slog.Logger) *AIHandler {
	if chat == nil || distributor == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("chat and distributor cannot be nil for AIHandler")
	}
	if l == nil {
		l = slog.Default()
	}
	return &AIHandler{
		chat:        chat,
		distributor: distributor,
		logger:      l.With(slog.String("component", "ai_handler")),
	}
}

// Chat handles POST /api/ai/chat. Completion failures are answered with a
// canned reply, so the status is 200 for every valid request.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.chat.Chat(r.Context(), req.Message, req.Context)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ChatResponse{
		Response:  reply.Response,
		Timestamp: reply.Timestamp,
	})
}

// DistributeTasks handles POST /api/ai/distribute-tasks.
func (h *AIHandler) DistributeTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req DistributeTasksRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.distributor.DistributeTasks(r.Context(), req.ProjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to distribute tasks")
		return
	}

	log.Info("tasks distributed",
		slog.String("project_id", req.ProjectID.String()),
		slog.String("mode", string(result.Mode)),
		slog.String("source", string(result.Source)))
	shared.RespondWithJSON(w, r, http.StatusOK, distributionToResponse(result))
}

func distributionToResponse(res *distribution.Result) DistributeTasksResponse {
	out := DistributeTasksResponse{Message: res.Message, AIReasoning: res.AIReasoning}
	if res.Mode == distribution.ModeAssign {
		n := res.AssignedCount
		out.AssignedCount = &n
	} else {
		n := res.CreatedTasks
		out.CreatedTasks = &n
	}
	return out
}
