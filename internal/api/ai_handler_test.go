package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/distribution"
	"github.com/teamai/teamai-api/internal/store"
)

func TestChatAnswersWithoutCredential(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register(t, "Анна", "anna@example.com")

	rec := a.do(t, http.MethodPost, "/api/ai/chat", token, ChatRequest{Message: "Привет"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ChatResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Response, "AI помощник")
	assert.False(t, resp.Timestamp.IsZero())

	rec = a.do(t, http.MethodPost, "/api/ai/chat", token, ChatRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributeTasksResponses(t *testing.T) {
	tests := []struct {
		name     string
		result   *distribution.Result
		wantJSON string
	}{
		{
			name: "ai batch",
			result: &distribution.Result{
				Mode: distribution.ModeGenerate, Source: distribution.SourceAI,
				Message: distribution.MessageAICreated, CreatedTasks: 3, AIReasoning: "[...]",
			},
			wantJSON: `{"message":"AI создал и распределил задачи","createdTasks":3,"aiReasoning":"[...]"}`,
		},
		{
			name: "template batch",
			result: &distribution.Result{
				Mode: distribution.ModeGenerate, Source: distribution.SourceTemplate,
				Message: distribution.MessageTemplateCreated, CreatedTasks: 5,
			},
			wantJSON: `{"message":"Созданы автоматические задачи","createdTasks":5}`,
		},
		{
			name: "assign existing",
			result: &distribution.Result{
				Mode: distribution.ModeAssign, Message: distribution.MessageAssigned, AssignedCount: 4,
			},
			wantJSON: `{"message":"Задачи распределены между участниками","assignedCount":4}`,
		},
		{
			name:     "empty roster",
			result:   &distribution.Result{Mode: distribution.ModeNone, Message: distribution.MessageNoMembers},
			wantJSON: `{"message":"В проекте нет участников","createdTasks":0}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)
			token, _ := a.register(t, "Анна", "anna@example.com")
			projectID := uuid.New()
			a.distributor.On("DistributeTasks", mock.Anything, projectID).Return(tt.result, nil).Once()

			rec := a.do(t, http.MethodPost, "/api/ai/distribute-tasks", token, DistributeTasksRequest{ProjectID: projectID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, tt.wantJSON, rec.Body.String())
			a.distributor.AssertExpectations(t)
		})
	}
}

func TestDistributeTasksErrors(t *testing.T) {
	a := newTestAPI(t)
	token, _ := a.register(t, "Анна", "anna@example.com")

	missing := uuid.New()
	a.distributor.On("DistributeTasks", mock.Anything, missing).
		Return(nil, errors.Join(errors.New("load project"), store.ErrProjectNotFound))
	rec := a.do(t, http.MethodPost, "/api/ai/distribute-tasks", token, DistributeTasksRequest{ProjectID: missing})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Project not found")

	broken := uuid.New()
	a.distributor.On("DistributeTasks", mock.Anything, broken).Return(nil, errors.New("connection reset"))
	rec = a.do(t, http.MethodPost, "/api/ai/distribute-tasks", token, DistributeTasksRequest{ProjectID: broken})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	rec = a.do(t, http.MethodPost, "/api/ai/distribute-tasks", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	a.distributor.AssertNumberOfCalls(t, "DistributeTasks", 2)
}
