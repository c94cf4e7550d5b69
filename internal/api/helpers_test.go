package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/api/middleware"
	"github.com/teamai/teamai-api/internal/config"
	"github.com/teamai/teamai-api/internal/distribution"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/mocks"
	"github.com/teamai/teamai-api/internal/service"
	"github.com/teamai/teamai-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// mockDistributor is a testify mock of TaskDistributor.
type mockDistributor struct {
	mock.Mock
}

func (m *mockDistributor) DistributeTasks(ctx context.Context, projectID uuid.UUID) (*distribution.Result, error) {
	args := m.Called(ctx, projectID)
	res, _ := args.Get(0).(*distribution.Result)
	return res, args.Error(1)
}

// testAPI is the full route table over in-memory stores.
type testAPI struct {
	router      http.Handler
	users       *mocks.MockUserStore
	projects    *mocks.MockProjectStore
	tasks       *mocks.MockTaskStore
	jwt         auth.JWTService
	distributor *mockDistributor
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	a := &testAPI{
		users:       mocks.NewMockUserStore(),
		projects:    mocks.NewMockProjectStore(),
		tasks:       mocks.NewMockTaskStore(),
		distributor: &mockDistributor{},
	}
	a.projects.Users = a.users
	tx := &mocks.MockTransactor{}

	jwtService, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	a.jwt = jwtService

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	userSvc, err := service.NewUserService(a.users, tx, hasher, hasher, nil)
	require.NoError(t, err)
	projectSvc, err := service.NewProjectService(a.projects, a.tasks, a.users, tx, nil)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(a.tasks, a.projects, a.users, tx, events.NewInMemoryEventEmitter(nil), nil)
	require.NoError(t, err)
	chatSvc, err := service.NewChatService(generation.Unconfigured{}, nil)
	require.NoError(t, err)

	authHandler := NewAuthHandler(userSvc, jwtService, nil)
	userHandler := NewUserHandler(userSvc, nil)
	projectHandler := NewProjectHandler(projectSvc, nil)
	taskHandler := NewTaskHandler(taskSvc, time.UTC, nil)
	aiHandler := NewAIHandler(chatSvc, a.distributor, nil)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, nil)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/users/me", userHandler.Me)
			r.Get("/users/search", userHandler.Search)
			r.Get("/users/{id}", userHandler.Get)
			r.Post("/projects", projectHandler.Create)
			r.Get("/projects", projectHandler.List)
			r.Get("/projects/{id}", projectHandler.Get)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.ListMine)
			r.Get("/tasks/today", taskHandler.ListToday)
			r.Put("/tasks/{id}/status", taskHandler.UpdateStatus)
			r.Post("/ai/chat", aiHandler.Chat)
			r.Post("/ai/distribute-tasks", aiHandler.DistributeTasks)
		})
	})
	a.router = r
	return a
}

// do sends a request with an optional JSON body and bearer token.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and ID.
func (a *testAPI) register(t *testing.T, name, email string, skills ...string) (string, uuid.UUID) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:           email,
		Password:        "s3cret-password",
		Name:            name,
		Role:            "developer",
		ExperienceYears: 3,
		Skills:          skills,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	return resp.Token, resp.User.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
