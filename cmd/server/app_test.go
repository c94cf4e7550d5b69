package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/config"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/generation"
	"github.com/teamai/teamai-api/internal/mocks"
	"github.com/teamai/teamai-api/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
			BCryptCost:           4,
		},
		LLM: config.LLMConfig{
			Provider:           "openai",
			Endpoint:           "https://api.openai.com/v1/chat/completions",
			Model:              "gpt-4",
			Temperature:        0.7,
			MaxTokens:          2000,
			TimeoutSeconds:     60,
			MaxConcurrentCalls: 4,
		},
	}
}

// newTestApplication wires the application over in-memory stores.
func newTestApplication(t *testing.T) *application {
	t.Helper()
	l, _ := logger.NewTestLogger()
	users := mocks.NewMockUserStore()
	projects := mocks.NewMockProjectStore()
	projects.Users = users

	app := &application{
		config:       testConfig(),
		logger:       l,
		userStore:    users,
		projectStore: projects,
		taskStore:    mocks.NewMockTaskStore(),
		transactor:   &mocks.MockTransactor{},
	}
	app.eventEmitter = events.NewInMemoryEventEmitter(l)
	require.NoError(t, app.wire(context.Background()))
	return app
}

func TestNewCompletionClient(t *testing.T) {
	l, _ := logger.NewTestLogger()

	cfg := testConfig().LLM
	client, err := newCompletionClient(context.Background(), cfg, l)
	require.NoError(t, err)
	assert.IsType(t, generation.Unconfigured{}, client)

	cfg.APIKey = "your-api-key-here"
	client, err = newCompletionClient(context.Background(), cfg, l)
	require.NoError(t, err)
	assert.IsType(t, generation.Unconfigured{}, client)

	cfg.APIKey = "sk-test-key-1234567890"
	client, err = newCompletionClient(context.Background(), cfg, l)
	require.NoError(t, err)
	assert.IsType(t, &generation.GuardedClient{}, client)
}

func TestRouterEndToEnd(t *testing.T) {
	app := newTestApplication(t)
	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	post := func(path, token, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp = post("/api/auth/register", "",
		`{"email":"anna@example.com","password":"s3cret-password","name":"Анна","role":"backend","experienceYears":5,"skills":["Go"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var auth struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	resp.Body.Close()

	resp = post("/api/projects", auth.Token,
		`{"title":"Интернет-магазин","description":"Магазин","category":"web","startDate":"2026-03-01","deadline":"2026-03-31","memberIds":["`+auth.User.ID+`"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var project struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&project))
	resp.Body.Close()

	// Without a credential the template fallback produces five tasks.
	resp = post("/api/ai/distribute-tasks", auth.Token, `{"projectId":"`+project.ID+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dist map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dist))
	resp.Body.Close()
	assert.Equal(t, "Созданы автоматические задачи", dist["message"])
	assert.EqualValues(t, 5, dist["createdTasks"])

	resp = post("/api/ai/distribute-tasks", "", `{"projectId":"`+project.ID+`"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStartHTTPServerStopsOnCancel(t *testing.T) {
	app := newTestApplication(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.startHTTPServer(ctx, http.NotFoundHandler()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMigrateCommandValidatesArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "sideways"})
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	assert.Error(t, cmd.Execute())
}
