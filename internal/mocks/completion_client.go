package mocks

import (
	"context"
	"sync"

	"github.com/teamai/teamai-api/internal/generation"
)

// MockCompletionClient implements generation.CompletionClient with canned
// answers.
type MockCompletionClient struct {
	// CompleteFn overrides Response and Err when set.
	CompleteFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	Response string
	Err      error

	mu          sync.Mutex
	userPrompts []string
}

var _ generation.CompletionClient = (*MockCompletionClient)(nil)

// NewMockCompletionClient returns a client answering every call with response.
func NewMockCompletionClient(response string) *MockCompletionClient {
	return &MockCompletionClient{Response: response}
}

// NewFailingCompletionClient returns a client failing every call with err.
func NewFailingCompletionClient(err error) *MockCompletionClient {
	return &MockCompletionClient{Err: err}
}

// Complete implements generation.CompletionClient.
func (m *MockCompletionClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.userPrompts = append(m.userPrompts, userPrompt)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, systemPrompt, userPrompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns how many times Complete was called.
func (m *MockCompletionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userPrompts)
}

// UserPrompts returns the user prompts received so far.
func (m *MockCompletionClient) UserPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.userPrompts))
	copy(out, m.userPrompts)
	return out
}
