package generation

import "context"

// CompletionClient sends one system and one user prompt to a chat model and
// returns the raw text of the first completion choice.
//
// Implementations make a single attempt and return ErrConfigurationMissing,
// ErrTransport or ErrEmptyCompletion (possibly wrapped) on failure.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Unconfigured is the client used when no credential is available. Every call
// fails with ErrConfigurationMissing without touching the network.
type Unconfigured struct{}

var _ CompletionClient = Unconfigured{}

// Complete implements CompletionClient.
func (Unconfigured) Complete(context.Context, string, string) (string, error) {
	return "", ErrConfigurationMissing
}

// CompletionFunc adapts a function to CompletionClient.
type CompletionFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Complete implements CompletionClient.
func (f CompletionFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}
