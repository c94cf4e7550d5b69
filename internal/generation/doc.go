// Package generation defines the boundary to external chat-completion
// services. The distribution engine and the chat assistant depend only on
// CompletionClient, so tests can inject scripted responses and the process can
// swap providers (OpenAI-compatible HTTP or Gemini) or run without any
// credential at all.
package generation
