// Package openai implements generation.CompletionClient against an
// OpenAI-compatible chat-completions endpoint. The endpoint is used as a full
// URL, so any compatible gateway can be configured.
package openai
