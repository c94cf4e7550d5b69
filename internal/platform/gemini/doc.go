// Package gemini implements generation.CompletionClient on top of the Gemini
// API through google.golang.org/genai. It is selected with llm.provider=gemini.
package gemini
