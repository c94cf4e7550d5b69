package distribution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/platform/logger"
)

const (
	// DefaultDaysFromStart replaces a missing or invalid daysFromStart.
	DefaultDaysFromStart = 7

	// maxDaysFromStart bounds offsets so deadlines stay representable.
	maxDaysFromStart = 3650

	fence     = "```"
	jsonFence = "```json"
)

// Proposal is one task suggested by the model, after defaults were applied.
type Proposal struct {
	Title         string
	Description   string
	AssignTo      string
	Priority      domain.TaskPriority
	DaysFromStart int
}

// ResponseParser extracts task proposals from raw model output.
type ResponseParser struct {
	logger *slog.Logger
}

// NewResponseParser creates a parser that logs skipped elements to l.
func NewResponseParser(l *slog.Logger) *ResponseParser {
	if l == nil {
		l = slog.Default()
	}
	return &ResponseParser{logger: l.With(slog.String("component", "response_parser"))}
}

// Parse decodes raw as a JSON array of proposals.
//
// A surrounding code fence is removed first. If the top-level value is not an
// array, or no element survives validation, ErrMalformedBatch is returned.
// Elements that are not objects or lack a title are logged and skipped.
func (p *ResponseParser) Parse(ctx context.Context, raw string) ([]Proposal, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	text := extractArray(StripCodeFences(raw))
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}

	proposals := make([]Proposal, 0, len(elements))
	for i, element := range elements {
		proposal, err := parseProposal(element)
		if err != nil {
			log.WarnContext(ctx, "skipping task proposal",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		proposals = append(proposals, proposal)
	}

	if len(proposals) == 0 {
		return nil, fmt.Errorf("%w: no usable elements in %d", ErrMalformedBatch, len(elements))
	}
	return proposals, nil
}

// StripCodeFences removes a leading ```json or ``` marker and a trailing ```
// marker, along with surrounding whitespace.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case len(s) >= len(jsonFence) && strings.EqualFold(s[:len(jsonFence)], jsonFence):
		s = s[len(jsonFence):]
	case strings.HasPrefix(s, fence):
		s = s[len(fence):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), fence)
	return strings.TrimSpace(s)
}

// extractArray drops prose around an array when the text does not already
// start with a JSON value. Objects are left alone so they fail as non-arrays.
func extractArray(s string) string {
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		return s
	}
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// parseProposal decodes one batch element. An element is malformed only when
// it is not an object or has no non-blank string title. Every other field is
// optional: description defaults to empty, a missing assignTo falls through to
// round-robin, and priority and daysFromStart take their defaults.
func parseProposal(raw json.RawMessage) (Proposal, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Proposal{}, fmt.Errorf("%w: element is not an object", ErrMalformedElement)
	}

	title := strings.TrimSpace(stringOr(obj, "title", ""))
	if title == "" {
		return Proposal{}, fmt.Errorf("%w: missing title", ErrMalformedElement)
	}

	return Proposal{
		Title:         title,
		Description:   stringOr(obj, "description", ""),
		AssignTo:      strings.TrimSpace(stringOr(obj, "assignTo", "")),
		Priority:      domain.PriorityOrDefault(stringOr(obj, "priority", "")),
		DaysFromStart: daysOr(obj, "daysFromStart", DefaultDaysFromStart),
	}, nil
}

// stringOr returns the string value of key, or def when the key is absent or
// not a string.
func stringOr(obj map[string]json.RawMessage, key, def string) string {
	v, ok := obj[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return def
	}
	return s
}

// daysOr returns the day offset stored under key. Numbers and numeric strings
// are accepted and fractions are truncated. Absent, negative or out of range
// values yield def.
func daysOr(obj map[string]json.RawMessage, key string, def int) int {
	v, ok := obj[key]
	if !ok {
		return def
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return def
	}
	if i, err := n.Int64(); err == nil {
		if i < 0 || i > maxDaysFromStart {
			return def
		}
		return int(i)
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f > maxDaysFromStart {
		return def
	}
	return int(f)
}
