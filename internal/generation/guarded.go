package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamai/teamai-api/internal/platform/logger"
	"github.com/teamai/teamai-api/internal/redact"
	"golang.org/x/sync/semaphore"
)

// GuardedClient bounds a CompletionClient with a per-call timeout and a cap
// on the number of calls in flight. A call that cannot get a slot or runs out
// of time fails with ErrTransport, so a hanging provider degrades to fallback
// instead of pinning request goroutines.
type GuardedClient struct {
	next    CompletionClient
	timeout time.Duration
	slots   *semaphore.Weighted
	logger  *slog.Logger
}

var _ CompletionClient = (*GuardedClient)(nil)

// NewGuardedClient wraps next. timeout and maxConcurrent must be positive.
func NewGuardedClient(
	next CompletionClient,
	timeout time.Duration,
	maxConcurrent int,
	l *slog.Logger,
) (*GuardedClient, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: next client cannot be nil", ErrInvalidConfig)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("%w: max concurrent calls must be positive", ErrInvalidConfig)
	}
	if l == nil {
		l = slog.Default()
	}
	return &GuardedClient{
		next:    next,
		timeout: timeout,
		slots:   semaphore.NewWeighted(int64(maxConcurrent)),
		logger:  l.With(slog.String("component", "completion_guard")),
	}, nil
}

// Complete implements CompletionClient.
func (g *GuardedClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.slots.Acquire(ctx, 1); err != nil {
		log.Warn("no completion slot available before deadline",
			slog.Duration("timeout", g.timeout))
		return "", fmt.Errorf("%w: waiting for a free slot: %v", ErrTransport, err)
	}
	defer g.slots.Release(1)

	start := time.Now()
	text, err := g.next.Complete(ctx, systemPrompt, userPrompt)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %v", ErrTransport, err)
		}
		log.Warn("completion call failed",
			slog.String("error", redact.Error(err)),
			slog.Duration("elapsed", elapsed))
		return "", err
	}

	log.Debug("completion call succeeded",
		slog.Duration("elapsed", elapsed),
		slog.Int("response_length", len(text)))
	return text, nil
}
