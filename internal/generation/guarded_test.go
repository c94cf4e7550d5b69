package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrConfigurationMissing)
	assert.True(t, IsFallbackTrigger(err))
}

func TestIsFallbackTrigger(t *testing.T) {
	assert.True(t, IsFallbackTrigger(ErrTransport))
	assert.True(t, IsFallbackTrigger(errors.Join(errors.New("x"), ErrEmptyCompletion)))
	assert.False(t, IsFallbackTrigger(errors.New("database down")))
	assert.False(t, IsFallbackTrigger(nil))
}

func TestNewGuardedClientValidation(t *testing.T) {
	ok := CompletionFunc(func(context.Context, string, string) (string, error) { return "", nil })

	_, err := NewGuardedClient(nil, time.Second, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewGuardedClient(ok, 0, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewGuardedClient(ok, time.Second, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	g, err := NewGuardedClient(ok, time.Second, 1, nil)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestGuardedClientPassesThrough(t *testing.T) {
	inner := CompletionFunc(func(_ context.Context, system, user string) (string, error) {
		return system + "|" + user, nil
	})
	g, err := NewGuardedClient(inner, time.Second, 2, nil)
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "sys|usr", text)
}

func TestGuardedClientKeepsFailureKind(t *testing.T) {
	inner := CompletionFunc(func(context.Context, string, string) (string, error) {
		return "", ErrEmptyCompletion
	})
	g, err := NewGuardedClient(inner, time.Second, 1, nil)
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGuardedClientTimeout(t *testing.T) {
	inner := CompletionFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	g, err := NewGuardedClient(inner, 20*time.Millisecond, 1, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = g.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardedClientBoundsConcurrency(t *testing.T) {
	const limit = 2
	var inFlight, peak atomic.Int32
	release := make(chan struct{})

	inner := CompletionFunc(func(ctx context.Context, _, _ string) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	g, err := NewGuardedClient(inner, 5*time.Second, limit, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Complete(context.Background(), "s", "u")
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == limit }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(limit), peak.Load())
}

func TestGuardedClientSlotWaitTimesOut(t *testing.T) {
	block := make(chan struct{})
	inner := CompletionFunc(func(ctx context.Context, _, _ string) (string, error) {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return "", ctx.Err()
	})
	g, err := NewGuardedClient(inner, 50*time.Millisecond, 1, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = g.Complete(context.Background(), "s", "u")
	}()

	_, err = g.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrTransport)

	close(block)
	<-done
}
