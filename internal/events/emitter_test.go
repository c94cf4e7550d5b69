package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventRoundTripsPayload(t *testing.T) {
	payload := TaskPayload{TaskID: uuid.New(), ProjectID: uuid.New(), Status: "COMPLETED", PreviousStatus: "TODO"}
	ev, err := NewEvent(TypeTaskStatusChanged, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, TypeTaskStatusChanged, ev.Type)
	assert.False(t, ev.CreatedAt.IsZero())

	var decoded TaskPayload
	require.NoError(t, ev.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEventRejectsUnserializablePayload(t *testing.T) {
	_, err := NewEvent(TypeTaskCreated, make(chan int))
	assert.Error(t, err)
}

func TestEmitterDispatchesByType(t *testing.T) {
	e := NewInMemoryEventEmitter(nil)

	var created, changed int
	e.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { created++; return nil }), TypeTaskCreated)
	e.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { changed++; return nil }),
		TypeTaskCreated, TypeTaskStatusChanged)

	require.NoError(t, e.EmitEvent(context.Background(), &Event{Type: TypeTaskCreated}))
	require.NoError(t, e.EmitEvent(context.Background(), &Event{Type: TypeTaskStatusChanged}))
	require.NoError(t, e.EmitEvent(context.Background(), &Event{Type: "unknown"}))

	assert.Equal(t, 1, created)
	assert.Equal(t, 2, changed)
}

func TestEmitterRunsAllHandlersAndReturnsFirstError(t *testing.T) {
	e := NewInMemoryEventEmitter(nil)
	first := errors.New("first")
	second := errors.New("second")

	var order []int
	e.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { order = append(order, 1); return first }), TypeTaskCreated)
	e.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { order = append(order, 2); return second }), TypeTaskCreated)
	e.RegisterHandler(HandlerFunc(func(context.Context, *Event) error { order = append(order, 3); return nil }), TypeTaskCreated)

	err := e.EmitEvent(context.Background(), &Event{ID: uuid.New(), Type: TypeTaskCreated})
	assert.Equal(t, first, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}
