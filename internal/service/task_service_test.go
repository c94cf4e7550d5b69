package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/events"
	"github.com/teamai/teamai-api/internal/mocks"
	"github.com/teamai/teamai-api/internal/store"
)

type taskFixture struct {
	svc      TaskService
	users    *mocks.MockUserStore
	projects *mocks.MockProjectStore
	tasks    *mocks.MockTaskStore
	emitter  *events.InMemoryEventEmitter
	received []*events.Event
	now      time.Time
	project  *domain.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{
		users:    mocks.NewMockUserStore(),
		projects: mocks.NewMockProjectStore(),
		tasks:    mocks.NewMockTaskStore(),
		emitter:  events.NewInMemoryEventEmitter(nil),
		now:      time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}
	f.emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		f.received = append(f.received, e)
		return nil
	}), events.TypeTaskCreated, events.TypeTaskStatusChanged)

	owner := addUser(t, f.users, "Owner", "owner@example.com")
	project, err := domain.NewProject(owner.ID, "Интернет-магазин", "", "web",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	f.projects.Add(project)
	f.project = project

	svc, err := NewTaskService(f.tasks, f.projects, f.users, &mocks.MockTransactor{}, f.emitter, nil,
		WithClock(func() time.Time { return f.now }, time.UTC))
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *taskFixture) input() CreateTaskInput {
	return CreateTaskInput{
		ProjectID:      f.project.ID,
		Title:          "  Настроить CI  ",
		Description:    "GitHub Actions",
		Deadline:       time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC),
		Priority:       domain.TaskPriorityHigh,
		RequiredSkills: []string{" Go ", "", "Docker"},
	}
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)
	anna := addUser(t, f.users, "Анна", "anna@example.com")
	in := f.input()
	in.AssignedTo = &anna.ID

	task, err := f.svc.CreateTask(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Настроить CI", task.Title)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	assert.Equal(t, "Интернет-магазин", task.ProjectTitle)
	assert.Equal(t, []string{"Go", "Docker"}, task.RequiredSkills)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, anna.ID, *task.AssignedTo)
	assert.Equal(t, "Анна", task.AssignedToName)
	assert.Len(t, f.tasks.All(), 1)

	require.Len(t, f.received, 1)
	assert.Equal(t, events.TypeTaskCreated, f.received[0].Type)
	var payload events.TaskPayload
	require.NoError(t, f.received[0].UnmarshalPayload(&payload))
	assert.Equal(t, task.ID, payload.TaskID)
	assert.Equal(t, f.project.ID, payload.ProjectID)
	assert.Equal(t, "TODO", payload.Status)
}

func TestCreateTaskErrors(t *testing.T) {
	t.Run("unknown project", func(t *testing.T) {
		f := newTaskFixture(t)
		in := f.input()
		in.ProjectID = uuid.New()
		_, err := f.svc.CreateTask(context.Background(), in)
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		f := newTaskFixture(t)
		in := f.input()
		missing := uuid.New()
		in.AssignedTo = &missing
		_, err := f.svc.CreateTask(context.Background(), in)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.Empty(t, f.tasks.All())
	})

	t.Run("invalid priority", func(t *testing.T) {
		f := newTaskFixture(t)
		in := f.input()
		in.Priority = "URGENT"
		_, err := f.svc.CreateTask(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	})

	t.Run("negative hours", func(t *testing.T) {
		f := newTaskFixture(t)
		in := f.input()
		hours := -2
		in.EstimatedHours = &hours
		_, err := f.svc.CreateTask(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrNegativeHours)
		assert.Empty(t, f.received)
	})
}

func TestCreateTaskSurvivesFailingSubscriber(t *testing.T) {
	f := newTaskFixture(t)
	f.emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
		return errors.New("subscriber down")
	}), events.TypeTaskCreated)

	task, err := f.svc.CreateTask(context.Background(), f.input())
	require.NoError(t, err)
	assert.NotNil(t, task)
}

func TestUpdateTaskStatus(t *testing.T) {
	f := newTaskFixture(t)
	task, err := f.svc.CreateTask(context.Background(), f.input())
	require.NoError(t, err)
	f.received = nil

	updated, err := f.svc.UpdateTaskStatus(context.Background(), task.ID, domain.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, f.now.Equal(*updated.CompletedAt))

	require.Len(t, f.received, 1)
	var payload events.TaskPayload
	require.NoError(t, f.received[0].UnmarshalPayload(&payload))
	assert.Equal(t, events.TypeTaskStatusChanged, f.received[0].Type)
	assert.Equal(t, "COMPLETED", payload.Status)
	assert.Equal(t, "TODO", payload.PreviousStatus)

	completedAt := *updated.CompletedAt
	f.now = f.now.Add(time.Hour)
	reopened, err := f.svc.UpdateTaskStatus(context.Background(), task.ID, domain.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, reopened.Status)
	require.NotNil(t, reopened.CompletedAt)
	assert.True(t, completedAt.Equal(*reopened.CompletedAt))

	stored, err := f.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, stored.Status)
}

func TestUpdateTaskStatusErrors(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.UpdateTaskStatus(context.Background(), uuid.New(), "DONE")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateTaskStatus(context.Background(), uuid.New(), domain.TaskStatusCompleted)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Empty(t, f.received)
}

func TestListMyAndTodayTasks(t *testing.T) {
	f := newTaskFixture(t)
	anna := addUser(t, f.users, "Анна", "anna@example.com")
	boris := addUser(t, f.users, "Борис", "boris@example.com")

	deadlines := []time.Time{
		time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range deadlines {
		in := f.input()
		in.Deadline = d
		in.AssignedTo = &anna.ID
		_, err := f.svc.CreateTask(context.Background(), in)
		require.NoError(t, err)
	}
	in := f.input()
	in.Deadline = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	in.AssignedTo = &boris.ID
	_, err := f.svc.CreateTask(context.Background(), in)
	require.NoError(t, err)

	mine, err := f.svc.ListMyTasks(context.Background(), anna.ID)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	for i := 1; i < len(mine); i++ {
		assert.False(t, mine[i].Deadline.Before(mine[i-1].Deadline))
	}

	today, err := f.svc.ListTodayTasks(context.Background(), anna.ID)
	require.NoError(t, err)
	require.Len(t, today, 2)
	for _, task := range today {
		assert.True(t, task.IsDueOn(f.now))
	}

	none, err := f.svc.ListTodayTasks(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTodayTasksOutsideUTC(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	tasks := mocks.NewMockTaskStore()
	anna := domain.TeamMember{ID: uuid.New(), Name: "Анна"}

	// a project start date as read from a DATE column, and a deadline placed
	// the way generated batches place it
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(uuid.New(), "Схема БД", "", domain.DeadlineAt(start, 7, moscow), domain.TaskPriorityHigh)
	require.NoError(t, err)
	task.AssignTo(anna)
	tasks.Add(task)

	now := time.Date(2024, 1, 8, 12, 0, 0, 0, moscow)
	svc, err := NewTaskService(tasks, mocks.NewMockProjectStore(), mocks.NewMockUserStore(),
		&mocks.MockTransactor{}, events.NewInMemoryEventEmitter(nil), nil,
		WithClock(func() time.Time { return now }, moscow))
	require.NoError(t, err)

	today, err := svc.ListTodayTasks(context.Background(), anna.ID)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, task.ID, today[0].ID)

	now = now.AddDate(0, 0, 1)
	tomorrow, err := svc.ListTodayTasks(context.Background(), anna.ID)
	require.NoError(t, err)
	assert.Empty(t, tomorrow)
}

func TestNewTaskServiceValidation(t *testing.T) {
	_, err := NewTaskService(mocks.NewMockTaskStore(), mocks.NewMockProjectStore(), mocks.NewMockUserStore(),
		&mocks.MockTransactor{}, nil, nil)
	assert.Error(t, err)
}
