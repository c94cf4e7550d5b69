package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the progress state of a task.
//
// Any status may follow any other. COMPLETED is terminal by convention only.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskPriority ranks a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// IsValid reports whether p is a known priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// ParseTaskStatus parses an exact status name.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// ParsePriority parses a priority name case-insensitively, ignoring surrounding
// whitespace.
func ParsePriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.IsValid()
}

// PriorityOrDefault parses s and falls back to MEDIUM on anything unrecognized.
func PriorityOrDefault(s string) TaskPriority {
	if p, ok := ParsePriority(s); ok {
		return p
	}
	return TaskPriorityMedium
}

// Task is a unit of work inside a project.
//
// AIReasoning is provenance text for audit and display only. An empty value
// means no note was recorded.
type Task struct {
	ID             uuid.UUID    `json:"id"`
	ProjectID      uuid.UUID    `json:"projectId"`
	ProjectTitle   string       `json:"projectTitle,omitempty"` // read-only, filled on load
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	AssignedTo     *uuid.UUID   `json:"assignedToId,omitempty"`
	AssignedToName string       `json:"assignedToName,omitempty"`
	Deadline       time.Time    `json:"deadline"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	AIReasoning    string       `json:"aiReasoning,omitempty"`
	RequiredSkills []string     `json:"requiredSkills"`
	EstimatedHours *int         `json:"estimatedHours,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
}

// NewTask creates an unassigned TODO task.
func NewTask(projectID uuid.UUID, title, description string, deadline time.Time, priority TaskPriority) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:             uuid.New(),
		ProjectID:      projectID,
		Title:          strings.TrimSpace(title),
		Description:    description,
		Deadline:       deadline,
		Status:         TaskStatusTodo,
		Priority:       priority,
		RequiredSkills: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants of a task record.
func (t *Task) Validate() error {
	if t.ProjectID == uuid.Nil {
		return ErrEmptyProjectID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.Deadline.IsZero() {
		return ErrMissingDeadline
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		return ErrNegativeHours
	}
	return nil
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssignedTo != nil
}

// AssignTo records m as the assignee.
func (t *Task) AssignTo(m TeamMember) {
	id := m.ID
	t.AssignedTo = &id
	t.AssignedToName = m.Name
}

// TransitionTo moves the task to status. Entering COMPLETED stamps CompletedAt
// with now. Leaving COMPLETED keeps the earlier stamp.
func (t *Task) TransitionTo(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted {
		stamp := now
		t.CompletedAt = &stamp
	}
	t.Status = status
	t.UpdatedAt = now
	return nil
}

// IsDueOn reports whether the deadline falls on the same calendar day as day,
// evaluated in day's location.
func (t *Task) IsDueOn(day time.Time) bool {
	dy, dm, dd := t.Deadline.In(day.Location()).Date()
	y, m, d := day.Date()
	return dy == y && dm == m && dd == d
}
