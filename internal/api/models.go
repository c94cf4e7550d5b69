package api

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teamai/teamai-api/internal/domain"
	"github.com/teamai/teamai-api/internal/service"
)

// Accepted date layouts. Dates without a clock part are read as midnight UTC.
const (
	dateLayout      = "2006-01-02"
	localTimeLayout = "2006-01-02T15:04:05"
	localMinLayout  = "2006-01-02T15:04"
)

var errInvalidDate = errors.New("invalid date")

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email           string   `json:"email"           validate:"required,email"`
	Password        string   `json:"password"        validate:"required,min=8,max=72"`
	Name            string   `json:"name"            validate:"required"`
	Role            string   `json:"role"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0"`
	Skills          []string `json:"skills"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	ExperienceYears int       `json:"experienceYears"`
	Skills          []string  `json:"skills"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateProjectRequest is the body of POST /api/projects.
type CreateProjectRequest struct {
	Title       string      `json:"title"       validate:"required"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	StartDate   string      `json:"startDate"   validate:"required"`
	Deadline    string      `json:"deadline"    validate:"required"`
	MemberIDs   []uuid.UUID `json:"memberIds"`
}

// MemberResponse is a roster entry.
type MemberResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Role            string    `json:"role"`
	Skills          []string  `json:"skills"`
	ExperienceYears int       `json:"experienceYears"`
}

// ProjectResponse is a project with its roster and task counts.
type ProjectResponse struct {
	ID                  uuid.UUID        `json:"id"`
	OwnerID             uuid.UUID        `json:"ownerId"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Category            string           `json:"category"`
	StartDate           string           `json:"startDate"`
	Deadline            string           `json:"deadline"`
	Status              string           `json:"status"`
	Progress            float64          `json:"progress"`
	Members             []MemberResponse `json:"members"`
	TasksCount          int              `json:"tasksCount"`
	CompletedTasksCount int              `json:"completedTasksCount"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	ProjectID      uuid.UUID  `json:"projectId"      validate:"required"`
	Title          string     `json:"title"          validate:"required"`
	Description    string     `json:"description"`
	AssignedToID   *uuid.UUID `json:"assignedToId"`
	Deadline       string     `json:"deadline"       validate:"required"`
	Priority       string     `json:"priority"`
	RequiredSkills []string   `json:"requiredSkills"`
	EstimatedHours *int       `json:"estimatedHours" validate:"omitempty,gte=0"`
}

// UpdateTaskStatusRequest is the body of PUT /api/tasks/{id}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS COMPLETED"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProjectID      uuid.UUID  `json:"projectId"`
	ProjectTitle   string     `json:"projectTitle,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssignedToID   *uuid.UUID `json:"assignedToId,omitempty"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	Deadline       time.Time  `json:"deadline"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AIReasoning    string     `json:"aiReasoning,omitempty"`
	RequiredSkills []string   `json:"requiredSkills"`
	EstimatedHours *int       `json:"estimatedHours,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Context string `json:"context"`
}

// ChatResponse is the assistant answer.
type ChatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// DistributeTasksRequest is the body of POST /api/ai/distribute-tasks.
type DistributeTasksRequest struct {
	ProjectID uuid.UUID `json:"projectId" validate:"required"`
}

// DistributeTasksResponse reports a distribution run. Exactly one of
// CreatedTasks and AssignedCount is present.
type DistributeTasksResponse struct {
	Message       string `json:"message"`
	CreatedTasks  *int   `json:"createdTasks,omitempty"`
	AssignedCount *int   `json:"assignedCount,omitempty"`
	AIReasoning   string `json:"aiReasoning,omitempty"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		ExperienceYears: u.ExperienceYears,
		Skills:          nonNil(u.Skills),
		CreatedAt:       u.CreatedAt,
	}
}

func projectToResponse(d *service.ProjectDetails) ProjectResponse {
	members := make([]MemberResponse, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, MemberResponse{
			ID:              m.ID,
			Name:            m.Name,
			Email:           m.Email,
			Role:            m.Role,
			Skills:          nonNil(m.Skills),
			ExperienceYears: m.ExperienceYears,
		})
	}
	p := d.Project
	return ProjectResponse{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		Title:               p.Title,
		Description:         p.Description,
		Category:            p.Category,
		StartDate:           p.StartDate.Format(dateLayout),
		Deadline:            p.Deadline.Format(dateLayout),
		Status:              string(p.Status),
		Progress:            p.Progress,
		Members:             members,
		TasksCount:          d.TasksCount,
		CompletedTasksCount: d.CompletedTasksCount,
		CreatedAt:           p.CreatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		ProjectTitle:   t.ProjectTitle,
		Title:          t.Title,
		Description:    t.Description,
		AssignedToID:   t.AssignedTo,
		AssignedToName: t.AssignedToName,
		Deadline:       t.Deadline,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		AIReasoning:    t.AIReasoning,
		RequiredSkills: nonNil(t.RequiredSkills),
		EstimatedHours: t.EstimatedHours,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// parseDate reads a calendar date. Full timestamps are accepted and
// truncated to their date.
func parseDate(s string) (time.Time, error) {
	t, err := parseDateTime(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return domain.TruncateToDate(t), nil
}

// parseDateTime reads RFC 3339, a date-time without zone, or a bare date (as
// midnight). Values without a zone are wall-clock times in loc.
func parseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{localTimeLayout, localMinLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errInvalidDate
}
