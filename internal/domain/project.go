package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
)

// Project groups a team roster and the tasks distributed among it.
//
// StartDate and Deadline are calendar dates; StartDate <= Deadline is not
// enforced. Progress is derived from task statuses and never set by users.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	StartDate   time.Time     `json:"startDate"`
	Deadline    time.Time     `json:"deadline"`
	Status      ProjectStatus `json:"status"`
	Progress    float64       `json:"progress"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TeamMember is the projection of a user inside a project roster.
type TeamMember struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Role            string    `json:"role"`
	Skills          []string  `json:"skills"`
	ExperienceYears int       `json:"experienceYears"`
}

// NewProject creates a project in progress with zero progress.
func NewProject(ownerID uuid.UUID, title, description, category string, startDate, deadline time.Time) (*Project, error) {
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Category:    category,
		StartDate:   TruncateToDate(startDate),
		Deadline:    TruncateToDate(deadline),
		Status:      ProjectStatusInProgress,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the invariants of a project record.
func (p *Project) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.StartDate.IsZero() || p.Deadline.IsZero() {
		return ErrMissingDeadline
	}
	if p.Progress < 0 || p.Progress > 100 || math.IsNaN(p.Progress) {
		return ErrInvalidProgress
	}
	return nil
}

// DurationDays is the number of whole calendar days from StartDate to Deadline.
// It is negative when the deadline precedes the start.
func (p *Project) DurationDays() int {
	return DaysBetween(p.StartDate, p.Deadline)
}

// ComputeProgress returns 100*completed/total. The second result is false when
// total is zero, in which case progress is undefined and must be left as is.
func ComputeProgress(completed, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(completed) * 100.0 / float64(total), true
}

// TruncateToDate drops the clock part of t, keeping its location.
func TruncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from start to end, ignoring clock time and
// daylight saving shifts.
func DaysBetween(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// DateIn returns the calendar date of t as midnight in loc. A DATE column
// scanned by the driver arrives as midnight UTC; DateIn moves it to the
// server's zone without shifting the day. A nil loc keeps t's location.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	if loc == nil {
		loc = t.Location()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DeadlineAt returns the calendar date days after start's date, at 23:59 in
// loc. A nil loc keeps start's location.
func DeadlineAt(start time.Time, days int, loc *time.Location) time.Time {
	if loc == nil {
		loc = start.Location()
	}
	y, m, d := start.Date()
	return time.Date(y, m, d+days, 23, 59, 0, 0, loc)
}
