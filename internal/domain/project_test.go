package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewProject(t *testing.T) {
	owner := uuid.New()
	p, err := NewProject(owner, "  Mobile app ", "Rewrite", "dev",
		time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC), date(2024, 3, 1))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "Mobile app", p.Title)
	assert.Equal(t, ProjectStatusInProgress, p.Status)
	assert.Zero(t, p.Progress)
	assert.Equal(t, date(2024, 1, 1), p.StartDate, "start date is truncated to the day")
	assert.Equal(t, 60, p.DurationDays())
}

func TestNewProjectValidation(t *testing.T) {
	_, err := NewProject(uuid.Nil, "t", "", "", date(2024, 1, 1), date(2024, 1, 2))
	assert.ErrorIs(t, err, ErrEmptyOwnerID)

	_, err = NewProject(uuid.New(), "   ", "", "", date(2024, 1, 1), date(2024, 1, 2))
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewProject(uuid.New(), "t", "", "", time.Time{}, date(2024, 1, 2))
	assert.ErrorIs(t, err, ErrMissingDeadline)
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
		ok               bool
	}{
		{0, 0, 0, false},
		{0, 4, 0, true},
		{1, 4, 25, true},
		{1, 3, 100.0 / 3, true},
		{5, 5, 100, true},
	}
	for _, tt := range tests {
		got, ok := ComputeProgress(tt.completed, tt.total)
		assert.Equal(t, tt.ok, ok)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestDeadlineAt(t *testing.T) {
	got := DeadlineAt(date(2024, 1, 1), 7, nil)
	assert.Equal(t, time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC), got)

	// month rollover
	got = DeadlineAt(date(2024, 1, 30), 3, nil)
	assert.Equal(t, time.Date(2024, 2, 2, 23, 59, 0, 0, time.UTC), got)

	// nil location keeps the start date's location
	moscow := time.FixedZone("MSK", 3*60*60)
	got = DeadlineAt(time.Date(2024, 1, 1, 0, 0, 0, 0, moscow), 0, nil)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 0, 0, moscow), got)

	// a UTC calendar date lands at 23:59 wall time in the given location
	got = DeadlineAt(date(2024, 1, 1), 7, moscow)
	assert.Equal(t, time.Date(2024, 1, 8, 23, 59, 0, 0, moscow), got)
	assert.Equal(t, time.Date(2024, 1, 8, 20, 59, 0, 0, time.UTC), got.UTC())
}

func TestDateIn(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	got := DateIn(date(2024, 1, 8), moscow)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, moscow), got)
	assert.Same(t, moscow, got.Location())

	assert.Equal(t, date(2024, 1, 8), DateIn(time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), nil))
	assert.True(t, DateIn(time.Time{}, moscow).IsZero())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2024, 1, 1), date(2024, 1, 1)))
	assert.Equal(t, 31, DaysBetween(date(2024, 1, 1), date(2024, 2, 1)))
	assert.Equal(t, -1, DaysBetween(date(2024, 1, 2), date(2024, 1, 1)))
	assert.Equal(t, 1, DaysBetween(
		time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC),
	))
}
