package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProjectDaysToDeadline(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

	end := time.Date(2026, 9, 11, 9, 0, 0, 0, time.UTC)
	project := NewProject("tenant_1", "Launch", dec("1000"), "EUR", nil, &end)

	days, ok := project.DaysToDeadline(now)
	assert.True(t, ok)
	assert.Equal(t, 10, days, "calendar days, independent of time of day")

	past := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	project.EndDate = &past
	days, ok = project.DaysToDeadline(now)
	assert.True(t, ok)
	assert.Equal(t, -3, days)

	project.EndDate = nil
	_, ok = project.DaysToDeadline(now)
	assert.False(t, ok)
}
