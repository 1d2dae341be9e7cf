package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectOverspendLinearProjection(t *testing.T) {
	// 900 spent over 90 days with 10 days left: 10/day over 100 days = 1000.
	forecast := ProjectOverspend(dec("900"), dec("800"), 90, 10)

	assert.True(t, forecast.DailyBurnRate.Equal(dec("10")))
	assert.True(t, forecast.ProjectedTotal.Equal(dec("1000")))
	assert.True(t, forecast.ProjectedOverage.Equal(dec("200")))
	assert.True(t, forecast.WillExceed)
	assert.InDelta(t, 90.0, forecast.Confidence, 0.001)
}

func TestProjectOverspendUnderBudget(t *testing.T) {
	forecast := ProjectOverspend(dec("100"), dec("1000"), 50, 50)

	assert.False(t, forecast.WillExceed)
	assert.True(t, forecast.ProjectedOverage.IsZero(), "no overage when under budget")
	assert.True(t, forecast.ProjectedTotal.Equal(dec("200")))
}

func TestProjectOverspendNoElapsedDays(t *testing.T) {
	forecast := ProjectOverspend(dec("100"), dec("1000"), 0, 30)

	assert.False(t, forecast.WillExceed)
	assert.True(t, forecast.DailyBurnRate.IsZero())
	assert.Zero(t, forecast.Confidence)
}

func TestProjectOverspendConfidenceCappedAt100(t *testing.T) {
	forecast := ProjectOverspend(dec("500"), dec("400"), 120, 0)

	assert.True(t, forecast.WillExceed)
	assert.InDelta(t, 100.0, forecast.Confidence, 0.001)
}

func TestProjectOverspendConfidenceGrowsWithElapsedShare(t *testing.T) {
	early := ProjectOverspend(dec("100"), dec("500"), 10, 90)
	late := ProjectOverspend(dec("900"), dec("500"), 90, 10)

	assert.InDelta(t, 10.0, early.Confidence, 0.001)
	assert.InDelta(t, 90.0, late.Confidence, 0.001)
	assert.Greater(t, late.Confidence, early.Confidence)
}
