package domain

import "github.com/shopspring/decimal"

// Forecast is a linear burn-rate projection of a project's total spend.
type Forecast struct {
	DailyBurnRate    decimal.Decimal
	ProjectedTotal   decimal.Decimal
	ProjectedOverage decimal.Decimal
	WillExceed       bool
	// Confidence in percent: the share of the project timeline already
	// elapsed. Early-stage projections are low confidence by construction.
	Confidence float64
}

// ProjectOverspend projects total spend assuming the observed daily burn rate
// holds for the rest of the project. It is a pure function so the projection
// math is testable without a database or a clock.
func ProjectOverspend(spent, startingBudget decimal.Decimal, daysElapsed, daysRemaining int) Forecast {
	if daysElapsed <= 0 {
		return Forecast{}
	}
	totalDays := daysElapsed + daysRemaining
	if totalDays <= 0 {
		return Forecast{}
	}

	burn := spent.Div(decimal.NewFromInt(int64(daysElapsed)))
	projected := burn.Mul(decimal.NewFromInt(int64(totalDays)))

	overage := projected.Sub(startingBudget)
	if overage.Sign() < 0 {
		overage = decimal.Zero
	}

	confidence := float64(daysElapsed) / float64(totalDays) * 100
	if confidence > 100 {
		confidence = 100
	}

	return Forecast{
		DailyBurnRate:    burn,
		ProjectedTotal:   projected,
		ProjectedOverage: overage,
		WillExceed:       projected.Cmp(startingBudget) > 0,
		Confidence:       confidence,
	}
}
