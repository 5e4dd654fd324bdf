package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// ComputeRollover accumulates unspent budget per category from every budget
// dated before target.
//
// Algorithm:
//   - For each budget whose month is strictly before target, compute that
//     month's spend (settlements excluded, hidden categories included)
//   - For each non-hidden category in that budget, add limit - spent
//   - Sum across all qualifying months, with no cap or decay
//
// Values are signed: overspending carries forward as a negative amount.
// Categories that never had a past budget have no entry. When enabled is
// false the result is always empty.
func ComputeRollover(budgets []models.Budget, expenses []models.Expense, target models.MonthKey, hidden map[string]bool, enabled bool, loc *time.Location) map[string]decimal.Decimal {
	rollover := make(map[string]decimal.Decimal)
	if !enabled {
		return rollover
	}

	for _, budget := range budgets {
		if !budget.Month.Before(target) {
			continue
		}

		// Hidden categories still count as spend here; they are dropped only
		// when accumulating.
		spent := MonthSpend(expenses, budget.Month, nil, loc)

		for category, limit := range budget.Categories {
			if hidden[category] {
				continue
			}
			unspent := limit.Sub(spent.PerCategory[category])
			rollover[category] = rollover[category].Add(unspent)
		}
	}

	return rollover
}
