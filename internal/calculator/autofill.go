package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// DefaultLookbackMonths is how many past months SuggestBudget averages.
const DefaultLookbackMonths = 3

// SuggestBudget proposes a limit per category for month: the user's mean
// monthly spend over the lookback months before it, rounded to cents.
// Months without spend count as zero.
func SuggestBudget(expenses []models.Expense, month models.MonthKey, hidden map[string]bool, lookback int, loc *time.Location) map[string]decimal.Decimal {
	if lookback <= 0 {
		lookback = DefaultLookbackMonths
	}

	totals := make(map[string]decimal.Decimal)
	for i := 1; i <= lookback; i++ {
		spent := MonthSpend(expenses, month.AddMonths(-i), hidden, loc)
		for category, amount := range spent.PerCategory {
			totals[category] = totals[category].Add(amount)
		}
	}

	months := decimal.NewFromInt(int64(lookback))
	suggestion := make(map[string]decimal.Decimal, len(totals))
	for category, total := range totals {
		suggestion[category] = total.Div(months).Round(2)
	}
	return suggestion
}
