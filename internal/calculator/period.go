package calculator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// ExpenseShare pairs an expense with the user's share of it.
type ExpenseShare struct {
	Expense models.Expense
	Share   decimal.Decimal
}

// PeriodSpend is the user's spend over one period.
type PeriodSpend struct {
	// PerCategory maps a category ID to the summed shares. Categories whose
	// shares are all zero have no entry.
	PerCategory map[string]decimal.Decimal

	// Total is the sum of PerCategory.
	Total decimal.Decimal

	// Matched lists every expense that passed the filter, in input order,
	// zero shares included.
	Matched []ExpenseShare
}

// AggregateSpend sums the user's shares of the expenses dated within
// [start, end], skipping settlements and hidden categories.
func AggregateSpend(expenses []models.Expense, start, end time.Time, hidden map[string]bool) PeriodSpend {
	result := PeriodSpend{
		PerCategory: make(map[string]decimal.Decimal),
		Total:       decimal.Zero,
	}

	for _, e := range expenses {
		if !inPeriod(e, start, end) || hidden[e.Category] {
			continue
		}

		share := MyShare(e)
		result.Matched = append(result.Matched, ExpenseShare{Expense: e, Share: share})

		// A zero share must not create an empty bucket
		if share.IsZero() {
			continue
		}
		result.PerCategory[e.Category] = result.PerCategory[e.Category].Add(share)
	}

	// Decimal addition is exact, so the total matches the buckets whatever
	// order they are summed in.
	for _, amount := range result.PerCategory {
		result.Total = result.Total.Add(amount)
	}

	return result
}

// MonthSpend is AggregateSpend over the calendar month in loc.
func MonthSpend(expenses []models.Expense, month models.MonthKey, hidden map[string]bool, loc *time.Location) PeriodSpend {
	start, end := month.Bounds(loc)
	return AggregateSpend(expenses, start, end, hidden)
}

// CategoryExpenses lists the expenses of one category in a month that the
// user carries part of, newest first. Used for the category drill-down.
func CategoryExpenses(expenses []models.Expense, month models.MonthKey, categoryID string, loc *time.Location) []ExpenseShare {
	start, end := month.Bounds(loc)

	var out []ExpenseShare
	for _, e := range expenses {
		if e.Category != categoryID || !inPeriod(e, start, end) {
			continue
		}
		share := MyShare(e)
		if !share.IsPositive() {
			continue
		}
		out = append(out, ExpenseShare{Expense: e, Share: share})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Expense.Date.After(out[j].Expense.Date)
	})
	return out
}

func inPeriod(e models.Expense, start, end time.Time) bool {
	if e.IsSettlement {
		return false
	}
	return !e.Date.Before(start) && !e.Date.After(end)
}
