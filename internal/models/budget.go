package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const monthKeyLayout = "2006-01"

// MonthKey identifies a calendar month as "YYYY-MM".
type MonthKey string

// MonthOf returns the key of the month containing t, in t's location.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// ParseMonthKey validates s and returns it as a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return MonthKey(t.Format(monthKeyLayout)), nil
}

// Bounds returns the first instant of the month and the last second
// (23:59:59 on the final day) in loc.
func (m MonthKey) Bounds(loc *time.Location) (start, end time.Time) {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return time.Time{}, time.Time{}
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	end = time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 0, loc)
	return start, end
}

// AddMonths returns the key n months after m (n may be negative).
func (m MonthKey) AddMonths(n int) MonthKey {
	t, err := time.Parse(monthKeyLayout, string(m))
	if err != nil {
		return m
	}
	return MonthKey(time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC).Format(monthKeyLayout))
}

// Before reports whether m is an earlier month than other. Keys compare
// lexically because the layout is zero padded.
func (m MonthKey) Before(other MonthKey) bool {
	return m < other
}

// DaysIn returns the number of days in the month.
func (m MonthKey) DaysIn() int {
	start, end := m.Bounds(time.UTC)
	if start.IsZero() {
		return 0
	}
	return end.Day()
}

func (m MonthKey) String() string { return string(m) }

// Budget holds the category limits for one month. There is at most one
// Budget per month.
type Budget struct {
	// Month is the month the limits apply to.
	Month MonthKey

	// Categories maps a category ID to a non-negative limit.
	Categories map[string]decimal.Decimal
}

// Limit returns the limit for category, or zero when none is set.
func (b *Budget) Limit(category string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return b.Categories[category]
}

// FindBudget returns the budget for month, or nil.
func FindBudget(budgets []Budget, month MonthKey) *Budget {
	for i := range budgets {
		if budgets[i].Month == month {
			return &budgets[i]
		}
	}
	return nil
}
