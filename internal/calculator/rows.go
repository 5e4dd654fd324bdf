package calculator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.RequireFromString("0.85")
)

// CategoryRow is the budget state of one category in one month.
type CategoryRow struct {
	CategoryID string
	Spent      decimal.Decimal
	Budget     decimal.Decimal
	Rollover   decimal.Decimal

	// EffectiveBudget is max(0, Budget + Rollover).
	EffectiveBudget decimal.Decimal

	// Percentage is the share of EffectiveBudget consumed, clamped to [0, 100].
	Percentage int
}

// IsOver reports whether the effective budget is used up.
func (r CategoryRow) IsOver() bool {
	return r.EffectiveBudget.IsPositive() && r.Spent.GreaterThanOrEqual(r.EffectiveBudget)
}

// IsWarning reports whether at least 85% of the effective budget is spent
// without being over.
func (r CategoryRow) IsWarning() bool {
	if !r.EffectiveBudget.IsPositive() || r.IsOver() {
		return false
	}
	return r.Spent.GreaterThanOrEqual(r.EffectiveBudget.Mul(warningThreshold))
}

// Remaining returns what is left of the effective budget, never below zero.
func (r CategoryRow) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, r.EffectiveBudget.Sub(r.Spent))
}

// BuildCategoryRows merges spend, the month's budget and rollover into one
// row per category and orders them for display.
//
// The row set is every category with spend, a budget entry, or (when
// rollover is enabled) a rollover amount, minus hidden ones. Rows listed in
// order come first, by their position there; the rest follow by spend,
// highest first. Ties keep encounter order: spend categories, then budget
// categories, then rollover categories, each sorted by ID.
func BuildCategoryRows(
	spend map[string]decimal.Decimal,
	budget *models.Budget,
	rollover map[string]decimal.Decimal,
	hidden map[string]bool,
	order []string,
	rolloverEnabled bool,
) []CategoryRow {
	seen := make(map[string]bool)
	var ids []string
	collect := func(m map[string]decimal.Decimal) {
		for _, id := range sortedKeys(m) {
			if seen[id] || hidden[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	collect(spend)
	if budget != nil {
		collect(budget.Categories)
	}
	if rolloverEnabled {
		collect(rollover)
	}

	rows := make([]CategoryRow, 0, len(ids))
	for _, id := range ids {
		row := CategoryRow{
			CategoryID: id,
			Spent:      spend[id],
			Budget:     budget.Limit(id),
			Rollover:   decimal.Zero,
		}
		if rolloverEnabled {
			row.Rollover = rollover[id]
		}
		row.EffectiveBudget = decimal.Max(decimal.Zero, row.Budget.Add(row.Rollover))
		row.Percentage = percentage(row.Spent, row.EffectiveBudget)
		rows = append(rows, row)
	}

	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, iRanked := rank[rows[i].CategoryID]
		rj, jRanked := rank[rows[j].CategoryID]
		switch {
		case iRanked && jRanked:
			return ri < rj
		case iRanked != jRanked:
			return iRanked
		default:
			return rows[i].Spent.GreaterThan(rows[j].Spent)
		}
	})

	return rows
}

// percentage returns round(min(spent/budget*100, 100)) for a positive
// budget, 100 for unbudgeted spend and 0 otherwise.
func percentage(spent, budget decimal.Decimal) int {
	if budget.IsPositive() {
		pct := decimal.Min(spent.Mul(hundred).Div(budget), hundred)
		pct = decimal.Max(pct, decimal.Zero)
		return int(pct.Round(0).IntPart())
	}
	if spent.IsPositive() {
		return 100
	}
	return 0
}

// Summary holds the month totals shown above the category list.
type Summary struct {
	TotalBudget  decimal.Decimal
	TotalSpent   decimal.Decimal
	Remaining    decimal.Decimal
	DailyAverage decimal.Decimal
}

// Summarize totals the rows of month. The daily average divides by the days
// elapsed so far when now falls in month, otherwise by the days in month.
func Summarize(rows []CategoryRow, month models.MonthKey, now time.Time) Summary {
	s := Summary{TotalBudget: decimal.Zero, TotalSpent: decimal.Zero}
	for _, r := range rows {
		s.TotalBudget = s.TotalBudget.Add(r.EffectiveBudget)
		s.TotalSpent = s.TotalSpent.Add(r.Spent)
	}
	s.Remaining = decimal.Max(decimal.Zero, s.TotalBudget.Sub(s.TotalSpent))

	days := month.DaysIn()
	if models.MonthOf(now) == month {
		days = now.Day()
	}
	if days < 1 {
		days = 1
	}
	s.DailyAverage = s.TotalSpent.Div(decimal.NewFromInt(int64(days)))

	return s
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
