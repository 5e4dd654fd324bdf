package sqlstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// ListBudgets groups the owner's budget rows into one Budget per month.
func (s *Store) ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT month, category_id, amount FROM budgets WHERE owner_id = ? ORDER BY month, category_id"),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var (
			month    string
			category string
			amount   decimal.Decimal
		)
		if err := rows.Scan(&month, &category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}

		// Rows arrive ordered by month.
		if n := len(budgets); n == 0 || budgets[n-1].Month != models.MonthKey(month) {
			budgets = append(budgets, models.Budget{
				Month:      models.MonthKey(month),
				Categories: make(map[string]decimal.Decimal),
			})
		}
		budgets[len(budgets)-1].Categories[category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return budgets, nil
}

// SetCategoryBudget upserts one category limit. A zero limit deletes it.
func (s *Store) SetCategoryBudget(ctx context.Context, ownerID string, month models.MonthKey, categoryID string, limit decimal.Decimal) error {
	if limit.IsZero() {
		_, err := s.db.ExecContext(ctx, s.rebind(
			"DELETE FROM budgets WHERE owner_id = ? AND month = ? AND category_id = ?"),
			ownerID, string(month), categoryID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear budget: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO budgets (owner_id, month, category_id, amount) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id, month, category_id) DO UPDATE SET amount = excluded.amount`),
		ownerID, string(month), categoryID, limit,
	)
	if err != nil {
		return fmt.Errorf("failed to set budget: %w", err)
	}

	return nil
}
