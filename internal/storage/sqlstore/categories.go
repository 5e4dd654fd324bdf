package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mmynk/splitty/internal/models"
)

// SaveCategory creates or replaces a category.
func (s *Store) SaveCategory(ctx context.Context, ownerID string, c models.Category) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO categories (owner_id, id, label, color, icon) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (owner_id, id) DO UPDATE SET label = excluded.label, color = excluded.color, icon = excluded.icon`),
		ownerID, c.ID, c.Label, c.Color, c.Icon,
	)
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// ListCategories retrieves the owner's categories ordered by ID.
func (s *Store) ListCategories(ctx context.Context, ownerID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT id, label, color, icon FROM categories WHERE owner_id = ? ORDER BY id"),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Label, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// DeleteCategory removes a category by ID.
func (s *Store) DeleteCategory(ctx context.Context, ownerID, categoryID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM categories WHERE owner_id = ? AND id = ?"),
		ownerID, categoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return &models.NotFoundError{Kind: "category", ID: categoryID}
	}

	return nil
}

// GetPreferences retrieves the owner's preferences. Owners who never saved
// any get the zero Preferences with an empty hidden set.
func (s *Store) GetPreferences(ctx context.Context, ownerID string) (models.Preferences, error) {
	var (
		hidden string
		order  string
		p      models.Preferences
	)
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT hidden_categories, category_order, rollover_enabled FROM preferences WHERE owner_id = ?"),
		ownerID,
	).Scan(&hidden, &order, &p.RolloverEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Preferences{HiddenBudgetCategories: map[string]bool{}}, nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	var hiddenIDs []string
	if err := json.Unmarshal([]byte(hidden), &hiddenIDs); err != nil {
		return models.Preferences{}, fmt.Errorf("failed to decode hidden categories: %w", err)
	}
	if err := json.Unmarshal([]byte(order), &p.CategoryOrder); err != nil {
		return models.Preferences{}, fmt.Errorf("failed to decode category order: %w", err)
	}
	p.HiddenBudgetCategories = models.HiddenSet(hiddenIDs)

	return p, nil
}

// SavePreferences upserts the owner's preferences.
func (s *Store) SavePreferences(ctx context.Context, ownerID string, p models.Preferences) error {
	hiddenIDs := make([]string, 0, len(p.HiddenBudgetCategories))
	for id, hidden := range p.HiddenBudgetCategories {
		if hidden {
			hiddenIDs = append(hiddenIDs, id)
		}
	}
	sort.Strings(hiddenIDs)

	hidden, err := encodeStrings(hiddenIDs)
	if err != nil {
		return err
	}
	order, err := encodeStrings(p.CategoryOrder)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO preferences (owner_id, hidden_categories, category_order, rollover_enabled) VALUES (?, ?, ?, ?)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   hidden_categories = excluded.hidden_categories,
		   category_order = excluded.category_order,
		   rollover_enabled = excluded.rollover_enabled`),
		ownerID, hidden, order, p.RolloverEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}
