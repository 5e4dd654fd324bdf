package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitty/internal/models"
	"github.com/mmynk/splitty/internal/storage"
)

// part selects what loadSnapshot reads.
type part uint8

const (
	partExpenses part = 1 << iota
	partBudgets
	partPreferences
	partCategories
	partFriends
	partGroups
)

// snapshot is one owner's data as read for a single request.
type snapshot struct {
	expenses    []models.Expense
	budgets     []models.Budget
	preferences models.Preferences
	categories  []models.Category
	friends     []models.Friend
	groups      []models.Group
}

// loadSnapshot reads the requested parts concurrently. The first failure
// cancels the remaining reads.
func loadSnapshot(ctx context.Context, store storage.Store, ownerID string, parts part) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	if parts&partExpenses != 0 {
		g.Go(func() error {
			var err error
			if snap.expenses, err = store.ListExpenses(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load expenses: %w", err)
			}
			return nil
		})
	}
	if parts&partBudgets != 0 {
		g.Go(func() error {
			var err error
			if snap.budgets, err = store.ListBudgets(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load budgets: %w", err)
			}
			return nil
		})
	}
	if parts&partPreferences != 0 {
		g.Go(func() error {
			var err error
			if snap.preferences, err = store.GetPreferences(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load preferences: %w", err)
			}
			return nil
		})
	}
	if parts&partCategories != 0 {
		g.Go(func() error {
			var err error
			if snap.categories, err = store.ListCategories(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			return nil
		})
	}
	if parts&partFriends != 0 {
		g.Go(func() error {
			var err error
			if snap.friends, err = store.ListFriends(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load friends: %w", err)
			}
			return nil
		})
	}
	if parts&partGroups != 0 {
		g.Go(func() error {
			var err error
			if snap.groups, err = store.ListGroups(gctx, ownerID); err != nil {
				return fmt.Errorf("failed to load groups: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
