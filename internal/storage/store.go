// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// Store defines the persistence operations the services need. Every record
// belongs to an owner (the authenticated user), and every call is scoped to
// one owner: records of other owners are invisible.
//
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateExpense persists a new expense and adds deltas to the cached
	// balances of the friends it names, in one transaction. The ID and
	// CreatedAt fields are populated by the store when empty.
	//
	// It returns the resulting balance of every friend in deltas. When a
	// friend in deltas does not exist nothing is written and a
	// *models.NotFoundError is returned.
	CreateExpense(ctx context.Context, ownerID string, e *models.Expense, deltas map[string]decimal.Decimal) (map[string]decimal.Decimal, error)

	// GetExpense retrieves an expense by ID.
	// Returns a *models.NotFoundError when it does not exist.
	GetExpense(ctx context.Context, ownerID, expenseID string) (*models.Expense, error)

	// DeleteExpense removes an expense and adds deltas to the cached
	// balances, in one transaction, returning the resulting balances.
	// Returns a *models.NotFoundError, with nothing written, when the
	// expense or a friend in deltas does not exist.
	DeleteExpense(ctx context.Context, ownerID, expenseID string, deltas map[string]decimal.Decimal) (map[string]decimal.Decimal, error)

	// ListExpenses returns the owner's full history, oldest first.
	ListExpenses(ctx context.Context, ownerID string) ([]models.Expense, error)

	// ListBudgets returns one Budget per month, ordered by month.
	ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error)

	// SetCategoryBudget sets the limit of one category in one month.
	// A zero limit removes the entry.
	SetCategoryBudget(ctx context.Context, ownerID string, month models.MonthKey, categoryID string, limit decimal.Decimal) error

	// CreateFriend persists a new friend with the given starting balance.
	CreateFriend(ctx context.Context, ownerID string, f *models.Friend) error

	// ListFriends returns the owner's friends ordered by name.
	ListFriends(ctx context.Context, ownerID string) ([]models.Friend, error)

	// CorrectFriendBalances overwrites cached balances in a single
	// transaction. A correction is skipped when the friend is unknown or its
	// balance no longer equals Expected. It returns the balances written.
	CorrectFriendBalances(ctx context.Context, ownerID string, corrections []BalanceCorrection) (map[string]decimal.Decimal, error)

	// CreateGroup persists a new group with its members.
	CreateGroup(ctx context.Context, ownerID string, g *models.Group) error

	// ListGroups returns the owner's groups with their members.
	ListGroups(ctx context.Context, ownerID string) ([]models.Group, error)

	// SaveCategory creates or replaces a category.
	SaveCategory(ctx context.Context, ownerID string, c models.Category) error

	// ListCategories returns the owner's custom categories ordered by ID.
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)

	// DeleteCategory removes a category.
	// Returns a *models.NotFoundError when it does not exist.
	DeleteCategory(ctx context.Context, ownerID, categoryID string) error

	// GetPreferences returns the owner's preferences, or defaults when none
	// have been saved.
	GetPreferences(ctx context.Context, ownerID string) (models.Preferences, error)

	// SavePreferences stores the owner's preferences.
	SavePreferences(ctx context.Context, ownerID string, p models.Preferences) error

	// ListOwners returns every owner that has at least one friend.
	ListOwners(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// BalanceCorrection replaces a friend's cached balance, provided it still
// holds Expected.
type BalanceCorrection struct {
	FriendID string
	Expected decimal.Decimal
	Balance  decimal.Decimal
}
