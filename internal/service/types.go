package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/calculator"
	"github.com/mmynk/splitty/internal/format"
	"github.com/mmynk/splitty/internal/models"
)

// Expense is the wire form of models.Expense. Amounts travel as decimal
// strings.
type Expense struct {
	ID           string                     `json:"id,omitempty"`
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	Date         time.Time                  `json:"date"`
	Category     string                     `json:"category,omitempty"`
	PayerID      string                     `json:"payer_id"`
	SplitType    models.SplitKind           `json:"split_type,omitempty"`
	SplitWith    []string                   `json:"split_with,omitempty"`
	SplitDetails map[string]decimal.Decimal `json:"split_details,omitempty"`
	IsSettlement bool                       `json:"is_settlement,omitempty"`
	Tags         []string                   `json:"tags,omitempty"`
	GroupID      string                     `json:"group_id,omitempty"`
	CreatedAt    int64                      `json:"created_at,omitempty"`
}

// expenseToModel converts a wire expense. An empty split type means equal;
// any other unknown type is rejected rather than guessed.
func expenseToModel(e Expense) (models.Expense, error) {
	var split models.Split
	switch e.SplitType {
	case models.SplitUnequal:
		split = models.UnequalSplit{With: e.SplitWith, Details: e.SplitDetails}
	case models.SplitEqual, "":
		split = models.EqualSplit{With: e.SplitWith}
	default:
		return models.Expense{}, &models.ValidationError{
			Field:   "split_type",
			Message: fmt.Sprintf("unknown split type %q, must be equal or unequal", e.SplitType),
		}
	}

	return models.Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Date:         e.Date,
		Category:     e.Category,
		PayerID:      e.PayerID,
		Split:        split,
		IsSettlement: e.IsSettlement,
		Tags:         e.Tags,
		GroupID:      e.GroupID,
		CreatedAt:    e.CreatedAt,
	}, nil
}

func expenseFromModel(e models.Expense) Expense {
	out := Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Date:         e.Date,
		Category:     e.Category,
		PayerID:      e.PayerID,
		SplitType:    e.SplitKind(),
		SplitWith:    e.Participants(),
		IsSettlement: e.IsSettlement,
		Tags:         e.Tags,
		GroupID:      e.GroupID,
		CreatedAt:    e.CreatedAt,
	}
	if s, ok := e.Split.(models.UnequalSplit); ok {
		out.SplitDetails = s.Details
	}
	return out
}

// Money is an amount together with its display form.
type Money struct {
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

func money(f format.CurrencyFormatter, amount decimal.Decimal) Money {
	return Money{Amount: amount, Display: f.FormatCurrency(amount)}
}

// Category is a spending category as shown to clients.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

func categoryFromModel(c models.Category) Category {
	return Category{ID: c.ID, Label: c.Label, Color: c.Color, Icon: c.Icon}
}

// Friend is a friend with their balance. A positive balance means they
// owe the user.
type Friend struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Balance      Money  `json:"balance"`
	LinkedUserID string `json:"linked_user_id,omitempty"`
}

func friendFromModel(f format.CurrencyFormatter, friend models.Friend) Friend {
	return Friend{
		ID:           friend.ID,
		Name:         friend.Name,
		Balance:      money(f, friend.Balance),
		LinkedUserID: friend.LinkedUserID,
	}
}

// Group is a named set of friends.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

func groupFromModel(g models.Group) Group {
	return Group{ID: g.ID, Name: g.Name, Members: g.Members, CreatedAt: g.CreatedAt}
}

// Preferences are the owner's budget display settings. HiddenCategories
// is sorted.
type Preferences struct {
	HiddenCategories []string `json:"hidden_categories"`
	CategoryOrder    []string `json:"category_order"`
	RolloverEnabled  bool     `json:"rollover_enabled"`
}

func preferencesFromModel(p models.Preferences) Preferences {
	hidden := make([]string, 0, len(p.HiddenBudgetCategories))
	for id, ok := range p.HiddenBudgetCategories {
		if ok {
			hidden = append(hidden, id)
		}
	}
	sort.Strings(hidden)

	order := p.CategoryOrder
	if order == nil {
		order = []string{}
	}
	return Preferences{HiddenCategories: hidden, CategoryOrder: order, RolloverEnabled: p.RolloverEnabled}
}

// BudgetService messages

// GetMonthViewRequest asks for the budget screen of one month.
type GetMonthViewRequest struct {
	// Month is YYYY-MM. Empty means the current month.
	Month string `json:"month,omitempty"`
}

// CategoryRow is one line of the budget screen.
type CategoryRow struct {
	Category        Category `json:"category"`
	Spent           Money    `json:"spent"`
	Budget          Money    `json:"budget"`
	Rollover        Money    `json:"rollover"`
	EffectiveBudget Money    `json:"effective_budget"`
	Remaining       Money    `json:"remaining"`
	Percentage      int      `json:"percentage"`
	IsOver          bool     `json:"is_over"`
	IsWarning       bool     `json:"is_warning"`
}

func categoryRowFromCalc(f format.CurrencyFormatter, cat models.Category, r calculator.CategoryRow) CategoryRow {
	return CategoryRow{
		Category:        categoryFromModel(cat),
		Spent:           money(f, r.Spent),
		Budget:          money(f, r.Budget),
		Rollover:        money(f, r.Rollover),
		EffectiveBudget: money(f, r.EffectiveBudget),
		Remaining:       money(f, r.Remaining()),
		Percentage:      r.Percentage,
		IsOver:          r.IsOver(),
		IsWarning:       r.IsWarning(),
	}
}

// MonthSummary totals the visible rows of a month.
type MonthSummary struct {
	TotalBudget  Money `json:"total_budget"`
	TotalSpent   Money `json:"total_spent"`
	Remaining    Money `json:"remaining"`
	DailyAverage Money `json:"daily_average"`
}

// GetMonthViewResponse holds the rows in display order and their summary.
type GetMonthViewResponse struct {
	Month           string        `json:"month"`
	RolloverEnabled bool          `json:"rollover_enabled"`
	Rows            []CategoryRow `json:"rows"`
	Summary         MonthSummary  `json:"summary"`
	CurrencySymbol  string        `json:"currency_symbol"`
}

// GetCategoryDetailRequest asks for the expenses behind one category row.
type GetCategoryDetailRequest struct {
	Month      string `json:"month,omitempty"`
	CategoryID string `json:"category_id"`
}

// ExpenseShare is an expense with the user's share of it.
type ExpenseShare struct {
	Expense Expense `json:"expense"`
	Share   Money   `json:"share"`
}

// GetCategoryDetailResponse lists a category's expenses, newest first.
type GetCategoryDetailResponse struct {
	Month    string         `json:"month"`
	Category Category       `json:"category"`
	Expenses []ExpenseShare `json:"expenses"`
	Total    Money          `json:"total"`
}

// SetCategoryBudgetRequest sets one category limit. Zero clears it.
type SetCategoryBudgetRequest struct {
	Month      string          `json:"month"`
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// SetCategoryBudgetResponse holds the month's limits after the change.
type SetCategoryBudgetResponse struct {
	Month      string                     `json:"month"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// SuggestBudgetRequest asks for limits based on recent spending.
type SuggestBudgetRequest struct {
	Month string `json:"month,omitempty"`
}

// BudgetSuggestion is a suggested limit for one category.
type BudgetSuggestion struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// SuggestBudgetResponse lists suggestions ordered by category ID.
type SuggestBudgetResponse struct {
	Month       string             `json:"month"`
	Suggestions []BudgetSuggestion `json:"suggestions"`
}

// LedgerService messages

// CreateExpenseRequest records a new expense. ID and CreatedAt are ignored.
type CreateExpenseRequest struct {
	Expense Expense `json:"expense"`
}

// CreateExpenseResponse returns the stored expense.
type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// DeleteExpenseRequest removes an expense or settlement.
type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

// DeleteExpenseResponse is empty on success.
type DeleteExpenseResponse struct{}

// GetBalancesRequest takes no parameters.
type GetBalancesRequest struct{}

// GetBalancesResponse lists every friend and the totals on each side.
type GetBalancesResponse struct {
	Friends   []Friend `json:"friends"`
	OwedToYou Money    `json:"owed_to_you"`
	YouOwe    Money    `json:"you_owe"`
}

// GetSettlementGraphRequest asks for the debt graph.
type GetSettlementGraphRequest struct {
	// GroupID narrows the graph to one group. Unknown IDs are ignored.
	GroupID string `json:"group_id,omitempty"`
}

// GraphNode is a friend in the settlement graph. Weight is the share of
// its layer's total, from 0 to 1.
type GraphNode struct {
	Friend Friend  `json:"friend"`
	Amount Money   `json:"amount"`
	Weight float64 `json:"weight"`
}

// GetSettlementGraphResponse holds the two layers of the debt graph.
type GetSettlementGraphResponse struct {
	OwedToUser []GraphNode `json:"owed_to_user"`
	UserOwes   []GraphNode `json:"user_owes"`
}

func graphNodes(f format.CurrencyFormatter, nodes []calculator.GraphNode) []GraphNode {
	out := make([]GraphNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, GraphNode{
			Friend: friendFromModel(f, n.Friend),
			Amount: money(f, n.Amount),
			Weight: n.Weight,
		})
	}
	return out
}

// ListSettleableRequest takes no parameters.
type ListSettleableRequest struct{}

// Settleable is a friend with an open balance and the transfer that
// would clear it.
type Settleable struct {
	Friend     Friend `json:"friend"`
	PayerID    string `json:"payer_id"`
	ReceiverID string `json:"receiver_id"`
	Amount     Money  `json:"amount"`
}

// ListSettleableResponse lists friends with an open balance.
type ListSettleableResponse struct {
	Friends []Settleable `json:"friends"`
}

// SettleUpRequest records a transfer between the user and a friend.
type SettleUpRequest struct {
	PayerID    string `json:"payer_id"`
	ReceiverID string `json:"receiver_id"`

	// Amount is the raw user input; thousands separators are accepted.
	Amount string `json:"amount"`
}

// SettleUpResponse returns the settlement and the friend's new balance.
type SettleUpResponse struct {
	Settlement Expense `json:"settlement"`
	Friend     Friend  `json:"friend"`
}

// ListActivityRequest filters the activity feed by free text and tag.
type ListActivityRequest struct {
	Query string `json:"query,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// ActivityEntry is one feed line with display names resolved.
type ActivityEntry struct {
	Expense   Expense `json:"expense"`
	PayerName string  `json:"payer_name"`
	GroupName string  `json:"group_name,omitempty"`
	MyShare   Money   `json:"my_share"`
}

// ListActivityResponse holds matching entries, newest first, and every tag
// in use.
type ListActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
	Tags    []string        `json:"tags"`
}

// SettingsService messages

// GetPreferencesRequest takes no parameters.
type GetPreferencesRequest struct{}

// GetPreferencesResponse holds the stored or default preferences.
type GetPreferencesResponse struct {
	Preferences Preferences `json:"preferences"`
}

// UpdatePreferencesRequest replaces the owner's preferences.
type UpdatePreferencesRequest struct {
	Preferences Preferences `json:"preferences"`
}

// UpdatePreferencesResponse echoes the stored preferences.
type UpdatePreferencesResponse struct {
	Preferences Preferences `json:"preferences"`
}

// ListCategoriesRequest takes no parameters.
type ListCategoriesRequest struct{}

// ListCategoriesResponse lists general first, then custom categories.
type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// CreateCategoryRequest adds a custom category. The label is derived from
// the ID when empty.
type CreateCategoryRequest struct {
	Category Category `json:"category"`
}

// CreateCategoryResponse returns the stored category with its label.
type CreateCategoryResponse struct {
	Category Category `json:"category"`
}

// DeleteCategoryRequest removes a custom category. General cannot be
// removed.
type DeleteCategoryRequest struct {
	CategoryID string `json:"category_id"`
}

// DeleteCategoryResponse is empty on success.
type DeleteCategoryResponse struct{}

// CreateFriendRequest has no starting balance: balances always follow from
// the expense history.
type CreateFriendRequest struct {
	Name         string `json:"name"`
	LinkedUserID string `json:"linked_user_id,omitempty"`
}

// CreateFriendResponse returns the new friend.
type CreateFriendResponse struct {
	Friend Friend `json:"friend"`
}

// CreateGroupRequest creates a group. Members are friend IDs.
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CreateGroupResponse returns the new group.
type CreateGroupResponse struct {
	Group Group `json:"group"`
}
