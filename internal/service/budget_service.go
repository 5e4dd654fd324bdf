package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/calculator"
	"github.com/mmynk/splitty/internal/catalog"
	"github.com/mmynk/splitty/internal/models"
	"github.com/mmynk/splitty/internal/storage"
)

// BudgetService serves the monthly budget view.
type BudgetService struct {
	store storage.Store
	opts  Options
}

// NewBudgetService creates a new BudgetService with the given storage backend.
func NewBudgetService(store storage.Store, opts Options) *BudgetService {
	return &BudgetService{store: store, opts: opts.withDefaults()}
}

// monthOrCurrent parses month, defaulting to the current month.
func (s *BudgetService) monthOrCurrent(month string) (models.MonthKey, error) {
	if month == "" {
		return models.MonthOf(s.opts.now()), nil
	}
	key, err := models.ParseMonthKey(month)
	if err != nil {
		return "", &models.ValidationError{Field: "month", Message: err.Error()}
	}
	return key, nil
}

// GetMonthView returns the category rows and totals for a month.
func (s *BudgetService) GetMonthView(ctx context.Context, req *connect.Request[GetMonthViewRequest]) (*connect.Response[GetMonthViewResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	month, err := s.monthOrCurrent(req.Msg.Month)
	if err != nil {
		return nil, toConnectError(ctx, "GetMonthView", err)
	}

	slog.Info("GetMonthView request received", "owner_id", ownerID, "month", month)

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	snap, err := loadSnapshot(loadCtx, s.store, ownerID, partExpenses|partBudgets|partPreferences|partCategories)
	if err != nil {
		return nil, toConnectError(ctx, "GetMonthView", err)
	}

	prefs := snap.preferences
	hidden := prefs.HiddenBudgetCategories
	loc := s.opts.Location

	spend := calculator.MonthSpend(snap.expenses, month, hidden, loc)
	rollover := calculator.ComputeRollover(snap.budgets, snap.expenses, month, hidden, prefs.RolloverEnabled, loc)
	rows := calculator.BuildCategoryRows(
		spend.PerCategory,
		models.FindBudget(snap.budgets, month),
		rollover,
		hidden,
		prefs.CategoryOrder,
		prefs.RolloverEnabled,
	)
	summary := calculator.Summarize(rows, month, s.opts.now())

	cats := catalog.New(snap.categories)
	f := s.opts.Currency
	resp := &GetMonthViewResponse{
		Month:           month.String(),
		RolloverEnabled: prefs.RolloverEnabled,
		Rows:            make([]CategoryRow, 0, len(rows)),
		Summary: MonthSummary{
			TotalBudget:  money(f, summary.TotalBudget),
			TotalSpent:   money(f, summary.TotalSpent),
			Remaining:    money(f, summary.Remaining),
			DailyAverage: money(f, summary.DailyAverage.Round(2)),
		},
		CurrencySymbol: f.CurrencySymbol(),
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, categoryRowFromCalc(f, cats.ByID(r.CategoryID), r))
	}

	slog.Info("GetMonthView successful", "owner_id", ownerID, "month", month, "rows", len(rows))

	return connect.NewResponse(resp), nil
}

// GetCategoryDetail lists the expenses behind one category row.
func (s *BudgetService) GetCategoryDetail(ctx context.Context, req *connect.Request[GetCategoryDetailRequest]) (*connect.Response[GetCategoryDetailResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.CategoryID == "" {
		return nil, toConnectError(ctx, "GetCategoryDetail", &models.ValidationError{Field: "category_id", Message: "category is required"})
	}
	month, err := s.monthOrCurrent(req.Msg.Month)
	if err != nil {
		return nil, toConnectError(ctx, "GetCategoryDetail", err)
	}

	slog.Info("GetCategoryDetail request received", "owner_id", ownerID, "month", month, "category_id", req.Msg.CategoryID)

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	snap, err := loadSnapshot(loadCtx, s.store, ownerID, partExpenses|partCategories)
	if err != nil {
		return nil, toConnectError(ctx, "GetCategoryDetail", err)
	}

	f := s.opts.Currency
	shares := calculator.CategoryExpenses(snap.expenses, month, req.Msg.CategoryID, s.opts.Location)
	resp := &GetCategoryDetailResponse{
		Month:    month.String(),
		Category: categoryFromModel(catalog.New(snap.categories).ByID(req.Msg.CategoryID)),
		Expenses: make([]ExpenseShare, 0, len(shares)),
	}
	total := decimal.Zero
	for _, es := range shares {
		total = total.Add(es.Share)
		resp.Expenses = append(resp.Expenses, ExpenseShare{
			Expense: expenseFromModel(es.Expense),
			Share:   money(f, es.Share),
		})
	}
	resp.Total = money(f, total)

	return connect.NewResponse(resp), nil
}

// SetCategoryBudget sets or, with a zero amount, clears one category limit.
func (s *BudgetService) SetCategoryBudget(ctx context.Context, req *connect.Request[SetCategoryBudgetRequest]) (*connect.Response[SetCategoryBudgetResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("SetCategoryBudget request received",
		"owner_id", ownerID,
		"month", req.Msg.Month,
		"category_id", req.Msg.CategoryID,
		"amount", req.Msg.Amount.String(),
	)

	month, err := models.ParseMonthKey(req.Msg.Month)
	if err != nil {
		return nil, toConnectError(ctx, "SetCategoryBudget", &models.ValidationError{Field: "month", Message: err.Error()})
	}
	if req.Msg.Amount.IsNegative() {
		return nil, toConnectError(ctx, "SetCategoryBudget", &models.ValidationError{Field: "amount", Message: "must not be negative"})
	}

	categories, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "SetCategoryBudget", err)
	}
	if _, err := catalog.New(categories).Lookup(req.Msg.CategoryID); err != nil {
		return nil, toConnectError(ctx, "SetCategoryBudget", err)
	}

	if err := s.store.SetCategoryBudget(ctx, ownerID, month, req.Msg.CategoryID, req.Msg.Amount); err != nil {
		return nil, toConnectError(ctx, "SetCategoryBudget", err)
	}

	budgets, err := s.store.ListBudgets(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "SetCategoryBudget", err)
	}
	resp := &SetCategoryBudgetResponse{Month: month.String(), Categories: map[string]decimal.Decimal{}}
	if b := models.FindBudget(budgets, month); b != nil {
		resp.Categories = b.Categories
	}

	return connect.NewResponse(resp), nil
}

// SuggestBudget proposes limits from the spend of the preceding months.
func (s *BudgetService) SuggestBudget(ctx context.Context, req *connect.Request[SuggestBudgetRequest]) (*connect.Response[SuggestBudgetResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	month, err := s.monthOrCurrent(req.Msg.Month)
	if err != nil {
		return nil, toConnectError(ctx, "SuggestBudget", err)
	}

	slog.Info("SuggestBudget request received", "owner_id", ownerID, "month", month)

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	snap, err := loadSnapshot(loadCtx, s.store, ownerID, partExpenses|partPreferences|partCategories)
	if err != nil {
		return nil, toConnectError(ctx, "SuggestBudget", err)
	}

	suggested := calculator.SuggestBudget(
		snap.expenses,
		month,
		snap.preferences.HiddenBudgetCategories,
		calculator.DefaultLookbackMonths,
		s.opts.Location,
	)

	cats := catalog.New(snap.categories)
	resp := &SuggestBudgetResponse{Month: month.String(), Suggestions: []BudgetSuggestion{}}
	for _, id := range sortedIDs(suggested) {
		resp.Suggestions = append(resp.Suggestions, BudgetSuggestion{
			Category: categoryFromModel(cats.ByID(id)),
			Amount:   money(s.opts.Currency, suggested[id]),
		})
	}

	return connect.NewResponse(resp), nil
}
