package service

import (
	"context"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/activity"
	"github.com/mmynk/splitty/internal/calculator"
	"github.com/mmynk/splitty/internal/catalog"
	"github.com/mmynk/splitty/internal/events"
	"github.com/mmynk/splitty/internal/models"
	"github.com/mmynk/splitty/internal/storage"
)

// LedgerService records expenses and settlements and reports balances.
//
// Stored friend balances are a cache of the expense history. Every write
// stores the expense change and its balance deltas in one transaction, so
// concurrent requests never overwrite each other's balances.
type LedgerService struct {
	store storage.Store
	opts  Options
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts Options) *LedgerService {
	return &LedgerService{store: store, opts: opts.withDefaults()}
}

// CreateExpense validates and records an expense, then updates the
// balances of the friends it involves.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	e, err := expenseToModel(req.Msg.Expense)
	if err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}
	e.ID, e.CreatedAt = "", 0

	slog.Info("CreateExpense request received",
		"owner_id", ownerID,
		"amount", e.Amount.String(),
		"payer_id", e.PayerID,
		"participants_count", len(e.Participants()),
	)

	if e.IsSettlement {
		return nil, toConnectError(ctx, "CreateExpense", &models.ValidationError{Field: "is_settlement", Message: "use SettleUp to record settlements"})
	}
	if e.Date.IsZero() {
		e.Date = s.opts.now()
	}
	if e.Category == "" {
		e.Category = models.GeneralCategoryID
	}
	if err := e.Validate(); err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}

	snap, err := loadSnapshot(ctx, s.store, ownerID, partFriends|partGroups|partCategories)
	if err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}
	if err := checkReferences(e, snap); err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}

	balances, err := s.store.CreateExpense(ctx, ownerID, &e, calculator.BalanceDeltas(e))
	if err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}
	s.publish(ctx, events.NewMessage(events.ExpenseRecorded, ownerID, e.ID, balances))
	s.opts.Metrics.ExpenseRecorded(false)

	slog.Info("Expense created", "owner_id", ownerID, "expense_id", e.ID)

	return connect.NewResponse(&CreateExpenseResponse{Expense: expenseFromModel(e)}), nil
}

// checkReferences makes sure every friend, the group and the category the
// expense names exist.
func checkReferences(e models.Expense, snap *snapshot) error {
	parties := append([]string{e.PayerID}, e.Participants()...)
	for _, id := range parties {
		if id == models.SelfID {
			continue
		}
		if models.FindFriend(snap.friends, id) == nil {
			return &models.NotFoundError{Kind: "friend", ID: id}
		}
	}

	if e.GroupID != "" {
		found := false
		for _, g := range snap.groups {
			if g.ID == e.GroupID {
				found = true
				break
			}
		}
		if !found {
			return &models.NotFoundError{Kind: "group", ID: e.GroupID}
		}
	}

	_, err := catalog.New(snap.categories).Lookup(e.Category)
	return err
}

// DeleteExpense removes an expense and reverses its effect on balances.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("DeleteExpense request received", "owner_id", ownerID, "expense_id", req.Msg.ExpenseID)

	e, err := s.store.GetExpense(ctx, ownerID, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}
	balances, err := s.store.DeleteExpense(ctx, ownerID, e.ID, calculator.ReversalDeltas(*e))
	if err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}

	s.publish(ctx, events.NewMessage(events.ExpenseDeleted, ownerID, req.Msg.ExpenseID, balances))

	slog.Info("Expense deleted", "owner_id", ownerID, "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// GetBalances returns every friend with their balance and the totals on
// each side.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "GetBalances", err)
	}

	f := s.opts.Currency
	owed, owe := decimal.Zero, decimal.Zero
	resp := &GetBalancesResponse{Friends: make([]Friend, 0, len(friends))}
	for _, friend := range friends {
		resp.Friends = append(resp.Friends, friendFromModel(f, friend))
		if friend.Balance.IsPositive() {
			owed = owed.Add(friend.Balance)
		} else {
			owe = owe.Add(friend.Balance.Neg())
		}
	}
	resp.OwedToYou = money(f, owed)
	resp.YouOwe = money(f, owe)

	return connect.NewResponse(resp), nil
}

// GetSettlementGraph returns the two-layer debt graph, optionally narrowed
// to one group.
func (s *LedgerService) GetSettlementGraph(ctx context.Context, req *connect.Request[GetSettlementGraphRequest]) (*connect.Response[GetSettlementGraphResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetSettlementGraph request received", "owner_id", ownerID, "group_id", req.Msg.GroupID)

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	snap, err := loadSnapshot(loadCtx, s.store, ownerID, partFriends|partGroups)
	if err != nil {
		return nil, toConnectError(ctx, "GetSettlementGraph", err)
	}

	var group *models.Group
	if req.Msg.GroupID != "" {
		for i := range snap.groups {
			if snap.groups[i].ID == req.Msg.GroupID {
				group = &snap.groups[i]
				break
			}
		}
		if group == nil {
			slog.Warn("Unknown group, showing all friends", "owner_id", ownerID, "group_id", req.Msg.GroupID)
		}
	}

	graph := calculator.BuildSettlementGraph(snap.friends, group)
	return connect.NewResponse(&GetSettlementGraphResponse{
		OwedToUser: graphNodes(s.opts.Currency, graph.OwedToUser),
		UserOwes:   graphNodes(s.opts.Currency, graph.UserOwes),
	}), nil
}

// ListSettleable returns the friends with an open balance and the default
// settlement for each.
func (s *LedgerService) ListSettleable(ctx context.Context, req *connect.Request[ListSettleableRequest]) (*connect.Response[ListSettleableResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "ListSettleable", err)
	}

	f := s.opts.Currency
	resp := &ListSettleableResponse{Friends: []Settleable{}}
	for _, friend := range calculator.SettleableFriends(friends) {
		p := calculator.ProposeSettlement(friend)
		resp.Friends = append(resp.Friends, Settleable{
			Friend:     friendFromModel(f, friend),
			PayerID:    p.PayerID,
			ReceiverID: p.ReceiverID,
			Amount:     money(f, p.Amount),
		})
	}

	return connect.NewResponse(resp), nil
}

// SettleUp records a transfer between the user and a friend.
func (s *LedgerService) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("SettleUp request received",
		"owner_id", ownerID,
		"payer_id", req.Msg.PayerID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", req.Msg.Amount,
	)

	amount, err := calculator.ParseAmount(req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, "SettleUp", err)
	}
	settlement, err := calculator.SettleUp(req.Msg.PayerID, req.Msg.ReceiverID, amount, s.opts.now())
	if err != nil {
		return nil, toConnectError(ctx, "SettleUp", err)
	}

	friendID := settlement.PayerID
	if friendID == models.SelfID {
		friendID = settlement.ReceiverID()
	}
	friends, err := s.store.ListFriends(ctx, ownerID)
	if err != nil {
		return nil, toConnectError(ctx, "SettleUp", err)
	}
	friend := models.FindFriend(friends, friendID)
	if friend == nil {
		return nil, toConnectError(ctx, "SettleUp", &models.NotFoundError{Kind: "friend", ID: friendID})
	}

	balances, err := s.store.CreateExpense(ctx, ownerID, &settlement, calculator.BalanceDeltas(settlement))
	if err != nil {
		return nil, toConnectError(ctx, "SettleUp", err)
	}
	if b, ok := balances[friendID]; ok {
		friend.Balance = b
	}

	s.publish(ctx, events.NewMessage(events.SettlementRecorded, ownerID, settlement.ID, balances))
	s.opts.Metrics.ExpenseRecorded(true)

	slog.Info("Settlement recorded",
		"owner_id", ownerID,
		"expense_id", settlement.ID,
		"friend_id", friendID,
		"balance", friend.Balance.String(),
	)

	return connect.NewResponse(&SettleUpResponse{
		Settlement: expenseFromModel(settlement),
		Friend:     friendFromModel(s.opts.Currency, *friend),
	}), nil
}

// ListActivity returns the filtered expense history, newest first, and the
// tags available for filtering.
func (s *LedgerService) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := s.opts.loadContext(ctx)
	defer cancel()
	snap, err := loadSnapshot(loadCtx, s.store, ownerID, partExpenses|partFriends|partGroups)
	if err != nil {
		return nil, toConnectError(ctx, "ListActivity", err)
	}

	dir := activity.Directory{Friends: snap.friends, Groups: snap.groups}
	entries := activity.Feed(snap.expenses, dir, activity.Query{Text: req.Msg.Query, Tag: req.Msg.Tag})

	f := s.opts.Currency
	resp := &ListActivityResponse{
		Entries: make([]ActivityEntry, 0, len(entries)),
		Tags:    activity.UniqueTags(snap.expenses),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, ActivityEntry{
			Expense:   expenseFromModel(entry.Expense),
			PayerName: entry.PayerName,
			GroupName: entry.GroupName,
			MyShare:   money(f, entry.MyShare),
		})
	}

	return connect.NewResponse(resp), nil
}

// publish sends msg and only logs failures: the ledger write has already
// succeeded and reconciliation does not depend on events.
func (s *LedgerService) publish(ctx context.Context, msg *events.Message) {
	if err := s.opts.Publisher.Publish(ctx, msg); err != nil {
		s.opts.Metrics.PublishFailed()
		slog.ErrorContext(ctx, "Failed to publish event", "kind", msg.Kind, "owner_id", msg.OwnerID, "error", err)
	}
}

func sortedIDs(m map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
