package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// BalanceTolerance is the smallest balance difference treated as real.
// Anything at or below it counts as settled.
var BalanceTolerance = decimal.New(1, -2)

// ApplyExpense folds one expense into balances, keyed by friend ID.
// Positive means the friend owes the user.
//
// Algorithm:
//   - User paid: each friend in the split owes the user their share
//   - Friend paid and the user is a sharer: the user owes that friend MyShare
//   - Settlement from the user to friend R: balances[R] += amount
//   - Settlement from friend P to the user: balances[P] -= amount
//
// Settlements between two friends do not touch the user's balances.
func ApplyExpense(balances map[string]decimal.Decimal, e models.Expense) {
	if e.IsSettlement {
		applySettlement(balances, e)
		return
	}

	if e.PayerID == models.SelfID {
		for _, friendID := range e.Participants() {
			if friendID == models.SelfID || friendID == "" {
				continue
			}
			share := ShareOf(e, friendID)
			if share.IsZero() {
				continue
			}
			balances[friendID] = balances[friendID].Add(share)
		}
		return
	}

	if e.PayerID == "" || !userParticipates(e) {
		return
	}
	share := MyShare(e)
	if share.IsZero() {
		return
	}
	balances[e.PayerID] = balances[e.PayerID].Sub(share)
}

func applySettlement(balances map[string]decimal.Decimal, e models.Expense) {
	receiver := e.ReceiverID()
	switch {
	case e.PayerID == models.SelfID && receiver != "" && receiver != models.SelfID:
		balances[receiver] = balances[receiver].Add(e.Amount)
	case receiver == models.SelfID && e.PayerID != "" && e.PayerID != models.SelfID:
		balances[e.PayerID] = balances[e.PayerID].Sub(e.Amount)
	}
}

// BalanceDeltas returns the change e makes to each friend's balance.
// Friends whose balance does not change are absent.
func BalanceDeltas(e models.Expense) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	ApplyExpense(deltas, e)
	return deltas
}

// ReversalDeltas undoes BalanceDeltas(e), for removing e from the history.
func ReversalDeltas(e models.Expense) map[string]decimal.Decimal {
	deltas := BalanceDeltas(e)
	for id, d := range deltas {
		deltas[id] = d.Neg()
	}
	return deltas
}

// ComputeBalances derives every friend's balance from the full expense
// history. This is the canonical definition; stored balances are a cache.
func ComputeBalances(expenses []models.Expense) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		ApplyExpense(balances, e)
	}
	return balances
}

// BalanceDrift describes a friend whose cached balance disagrees with the
// expense history.
type BalanceDrift struct {
	FriendID string
	Cached   decimal.Decimal
	Computed decimal.Decimal
}

// Delta is Computed - Cached.
func (d BalanceDrift) Delta() decimal.Decimal {
	return d.Computed.Sub(d.Cached)
}

// Reconcile recomputes balances from expenses and reports, in friend order,
// every friend whose cached balance is off by more than BalanceTolerance.
func Reconcile(friends []models.Friend, expenses []models.Expense) []BalanceDrift {
	computed := ComputeBalances(expenses)

	var drifts []BalanceDrift
	for _, f := range friends {
		want := computed[f.ID]
		if f.Balance.Sub(want).Abs().GreaterThan(BalanceTolerance) {
			drifts = append(drifts, BalanceDrift{
				FriendID: f.ID,
				Cached:   f.Balance,
				Computed: want,
			})
		}
	}
	return drifts
}
