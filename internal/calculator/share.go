// Package calculator holds the financial core: personal shares, monthly
// spend, budget rollover, category ranking and friend balances.
//
// Every function here is a pure transform over already-loaded records. None
// of them block, keep state, or mutate their inputs, so callers may run them
// concurrently and memoize results by input.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// MyShare computes the user's portion of an expense.
//
// For an unequal split it is the "self" entry of the split details, or zero
// when there is none. Otherwise the amount is divided by the number of
// participants plus one: the divisor always counts the payer's slot, so this
// is "my part of a bill split N ways", not "what I paid out of pocket".
//
// Settlements are not spend; callers filter them out before aggregating.
func MyShare(e models.Expense) decimal.Decimal {
	return ShareOf(e, models.SelfID)
}

// ShareOf computes the portion of e attributable to participant id.
// The result is never negative.
func ShareOf(e models.Expense, id string) decimal.Decimal {
	var share decimal.Decimal
	switch s := e.Split.(type) {
	case models.UnequalSplit:
		v, ok := s.Share(id)
		if !ok {
			return decimal.Zero
		}
		share = v
	default:
		sharers := int64(len(e.Participants())) + 1
		share = e.Amount.Div(decimal.NewFromInt(sharers))
	}

	if share.IsNegative() {
		return decimal.Zero
	}
	return share
}

// userParticipates reports whether the user is one of the sharers of an
// expense somebody else paid for.
func userParticipates(e models.Expense) bool {
	if e.HasParticipant(models.SelfID) {
		return true
	}
	if s, ok := e.Split.(models.UnequalSplit); ok {
		_, has := s.Share(models.SelfID)
		return has
	}
	return false
}
