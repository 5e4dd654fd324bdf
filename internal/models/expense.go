package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelfID identifies the user who owns the ledger in payer and participant fields.
const SelfID = "self"

// SplitKind names the split policy of an expense.
type SplitKind string

const (
	SplitEqual   SplitKind = "equal"
	SplitUnequal SplitKind = "unequal"
)

// Split is the split policy of an expense. It is implemented only by
// EqualSplit and UnequalSplit.
type Split interface {
	// Kind reports which policy this is.
	Kind() SplitKind

	// Participants returns the sharers other than the payer.
	Participants() []string

	isSplit()
}

// EqualSplit divides the amount evenly between the payer and everyone in With.
type EqualSplit struct {
	// With lists the participants, excluding the payer.
	With []string
}

func (EqualSplit) Kind() SplitKind          { return SplitEqual }
func (s EqualSplit) Participants() []string { return s.With }
func (EqualSplit) isSplit()                 {}

// UnequalSplit assigns an explicit amount to each participant.
type UnequalSplit struct {
	// With lists the participants, excluding the payer.
	With []string

	// Details maps a participant ID (including SelfID) to that participant's share.
	Details map[string]decimal.Decimal
}

func (UnequalSplit) Kind() SplitKind          { return SplitUnequal }
func (s UnequalSplit) Participants() []string { return s.With }
func (UnequalSplit) isSplit()                 {}

// Share returns the amount assigned to id and whether an entry exists.
func (s UnequalSplit) Share(id string) (decimal.Decimal, bool) {
	v, ok := s.Details[id]
	return v, ok
}

// Expense is a shared purchase or, when IsSettlement is set, a transfer that
// pays down a debt. Expenses are read-only to the calculator.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the free-form title entered by the user.
	Description string

	// Amount is the full amount paid, always positive.
	Amount decimal.Decimal

	// Date is when the expense happened.
	Date time.Time

	// Category is the category ID the expense is booked under.
	Category string

	// PayerID is SelfID or a friend ID.
	PayerID string

	// Split is the split policy. A nil Split behaves like an EqualSplit with
	// no participants.
	Split Split

	// IsSettlement marks a debt-settling transfer. For settlements the single
	// participant is the receiver.
	IsSettlement bool

	// Tags are free-form labels.
	Tags []string

	// GroupID is the optional group this expense belongs to.
	GroupID string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Participants returns the sharers excluding the payer, or nil when no split is set.
func (e Expense) Participants() []string {
	if e.Split == nil {
		return nil
	}
	return e.Split.Participants()
}

// SplitKind reports the split policy, defaulting to SplitEqual.
func (e Expense) SplitKind() SplitKind {
	if e.Split == nil {
		return SplitEqual
	}
	return e.Split.Kind()
}

// ReceiverID returns who received a settlement. It is empty for regular
// expenses and for settlements without a participant.
func (e Expense) ReceiverID() string {
	if !e.IsSettlement {
		return ""
	}
	p := e.Participants()
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// HasParticipant reports whether id is one of the non-payer sharers.
func (e Expense) HasParticipant(id string) bool {
	for _, p := range e.Participants() {
		if p == id {
			return true
		}
	}
	return false
}

// Validate checks an expense entered by the user. Settlements are built by
// the calculator and checked there.
func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be greater than 0"}
	}
	if e.PayerID == "" {
		return &ValidationError{Field: "payer", Message: "payer is required"}
	}

	seen := make(map[string]bool)
	for _, p := range e.Participants() {
		if p == "" {
			return &ValidationError{Field: "split", Message: "empty participant"}
		}
		if p == e.PayerID {
			return &ValidationError{Field: "split", Message: "payer cannot also be a participant"}
		}
		if seen[p] {
			return &ValidationError{Field: "split", Message: "duplicate participant " + p}
		}
		seen[p] = true
	}

	s, ok := e.Split.(UnequalSplit)
	if !ok {
		return nil
	}
	total := decimal.Zero
	for id, share := range s.Details {
		if share.IsNegative() {
			return &ValidationError{Field: "split", Message: "negative share for " + id}
		}
		if id != e.PayerID && !seen[id] {
			return &ValidationError{Field: "split", Message: "share for non-participant " + id}
		}
		total = total.Add(share)
	}
	if total.Sub(e.Amount).Abs().GreaterThan(splitTolerance) {
		return &ValidationError{Field: "split", Message: "shares must add up to the amount"}
	}
	return nil
}

var splitTolerance = decimal.New(1, -2)
