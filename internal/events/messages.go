// Package events publishes ledger changes to a message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a ledger event. It doubles as the routing key.
type Kind string

const (
	ExpenseRecorded    Kind = "expense.recorded"
	ExpenseDeleted     Kind = "expense.deleted"
	SettlementRecorded Kind = "settlement.recorded"
	BalancesReconciled Kind = "balances.reconciled"
)

// Message is the body of every published event. Consumers fetch full
// records from the store; the message carries only identifiers and the
// balances that changed.
type Message struct {
	Kind      Kind                       `json:"kind"`
	OwnerID   string                     `json:"owner_id"`
	ExpenseID string                     `json:"expense_id,omitempty"`
	Balances  map[string]decimal.Decimal `json:"balances,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(kind Kind, ownerID, expenseID string, balances map[string]decimal.Decimal) *Message {
	return &Message{
		Kind:      kind,
		OwnerID:   ownerID,
		ExpenseID: expenseID,
		Balances:  balances,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
