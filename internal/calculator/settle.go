package calculator

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

// ParseAmount reads a user-entered amount such as "1,250.50". Thousands
// separators are dropped. Non-numeric and non-positive input is rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return decimal.Zero, &models.ValidationError{Field: "amount", Message: "amount is required"}
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &models.ValidationError{Field: "amount", Message: "not a number"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &models.ValidationError{Field: "amount", Message: "must be greater than 0"}
	}
	return amount, nil
}

// SettleUp builds the settlement record for a transfer of amount from
// payerID to receiverID. One side must be the user. The returned expense has
// no ID; the store assigns one.
func SettleUp(payerID, receiverID string, amount decimal.Decimal, at time.Time) (models.Expense, error) {
	if !amount.IsPositive() {
		return models.Expense{}, &models.ValidationError{Field: "amount", Message: "must be greater than 0"}
	}
	if payerID == "" || receiverID == "" {
		return models.Expense{}, &models.ValidationError{Field: "party", Message: "payer and receiver are required"}
	}
	if payerID == receiverID {
		return models.Expense{}, &models.ValidationError{Field: "party", Message: "payer and receiver must differ"}
	}
	if payerID != models.SelfID && receiverID != models.SelfID {
		return models.Expense{}, &models.ValidationError{Field: "party", Message: "one side of a settlement must be you"}
	}

	return models.Expense{
		Description:  "Settlement",
		Amount:       amount,
		Date:         at,
		Category:     models.GeneralCategoryID,
		PayerID:      payerID,
		Split:        models.EqualSplit{With: []string{receiverID}},
		IsSettlement: true,
	}, nil
}

// SettleableFriends returns the friends with an outstanding balance.
func SettleableFriends(friends []models.Friend) []models.Friend {
	var out []models.Friend
	for _, f := range friends {
		if f.Balance.Abs().GreaterThan(BalanceTolerance) {
			out = append(out, f)
		}
	}
	return out
}

// Proposal is the default settlement offered for a friend.
type Proposal struct {
	PayerID    string
	ReceiverID string
	Amount     decimal.Decimal
}

// ProposeSettlement suggests clearing the friend's whole balance: the user
// pays when they owe, the friend pays otherwise.
func ProposeSettlement(f models.Friend) Proposal {
	p := Proposal{
		PayerID:    f.ID,
		ReceiverID: models.SelfID,
		Amount:     f.Balance.Abs().Round(2),
	}
	if f.Balance.IsNegative() {
		p.PayerID, p.ReceiverID = models.SelfID, f.ID
	}
	return p
}
