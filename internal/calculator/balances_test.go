package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name     string
		expenses []models.Expense
		want     map[string]string
	}{
		{
			name: "user paid equal split",
			expenses: []models.Expense{
				{Amount: dec("90"), PayerID: models.SelfID, Split: models.EqualSplit{With: []string{"f1", "f2"}}},
			},
			want: map[string]string{"f1": "30", "f2": "30"},
		},
		{
			name: "user paid unequal split",
			expenses: []models.Expense{
				{Amount: dec("100"), PayerID: models.SelfID, Split: models.UnequalSplit{
					With:    []string{"f1", "f2"},
					Details: map[string]decimal.Decimal{models.SelfID: dec("20"), "f1": dec("50"), "f2": dec("30")},
				}},
			},
			want: map[string]string{"f1": "50", "f2": "30"},
		},
		{
			name: "friend paid and user shares",
			expenses: []models.Expense{
				{Amount: dec("60"), PayerID: "f1", Split: models.EqualSplit{With: []string{models.SelfID, "f2"}}},
			},
			want: map[string]string{"f1": "-20"},
		},
		{
			name: "friend paid without the user",
			expenses: []models.Expense{
				{Amount: dec("60"), PayerID: "f1", Split: models.EqualSplit{With: []string{"f2"}}},
			},
			want: map[string]string{},
		},
		{
			name: "friend paid unequal with self entry",
			expenses: []models.Expense{
				{Amount: dec("60"), PayerID: "f1", Split: models.UnequalSplit{
					With:    []string{"f2"},
					Details: map[string]decimal.Decimal{models.SelfID: dec("45"), "f2": dec("15")},
				}},
			},
			want: map[string]string{"f1": "-45"},
		},
		{
			name: "settlements move balances back",
			expenses: []models.Expense{
				{Amount: dec("40"), PayerID: models.SelfID, Split: models.EqualSplit{With: []string{"f1"}}},
				{Amount: dec("20"), PayerID: "f1", IsSettlement: true, Split: models.EqualSplit{With: []string{models.SelfID}}},
				{Amount: dec("30"), PayerID: "f2", Split: models.EqualSplit{With: []string{models.SelfID}}},
				{Amount: dec("15"), PayerID: models.SelfID, IsSettlement: true, Split: models.EqualSplit{With: []string{"f2"}}},
			},
			want: map[string]string{"f1": "0", "f2": "0"},
		},
		{
			name: "settlement between friends ignored",
			expenses: []models.Expense{
				{Amount: dec("25"), PayerID: "f1", IsSettlement: true, Split: models.EqualSplit{With: []string{"f2"}}},
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.expenses)

			if len(got) != len(tt.want) {
				t.Fatalf("ComputeBalances() = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if !got[id].Equal(dec(want)) {
					t.Errorf("balance[%s] = %s, want %s", id, got[id], want)
				}
			}
		})
	}
}

func TestSettleUpClearsDebt(t *testing.T) {
	// f1 paid 40 split with the user: the user owes 20.
	history := []models.Expense{
		{Amount: dec("40"), PayerID: "f1", Split: models.EqualSplit{With: []string{models.SelfID}}},
	}
	friend := models.Friend{ID: "f1", Balance: dec("-20")}

	settlement, err := SettleUp(models.SelfID, "f1", dec("20"), day(2024, 3, 1))
	if err != nil {
		t.Fatalf("SettleUp() error = %v", err)
	}

	balances := map[string]decimal.Decimal{friend.ID: friend.Balance}
	ApplyExpense(balances, settlement)
	if !balances["f1"].IsZero() {
		t.Errorf("incremental balance = %s, want 0", balances["f1"])
	}

	history = append(history, settlement)
	if got := ComputeBalances(history)["f1"]; !got.IsZero() {
		t.Errorf("recomputed balance = %s, want 0", got)
	}
}

func TestIncrementalMatchesRecompute(t *testing.T) {
	history := []models.Expense{
		{Amount: dec("100"), PayerID: models.SelfID, Split: models.EqualSplit{With: []string{"f1", "f2", "f3"}}},
		{Amount: dec("10"), PayerID: "f2", Split: models.EqualSplit{With: []string{models.SelfID}}},
		{Amount: dec("7.77"), PayerID: "f3", Split: models.UnequalSplit{
			With:    []string{models.SelfID},
			Details: map[string]decimal.Decimal{models.SelfID: dec("5"), "f3": dec("2.77")},
		}},
		{Amount: dec("25"), PayerID: "f1", IsSettlement: true, Split: models.EqualSplit{With: []string{models.SelfID}}},
		{Amount: dec("5"), PayerID: models.SelfID, IsSettlement: true, Split: models.EqualSplit{With: []string{"f3"}}},
	}

	running := make(map[string]decimal.Decimal)
	for _, e := range history {
		ApplyExpense(running, e)
	}

	var friends []models.Friend
	for _, id := range []string{"f1", "f2", "f3"} {
		friends = append(friends, models.Friend{ID: id, Balance: running[id]})
	}

	if drifts := Reconcile(friends, history); len(drifts) != 0 {
		t.Errorf("Reconcile() = %v, want no drift", drifts)
	}
}

func TestBalanceDeltas(t *testing.T) {
	history := []models.Expense{
		{Amount: dec("90"), PayerID: models.SelfID, Split: models.EqualSplit{With: []string{"f1", "f2"}}},
		{Amount: dec("12"), PayerID: "f1", Split: models.EqualSplit{With: []string{models.SelfID}}},
		{Amount: dec("8"), PayerID: "f2", IsSettlement: true, Split: models.EqualSplit{With: []string{models.SelfID}}},
		{Amount: dec("50"), PayerID: models.SelfID, Split: models.EqualSplit{}},
	}

	summed := make(map[string]decimal.Decimal)
	for _, e := range history {
		for id, d := range BalanceDeltas(e) {
			summed[id] = summed[id].Add(d)
		}
	}
	want := ComputeBalances(history)
	for _, id := range []string{"f1", "f2"} {
		if !summed[id].Equal(want[id]) {
			t.Errorf("summed deltas for %s = %s, want %s", id, summed[id], want[id])
		}
	}

	if d := BalanceDeltas(history[3]); len(d) != 0 {
		t.Errorf("BalanceDeltas(solo expense) = %v, want none", d)
	}

	// Removing the first expense leaves the balances of the rest.
	for id, d := range ReversalDeltas(history[0]) {
		summed[id] = summed[id].Add(d)
	}
	rest := ComputeBalances(history[1:])
	for _, id := range []string{"f1", "f2"} {
		if !summed[id].Equal(rest[id]) {
			t.Errorf("after reversal %s = %s, want %s", id, summed[id], rest[id])
		}
	}
}

func TestReconcile(t *testing.T) {
	history := []models.Expense{
		{Amount: dec("30"), PayerID: models.SelfID, Split: models.EqualSplit{With: []string{"f1", "f2"}}},
	}
	friends := []models.Friend{
		{ID: "f1", Balance: dec("10")},
		{ID: "f2", Balance: dec("10.005")},
		{ID: "f3", Balance: dec("4")},
		{ID: "f4", Balance: dec("0")},
	}

	drifts := Reconcile(friends, history)
	if len(drifts) != 1 {
		t.Fatalf("Reconcile() returned %d drifts, want 1: %v", len(drifts), drifts)
	}
	d := drifts[0]
	if d.FriendID != "f3" {
		t.Errorf("FriendID = %s, want f3", d.FriendID)
	}
	if !d.Computed.IsZero() || !d.Delta().Equal(dec("-4")) {
		t.Errorf("Computed = %s, Delta = %s, want 0 and -4", d.Computed, d.Delta())
	}
}
