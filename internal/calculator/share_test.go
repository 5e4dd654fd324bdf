package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestMyShare(t *testing.T) {
	tests := []struct {
		name    string
		expense models.Expense
		want    string
	}{
		{
			name: "equal split with one friend",
			expense: models.Expense{
				Amount: dec("30"),
				Split:  models.EqualSplit{With: []string{"f1"}},
			},
			want: "15",
		},
		{
			name: "equal split counts payer slot",
			expense: models.Expense{
				Amount:  dec("90"),
				PayerID: "f1",
				Split:   models.EqualSplit{With: []string{models.SelfID, "f2"}},
			},
			want: "30",
		},
		{
			name:    "no split means whole amount",
			expense: models.Expense{Amount: dec("42.50")},
			want:    "42.5",
		},
		{
			name: "empty participants means whole amount",
			expense: models.Expense{
				Amount: dec("12"),
				Split:  models.EqualSplit{},
			},
			want: "12",
		},
		{
			name: "unequal split uses self entry",
			expense: models.Expense{
				Amount: dec("100"),
				Split: models.UnequalSplit{
					With:    []string{"f1"},
					Details: map[string]decimal.Decimal{models.SelfID: dec("70"), "f1": dec("30")},
				},
			},
			want: "70",
		},
		{
			name: "unequal split without self entry is zero",
			expense: models.Expense{
				Amount: dec("100"),
				Split: models.UnequalSplit{
					With:    []string{"f1"},
					Details: map[string]decimal.Decimal{"f1": dec("100")},
				},
			},
			want: "0",
		},
		{
			name: "unequal split with nil details is zero",
			expense: models.Expense{
				Amount: dec("100"),
				Split:  models.UnequalSplit{With: []string{"f1"}},
			},
			want: "0",
		},
		{
			name: "negative detail clamps to zero",
			expense: models.Expense{
				Amount: dec("10"),
				Split: models.UnequalSplit{
					Details: map[string]decimal.Decimal{models.SelfID: dec("-5")},
				},
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MyShare(tt.expense)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("MyShare() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMyShareEqualSplitRecomposes(t *testing.T) {
	amounts := []string{"10", "33.33", "100", "0.01", "1234.56", "7"}
	for _, amount := range amounts {
		for n := 0; n <= 6; n++ {
			with := make([]string, n)
			for i := range with {
				with[i] = string(rune('a' + i))
			}
			e := models.Expense{Amount: dec(amount), Split: models.EqualSplit{With: with}}

			share := MyShare(e).InexactFloat64()
			got := share * float64(n+1)
			want := dec(amount).InexactFloat64()
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("amount %s split %d ways: share*%d = %v, want %v", amount, n+1, n+1, got, want)
			}
		}
	}
}

func TestShareOf(t *testing.T) {
	e := models.Expense{
		Amount:  dec("60"),
		PayerID: models.SelfID,
		Split:   models.EqualSplit{With: []string{"f1", "f2"}},
	}
	if got := ShareOf(e, "f1"); !got.Equal(dec("20")) {
		t.Errorf("ShareOf(f1) = %s, want 20", got)
	}

	u := models.Expense{
		Amount: dec("60"),
		Split: models.UnequalSplit{
			With:    []string{"f1", "f2"},
			Details: map[string]decimal.Decimal{"f1": dec("45"), "f2": dec("15")},
		},
	}
	if got := ShareOf(u, "f1"); !got.Equal(dec("45")) {
		t.Errorf("ShareOf(f1) = %s, want 45", got)
	}
	if got := ShareOf(u, "f3"); !got.IsZero() {
		t.Errorf("ShareOf(f3) = %s, want 0", got)
	}
}
