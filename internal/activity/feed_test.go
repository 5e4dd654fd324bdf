package activity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

func testData() ([]models.Expense, Directory) {
	at := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }

	expenses := []models.Expense{
		{ID: "lunch", Description: "Team lunch", Amount: decimal.RequireFromString("42.50"), Date: at(3), PayerID: models.SelfID, Tags: []string{"work"}, GroupID: "g1"},
		{ID: "taxi", Description: "Taxi home", Amount: decimal.RequireFromString("18"), Date: at(10), PayerID: "f1", Tags: []string{"travel", "night"}},
		{ID: "gift", Description: "Birthday", Amount: decimal.RequireFromString("60"), Date: at(7), PayerID: "gone"},
		{ID: "hotel", Description: "Hotel", Amount: decimal.RequireFromString("300"), Date: at(1), PayerID: "f2", Tags: []string{"Travel"}},
	}
	dir := Directory{
		Friends: []models.Friend{{ID: "f1", Name: "Priya"}, {ID: "f2", Name: "Sam"}},
		Groups:  []models.Group{{ID: "g1", Name: "Office"}},
	}
	return expenses, dir
}

func TestFeed(t *testing.T) {
	expenses, dir := testData()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "no filter newest first", want: []string{"taxi", "gift", "lunch", "hotel"}},
		{name: "description", query: Query{Text: "LUNCH"}, want: []string{"lunch"}},
		{name: "amount", query: Query{Text: "42.5"}, want: []string{"lunch"}},
		{name: "payer is you", query: Query{Text: "you"}, want: []string{"lunch"}},
		{name: "payer friend name", query: Query{Text: "pri"}, want: []string{"taxi"}},
		{name: "tag substring any case", query: Query{Text: "travel"}, want: []string{"taxi", "hotel"}},
		{name: "exact tag filter", query: Query{Tag: "travel"}, want: []string{"taxi"}},
		{name: "text and tag", query: Query{Text: "hotel", Tag: "travel"}, want: nil},
		{name: "unknown payer placeholder", query: Query{Text: "unknown"}, want: nil},
		{name: "whitespace query ignored", query: Query{Text: "   "}, want: []string{"taxi", "gift", "lunch", "hotel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Feed(expenses, dir, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Feed() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].Expense.ID != id {
					t.Errorf("entry[%d] = %s, want %s", i, got[i].Expense.ID, id)
				}
			}
		})
	}
}

func TestFeedNames(t *testing.T) {
	expenses, dir := testData()
	got := Feed(expenses, dir, Query{})

	names := map[string]string{}
	groups := map[string]string{}
	for _, e := range got {
		names[e.Expense.ID] = e.PayerName
		groups[e.Expense.ID] = e.GroupName
	}

	if names["lunch"] != "You" || names["taxi"] != "Priya" || names["gift"] != "Unknown" {
		t.Errorf("payer names = %v", names)
	}
	if groups["lunch"] != "Office" || groups["taxi"] != "" {
		t.Errorf("group names = %v", groups)
	}
}

func TestUniqueTags(t *testing.T) {
	expenses, _ := testData()
	got := UniqueTags(expenses)

	want := []string{"Travel", "night", "travel", "work"}
	if len(got) != len(want) {
		t.Fatalf("UniqueTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("UniqueTags()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
