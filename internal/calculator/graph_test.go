package calculator

import (
	"testing"

	"github.com/mmynk/splitty/internal/models"
)

func TestBuildSettlementGraph(t *testing.T) {
	friends := []models.Friend{
		{ID: "a", Name: "Ana", Balance: dec("10")},
		{ID: "b", Name: "Ben", Balance: dec("-40")},
		{ID: "c", Name: "Cy", Balance: dec("80")},
		{ID: "d", Name: "Di", Balance: dec("0")},
		{ID: "e", Name: "Ed", Balance: dec("-5"), LinkedUserID: "user-e"},
		{ID: "f", Name: "Flo", Balance: dec("10")},
	}

	tests := []struct {
		name      string
		group     *models.Group
		wantOwed  []string
		wantOwes  []string
		wantEmpty bool
	}{
		{
			name:     "all friends",
			wantOwed: []string{"c", "a", "f"},
			wantOwes: []string{"b", "e"},
		},
		{
			name:     "group filter by id and linked user",
			group:    &models.Group{ID: "g1", Members: []string{"a", "user-e"}},
			wantOwed: []string{"a"},
			wantOwes: []string{"e"},
		},
		{
			name:      "group with no debts",
			group:     &models.Group{ID: "g2", Members: []string{"d"}},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildSettlementGraph(friends, tt.group)

			if g.IsEmpty() != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", g.IsEmpty(), tt.wantEmpty)
			}
			checkNodes(t, "OwedToUser", g.OwedToUser, tt.wantOwed)
			checkNodes(t, "UserOwes", g.UserOwes, tt.wantOwes)
		})
	}
}

func checkNodes(t *testing.T, side string, nodes []GraphNode, want []string) {
	t.Helper()
	if len(nodes) != len(want) {
		t.Fatalf("%s has %d nodes, want %d", side, len(nodes), len(want))
	}
	for i, id := range want {
		if nodes[i].Friend.ID != id {
			t.Errorf("%s[%d] = %s, want %s", side, i, nodes[i].Friend.ID, id)
		}
		if nodes[i].Amount.IsNegative() {
			t.Errorf("%s[%d].Amount = %s, want magnitude", side, i, nodes[i].Amount)
		}
	}
}

func TestSettlementGraphWeights(t *testing.T) {
	friends := []models.Friend{
		{ID: "big", Balance: dec("100")},
		{ID: "half", Balance: dec("-50")},
		{ID: "tiny", Balance: dec("1")},
	}

	g := BuildSettlementGraph(friends, nil)

	if w := g.OwedToUser[0].Weight; w != 8 {
		t.Errorf("big weight = %v, want 8", w)
	}
	if w := g.UserOwes[0].Weight; w != 4 {
		t.Errorf("half weight = %v, want 4", w)
	}
	if w := g.OwedToUser[1].Weight; w != 2 {
		t.Errorf("tiny weight = %v, want 2", w)
	}

	// Balances below 1 still scale against 1.
	small := BuildSettlementGraph([]models.Friend{{ID: "x", Balance: dec("0.5")}}, nil)
	if w := small.OwedToUser[0].Weight; w != 4 {
		t.Errorf("small weight = %v, want 4", w)
	}
}
