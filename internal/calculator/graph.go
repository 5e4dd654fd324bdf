package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/models"
)

var (
	minEdgeWeight = decimal.NewFromInt(2)
	maxEdgeWeight = decimal.NewFromInt(8)
)

// GraphNode is one friend in the settlement graph.
type GraphNode struct {
	Friend models.Friend

	// Amount is the magnitude of the friend's balance.
	Amount decimal.Decimal

	// Weight scales the edge to the user, between 2 and 8.
	Weight float64
}

// SettlementGraph is the user's debts drawn as two layers around the user:
// friends who owe the user and friends the user owes.
type SettlementGraph struct {
	OwedToUser []GraphNode
	UserOwes   []GraphNode
}

// IsEmpty reports whether there is nothing to draw.
func (g SettlementGraph) IsEmpty() bool {
	return len(g.OwedToUser) == 0 && len(g.UserOwes) == 0
}

// BuildSettlementGraph partitions friends by the sign of their balance,
// each side sorted by descending magnitude. When group is non-nil only its
// members are kept, matched by friend ID or linked user ID. Friends with a
// zero balance are left out.
func BuildSettlementGraph(friends []models.Friend, group *models.Group) SettlementGraph {
	var members []models.Friend
	for _, f := range friends {
		if group != nil && !group.HasMember(f.ID) && !group.HasMember(f.LinkedUserID) {
			continue
		}
		members = append(members, f)
	}

	maxAbs := decimal.NewFromInt(1)
	for _, f := range members {
		maxAbs = decimal.Max(maxAbs, f.Balance.Abs())
	}

	var g SettlementGraph
	for _, f := range members {
		node := GraphNode{
			Friend: f,
			Amount: f.Balance.Abs(),
			Weight: edgeWeight(f.Balance, maxAbs),
		}
		switch f.Balance.Sign() {
		case 1:
			g.OwedToUser = append(g.OwedToUser, node)
		case -1:
			g.UserOwes = append(g.UserOwes, node)
		}
	}

	byAmount := func(nodes []GraphNode) {
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Amount.GreaterThan(nodes[j].Amount)
		})
	}
	byAmount(g.OwedToUser)
	byAmount(g.UserOwes)

	return g
}

func edgeWeight(balance, maxAbs decimal.Decimal) float64 {
	w := balance.Abs().Div(maxAbs).Mul(maxEdgeWeight)
	return decimal.Max(minEdgeWeight, w).InexactFloat64()
}
