package models

import "github.com/shopspring/decimal"

// Group represents a named set of people the user shares expenses with.
// In the debt graph a group narrows the friends shown to its members.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Members lists friend IDs or linked user IDs.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id is listed in Members. An empty id never matches.
func (g Group) HasMember(id string) bool {
	if id == "" {
		return false
	}
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Friend is a counterparty of the user.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format).
	ID string

	// Name is the display name.
	Name string

	// Balance is the signed running total with this friend: positive means
	// the friend owes the user, negative means the user owes the friend.
	// It is a cache of what the expense history implies.
	Balance decimal.Decimal

	// LinkedUserID is the friend's own account ID, when they have one.
	LinkedUserID string
}

// FindFriend returns the friend with the given id, or nil.
func FindFriend(friends []Friend, id string) *Friend {
	for i := range friends {
		if friends[i].ID == id {
			return &friends[i]
		}
	}
	return nil
}
