// Package activity builds the searchable expense history.
package activity

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitty/internal/calculator"
	"github.com/mmynk/splitty/internal/models"
)

// Query narrows the feed. Zero values match everything.
type Query struct {
	// Text is matched case-insensitively against description, amount, payer
	// name and tags.
	Text string

	// Tag keeps only expenses carrying this exact tag.
	Tag string
}

// Entry is one expense as shown in the feed.
type Entry struct {
	Expense   models.Expense
	PayerName string
	GroupName string
	MyShare   decimal.Decimal
}

// Directory resolves names for payers and groups.
type Directory struct {
	Friends []models.Friend
	Groups  []models.Group
}

// PayerName returns "You" for the user, the friend's name, or "Unknown".
func (d Directory) PayerName(id string) string {
	if id == models.SelfID {
		return "You"
	}
	if f := models.FindFriend(d.Friends, id); f != nil && f.Name != "" {
		return f.Name
	}
	return "Unknown"
}

// GroupName returns the name of the group or "" when it is unknown.
func (d Directory) GroupName(id string) string {
	if id == "" {
		return ""
	}
	for _, g := range d.Groups {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

// Feed filters expenses by q and returns them newest first.
func Feed(expenses []models.Expense, dir Directory, q Query) []Entry {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	var out []Entry
	for _, e := range expenses {
		if text != "" && !matches(e, dir, text) {
			continue
		}
		if q.Tag != "" && !hasTag(e, q.Tag) {
			continue
		}
		out = append(out, Entry{
			Expense:   e,
			PayerName: dir.PayerName(e.PayerID),
			GroupName: dir.GroupName(e.GroupID),
			MyShare:   calculator.MyShare(e),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Expense.Date.After(out[j].Expense.Date)
	})
	return out
}

func matches(e models.Expense, dir Directory, text string) bool {
	if strings.Contains(strings.ToLower(e.Description), text) {
		return true
	}
	if strings.Contains(e.Amount.String(), text) {
		return true
	}

	// Unknown payers do not match on the "Unknown" placeholder.
	payer := ""
	if e.PayerID == models.SelfID {
		payer = "you"
	} else if f := models.FindFriend(dir.Friends, e.PayerID); f != nil {
		payer = strings.ToLower(f.Name)
	}
	if payer != "" && strings.Contains(payer, text) {
		return true
	}

	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), text) {
			return true
		}
	}
	return false
}

func hasTag(e models.Expense, tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// UniqueTags returns every tag used across expenses, sorted.
func UniqueTags(expenses []models.Expense) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range expenses {
		for _, t := range e.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}
