package models

// GeneralCategoryID is the reserved default category. It cannot be deleted.
const GeneralCategoryID = "general"

// Category is a spending bucket.
type Category struct {
	ID    string
	Label string
	Color string
	Icon  string
}

// GeneralCategory is used whenever a category reference cannot be resolved.
var GeneralCategory = Category{
	ID:    GeneralCategoryID,
	Label: "General",
	Color: "#94A3B8",
	Icon:  "Receipt",
}

// Preferences is the per-user configuration the calculator consumes.
type Preferences struct {
	// HiddenBudgetCategories are excluded from budget aggregation.
	HiddenBudgetCategories map[string]bool

	// CategoryOrder is the user-defined display order of category IDs.
	CategoryOrder []string

	// RolloverEnabled turns month-to-month budget rollover on.
	RolloverEnabled bool
}

// HiddenSet builds a lookup set from a list of category IDs.
func HiddenSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
