// Package catalog resolves category references for display.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mmynk/splitty/internal/models"
)

var titleCaser = cases.Title(language.English)

// Catalog is an immutable lookup over the user's categories. The general
// category is always present.
type Catalog struct {
	byID  map[string]models.Category
	order []string
}

// New builds a catalog from categories. Later duplicates replace earlier ones.
func New(categories []models.Category) *Catalog {
	c := &Catalog{byID: make(map[string]models.Category, len(categories)+1)}
	c.add(models.GeneralCategory)
	for _, cat := range categories {
		if cat.ID == "" {
			continue
		}
		c.add(cat)
	}
	return c
}

func (c *Catalog) add(cat models.Category) {
	if cat.Label == "" {
		cat.Label = titleCaser.String(strings.ReplaceAll(cat.ID, "-", " "))
	}
	if _, exists := c.byID[cat.ID]; !exists {
		c.order = append(c.order, cat.ID)
	}
	c.byID[cat.ID] = cat
}

// Lookup returns the category with id or a *models.NotFoundError.
func (c *Catalog) Lookup(id string) (models.Category, error) {
	cat, ok := c.byID[id]
	if !ok {
		return models.Category{}, &models.NotFoundError{Kind: "category", ID: id}
	}
	return cat, nil
}

// ByID returns the category with id, falling back to the general category
// for unknown or stale references.
func (c *Catalog) ByID(id string) models.Category {
	if cat, err := c.Lookup(id); err == nil {
		return cat
	}
	return c.byID[models.GeneralCategoryID]
}

// All returns the categories in insertion order, general first.
func (c *Catalog) All() []models.Category {
	out := make([]models.Category, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// CheckDeletable returns a *models.ValidationError for categories that may
// not be removed.
func CheckDeletable(id string) error {
	if id == models.GeneralCategoryID {
		return &models.ValidationError{Field: "category", Message: "the general category cannot be deleted"}
	}
	return nil
}
