package catalog

import (
	"errors"
	"testing"

	"github.com/mmynk/splitty/internal/models"
)

func TestByID(t *testing.T) {
	c := New([]models.Category{
		{ID: "food", Label: "Food & Drink", Color: "#F97316", Icon: "Utensils"},
		{ID: "home-office"},
	})

	tests := []struct {
		name      string
		id        string
		wantID    string
		wantLabel string
	}{
		{name: "known", id: "food", wantID: "food", wantLabel: "Food & Drink"},
		{name: "label from id", id: "home-office", wantID: "home-office", wantLabel: "Home Office"},
		{name: "general", id: "general", wantID: "general", wantLabel: "General"},
		{name: "unknown falls back", id: "deleted", wantID: "general", wantLabel: "General"},
		{name: "empty falls back", id: "", wantID: "general", wantLabel: "General"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ByID(tt.id)
			if got.ID != tt.wantID || got.Label != tt.wantLabel {
				t.Errorf("ByID(%q) = %s/%s, want %s/%s", tt.id, got.ID, got.Label, tt.wantID, tt.wantLabel)
			}
		})
	}
}

func TestLookupNotFound(t *testing.T) {
	c := New(nil)
	_, err := c.Lookup("nope")

	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Lookup() error = %v, want NotFoundError", err)
	}
	if nf.ID != "nope" {
		t.Errorf("NotFoundError.ID = %s, want nope", nf.ID)
	}
}

func TestAll(t *testing.T) {
	c := New([]models.Category{{ID: "b"}, {ID: "a"}, {ID: "general", Label: "Misc"}})
	all := c.All()

	want := []string{"general", "b", "a"}
	if len(all) != len(want) {
		t.Fatalf("All() returned %d categories, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("All()[%d] = %s, want %s", i, all[i].ID, id)
		}
	}
	if all[0].Label != "Misc" {
		t.Errorf("general label = %s, want user override Misc", all[0].Label)
	}
}

func TestCheckDeletable(t *testing.T) {
	var verr *models.ValidationError
	if err := CheckDeletable(models.GeneralCategoryID); !errors.As(err, &verr) {
		t.Errorf("CheckDeletable(general) = %v, want ValidationError", err)
	}
	if err := CheckDeletable("food"); err != nil {
		t.Errorf("CheckDeletable(food) = %v, want nil", err)
	}
}
