package colors

import (
	"testing"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

func TestForCategory(t *testing.T) {
	if got := ForCategory(model.CategorySocial); got != "#EC4899" {
		t.Errorf("Expected social color #EC4899, got %s", got)
	}
	if got := ForCategory(model.Category("unknown")); got != "" {
		t.Errorf("Expected no color for unmapped category, got %s", got)
	}
}

func TestGCalID(t *testing.T) {
	if got := GCalID("#3b82f6", ""); got != "9" {
		t.Errorf("Expected hex match to give 9, got %s", got)
	}
	if got := GCalID("", model.CategoryHealth); got != "10" {
		t.Errorf("Expected health category to give 10, got %s", got)
	}
	if got := GCalID("#000000", ""); got != defaultGCalID {
		t.Errorf("Expected default %s, got %s", defaultGCalID, got)
	}
}
