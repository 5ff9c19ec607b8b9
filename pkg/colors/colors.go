package colors

import "github.com/guilhermexp/LifeBetter-sub001/pkg/model"

// Swatch pairs the hex color shown in the app with the closest Google Calendar color id.
type Swatch struct {
	Hex      string
	GCalID   string
	Category model.Category
}

var swatches = map[model.Category]Swatch{
	model.CategoryWork:      {Hex: "#3B82F6", GCalID: "9", Category: model.CategoryWork},      // blueberry
	model.CategoryPersonal:  {Hex: "#8B5CF6", GCalID: "3", Category: model.CategoryPersonal},  // grape
	model.CategoryHealth:    {Hex: "#10B981", GCalID: "10", Category: model.CategoryHealth},   // basil
	model.CategoryStudy:     {Hex: "#F59E0B", GCalID: "5", Category: model.CategoryStudy},     // banana
	model.CategoryFinancial: {Hex: "#EF4444", GCalID: "11", Category: model.CategoryFinancial}, // tomato
	model.CategorySocial:    {Hex: "#EC4899", GCalID: "4", Category: model.CategorySocial},    // flamingo
}

// defaultGCalID is graphite, used when neither category nor color maps.
const defaultGCalID = "8"

// ForCategory returns the suggested hex color, or "" for unmapped categories.
func ForCategory(c model.Category) string {
	if s, ok := swatches[c]; ok {
		return s.Hex
	}
	return ""
}

// GCalID picks the calendar color for a record: an exact hex match first,
// then its category, then graphite.
func GCalID(hex string, c model.Category) string {
	for _, s := range swatches {
		if hex != "" && equalFoldHex(s.Hex, hex) {
			return s.GCalID
		}
	}
	if s, ok := swatches[c]; ok {
		return s.GCalID
	}
	return defaultGCalID
}

func equalFoldHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'a' <= x && x <= 'f' {
			x -= 'a' - 'A'
		}
		if 'a' <= y && y <= 'f' {
			y -= 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}
