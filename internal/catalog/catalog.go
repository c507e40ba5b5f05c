// Package catalog holds the built-in furniture definitions users can place
// without entering dimensions by hand. Sizes are in meters.
package catalog

import (
	"github.com/loremIpsum6321/roomplanner/internal/plan"
)

var items = []plan.Definition{
	{TypeID: "bed-single", Name: "Single Bed", WidthUnits: 0.9, LengthUnits: 2.0, Color: "#8e9fc4"},
	{TypeID: "bed-double", Name: "Double Bed", WidthUnits: 1.6, LengthUnits: 2.0, Color: "#7287b5"},
	{TypeID: "sofa", Name: "Sofa", WidthUnits: 2.2, LengthUnits: 0.9, Color: "#b5727f"},
	{TypeID: "armchair", Name: "Armchair", WidthUnits: 0.9, LengthUnits: 0.9, Color: "#c48e9a"},
	{TypeID: "dining-table", Name: "Dining Table", WidthUnits: 1.8, LengthUnits: 0.9, Color: "#a58d6f"},
	{TypeID: "desk", Name: "Desk", WidthUnits: 1.4, LengthUnits: 0.7, Color: "#8fa58a"},
	{TypeID: "chair", Name: "Chair", WidthUnits: 0.5, LengthUnits: 0.5, Color: "#c4b98e"},
	{TypeID: "wardrobe", Name: "Wardrobe", WidthUnits: 1.2, LengthUnits: 0.6, Color: "#7d6e8c"},
	{TypeID: "bookshelf", Name: "Bookshelf", WidthUnits: 0.8, LengthUnits: 0.3, Color: "#6e8c85"},
	{TypeID: "rug", Name: "Rug", WidthUnits: 2.0, LengthUnits: 1.4, Color: "#cfc3a9"},
}

// All returns the built-in definitions in display order.
func All() []plan.Definition {
	out := make([]plan.Definition, len(items))
	copy(out, items)
	return out
}

// Lookup returns the definition for typeID, if it exists.
func Lookup(typeID string) (plan.Definition, bool) {
	for _, d := range items {
		if d.TypeID == typeID {
			return d, true
		}
	}
	return plan.Definition{}, false
}
