package intake

import (
	"fmt"
	"strings"

	"ai-nutricare/internal/nutrition"
)

// RegionOption pairs a region with its menu label.
type RegionOption struct {
	Value nutrition.Region
	Label string
}

// RegionOptions is the region menu, "all regions" first.
var RegionOptions = []RegionOption{
	{Value: nutrition.RegionAll, Label: "All Regions (Pan-Indian)"},
	{Value: nutrition.RegionNorth, Label: "North Indian"},
	{Value: nutrition.RegionSouth, Label: "South Indian"},
	{Value: nutrition.RegionEast, Label: "East Indian"},
	{Value: nutrition.RegionWest, Label: "West Indian"},
	{Value: nutrition.RegionNorthEast, Label: "North East Indian"},
}

// RegionLabel returns the menu label for r.
func RegionLabel(r nutrition.Region) string {
	for _, opt := range RegionOptions {
		if opt.Value == r {
			return opt.Label
		}
	}
	return string(r)
}

// ParseDietType accepts a diet type name in any case. Empty means "both".
func ParseDietType(s string) (nutrition.DietType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nutrition.DietBoth, nil
	}
	for _, d := range nutrition.DietTypes {
		if string(d) == s {
			return d, nil
		}
	}
	switch s {
	case "veg":
		return nutrition.DietVegetarian, nil
	case "non-veg", "nonveg", "non_vegetarian":
		return nutrition.DietNonVegetarian, nil
	}
	return "", fmt.Errorf("unknown diet type %q (want vegetarian, non-vegetarian or both)", s)
}

// ParseRegion accepts a region name in any case; "", "all" and "none" mean
// no regional filter.
func ParseRegion(s string) (nutrition.Region, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all", "none", "null":
		return nutrition.RegionAll, nil
	}
	norm := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(s))
	for _, r := range nutrition.Regions {
		if r != nutrition.RegionAll && strings.ToLower(string(r)) == norm {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// Preferences is the dietary preference state held by the input screen.
type Preferences struct {
	nutrition.DietaryPreferences
}

// NewPreferences starts from the given defaults.
func NewPreferences(p nutrition.DietaryPreferences) *Preferences {
	if p.DietType == "" {
		p.DietType = nutrition.DietBoth
	}
	return &Preferences{DietaryPreferences: p}
}

// CycleDiet advances to the next diet type, wrapping around.
func (p *Preferences) CycleDiet() {
	for i, d := range nutrition.DietTypes {
		if d == p.DietType {
			p.DietType = nutrition.DietTypes[(i+1)%len(nutrition.DietTypes)]
			return
		}
	}
	p.DietType = nutrition.DietBoth
}

// RegionMenu is the open/closed state and cursor of the region selector.
type RegionMenu struct {
	Open   bool
	cursor int
}

// Toggle opens or closes the menu. Opening places the cursor on current.
func (m *RegionMenu) Toggle(current nutrition.Region) {
	m.Open = !m.Open
	if m.Open {
		m.cursor = 0
		for i, opt := range RegionOptions {
			if opt.Value == current {
				m.cursor = i
			}
		}
	}
}

// Close closes the menu without changing the selection.
func (m *RegionMenu) Close() {
	m.Open = false
}

// Up moves the cursor up, stopping at the first option.
func (m *RegionMenu) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// Down moves the cursor down, stopping at the last option.
func (m *RegionMenu) Down() {
	if m.cursor < len(RegionOptions)-1 {
		m.cursor++
	}
}

// Cursor is the highlighted option index.
func (m *RegionMenu) Cursor() int {
	return m.cursor
}

// Choose applies the highlighted option to p and closes the menu.
func (m *RegionMenu) Choose(p *Preferences) {
	p.Region = RegionOptions[m.cursor].Value
	m.Open = false
}
