package dashboard

import (
	"ai-nutricare/internal/nutrition"
)

// DayNavigator tracks the viewed day within 1..7.
type DayNavigator struct {
	day int
}

// NewDayNavigator starts on day 1.
func NewDayNavigator() DayNavigator {
	return DayNavigator{day: 1}
}

// Current returns the viewed day.
func (n *DayNavigator) Current() int {
	if n.day < 1 {
		return 1
	}
	return n.day
}

// Next advances one day; a no-op on day 7.
func (n *DayNavigator) Next() {
	if c := n.Current(); c < nutrition.DaysPerWeek {
		n.day = c + 1
	}
}

// Prev goes back one day; a no-op on day 1.
func (n *DayNavigator) Prev() {
	if c := n.Current(); c > 1 {
		n.day = c - 1
	}
}

// Reset returns to day 1.
func (n *DayNavigator) Reset() {
	n.day = 1
}

// Tier classifies a risk percentage.
type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
)

// RiskTier maps a percentage to its tier: above 50 is high, above 30 is
// moderate.
func RiskTier(percent float64) Tier {
	switch {
	case percent > 50:
		return TierHigh
	case percent > 30:
		return TierModerate
	default:
		return TierLow
	}
}

// MealTime is the suggested time printed next to a slot.
func MealTime(slot nutrition.MealSlot) string {
	switch slot {
	case nutrition.Breakfast:
		return "08:00 AM"
	case nutrition.Lunch:
		return "01:00 PM"
	case nutrition.Snacks:
		return "10:30 AM / 04:00 PM"
	case nutrition.Dinner:
		return "07:30 PM"
	}
	return ""
}

// Placeholder detail text for items the service sent without it.
var (
	DefaultIngredients = []string{
		"Fresh, whole ingredients sourced locally",
		"No additives",
		"Organic seasoning",
	}
	DefaultOrigin = "Sourced from certified organic farms focusing on sustainable agriculture. Verified non-GMO."
)

// MealDetail is the content of the meal detail view.
type MealDetail struct {
	nutrition.MealItem
}

// NewMealDetail fills missing ingredients and origin with placeholders.
func NewMealDetail(item nutrition.MealItem) MealDetail {
	if len(item.Ingredients) == 0 {
		item.Ingredients = DefaultIngredients
	}
	if item.Origin == "" {
		item.Origin = DefaultOrigin
	}
	return MealDetail{MealItem: item}
}
