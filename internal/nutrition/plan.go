package nutrition

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// DaysPerWeek is the number of day keys a WeekPlan is expected to carry.
const DaysPerWeek = 7

// MealSlot names one of the four meals of a day.
type MealSlot string

const (
	Breakfast MealSlot = "Breakfast"
	Lunch     MealSlot = "Lunch"
	Snacks    MealSlot = "Snacks"
	Dinner    MealSlot = "Dinner"
)

// Slots is the fixed order used on screen and in the exported report.
var Slots = []MealSlot{Breakfast, Lunch, Snacks, Dinner}

// DayPlan holds the meals of one day.
type DayPlan struct {
	Breakfast []MealItem `json:"breakfast"`
	Lunch     []MealItem `json:"lunch"`
	Dinner    []MealItem `json:"dinner"`
	Snacks    []MealItem `json:"snacks"`
}

// Items returns the list for a slot. Unknown slots yield nil.
func (d DayPlan) Items(slot MealSlot) []MealItem {
	switch slot {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Snacks:
		return d.Snacks
	case Dinner:
		return d.Dinner
	}
	return nil
}

// WeekPlan maps the keys day1..day7 to a DayPlan.
type WeekPlan map[string]DayPlan

// DayKey returns the response key for day n (1-based).
func DayKey(n int) string {
	return fmt.Sprintf("day%d", n)
}

// Day returns the plan for day n. A missing key degrades to a DayPlan with
// four empty slots.
func (w WeekPlan) Day(n int) DayPlan {
	return w[DayKey(n)]
}

// SlotCalories is the exact sum of calories over items.
func SlotCalories(items []MealItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Calories
	}
	return total
}

// SlotProtein is the sum of protein over items, unrounded.
func SlotProtein(items []MealItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Protein
	}
	return total
}

// RoundOneDecimal rounds the exact binary value of x to one decimal place.
// Only exact ties (0.25, 1.75) round away from zero, so 0.15 stored as
// 0.1499999... becomes 0.1.
func RoundOneDecimal(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if isExactTie(x) {
		return math.Round(x*10) / 10
	}
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}

// isExactTie reports whether x*10 is exactly halfway between two integers.
func isExactTie(x float64) bool {
	r := new(big.Rat).SetFloat64(x)
	r.Mul(r, big.NewRat(10, 1))
	return r.Denom().Cmp(big.NewInt(2)) == 0
}

// FormatOneDecimal renders x with exactly one decimal place.
func FormatOneDecimal(x float64) string {
	return strconv.FormatFloat(RoundOneDecimal(x), 'f', 1, 64)
}

// FormatNumber renders x in its shortest decimal form (250, 250.5).
func FormatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// RiskPercent converts the service's 0..1 mortality risk to a percentage.
func RiskPercent(mortalityRisk float64) float64 {
	return mortalityRisk * 100
}

// FormatRiskPercent renders a risk fraction as "62.0%".
func FormatRiskPercent(mortalityRisk float64) string {
	return FormatOneDecimal(RiskPercent(mortalityRisk)) + "%"
}
