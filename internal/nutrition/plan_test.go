package nutrition

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekPlanDay(t *testing.T) {
	t.Run("MissingDayDegradesToEmptySlots", func(t *testing.T) {
		raw := `{"day1": {"breakfast": [{"item": "Oats", "calories": 150, "protein": 5, "fat": 3, "carbs": 27}], "lunch": [], "dinner": [], "snacks": []},
			"day2": {"breakfast": [], "lunch": [], "dinner": [], "snacks": []}}`
		var w WeekPlan
		require.NoError(t, json.Unmarshal([]byte(raw), &w))

		day3 := w.Day(3)
		for _, slot := range Slots {
			assert.Empty(t, day3.Items(slot), "slot %s of day3", slot)
		}
		assert.Len(t, w.Day(1).Items(Breakfast), 1)
	})

	t.Run("NilPlan", func(t *testing.T) {
		var w WeekPlan
		assert.Empty(t, w.Day(1).Items(Dinner))
	})
}

func TestSlotSubtotals(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0.0, SlotCalories(nil))
		assert.Equal(t, "0.0", FormatOneDecimal(SlotProtein([]MealItem{})))
	})

	t.Run("ExactSum", func(t *testing.T) {
		items := []MealItem{
			{Item: "Idli", Calories: 120, Protein: 4.2},
			{Item: "Sambar", Calories: 95.5, Protein: 3.1},
			{Item: "Chutney", Calories: 60, Protein: 1},
		}
		assert.Equal(t, 275.5, SlotCalories(items))
		assert.Equal(t, "8.3", FormatOneDecimal(SlotProtein(items)))
		assert.Equal(t, "275.5", FormatNumber(SlotCalories(items)))
	})

	t.Run("TieRoundsUp", func(t *testing.T) {
		assert.Equal(t, "0.3", FormatOneDecimal(0.25))
		assert.Equal(t, "1.8", FormatOneDecimal(1.75))
		assert.Equal(t, "-0.3", FormatOneDecimal(-0.25))
		assert.Equal(t, "2.5", FormatOneDecimal(2.45+0.0000001))
	})

	t.Run("InexactHalvesFollowBinaryValue", func(t *testing.T) {
		assert.Equal(t, "0.1", FormatOneDecimal(0.15))
		assert.Equal(t, "0.3", FormatOneDecimal(0.35))
		assert.Equal(t, "1.4", FormatOneDecimal(1.45))
		assert.Equal(t, 0.1, RoundOneDecimal(0.15))
	})
}

func TestFormatRiskPercent(t *testing.T) {
	cases := map[float64]string{
		0:     "0.0%",
		0.62:  "62.0%",
		0.123: "12.3%",
		0.5:   "50.0%",
		1:     "100.0%",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatRiskPercent(in), "risk %v", in)
	}

	for i := 0; i <= 1000; i++ {
		m := float64(i) / 1000
		got := strings.TrimSuffix(FormatRiskPercent(m), "%")
		v, err := strconv.ParseFloat(got, 64)
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(v-m*100), 0.05+1e-9, "risk %v rendered %s", m, got)
	}
}

func TestRegionJSON(t *testing.T) {
	prefs := DietaryPreferences{DietType: DietBoth}
	data, err := json.Marshal(prefs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"diet_type":"both","region":null}`, string(data))

	prefs.Region = RegionNorthEast
	data, err = json.Marshal(prefs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"diet_type":"both","region":"North East"}`, string(data))

	var back DietaryPreferences
	require.NoError(t, json.Unmarshal([]byte(`{"diet_type":"vegetarian","region":null}`), &back))
	assert.Equal(t, RegionAll, back.Region)
	assert.Equal(t, DietVegetarian, back.DietType)
}
