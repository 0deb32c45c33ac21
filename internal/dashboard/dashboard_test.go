package dashboard

import (
	"context"
	"errors"
	"testing"

	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAnalyzer counts calls and returns canned results.
type mockAnalyzer struct {
	resp      *nutrition.PlanDietResponse
	err       error
	calls     int
	lastEntry nutrition.ManualEntry
	lastPrefs nutrition.DietaryPreferences
}

func (m *mockAnalyzer) AnalyzeDocument(_ context.Context, _ intake.Document, prefs nutrition.DietaryPreferences) (*nutrition.PlanDietResponse, error) {
	m.calls++
	m.lastPrefs = prefs
	return m.resp, m.err
}

func (m *mockAnalyzer) AnalyzeManual(_ context.Context, entry nutrition.ManualEntry) (*nutrition.PlanDietResponse, error) {
	m.calls++
	m.lastEntry = entry
	return m.resp, m.err
}

var pdfBytes = []byte("%PDF-1.4\n%%EOF\n")

func sampleResponse() *nutrition.PlanDietResponse {
	return &nutrition.PlanDietResponse{
		Clinical: nutrition.ClinicalResult{
			PatientMetrics: nutrition.PatientMetrics{MortalityRisk: 0.62, Glucose: 95, Creatinine: 1},
			Summary:        "Elevated risk.",
		},
		Diet: nutrition.DietPlan{
			WeekPlan: nutrition.WeekPlan{
				"day1": {Breakfast: []nutrition.MealItem{{Item: "Oats", Calories: 150, Protein: 5}}},
				"day2": {Dinner: []nutrition.MealItem{{Item: "Dal", Calories: 220, Protein: 12}}},
			},
		},
	}
}

func fillForm(f *intake.ManualForm) {
	for key, v := range map[string]string{
		"glucose": "95", "creatinine": "1.0", "urea_bun": "15",
		"sodium": "140", "potassium": "4.0", "cholesterol": "180",
	} {
		f.Set(key, v)
	}
}

func TestSubmitValidation(t *testing.T) {
	for _, field := range intake.BiomarkerFields {
		t.Run(field.Key, func(t *testing.T) {
			d := New(nutrition.DefaultPreferences())
			d.Mode = ModeManual
			fillForm(d.Form)
			d.Form.Set(field.Key, "")

			m := &mockAnalyzer{resp: sampleResponse()}
			assert.False(t, d.Submit(context.Background(), m))
			assert.Equal(t, 0, m.calls)
			assert.Equal(t, (&intake.ValidationError{Field: field.Key}).Error(), d.Err())
			assert.False(t, d.Loading())
		})
	}
}

func TestSubmitDisabled(t *testing.T) {
	m := &mockAnalyzer{resp: sampleResponse()}

	t.Run("NoDocument", func(t *testing.T) {
		d := New(nutrition.DefaultPreferences())
		assert.False(t, d.CanSubmit())
		assert.False(t, d.Submit(context.Background(), m))
		assert.Equal(t, 0, m.calls)
	})

	t.Run("WhileLoading", func(t *testing.T) {
		d := New(nutrition.DefaultPreferences())
		require.True(t, d.SelectDocument("labs.pdf", pdfBytes))
		job, ok := d.Prepare(m)
		require.True(t, ok)
		require.NotNil(t, job)
		assert.True(t, d.Loading())

		_, again := d.Prepare(m)
		assert.False(t, again, "second submit while loading is ignored")
		assert.Equal(t, 0, m.calls)

		d.Complete(job(context.Background()))
		assert.Equal(t, 1, m.calls)
		assert.False(t, d.Loading())
	})
}

func TestSubmitResult(t *testing.T) {
	t.Run("HighRiskScenario", func(t *testing.T) {
		m := &mockAnalyzer{resp: sampleResponse()}
		d := New(nutrition.DietaryPreferences{DietType: nutrition.DietVegetarian, Region: nutrition.RegionWest})
		require.True(t, d.SelectDocument("labs.pdf", pdfBytes))
		require.True(t, d.Submit(context.Background(), m))

		require.NotNil(t, d.Result())
		assert.Empty(t, d.Err())
		assert.Equal(t, nutrition.RegionWest, m.lastPrefs.Region)

		pct := nutrition.RiskPercent(d.Result().Clinical.PatientMetrics.MortalityRisk)
		assert.Equal(t, "62.0%", nutrition.FormatRiskPercent(d.Result().Clinical.PatientMetrics.MortalityRisk))
		assert.Equal(t, TierHigh, RiskTier(pct))
	})

	t.Run("ManualEntryCarriesPreferences", func(t *testing.T) {
		m := &mockAnalyzer{resp: sampleResponse()}
		d := New(nutrition.DefaultPreferences())
		d.Mode = ModeManual
		fillForm(d.Form)
		d.Prefs.CycleDiet()
		require.True(t, d.Submit(context.Background(), m))
		assert.Equal(t, 1, m.calls)
		assert.Equal(t, 140.0, m.lastEntry.Sodium)
		assert.Equal(t, nutrition.DietVegetarian, m.lastEntry.Preferences.DietType)
	})

	t.Run("MissingDayDegrades", func(t *testing.T) {
		m := &mockAnalyzer{resp: sampleResponse()}
		d := New(nutrition.DefaultPreferences())
		require.True(t, d.SelectDocument("labs.pdf", pdfBytes))
		require.True(t, d.Submit(context.Background(), m))

		d.Days.Next()
		d.Days.Next()
		assert.Equal(t, 3, d.Days.Current())
		for _, slot := range nutrition.Slots {
			assert.Empty(t, d.CurrentDay().Items(slot))
		}
	})

	t.Run("NewResultResetsView", func(t *testing.T) {
		m := &mockAnalyzer{resp: sampleResponse()}
		d := New(nutrition.DefaultPreferences())
		require.True(t, d.SelectDocument("labs.pdf", pdfBytes))
		require.True(t, d.Submit(context.Background(), m))
		d.Days.Next()
		d.SelectMeal(d.CurrentDay().Dinner[0])

		require.True(t, d.Submit(context.Background(), m))
		assert.Equal(t, 1, d.Days.Current())
		_, open := d.SelectedMeal()
		assert.False(t, open)
	})

	t.Run("Failure", func(t *testing.T) {
		m := &mockAnalyzer{err: &gateway.ServiceError{StatusCode: 500, Body: "boom"}}
		d := New(nutrition.DefaultPreferences())
		require.True(t, d.SelectDocument("labs.pdf", pdfBytes))
		require.True(t, d.Submit(context.Background(), m))
		assert.Nil(t, d.Result())
		assert.Equal(t, "API error 500: boom", d.Err())
		assert.False(t, d.Loading())

		m.err = errors.New("connection refused")
		require.True(t, d.Submit(context.Background(), m))
		assert.Equal(t, gateway.GenericFailure, d.Err())
	})
}

func TestSelectDocument(t *testing.T) {
	d := New(nutrition.DefaultPreferences())
	require.True(t, d.SelectDocument("a.pdf", pdfBytes))
	assert.False(t, d.SelectDocument("notes.txt", []byte("hello")))
	assert.Equal(t, "Please upload a valid PDF file.", d.Err())
	require.NotNil(t, d.Document)
	assert.Equal(t, "a.pdf", d.Document.Filename)

	d.ClearDocument()
	assert.Nil(t, d.Document)
}

func TestDayNavigator(t *testing.T) {
	n := NewDayNavigator()
	n.Prev()
	assert.Equal(t, 1, n.Current())

	for i := 0; i < 20; i++ {
		n.Next()
		assert.LessOrEqual(t, n.Current(), 7)
	}
	assert.Equal(t, 7, n.Current())
	n.Prev()
	assert.Equal(t, 6, n.Current())

	var zero DayNavigator
	assert.Equal(t, 1, zero.Current())
}

func TestRiskTier(t *testing.T) {
	cases := []struct {
		pct  float64
		want Tier
	}{
		{0, TierLow},
		{30, TierLow},
		{30.1, TierModerate},
		{50, TierModerate},
		{50.1, TierHigh},
		{100, TierHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RiskTier(c.pct), "pct %v", c.pct)
	}
}

func TestMealDetail(t *testing.T) {
	bare := NewMealDetail(nutrition.MealItem{Item: "Poha"})
	assert.Equal(t, DefaultIngredients, bare.Ingredients)
	assert.Equal(t, DefaultOrigin, bare.Origin)

	full := NewMealDetail(nutrition.MealItem{Item: "Poha", Ingredients: []string{"rice flakes"}, Origin: "Indore"})
	assert.Equal(t, []string{"rice flakes"}, full.Ingredients)
	assert.Equal(t, "Indore", full.Origin)

	assert.Equal(t, "10:30 AM / 04:00 PM", MealTime(nutrition.Snacks))
}
