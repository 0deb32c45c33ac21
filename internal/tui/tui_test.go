package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	resp  *nutrition.PlanDietResponse
	calls int
}

func (m *mockAnalyzer) AnalyzeDocument(context.Context, intake.Document, nutrition.DietaryPreferences) (*nutrition.PlanDietResponse, error) {
	m.calls++
	return m.resp, nil
}

func (m *mockAnalyzer) AnalyzeManual(context.Context, nutrition.ManualEntry) (*nutrition.PlanDietResponse, error) {
	m.calls++
	return m.resp, nil
}

func sampleResponse() *nutrition.PlanDietResponse {
	return &nutrition.PlanDietResponse{
		Clinical: nutrition.ClinicalResult{
			PatientMetrics: nutrition.PatientMetrics{MortalityRisk: 0.62, Glucose: 95, Creatinine: 1},
			Summary:        "Elevated risk.",
		},
		Diet: nutrition.DietPlan{
			WeekPlan: nutrition.WeekPlan{
				"day1": {Breakfast: []nutrition.MealItem{{Item: "Oats Upma", Calories: 150, Protein: 5}}},
			},
		},
	}
}

func newModel(t *testing.T, a *mockAnalyzer) Model {
	t.Helper()
	return New(context.Background(), Deps{
		Analyzer:  a,
		Exporter:  report.NewExporter(report.WithClock(func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) })),
		Identity:  session.Identity{Name: "Asha", Email: "asha@example.com"},
		ReportDir: t.TempDir(),
		Prefs:     nutrition.DefaultPreferences(),
	})
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

// run executes cmd and feeds back every message it yields, one level deep.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				m, _ = send(t, m, c())
			}
		}
		return m
	}
	m, _ = send(t, m, msg)
	return m
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func manualMode(t *testing.T, m Model) Model {
	m, _ = send(t, m, key(tea.KeyCtrlT))
	return m
}

func fillManual(t *testing.T, m Model) Model {
	for i, v := range []string{"95", "1.0", "15", "140", "4.0", "180"} {
		if i > 0 {
			m, _ = send(t, m, key(tea.KeyDown))
		}
		m, _ = send(t, m, typed(v))
	}
	return m
}

func TestManualValidationMakesNoRequest(t *testing.T) {
	a := &mockAnalyzer{resp: sampleResponse()}
	m := manualMode(t, newModel(t, a))
	assert.Contains(t, m.View(), "Glucose (mg/dL)")

	m, cmd := send(t, m, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, a.calls)
	assert.Contains(t, m.View(), "Please enter a value for GLUCOSE")
}

func TestManualSubmitShowsResult(t *testing.T) {
	a := &mockAnalyzer{resp: sampleResponse()}
	m := fillManual(t, manualMode(t, newModel(t, a)))
	assert.Equal(t, "180", m.dash.Form.Get("cholesterol"))

	m, cmd := send(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.dash.Loading())
	assert.Contains(t, m.View(), "Analyzing")

	_, again := send(t, m, key(tea.KeyEnter))
	assert.Nil(t, again, "enter is ignored while loading")

	m = run(t, m, cmd)
	assert.Equal(t, 1, a.calls)
	view := m.View()
	assert.Contains(t, view, "62.0% High")
	assert.Contains(t, view, "Day 1 of 7")
	assert.Contains(t, view, "Oats Upma (150 kcal)")
}

func TestDayNavigationAndDetail(t *testing.T) {
	a := &mockAnalyzer{resp: sampleResponse()}
	m := fillManual(t, manualMode(t, newModel(t, a)))
	m, cmd := send(t, m, key(tea.KeyEnter))
	m = run(t, m, cmd)

	m, _ = send(t, m, key(tea.KeyLeft))
	assert.Contains(t, m.View(), "Day 1 of 7")

	for i := 0; i < 9; i++ {
		m, _ = send(t, m, key(tea.KeyRight))
	}
	assert.Contains(t, m.View(), "Day 7 of 7")
	assert.Contains(t, m.View(), "No items")

	for i := 0; i < 6; i++ {
		m, _ = send(t, m, key(tea.KeyLeft))
	}
	m, _ = send(t, m, key(tea.KeyEnter))
	view := m.View()
	assert.Contains(t, view, "Fresh, whole ingredients sourced locally")
	assert.Contains(t, view, "Verified non-GMO.")

	m, _ = send(t, m, key(tea.KeyEsc))
	assert.NotContains(t, m.View(), "Fresh, whole ingredients")
}

func TestDocumentModeAndExport(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "labs.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\n%%EOF\n"), 0644))
	txt := filepath.Join(t.TempDir(), "labs.txt")
	require.NoError(t, os.WriteFile(txt, []byte("glucose 95"), 0644))

	a := &mockAnalyzer{resp: sampleResponse()}
	m := newModel(t, a)

	m, cmd := send(t, m, typed(txt), key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Please upload a valid PDF file.")

	m, cmd = send(t, m, key(tea.KeyCtrlX), typed(pdf), key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Empty(t, m.dash.Err())
	m = run(t, m, cmd)
	require.NotNil(t, m.dash.Result())

	m, cmd = send(t, m, typed("e"))
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "Report saved to")
	assert.FileExists(t, filepath.Join(m.deps.ReportDir, "AI-NutriCare_Report_2026-01-02.pdf"))

	m, _ = send(t, m, typed("n"))
	assert.Nil(t, m.dash.Result())
	assert.True(t, strings.Contains(m.View(), "Upload Report"))
}

func TestPreferenceKeys(t *testing.T) {
	m := newModel(t, &mockAnalyzer{})
	m, _ = send(t, m, key(tea.KeyCtrlD))
	assert.Equal(t, nutrition.DietVegetarian, m.dash.Prefs.DietType)

	m, _ = send(t, m, key(tea.KeyCtrlR))
	assert.Contains(t, m.View(), "All Regions (Pan-Indian)")
	m, _ = send(t, m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyEnter))
	assert.Equal(t, nutrition.RegionSouth, m.dash.Prefs.Region)
	assert.False(t, m.dash.Regions.Open)
	assert.Contains(t, m.View(), "South Indian")
}
