package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-nutricare/internal/config"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleResponse = `{
  "clinical": {
    "patient_metrics": {"mortality_risk": 0.62, "glucose": 95, "creatinine": 1.0},
    "conditions": ["CKD Stage 2"],
    "avoid": ["salt"],
    "recommend": ["leafy greens"],
    "summary": "Moderate renal impairment."
  },
  "diet": {
    "week_plan": {
      "day1": {"breakfast": [{"item": "Oats", "calories": 150, "protein": 5, "fat": 3, "carbs": 27}], "lunch": [], "dinner": [], "snacks": []}
    },
    "total_nutrition": {"calories": 1800, "protein": 60, "fat": 50, "carbs": 250},
    "medical_reasoning": "Low sodium to protect kidney function."
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) Analyzer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.APIBaseURL = srv.URL + "/"
	return NewClient(cfg, zap.NewNop())
}

func TestAnalyzeManual(t *testing.T) {
	var gotBody map[string]any
	var gotPath, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleResponse)
	})

	entry := nutrition.ManualEntry{
		Glucose: 95, Creatinine: 1.0, UreaBUN: 15, Sodium: 140, Potassium: 4.0, Cholesterol: 180,
		Gender:      "Male",
		Preferences: nutrition.DefaultPreferences(),
	}
	resp, err := c.AnalyzeManual(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, "/plan-diet-manual", gotPath)
	assert.NotEmpty(t, gotRequestID)

	want := map[string]any{
		"glucose": 95.0, "creatinine": 1.0, "urea_bun": 15.0, "sodium": 140.0,
		"potassium": 4.0, "cholesterol": 180.0, "gender": "Male",
		"preferences": map[string]any{"diet_type": "both", "region": nil},
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 0.62, resp.Clinical.PatientMetrics.MortalityRisk)
	assert.Equal(t, "Oats", resp.Diet.WeekPlan.Day(1).Breakfast[0].Item)
	assert.Empty(t, resp.Diet.WeekPlan.Day(3).Items(nutrition.Dinner))
}

func TestAnalyzeDocument(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%%EOF\n")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plan-diet", r.URL.Path)
		assert.Equal(t, "vegetarian", r.URL.Query().Get("diet_type"))
		assert.Equal(t, "North East", r.URL.Query().Get("region"))

		file, header, err := r.FormFile("report")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, pdf, data)
		assert.Equal(t, "labs.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		io.WriteString(w, sampleResponse)
	})

	doc := intake.Document{Filename: "labs.pdf", Data: pdf}
	prefs := nutrition.DietaryPreferences{DietType: nutrition.DietVegetarian, Region: nutrition.RegionNorthEast}
	resp, err := c.AnalyzeDocument(context.Background(), doc, prefs)
	require.NoError(t, err)
	assert.Equal(t, "Moderate renal impairment.", resp.Clinical.Summary)
}

func TestQueryString(t *testing.T) {
	assert.Equal(t, "diet_type=both", QueryString(nutrition.DefaultPreferences()))
	assert.Equal(t, "diet_type=non-vegetarian&region=South",
		QueryString(nutrition.DietaryPreferences{DietType: nutrition.DietNonVegetarian, Region: nutrition.RegionSouth}))
}

func TestFailures(t *testing.T) {
	entry := nutrition.ManualEntry{Preferences: nutrition.DefaultPreferences()}

	t.Run("ServiceError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"detail":"glucose out of range"}`)
		})
		_, err := c.AnalyzeManual(context.Background(), entry)

		var sErr *ServiceError
		require.True(t, errors.As(err, &sErr))
		assert.Equal(t, 422, sErr.StatusCode)
		assert.Equal(t, `API error 422: {"detail":"glucose out of range"}`, Message(err))
	})

	t.Run("TransportError", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		cfg := config.Default()
		cfg.APIBaseURL = srv.URL
		_, err := NewClient(cfg, zap.NewNop()).AnalyzeManual(context.Background(), entry)

		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, GenericFailure, Message(err))
	})

	t.Run("MalformedBody", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>")
		})
		_, err := c.AnalyzeManual(context.Background(), entry)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode analysis response")
		assert.Equal(t, GenericFailure, Message(err))
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Please enter a value for SODIUM", Message(&intake.ValidationError{Field: "sodium"}))
	assert.Equal(t, "Please upload a valid PDF file.", Message(intake.ErrNotPDF))
	assert.Equal(t, GenericFailure, Message(errors.New("boom")))
}
