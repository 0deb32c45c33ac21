package nutrition

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DietType is the diet filter sent with every analysis request.
type DietType string

const (
	DietVegetarian    DietType = "vegetarian"
	DietNonVegetarian DietType = "non-vegetarian"
	DietBoth          DietType = "both"
)

// DietTypes lists the accepted diet types in display order.
var DietTypes = []DietType{DietVegetarian, DietNonVegetarian, DietBoth}

// Region narrows the meal plan to a regional cuisine. The zero value means
// all regions and is sent as JSON null.
type Region string

const (
	RegionAll       Region = ""
	RegionNorth     Region = "North"
	RegionSouth     Region = "South"
	RegionEast      Region = "East"
	RegionWest      Region = "West"
	RegionNorthEast Region = "North East"
)

// Regions lists every selectable region, starting with "all".
var Regions = []Region{RegionAll, RegionNorth, RegionSouth, RegionEast, RegionWest, RegionNorthEast}

// MarshalJSON encodes the unset region as null.
func (r Region) MarshalJSON() ([]byte, error) {
	if r == RegionAll {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts null as the unset region.
func (r *Region) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = RegionAll
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode region: %w", err)
	}
	*r = Region(s)
	return nil
}

// DietaryPreferences is included in every analysis request.
type DietaryPreferences struct {
	DietType DietType `json:"diet_type"`
	Region   Region   `json:"region"`
}

// DefaultPreferences returns "both" with no regional filter.
func DefaultPreferences() DietaryPreferences {
	return DietaryPreferences{DietType: DietBoth, Region: RegionAll}
}

// ManualEntry is the JSON body of a manual biomarker analysis request.
type ManualEntry struct {
	Glucose     float64 `json:"glucose"`
	Creatinine  float64 `json:"creatinine"`
	UreaBUN     float64 `json:"urea_bun"`
	Sodium      float64 `json:"sodium"`
	Potassium   float64 `json:"potassium"`
	Cholesterol float64 `json:"cholesterol"`

	Age        *int     `json:"age,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	Hemoglobin *float64 `json:"hemoglobin,omitempty"`
	HbA1c      *float64 `json:"hba1c,omitempty"`

	Preferences DietaryPreferences `json:"preferences"`
}

// PatientMetrics holds the scored values echoed back by the service.
type PatientMetrics struct {
	MortalityRisk float64 `json:"mortality_risk"`
	Glucose       float64 `json:"glucose"`
	Creatinine    float64 `json:"creatinine"`
}

// ClinicalResult is the risk, condition and summary part of a response.
type ClinicalResult struct {
	PatientMetrics PatientMetrics `json:"patient_metrics"`
	Conditions     []string       `json:"conditions"`
	Avoid          []string       `json:"avoid"`
	Recommend      []string       `json:"recommend"`
	Summary        string         `json:"summary"`
}

// MealItem is one recommended food entry.
type MealItem struct {
	Item        string   `json:"item"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Fat         float64  `json:"fat"`
	Carbs       float64  `json:"carbs"`
	Tags        []string `json:"tags,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Origin      string   `json:"origin,omitempty"`
}

// TotalNutrition is the service-supplied daily average. It is never
// recomputed client-side.
type TotalNutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// DietPlan is the dietary part of a response.
type DietPlan struct {
	WeekPlan         WeekPlan       `json:"week_plan"`
	TotalNutrition   TotalNutrition `json:"total_nutrition"`
	MedicalReasoning string         `json:"medical_reasoning"`
}

// PlanDietResponse is the envelope returned by both analysis endpoints.
type PlanDietResponse struct {
	Clinical ClinicalResult `json:"clinical"`
	Diet     DietPlan       `json:"diet"`
}
