package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ai-nutricare/internal/nutrition"
)

// BiomarkerField describes one required lab value of the manual form.
type BiomarkerField struct {
	Key   string
	Label string
	Unit  string
	Range string
}

// BiomarkerFields is the required set, in validation order.
var BiomarkerFields = []BiomarkerField{
	{Key: "glucose", Label: "Glucose", Unit: "mg/dL", Range: "70–99"},
	{Key: "creatinine", Label: "Creatinine", Unit: "mg/dL", Range: "0.7–1.3"},
	{Key: "urea_bun", Label: "Urea (BUN)", Unit: "mg/dL", Range: "7–20"},
	{Key: "sodium", Label: "Sodium", Unit: "mmol/L", Range: "136–145"},
	{Key: "potassium", Label: "Potassium", Unit: "mmol/L", Range: "3.5–5.0"},
	{Key: "cholesterol", Label: "Cholesterol", Unit: "mg/dL", Range: "<200"},
}

// Optional form keys.
const (
	KeyAge        = "age"
	KeyGender     = "gender"
	KeyHemoglobin = "hemoglobin"
	KeyHbA1c      = "hba1c"
)

// OptionalKeys lists the optional form keys in display order.
var OptionalKeys = []string{KeyAge, KeyGender, KeyHemoglobin, KeyHbA1c}

// DefaultGender pre-fills the gender field.
const DefaultGender = "Male"

// ValidationError reports a manual form field that cannot be submitted.
type ValidationError struct {
	Field   string
	Invalid bool
}

func (e *ValidationError) Error() string {
	if e.Invalid {
		return fmt.Sprintf("Please enter a valid number for %s", FieldLabel(e.Field))
	}
	return fmt.Sprintf("Please enter a value for %s", FieldLabel(e.Field))
}

// FieldLabel turns a form key into the label used in validation messages:
// the first underscore becomes a space and the result is upper-cased.
func FieldLabel(key string) string {
	return strings.ToUpper(strings.Replace(key, "_", " ", 1))
}

// ManualForm holds the raw text of the manual entry form.
type ManualForm struct {
	values map[string]string
}

// NewManualForm returns an empty form with the default gender.
func NewManualForm() *ManualForm {
	return &ManualForm{values: map[string]string{KeyGender: DefaultGender}}
}

// Set stores the raw text for key.
func (f *ManualForm) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
}

// Get returns the raw text for key.
func (f *ManualForm) Get(key string) string {
	return f.values[key]
}

// Reset clears every value and restores the default gender.
func (f *ManualForm) Reset() {
	f.values = map[string]string{KeyGender: DefaultGender}
}

// Entry validates the form and builds the request body. Required fields are
// checked in BiomarkerFields order and the first failure is returned.
func (f *ManualForm) Entry(prefs nutrition.DietaryPreferences) (nutrition.ManualEntry, error) {
	required := make([]float64, len(BiomarkerFields))
	for i, field := range BiomarkerFields {
		raw := strings.TrimSpace(f.Get(field.Key))
		if raw == "" {
			return nutrition.ManualEntry{}, &ValidationError{Field: field.Key}
		}
		v, err := parseNumber(raw)
		if err != nil {
			return nutrition.ManualEntry{}, &ValidationError{Field: field.Key, Invalid: true}
		}
		required[i] = v
	}

	entry := nutrition.ManualEntry{
		Glucose:     required[0],
		Creatinine:  required[1],
		UreaBUN:     required[2],
		Sodium:      required[3],
		Potassium:   required[4],
		Cholesterol: required[5],
		Gender:      strings.TrimSpace(f.Get(KeyGender)),
		Preferences: prefs,
	}

	if raw := strings.TrimSpace(f.Get(KeyAge)); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return nutrition.ManualEntry{}, &ValidationError{Field: KeyAge, Invalid: true}
		}
		entry.Age = &age
	}

	optional := []struct {
		key string
		dst **float64
	}{
		{KeyHemoglobin, &entry.Hemoglobin},
		{KeyHbA1c, &entry.HbA1c},
	}
	for _, o := range optional {
		raw := strings.TrimSpace(f.Get(o.key))
		if raw == "" {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			return nutrition.ManualEntry{}, &ValidationError{Field: o.key, Invalid: true}
		}
		*o.dst = &v
	}

	return entry, nil
}

// ParseAssignments fills a form from "key=value" pairs separated by spaces,
// commas or newlines. Unknown keys are reported.
func ParseAssignments(form *ManualForm, text string) error {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == ';'
	})
	known := make(map[string]bool)
	for _, f := range BiomarkerFields {
		known[f.Key] = true
	}
	for _, k := range OptionalKeys {
		known[k] = true
	}

	for _, kv := range fields {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", kv)
		}
		key = normalizeKey(key)
		if !known[key] {
			return fmt.Errorf("unknown biomarker %q", key)
		}
		form.Set(key, value)
	}
	return nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "urea", "bun":
		return "urea_bun"
	}
	return key
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", raw)
	}
	return v, nil
}
