// Package dashboard holds the screen state shared by the terminal and chat
// front ends: what has been entered, whether a request is in flight, the
// latest result or error, and which day and meal are being viewed.
package dashboard

import (
	"context"

	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"
)

// Mode selects the input path.
type Mode int

const (
	ModeDocument Mode = iota
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "Manual Entry"
	}
	return "Upload Report"
}

// Job is a prepared analysis call. It captures the inputs at submit time.
type Job func(ctx context.Context) (*nutrition.PlanDietResponse, error)

// Dashboard is the single-session screen state.
type Dashboard struct {
	Mode     Mode
	Prefs    *intake.Preferences
	Regions  intake.RegionMenu
	Form     *intake.ManualForm
	Document *intake.Document
	Days     DayNavigator

	loading bool
	result  *nutrition.PlanDietResponse
	errMsg  string
	meal    *nutrition.MealItem
}

// New returns an empty dashboard in document mode.
func New(prefs nutrition.DietaryPreferences) *Dashboard {
	return &Dashboard{
		Mode:  ModeDocument,
		Prefs: intake.NewPreferences(prefs),
		Form:  intake.NewManualForm(),
		Days:  NewDayNavigator(),
	}
}

// ToggleMode switches between document upload and manual entry.
func (d *Dashboard) ToggleMode() {
	if d.Mode == ModeDocument {
		d.Mode = ModeManual
	} else {
		d.Mode = ModeDocument
	}
}

// SelectDocument accepts a PDF upload. A rejected file leaves the previous
// selection in place and shows the rejection.
func (d *Dashboard) SelectDocument(filename string, data []byte) bool {
	doc, err := intake.NewDocument(filename, data)
	if err != nil {
		d.errMsg = gateway.Message(err)
		return false
	}
	d.Document = doc
	d.errMsg = ""
	return true
}

// ClearDocument drops the selected upload.
func (d *Dashboard) ClearDocument() {
	d.Document = nil
}

// Loading reports whether a request is in flight.
func (d *Dashboard) Loading() bool { return d.loading }

// Result is the last successful response, or nil.
func (d *Dashboard) Result() *nutrition.PlanDietResponse { return d.result }

// Err is the message of the last failure, or "".
func (d *Dashboard) Err() string { return d.errMsg }

// CanSubmit reports whether the submit control is enabled.
func (d *Dashboard) CanSubmit() bool {
	if d.loading {
		return false
	}
	return d.Mode == ModeManual || d.Document != nil
}

// Prepare validates the current input and, on success, moves into the
// loading state and returns the call to run. It returns false when submit is
// disabled or when manual validation fails; in the latter case the
// validation message is shown. No request is made in either case.
func (d *Dashboard) Prepare(analyzer gateway.Analyzer) (Job, bool) {
	if !d.CanSubmit() {
		return nil, false
	}

	var job Job
	prefs := d.Prefs.DietaryPreferences
	switch d.Mode {
	case ModeManual:
		entry, err := d.Form.Entry(prefs)
		if err != nil {
			d.errMsg = gateway.Message(err)
			return nil, false
		}
		job = func(ctx context.Context) (*nutrition.PlanDietResponse, error) {
			return analyzer.AnalyzeManual(ctx, entry)
		}
	default:
		doc := *d.Document
		job = func(ctx context.Context) (*nutrition.PlanDietResponse, error) {
			return analyzer.AnalyzeDocument(ctx, doc, prefs)
		}
	}

	d.loading = true
	d.errMsg = ""
	d.result = nil
	return job, true
}

// Complete records the outcome of a job started by Prepare. Loading is
// cleared whatever the outcome.
func (d *Dashboard) Complete(resp *nutrition.PlanDietResponse, err error) {
	d.loading = false
	if err != nil {
		d.errMsg = gateway.Message(err)
		return
	}
	d.result = resp
	d.Days.Reset()
	d.meal = nil
}

// Submit runs Prepare, the job and Complete in one call. It reports whether
// a request was made.
func (d *Dashboard) Submit(ctx context.Context, analyzer gateway.Analyzer) bool {
	job, ok := d.Prepare(analyzer)
	if !ok {
		return false
	}
	d.Complete(job(ctx))
	return true
}

// Reset returns to the input screen, keeping preferences.
func (d *Dashboard) Reset() {
	d.result = nil
	d.errMsg = ""
	d.Document = nil
	d.meal = nil
	d.Form.Reset()
	d.Days.Reset()
}

// CurrentDay is the plan of the day being viewed. A day missing from the
// response yields four empty slots.
func (d *Dashboard) CurrentDay() nutrition.DayPlan {
	if d.result == nil {
		return nutrition.DayPlan{}
	}
	return d.result.Diet.WeekPlan.Day(d.Days.Current())
}

// SelectMeal opens the detail view for item.
func (d *Dashboard) SelectMeal(item nutrition.MealItem) {
	d.meal = &item
}

// CloseMeal closes the detail view.
func (d *Dashboard) CloseMeal() {
	d.meal = nil
}

// SelectedMeal returns the detail view, if open.
func (d *Dashboard) SelectedMeal() (MealDetail, bool) {
	if d.meal == nil {
		return MealDetail{}, false
	}
	return NewMealDetail(*d.meal), true
}
