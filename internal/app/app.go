package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ai-nutricare/internal/config"
	"ai-nutricare/internal/dashboard"
	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"
	"ai-nutricare/internal/tui"

	"go.uber.org/zap"
)

// App holds the application's dependencies.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	analyzer   gateway.Analyzer
	identities *session.Manager
	exporter   *report.Exporter
	out        io.Writer
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	logger *zap.Logger,
	analyzer gateway.Analyzer,
	identities *session.Manager,
	exporter *report.Exporter,
	out io.Writer,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		analyzer:   analyzer,
		identities: identities,
		exporter:   exporter,
		out:        out,
	}
}

// AnalyzeRequest is one command-line analysis.
type AnalyzeRequest struct {
	// DocumentPath selects upload mode; otherwise Form is submitted.
	DocumentPath string
	Form         *intake.ManualForm
	Prefs        nutrition.DietaryPreferences

	// Day prints a single day (1..7); 0 prints the whole week.
	Day    int
	JSON   bool
	Export bool
}

// Analyze submits the request and prints the result.
func (a *App) Analyze(ctx context.Context, req AnalyzeRequest) (*nutrition.PlanDietResponse, error) {
	d := dashboard.New(req.Prefs)

	if req.DocumentPath != "" {
		data, err := os.ReadFile(req.DocumentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read report %s: %w", req.DocumentPath, err)
		}
		if !d.SelectDocument(filepath.Base(req.DocumentPath), data) {
			return nil, errors.New(d.Err())
		}
	} else {
		d.Mode = dashboard.ModeManual
		if req.Form != nil {
			d.Form = req.Form
		}
	}

	a.logger.Info("submitting analysis",
		zap.Stringer("mode", d.Mode),
		zap.String("diet_type", string(req.Prefs.DietType)),
		zap.String("region", string(req.Prefs.Region)))

	if !d.Submit(ctx, a.analyzer) || d.Err() != "" {
		return nil, errors.New(d.Err())
	}
	resp := d.Result()

	if req.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
	} else {
		a.PrintResult(resp, req.Day)
	}

	if req.Export {
		if _, err := a.ExportReport(ctx, resp, a.cfg.ReportDir); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// PrintResult writes a plain-text rendition of resp. day 0 prints all days.
func (a *App) PrintResult(resp *nutrition.PlanDietResponse, day int) {
	pm := resp.Clinical.PatientMetrics
	pct := nutrition.RiskPercent(pm.MortalityRisk)

	fmt.Fprintln(a.out, "=== CLINICAL SUMMARY ===")
	fmt.Fprintf(a.out, "Risk:       %s (%s)\n", nutrition.FormatRiskPercent(pm.MortalityRisk), dashboard.RiskTier(pct))
	fmt.Fprintf(a.out, "Glucose:    %s mg/dL\n", nutrition.FormatNumber(pm.Glucose))
	fmt.Fprintf(a.out, "Creatinine: %s mg/dL\n", nutrition.FormatNumber(pm.Creatinine))
	tn := resp.Diet.TotalNutrition
	fmt.Fprintf(a.out, "Daily avg:  %s kcal, %sg protein, %sg fat, %sg carbs\n",
		nutrition.FormatNumber(tn.Calories), nutrition.FormatOneDecimal(tn.Protein),
		nutrition.FormatOneDecimal(tn.Fat), nutrition.FormatOneDecimal(tn.Carbs))
	if resp.Clinical.Summary != "" {
		fmt.Fprintf(a.out, "\n%s\n", resp.Clinical.Summary)
	}
	printList(a.out, "Conditions", resp.Clinical.Conditions)
	printList(a.out, "Avoid", resp.Clinical.Avoid)
	printList(a.out, "Recommended", resp.Clinical.Recommend)

	if resp.Diet.MedicalReasoning != "" {
		fmt.Fprintln(a.out, "\n=== MEDICAL REASONING ===")
		fmt.Fprintln(a.out, resp.Diet.MedicalReasoning)
	}

	first, last := 1, nutrition.DaysPerWeek
	if day >= 1 && day <= nutrition.DaysPerWeek {
		first, last = day, day
	}
	fmt.Fprintln(a.out, "\n=== DIET PLAN ===")
	for n := first; n <= last; n++ {
		plan := resp.Diet.WeekPlan.Day(n)
		fmt.Fprintf(a.out, "\nDay %d\n", n)
		for _, slot := range nutrition.Slots {
			items := plan.Items(slot)
			fmt.Fprintf(a.out, "  %-10s %-20s %s kcal, %sg protein\n", slot, dashboard.MealTime(slot),
				nutrition.FormatNumber(nutrition.SlotCalories(items)),
				nutrition.FormatOneDecimal(nutrition.SlotProtein(items)))
			for _, it := range items {
				fmt.Fprintf(a.out, "    - %s (%s kcal)\n", it.Item, nutrition.FormatNumber(it.Calories))
			}
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it)
	}
}

// ExportReport writes the PDF for resp into dir under the held identity.
func (a *App) ExportReport(ctx context.Context, resp *nutrition.PlanDietResponse, dir string) (string, error) {
	who, err := a.identities.Current(ctx)
	if err != nil {
		a.logger.Warn("identity lookup failed, using defaults", zap.Error(err))
	}
	path, err := a.exporter.Save(dir, resp, who)
	if err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}
	a.logger.Info("report exported", zap.String("path", path))
	fmt.Fprintf(a.out, "Report saved to %s\n", path)
	return path, nil
}

// ExportFromFile renders a previously saved JSON response.
func (a *App) ExportFromFile(ctx context.Context, jsonPath, dir string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", jsonPath, err)
	}
	var resp nutrition.PlanDietResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", jsonPath, err)
	}
	return a.ExportReport(ctx, &resp, dir)
}

// SignIn holds email (and an inferred name) as the current identity.
func (a *App) SignIn(ctx context.Context, email string) error {
	id, err := a.identities.SignIn(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", id.Name, id.Email)
	return nil
}

// SignUp holds name and email as the current identity.
func (a *App) SignUp(ctx context.Context, name, email string) error {
	id, err := a.identities.SignUp(ctx, name, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s <%s>\n", id.Name, id.Email)
	return nil
}

// SignOut forgets the held identity.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.identities.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// WhoAmI prints the held identity or the defaults.
func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.identities.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", id.Name, id.Email)
	return nil
}

// Dashboard runs the interactive terminal dashboard.
func (a *App) Dashboard(ctx context.Context, prefs nutrition.DietaryPreferences) error {
	who, err := a.identities.Current(ctx)
	if err != nil {
		a.logger.Warn("identity lookup failed, using defaults", zap.Error(err))
	}
	return tui.Run(ctx, tui.Deps{
		Analyzer:  a.analyzer,
		Exporter:  a.exporter,
		Identity:  who,
		ReportDir: a.cfg.ReportDir,
		Prefs:     prefs,
		Logger:    a.logger,
	})
}
