package tui

import (
	"fmt"
	"strings"

	"ai-nutricare/internal/dashboard"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Brand.Render("AI-NutriCare"))
	b.WriteString(m.styles.Muted.Render("  Clinical Nutrition Intelligence"))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("   %s <%s>", m.deps.Identity.Name, m.deps.Identity.Email)))
	b.WriteString("\n\n")

	switch {
	case m.dash.Result() == nil:
		b.WriteString(m.inputView())
	default:
		if detail, open := m.dash.SelectedMeal(); open {
			b.WriteString(m.mealView(detail))
		} else {
			b.WriteString(m.resultView())
		}
	}

	if msg := m.dash.Err(); msg != "" {
		b.WriteString("\n" + m.styles.Error.Render(msg) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.styles.Status.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) inputView() string {
	var b strings.Builder

	tabs := []dashboard.Mode{dashboard.ModeDocument, dashboard.ModeManual}
	for _, t := range tabs {
		label := " " + t.String() + " "
		if t == m.dash.Mode {
			b.WriteString(m.styles.Selected.Render(label))
		} else {
			b.WriteString(m.styles.Muted.Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	prefs := m.dash.Prefs
	b.WriteString(fmt.Sprintf("Diet: %s    Region: %s\n\n",
		m.styles.Active.Render(string(prefs.DietType)),
		m.styles.Active.Render(intake.RegionLabel(prefs.Region))))

	if m.dash.Regions.Open {
		var menu strings.Builder
		for i, opt := range intake.RegionOptions {
			line := opt.Label
			if i == m.dash.Regions.Cursor() {
				line = m.styles.Selected.Render("> " + line)
			} else {
				line = "  " + line
			}
			menu.WriteString(line + "\n")
		}
		b.WriteString(m.styles.Panel.Render(strings.TrimRight(menu.String(), "\n")))
		b.WriteString("\n")
		return b.String()
	}

	if m.dash.Mode == dashboard.ModeDocument {
		b.WriteString(m.path.View() + "\n")
		if doc := m.dash.Document; doc != nil {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Selected: %s (%.1f KB)", doc.Filename, float64(len(doc.Data))/1024)))
			b.WriteString("\n")
		}
	} else {
		for _, f := range m.fields {
			b.WriteString(f.input.View() + "\n")
		}
	}
	b.WriteString("\n")

	if m.dash.Loading() {
		b.WriteString(m.spinner.View() + " Analyzing...\n")
	} else {
		b.WriteString(m.styles.Help.Render("enter analyze • ctrl+t switch input • ctrl+d diet • ctrl+r region • ctrl+x clear file • esc quit"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) resultView() string {
	resp := m.dash.Result()
	var b strings.Builder

	pm := resp.Clinical.PatientMetrics
	pct := nutrition.RiskPercent(pm.MortalityRisk)
	tier := dashboard.RiskTier(pct)
	tn := resp.Diet.TotalNutrition
	stats := []string{
		"Risk " + tierStyle(tier).Render(fmt.Sprintf("%s %s", nutrition.FormatRiskPercent(pm.MortalityRisk), tier)),
		fmt.Sprintf("Glucose %s mg/dL", nutrition.FormatNumber(pm.Glucose)),
		fmt.Sprintf("Creatinine %s mg/dL", nutrition.FormatNumber(pm.Creatinine)),
		fmt.Sprintf("Daily avg %s kcal / %sg protein", nutrition.FormatNumber(tn.Calories), nutrition.FormatOneDecimal(tn.Protein)),
	}
	b.WriteString(strings.Join(stats, "  │  "))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.dayView())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("←/→ day • ↑/↓ meal • enter details • pgup/pgdn scroll • e export PDF • n new analysis • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) dayView() string {
	day := m.dash.CurrentDay()
	n := m.dash.Days.Current()

	var b strings.Builder
	prev, next := "◀", "▶"
	if n == 1 {
		prev = " "
	}
	if n == nutrition.DaysPerWeek {
		next = " "
	}
	b.WriteString(m.styles.Day.Render(fmt.Sprintf("%s Day %d of %d %s", prev, n, nutrition.DaysPerWeek, next)))
	b.WriteString("\n")

	idx := 0
	for _, slot := range nutrition.Slots {
		items := day.Items(slot)
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			m.styles.Title.Render(string(slot)),
			m.styles.Muted.Render(dashboard.MealTime(slot)),
			m.styles.Muted.Render(fmt.Sprintf("%s kcal • %sg protein",
				nutrition.FormatNumber(nutrition.SlotCalories(items)),
				nutrition.FormatOneDecimal(nutrition.SlotProtein(items))))))
		if len(items) == 0 {
			b.WriteString(m.styles.Muted.Render("    No items") + "\n")
		}
		for _, it := range items {
			line := fmt.Sprintf("%s (%s kcal)", it.Item, nutrition.FormatNumber(it.Calories))
			if idx == m.mealCursor {
				line = m.styles.Selected.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString("  " + line + "\n")
			idx++
		}
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) mealView(d dashboard.MealDetail) string {
	var b strings.Builder
	b.WriteString(m.styles.Brand.Render(d.Item) + "\n\n")
	b.WriteString(fmt.Sprintf("Calories %s kcal   Protein %sg   Fat %sg   Carbs %sg\n\n",
		nutrition.FormatNumber(d.Calories),
		nutrition.FormatOneDecimal(d.Protein),
		nutrition.FormatOneDecimal(d.Fat),
		nutrition.FormatOneDecimal(d.Carbs)))
	if len(d.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(d.Tags, ", ") + "\n\n")
	}
	b.WriteString(m.styles.Title.Render("Ingredients") + "\n")
	for _, ing := range d.Ingredients {
		b.WriteString("  • " + ing + "\n")
	}
	b.WriteString("\n" + m.styles.Title.Render("Origin") + "\n")
	b.WriteString(lipgloss.NewStyle().Width(m.width-4).Render(d.Origin) + "\n\n")
	b.WriteString(m.styles.Help.Render("esc close"))
	return m.styles.Panel.Render(b.String())
}

// clinicalMarkdown is the scrollable clinical section.
func clinicalMarkdown(resp *nutrition.PlanDietResponse) string {
	var b strings.Builder
	b.WriteString("## Clinical Summary\n\n")
	b.WriteString(resp.Clinical.Summary + "\n\n")

	lists := []struct {
		title string
		items []string
	}{
		{"Conditions", resp.Clinical.Conditions},
		{"Avoid", resp.Clinical.Avoid},
		{"Recommended", resp.Clinical.Recommend},
	}
	for _, l := range lists {
		if len(l.items) == 0 {
			continue
		}
		b.WriteString("### " + l.title + "\n\n")
		for _, it := range l.items {
			b.WriteString("- " + it + "\n")
		}
		b.WriteString("\n")
	}

	if r := strings.TrimSpace(resp.Diet.MedicalReasoning); r != "" {
		b.WriteString("## Medical Reasoning\n\n" + r + "\n")
	}
	return b.String()
}
