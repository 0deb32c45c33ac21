package telegram

import (
	"fmt"
	"strings"

	"ai-nutricare/internal/dashboard"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/metrics"
	"ai-nutricare/internal/nutrition"
	"ai-nutricare/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🥗 *AI-NutriCare*
Clinical analysis and a 7-day diet plan from your lab values.

• Send a lab report *PDF* to analyze it
• /manual glucose=95 creatinine=1.0 urea=15 sodium=140 potassium=4.0 cholesterol=180 \[age=45 gender=Female hemoglobin=13 hba1c=5.6]
• /diet vegetarian | non-vegetarian | both
• /region North | South | East | West | North East | all
• /login email, /signup Name email, /logout, /whoami`

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// formatError renders a failure message. msg may quote raw user input.
func formatError(msg string) string {
	return "❌ " + escape(msg)
}

func formatPreferences(p nutrition.DietaryPreferences) string {
	return fmt.Sprintf("✅ Diet: *%s*, Region: *%s*", escape(string(p.DietType)), escape(intake.RegionLabel(p.Region)))
}

func formatIdentity(id session.Identity) string {
	return fmt.Sprintf("👤 *%s*\n%s", escape(id.Name), escape(id.Email))
}

var tierIcon = map[dashboard.Tier]string{
	dashboard.TierHigh:     "🔴",
	dashboard.TierModerate: "🟠",
	dashboard.TierLow:      "🟢",
}

func formatResultMarkdown(resp *nutrition.PlanDietResponse) string {
	var sb strings.Builder
	pm := resp.Clinical.PatientMetrics
	tier := dashboard.RiskTier(nutrition.RiskPercent(pm.MortalityRisk))

	sb.WriteString("🩺 *Clinical Analysis*\n\n")
	sb.WriteString(fmt.Sprintf("%s *Risk:* %s (%s)\n", tierIcon[tier], nutrition.FormatRiskPercent(pm.MortalityRisk), tier))
	sb.WriteString(fmt.Sprintf("• Glucose: %s mg/dL\n", nutrition.FormatNumber(pm.Glucose)))
	sb.WriteString(fmt.Sprintf("• Creatinine: %s mg/dL\n", nutrition.FormatNumber(pm.Creatinine)))

	tn := resp.Diet.TotalNutrition
	sb.WriteString(fmt.Sprintf("• Daily avg: %s kcal, %sg protein\n\n",
		nutrition.FormatNumber(tn.Calories), nutrition.FormatOneDecimal(tn.Protein)))

	if s := strings.TrimSpace(resp.Clinical.Summary); s != "" {
		sb.WriteString("*Summary*\n")
		sb.WriteString(escape(s))
		sb.WriteString("\n\n")
	}

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
		sb.WriteString(fmt.Sprintf("*%s*\n", l.title))
		for _, it := range l.items {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(it)))
		}
		sb.WriteString("\n")
	}

	if r := strings.TrimSpace(resp.Diet.MedicalReasoning); r != "" {
		sb.WriteString("*Medical Reasoning*\n")
		sb.WriteString(escape(r))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatDayMarkdown(day nutrition.DayPlan, n int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Day %d of %d*\n", n, nutrition.DaysPerWeek))
	for _, slot := range nutrition.Slots {
		items := day.Items(slot)
		sb.WriteString(fmt.Sprintf("\n*%s* _%s_ · %s kcal, %sg protein\n",
			slot, dashboard.MealTime(slot),
			nutrition.FormatNumber(nutrition.SlotCalories(items)),
			nutrition.FormatOneDecimal(nutrition.SlotProtein(items))))
		if len(items) == 0 {
			sb.WriteString("• _No items_\n")
		}
		for _, it := range items {
			sb.WriteString(fmt.Sprintf("• %s (%s kcal)\n", escape(it.Item), nutrition.FormatNumber(it.Calories)))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// dayKeyboard hides the arrow that would leave 1..7.
func dayKeyboard(day int) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if day > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀ Day "+fmt.Sprint(day-1), "day|prev"))
	}
	if day < nutrition.DaysPerWeek {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Day "+fmt.Sprint(day+1)+" ▶", "day|next"))
	}
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📄 Download PDF report", "pdf"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatHealth(h metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", h.AllocMB, h.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", h.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s", h.DataDiskSize))
	return sb.String()
}
