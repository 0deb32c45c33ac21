// Package report renders an analysis result as a printable A4 PDF.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-nutricare/internal/nutrition"
	"ai-nutricare/internal/session"

	"github.com/go-pdf/fpdf"
)

const (
	margin     = 15.0
	lineHeight = 5.0
	topY       = 20.0
	font       = "Helvetica"

	brand   = "AI-NutriCare"
	tagline = "Clinical Nutrition Intelligence Platform"
	title   = "Clinical Analysis & Diet Plan"
)

type rgb struct{ r, g, b int }

var (
	teal      = rgb{6, 182, 212}
	darkTeal  = rgb{13, 148, 136}
	panelFill = rgb{240, 253, 250}
	dayFill   = rgb{220, 252, 231}
	dayText   = rgb{22, 101, 52}
	stripe    = rgb{245, 247, 250}
	border    = rgb{220, 220, 220}
	ink       = rgb{40, 40, 40}
	muted     = rgb{100, 100, 100}
	footerInk = rgb{150, 150, 150}
	white     = rgb{255, 255, 255}
)

// Exporter renders reports.
type Exporter struct {
	now      func() time.Time
	compress bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock fixes the time used for the filename and the printed date.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithoutCompression writes plain page streams.
func WithoutCompression() Option {
	return func(e *Exporter) { e.compress = false }
}

// NewExporter returns an Exporter using the wall clock.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{now: time.Now, compress: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Filename is AI-NutriCare_Report_<YYYY-MM-DD>.pdf for today's UTC date.
func (e *Exporter) Filename() string {
	return fmt.Sprintf("AI-NutriCare_Report_%s.pdf", e.now().UTC().Format("2006-01-02"))
}

// Save writes the report into dir and returns its path.
func (e *Exporter) Save(dir string, resp *nutrition.PlanDietResponse, who session.Identity) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, e.Filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := e.Render(f, resp, who); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}
	return path, nil
}

// Bytes renders the report in memory.
func (e *Exporter) Bytes(resp *nutrition.PlanDietResponse, who session.Identity) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.Render(&buf, resp, who); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes the PDF to w and returns the page count.
func (e *Exporter) Render(w io.Writer, resp *nutrition.PlanDietResponse, who session.Identity) (int, error) {
	now := e.now()
	// Footers print the page total, so the first pass only counts pages.
	pages := e.compose(now, resp, who, 0).PageCount()
	pdf := e.compose(now, resp, who, pages)
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("failed to render report: %w", err)
	}
	return pages, nil
}

func (e *Exporter) compose(now time.Time, resp *nutrition.PlanDietResponse, who session.Identity, total int) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetCreationDate(now)
	pdf.SetTitle(title, true)
	pdf.SetCreator(brand, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)

	l := &layout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), total: total}
	l.pageW, l.pageH = pdf.GetPageSize()
	l.contentW = l.pageW - 2*margin
	l.bottom = l.pageH - 20

	pdf.SetFooterFunc(l.footer)
	pdf.AddPage()

	l.header(now, who)
	l.summary(resp.Clinical.Summary)
	l.metrics(resp.Clinical.PatientMetrics)
	l.reasoning(resp.Diet.MedicalReasoning)
	l.dietPlan(resp.Diet.WeekPlan)
	return pdf
}

type layout struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	pageW    float64
	pageH    float64
	contentW float64
	bottom   float64
	y        float64
	total    int
}

func (l *layout) setFont(style string, size float64, c rgb) {
	l.pdf.SetFont(font, style, size)
	l.pdf.SetTextColor(c.r, c.g, c.b)
}

func (l *layout) fill(x, y, w, h float64, c rgb) {
	l.pdf.SetFillColor(c.r, c.g, c.b)
	l.pdf.Rect(x, y, w, h, "F")
}

func (l *layout) text(x, y float64, s string) {
	l.pdf.Text(x, y, l.tr(s))
}

func (l *layout) width(s string) float64 {
	return l.pdf.GetStringWidth(l.tr(s))
}

func (l *layout) newPage() {
	l.pdf.AddPage()
	l.y = topY
}

func (l *layout) footer() {
	s := footerText(l.pdf.PageNo(), l.total)
	l.setFont("", 8, footerInk)
	l.text((l.pageW-l.width(s))/2, l.pageH-10, s)
}

func footerText(page, total int) string {
	return fmt.Sprintf("Page %d of %d - Generated by %s", page, total, brand)
}

func (l *layout) header(now time.Time, who session.Identity) {
	l.fill(0, 0, l.pageW, 5, teal)

	l.y = topY
	l.setFont("B", 22, teal)
	l.text(margin, l.y, brand)
	l.setFont("", 10, muted)
	l.text(margin, l.y+7, tagline)

	l.setFont("", 10, ink)
	info := []string{
		"Date: " + now.Format("02 Jan 2006"),
		"Patient: " + who.Name,
		"Email: " + who.Email,
	}
	for i, s := range info {
		l.text(l.pageW-margin-l.width(s), l.y+float64(i)*6, s)
	}
	l.y += 25

	l.setFont("B", 16, teal)
	l.text((l.pageW-l.width(title))/2, l.y, title)
	l.y += 15
}

// summary draws the shaded panel. It is at least 35mm tall and grows with
// the text; an oversized summary continues on the next page.
func (l *layout) summary(text string) {
	l.setFont("", 10, ink)
	lines := l.wrap(text, l.contentW-10)

	first := true
	for len(lines) > 0 || first {
		headingOffset := 10.0
		textOffset := 18.0
		if !first {
			headingOffset, textOffset = 0, 8
		}
		fit := int((l.bottom-(l.y+textOffset))/lineHeight) + 1
		if fit < 1 {
			l.newPage()
			continue
		}
		n := len(lines)
		if n > fit {
			n = fit
		}
		h := textOffset + float64(n-1)*lineHeight + 7
		if first && h < 35 {
			h = 35
		}
		l.fill(margin, l.y, l.contentW, h, panelFill)

		if first {
			l.setFont("B", 12, darkTeal)
			l.text(margin+5, l.y+headingOffset, "Clinical Summary")
		}
		l.setFont("", 10, ink)
		for i, line := range lines[:n] {
			l.text(margin+5, l.y+textOffset+float64(i)*lineHeight, line)
		}
		lines = lines[n:]
		l.y += h + 10
		first = false
		if len(lines) > 0 {
			l.newPage()
		}
	}
}

func (l *layout) heading(s string, size float64, c rgb) {
	l.setFont("B", size, c)
	l.text(margin, l.y, s)
}

func (l *layout) metrics(m nutrition.PatientMetrics) {
	l.heading("Patient Metrics & Risk Assessment", 12, ink)
	l.y += 5

	rows := [][]string{
		{"Risk Level", fmt.Sprintf("%s%% (Mortality/ICU Risk)", nutrition.FormatOneDecimal(nutrition.RiskPercent(m.MortalityRisk)))},
		{"Glucose", nutrition.FormatNumber(m.Glucose) + " mg/dL"},
		{"Creatinine", nutrition.FormatNumber(m.Creatinine) + " mg/dL"},
	}
	widths := []float64{60, l.contentW - 60}
	const rowH = 8.0

	l.row(widths, []string{"Metric", "Value"}, rowH, teal, white, "B")
	for i, r := range rows {
		bg := white
		if i%2 == 0 {
			bg = stripe
		}
		l.row(widths, r, rowH, bg, ink, "")
	}
	l.y += 15
}

// row draws single-line cells at l.y and advances past them.
func (l *layout) row(widths []float64, cells []string, h float64, bg, fg rgb, style string) {
	x := margin
	l.pdf.SetDrawColor(border.r, border.g, border.b)
	l.pdf.SetFillColor(bg.r, bg.g, bg.b)
	l.setFont(style, 10, fg)
	for i, w := range widths {
		l.pdf.Rect(x, l.y, w, h, "FD")
		l.text(x+2, l.y+h/2+1.5, cells[i])
		x += w
	}
	l.y += h
}

func (l *layout) reasoning(text string) {
	l.heading("Medical Reasoning & Conditions", 12, ink)
	l.y += 5

	l.setFont("", 10, ink)
	baseline := l.y + 5
	for _, line := range l.wrap(text, l.contentW) {
		if baseline > l.bottom {
			l.newPage()
			l.setFont("", 10, ink)
			baseline = l.y
		}
		l.text(margin, baseline, line)
		baseline += lineHeight
	}
	l.y = baseline + 10

	if l.y > l.pageH-50 {
		l.newPage()
	}
}

var planColumns = []string{"Meal Time", "Recommended Items", "Calories", "Protein"}

func (l *layout) planWidths() []float64 {
	return []float64{30, l.contentW - 80, 25, 25}
}

func (l *layout) dietPlan(week nutrition.WeekPlan) {
	l.heading("7-Day Personalized Diet Plan", 14, teal)
	l.y += 10

	widths := l.planWidths()
	const headerH, dayH = 8.0, 8.0
	l.row(widths, planColumns, headerH, teal, white, "B")

	breakTo := func(need float64) {
		if l.y+need > l.bottom {
			l.newPage()
			l.row(widths, planColumns, headerH, teal, white, "B")
		}
	}

	for day := 1; day <= nutrition.DaysPerWeek; day++ {
		plan := week.Day(day)
		cells := make([][]string, len(nutrition.Slots))
		heights := make([]float64, len(nutrition.Slots))
		for i, slot := range nutrition.Slots {
			cells[i] = l.mealCells(slot, plan.Items(slot), widths[1])
			heights[i] = mealRowHeight(len(cells[i]) - 3)
		}

		// Keep the day label with its first meal.
		breakTo(dayH + heights[0])
		l.fill(margin, l.y, l.contentW, dayH, dayFill)
		l.setFont("B", 10, dayText)
		l.text(margin+2, l.y+dayH/2+1.5, fmt.Sprintf("Day %d", day))
		l.y += dayH

		for i := range nutrition.Slots {
			breakTo(heights[i])
			l.mealRow(widths, cells[i], heights[i])
		}
	}
}

// mealCells returns slot, calories, protein, then the wrapped item lines.
func (l *layout) mealCells(slot nutrition.MealSlot, items []nutrition.MealItem, width float64) []string {
	l.setFont("", 9, ink)
	cells := []string{
		string(slot),
		nutrition.FormatNumber(nutrition.SlotCalories(items)) + " kcal",
		nutrition.FormatOneDecimal(nutrition.SlotProtein(items)) + "g",
	}
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = fmt.Sprintf("%s (%s kcal)", it.Item, nutrition.FormatNumber(it.Calories))
	}
	return append(cells, l.wrap(strings.Join(labels, "\n"), width-4)...)
}

func mealRowHeight(lines int) float64 {
	h := float64(lines)*4.5 + 4
	if h < 8 {
		return 8
	}
	return h
}

func (l *layout) mealRow(widths []float64, cells []string, h float64) {
	l.pdf.SetDrawColor(border.r, border.g, border.b)
	x := margin
	for _, w := range widths {
		l.pdf.Rect(x, l.y, w, h, "D")
		x += w
	}

	l.setFont("B", 9, ink)
	l.text(margin+2, l.y+5.5, cells[0])
	l.setFont("", 9, ink)
	for i, line := range cells[3:] {
		l.text(margin+widths[0]+2, l.y+5.5+float64(i)*4.5, line)
	}
	l.text(margin+widths[0]+widths[1]+2, l.y+5.5, cells[1])
	l.text(margin+widths[0]+widths[1]+widths[2]+2, l.y+5.5, cells[2])
	l.y += h
}

// wrap breaks text into lines no wider than w in the current font,
// honouring embedded newlines. Empty text yields one empty line.
func (l *layout) wrap(text string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, word := range words {
			for l.width(word) > w && len([]rune(word)) > 1 {
				head, tail := l.splitWord(word, w)
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, head)
				word = tail
			}
			switch {
			case cur == "":
				cur = word
			case l.width(cur+" "+word) <= w:
				cur += " " + word
			default:
				lines = append(lines, cur)
				cur = word
			}
		}
		lines = append(lines, cur)
	}
	return lines
}

// splitWord cuts the longest prefix of word that fits in w.
func (l *layout) splitWord(word string, w float64) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && l.width(string(runes[:n+1])) <= w {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
