// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-nutricare/internal/dashboard"
	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// Deps are the collaborators of the dashboard.
type Deps struct {
	Analyzer  gateway.Analyzer
	Exporter  *report.Exporter
	Identity  session.Identity
	ReportDir string
	Prefs     nutrition.DietaryPreferences
	Logger    *zap.Logger
}

type analysisDoneMsg struct {
	resp *nutrition.PlanDietResponse
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}

// field is one text input of the input screen.
type field struct {
	key   string
	input textinput.Model
}

// mealRef points at one item of the viewed day.
type mealRef struct {
	slot nutrition.MealSlot
	item nutrition.MealItem
}

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	deps Deps
	dash *dashboard.Dashboard

	path   textinput.Model
	fields []field
	focus  int

	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	styles   styles

	mealCursor int
	status     string
	width      int
	height     int
}

// New builds the dashboard model.
func New(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	path := textinput.New()
	path.Placeholder = "path/to/lab-report.pdf"
	path.Prompt = "PDF: "
	path.Focus()

	var fields []field
	for _, f := range intake.BiomarkerFields {
		fields = append(fields, newField(f.Key, fmt.Sprintf("%s (%s)", f.Label, f.Unit), f.Range))
	}
	fields = append(fields,
		newField(intake.KeyAge, "Age", "years"),
		newField(intake.KeyGender, "Gender", intake.DefaultGender),
		newField(intake.KeyHemoglobin, "Hemoglobin (g/dL)", "optional"),
		newField(intake.KeyHbA1c, "HbA1c (%)", "optional"),
	)
	for i := range fields {
		if fields[i].key == intake.KeyGender {
			fields[i].input.SetValue(intake.DefaultGender)
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = defaultStyles().Brand

	vp := viewport.New(80, 12)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctx:      ctx,
		deps:     deps,
		dash:     dashboard.New(deps.Prefs),
		path:     path,
		fields:   fields,
		spinner:  sp,
		viewport: vp,
		renderer: renderer,
		styles:   defaultStyles(),
		width:    100,
		height:   40,
	}
}

func newField(key, label, placeholder string) field {
	in := textinput.New()
	in.Prompt = fmt.Sprintf("%-22s", label+":")
	in.Placeholder = placeholder
	in.CharLimit = 16
	return field{key: key, input: in}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height / 3
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.dash.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		m.dash.Complete(msg.resp, msg.err)
		if msg.err != nil {
			m.deps.Logger.Warn("analysis failed", zap.Error(msg.err))
		}
		m.mealCursor = 0
		m.refreshViewport()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.deps.Logger.Error("export failed", zap.Error(msg.err))
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Report saved to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.dash.Result() != nil {
			return m.updateResult(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dash.Regions.Open {
		switch msg.String() {
		case "up", "k":
			m.dash.Regions.Up()
		case "down", "j":
			m.dash.Regions.Down()
		case "enter":
			m.dash.Regions.Choose(m.dash.Prefs)
		case "esc", "ctrl+r":
			m.dash.Regions.Close()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+t":
		m.dash.ToggleMode()
		m.focus = 0
		return m, m.syncFocus()
	case "ctrl+d":
		m.dash.Prefs.CycleDiet()
		return m, nil
	case "ctrl+r":
		m.dash.Regions.Toggle(m.dash.Prefs.Region)
		return m, nil
	case "ctrl+x":
		m.dash.ClearDocument()
		m.path.SetValue("")
		return m, nil
	case "tab", "down":
		if m.dash.Mode == dashboard.ModeManual {
			m.focus = (m.focus + 1) % len(m.fields)
			return m, m.syncFocus()
		}
	case "shift+tab", "up":
		if m.dash.Mode == dashboard.ModeManual {
			m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
			return m, m.syncFocus()
		}
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	if m.dash.Mode == dashboard.ModeManual {
		f := &m.fields[m.focus]
		f.input, cmd = f.input.Update(msg)
		m.dash.Form.Set(f.key, f.input.Value())
	} else {
		m.path, cmd = m.path.Update(msg)
	}
	return m, cmd
}

func (m *Model) syncFocus() tea.Cmd {
	m.path.Blur()
	for i := range m.fields {
		m.fields[i].input.Blur()
	}
	if m.dash.Mode == dashboard.ModeDocument {
		return m.path.Focus()
	}
	return m.fields[m.focus].input.Focus()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.dash.Loading() {
		return m, nil
	}
	m.status = ""

	if m.dash.Mode == dashboard.ModeDocument {
		if p := strings.TrimSpace(m.path.Value()); p != "" {
			data, err := os.ReadFile(p)
			if err != nil {
				m.status = fmt.Sprintf("Cannot read %s", p)
				return m, nil
			}
			if !m.dash.SelectDocument(filepath.Base(p), data) {
				return m, nil
			}
		}
	}

	job, ok := m.dash.Prepare(m.deps.Analyzer)
	if !ok {
		return m, nil
	}
	ctx := m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		resp, err := job(ctx)
		return analysisDoneMsg{resp: resp, err: err}
	})
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if _, open := m.dash.SelectedMeal(); open {
		switch msg.String() {
		case "esc", "enter", "q":
			m.dash.CloseMeal()
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "right", "l":
		m.dash.Days.Next()
		m.mealCursor = 0
	case "left", "h":
		m.dash.Days.Prev()
		m.mealCursor = 0
	case "down", "j":
		if m.mealCursor < len(m.dayMeals())-1 {
			m.mealCursor++
		}
	case "up", "k":
		if m.mealCursor > 0 {
			m.mealCursor--
		}
	case "enter":
		if meals := m.dayMeals(); len(meals) > 0 {
			m.dash.SelectMeal(meals[m.mealCursor].item)
		}
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "e":
		return m, m.export()
	case "n":
		m.dash.Reset()
		m.path.SetValue("")
		for i := range m.fields {
			m.fields[i].input.SetValue("")
			if m.fields[i].key == intake.KeyGender {
				m.fields[i].input.SetValue(intake.DefaultGender)
			}
		}
		m.status = ""
		return m, m.syncFocus()
	}
	return m, nil
}

func (m Model) export() tea.Cmd {
	resp := m.dash.Result()
	deps := m.deps
	return func() tea.Msg {
		path, err := deps.Exporter.Save(deps.ReportDir, resp, deps.Identity)
		return exportDoneMsg{path: path, err: err}
	}
}

// dayMeals flattens the viewed day in slot order.
func (m Model) dayMeals() []mealRef {
	day := m.dash.CurrentDay()
	var out []mealRef
	for _, slot := range nutrition.Slots {
		for _, it := range day.Items(slot) {
			out = append(out, mealRef{slot: slot, item: it})
		}
	}
	return out
}

func (m *Model) refreshViewport() {
	resp := m.dash.Result()
	if resp == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(m.markdown(clinicalMarkdown(resp)))
	m.viewport.GotoTop()
}

func (m Model) markdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Run starts the dashboard on the terminal.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
