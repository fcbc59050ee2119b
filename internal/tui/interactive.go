package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/report"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Regenerate produces a fresh entry for a scenario under a new seed.
type Regenerate func(name string, seed int64) (report.Entry, error)

type state int

const (
	stateMenu state = iota
	stateDetail
)

type model struct {
	state   state
	cursor  int
	entries []report.Entry
	regen   Regenerate

	charts bool
	scroll int
	err    error

	width  int
	height int
}

// New builds the browser over entries. regen may be nil, in which case
// reseeding is disabled.
func New(entries []report.Entry, regen Regenerate) tea.Model {
	return model{
		state:   stateMenu,
		entries: append([]report.Entry(nil), entries...),
		regen:   regen,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateDetail:
		return m.detailKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) > 0 {
			m.state = stateDetail
			m.scroll = 0
			m.err = nil
		}
	}
	return m, nil
}

func (m model) detailKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
		return m, tea.ClearScreen
	case "up", "k":
		if m.scroll > 0 {
			m.scroll--
		}
	case "down", "j":
		m.scroll++
	case "c":
		m.charts = !m.charts
		m.scroll = 0
	case "n":
		if m.regen == nil {
			return m, nil
		}
		e := m.entries[m.cursor]
		next, err := m.regen(e.Name, e.Seed+1)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.entries[m.cursor] = next
	}
	return m, nil
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateDetail:
		return m.viewDetail()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("c o n v l a b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		tags := m.tags(e.Report)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-20s", e.Name)) + tags + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-20s", e.Name)) + tags + "\n")
		}
	}

	if len(m.entries) > 0 {
		b.WriteString("\n      " + dim.Render(m.entries[m.cursor].Description) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter open   q quit") + "\n")

	return b.String()
}

// tags summarizes a report as a beta mark plus one mark per index.
func (m model) tags(rep *analysis.Report) string {
	var sb strings.Builder
	sb.WriteString("β" + mark(rep.Beta.Class, rep.BetaErr) + " ")
	for _, tr := range rep.Trends {
		sb.WriteString(dimmer.Render(string(tr.Index)[:1]) + mark(tr.Class, tr.Err) + " ")
	}
	return sb.String()
}

func mark(c analysis.Classification, err error) string {
	if err != nil {
		return yellow.Render("!")
	}
	switch c {
	case analysis.Convergence:
		return green.Render("↓")
	case analysis.Divergence:
		return red.Render("↑")
	}
	return dimmer.Render("·")
}

func (m model) viewDetail() string {
	e := m.entries[m.cursor]

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("   " + cyan.Render(e.Name) + "  " + dim.Render(fmt.Sprintf("seed %d", e.Seed)) + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 40)) + "\n\n")

	width := m.width - 24
	if width < 20 {
		width = 20
	}
	for _, idx := range e.Report.Config.Indices {
		data := make([]float64, 0, len(e.Report.Series))
		for _, pt := range e.Report.Series {
			data = append(data, pt.Value(idx))
		}
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render(fmt.Sprintf("%-9s", idx)), magenta.Render(sparkline(data, width))))
	}
	b.WriteString("\n")

	opts := report.DefaultOptions()
	opts.Charts = m.charts
	opts.Width = width
	body := strings.Split(report.Text(e.Name, e.Report, opts), "\n")

	// the header above and the footer below take about ten lines
	visible := m.height - 10 - len(e.Report.Config.Indices)
	if visible < 5 {
		visible = 5
	}
	start := m.scroll
	if start > len(body)-1 {
		start = len(body) - 1
	}
	end := start + visible
	if end > len(body) {
		end = len(body)
	}
	for _, line := range body[start:end] {
		b.WriteString("   " + line + "\n")
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	help := "   ↑↓ scroll  c charts  esc back"
	if m.regen != nil {
		help = "   ↑↓ scroll  c charts  n reseed  esc back"
	}
	b.WriteString("\n" + dim.Render(help) + "\n")

	return b.String()
}

// sparkline draws data in block characters; NaN values become gaps.
func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 || math.IsInf(rang, 0) {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		if math.IsNaN(v) {
			sb.WriteRune(' ')
			continue
		}
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(entries []report.Entry, regen Regenerate) error {
	p := tea.NewProgram(New(entries, regen), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
