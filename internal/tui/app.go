// Package tui provides the interactive Bubble Tea viewer and the assumptions
// wizard for mrrcast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
	"github.com/theirongolddev/mrrcast/internal/tui/components"
	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

// ProjectedMsg is sent when the projection finishes computing.
type ProjectedMsg struct {
	Projection model.Projection
	Err        error
	Elapsed    time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	params  model.ParameterSet
	source  string
	proj    model.Projection
	loaded  bool
	err     error
	elapsed time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	monthly table.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a viewer for p. source labels where the parameters came
// from (a file path or scenario name).
func NewApp(p model.ParameterSet, source string) App {
	t := theme.Active

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	return App{
		params:  p,
		source:  source,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		monthly: newMonthlyTable(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, projectCmd(a.params))
}

func projectCmd(p model.ParameterSet) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		proj, err := projection.Project(p)
		return ProjectedMsg{Projection: proj, Err: err, Elapsed: time.Since(start)}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resizeTable()
		return a, nil

	case ProjectedMsg:
		a.loaded = true
		a.err = msg.Err
		a.elapsed = msg.Elapsed
		if msg.Err == nil {
			a.proj = msg.Projection
			a.monthly.SetRows(monthlyRows(a.proj))
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		a.resizeTable()
		return a, nil
	case key.Matches(msg, a.keys.NextTab):
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case key.Matches(msg, a.keys.PrevTab):
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	}

	if runes := msg.Runes; len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if a.activeTab == tabMonthly {
		var cmd tea.Cmd
		a.monthly, cmd = a.monthly.Update(msg)
		return a, cmd
	}
	return a, nil
}

const (
	tabSummary = iota
	tabMonthly
	tabPayback
	tabYears
)

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentHeight is the height left between the tab bar and the status bar.
func (a App) contentHeight() int {
	h := a.height - 1 - lipgloss.Height(a.help.View(a.keys))
	return max(minContentHeight, h)
}

func (a *App) resizeTable() {
	a.monthly.SetWidth(a.contentWidth())
	a.monthly.SetHeight(a.contentHeight() - 1)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  mrrcast needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.err != nil {
		return a.viewError()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logoStyle.Render("◈ mrrcast") + subtitleStyle.Render(" · 60-month projection") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Projecting "+a.source)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewError() string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Negative).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(errStyle.Render("Cannot project " + a.source))
	b.WriteString("\n\n")
	for _, pe := range projection.ParameterErrors(a.err) {
		b.WriteString(mutedStyle.Render("  • " + pe.Error()))
		b.WriteString("\n")
	}
	if len(projection.ParameterErrors(a.err)) == 0 {
		b.WriteString(mutedStyle.Render("  " + a.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(mutedStyle.Render("press q to quit"))
	return b.String()
}

func (a App) viewMain() string {
	t := theme.Active
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, a.width)
	source := fmt.Sprintf("%s · %s", a.source, a.elapsed.Round(time.Microsecond))
	statusBar := components.RenderStatusBar(a.width, a.help.View(a.keys), source)

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	contentH = max(minContentHeight, contentH)

	var content string
	switch a.activeTab {
	case tabSummary:
		content = a.renderSummaryTab(cw)
	case tabMonthly:
		content = a.monthly.View()
	case tabPayback:
		content = a.renderPaybackTab(cw)
	case tabYears:
		content = a.renderYearsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(a.width, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
