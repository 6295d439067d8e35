package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/mrrcast/internal/model"
	"github.com/theirongolddev/mrrcast/internal/projection"
)

func sampleParams() model.ParameterSet {
	return model.ParameterSet{
		KickOff:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:           40,
		TrialToPaidRate: 0.25,
		ChurnRate:       0.05,
		Channels: []model.Channel{{
			Name:       "SEM",
			Kind:       model.ChannelTraffic,
			Initial:    100000,
			Conversion: model.FlatSchedule(0.04),
			CPA:        26,
		}},
		Costs: model.CostAssumptions{Labor: 60000},
	}
}

func loadedApp(t *testing.T, p model.ParameterSet) App {
	t.Helper()
	var m tea.Model = NewApp(p, "test.toml")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(projectCmd(p)())
	return m.(App)
}

func TestAppShowsSummaryAfterProjection(t *testing.T) {
	a := loadedApp(t, sampleParams())
	if !a.loaded || a.err != nil {
		t.Fatalf("loaded=%v err=%v", a.loaded, a.err)
	}
	if got := len(a.proj.Rows); got != model.ProjectionMonths {
		t.Fatalf("rows = %d, want %d", got, model.ProjectionMonths)
	}
	view := a.View()
	for _, want := range []string{"Lifetime value", "SEM", "Peak funding"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary view missing %q", want)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	a := loadedApp(t, sampleParams())

	tests := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}, tabMonthly},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}}, tabYears},
		{tea.KeyMsg{Type: tea.KeyTab}, tabSummary},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, tabYears},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}, tabPayback},
	}
	for _, tt := range tests {
		m, _ := a.Update(tt.msg)
		a = m.(App)
		if a.activeTab != tt.want {
			t.Fatalf("after %q: activeTab = %d, want %d", tt.msg.String(), a.activeTab, tt.want)
		}
		if a.View() == "" {
			t.Fatalf("after %q: empty view", tt.msg.String())
		}
	}
}

func TestAppYearsTabChartsLosses(t *testing.T) {
	p := sampleParams()
	p.Costs.Labor = 500_000
	a := loadedApp(t, p)
	if a.proj.Summary.Years[0].EBT >= 0 {
		t.Fatalf("year 1 EBT = %v, want a loss", a.proj.Summary.Years[0].EBT)
	}
	view := a.renderYearsTab(116)
	for _, want := range []string{"Subscription revenue by year", "EBT by year", "┼", "Y5"} {
		if !strings.Contains(view, want) {
			t.Errorf("years tab missing %q", want)
		}
	}
}

func TestAppMonthlyTableHasEveryMonth(t *testing.T) {
	a := loadedApp(t, sampleParams())
	rows := a.monthly.Rows()
	if len(rows) != model.ProjectionMonths {
		t.Fatalf("table rows = %d, want %d", len(rows), model.ProjectionMonths)
	}
	if rows[0][0] != "Jan 2025" || rows[59][0] != "Dec 2029" {
		t.Errorf("months = %q .. %q", rows[0][0], rows[59][0])
	}
}

func TestAppReportsInvalidParameters(t *testing.T) {
	p := sampleParams()
	p.ChurnRate = 2
	a := loadedApp(t, p)
	if !errors.Is(a.err, projection.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", a.err)
	}
	view := a.View()
	if !strings.Contains(view, "Cannot project test.toml") || !strings.Contains(view, "churn_rate") {
		t.Errorf("error view = %q", view)
	}
}

func TestAppNarrowTerminal(t *testing.T) {
	var m tea.Model = NewApp(sampleParams(), "x")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(m.View(), "too narrow") {
		t.Errorf("view = %q", m.View())
	}
}

func TestAppQuit(t *testing.T) {
	a := loadedApp(t, sampleParams())
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("no command returned for q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
