package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/akmonengine/plume"
	"github.com/charmbracelet/lipgloss"
)

// RunStats accumulates per-step reports over a run
type RunStats struct {
	Steps       int
	Backtracks  int
	Fallbacks   int
	Contacts    int
	EnergyStart float64
	EnergyEnd   float64
	Elapsed     time.Duration
}

// Record adds the last step of w
func (s *RunStats) Record(w *plume.World) {
	report := w.LastStep()
	s.Steps++
	s.Backtracks += report.Backtracks
	s.Contacts += report.Contacts
	if report.Fallback {
		s.Fallbacks++
	}
	s.EnergyEnd = w.Energy()
}

// Drift is the relative energy change, or the absolute one when the run started at zero
func (s RunStats) Drift() float64 {
	if s.EnergyStart == 0 {
		return s.EnergyEnd
	}
	return (s.EnergyEnd - s.EnergyStart) / s.EnergyStart
}

// Summary renders the outcome of a headless run
func Summary(name string, w *plume.World, s RunStats) string {
	rows := [][2]string{
		{"time", fmt.Sprintf("%.4fs", w.Time())},
		{"steps", fmt.Sprintf("%d", s.Steps)},
		{"bodies", fmt.Sprintf("%d", len(w.Bodies()))},
		{"contacts", fmt.Sprintf("%d", s.Contacts)},
		{"backtracks", fmt.Sprintf("%d", s.Backtracks)},
		{"fallbacks", fmt.Sprintf("%d", s.Fallbacks)},
		{"energy", fmt.Sprintf("%.4f → %.4f", s.EnergyStart, s.EnergyEnd)},
		{"drift", fmt.Sprintf("%+.3f%%", 100*s.Drift())},
		{"ang. momentum", fmt.Sprintf("%.4f", w.AngularMomentum())},
	}
	if s.Elapsed > 0 {
		rows = append(rows, [2]string{"wall", s.Elapsed.Round(time.Microsecond).String()})
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render(name) + "\n")
	for _, row := range rows {
		value := white.Render(row[1])
		if row[0] == "fallbacks" && s.Fallbacks > 0 {
			value = red.Render(row[1])
		}
		fmt.Fprintf(&b, "%s %s\n", dim.Render(fmt.Sprintf("%-14s", row[0])), value)
	}

	return panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Table renders rows with a dim header, left aligned to the widest cell of each column
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style.Width(widths[i]).Render(cell)
		}
		return strings.Join(parts, "  ")
	}

	var b strings.Builder
	b.WriteString(line(header, dim) + "\n")
	for _, row := range rows {
		b.WriteString(line(row, white) + "\n")
	}
	return b.String()
}
