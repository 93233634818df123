package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/akmonengine/plume"
	tea "github.com/charmbracelet/bubbletea"
)

const historyLimit = 600

// Builder creates a fresh world; the live view calls it again on reset
type Builder func() (*plume.World, error)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of the live view
type Model struct {
	name  string
	build Builder

	world    *plume.World
	viewport Viewport
	stats    RunStats
	history  []float64

	paused   bool
	quitting bool
	speed    float64

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewModel(name string, build Builder) (*Model, error) {
	m := &Model{
		name:   name,
		build:  build,
		speed:  1,
		width:  80,
		height: 40,
	}
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) reset() error {
	world, err := m.build()
	if err != nil {
		return err
	}

	m.world = world
	m.viewport = FitViewport(world, 1)
	m.history = m.history[:0]
	m.stats = RunStats{EnergyStart: world.Energy(), EnergyEnd: world.Energy()}
	m.paused = false
	return nil
}

// World is the world currently shown
func (m *Model) World() *plume.World { return m.world }

func (m *Model) Stats() RunStats { return m.stats }

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if !m.paused {
			now := time.Time(msg)
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now

			steps := max(int(m.speed), 1)
			for i := 0; i < steps; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "s":
		// single step while paused
		if m.paused {
			m.step()
		}
	case "r":
		if err := m.reset(); err != nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tea.ClearScreen
	case "f":
		m.viewport = FitViewport(m.world, 1)
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *Model) step() {
	m.world.Step()
	m.stats.Record(m.world)

	m.history = append(m.history, m.stats.EnergyEnd)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	cw := max(m.width-6, 40)
	ch := max(m.height-22, 12)

	canvas := NewCanvas(cw, ch)
	canvas.DrawWorld(m.world, m.viewport)

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	if m.paused {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.name), statusText,
		dim.Render(fmt.Sprintf("t=%.3fs  x%.0f  %.0ffps", m.world.Time(), m.speed, m.fps)))

	report := m.world.LastStep()
	stepInfo := fmt.Sprintf("dt %.5f  contacts %d  backtracks %d  fallbacks %d",
		report.Timestep, report.Contacts, m.stats.Backtracks, m.stats.Fallbacks)
	if report.Fallback {
		b.WriteString("   " + red.Render(stepInfo) + "\n\n")
	} else {
		b.WriteString("   " + dim.Render(stepInfo) + "\n\n")
	}

	for _, row := range strings.Split(canvas.String(), "\n") {
		b.WriteString("   " + white.Render(row) + "\n")
	}

	fmt.Fprintf(&b, "\n   %s %s  %s %s  %s %s\n",
		green.Render("KE"), white.Render(fmt.Sprintf("%.3f", m.world.KineticEnergy())),
		yellow.Render("PE"), white.Render(fmt.Sprintf("%.3f", m.world.PotentialEnergy())),
		magenta.Render("drift"), white.Render(fmt.Sprintf("%+.2f%%", 100*m.stats.Drift())))

	if chart := EnergyChart(Downsample(m.history, cw-12), cw-12, 6, "energy"); chart != "" {
		for _, row := range strings.Split(chart, "\n") {
			b.WriteString("   " + cyan.Render(row) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("   space pause  s step  ±speed  f fit  r reset  q quit") + "\n")

	return b.String()
}

// Run opens the live view in the alternate screen
func Run(name string, build Builder) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
