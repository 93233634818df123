package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/geometry"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
)

func testWorld(t *testing.T) (*plume.World, error) {
	t.Helper()

	w, err := plume.NewWorld(nil)
	if err != nil {
		return nil, err
	}

	ground, err := geometry.Rectangle(10, 1)
	if err != nil {
		return nil, err
	}
	if _, err := w.AddStaticBody(actor.BodyDef{Mass: 1, Vertices: ground, Position: mgl64.Vec2{0, -1}}); err != nil {
		return nil, err
	}

	square, err := geometry.Rectangle(1, 1)
	if err != nil {
		return nil, err
	}
	a, err := w.AddDynamicBody(actor.BodyDef{Mass: 1, Vertices: square, Position: mgl64.Vec2{-3, 3}})
	if err != nil {
		return nil, err
	}
	b, err := w.AddDynamicBody(actor.BodyDef{Mass: 1, Vertices: square, Position: mgl64.Vec2{3, 3}})
	if err != nil {
		return nil, err
	}
	if _, err := w.AddSpring(a, b, actor.AnchorCenter, actor.AnchorCenter, 1, 6); err != nil {
		return nil, err
	}

	return w, nil
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ==================== Canvas ====================

func TestCanvas_SetIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(4, 3)

	c.Set(-1, 0, 'x')
	c.Set(4, 0, 'x')
	c.Set(0, 3, 'x')
	if strings.ContainsRune(c.String(), 'x') {
		t.Fatal("out of bounds cells should be ignored")
	}

	c.Set(3, 2, 'x')
	if c.At(3, 2) != 'x' {
		t.Errorf("At(3, 2) = %q, want 'x'", c.At(3, 2))
	}

	rows := strings.Split(c.String(), "\n")
	if len(rows) != 3 || len(rows[0]) != 4 {
		t.Errorf("String() shape = %d rows of %d, want 3 of 4", len(rows), len(rows[0]))
	}

	c.Clear()
	if c.At(3, 2) != ' ' {
		t.Error("Clear should blank every cell")
	}
}

func TestCanvas_Line(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		cells          int
	}{
		{"horizontal", 0, 0, 5, 0, 6},
		{"vertical", 2, 0, 2, 4, 5},
		{"diagonal", 0, 0, 4, 4, 5},
		{"shallow", 0, 0, 6, 2, 7},
		{"reversed", 6, 2, 0, 0, 7},
		{"point", 3, 3, 3, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(8, 8)
			c.Line(tt.x1, tt.y1, tt.x2, tt.y2, '#')

			if c.At(tt.x1, tt.y1) != '#' || c.At(tt.x2, tt.y2) != '#' {
				t.Error("endpoints should be drawn")
			}
			if got := strings.Count(c.String(), "#"); got != tt.cells {
				t.Errorf("drew %d cells, want %d", got, tt.cells)
			}
		})
	}
}

func TestViewport_Project(t *testing.T) {
	v := Viewport{Min: mgl64.Vec2{-1, -1}, Max: mgl64.Vec2{1, 1}}

	tests := []struct {
		point mgl64.Vec2
		x, y  int
	}{
		{mgl64.Vec2{0, 0}, 10, 5},
		{mgl64.Vec2{1, 1}, 20, 0},
		{mgl64.Vec2{-1, -1}, 0, 10},
		{mgl64.Vec2{0, 1}, 10, 0},
	}

	for _, tt := range tests {
		x, y := v.Project(tt.point, 21, 11)
		if x != tt.x || y != tt.y {
			t.Errorf("Project(%v) = (%d, %d), want (%d, %d)", tt.point, x, y, tt.x, tt.y)
		}
	}
}

func TestFitViewport(t *testing.T) {
	w, err := testWorld(t)
	if err != nil {
		t.Fatal(err)
	}

	v := FitViewport(w, 1)
	if v.Min.X() != -6 || v.Max.X() != 6 {
		t.Errorf("x range = [%v, %v], want [-6, 6]", v.Min.X(), v.Max.X())
	}
	if v.Min.Y() != -2.5 || v.Max.Y() != 4.5 {
		t.Errorf("y range = [%v, %v], want [-2.5, 4.5]", v.Min.Y(), v.Max.Y())
	}

	empty, err := plume.NewWorld(nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := FitViewport(empty, 0); v.Max.Sub(v.Min).Len() == 0 {
		t.Error("empty world should get a non-degenerate viewport")
	}
}

func TestCanvas_DrawWorld(t *testing.T) {
	w, err := testWorld(t)
	if err != nil {
		t.Fatal(err)
	}

	c := NewCanvas(60, 20)
	c.DrawWorld(w, FitViewport(w, 1))
	out := c.String()

	for _, r := range []rune{'#', 'o', '~'} {
		if !strings.ContainsRune(out, r) {
			t.Errorf("canvas should contain %q:\n%s", r, out)
		}
	}
}

// ==================== Chart ====================

func TestEnergyChart(t *testing.T) {
	if got := EnergyChart([]float64{1}, 20, 5, "energy"); got != "" {
		t.Errorf("single sample should not plot, got %q", got)
	}

	chart := EnergyChart([]float64{1, 2, 3, 2, 1}, 20, 5, "energy")
	if !strings.Contains(chart, "energy") {
		t.Errorf("chart should carry its caption:\n%s", chart)
	}
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"shorter", 10, 10},
		{"equal", 100, 100},
		{"longer", 500, 100},
		{"disabled", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downsample(data, tt.n)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			if got[0] != 0 || got[len(got)-1] != 99 {
				t.Errorf("bounds = (%v, %v), want (0, 99)", got[0], got[len(got)-1])
			}
		})
	}
}

// ==================== Summary ====================

func TestRunStats(t *testing.T) {
	w, err := testWorld(t)
	if err != nil {
		t.Fatal(err)
	}

	stats := RunStats{EnergyStart: w.Energy()}
	for i := 0; i < 10; i++ {
		w.Step()
		stats.Record(w)
	}

	if stats.Steps != 10 {
		t.Errorf("Steps = %d, want 10", stats.Steps)
	}
	if stats.EnergyEnd != w.Energy() {
		t.Errorf("EnergyEnd = %v, want %v", stats.EnergyEnd, w.Energy())
	}

	if d := (RunStats{EnergyStart: 2, EnergyEnd: 3}).Drift(); d != 0.5 {
		t.Errorf("Drift = %v, want 0.5", d)
	}
	if d := (RunStats{EnergyEnd: 3}).Drift(); d != 3 {
		t.Errorf("Drift from zero = %v, want 3", d)
	}

	out := Summary("demo", w, stats)
	for _, want := range []string{"demo", "steps", "fallbacks", "drift"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary should contain %q:\n%s", want, out)
		}
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"name", "value"}, [][]string{{"alpha", "1"}, {"b", "12345"}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "alpha") || !strings.Contains(lines[2], "12345") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

// ==================== Model ====================

func TestModel_TickAdvancesWorld(t *testing.T) {
	m, err := NewModel("demo", func() (*plume.World, error) { return testWorld(t) })
	if err != nil {
		t.Fatal(err)
	}

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.World().Time() <= 0 {
		t.Error("tick should step the world")
	}
	if m.Stats().Steps != 1 {
		t.Errorf("Steps = %d, want 1", m.Stats().Steps)
	}
}

func TestModel_Keys(t *testing.T) {
	m, err := NewModel("demo", func() (*plume.World, error) { return testWorld(t) })
	if err != nil {
		t.Fatal(err)
	}

	m.Update(keyMsg(" "))
	m.Update(tickMsg(time.Now()))
	if m.World().Time() != 0 {
		t.Error("paused model should not step on tick")
	}

	m.Update(keyMsg("s"))
	if m.World().Time() <= 0 {
		t.Error("s should single step while paused")
	}

	m.Update(keyMsg("+"))
	m.Update(keyMsg("+"))
	if m.speed != 4 {
		t.Errorf("speed = %v, want 4", m.speed)
	}
	m.Update(keyMsg("-"))
	if m.speed != 2 {
		t.Errorf("speed = %v, want 2", m.speed)
	}

	first := m.World()
	m.Update(keyMsg("r"))
	if m.World() == first || m.World().Time() != 0 {
		t.Error("r should rebuild the world")
	}
	if m.paused {
		t.Error("reset should resume")
	}

	if _, cmd := m.Update(keyMsg("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
	if m.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModel_View(t *testing.T) {
	m, err := NewModel("demo", func() (*plume.World, error) { return testWorld(t) })
	if err != nil {
		t.Fatal(err)
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	for i := 0; i < 3; i++ {
		m.Update(tickMsg(time.Now()))
	}

	view := m.View()
	for _, want := range []string{"demo", "KE", "PE", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestNewModel_BuildError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := NewModel("broken", func() (*plume.World, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
