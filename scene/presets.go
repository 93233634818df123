package scene

import (
	"fmt"
	"slices"

	"github.com/akmonengine/plume/config"
)

var presets = map[string]func() *Scene{
	"pendulum": pendulum,
	"newton":   newton,
	"springs":  springs,
	"stack":    stack,
	"bullet":   bullet,
}

// Preset returns a fresh copy of a built-in scene
func Preset(name string) (*Scene, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("scene: unknown preset %q (available: %v)", name, Presets())
	}
	return build(), nil
}

// Presets lists the built-in scene names, sorted
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func box(w, h float64) ShapeSpec {
	return ShapeSpec{Kind: "rectangle", Width: w, Height: h}
}

// pendulum is a double pendulum: a pin to the origin, then a rod to a second bob
func pendulum() *Scene {
	cfg := *config.DefaultConfig()
	cfg.Constraints.Enabled = true

	return &Scene{
		Name:        "pendulum",
		Description: "double pendulum held by a pin and a distance constraint",
		Config:      cfg,
		Bodies: []BodySpec{
			{Name: "upper", Type: "dynamic", Mass: 1, Shape: box(0.3, 0.3), Position: [2]float64{2, 0}},
			{Name: "lower", Type: "dynamic", Mass: 1, Shape: ShapeSpec{Kind: "ellipse", A: 0.2, Segments: 16}, Position: [2]float64{3.5, 0}},
		},
		Constraints: []ConstraintSpec{
			{Kind: "pin", Body: "upper", Pivot: [2]float64{0, 0}},
			{Kind: "distance", Body: "upper", Other: "lower"},
		},
	}
}

// newton is a horizontal Newton's cradle: the first box hits a row at rest
func newton() *Scene {
	cfg := *config.DefaultConfig()
	cfg.Gravity.Enabled = false

	s := &Scene{
		Name:        "newton",
		Description: "row of boxes hit by a moving box, without gravity",
		Config:      cfg,
		Bodies: []BodySpec{
			{Name: "striker", Type: "dynamic", Mass: 1, Shape: box(1, 1), Position: [2]float64{-3, 0}, Velocity: [2]float64{2, 0}},
		},
	}
	for i := 0; i < 4; i++ {
		s.Bodies = append(s.Bodies, BodySpec{
			Name:     fmt.Sprintf("ball%d", i),
			Type:     "dynamic",
			Mass:     1,
			Shape:    box(1, 1),
			Position: [2]float64{float64(i) * 1.02, 0},
		})
	}
	return s
}

// springs hangs a chain of boxes under a static ceiling
func springs() *Scene {
	cfg := *config.DefaultConfig()
	cfg.Integrator = "leapfrog"

	s := &Scene{
		Name:        "springs",
		Description: "chain of boxes hanging from springs",
		Config:      cfg,
		Bodies: []BodySpec{
			{Name: "ceiling", Type: "static", Shape: box(4, 0.5), Position: [2]float64{0, 5}},
		},
	}

	previous := "ceiling"
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("mass%d", i)
		s.Bodies = append(s.Bodies, BodySpec{
			Name:     name,
			Type:     "dynamic",
			Mass:     1,
			Shape:    box(0.5, 0.5),
			Position: [2]float64{0.3 * float64(i), 3.5 - 1.5*float64(i)},
		})
		s.Springs = append(s.Springs, SpringSpec{
			A:          previous,
			B:          name,
			AnchorA:    "50@270",
			AnchorB:    "50@90",
			Stiffness:  60,
			RestLength: 1,
		})
		previous = name
	}
	return s
}

// stack drops boxes and a hexagon on a static floor, between a ramp and a spinning wheel
func stack() *Scene {
	cfg := *config.DefaultConfig()

	return &Scene{
		Name:        "stack",
		Description: "boxes falling on a floor and a fixed spinning wheel",
		Config:      cfg,
		Bodies: []BodySpec{
			{Name: "floor", Type: "static", Shape: box(20, 1), Position: [2]float64{0, -0.5}},
			{Name: "ramp", Type: "static", Shape: ShapeSpec{Kind: "polygon", Points: [][2]float64{{0, 0}, {3, 0}, {3, 1}}}, Position: [2]float64{-4, 1.0 / 3}},
			{Name: "box0", Type: "dynamic", Mass: 1, Shape: box(1, 1), Position: [2]float64{0, 1}},
			{Name: "box1", Type: "dynamic", Mass: 1, Shape: box(1, 1), Position: [2]float64{0.2, 2.5}, Angle: 0.2},
			{Name: "hexagon", Type: "dynamic", Mass: 2, Shape: ShapeSpec{Kind: "regular", Radius: 0.6, Sides: 6}, Position: [2]float64{-0.1, 4}},
			{Name: "wheel", Type: "rotational", Mass: 5, Shape: ShapeSpec{Kind: "regular", Radius: 1, Sides: 8}, Position: [2]float64{3, 2}, AngularVelocity: 2},
		},
	}
}

// bullet fires a small fast box at a wall with a large timestep, forcing backtracks
func bullet() *Scene {
	cfg := *config.DefaultConfig()
	cfg.Gravity.Enabled = false
	cfg.Timestep = 0.01

	return &Scene{
		Name:        "bullet",
		Description: "fast projectile against a static wall",
		Steps:       200,
		Config:      cfg,
		Bodies: []BodySpec{
			{Name: "wall", Type: "static", Shape: box(0.5, 6), Position: [2]float64{5, 0}},
			{Name: "bullet", Type: "dynamic", Mass: 0.1, Shape: box(0.2, 0.1), Position: [2]float64{-5, 0}, Velocity: [2]float64{40, 0}},
			{Name: "target", Type: "dynamic", Mass: 1, Shape: box(1, 1), Position: [2]float64{3, 0}},
		},
	}
}
