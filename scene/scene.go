// Package scene describes a simulation in YAML (bodies, springs and constraints on top
// of a world configuration) and builds the matching plume.World.
package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/config"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const DefaultSteps = 2400

type Scene struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Steps       int              `yaml:"steps,omitempty"`
	Config      config.Config    `yaml:"config"`
	Bodies      []BodySpec       `yaml:"bodies"`
	Springs     []SpringSpec     `yaml:"springs,omitempty"`
	Constraints []ConstraintSpec `yaml:"constraints,omitempty"`
}

type ShapeSpec struct {
	Kind string `yaml:"kind"`

	// rectangle
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`

	// ellipse
	A        float64 `yaml:"a,omitempty"`
	B        float64 `yaml:"b,omitempty"`
	Segments int     `yaml:"segments,omitempty"`

	// regular
	Radius float64 `yaml:"radius,omitempty"`
	Sides  int     `yaml:"sides,omitempty"`

	// polygon
	Points [][2]float64 `yaml:"points,omitempty"`
}

type BodySpec struct {
	Name  string    `yaml:"name"`
	Type  string    `yaml:"type"`
	Mass  float64   `yaml:"mass,omitempty"`
	Shape ShapeSpec `yaml:"shape"`

	Position        [2]float64 `yaml:"position"`
	Angle           float64    `yaml:"angle,omitempty"`
	Velocity        [2]float64 `yaml:"velocity,omitempty"`
	AngularVelocity float64    `yaml:"angular_velocity,omitempty"`
}

type SpringSpec struct {
	A          string  `yaml:"a"`
	B          string  `yaml:"b"`
	AnchorA    string  `yaml:"anchor_a,omitempty"`
	AnchorB    string  `yaml:"anchor_b,omitempty"`
	Stiffness  float64 `yaml:"stiffness"`
	RestLength float64 `yaml:"rest_length"`
}

// ConstraintSpec is either a pin (Body to Pivot) or a distance rod (Body to Other)
type ConstraintSpec struct {
	Kind        string     `yaml:"kind"`
	Body        string     `yaml:"body"`
	Anchor      string     `yaml:"anchor,omitempty"`
	Other       string     `yaml:"other,omitempty"`
	OtherAnchor string     `yaml:"other_anchor,omitempty"`
	Pivot       [2]float64 `yaml:"pivot,omitempty"`
}

var anchorNames = map[string]actor.Anchor{
	"":       actor.AnchorCenter,
	"center": actor.AnchorCenter,
	"25@0":   actor.Anchor25At0,
	"25@30":  actor.Anchor25At30,
	"25@60":  actor.Anchor25At60,
	"25@90":  actor.Anchor25At90,
	"50@0":   actor.Anchor50At0,
	"50@30":  actor.Anchor50At30,
	"50@60":  actor.Anchor50At60,
	"50@90":  actor.Anchor50At90,
	"50@180": actor.Anchor50At180,
	"50@270": actor.Anchor50At270,
	"100@0":  actor.Anchor100At0,
}

// ParseAnchor maps "center" or "<percent>@<degrees>" to a canonical anchor
func ParseAnchor(name string) (actor.Anchor, error) {
	anchor, ok := anchorNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown anchor %q", name)
	}
	return anchor, nil
}

func parseBodyType(name string) (actor.BodyType, error) {
	switch strings.ToLower(name) {
	case "", "dynamic":
		return actor.BodyTypeDynamic, nil
	case "rotational", "rotational_only":
		return actor.BodyTypeRotationalOnly, nil
	case "static":
		return actor.BodyTypeStatic, nil
	default:
		return 0, fmt.Errorf("unknown body type %q", name)
	}
}

// Params turns the shape description into typed generator parameters
func (s ShapeSpec) Params() (geometry.ShapeParams, error) {
	switch strings.ToLower(s.Kind) {
	case "rectangle", "box":
		return geometry.RectangleParams{Width: s.Width, Height: s.Height}, nil
	case "ellipse", "circle":
		b := s.B
		if b == 0 {
			b = s.A
		}
		return geometry.EllipseParams{A: s.A, B: b, Segments: s.Segments}, nil
	case "regular":
		return geometry.RegularParams{Radius: s.Radius, Sides: s.Sides}, nil
	case "polygon":
		points := make([]mgl64.Vec2, len(s.Points))
		for i, p := range s.Points {
			points[i] = mgl64.Vec2{p[0], p[1]}
		}
		return geometry.PolygonParams{Points: points}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
}

// Validate checks names and references, not geometry; Build reports geometry errors
func (s *Scene) Validate() error {
	var problems []error

	names := make(map[string]bool, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Name == "" {
			problems = append(problems, fmt.Errorf("body %d has no name", i))
			continue
		}
		if names[b.Name] {
			problems = append(problems, fmt.Errorf("duplicate body name %q", b.Name))
		}
		names[b.Name] = true
	}

	for i, sp := range s.Springs {
		for _, name := range []string{sp.A, sp.B} {
			if !names[name] {
				problems = append(problems, fmt.Errorf("spring %d references unknown body %q", i, name))
			}
		}
	}

	for i, c := range s.Constraints {
		if !names[c.Body] {
			problems = append(problems, fmt.Errorf("constraint %d references unknown body %q", i, c.Body))
		}
		switch c.Kind {
		case "pin":
		case "distance":
			if !names[c.Other] {
				problems = append(problems, fmt.Errorf("constraint %d references unknown body %q", i, c.Other))
			}
		default:
			problems = append(problems, fmt.Errorf("constraint %d has unknown kind %q", i, c.Kind))
		}
	}

	if s.Steps < 0 {
		problems = append(problems, fmt.Errorf("steps must not be negative, got %d", s.Steps))
	}

	if len(problems) > 0 {
		return fmt.Errorf("scene %q: %w", s.Name, errors.Join(problems...))
	}
	return nil
}

// StepCount is Steps, or DefaultSteps when unset
func (s *Scene) StepCount() int {
	if s.Steps > 0 {
		return s.Steps
	}
	return DefaultSteps
}

// Build creates a world from the scene. The returned map resolves body names.
func (s *Scene) Build(opts ...plume.Option) (*plume.World, map[string]plume.BodyID, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	cfg := s.Config
	w, err := plume.NewWorld(&cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}

	ids := make(map[string]plume.BodyID, len(s.Bodies))
	for _, b := range s.Bodies {
		id, err := addBody(w, b)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %q: body %q: %w", s.Name, b.Name, err)
		}
		ids[b.Name] = id
	}

	for i, sp := range s.Springs {
		anchorA, err := ParseAnchor(sp.AnchorA)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %q: spring %d: %w", s.Name, i, err)
		}
		anchorB, err := ParseAnchor(sp.AnchorB)
		if err != nil {
			return nil, nil, fmt.Errorf("scene %q: spring %d: %w", s.Name, i, err)
		}
		if _, err := w.AddSpring(ids[sp.A], ids[sp.B], anchorA, anchorB, sp.Stiffness, sp.RestLength); err != nil {
			return nil, nil, fmt.Errorf("scene %q: spring %d: %w", s.Name, i, err)
		}
	}

	for i, c := range s.Constraints {
		if err := addConstraint(w, ids, c); err != nil {
			return nil, nil, fmt.Errorf("scene %q: constraint %d: %w", s.Name, i, err)
		}
	}

	return w, ids, nil
}

func addBody(w *plume.World, b BodySpec) (plume.BodyID, error) {
	bodyType, err := parseBodyType(b.Type)
	if err != nil {
		return plume.BodyID{}, err
	}
	params, err := b.Shape.Params()
	if err != nil {
		return plume.BodyID{}, err
	}
	vertices, err := params.Vertices()
	if err != nil {
		return plume.BodyID{}, err
	}

	return w.AddBody(actor.BodyDef{
		Type:            bodyType,
		Mass:            b.Mass,
		Vertices:        vertices,
		Position:        mgl64.Vec2{b.Position[0], b.Position[1]},
		Angle:           b.Angle,
		Velocity:        mgl64.Vec2{b.Velocity[0], b.Velocity[1]},
		AngularVelocity: b.AngularVelocity,
	})
}

func addConstraint(w *plume.World, ids map[string]plume.BodyID, c ConstraintSpec) error {
	anchor, err := ParseAnchor(c.Anchor)
	if err != nil {
		return err
	}

	switch c.Kind {
	case "pin":
		_, err = w.AddPinConstraint(ids[c.Body], anchor, mgl64.Vec2{c.Pivot[0], c.Pivot[1]})
	case "distance":
		var other actor.Anchor
		if other, err = ParseAnchor(c.OtherAnchor); err != nil {
			return err
		}
		_, err = w.AddDistanceConstraint(ids[c.Body], ids[c.Other], anchor, other)
	}
	return err
}

// Parse decodes a scene on top of the default configuration
func Parse(data []byte) (*Scene, error) {
	s := &Scene{Config: *config.DefaultConfig()}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	if err := s.Config.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
