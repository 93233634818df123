package geometry

import (
	"math"

	"github.com/akmonengine/plume/errs"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultEllipseVertices is the number of vertices used to approximate an ellipse.
const DefaultEllipseVertices = 51

// ShapeParams produces the local vertices of a convex polygon. Each implementation
// validates its own typed parameters, so callers never need to down-cast.
type ShapeParams interface {
	Vertices() ([]mgl64.Vec2, error)
}

// RectangleParams describes a Width x Height box centered on the origin.
type RectangleParams struct {
	Width  float64
	Height float64
}

func (p RectangleParams) Vertices() ([]mgl64.Vec2, error) {
	return Rectangle(p.Width, p.Height)
}

// EllipseParams describes an ellipse with semi-axes A (x) and B (y), approximated by
// Segments vertices (DefaultEllipseVertices when zero).
type EllipseParams struct {
	A        float64
	B        float64
	Segments int
}

func (p EllipseParams) Vertices() ([]mgl64.Vec2, error) {
	segments := p.Segments
	if segments == 0 {
		segments = DefaultEllipseVertices
	}
	return Ellipse(p.A, p.B, segments)
}

// RegularParams describes a regular polygon with Sides vertices on a circle of Radius.
type RegularParams struct {
	Radius float64
	Sides  int
}

func (p RegularParams) Vertices() ([]mgl64.Vec2, error) {
	return RegularPolygon(p.Radius, p.Sides)
}

// PolygonParams wraps an explicit vertex list.
type PolygonParams struct {
	Points []mgl64.Vec2
}

func (p PolygonParams) Vertices() ([]mgl64.Vec2, error) {
	if len(p.Points) < 3 {
		return nil, errs.E(errs.KindConstruction, "geometry.PolygonParams", errs.ErrDegenerateGeometry)
	}
	out := make([]mgl64.Vec2, len(p.Points))
	copy(out, p.Points)
	return out, nil
}

// Rectangle returns the CCW corners of a width x height box centered on the origin.
func Rectangle(width, height float64) ([]mgl64.Vec2, error) {
	if width <= 0 || height <= 0 {
		return nil, errs.E(errs.KindConstruction, "geometry.Rectangle", errs.ErrDegenerateGeometry)
	}

	hw, hh := width/2, height/2
	return []mgl64.Vec2{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	}, nil
}

// Ellipse returns n CCW vertices sampled on the ellipse of semi-axes a and b.
func Ellipse(a, b float64, n int) ([]mgl64.Vec2, error) {
	if a <= 0 || b <= 0 || n < 3 {
		return nil, errs.E(errs.KindConstruction, "geometry.Ellipse", errs.ErrDegenerateGeometry)
	}

	vertices := make([]mgl64.Vec2, n)
	step := 2.0 * math.Pi / float64(n)
	for i := range vertices {
		angle := float64(i) * step
		vertices[i] = mgl64.Vec2{a * math.Cos(angle), b * math.Sin(angle)}
	}

	return vertices, nil
}

// RegularPolygon returns the n CCW vertices of a regular polygon of circumradius r.
func RegularPolygon(r float64, n int) ([]mgl64.Vec2, error) {
	return Ellipse(r, r, n)
}
