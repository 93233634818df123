package tui

import (
	"math"
	"strings"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/force"
	"github.com/go-gl/mathgl/mgl64"
)

// cellAspect is the height of a terminal cell divided by its width
const cellAspect = 2.0

// Canvas is a grid of runes, row 0 at the top
type Canvas struct {
	width  int
	height int
	cells  [][]rune
}

func NewCanvas(width, height int) *Canvas {
	width = max(width, 1)
	height = max(height, 1)

	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = make([]rune, width)
	}
	c := &Canvas{width: width, height: height, cells: cells}
	c.Clear()
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// Set ignores cells outside the canvas
func (c *Canvas) Set(x, y int, r rune) {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		c.cells[y][x] = r
	}
}

func (c *Canvas) At(x, y int) rune {
	if x >= 0 && x < c.width && y >= 0 && y < c.height {
		return c.cells[y][x]
	}
	return 0
}

// Line draws with Bresenham's algorithm
func (c *Canvas) Line(x1, y1, x2, y2 int, r rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates (y up) to canvas cells (y down) with a uniform scale
type Viewport struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// FitViewport returns the bounds of every body, grown by margin on each side
func FitViewport(w *plume.World, margin float64) Viewport {
	bodies := w.Bodies()
	if len(bodies) == 0 {
		return Viewport{Min: mgl64.Vec2{-1, -1}, Max: mgl64.Vec2{1, 1}}
	}

	box := bodies[0].AABB()
	for _, rb := range bodies[1:] {
		b := rb.AABB()
		box.Min = mgl64.Vec2{math.Min(box.Min.X(), b.Min.X()), math.Min(box.Min.Y(), b.Min.Y())}
		box.Max = mgl64.Vec2{math.Max(box.Max.X(), b.Max.X()), math.Max(box.Max.Y(), b.Max.Y())}
	}

	m := mgl64.Vec2{margin, margin}
	return Viewport{Min: box.Min.Sub(m), Max: box.Max.Add(m)}
}

// Project returns the cell of a world point on a width x height canvas
func (v Viewport) Project(p mgl64.Vec2, width, height int) (int, int) {
	spanX := math.Max(v.Max.X()-v.Min.X(), 1e-9)
	spanY := math.Max(v.Max.Y()-v.Min.Y(), 1e-9)

	// cells per world unit, horizontally
	scale := math.Min(float64(width-1)/spanX, cellAspect*float64(height-1)/spanY)

	center := v.Min.Add(v.Max).Mul(0.5)
	x := float64(width-1)/2 + (p.X()-center.X())*scale
	y := float64(height-1)/2 - (p.Y()-center.Y())*scale/cellAspect

	return int(math.Round(x)), int(math.Round(y))
}

func bodyRune(rb *actor.RigidBody) rune {
	switch rb.BodyType {
	case actor.BodyTypeStatic:
		return '#'
	case actor.BodyTypeRotationalOnly:
		return '*'
	default:
		return 'o'
	}
}

// DrawWorld rasterizes springs, constraints, polygon outlines and contact points
func (c *Canvas) DrawWorld(w *plume.World, v Viewport) {
	project := func(p mgl64.Vec2) (int, int) { return v.Project(p, c.width, c.height) }

	for _, g := range w.Forces() {
		if g.Kind() != force.KindSpring {
			continue
		}
		p1, p2 := g.Endpoints()
		x1, y1 := project(p1)
		x2, y2 := project(p2)
		c.Line(x1, y1, x2, y2, '~')
	}

	for _, k := range w.Constraints() {
		bodies := k.Bodies()
		switch k := k.(type) {
		case *constraint.PinConstraint:
			px, py := project(k.Pivot())
			if len(bodies) == 1 {
				bx, by := project(bodies[0].Position())
				c.Line(px, py, bx, by, '.')
			}
			c.Set(px, py, '+')
		default:
			if len(bodies) == 2 {
				x1, y1 := project(bodies[0].Position())
				x2, y2 := project(bodies[1].Position())
				c.Line(x1, y1, x2, y2, '.')
			}
		}
	}

	for _, rb := range w.Bodies() {
		r := bodyRune(rb)
		vertices := rb.WorldVertices()
		for i := range vertices {
			x1, y1 := project(vertices[i])
			x2, y2 := project(vertices[(i+1)%len(vertices)])
			c.Line(x1, y1, x2, y2, r)
		}
	}

	for _, contact := range w.Contacts() {
		for _, p := range contact.Points {
			x, y := project(p.Position)
			c.Set(x, y, 'x')
		}
	}
}
