package actor

import (
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform represents a pose in 2D space: a translation and a counter-clockwise
// rotation (radians) about the body centroid
type Transform struct {
	Position mgl64.Vec2
	Angle    float64
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec2{0, 0},
		Angle:    0,
	}
}

// Rotation returns the 2x2 rotation matrix of the transform
func (t Transform) Rotation() mgl64.Mat2 {
	return mgl64.Rotate2D(t.Angle)
}

// Apply maps a local point to world space
func (t Transform) Apply(local mgl64.Vec2) mgl64.Vec2 {
	return t.Position.Add(geometry.Rotate(local, t.Angle))
}
