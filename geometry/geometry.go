// Package geometry holds the stateless 2D polygon kernel used by the bodies and the
// collision pipeline. Polygons are slices of mgl64.Vec2; every function here is pure.
package geometry

import (
	"math"

	"github.com/akmonengine/plume/errs"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used to discard parallel rays and zero-length edges.
const Epsilon = 1e-8

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Perp returns v rotated by +90 degrees.
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}

// Direction returns the unit vector at angle (radians).
func Direction(angle float64) mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
}

// Rotate rotates v by angle (radians) around the origin.
func Rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	return mgl64.Rotate2D(angle).Mul2x1(v)
}

// Normalize returns v/|v|, or false when v has (almost) zero length.
func Normalize(v mgl64.Vec2) (mgl64.Vec2, bool) {
	l := v.Len()
	if l < Epsilon {
		return mgl64.Vec2{}, false
	}
	return v.Mul(1.0 / l), true
}

// Radians converts degrees to radians, wrapped into (-2π, 2π).
func Radians(degrees float64) float64 {
	return math.Mod(degrees*math.Pi/180.0, 2*math.Pi)
}

// IsConvex walks consecutive edge pairs and fails as soon as the turn direction flips.
// Collinear vertices are tolerated. The turns must add up to a single revolution, which
// rejects self-intersecting outlines such as a pentagram.
func IsConvex(vertices []mgl64.Vec2) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	sign := 0.0
	turn := 0.0
	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]
		c := vertices[(i+2)%n]

		e1, e2 := b.Sub(a), c.Sub(b)
		cross := Cross(e1, e2)
		if math.Abs(cross) < Epsilon*Epsilon {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (sign > 0) != (cross > 0) {
			return false
		}
		turn += math.Atan2(cross, e1.Dot(e2))
	}

	return sign != 0 && math.Abs(math.Abs(turn)-2*math.Pi) < 1e-6
}

// SignedArea is positive for counter-clockwise polygons.
func SignedArea(vertices []mgl64.Vec2) float64 {
	area := 0.0
	n := len(vertices)
	for i := 0; i < n; i++ {
		area += Cross(vertices[i], vertices[(i+1)%n])
	}
	return 0.5 * area
}

// Centroid returns the area-weighted centroid (shoelace formula).
func Centroid(vertices []mgl64.Vec2) (mgl64.Vec2, error) {
	var area, cx, cy float64
	n := len(vertices)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := Cross(vertices[i], vertices[j])
		area += cross
		cx += (vertices[i][0] + vertices[j][0]) * cross
		cy += (vertices[i][1] + vertices[j][1]) * cross
	}

	area *= 0.5
	if math.Abs(area) < Epsilon {
		return mgl64.Vec2{}, errs.E(errs.KindNumeric, "geometry.Centroid", errs.ErrDegenerateGeometry)
	}

	return mgl64.Vec2{cx / (6.0 * area), cy / (6.0 * area)}, nil
}

// CenterToCentroid returns a copy of vertices expressed relative to their centroid,
// together with that centroid.
func CenterToCentroid(vertices []mgl64.Vec2) ([]mgl64.Vec2, mgl64.Vec2, error) {
	centroid, err := Centroid(vertices)
	if err != nil {
		return nil, centroid, err
	}

	centered := make([]mgl64.Vec2, len(vertices))
	for i, v := range vertices {
		centered[i] = v.Sub(centroid)
	}

	return centered, centroid, nil
}

// CounterClockwise returns a copy of vertices in counter-clockwise order.
func CounterClockwise(vertices []mgl64.Vec2) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(vertices))
	copy(out, vertices)

	if SignedArea(out) < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out
}

// Normals returns the outward unit normal of every edge (i, i+1) of a CCW polygon.
func Normals(vertices []mgl64.Vec2) ([]mgl64.Vec2, error) {
	n := len(vertices)
	normals := make([]mgl64.Vec2, n)

	for i := 0; i < n; i++ {
		edge := vertices[(i+1)%n].Sub(vertices[i])
		normal, ok := Normalize(mgl64.Vec2{edge[1], -edge[0]})
		if !ok {
			return nil, errs.E(errs.KindNumeric, "geometry.Normals", errs.ErrDegenerateGeometry)
		}
		normals[i] = normal
	}

	return normals, nil
}

// MomentOfInertiaPerUnitMass is the polar second moment of the polygon about the origin,
// divided by its area. Multiply by the mass to get the moment of inertia.
func MomentOfInertiaPerUnitMass(vertices []mgl64.Vec2) float64 {
	var inertia, area float64
	n := len(vertices)

	for i := 0; i < n; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]

		cross := Cross(a, b)
		term := a[0]*a[0] + a[0]*b[0] + b[0]*b[0] + a[1]*a[1] + a[1]*b[1] + b[1]*b[1]

		inertia += cross * term
		area += cross
	}

	area = 0.5 * math.Abs(area)
	if area < Epsilon {
		return 0
	}

	return math.Abs(inertia) / 12.0 / area
}

// DistanceToEdge casts a ray from the origin at angle (radians) and returns the distance
// to the first polygon edge it crosses. The origin must lie inside the polygon.
func DistanceToEdge(angle float64, vertices []mgl64.Vec2) (float64, error) {
	dir := Direction(angle)
	n := len(vertices)

	for i := 0; i < n; i++ {
		p1 := vertices[i]
		edge := vertices[(i+1)%n].Sub(p1)

		det := Cross(dir, edge)
		if math.Abs(det) < Epsilon {
			continue
		}

		t := Cross(p1, edge) / det
		s := Cross(p1, dir) / det

		if t > 0 && s >= 0 && s <= 1 {
			return t, nil
		}
	}

	return 0, errs.E(errs.KindNumeric, "geometry.DistanceToEdge", errs.ErrRayMiss)
}

// Project returns the interval covered by vertices along axis.
func Project(axis mgl64.Vec2, vertices []mgl64.Vec2) (float64, float64) {
	projection := vertices[0].Dot(axis)
	min, max := projection, projection

	for _, v := range vertices[1:] {
		projection = v.Dot(axis)
		min = math.Min(min, projection)
		max = math.Max(max, projection)
	}

	return min, max
}

// Bounds returns the component-wise min and max of vertices.
func Bounds(vertices []mgl64.Vec2) (mgl64.Vec2, mgl64.Vec2) {
	min := vertices[0]
	max := vertices[0]

	for _, v := range vertices[1:] {
		min[0] = math.Min(min[0], v[0])
		min[1] = math.Min(min[1], v[1])
		max[0] = math.Max(max[0], v[0])
		max[1] = math.Max(max[1], v[1])
	}

	return min, max
}
