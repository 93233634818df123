package actor

import (
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Polygon is the convex collision shape of a rigid body.
// Local vertices are stored counter-clockwise and centered on the centroid, so that the
// body rotates about its true center of mass. World-space data is a cache refreshed by
// Update.
type Polygon struct {
	vertices []mgl64.Vec2
	normals  []mgl64.Vec2

	worldVertices []mgl64.Vec2
	worldNormals  []mgl64.Vec2
	aabb          AABB
}

// NewPolygon validates and centers vertices. The returned offset is the centroid of the
// input vertices, in the frame they were given in.
func NewPolygon(vertices []mgl64.Vec2) (*Polygon, mgl64.Vec2, error) {
	if !geometry.IsConvex(vertices) {
		return nil, mgl64.Vec2{}, errs.E(errs.KindConstruction, "actor.NewPolygon", errs.ErrNonConvex)
	}

	centered, centroid, err := geometry.CenterToCentroid(geometry.CounterClockwise(vertices))
	if err != nil {
		return nil, mgl64.Vec2{}, err
	}

	normals, err := geometry.Normals(centered)
	if err != nil {
		return nil, mgl64.Vec2{}, err
	}

	p := &Polygon{
		vertices:      centered,
		normals:       normals,
		worldVertices: make([]mgl64.Vec2, len(centered)),
		worldNormals:  make([]mgl64.Vec2, len(normals)),
	}
	p.Update(NewTransform())

	return p, centroid, nil
}

// Update recomputes world vertices, rotated normals and the world AABB
func (p *Polygon) Update(transform Transform) {
	rotation := transform.Rotation()

	for i, v := range p.vertices {
		p.worldVertices[i] = transform.Apply(v)
	}
	for i, n := range p.normals {
		p.worldNormals[i] = rotation.Mul2x1(n)
	}

	min, max := geometry.Bounds(p.worldVertices)
	p.aabb = AABB{Min: min, Max: max}
}

func (p *Polygon) GetAABB() AABB {
	return p.aabb
}

// ComputeInertia returns the moment of inertia about the centroid for the given mass
func (p *Polygon) ComputeInertia(mass float64) float64 {
	return mass * geometry.MomentOfInertiaPerUnitMass(p.vertices)
}

// Area of the polygon
func (p *Polygon) Area() float64 {
	return geometry.SignedArea(p.vertices)
}

// Vertices are the local, centered vertices
func (p *Polygon) Vertices() []mgl64.Vec2 {
	return p.vertices
}

// LocalNormals are the outward normals in body space
func (p *Polygon) LocalNormals() []mgl64.Vec2 {
	return p.normals
}

func (p *Polygon) WorldVertices() []mgl64.Vec2 {
	return p.worldVertices
}

// WorldNormals are the outward normals rotated into world space
func (p *Polygon) WorldNormals() []mgl64.Vec2 {
	return p.worldNormals
}
