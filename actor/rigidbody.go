package actor

import (
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/akmonengine/plume/internal/arena"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeRotationalOnly bodies spin about their centroid but never translate
	// (e.g., a wheel on a fixed axle)
	BodyTypeRotationalOnly

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeRotationalOnly:
		return "rotational"
	case BodyTypeStatic:
		return "static"
	default:
		return "unknown"
	}
}

// BodyDef gathers the parameters used to build a RigidBody
type BodyDef struct {
	Type            BodyType
	Mass            float64
	Vertices        []mgl64.Vec2
	Position        mgl64.Vec2
	Angle           float64
	Velocity        mgl64.Vec2
	AngularVelocity float64
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	id arena.Handle

	// Spatial properties
	Transform Transform

	// Linear motion
	Velocity mgl64.Vec2 // Linear velocity (m/s)

	// Angular motion
	AngularVelocity float64 // rad/s, counter-clockwise

	accumulatedForce  mgl64.Vec2
	accumulatedTorque float64

	mass           float64
	inertia        float64
	inverseMass    float64
	inverseInertia float64

	BodyType BodyType // Dynamic, RotationalOnly or Static

	// Collision shape
	Shape *Polygon

	anchors []anchor
}

// NewRigidBody creates a new rigid body.
// The vertices must describe a convex polygon; they are re-centered on their centroid,
// and def.Position becomes the world position of that centroid.
func NewRigidBody(def BodyDef) (*RigidBody, error) {
	if def.Mass <= 0 {
		return nil, errs.E(errs.KindConstruction, "actor.NewRigidBody", errs.ErrNonPositiveMass)
	}

	shape, _, err := NewPolygon(def.Vertices)
	if err != nil {
		return nil, err
	}

	anchors, err := buildAnchorTable(shape.Vertices())
	if err != nil {
		return nil, err
	}

	rb := &RigidBody{
		Transform: Transform{
			Position: def.Position,
			Angle:    def.Angle,
		},
		Velocity:        def.Velocity,
		AngularVelocity: def.AngularVelocity,
		BodyType:        def.Type,
		Shape:           shape,
		mass:            def.Mass,
		inertia:         shape.ComputeInertia(def.Mass),
		anchors:         anchors,
	}

	// Calculate inverse mass data based on body type
	switch def.Type {
	case BodyTypeDynamic:
		rb.inverseMass = 1.0 / rb.mass
		rb.inverseInertia = 1.0 / rb.inertia
	case BodyTypeRotationalOnly:
		rb.inverseMass = 0
		rb.inverseInertia = 1.0 / rb.inertia
		rb.Velocity = mgl64.Vec2{}
	case BodyTypeStatic:
		rb.inverseMass = 0
		rb.inverseInertia = 0
		rb.Velocity = mgl64.Vec2{}
		rb.AngularVelocity = 0
	}

	rb.UpdatePolygonFeatures()

	return rb, nil
}

// ID returns the handle the owning world assigned to the body
func (rb *RigidBody) ID() arena.Handle {
	return rb.id
}

// SetID is called by the owning world when the body is stored
func (rb *RigidBody) SetID(id arena.Handle) {
	rb.id = id
}

// UpdatePolygonFeatures refreshes world vertices, world AABB and rotated normals.
// It must run after every change of position or angle.
func (rb *RigidBody) UpdatePolygonFeatures() {
	rb.Shape.Update(rb.Transform)
}

// AddForce accumulates a force applied at the centroid
func (rb *RigidBody) AddForce(force mgl64.Vec2) {
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddTorque accumulates a torque (counter-clockwise positive)
func (rb *RigidBody) AddTorque(torque float64) {
	rb.accumulatedTorque += torque
}

// AddForceAt accumulates a force applied at a world point, with its induced torque
func (rb *RigidBody) AddForceAt(force, point mgl64.Vec2) {
	rb.AddForce(force)
	rb.AddTorque(geometry.Cross(point.Sub(rb.Transform.Position), force))
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec2{0, 0}
	rb.accumulatedTorque = 0
}

func (rb *RigidBody) Force() mgl64.Vec2 {
	return rb.accumulatedForce
}

func (rb *RigidBody) Torque() float64 {
	return rb.accumulatedTorque
}

// ApplyImpulse changes the velocities by an impulse applied at lever arm r (from the
// centroid)
func (rb *RigidBody) ApplyImpulse(impulse, r mgl64.Vec2) {
	rb.Velocity = rb.Velocity.Add(impulse.Mul(rb.inverseMass))
	rb.AngularVelocity += rb.inverseInertia * geometry.Cross(r, impulse)
}

// VelocityAt returns the velocity of the body point at lever arm r
func (rb *RigidBody) VelocityAt(r mgl64.Vec2) mgl64.Vec2 {
	return rb.Velocity.Add(geometry.Perp(r).Mul(rb.AngularVelocity))
}

// KineticEnergy counts only the degrees of freedom the body type allows
func (rb *RigidBody) KineticEnergy() float64 {
	energy := 0.0
	if rb.inverseMass > 0 {
		energy += 0.5 * rb.mass * rb.Velocity.LenSqr()
	}
	if rb.inverseInertia > 0 {
		energy += 0.5 * rb.inertia * rb.AngularVelocity * rb.AngularVelocity
	}
	return energy
}

func (rb *RigidBody) Mass() float64           { return rb.mass }
func (rb *RigidBody) Inertia() float64        { return rb.inertia }
func (rb *RigidBody) InverseMass() float64    { return rb.inverseMass }
func (rb *RigidBody) InverseInertia() float64 { return rb.inverseInertia }

func (rb *RigidBody) Position() mgl64.Vec2 { return rb.Transform.Position }
func (rb *RigidBody) Angle() float64       { return rb.Transform.Angle }

// WorldVertices are valid after UpdatePolygonFeatures
func (rb *RigidBody) WorldVertices() []mgl64.Vec2 { return rb.Shape.WorldVertices() }
func (rb *RigidBody) Normals() []mgl64.Vec2       { return rb.Shape.WorldNormals() }
func (rb *RigidBody) AABB() AABB                  { return rb.Shape.GetAABB() }
