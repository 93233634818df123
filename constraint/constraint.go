// Package constraint holds the two ways bodies are kept apart or together: impulse
// based contact resolution, and the bilateral constraints solved through a sparse block
// Jacobian.
//
// Each body contributes three generalized coordinates, ordered (angle, x, y), so the
// matching generalized forces are (torque, fx, fy).
package constraint

import (
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/akmonengine/plume/internal/arena"
	"github.com/go-gl/mathgl/mgl64"
)

// BlockSize is the number of generalized coordinates per body
const BlockSize = 3

// Block is the 1x3 Jacobian contribution of one body to one constraint row
type Block struct {
	Body   int
	Values [BlockSize]float64
}

// IndexFunc maps a body to its column block. Bodies that cannot move report false.
type IndexFunc func(*actor.RigidBody) (int, bool)

// Constraint is a scalar holonomic constraint C(q) = 0
type Constraint interface {
	ID() arena.Handle
	SetID(id arena.Handle)
	Bodies() []*actor.RigidBody
	// Evaluate returns C and its time derivative
	Evaluate() (c, cdot float64)
	// JacobianBlocks returns the blocks of dC/dq and of its time derivative
	JacobianBlocks(index IndexFunc) (j, jdot []Block)
}

// endpoint is a body anchor, or a fixed world point when body is nil
type endpoint struct {
	body   *actor.RigidBody
	anchor actor.Anchor
	point  mgl64.Vec2
}

func (e endpoint) position() mgl64.Vec2 {
	if e.body == nil {
		return e.point
	}
	// Anchors are validated at construction
	p, _ := e.body.AnchorPosition(e.anchor)
	return p
}

// lever is the offset from the centroid, and velocity the velocity of the endpoint
func (e endpoint) kinematics() (lever, velocity mgl64.Vec2) {
	if e.body == nil {
		return mgl64.Vec2{}, mgl64.Vec2{}
	}
	lever = e.position().Sub(e.body.Position())
	return lever, e.body.VelocityAt(lever)
}

// rod keeps two endpoints at a fixed distance: C = ½(|d|² − L²) with d = p2 − p1
type rod struct {
	id     arena.Handle
	ends   [2]endpoint
	length float64
}

func (r *rod) ID() arena.Handle      { return r.id }
func (r *rod) SetID(id arena.Handle) { r.id = id }

func (r *rod) Bodies() []*actor.RigidBody {
	bodies := make([]*actor.RigidBody, 0, 2)
	for _, e := range r.ends {
		if e.body != nil {
			bodies = append(bodies, e.body)
		}
	}
	return bodies
}

func (r *rod) Length() float64 {
	return r.length
}

func (r *rod) relative() (d, dDot mgl64.Vec2) {
	_, v1 := r.ends[0].kinematics()
	_, v2 := r.ends[1].kinematics()
	return r.ends[1].position().Sub(r.ends[0].position()), v2.Sub(v1)
}

func (r *rod) Evaluate() (float64, float64) {
	d, dDot := r.relative()
	return 0.5 * (d.Dot(d) - r.length*r.length), d.Dot(dDot)
}

func (r *rod) JacobianBlocks(index IndexFunc) ([]Block, []Block) {
	d, dDot := r.relative()

	j := make([]Block, 0, 2)
	jdot := make([]Block, 0, 2)

	for i, e := range r.ends {
		if e.body == nil {
			continue
		}
		column, ok := index(e.body)
		if !ok {
			continue
		}

		sign := 1.0
		if i == 0 {
			sign = -1.0
		}

		lever, _ := e.kinematics()
		perp := geometry.Perp(lever)
		omega := e.body.AngularVelocity

		j = append(j, Block{
			Body:   column,
			Values: [BlockSize]float64{sign * d.Dot(perp), sign * d.X(), sign * d.Y()},
		})
		// d(perp(r))/dt = -ω r
		jdot = append(jdot, Block{
			Body:   column,
			Values: [BlockSize]float64{sign * (dDot.Dot(perp) - omega*d.Dot(lever)), sign * dDot.X(), sign * dDot.Y()},
		})
	}

	return j, jdot
}

// PinConstraint holds a body anchor at a fixed distance from a world pivot
type PinConstraint struct {
	rod
}

// NewPinConstraint creates a pin at the current anchor-to-pivot distance
func NewPinConstraint(body *actor.RigidBody, anchor actor.Anchor, pivot mgl64.Vec2) (*PinConstraint, error) {
	const op = "constraint.NewPinConstraint"

	if body == nil {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidConstraint)
	}
	p, err := body.AnchorPosition(anchor)
	if err != nil {
		return nil, errs.E(errs.KindConstruction, op, err)
	}

	length := p.Sub(pivot).Len()
	if length < geometry.Epsilon {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidConstraint)
	}

	return &PinConstraint{rod{
		ends: [2]endpoint{
			{point: pivot},
			{body: body, anchor: anchor},
		},
		length: length,
	}}, nil
}

func (p *PinConstraint) Pivot() mgl64.Vec2 {
	return p.ends[0].point
}

// DistanceConstraint keeps two body anchors at a fixed distance
type DistanceConstraint struct {
	rod
}

// NewDistanceConstraint creates a rigid rod at the current anchor-to-anchor distance
func NewDistanceConstraint(a, b *actor.RigidBody, anchorA, anchorB actor.Anchor) (*DistanceConstraint, error) {
	const op = "constraint.NewDistanceConstraint"

	if a == nil || b == nil || a == b {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidConstraint)
	}
	pA, err := a.AnchorPosition(anchorA)
	if err != nil {
		return nil, errs.E(errs.KindConstruction, op, err)
	}
	pB, err := b.AnchorPosition(anchorB)
	if err != nil {
		return nil, errs.E(errs.KindConstruction, op, err)
	}

	length := pB.Sub(pA).Len()
	if length < geometry.Epsilon {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidConstraint)
	}

	return &DistanceConstraint{rod{
		ends: [2]endpoint{
			{body: a, anchor: anchorA},
			{body: b, anchor: anchorB},
		},
		length: length,
	}}, nil
}
