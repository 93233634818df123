// Package force implements the force generators that write into body accumulators.
//
// The set of generators is closed (gravity, spring, viscous drag), so a Generator is a
// tagged variant dispatched with a switch on its Kind rather than an interface.
package force

import (
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/akmonengine/plume/internal/arena"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// DefaultCapacity is the initial participant capacity of global generators
const DefaultCapacity = 64

// Kind tags the variant of a Generator
type Kind uint8

const (
	KindGravity Kind = iota
	KindSpring
	KindViscousDrag
)

func (k Kind) String() string {
	switch k {
	case KindGravity:
		return "gravity"
	case KindSpring:
		return "spring"
	case KindViscousDrag:
		return "viscous_drag"
	default:
		return "unknown"
	}
}

// Generator accumulates forces and torques on its registered bodies
type Generator struct {
	id        arena.Handle
	kind      Kind
	bodies    []*actor.RigidBody
	maxBodies int
	logger    *zap.Logger

	// Gravity
	magnitude float64

	// Spring
	anchors    [2]actor.Anchor
	stiffness  float64
	restLength float64

	// ViscousDrag
	coefficient float64
}

// NewGravity creates a uniform gravity field pulling along -y with acceleration g
func NewGravity(g float64, maxBodies int) *Generator {
	return &Generator{
		kind:      KindGravity,
		magnitude: g,
		maxBodies: maxBodies,
		bodies:    make([]*actor.RigidBody, 0, maxBodies),
		logger:    zap.NewNop(),
	}
}

// NewViscousDrag creates a drag opposing linear and angular velocity
func NewViscousDrag(coefficient float64, maxBodies int) *Generator {
	return &Generator{
		kind:        KindViscousDrag,
		coefficient: coefficient,
		maxBodies:   maxBodies,
		bodies:      make([]*actor.RigidBody, 0, maxBodies),
		logger:      zap.NewNop(),
	}
}

// NewSpring connects anchorA of a to anchorB of b with a Hookean spring
func NewSpring(a, b *actor.RigidBody, anchorA, anchorB actor.Anchor, stiffness, restLength float64) (*Generator, error) {
	const op = "force.NewSpring"

	if stiffness <= 0 || restLength < 0 || math.IsNaN(stiffness) || math.IsNaN(restLength) {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidSpring)
	}
	if a == nil || b == nil || a == b {
		return nil, errs.E(errs.KindConstruction, op, errs.ErrInvalidSpring)
	}
	if _, err := a.AnchorPosition(anchorA); err != nil {
		return nil, errs.E(errs.KindConstruction, op, err)
	}
	if _, err := b.AnchorPosition(anchorB); err != nil {
		return nil, errs.E(errs.KindConstruction, op, err)
	}

	return &Generator{
		kind:       KindSpring,
		bodies:     []*actor.RigidBody{a, b},
		maxBodies:  2,
		anchors:    [2]actor.Anchor{anchorA, anchorB},
		stiffness:  stiffness,
		restLength: restLength,
		logger:     zap.NewNop(),
	}, nil
}

func (g *Generator) ID() arena.Handle      { return g.id }
func (g *Generator) SetID(id arena.Handle) { g.id = id }
func (g *Generator) Kind() Kind            { return g.kind }

// SetLogger replaces the no-op logger
func (g *Generator) SetLogger(logger *zap.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Bodies returns the registered participants. The slice must not be modified.
func (g *Generator) Bodies() []*actor.RigidBody {
	return g.bodies
}

func (g *Generator) MaxBodies() int {
	return g.maxBodies
}

// SetMaxBodies raises or lowers the capacity; it never drops registered bodies
func (g *Generator) SetMaxBodies(n int) {
	if g.kind == KindSpring {
		return
	}
	g.maxBodies = max(n, len(g.bodies))
}

// AddBody registers a participant
func (g *Generator) AddBody(rb *actor.RigidBody) error {
	if len(g.bodies) >= g.maxBodies {
		return errs.E(errs.KindCapacity, "force.AddBody", errs.ErrCapacity)
	}
	if g.Contains(rb) {
		return nil
	}

	g.bodies = append(g.bodies, rb)
	return nil
}

// RemoveBody unregisters a participant and reports whether it was present
func (g *Generator) RemoveBody(rb *actor.RigidBody) bool {
	for i, b := range g.bodies {
		if b == rb {
			g.bodies = append(g.bodies[:i], g.bodies[i+1:]...)
			return true
		}
	}
	return false
}

func (g *Generator) Contains(rb *actor.RigidBody) bool {
	for _, b := range g.bodies {
		if b == rb {
			return true
		}
	}
	return false
}

// Apply adds the generator's contribution to the accumulators of its bodies
func (g *Generator) Apply() {
	switch g.kind {
	case KindGravity:
		g.applyGravity()
	case KindSpring:
		g.applySpring()
	case KindViscousDrag:
		g.applyDrag()
	}
}

// Energy returns the potential energy stored by the generator
func (g *Generator) Energy() float64 {
	switch g.kind {
	case KindGravity:
		return g.gravityEnergy()
	case KindSpring:
		return g.springEnergy()
	default:
		return 0
	}
}

// =============================================================================
// Gravity
// =============================================================================

func (g *Generator) Magnitude() float64 {
	return g.magnitude
}

func (g *Generator) SetMagnitude(magnitude float64) {
	g.magnitude = magnitude
}

func (g *Generator) applyGravity() {
	for _, rb := range g.bodies {
		if rb.InverseMass() == 0 {
			continue
		}
		rb.AddForce(mgl64.Vec2{0, -g.magnitude * rb.Mass()})
	}
}

func (g *Generator) gravityEnergy() float64 {
	energy := 0.0
	for _, rb := range g.bodies {
		if rb.InverseMass() == 0 {
			continue
		}
		energy += rb.Mass() * g.magnitude * rb.Position().Y()
	}
	return energy
}

// =============================================================================
// Spring
// =============================================================================

func (g *Generator) Stiffness() float64       { return g.stiffness }
func (g *Generator) RestLength() float64      { return g.restLength }
func (g *Generator) Anchors() [2]actor.Anchor { return g.anchors }

// Endpoints returns the world positions of both anchors
func (g *Generator) Endpoints() (mgl64.Vec2, mgl64.Vec2) {
	if len(g.bodies) < 2 {
		return mgl64.Vec2{}, mgl64.Vec2{}
	}
	// Anchors are validated at construction
	p1, _ := g.bodies[0].AnchorPosition(g.anchors[0])
	p2, _ := g.bodies[1].AnchorPosition(g.anchors[1])
	return p1, p2
}

// Stretch is the current length minus the rest length
func (g *Generator) Stretch() float64 {
	p1, p2 := g.Endpoints()
	return p2.Sub(p1).Len() - g.restLength
}

func (g *Generator) applySpring() {
	if len(g.bodies) < 2 {
		return
	}
	a, b := g.bodies[0], g.bodies[1]
	p1, p2 := g.Endpoints()

	direction, ok := geometry.Normalize(p2.Sub(p1))
	if !ok {
		g.logger.Debug("spring anchors coincide, no force applied",
			zap.Stringer("spring", g.id))
		return
	}

	stretch := p2.Sub(p1).Len() - g.restLength
	force := direction.Mul(g.stiffness * stretch)

	a.AddForceAt(force, p1)
	b.AddForceAt(force.Mul(-1), p2)
}

func (g *Generator) springEnergy() float64 {
	if len(g.bodies) < 2 {
		return 0
	}
	stretch := g.Stretch()
	return 0.5 * g.stiffness * stretch * stretch
}

// =============================================================================
// Viscous drag
// =============================================================================

func (g *Generator) Coefficient() float64 {
	return g.coefficient
}

func (g *Generator) SetCoefficient(c float64) {
	g.coefficient = c
}

func (g *Generator) applyDrag() {
	for _, rb := range g.bodies {
		if rb.InverseMass() > 0 {
			rb.AddForce(rb.Velocity.Mul(-g.coefficient))
		}
		if rb.InverseInertia() > 0 {
			rb.AddTorque(-g.coefficient * rb.AngularVelocity)
		}
	}
}
