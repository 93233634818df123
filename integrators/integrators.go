// Package integrators advances body states over one timestep.
//
// Both schemes snapshot the kinematic state of every body before moving anything, so
// a step that ends in deep penetration can be undone exactly with Backtrack.
package integrators

import (
	"fmt"
	"strings"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/errs"
)

// stateSize is the number of scalars saved per body: angle, ω, px, py, vx, vy
const stateSize = 6

// Kind selects the integration scheme
type Kind uint8

const (
	ForwardEuler Kind = iota
	LeapFrog
)

func (k Kind) String() string {
	switch k {
	case ForwardEuler:
		return "euler"
	case LeapFrog:
		return "leapfrog"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind accepts "euler", "forward_euler" and "leapfrog", case-insensitive
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euler", "forward_euler", "forwardeuler":
		return ForwardEuler, nil
	case "leapfrog", "leap_frog", "verlet":
		return LeapFrog, nil
	default:
		return 0, errs.E(errs.KindConstruction, "integrators.ParseKind", fmt.Errorf("%w: %q", errs.ErrUnknownIntegrator, s))
	}
}

// Dynamics is the system an integrator drives
type Dynamics interface {
	Bodies() []*actor.RigidBody
	// ComputeForces clears every accumulator, then refills them for the current state
	ComputeForces()
	// AdvanceClock moves simulated time by h (negative to rewind)
	AdvanceClock(h float64)
}

type Integrator struct {
	kind     Kind
	snapshot []float64
}

func New(kind Kind) (*Integrator, error) {
	switch kind {
	case ForwardEuler, LeapFrog:
		return &Integrator{kind: kind}, nil
	default:
		return nil, errs.E(errs.KindConstruction, "integrators.New", errs.ErrUnknownIntegrator)
	}
}

func (in *Integrator) Kind() Kind {
	return in.kind
}

// Step advances every body by h
func (in *Integrator) Step(sys Dynamics, h float64) {
	if h < 0 {
		panic("integrators: negative timestep")
	}

	bodies := sys.Bodies()
	in.save(bodies)

	switch in.kind {
	case ForwardEuler:
		forwardEuler(sys, bodies, h)
	case LeapFrog:
		leapFrog(sys, bodies, h)
	}
}

// Backtrack restores the state saved by the last Step and rewinds the clock by h
func (in *Integrator) Backtrack(sys Dynamics, h float64) {
	bodies := sys.Bodies()
	in.restore(bodies)
	for _, rb := range bodies {
		rb.UpdatePolygonFeatures()
	}
	sys.AdvanceClock(-h)
}

func forwardEuler(sys Dynamics, bodies []*actor.RigidBody, h float64) {
	sys.ComputeForces()

	for _, rb := range bodies {
		rb.Transform.Angle += h * rb.AngularVelocity
		rb.AngularVelocity += h * rb.Torque() * rb.InverseInertia()

		rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(h))
		rb.Velocity = rb.Velocity.Add(rb.Force().Mul(h * rb.InverseMass()))

		rb.UpdatePolygonFeatures()
	}

	sys.AdvanceClock(h)
}

func leapFrog(sys Dynamics, bodies []*actor.RigidBody, h float64) {
	sys.ComputeForces()

	// half kick, full drift
	for _, rb := range bodies {
		rb.Velocity = rb.Velocity.Add(rb.Force().Mul(0.5 * h * rb.InverseMass()))
		rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(h))

		rb.AngularVelocity += 0.5 * h * rb.Torque() * rb.InverseInertia()
		rb.Transform.Angle += h * rb.AngularVelocity
	}

	sys.AdvanceClock(h)
	sys.ComputeForces()

	// second half kick
	for _, rb := range bodies {
		rb.Velocity = rb.Velocity.Add(rb.Force().Mul(0.5 * h * rb.InverseMass()))
		rb.AngularVelocity += 0.5 * h * rb.Torque() * rb.InverseInertia()

		rb.UpdatePolygonFeatures()
	}
}

func (in *Integrator) save(bodies []*actor.RigidBody) {
	if cap(in.snapshot) < stateSize*len(bodies) {
		in.snapshot = make([]float64, 0, stateSize*len(bodies))
	}
	in.snapshot = in.snapshot[:0]

	for _, rb := range bodies {
		in.snapshot = append(in.snapshot,
			rb.Transform.Angle,
			rb.AngularVelocity,
			rb.Transform.Position.X(),
			rb.Transform.Position.Y(),
			rb.Velocity.X(),
			rb.Velocity.Y(),
		)
	}
}

func (in *Integrator) restore(bodies []*actor.RigidBody) {
	if len(in.snapshot) != stateSize*len(bodies) {
		panic("integrators: body set changed between Step and Backtrack")
	}

	i := 0
	for _, rb := range bodies {
		s := in.snapshot[i : i+stateSize]
		rb.Transform.Angle = s[0]
		rb.AngularVelocity = s[1]
		rb.Transform.Position[0] = s[2]
		rb.Transform.Position[1] = s[3]
		rb.Velocity[0] = s[4]
		rb.Velocity[1] = s[5]
		i += stateSize
	}
}
