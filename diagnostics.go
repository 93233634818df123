package plume

import (
	"fmt"
	"strings"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/force"
	"github.com/akmonengine/plume/geometry"
	"github.com/akmonengine/plume/internal/arena"
)

// KineticEnergy sums the translational and rotational energy of every body
func (w *World) KineticEnergy() float64 {
	energy := 0.0
	for _, rb := range w.order {
		energy += rb.KineticEnergy()
	}
	return energy
}

// PotentialEnergy sums the energy stored by the active generators
func (w *World) PotentialEnergy() float64 {
	energy := 0.0
	if w.cfg.Gravity.Enabled {
		energy += w.gravity.Energy()
	}
	w.forces.Each(func(_ arena.Handle, g *force.Generator) bool {
		energy += g.Energy()
		return true
	})
	return energy
}

// Energy is the total mechanical energy of the world
func (w *World) Energy() float64 {
	return w.KineticEnergy() + w.PotentialEnergy()
}

// AngularMomentum about the world origin.
// Dynamic bodies contribute their orbital and spin parts, rotational-only bodies their
// spin only.
func (w *World) AngularMomentum() float64 {
	momentum := 0.0
	for _, rb := range w.order {
		switch rb.BodyType {
		case actor.BodyTypeDynamic:
			momentum += geometry.Cross(rb.Position(), rb.Velocity.Mul(rb.Mass()))
			momentum += rb.Inertia() * rb.AngularVelocity
		case actor.BodyTypeRotationalOnly:
			momentum += rb.Inertia() * rb.AngularVelocity
		}
	}
	return momentum
}

// Describe returns a human readable dump of the configuration and of every body
func (w *World) Describe() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "time=%.6f dt=%g integrator=%s\n", w.time, w.cfg.Timestep, w.integrator.Kind())
	fmt.Fprintf(&sb, "gravity: enabled=%t g=%g\n", w.cfg.Gravity.Enabled, w.gravity.Magnitude())
	fmt.Fprintf(&sb, "drag: enabled=%t c=%g\n", w.cfg.Drag.Enabled, w.drag.Coefficient())
	fmt.Fprintf(&sb, "constraints: enabled=%t count=%d\n", w.cfg.Constraints.Enabled, w.constraints.Len())
	fmt.Fprintf(&sb, "bodies: %d forces: %d\n", len(w.order), w.forces.Len())

	for _, rb := range w.order {
		fmt.Fprintf(&sb, "  body %v %s m=%g I=%g area=%g pos=(%.4f, %.4f) angle=%.4f vel=(%.4f, %.4f) omega=%.4f\n",
			rb.ID(), rb.BodyType, rb.Mass(), rb.Inertia(), rb.Shape.Area(),
			rb.Position().X(), rb.Position().Y(), rb.Angle(),
			rb.Velocity.X(), rb.Velocity.Y(), rb.AngularVelocity)
	}

	w.forces.Each(func(id arena.Handle, g *force.Generator) bool {
		fmt.Fprintf(&sb, "  force %v %s bodies=%d energy=%.6f\n", id, g.Kind(), len(g.Bodies()), g.Energy())
		return true
	})

	fmt.Fprintf(&sb, "energy: kinetic=%.6f potential=%.6f total=%.6f\n",
		w.KineticEnergy(), w.PotentialEnergy(), w.Energy())

	return sb.String()
}
