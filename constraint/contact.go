package constraint

import (
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Restitution is fixed: every contact is perfectly elastic
const Restitution = 1.0

type ContactPoint struct {
	Position mgl64.Vec2
	// Separation is the signed distance to the reference face, never positive
	Separation float64
}

// Contact is generated once per step and never cached.
// Normal points from Reference toward Incident.
type Contact struct {
	Incident  *actor.RigidBody
	Reference *actor.RigidBody
	Normal    mgl64.Vec2
	Depth     float64
	Points    []ContactPoint
}

// RelativeVelocity returns the velocity of the incident point relative to the
// reference point, projected on the normal. Negative means approaching.
func (c *Contact) RelativeVelocity(point mgl64.Vec2) float64 {
	rA := point.Sub(c.Incident.Position())
	rB := point.Sub(c.Reference.Position())

	velA := c.Incident.VelocityAt(rA)
	velB := c.Reference.VelocityAt(rB)

	return c.Normal.Dot(velA.Sub(velB))
}

// Resolve applies one impulse per contact point, in order, without iterating to
// convergence. Points already separating are skipped.
func (c *Contact) Resolve() {
	bodyA := c.Incident
	bodyB := c.Reference

	for _, point := range c.Points {
		relativeVel := c.RelativeVelocity(point.Position)
		if relativeVel >= 0 {
			continue
		}

		rA := point.Position.Sub(bodyA.Position())
		rB := point.Position.Sub(bodyB.Position())

		rACrossN := geometry.Cross(rA, c.Normal)
		rBCrossN := geometry.Cross(rB, c.Normal)

		effectiveInverseMass := bodyA.InverseMass() + bodyB.InverseMass() +
			rACrossN*rACrossN*bodyA.InverseInertia() +
			rBCrossN*rBCrossN*bodyB.InverseInertia()
		if effectiveInverseMass < geometry.Epsilon {
			continue
		}

		j := -(1.0 + Restitution) * relativeVel / effectiveInverseMass
		impulse := c.Normal.Mul(j)

		bodyA.ApplyImpulse(impulse, rA)
		bodyB.ApplyImpulse(impulse.Mul(-1), rB)
	}
}
