package plume

import (
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/internal/arena"
	"github.com/akmonengine/plume/linsolve"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// constraintColumn maps movable bodies to their column block in the Jacobian
func (w *World) constraintColumn(rb *actor.RigidBody) (int, bool) {
	if immovable(rb) {
		return 0, false
	}
	index, ok := w.indices[rb]
	return index, ok
}

// applyConstraintForces solves (J W Jᵀ) λ = −J̇q̇ − J W Q − ks J q̇ − kd C and adds
// the constraint forces Jᵀλ to the accumulators. It runs after every other generator so
// Q holds the applied forces.
func (w *World) applyConstraintForces() {
	n := len(w.order)
	w.jacobian.Reset(n)
	w.jacobianDot.Reset(n)

	var c []float64
	w.constraints.Each(func(_ arena.Handle, k constraint.Constraint) bool {
		j, jdot := k.JacobianBlocks(w.constraintColumn)
		if len(j) == 0 {
			return true
		}
		value, _ := k.Evaluate()
		w.jacobian.AddRow(j)
		w.jacobianDot.AddRow(jdot)
		c = append(c, value)
		return true
	})
	if len(c) == 0 {
		return
	}

	size := n * constraint.BlockSize
	qDot := make([]float64, size)
	weights := make([]float64, size)
	applied := make([]float64, size)
	for i, rb := range w.order {
		base := i * constraint.BlockSize
		force := rb.Force()

		qDot[base] = rb.AngularVelocity
		qDot[base+1] = rb.Velocity.X()
		qDot[base+2] = rb.Velocity.Y()

		weights[base] = rb.InverseInertia()
		weights[base+1] = rb.InverseMass()
		weights[base+2] = rb.InverseMass()

		applied[base] = rb.InverseInertia() * rb.Torque()
		applied[base+1] = rb.InverseMass() * force.X()
		applied[base+2] = rb.InverseMass() * force.Y()
	}

	params := w.cfg.Constraints
	ks := 2 * params.DampingRatio * params.Frequency
	kd := params.Frequency * params.Frequency

	jdq := w.jacobianDot.Mul(qDot)
	jwq := w.jacobian.Mul(applied)
	cDot := w.jacobian.Mul(qDot)

	b := make([]float64, len(c))
	for i := range b {
		b[i] = -jdq[i] - jwq[i] - ks*cDot[i] - kd*c[i]
	}

	solver := linsolve.ConjugateGradient{
		Apply: func(dst, x []float64) {
			jt := w.jacobian.MulTranspose(x)
			for i := range jt {
				jt[i] *= weights[i]
			}
			copy(dst, w.jacobian.Mul(jt))
		},
		Tolerance:     params.Tolerance,
		MaxIterations: params.MaxIterations,
	}

	lambda, result := solver.Solve(b)
	if !result.Converged {
		w.logger.Debug("constraint solve did not converge",
			zap.Int("rows", len(c)),
			zap.Int("iterations", result.Iterations),
			zap.Float64("residual", result.Residual))
	}

	generalized := w.jacobian.MulTranspose(lambda)
	for i, rb := range w.order {
		base := i * constraint.BlockSize
		rb.AddTorque(generalized[base])
		rb.AddForce(mgl64.Vec2{generalized[base+1], generalized[base+2]})
	}
}
