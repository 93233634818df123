package plume

import (
	"fmt"
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/config"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/force"
	"github.com/akmonengine/plume/integrators"
	"github.com/akmonengine/plume/internal/arena"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// BodyID identifies a body. It becomes stale once the body is removed.
type BodyID = arena.Handle

// ForceID identifies a force generator owned by a World
type ForceID = arena.Handle

// ConstraintID identifies a bilateral constraint owned by a World
type ConstraintID = arena.Handle

type stepState uint8

const (
	stateIntegrate stepState = iota
	stateDetect
	stateBacktrack
	stateResolve
	stateDone
)

// StepReport describes how the last call to Step went
type StepReport struct {
	// Timestep actually consumed, smaller than Nominal after backtracking
	Timestep   float64
	Nominal    float64
	Backtracks int
	Contacts   int
	// Fallback is set when backtracking gave up and contacts were resolved anyway
	Fallback bool
}

type Option func(*World)

// WithLogger replaces the default no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// World owns every body, force generator and constraint of a simulation.
// It is not safe for concurrent use; run independent worlds in parallel instead.
type World struct {
	cfg    config.Config
	logger *zap.Logger

	bodies  arena.Arena[*actor.RigidBody]
	order   []*actor.RigidBody
	indices map[*actor.RigidBody]int

	forces      arena.Arena[*force.Generator]
	constraints arena.Arena[constraint.Constraint]

	gravity *force.Generator
	drag    *force.Generator

	integrator *integrators.Integrator
	time       float64

	contacts []*constraint.Contact
	last     StepReport

	jacobian    *constraint.SparseBlockMatrix
	jacobianDot *constraint.SparseBlockMatrix

	Events Events
}

// NewWorld creates an empty world. A nil cfg means config.DefaultConfig().
func NewWorld(cfg *config.Config, opts ...Option) (*World, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.E(errs.KindConstruction, "plume.NewWorld", err)
	}

	kind, err := cfg.IntegratorKind()
	if err != nil {
		return nil, err
	}
	integrator, err := integrators.New(kind)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:         *cfg,
		logger:      zap.NewNop(),
		indices:     make(map[*actor.RigidBody]int),
		gravity:     force.NewGravity(cfg.Gravity.G, force.DefaultCapacity),
		drag:        force.NewViscousDrag(cfg.Drag.Coefficient, force.DefaultCapacity),
		integrator:  integrator,
		jacobian:    constraint.NewSparseBlockMatrix(0),
		jacobianDot: constraint.NewSparseBlockMatrix(0),
		Events:      NewEvents(),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// =============================================================================
// Factories
// =============================================================================

// AddBody validates def, stores the new body and registers it with the global
// generators
func (w *World) AddBody(def actor.BodyDef) (BodyID, error) {
	if def.Type == actor.BodyTypeStatic && def.Mass <= 0 {
		def.Mass = 1
	}

	rb, err := actor.NewRigidBody(def)
	if err != nil {
		return BodyID{}, err
	}

	// register with the global generators first so a failure leaves the world untouched
	var registered []*force.Generator
	for _, g := range []*force.Generator{w.gravity, w.drag} {
		for g.MaxBodies() <= len(g.Bodies()) {
			g.SetMaxBodies(max(1, 2*g.MaxBodies()))
		}
		if err := g.AddBody(rb); err != nil {
			for _, r := range registered {
				r.RemoveBody(rb)
			}
			return BodyID{}, err
		}
		registered = append(registered, g)
	}

	id := w.bodies.Insert(rb)
	rb.SetID(id)
	w.indices[rb] = len(w.order)
	w.order = append(w.order, rb)

	w.logger.Debug("body added",
		zap.Stringer("body", id),
		zap.Stringer("type", rb.BodyType),
		zap.Float64("mass", rb.Mass()),
		zap.Int("vertices", len(rb.Shape.Vertices())))

	return id, nil
}

func (w *World) AddDynamicBody(def actor.BodyDef) (BodyID, error) {
	def.Type = actor.BodyTypeDynamic
	return w.AddBody(def)
}

func (w *World) AddRotationalBody(def actor.BodyDef) (BodyID, error) {
	def.Type = actor.BodyTypeRotationalOnly
	return w.AddBody(def)
}

func (w *World) AddStaticBody(def actor.BodyDef) (BodyID, error) {
	def.Type = actor.BodyTypeStatic
	return w.AddBody(def)
}

// AddSpring connects two bodies through their anchors
func (w *World) AddSpring(a, b BodyID, anchorA, anchorB actor.Anchor, stiffness, restLength float64) (ForceID, error) {
	bodyA, err := w.Body(a)
	if err != nil {
		return ForceID{}, err
	}
	bodyB, err := w.Body(b)
	if err != nil {
		return ForceID{}, err
	}

	spring, err := force.NewSpring(bodyA, bodyB, anchorA, anchorB, stiffness, restLength)
	if err != nil {
		return ForceID{}, err
	}

	return w.AddForce(spring), nil
}

// AddForce takes ownership of a generator. Its bodies must belong to this world.
func (w *World) AddForce(g *force.Generator) ForceID {
	g.SetLogger(w.logger)
	id := w.forces.Insert(g)
	g.SetID(id)

	w.logger.Debug("force added", zap.Stringer("force", id), zap.Stringer("kind", g.Kind()))
	return id
}

// AddPinConstraint keeps an anchor of body at its current distance from pivot
func (w *World) AddPinConstraint(body BodyID, anchor actor.Anchor, pivot mgl64.Vec2) (ConstraintID, error) {
	rb, err := w.Body(body)
	if err != nil {
		return ConstraintID{}, err
	}

	pin, err := constraint.NewPinConstraint(rb, anchor, pivot)
	if err != nil {
		return ConstraintID{}, err
	}

	return w.addConstraint(pin), nil
}

// AddDistanceConstraint keeps two anchors at their current distance
func (w *World) AddDistanceConstraint(a, b BodyID, anchorA, anchorB actor.Anchor) (ConstraintID, error) {
	bodyA, err := w.Body(a)
	if err != nil {
		return ConstraintID{}, err
	}
	bodyB, err := w.Body(b)
	if err != nil {
		return ConstraintID{}, err
	}

	rod, err := constraint.NewDistanceConstraint(bodyA, bodyB, anchorA, anchorB)
	if err != nil {
		return ConstraintID{}, err
	}

	return w.addConstraint(rod), nil
}

func (w *World) addConstraint(c constraint.Constraint) ConstraintID {
	id := w.constraints.Insert(c)
	c.SetID(id)
	w.logger.Debug("constraint added", zap.Stringer("constraint", id))
	return id
}

// =============================================================================
// Queries
// =============================================================================

// Body returns the body for id. The pointer stays valid until the body is removed.
func (w *World) Body(id BodyID) (*actor.RigidBody, error) {
	rb, ok := w.bodies.Get(id)
	if !ok {
		return nil, errs.E(errs.KindLookup, "plume.Body", fmt.Errorf("%w: body %v", errs.ErrUnknownID, id))
	}
	return rb, nil
}

// Bodies returns every body in insertion order. The slice must not be modified.
func (w *World) Bodies() []*actor.RigidBody {
	return w.order
}

func (w *World) BodyIDs() []BodyID {
	ids := make([]BodyID, len(w.order))
	for i, rb := range w.order {
		ids[i] = rb.ID()
	}
	return ids
}

func (w *World) Force(id ForceID) (*force.Generator, error) {
	g, ok := w.forces.Get(id)
	if !ok {
		return nil, errs.E(errs.KindLookup, "plume.Force", fmt.Errorf("%w: force %v", errs.ErrUnknownID, id))
	}
	return g, nil
}

// Forces returns the generators added with AddForce or AddSpring
func (w *World) Forces() []*force.Generator {
	out := make([]*force.Generator, 0, w.forces.Len())
	w.forces.Each(func(_ arena.Handle, g *force.Generator) bool {
		out = append(out, g)
		return true
	})
	return out
}

func (w *World) Constraint(id ConstraintID) (constraint.Constraint, error) {
	c, ok := w.constraints.Get(id)
	if !ok {
		return nil, errs.E(errs.KindLookup, "plume.Constraint", fmt.Errorf("%w: constraint %v", errs.ErrUnknownID, id))
	}
	return c, nil
}

func (w *World) Constraints() []constraint.Constraint {
	out := make([]constraint.Constraint, 0, w.constraints.Len())
	w.constraints.Each(func(_ arena.Handle, c constraint.Constraint) bool {
		out = append(out, c)
		return true
	})
	return out
}

// Contacts generated by the last Step
func (w *World) Contacts() []*constraint.Contact {
	return w.contacts
}

func (w *World) Time() float64 {
	return w.time
}

func (w *World) LastStep() StepReport {
	return w.last
}

// Config returns a copy of the current configuration
func (w *World) Config() config.Config {
	return w.cfg
}

func (w *World) Gravity() *force.Generator {
	return w.gravity
}

func (w *World) Drag() *force.Generator {
	return w.drag
}

// =============================================================================
// Removal
// =============================================================================

// RemoveBody deletes a body, its springs and its constraints
func (w *World) RemoveBody(id BodyID) error {
	rb, ok := w.bodies.Remove(id)
	if !ok {
		return errs.E(errs.KindLookup, "plume.RemoveBody", fmt.Errorf("%w: body %v", errs.ErrUnknownID, id))
	}

	index := w.indices[rb]
	w.order = append(w.order[:index], w.order[index+1:]...)
	delete(w.indices, rb)
	for i := index; i < len(w.order); i++ {
		w.indices[w.order[i]] = i
	}

	w.gravity.RemoveBody(rb)
	w.drag.RemoveBody(rb)

	var brokenForces []ForceID
	w.forces.Each(func(fid arena.Handle, g *force.Generator) bool {
		if g.RemoveBody(rb) && g.Kind() == force.KindSpring {
			brokenForces = append(brokenForces, fid)
		}
		return true
	})
	for _, fid := range brokenForces {
		w.forces.Remove(fid)
	}

	var brokenConstraints []ConstraintID
	w.constraints.Each(func(cid arena.Handle, c constraint.Constraint) bool {
		for _, b := range c.Bodies() {
			if b == rb {
				brokenConstraints = append(brokenConstraints, cid)
				break
			}
		}
		return true
	})
	for _, cid := range brokenConstraints {
		w.constraints.Remove(cid)
	}

	w.Events.forget(id)

	w.logger.Debug("body removed",
		zap.Stringer("body", id),
		zap.Int("springs", len(brokenForces)),
		zap.Int("constraints", len(brokenConstraints)))

	return nil
}

func (w *World) RemoveForce(id ForceID) error {
	if _, ok := w.forces.Remove(id); !ok {
		return errs.E(errs.KindLookup, "plume.RemoveForce", fmt.Errorf("%w: force %v", errs.ErrUnknownID, id))
	}
	w.logger.Debug("force removed", zap.Stringer("force", id))
	return nil
}

func (w *World) RemoveConstraint(id ConstraintID) error {
	if _, ok := w.constraints.Remove(id); !ok {
		return errs.E(errs.KindLookup, "plume.RemoveConstraint", fmt.Errorf("%w: constraint %v", errs.ErrUnknownID, id))
	}
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

func (w *World) SetGravityEnabled(enabled bool) {
	w.cfg.Gravity.Enabled = enabled
}

// SetGravity rejects a negative or non-finite magnitude
func (w *World) SetGravity(g float64) error {
	if !(g >= 0) || math.IsInf(g, 0) {
		return errs.E(errs.KindConstruction, "plume.SetGravity", fmt.Errorf("%w: gravity %v", errs.ErrInvalidConfig, g))
	}
	w.cfg.Gravity.G = g
	w.gravity.SetMagnitude(g)
	return nil
}

func (w *World) SetDragEnabled(enabled bool) {
	w.cfg.Drag.Enabled = enabled
}

// SetDragCoefficient rejects a negative or non-finite coefficient
func (w *World) SetDragCoefficient(c float64) error {
	if !(c >= 0) || math.IsInf(c, 0) {
		return errs.E(errs.KindConstruction, "plume.SetDragCoefficient", fmt.Errorf("%w: drag coefficient %v", errs.ErrInvalidConfig, c))
	}
	w.cfg.Drag.Coefficient = c
	w.drag.SetCoefficient(c)
	return nil
}

func (w *World) SetIntegrator(kind integrators.Kind) error {
	integrator, err := integrators.New(kind)
	if err != nil {
		return err
	}
	w.integrator = integrator
	w.cfg.Integrator = kind.String()
	return nil
}

// SetTimestep panics on a non-positive timestep
func (w *World) SetTimestep(h float64) {
	if !(h > 0) || math.IsInf(h, 0) {
		panic(fmt.Sprintf("plume: timestep must be positive, got %v", h))
	}
	w.cfg.Timestep = h
}

// SetPenetrationThreshold rejects a non-positive or non-finite threshold
func (w *World) SetPenetrationThreshold(threshold float64) error {
	if !(threshold > 0) || math.IsInf(threshold, 0) {
		return errs.E(errs.KindConstruction, "plume.SetPenetrationThreshold", fmt.Errorf("%w: penetration threshold %v", errs.ErrInvalidConfig, threshold))
	}
	w.cfg.PenetrationThreshold = threshold
	return nil
}

func (w *World) SetMaxBacktracks(n int) {
	w.cfg.MaxBacktracks = max(0, n)
}

// SetConstraintsEnabled turns the constraint force pass on or off
func (w *World) SetConstraintsEnabled(enabled bool) {
	w.cfg.Constraints.Enabled = enabled
}

// =============================================================================
// Stepping
// =============================================================================

// ComputeForces clears every accumulator and refills it from the enabled generators,
// then from the constraint solve when enabled
func (w *World) ComputeForces() {
	for _, rb := range w.order {
		rb.ClearForces()
	}

	if w.cfg.Gravity.Enabled {
		w.gravity.Apply()
	}
	if w.cfg.Drag.Enabled {
		w.drag.Apply()
	}
	w.forces.Each(func(_ arena.Handle, g *force.Generator) bool {
		g.Apply()
		return true
	})

	if w.cfg.Constraints.Enabled && w.constraints.Len() > 0 {
		w.applyConstraintForces()
	}
}

func (w *World) AdvanceClock(h float64) {
	w.time += h
}

// Detect runs the broad and narrow phases on the current state
func (w *World) Detect(threshold float64) ([]*constraint.Contact, bool) {
	return NarrowPhase(BroadPhase(w.order), threshold)
}

// Step advances the simulation by the nominal timestep, halving it while the
// collision pass reports deep penetration. It returns the timestep consumed.
func (w *World) Step() float64 {
	h := w.cfg.Timestep
	report := StepReport{Nominal: h}

	state := stateIntegrate
	for state != stateDone {
		switch state {
		case stateIntegrate:
			w.integrator.Step(w, h)
			state = stateDetect

		case stateDetect:
			contacts, deep := w.Detect(w.cfg.PenetrationThreshold)
			w.contacts = contacts
			switch {
			case !deep:
				state = stateResolve
			case report.Backtracks < w.cfg.MaxBacktracks:
				state = stateBacktrack
			default:
				w.logger.Warn("deep penetration persists, resolving contacts only",
					zap.Int("backtracks", report.Backtracks),
					zap.Float64("dt", h))
				w.contacts, _ = w.Detect(math.Inf(1))
				w.Events.emitFallback(report.Backtracks, h)
				report.Fallback = true
				state = stateResolve
			}

		case stateBacktrack:
			w.integrator.Backtrack(w, h)
			h /= 2
			report.Backtracks++
			w.Events.emitBacktrack(report.Backtracks, h)
			w.logger.Debug("deep penetration, halving timestep",
				zap.Float64("dt", h),
				zap.Int("attempt", report.Backtracks))
			state = stateIntegrate

		case stateResolve:
			for _, c := range w.contacts {
				c.Resolve()
			}
			state = stateDone
		}
	}

	report.Timestep = h
	report.Contacts = len(w.contacts)
	w.last = report

	w.Events.recordCollisions(w.contacts)
	w.Events.flush()

	return h
}
