package plume

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/config"
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/akmonengine/plume/integrators"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestWorld(t *testing.T, mutate func(cfg *config.Config)) *World {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func addBox(t *testing.T, w *World, bodyType actor.BodyType, size float64, pos, vel mgl64.Vec2) BodyID {
	t.Helper()

	vertices, err := geometry.Rectangle(size, size)
	if err != nil {
		t.Fatalf("Rectangle: %v", err)
	}

	id, err := w.AddBody(actor.BodyDef{
		Type:     bodyType,
		Mass:     1,
		Vertices: vertices,
		Position: pos,
		Velocity: vel,
	})
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	return id
}

func mustBody(t *testing.T, w *World, id BodyID) *actor.RigidBody {
	t.Helper()

	rb, err := w.Body(id)
	if err != nil {
		t.Fatalf("Body(%v): %v", id, err)
	}
	return rb
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewWorld_Defaults(t *testing.T) {
	w, err := NewWorld(nil)
	if err != nil {
		t.Fatalf("NewWorld(nil): %v", err)
	}

	cfg := w.Config()
	if cfg.Timestep != config.DefaultTimestep {
		t.Errorf("Timestep = %v, want %v", cfg.Timestep, config.DefaultTimestep)
	}
	if !cfg.Gravity.Enabled || cfg.Drag.Enabled || cfg.Constraints.Enabled {
		t.Errorf("unexpected default switches: %+v", cfg)
	}
	if w.Time() != 0 || len(w.Bodies()) != 0 {
		t.Error("new world should be empty at t = 0")
	}
}

func TestNewWorld_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timestep = 0

	_, err := NewWorld(cfg)
	if err == nil {
		t.Fatal("expected an error for a zero timestep")
	}
	if errs.KindOf(err) != errs.KindConstruction {
		t.Errorf("KindOf = %v, want construction", errs.KindOf(err))
	}
}

func TestWorld_AddBody(t *testing.T) {
	w := newTestWorld(t, nil)

	t.Run("static body gets a default mass", func(t *testing.T) {
		vertices, _ := geometry.Rectangle(1, 1)
		id, err := w.AddStaticBody(actor.BodyDef{Vertices: vertices})
		if err != nil {
			t.Fatalf("AddStaticBody: %v", err)
		}
		if rb := mustBody(t, w, id); rb.InverseMass() != 0 || rb.BodyType != actor.BodyTypeStatic {
			t.Errorf("static body has inverse mass %v and type %v", rb.InverseMass(), rb.BodyType)
		}
	})

	t.Run("dynamic body requires mass", func(t *testing.T) {
		vertices, _ := geometry.Rectangle(1, 1)
		_, err := w.AddDynamicBody(actor.BodyDef{Vertices: vertices})
		if !errors.Is(err, errs.ErrNonPositiveMass) {
			t.Errorf("expected ErrNonPositiveMass, got %v", err)
		}
	})

	t.Run("rotational factory sets the type", func(t *testing.T) {
		vertices, _ := geometry.Rectangle(1, 1)
		id, err := w.AddRotationalBody(actor.BodyDef{Mass: 2, Vertices: vertices, Velocity: mgl64.Vec2{1, 1}})
		if err != nil {
			t.Fatalf("AddRotationalBody: %v", err)
		}
		rb := mustBody(t, w, id)
		if rb.BodyType != actor.BodyTypeRotationalOnly || rb.Velocity != (mgl64.Vec2{}) {
			t.Errorf("rotational body: type %v velocity %v", rb.BodyType, rb.Velocity)
		}
	})
}

func TestWorld_GlobalGeneratorsGrow(t *testing.T) {
	w := newTestWorld(t, nil)

	for i := 0; i < 100; i++ {
		addBox(t, w, actor.BodyTypeDynamic, 0.5, mgl64.Vec2{float64(i), 0}, mgl64.Vec2{})
	}

	if got := len(w.Gravity().Bodies()); got != 100 {
		t.Errorf("gravity tracks %d bodies, want 100", got)
	}
	if got := len(w.Drag().Bodies()); got != 100 {
		t.Errorf("drag tracks %d bodies, want 100", got)
	}
}

func TestWorld_AddBodyWithZeroGeneratorCapacity(t *testing.T) {
	w := newTestWorld(t, nil)
	w.Gravity().SetMaxBodies(0)
	w.Drag().SetMaxBodies(0)

	id := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	rb := mustBody(t, w, id)

	if got := len(w.Bodies()); got != 1 {
		t.Fatalf("world holds %d bodies, want 1", got)
	}
	if !w.Gravity().Contains(rb) || !w.Drag().Contains(rb) {
		t.Error("body should be registered with gravity and drag")
	}
	if w.Gravity().MaxBodies() < 1 || w.Drag().MaxBodies() < 1 {
		t.Errorf("capacities %d/%d should have grown from zero", w.Gravity().MaxBodies(), w.Drag().MaxBodies())
	}
}

func TestWorld_AddBodyFailureLeavesWorldUntouched(t *testing.T) {
	w := newTestWorld(t, nil)
	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})

	vertices, err := geometry.Rectangle(1, 1)
	if err != nil {
		t.Fatalf("Rectangle: %v", err)
	}
	_, err = w.AddBody(actor.BodyDef{Type: actor.BodyTypeDynamic, Mass: -1, Vertices: vertices})
	if !errors.Is(err, errs.ErrNonPositiveMass) {
		t.Fatalf("err = %v, want ErrNonPositiveMass", err)
	}

	if got := len(w.Bodies()); got != 1 {
		t.Errorf("world holds %d bodies after a failed add, want 1", got)
	}
	if len(w.Gravity().Bodies()) != 1 || len(w.Drag().Bodies()) != 1 {
		t.Error("failed add must not register with the global generators")
	}
}

// =============================================================================
// Handle Tests
// =============================================================================

func TestWorld_RemoveBody(t *testing.T) {
	w := newTestWorld(t, nil)

	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{3, 0}, mgl64.Vec2{})
	c := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{6, 0}, mgl64.Vec2{})

	if _, err := w.AddSpring(a, b, actor.AnchorCenter, actor.AnchorCenter, 10, 3); err != nil {
		t.Fatalf("AddSpring: %v", err)
	}
	keep, err := w.AddSpring(a, c, actor.AnchorCenter, actor.AnchorCenter, 10, 6)
	if err != nil {
		t.Fatalf("AddSpring: %v", err)
	}
	if _, err := w.AddPinConstraint(b, actor.AnchorCenter, mgl64.Vec2{3, 5}); err != nil {
		t.Fatalf("AddPinConstraint: %v", err)
	}

	if err := w.RemoveBody(b); err != nil {
		t.Fatalf("RemoveBody: %v", err)
	}

	_, err = w.Body(b)
	if !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("stale handle: expected ErrUnknownID, got %v", err)
	}
	if errs.KindOf(err) != errs.KindLookup {
		t.Errorf("KindOf = %v, want lookup", errs.KindOf(err))
	}
	if err := w.RemoveBody(b); !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("second RemoveBody: expected ErrUnknownID, got %v", err)
	}

	if forces := w.Forces(); len(forces) != 1 || forces[0].ID() != keep {
		t.Errorf("expected only the a-c spring to survive, got %d forces", len(forces))
	}
	if n := len(w.Constraints()); n != 0 {
		t.Errorf("expected the pin to be removed, got %d constraints", n)
	}
	if !w.Gravity().Contains(mustBody(t, w, a)) || len(w.Gravity().Bodies()) != 2 {
		t.Errorf("gravity should track the 2 remaining bodies, got %d", len(w.Gravity().Bodies()))
	}

	ids := w.BodyIDs()
	if len(ids) != 2 || ids[0] != a || ids[1] != c {
		t.Errorf("BodyIDs = %v, want [%v %v]", ids, a, c)
	}

	// the freed slot is reused with a new generation
	d := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{9, 0}, mgl64.Vec2{})
	if d == b {
		t.Error("a new body must not reuse a stale handle")
	}
	if _, err := w.Body(b); err == nil {
		t.Error("stale handle resolved after slot reuse")
	}

	w.Step()
}

func TestWorld_UnknownHandles(t *testing.T) {
	w := newTestWorld(t, nil)
	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})

	var zero BodyID
	if _, err := w.AddSpring(a, zero, actor.AnchorCenter, actor.AnchorCenter, 1, 1); !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("AddSpring with zero handle: %v", err)
	}
	if _, err := w.AddDistanceConstraint(zero, a, actor.AnchorCenter, actor.AnchorCenter); !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("AddDistanceConstraint with zero handle: %v", err)
	}
	if err := w.RemoveForce(ForceID{}); !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("RemoveForce with zero handle: %v", err)
	}
	if err := w.RemoveConstraint(ConstraintID{}); !errors.Is(err, errs.ErrUnknownID) {
		t.Errorf("RemoveConstraint with zero handle: %v", err)
	}
	if _, err := w.Force(ForceID{}); errs.KindOf(err) != errs.KindLookup {
		t.Errorf("Force with zero handle: %v", err)
	}
}

func TestWorld_AddSpringValidation(t *testing.T) {
	w := newTestWorld(t, nil)
	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{2, 0}, mgl64.Vec2{})

	if _, err := w.AddSpring(a, b, actor.AnchorCenter, actor.AnchorCenter, -1, 1); !errors.Is(err, errs.ErrInvalidSpring) {
		t.Errorf("negative stiffness: %v", err)
	}
	if _, err := w.AddSpring(a, b, actor.Anchor(99), actor.AnchorCenter, 1, 1); !errors.Is(err, errs.ErrInvalidAnchor) {
		t.Errorf("invalid anchor: %v", err)
	}
	if len(w.Forces()) != 0 {
		t.Error("failed springs must not be stored")
	}
}

// =============================================================================
// Configuration Tests
// =============================================================================

func TestWorld_SetTimestepPanics(t *testing.T) {
	w := newTestWorld(t, nil)

	for _, h := range []float64{0, -0.1, math.NaN()} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SetTimestep(%v) should panic", h)
				}
			}()
			w.SetTimestep(h)
		}()
	}

	w.SetTimestep(0.01)
	if w.Config().Timestep != 0.01 {
		t.Errorf("Timestep = %v, want 0.01", w.Config().Timestep)
	}
}

func TestWorld_SettersRejectInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		set  func(w *World) error
	}{
		{"zero threshold", func(w *World) error { return w.SetPenetrationThreshold(0) }},
		{"negative threshold", func(w *World) error { return w.SetPenetrationThreshold(-0.05) }},
		{"NaN threshold", func(w *World) error { return w.SetPenetrationThreshold(math.NaN()) }},
		{"infinite threshold", func(w *World) error { return w.SetPenetrationThreshold(math.Inf(1)) }},
		{"negative gravity", func(w *World) error { return w.SetGravity(-9.81) }},
		{"NaN gravity", func(w *World) error { return w.SetGravity(math.NaN()) }},
		{"negative drag", func(w *World) error { return w.SetDragCoefficient(-1) }},
		{"NaN drag", func(w *World) error { return w.SetDragCoefficient(math.NaN()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, nil)
			before := w.Config()

			err := tt.set(w)
			if !errors.Is(err, errs.ErrInvalidConfig) || errs.KindOf(err) != errs.KindConstruction {
				t.Fatalf("err = %v, want a construction error wrapping ErrInvalidConfig", err)
			}
			if w.Config() != before {
				t.Errorf("config changed after a rejected value: %+v", w.Config())
			}
			if w.Gravity().Magnitude() != before.Gravity.G || w.Drag().Coefficient() != before.Drag.Coefficient {
				t.Error("generators changed after a rejected value")
			}
		})
	}
}

func TestWorld_RejectedThresholdKeepsDeepDetection(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Gravity.Enabled = false
	})
	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0.5, 0}, mgl64.Vec2{})

	if err := w.SetPenetrationThreshold(math.NaN()); err == nil {
		t.Fatal("NaN threshold should be rejected")
	}
	if _, deep := w.Detect(w.Config().PenetrationThreshold); !deep {
		t.Error("half-overlapping boxes should still be reported as deep penetration")
	}

	if err := w.SetPenetrationThreshold(0.6); err != nil {
		t.Fatalf("SetPenetrationThreshold(0.6): %v", err)
	}
	if w.Config().PenetrationThreshold != 0.6 {
		t.Errorf("PenetrationThreshold = %v, want 0.6", w.Config().PenetrationThreshold)
	}
	if _, deep := w.Detect(w.Config().PenetrationThreshold); deep {
		t.Error("a 0.5 overlap is below a 0.6 threshold")
	}
}

func TestWorld_SetIntegrator(t *testing.T) {
	w := newTestWorld(t, nil)

	if err := w.SetIntegrator(integrators.LeapFrog); err != nil {
		t.Fatalf("SetIntegrator: %v", err)
	}
	if w.Config().Integrator != "leapfrog" {
		t.Errorf("Integrator = %q, want leapfrog", w.Config().Integrator)
	}
	if err := w.SetIntegrator(integrators.Kind(42)); !errors.Is(err, errs.ErrUnknownIntegrator) {
		t.Errorf("unknown integrator: %v", err)
	}
}

// =============================================================================
// Stepping Tests
// =============================================================================

func TestWorld_FreeFall(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Timestep = 0.01
	})
	id := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	ground := addBox(t, w, actor.BodyTypeStatic, 1, mgl64.Vec2{0, -100}, mgl64.Vec2{})

	for i := 0; i < 100; i++ {
		if h := w.Step(); h != 0.01 {
			t.Fatalf("step %d consumed %v, want 0.01", i, h)
		}
	}

	rb := mustBody(t, w, id)
	if !almostEqual(w.Time(), 1, 1e-9) {
		t.Errorf("Time = %v, want 1", w.Time())
	}
	if !almostEqual(rb.Velocity.Y(), -config.DefaultGravity, 1e-9) {
		t.Errorf("vy = %v, want %v", rb.Velocity.Y(), -config.DefaultGravity)
	}
	// forward Euler lags the exact -g t²/2 by g h t / 2
	want := -config.DefaultGravity * 0.01 * 0.01 * 100 * 99 / 2
	if !almostEqual(rb.Position().Y(), want, 1e-9) {
		t.Errorf("y = %v, want %v", rb.Position().Y(), want)
	}
	if mustBody(t, w, ground).Position() != (mgl64.Vec2{0, -100}) {
		t.Error("static body moved")
	}
}

func TestWorld_HeadOnCollision(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Timestep = 0.01
		cfg.Gravity.Enabled = false
	})

	enters := &eventCapture{}
	w.Events.Subscribe(COLLISION_ENTER, enters.capture)

	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0})
	b := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{1.2, 0}, mgl64.Vec2{-1, 0})

	energy := w.KineticEnergy()
	for i := 0; i < 40; i++ {
		w.Step()
		if w.LastStep().Backtracks != 0 {
			t.Fatalf("step %d backtracked, approach speed is too low for that", i)
		}
	}

	bodyA := mustBody(t, w, a)
	bodyB := mustBody(t, w, b)

	if bodyA.Velocity.X() >= 0 || bodyB.Velocity.X() <= 0 {
		t.Errorf("bodies should bounce apart, got vA=%v vB=%v", bodyA.Velocity, bodyB.Velocity)
	}
	if !almostEqual(bodyA.Velocity.X()+bodyB.Velocity.X(), 0, 1e-9) {
		t.Errorf("linear momentum not conserved: %v", bodyA.Velocity.Add(bodyB.Velocity))
	}
	if !almostEqual(w.KineticEnergy(), energy, 1e-9) {
		t.Errorf("elastic collision changed kinetic energy from %v to %v", energy, w.KineticEnergy())
	}
	if enters.count() != 1 {
		t.Errorf("expected 1 COLLISION_ENTER, got %d", enters.count())
	}
}

func TestWorld_FastBodyBacktracks(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Timestep = 0.1
		cfg.Gravity.Enabled = false
	})

	backtracks := &eventCapture{}
	w.Events.Subscribe(ON_BACKTRACK, backtracks.capture)

	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{20, 0})
	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{1.5, 0}, mgl64.Vec2{})

	h := w.Step()
	report := w.LastStep()

	if !(h < 0.1) {
		t.Fatalf("consumed timestep %v should be smaller than the nominal 0.1", h)
	}
	if !almostEqual(h, 0.025, 1e-12) || report.Backtracks != 2 {
		t.Errorf("consumed %v after %d backtracks, want 0.025 after 2", h, report.Backtracks)
	}
	if report.Fallback {
		t.Error("no fallback expected")
	}
	if report.Nominal != 0.1 || report.Timestep != h {
		t.Errorf("unexpected report %+v", report)
	}
	if !almostEqual(w.Time(), h, 1e-12) {
		t.Errorf("Time = %v, want %v", w.Time(), h)
	}
	if backtracks.count() != report.Backtracks {
		t.Errorf("expected %d ON_BACKTRACK events, got %d", report.Backtracks, backtracks.count())
	}
}

func TestWorld_FallbackWhenBacktracksExhausted(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Timestep = 0.1
		cfg.Gravity.Enabled = false
		cfg.MaxBacktracks = 0
	})

	fallbacks := &eventCapture{}
	w.Events.Subscribe(ON_FALLBACK, fallbacks.capture)

	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{20, 0})
	addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{1.5, 0}, mgl64.Vec2{})

	h := w.Step()
	report := w.LastStep()

	if h != 0.1 {
		t.Errorf("fallback step consumed %v, want the nominal 0.1", h)
	}
	if !report.Fallback || report.Backtracks != 0 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Contacts != 1 || len(w.Contacts()) != 1 {
		t.Errorf("fallback should still resolve the deep contact, got %d", report.Contacts)
	}
	if fallbacks.count() != 1 {
		t.Errorf("expected 1 ON_FALLBACK event, got %d", fallbacks.count())
	}
}

func TestWorld_SpringEnergyLeapFrog(t *testing.T) {
	w := newTestWorld(t, func(cfg *config.Config) {
		cfg.Timestep = 0.01
		cfg.Gravity.Enabled = false
		cfg.Integrator = "leapfrog"
	})

	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{4, 0}, mgl64.Vec2{})
	if _, err := w.AddSpring(a, b, actor.AnchorCenter, actor.AnchorCenter, 10, 3); err != nil {
		t.Fatalf("AddSpring: %v", err)
	}

	start := w.Energy()
	if !almostEqual(start, 5, 1e-12) {
		t.Fatalf("initial energy = %v, want 0.5 * 10 * 1²", start)
	}

	for i := 0; i < 500; i++ {
		w.Step()
		if drift := math.Abs(w.Energy()-start) / start; drift > 0.01 {
			t.Fatalf("step %d: energy drift %.4f exceeds 1%%", i, drift)
		}
	}
}

func TestWorld_EnergyIncludesGravity(t *testing.T) {
	w := newTestWorld(t, nil)
	id := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 2}, mgl64.Vec2{3, 0})
	rb := mustBody(t, w, id)

	want := 0.5*9 + rb.Mass()*config.DefaultGravity*2
	if !almostEqual(w.Energy(), want, 1e-12) {
		t.Errorf("Energy = %v, want %v", w.Energy(), want)
	}

	w.SetGravityEnabled(false)
	if !almostEqual(w.Energy(), 4.5, 1e-12) {
		t.Errorf("Energy without gravity = %v, want 4.5", w.Energy())
	}
}

func TestWorld_AngularMomentum(t *testing.T) {
	w := newTestWorld(t, nil)
	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 1}, mgl64.Vec2{2, 0})
	r := addBox(t, w, actor.BodyTypeRotationalOnly, 1, mgl64.Vec2{5, 5}, mgl64.Vec2{})
	addBox(t, w, actor.BodyTypeStatic, 1, mgl64.Vec2{-5, 5}, mgl64.Vec2{})

	mustBody(t, w, a).AngularVelocity = 3
	mustBody(t, w, r).AngularVelocity = -1

	inertia := 1.0 / 6.0
	// r x p = (0, 1) x (2, 0) = -2
	want := -2 + inertia*3 + inertia*-1
	if !almostEqual(w.AngularMomentum(), want, 1e-12) {
		t.Errorf("AngularMomentum = %v, want %v", w.AngularMomentum(), want)
	}
}

func TestWorld_PendulumConstraint(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"constraints enabled", true},
		{"constraints disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t, func(cfg *config.Config) {
				cfg.Constraints.Enabled = tt.enabled
			})

			id := addBox(t, w, actor.BodyTypeDynamic, 0.2, mgl64.Vec2{1, 0}, mgl64.Vec2{})
			if _, err := w.AddPinConstraint(id, actor.AnchorCenter, mgl64.Vec2{0, 0}); err != nil {
				t.Fatalf("AddPinConstraint: %v", err)
			}
			rb := mustBody(t, w, id)

			maxError := 0.0
			for i := 0; i < 1200; i++ {
				w.Step()
				maxError = math.Max(maxError, math.Abs(rb.Position().Len()-1))
			}

			if tt.enabled && maxError > 0.02 {
				t.Errorf("pendulum length drifted by %.4f", maxError)
			}
			if !tt.enabled && maxError < 1 {
				t.Errorf("without constraints the body should fall freely, max error %.4f", maxError)
			}
		})
	}
}

func TestWorld_Describe(t *testing.T) {
	w := newTestWorld(t, nil)
	a := addBox(t, w, actor.BodyTypeDynamic, 1, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := addBox(t, w, actor.BodyTypeStatic, 1, mgl64.Vec2{2, 0}, mgl64.Vec2{})
	if _, err := w.AddSpring(a, b, actor.AnchorCenter, actor.AnchorCenter, 1, 1); err != nil {
		t.Fatalf("AddSpring: %v", err)
	}

	out := w.Describe()
	for _, want := range []string{"integrator=euler", "bodies: 2 forces: 1", "dynamic", "static", "spring", "area=1 "} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe() missing %q:\n%s", want, out)
		}
	}
}

