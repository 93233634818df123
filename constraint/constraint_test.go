package constraint

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/errs"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

// =============================================================================
// Helpers
// =============================================================================

type indexMap map[*actor.RigidBody]int

func (m indexMap) index(rb *actor.RigidBody) (int, bool) {
	i, ok := m[rb]
	return i, ok
}

// velocities flattens (ω, vx, vy) per body in index order
func velocities(bodies []*actor.RigidBody) []float64 {
	q := make([]float64, 0, BlockSize*len(bodies))
	for _, rb := range bodies {
		q = append(q, rb.AngularVelocity, rb.Velocity.X(), rb.Velocity.Y())
	}
	return q
}

func rowTimes(blocks []Block, q []float64) float64 {
	sum := 0.0
	for _, b := range blocks {
		sum += floats.Dot(b.Values[:], q[b.Body*BlockSize:(b.Body+1)*BlockSize])
	}
	return sum
}

func drift(bodies []*actor.RigidBody, h float64) {
	for _, rb := range bodies {
		rb.Transform.Angle += h * rb.AngularVelocity
		rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(h))
	}
}

// =============================================================================
// Pin and distance constraints
// =============================================================================

func TestNewPinConstraint(t *testing.T) {
	body := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{0, -2}, mgl64.Vec2{})

	pin, err := NewPinConstraint(body, actor.AnchorCenter, mgl64.Vec2{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(pin.Length(), 2, 1e-12) {
		t.Errorf("Length = %v, want 2", pin.Length())
	}
	if len(pin.Bodies()) != 1 || pin.Bodies()[0] != body {
		t.Errorf("Bodies = %v", pin.Bodies())
	}

	c, cdot := pin.Evaluate()
	if !almostEqual(c, 0, 1e-12) || !almostEqual(cdot, 0, 1e-12) {
		t.Errorf("Evaluate = (%v, %v), want (0, 0)", c, cdot)
	}
}

func TestNewConstraint_Invalid(t *testing.T) {
	a := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{3, 0}, mgl64.Vec2{})

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pin at pivot", second(NewPinConstraint(a, actor.AnchorCenter, mgl64.Vec2{})), errs.ErrInvalidConstraint},
		{"pin bad anchor", second(NewPinConstraint(a, actor.Anchor(77), mgl64.Vec2{1, 1})), errs.ErrInvalidAnchor},
		{"distance same body", second(NewDistanceConstraint(a, a, actor.AnchorCenter, actor.Anchor100At0)), errs.ErrInvalidConstraint},
		{"distance bad anchor", second(NewDistanceConstraint(a, b, actor.AnchorCenter, actor.Anchor(-3))), errs.ErrInvalidAnchor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
			if errs.KindOf(tt.err) != errs.KindConstruction {
				t.Errorf("kind = %v", errs.KindOf(tt.err))
			}
		})
	}
}

func second(_ any, err error) error {
	return err
}

// J·q̇ must equal the reported constraint velocity
func TestConstraint_JacobianMatchesVelocity(t *testing.T) {
	a := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, mgl64.Vec2{0.3, -0.7})
	b := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{2, 1}, mgl64.Vec2{-1.1, 0.4})
	a.AngularVelocity = 0.8
	b.AngularVelocity = -1.7
	a.Transform.Angle = 0.4

	distance, err := NewDistanceConstraint(a, b, actor.Anchor50At30, actor.Anchor100At0)
	if err != nil {
		t.Fatal(err)
	}
	pin, err := NewPinConstraint(b, actor.Anchor25At60, mgl64.Vec2{-1, 3})
	if err != nil {
		t.Fatal(err)
	}

	bodies := []*actor.RigidBody{a, b}
	index := indexMap{a: 0, b: 1}.index

	for _, c := range []Constraint{distance, pin} {
		// move away from the rest configuration so C != 0
		drift(bodies, 0.05)

		_, cdot := c.Evaluate()
		j, _ := c.JacobianBlocks(index)
		if got := rowTimes(j, velocities(bodies)); !almostEqual(got, cdot, 1e-9) {
			t.Errorf("%T: J·q̇ = %v, Ċ = %v", c, got, cdot)
		}
	}
}

// The time derivative blocks must match a finite difference of J along the motion
func TestConstraint_JacobianDerivative(t *testing.T) {
	a := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{0, 0}, mgl64.Vec2{0.5, 0.2})
	b := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{2, 0.5}, mgl64.Vec2{-0.3, 0.9})
	a.AngularVelocity = 1.3
	b.AngularVelocity = -0.6

	c, err := NewDistanceConstraint(a, b, actor.Anchor50At90, actor.Anchor50At180)
	if err != nil {
		t.Fatal(err)
	}

	bodies := []*actor.RigidBody{a, b}
	index := indexMap{a: 0, b: 1}.index

	const h = 1e-6
	j0, jdot := c.JacobianBlocks(index)
	drift(bodies, h)
	j1, _ := c.JacobianBlocks(index)

	for i := range j0 {
		for k := 0; k < BlockSize; k++ {
			fd := (j1[i].Values[k] - j0[i].Values[k]) / h
			if !almostEqual(fd, jdot[i].Values[k], 1e-4) {
				t.Errorf("block %d[%d]: finite difference %v, J̇ %v", i, k, fd, jdot[i].Values[k])
			}
		}
	}
}

func TestConstraint_SkipsUnindexedBodies(t *testing.T) {
	a := createBody(t, actor.BodyTypeStatic, mgl64.Vec2{0, 0}, mgl64.Vec2{})
	b := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{2, 0}, mgl64.Vec2{})

	c, err := NewDistanceConstraint(a, b, actor.AnchorCenter, actor.AnchorCenter)
	if err != nil {
		t.Fatal(err)
	}

	j, jdot := c.JacobianBlocks(indexMap{b: 0}.index)
	if len(j) != 1 || len(jdot) != 1 || j[0].Body != 0 {
		t.Fatalf("blocks = %v, %v", j, jdot)
	}
	// d = (2, 0), only the x translation of b participates
	if j[0].Values != [BlockSize]float64{0, 2, 0} {
		t.Errorf("J = %v, want [0 2 0]", j[0].Values)
	}
}

// =============================================================================
// Sparse block matrix
// =============================================================================

func TestSparseBlockMatrix_Mul(t *testing.T) {
	m := NewSparseBlockMatrix(2)
	m.AddRow([]Block{{Body: 0, Values: [3]float64{1, 2, 3}}})
	m.AddRow([]Block{
		{Body: 0, Values: [3]float64{0, 1, 0}},
		{Body: 1, Values: [3]float64{-1, 0, 2}},
	})

	if m.Rows() != 2 || m.Cols() != 6 {
		t.Fatalf("shape = %dx%d, want 2x6", m.Rows(), m.Cols())
	}

	v := []float64{1, 1, 1, 2, 0, 3}
	got := m.Mul(v)
	want := []float64{6, 1 - 2 + 6}
	if !floats.EqualApprox(got, want, 1e-12) {
		t.Errorf("Mul = %v, want %v", got, want)
	}

	l := []float64{2, -1}
	gotT := m.MulTranspose(l)
	wantT := []float64{2, 3, 6, 1, 0, -2}
	if !floats.EqualApprox(gotT, wantT, 1e-12) {
		t.Errorf("MulTranspose = %v, want %v", gotT, wantT)
	}

	// lᵀ(Jv) == (Jᵀl)ᵀv
	if !almostEqual(floats.Dot(l, got), floats.Dot(gotT, v), 1e-12) {
		t.Error("transpose identity does not hold")
	}
}

func TestSparseBlockMatrix_Reset(t *testing.T) {
	m := NewSparseBlockMatrix(1)
	m.AddRow([]Block{{Body: 0, Values: [3]float64{1, 1, 1}}})
	m.Reset(3)

	if m.Rows() != 0 || m.Cols() != 9 {
		t.Errorf("after Reset: %dx%d", m.Rows(), m.Cols())
	}
	if out := m.Mul(make([]float64, 9)); len(out) != 0 {
		t.Errorf("Mul on empty matrix = %v", out)
	}
}

func TestSparseBlockMatrix_DimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on dimension mismatch")
		}
	}()
	NewSparseBlockMatrix(2).Mul([]float64{1, 2, 3})
}

func TestPinConstraint_Pivot(t *testing.T) {
	body := createBody(t, actor.BodyTypeDynamic, mgl64.Vec2{3, 4}, mgl64.Vec2{})
	pin, err := NewPinConstraint(body, actor.AnchorCenter, mgl64.Vec2{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if pin.Pivot() != (mgl64.Vec2{}) || !almostEqual(pin.Length(), 5, 1e-12) {
		t.Errorf("pivot %v length %v", pin.Pivot(), pin.Length())
	}
	if math.IsNaN(pin.Length()) {
		t.Error("NaN length")
	}
}
