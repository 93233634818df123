package constraint

import "gonum.org/v1/gonum/floats"

// SparseBlockMatrix is a constraint Jacobian stored row by row as 1x3 body blocks
type SparseBlockMatrix struct {
	rows   [][]Block
	bodies int
}

func NewSparseBlockMatrix(bodies int) *SparseBlockMatrix {
	return &SparseBlockMatrix{bodies: bodies}
}

// Reset drops every row and resizes the column space
func (m *SparseBlockMatrix) Reset(bodies int) {
	m.rows = m.rows[:0]
	m.bodies = bodies
}

// AddRow appends a constraint row and returns its index
func (m *SparseBlockMatrix) AddRow(blocks []Block) int {
	m.rows = append(m.rows, blocks)
	return len(m.rows) - 1
}

func (m *SparseBlockMatrix) Rows() int {
	return len(m.rows)
}

// Cols is the number of scalar columns, BlockSize per body
func (m *SparseBlockMatrix) Cols() int {
	return m.bodies * BlockSize
}

// Mul returns J·v
func (m *SparseBlockMatrix) Mul(v []float64) []float64 {
	if len(v) != m.Cols() {
		panic("constraint: vector length does not match matrix columns")
	}

	out := make([]float64, len(m.rows))
	for r, row := range m.rows {
		for _, b := range row {
			out[r] += floats.Dot(b.Values[:], v[b.Body*BlockSize:(b.Body+1)*BlockSize])
		}
	}
	return out
}

// MulTranspose returns Jᵀ·l
func (m *SparseBlockMatrix) MulTranspose(l []float64) []float64 {
	if len(l) != len(m.rows) {
		panic("constraint: vector length does not match matrix rows")
	}

	out := make([]float64, m.Cols())
	for r, row := range m.rows {
		for _, b := range row {
			floats.AddScaled(out[b.Body*BlockSize:(b.Body+1)*BlockSize], l[r], b.Values[:])
		}
	}
	return out
}
