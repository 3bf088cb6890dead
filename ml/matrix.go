package ml

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable dense matrix backed by a row-major flat slice.
// Operations never modify their operands; each returns a new Matrix.
type Matrix struct {
	rows, cols int
	data       []float64
	dense      *mat.Dense // nil when rows or cols is zero, gonum has no empty Dense
}

// -------- CONSTRUCTORS ------- //
func NewMatrix(rows, cols int) *Matrix {
	return newMatrix(rows, cols, make([]float64, rows*cols))
}

// NewRandomMatrix fills every entry independently and uniformly in [-1, 1).
func NewRandomMatrix(rows, cols int, rng *rand.Rand) *Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = rng.Float64()*2 - 1
	}
	return m
}

// NewMatrixFromRows copies a row-major nested slice into a new Matrix.
func NewMatrixFromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: matrix needs at least one row", ErrShapeMismatch)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return newMatrix(len(rows), cols, data), nil
}

// NewColumn returns a single-column matrix holding a copy of values.
func NewColumn(values []float64) *Matrix {
	data := make([]float64, len(values))
	copy(data, values)
	return newMatrix(len(values), 1, data)
}

func NewIdentity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

func newMatrix(rows, cols int, data []float64) *Matrix {
	m := &Matrix{rows: rows, cols: cols, data: data}
	if rows > 0 && cols > 0 {
		m.dense = mat.NewDense(rows, cols, data)
	}
	return m
}

func fromDense(d *mat.Dense) *Matrix {
	r, c := d.Dims()
	raw := d.RawMatrix()
	if raw.Stride == c {
		return &Matrix{rows: r, cols: c, data: raw.Data[:r*c], dense: d}
	}
	m := NewMatrix(r, c)
	m.dense.Copy(d)
	return m
}

// ------- ACCESSORS ------ //
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("ml: index [%d, %d] out of range for [%d, %d] matrix", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Rows returns a copy of the matrix as a row-major nested slice.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		row := make([]float64, m.cols)
		copy(row, m.data[i*m.cols:(i+1)*m.cols])
		out[i] = row
	}
	return out
}

// Values returns a copy of the entries in row-major order.
func (m *Matrix) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

func (m *Matrix) Equal(b *Matrix) bool {
	return m.rows == b.rows && m.cols == b.cols && floats.Equal(m.data, b.data)
}

func (m *Matrix) EqualApprox(b *Matrix, tol float64) bool {
	return m.rows == b.rows && m.cols == b.cols && floats.EqualApprox(m.data, b.data, tol)
}

func (m *Matrix) empty() bool { return m.rows == 0 || m.cols == 0 }

// ------- MATRIX METHODS ------ //
func (m *Matrix) Transpose() *Matrix {
	if m.empty() {
		return NewMatrix(m.cols, m.rows)
	}
	var out mat.Dense
	out.CloneFrom(m.dense.T())
	return fromDense(&out)
}

func (m *Matrix) Add(b *Matrix) (*Matrix, error) {
	if err := sameShape("add", m, b); err != nil {
		return nil, err
	}
	if m.empty() {
		return NewMatrix(m.rows, m.cols), nil
	}
	var out mat.Dense
	out.Add(m.dense, b.dense)
	return fromDense(&out), nil
}

func (m *Matrix) Subtract(b *Matrix) (*Matrix, error) {
	if err := sameShape("subtract", m, b); err != nil {
		return nil, err
	}
	if m.empty() {
		return NewMatrix(m.rows, m.cols), nil
	}
	var out mat.Dense
	out.Sub(m.dense, b.dense)
	return fromDense(&out), nil
}

// HadamardProduct multiplies two same-shaped matrices element by element.
func (m *Matrix) HadamardProduct(b *Matrix) (*Matrix, error) {
	if err := sameShape("hadamard product", m, b); err != nil {
		return nil, err
	}
	if m.empty() {
		return NewMatrix(m.rows, m.cols), nil
	}
	var out mat.Dense
	out.MulElem(m.dense, b.dense)
	return fromDense(&out), nil
}

// Multiply returns the algebraic product m·b.
func (m *Matrix) Multiply(b *Matrix) (*Matrix, error) {
	if m.cols != b.rows {
		return nil, fmt.Errorf("%w: multiply: [%d, %d] · [%d, %d]", ErrShapeMismatch, m.rows, m.cols, b.rows, b.cols)
	}
	if m.empty() || b.empty() {
		return NewMatrix(m.rows, b.cols), nil
	}
	var out mat.Dense
	out.Mul(m.dense, b.dense)
	return fromDense(&out), nil
}

// Map applies fn to every entry.
func (m *Matrix) Map(fn func(float64) float64) *Matrix {
	if m.empty() {
		return NewMatrix(m.rows, m.cols)
	}
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, m.dense)
	return fromDense(&out)
}

func (m *Matrix) Scale(f float64) *Matrix {
	if m.empty() {
		return NewMatrix(m.rows, m.cols)
	}
	var out mat.Dense
	out.Scale(f, m.dense)
	return fromDense(&out)
}

func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Rows())
}

func (m *Matrix) UnmarshalJSON(buf []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(buf, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		*m = *NewMatrix(0, 0)
		return nil
	}
	loaded, err := NewMatrixFromRows(rows)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}

func (m *Matrix) String() string {
	return fmt.Sprintf("%v", m.Rows())
}

// ------ UTILITY FUNCTIONS ------
func sameShape(op string, a, b *Matrix) error {
	if a.rows != b.rows || a.cols != b.cols {
		return fmt.Errorf("%w: %s: [%d, %d] vs [%d, %d]", ErrShapeMismatch, op, a.rows, a.cols, b.rows, b.cols)
	}
	return nil
}
