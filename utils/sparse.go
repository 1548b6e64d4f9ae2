package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK wraps a sparse dictionary-of-keys matrix for incremental assembly of
// FOM-sized operators. Assemble with Set, then freeze with ToCSR for use.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)              { return m.M.Dims() }
func (m DOK) At(i, j int) float64           { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix                 { return m.M.T() }
func (m DOK) RawMatrix() *blas.SparseMatrix { return m.M.ToCSR().RawMatrix() }

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

// Accum adds val into entry (i,j), accumulating stencil contributions.
func (m DOK) Accum(i, j int, val float64) DOK { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the frozen, read-optimized form consumed by the integrator and the
// intrusive projector. It is never written after construction.
type CSR struct {
	M    *sparse.CSR
	name string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }

// MulVec forms y = M*x without densifying the operator.
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		err := fmt.Errorf("dimension mismatch in MulVec: nc = %v, len(x) = %v", nc, len(x))
		panic(err)
	}
	y = make([]float64, nr)
	raw := m.M.RawMatrix()
	for i := 0; i < nr; i++ {
		var sum float64
		for idx := raw.Indptr[i]; idx < raw.Indptr[i+1]; idx++ {
			sum += raw.Data[idx] * x[raw.Ind[idx]]
		}
		y[i] = sum
	}
	return
}

// MulDense forms the dense product M*B by scattering the sparse rows of M.
// Used where a generic dense product over the full Kronecker basis would be
// prohibitively slow.
func (m CSR) MulDense(B mat.Matrix) (R Matrix) {
	var (
		nr, nc   = m.Dims()
		nrB, ncB = B.Dims()
	)
	if nc != nrB {
		err := fmt.Errorf("dimension mismatch in MulDense: %dx%d times %dx%d", nr, nc, nrB, ncB)
		panic(err)
	}
	R = NewMatrix(nr, ncB)
	var (
		raw  = m.M.RawMatrix()
		data = R.RawMatrix().Data
	)
	for i := 0; i < nr; i++ {
		row := data[i*ncB : (i+1)*ncB]
		for idx := raw.Indptr[i]; idx < raw.Indptr[i+1]; idx++ {
			v := raw.Data[idx]
			k := raw.Ind[idx]
			for j := 0; j < ncB; j++ {
				row[j] += v * B.At(k, j)
			}
		}
	}
	return
}

// ToDense densifies small operators for spectral checks.
func (m CSR) ToDense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	m.M.DoNonZero(func(i, j int, v float64) {
		R.M.Set(i, j, v)
	})
	return
}
