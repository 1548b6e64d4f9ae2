package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// NewIdentityMatrix seeds the implicit step matrix (I - dt*A).
func NewIdentityMatrix(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.RawMatrix().Data }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m *Matrix) SetWritable() Matrix {
	m.readOnly = false
	return *m
}

func (m Matrix) Slice(I, K, J, L int) (R Matrix) { // Does not change receiver
	var (
		nrR   = K - I
		ncR   = L - J
		dataR = make([]float64, nrR*ncR)
		_, nc = m.Dims()
		data  = m.M.RawMatrix().Data
	)
	for i := I; i < K; i++ {
		for j := J; j < L; j++ {
			ind := i*nc + j
			indR := (i-I)*ncR + (j - J)
			dataR[indR] = data[ind]
		}
	}
	R = NewMatrix(nrR, ncR, dataR)
	return
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		data   = m.M.RawMatrix().Data
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, data)
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			R.M.Set(j, i, m.M.At(i, j))
		}
	}
	return
}

func (m Matrix) Mul(A mat.Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A)
	return R
}

// MulLeft forms A*m for an arbitrary left operand, including sparse FOM
// operators that only satisfy mat.Matrix.
func (m Matrix) MulLeft(A mat.Matrix) (R Matrix) { // Does not change receiver
	var (
		nrA, _ = A.Dims()
		_, ncM = m.M.Dims()
	)
	R = NewMatrix(nrA, ncM)
	R.M.Mul(A, m.M)
	return R
}

func (m Matrix) SliceRows(I Index) (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(len(I), nc)
	for ii, ind := range I {
		if ind < 0 || ind > nr-1 {
			err := fmt.Errorf("row index out of bounds: index = %d, max_bounds = %d", ind, nr-1)
			panic(err)
		}
		R.M.SetRow(ii, m.M.RawRowView(ind))
	}
	return
}

func (m Matrix) SliceCols(I Index) (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, len(I))
	for jj, ind := range I {
		if ind < 0 || ind > nc-1 {
			err := fmt.Errorf("col index out of bounds: index = %d, max_bounds = %d", ind, nc-1)
			panic(err)
		}
		for i := 0; i < nr; i++ {
			R.M.Set(i, jj, m.M.At(i, ind))
		}
	}
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetCol(j, data)
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Add(m.M, A.M)
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Sub(m.M, A.M)
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Scale(a, m.M)
	return m
}

func (m Matrix) Apply(f func(float64) float64) Matrix { // Changes receiver
	var (
		data = m.RawMatrix().Data
	)
	m.checkWritable()
	for i, val := range data {
		data[i] = f(val)
	}
	return m
}

// Non chainable methods

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	R = m.Copy()
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
	}
	return
}

func (m Matrix) Col(j int) Vector {
	var (
		nr, nc = m.M.Dims()
		vData  = make([]float64, nr)
	)
	if j < 0 || j > nc-1 {
		err := fmt.Errorf("col index out of bounds: index = %d, max_bounds = %d", j, nc-1)
		panic(err)
	}
	for i := range vData {
		vData[i] = m.M.At(i, j)
	}
	return NewVector(nr, vData)
}

func (m Matrix) Row(i int) Vector {
	var (
		nr, nc = m.M.Dims()
		vData  = make([]float64, nc)
	)
	if i < 0 || i > nr-1 {
		err := fmt.Errorf("row index out of bounds: index = %d, max_bounds = %d", i, nr-1)
		panic(err)
	}
	copy(vData, m.M.RawRowView(i))
	return NewVector(nc, vData)
}

func (m Matrix) Min() (min float64) {
	var (
		data = m.M.RawMatrix().Data
	)
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (m Matrix) Max() (max float64) {
	var (
		data = m.M.RawMatrix().Data
	)
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

// MulVec forms y = M*x on raw slices. Dense counterpart of CSR.MulVec so the
// integrator can treat full-order and reduced operators uniformly.
func (m Matrix) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
		data   = m.RawMatrix().Data
	)
	if len(x) != nc {
		err := fmt.Errorf("dimension mismatch in MulVec: nc = %v, len(x) = %v", nc, len(x))
		panic(err)
	}
	y = make([]float64, nr)
	for i := 0; i < nr; i++ {
		row := data[i*nc : (i+1)*nc]
		var sum float64
		for j, val := range row {
			sum += val * x[j]
		}
		y[i] = sum
	}
	return
}

// FrobNorm is the Frobenius norm of the matrix.
func (m Matrix) FrobNorm() float64 {
	return mat.Norm(m.M, 2)
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
