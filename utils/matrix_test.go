package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	// Transpose
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		mNr, mNc := M.Dims()
		A := M.Transpose()
		aNr, aNc := A.Dims()
		assert.Equal(t, aNc, mNr)
		assert.Equal(t, aNr, mNc)
		assert.Equal(t, A.RawMatrix().Data, []float64{1, 4, 2, 5, 3, 6})
	}
	// SliceRows
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		I := NewIndex(2)
		I[0] = 1
		I[1] = 0
		A := M.SliceRows(I)
		assert.Equal(t, A, NewMatrix(2, 3, []float64{
			4, 5, 6,
			1, 2, 3,
		}))
	}
	// SliceCols
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		I := NewIndex(2)
		I[0] = 2
		I[1] = 0
		A := M.SliceCols(I)
		assert.Equal(t, A, NewMatrix(2, 2, []float64{
			3, 1,
			6, 4,
		}))
	}
	// Slice of leading columns, as used for nested POD bases
	{
		M := NewMatrix(3, 3, []float64{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		})
		A := M.Slice(0, 3, 0, 2)
		assert.Equal(t, A, NewMatrix(3, 2, []float64{
			1, 2,
			4, 5,
			7, 8,
		}))
	}
	// Mul with generic mat.Matrix right operand
	{
		M := NewMatrix(2, 2, []float64{
			1, 2,
			3, 4,
		})
		V := NewMatrix(2, 1, []float64{1, 1})
		R := M.Mul(V)
		assert.Equal(t, R.RawMatrix().Data, []float64{3, 7})
	}
	// Inverse
	{
		M := NewMatrix(2, 2, []float64{
			2, 0,
			0, 4,
		})
		R, err := M.Inverse()
		assert.NoError(t, err)
		assert.InDelta(t, 0.5, R.At(0, 0), 1e-14)
		assert.InDelta(t, 0.25, R.At(1, 1), 1e-14)
	}
}

func TestMatrixSpectral(t *testing.T) {
	// Stable diagonal operator
	{
		M := NewMatrix(2, 2, []float64{
			-1, 0,
			0, -3,
		})
		maxRe, ok := M.MaxRealEigenvalue()
		assert.True(t, ok)
		assert.InDelta(t, -1, maxRe, 1e-12)
	}
	// Rotation, complex pair with zero real part
	{
		M := NewMatrix(2, 2, []float64{
			0, -1,
			1, 0,
		})
		maxRe, ok := M.MaxRealEigenvalue()
		assert.True(t, ok)
		assert.InDelta(t, 0, maxRe, 1e-12)
	}
	// Condition number of a diagonal matrix
	{
		M := NewMatrix(2, 2, []float64{
			10, 0,
			0, 1,
		})
		assert.InDelta(t, 10, M.ConditionNumber(), 1e-10)
	}
	// Extremal singular values
	{
		M := NewMatrix(2, 2, []float64{
			10, 0,
			0, 1,
		})
		min, max := M.SingularValues()
		assert.InDelta(t, 1, min, 1e-12)
		assert.InDelta(t, 10, max, 1e-12)
	}
}

func TestReadOnly(t *testing.T) {
	M := NewMatrix(2, 2, []float64{
		1, 2,
		3, 4,
	})
	M.SetReadOnly("M")
	assert.Panics(t, func() { M.Set(0, 0, 5) })
	M.SetWritable()
	M.Set(0, 0, 5)
	assert.Equal(t, 5.0, M.At(0, 0))
}

func TestRowCol(t *testing.T) {
	M := NewMatrix(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	assert.Equal(t, []float64{4, 5, 6}, M.Row(1).Data())
	assert.Equal(t, []float64{2, 5}, M.Col(1).Data())
	assert.Panics(t, func() { M.Row(2) })
}

func TestIndex(t *testing.T) {
	I := NewRange(0, 2)
	assert.Equal(t, Index{0, 1, 2}, I)
	assert.Equal(t, Index{5, 6, 7}, I.Add(5))
	assert.Equal(t, Index{0, 2, 4}, I.Apply(func(val int) int { return 2 * val }))
}

func TestSparseDOK(t *testing.T) {
	var (
		tol = 1.e-12
	)
	D := NewDOK(3, 3)
	D.Set(0, 0, 2)
	D.Accum(0, 0, 1)
	D.Set(1, 2, -4)
	C := D.ToCSR()
	assert.InDelta(t, 3, C.At(0, 0), tol)
	assert.InDelta(t, -4, C.At(1, 2), tol)

	y := C.MulVec([]float64{1, 1, 1})
	assert.InDelta(t, 3, y[0], tol)
	assert.InDelta(t, -4, y[1], tol)
	assert.InDelta(t, 0, y[2], tol)

	Dm := C.ToDense()
	assert.InDelta(t, 3, Dm.At(0, 0), tol)
	assert.InDelta(t, -4, Dm.At(1, 2), tol)
}

func TestVector(t *testing.T) {
	v := NewVector(3, []float64{3, -4, 0})
	assert.InDelta(t, 5, v.Norm2(), 1e-14)
	assert.Equal(t, -4.0, v.Min())
	assert.Equal(t, 3.0, v.Max())
	w := v.Copy().Apply(math.Abs)
	assert.Equal(t, 0.0, w.Min())
	assert.InDelta(t, 25, v.Dot(v), 1e-14)
}
