package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Spectral helpers used by the reduced-model stability checks and the
// least-squares conditioning guard.

func (m Matrix) ConditionNumber() float64 {
	var svd mat.SVD
	if !svd.Factorize(m.M, mat.SVDThin) {
		// If SVD fails, return a large number indicating poor conditioning
		return 1e16
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 1e16
	}
	// Singular values arrive in descending order
	minVal := values[len(values)-1]
	maxVal := values[0]
	if minVal < 1e-16 {
		return 1e16
	}
	return maxVal / minVal
}

// Eigenvalues returns the full complex spectrum of a square matrix.
func (m Matrix) Eigenvalues() []complex128 {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		panic("Eigenvalues only defined for square matrices")
	}
	var eigen mat.Eigen
	if !eigen.Factorize(m.M, mat.EigenRight) {
		return nil
	}
	return eigen.Values(nil)
}

// MaxRealEigenvalue is the spectral abscissa. A reduced linear operator is
// asymptotically stable when this is strictly negative.
func (m Matrix) MaxRealEigenvalue() (maxRe float64, ok bool) {
	values := m.Eigenvalues()
	if values == nil {
		return 0, false
	}
	maxRe = real(values[0])
	for _, val := range values[1:] {
		if re := real(val); re > maxRe {
			maxRe = re
		}
	}
	return maxRe, true
}

// SingularValues returns the extremal singular values of the matrix.
func (m Matrix) SingularValues() (min, max float64) {
	var svd mat.SVD
	if !svd.Factorize(m.M, mat.SVDThin) {
		return 0, 1e16
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, 1e16
	}
	return values[len(values)-1], values[0]
}
