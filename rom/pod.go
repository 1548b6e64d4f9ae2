package rom

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/utils"
	"gonum.org/v1/gonum/mat"
)

// Basis is a family of nested POD bases: the first r columns of U form the
// rank-r basis for any r up to MaxOrder, because all columns come from one
// thin SVD of the snapshot matrix. Immutable after construction.
type Basis struct {
	U utils.Matrix
	S []float64
}

// PODBasis computes the orthonormal basis of the snapshot matrix from a
// single economy SVD, keeping the rmax dominant left singular vectors. It
// need only be called once per snapshot set regardless of how many basis
// sizes are later evaluated.
func PODBasis(X utils.Matrix, rmax int) (Basis, error) {
	var (
		n, c = X.Dims()
	)
	if rmax < 1 || rmax > n || rmax > c {
		return Basis{}, fmt.Errorf("%w: basis order %d out of range for %dx%d snapshots", ErrInvalidDimension, rmax, n, c)
	}
	var svd mat.SVD
	if !svd.Factorize(X.M, mat.SVDThin) {
		return Basis{}, fmt.Errorf("%w: SVD of snapshot matrix failed", ErrInvalidDimension)
	}
	var u mat.Dense
	svd.UTo(&u)
	var (
		full = utils.Matrix{M: &u}
		b    = Basis{
			U: full.Slice(0, n, 0, rmax),
			S: svd.Values(nil),
		}
	)
	b.U.SetReadOnly("POD basis")
	return b, nil
}

func (b Basis) MaxOrder() int {
	_, r := b.U.Dims()
	return r
}

// Vr returns the rank-r prefix of the basis.
func (b Basis) Vr(r int) utils.Matrix {
	if r < 1 || r > b.MaxOrder() {
		err := fmt.Errorf("%w: basis order %d out of range, max %d", ErrInvalidDimension, r, b.MaxOrder())
		panic(err)
	}
	n, _ := b.U.Dims()
	return b.U.Slice(0, n, 0, r)
}

// Project maps full states into the reduced coordinates, Xr = Vr^T X.
func Project(Vr, X utils.Matrix) utils.Matrix {
	return Vr.Transpose().Mul(X)
}

// Lift maps reduced states back to the full space, X = Vr Xr.
func Lift(Vr, Xr utils.Matrix) utils.Matrix {
	return Vr.Mul(Xr)
}
