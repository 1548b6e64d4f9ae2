// Package quadratic holds the encodings of a quadratic operator: the compact
// form F acting on the unique pairwise products of the state, the redundant
// form H acting on the full Kronecker square, and the combinatorial matrices
// that convert between the two bases.
//
// The canonical ordering of the unique products of x (length m) is row-major
// over pairs (i,j) with i <= j: for each i, the products x_i*x_j for
// j = i..m-1. In the classical 1-based index formula this is
// fidx(m,j,k) = (m - min(j,k)/2)*(min(j,k)-1) + max(j,k); PairIndex is its
// 0-based equivalent. Cross terms carry their full coefficient in F (no
// factor-2 scaling); the expansion to H splits them in half across the two
// symmetric Kronecker slots.
package quadratic

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/utils"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidDimension flags malformed sizes or non-conforming operator shapes.
var ErrInvalidDimension = fmt.Errorf("invalid dimension")

// CompactLen is the number of unique pairwise products of an m-vector.
func CompactLen(m int) int {
	return m * (m + 1) / 2
}

// PairIndex maps the unordered 0-based pair (i,j) of an m-vector into its
// column in the compact product ordering.
func PairIndex(m, i, j int) int {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j > m-1 {
		err := fmt.Errorf("pair (%d,%d) out of bounds for dimension %d", i, j, m)
		panic(err)
	}
	return (2*m-i+1)*i/2 + (j - i)
}

// ProdUnique returns the length m(m+1)/2 vector of products x_i*x_j, i <= j,
// in the canonical ordering.
func ProdUnique(x []float64) (p []float64) {
	var (
		m   = len(x)
		ind int
	)
	p = make([]float64, CompactLen(m))
	for i := 0; i < m; i++ {
		xi := x[i]
		for j := i; j < m; j++ {
			p[ind] = xi * x[j]
			ind++
		}
	}
	return
}

// ExpandF expands a compact quadratic operator into its redundant form such
// that F*ProdUnique(x) == H*kron(x,x) for every x. Square-term columns map
// one-to-one; cross-term columns are split in half across the symmetric slots.
func ExpandF(F mat.Matrix) (H utils.Matrix) {
	var (
		n, s = F.Dims()
	)
	if s != CompactLen(n) {
		err := fmt.Errorf("%w: compact operator is %dx%d, want %dx%d", ErrInvalidDimension, n, s, n, CompactLen(n))
		panic(err)
	}
	H = utils.NewMatrix(n, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			col := PairIndex(n, i, j)
			for row := 0; row < n; row++ {
				val := F.At(row, col)
				if val == 0 {
					continue
				}
				if i == j {
					H.M.Set(row, i*n+i, val)
				} else {
					H.M.Set(row, i*n+j, val/2)
					H.M.Set(row, j*n+i, val/2)
				}
			}
		}
	}
	return
}

// Elimination builds the n(n+1)/2 x n^2 selection matrix Ln with
// Ln*kron(x,x) == ProdUnique(x). It is used to push a compact full-order
// operator through a Kronecker-basis projection.
func Elimination(n int) utils.CSR {
	L := utils.NewDOK(CompactLen(n), n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			L.Set(PairIndex(n, i, j), i*n+j, 1)
		}
	}
	return L.ToCSR()
}

// Duplication builds the r^2 x r(r+1)/2 matrix Dr with
// Dr*ProdUnique(x) == kron(x,x), recovering the redundant ordering from the
// compact one at reduced order r.
func Duplication(r int) utils.CSR {
	D := utils.NewDOK(r*r, CompactLen(r))
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			D.Set(i*r+j, PairIndex(r, i, j), 1)
		}
	}
	return D.ToCSR()
}

// KronSelf builds the n^2 x r^2 Kronecker square kron(V,V) of an n x r basis.
// Row a*n+b holds the outer product of basis rows a and b.
func KronSelf(V utils.Matrix) utils.Matrix {
	var (
		n, r = V.Dims()
		K    = utils.NewMatrix(n*n, r*r)
		data = K.RawMatrix().Data
	)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			row := data[(a*n+b)*r*r : (a*n+b+1)*r*r]
			for i := 0; i < r; i++ {
				vai := V.At(a, i)
				if vai == 0 {
					continue
				}
				for j := 0; j < r; j++ {
					row[i*r+j] = vai * V.At(b, j)
				}
			}
		}
	}
	return K
}

// ExtractF truncates a compact quadratic operator sized for rmax basis
// vectors down to the first r, keeping exactly the rows and product columns
// whose indices involve only the leading r components. Pure index selection,
// no re-derivation.
func ExtractF(F utils.Matrix, r int) utils.Matrix {
	var (
		rmax, s = F.Dims()
	)
	if s != CompactLen(rmax) {
		err := fmt.Errorf("%w: compact operator is %dx%d, want %dx%d", ErrInvalidDimension, rmax, s, rmax, CompactLen(rmax))
		panic(err)
	}
	if r < 1 || r > rmax {
		err := fmt.Errorf("%w: cannot extract order %d from operator of order %d", ErrInvalidDimension, r, rmax)
		panic(err)
	}
	cols := utils.NewIndex(CompactLen(r))
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			cols[PairIndex(r, i, j)] = PairIndex(rmax, i, j)
		}
	}
	return F.SliceRows(utils.NewRange(0, r-1)).SliceCols(cols)
}
