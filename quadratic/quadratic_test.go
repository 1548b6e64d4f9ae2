package quadratic

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/smallpondtom/operator-inference/utils"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1.e-10
}

func kron(x []float64) (k []float64) {
	var (
		n   = len(x)
		ind int
	)
	k = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k[ind] = x[i] * x[j]
			ind++
		}
	}
	return
}

func randVec(n int, src *rand.PCG) []float64 {
	u := distuv.Uniform{Min: -1, Max: 1, Src: src}
	x := make([]float64, n)
	for i := range x {
		x[i] = u.Rand()
	}
	return x
}

func TestPairIndexOrdering(t *testing.T) {
	// PairIndex must be self-consistent with the ProdUnique ordering
	for _, m := range []int{1, 2, 3, 5, 9} {
		x := make([]float64, m)
		for i := range x {
			x[i] = float64(i + 1)
		}
		p := ProdUnique(x)
		assert.Equal(t, CompactLen(m), len(p))
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				assert.True(t, near(p[PairIndex(m, i, j)], x[i]*x[j]))
				// symmetric lookup
				assert.Equal(t, PairIndex(m, i, j), PairIndex(m, j, i))
			}
		}
	}
	// 1-based formula equivalence: fidx(m,j,k) = (m - min/2)*(min-1) + max
	m := 7
	for j := 1; j <= m; j++ {
		for k := j; k <= m; k++ {
			fidx := int((float64(m)-float64(j)/2)*float64(j-1)) + k
			assert.Equal(t, fidx-1, PairIndex(m, j-1, k-1))
		}
	}
}

func TestExpandFRoundTrip(t *testing.T) {
	var (
		n   = 6
		s   = CompactLen(n)
		src = rand.NewPCG(1, 2)
	)
	F := utils.NewMatrix(n, s, randVec(n*s, src))
	H := ExpandF(F)
	hNr, hNc := H.Dims()
	assert.Equal(t, n, hNr)
	assert.Equal(t, n*n, hNc)
	for trial := 0; trial < 10; trial++ {
		x := randVec(n, src)
		Fp := F.Mul(utils.NewMatrix(s, 1, ProdUnique(x)))
		Hk := H.Mul(utils.NewMatrix(n*n, 1, kron(x)))
		for i := 0; i < n; i++ {
			assert.True(t, near(Fp.At(i, 0), Hk.At(i, 0)))
		}
	}
}

func TestEliminationDuplication(t *testing.T) {
	var (
		n   = 5
		src = rand.NewPCG(3, 4)
	)
	L := Elimination(n)
	D := Duplication(n)
	lNr, lNc := L.Dims()
	dNr, dNc := D.Dims()
	assert.Equal(t, CompactLen(n), lNr)
	assert.Equal(t, n*n, lNc)
	assert.Equal(t, n*n, dNr)
	assert.Equal(t, CompactLen(n), dNc)
	for trial := 0; trial < 5; trial++ {
		x := randVec(n, src)
		p := ProdUnique(x)
		k := kron(x)
		Lk := L.MulVec(k)
		for i := range p {
			assert.True(t, near(Lk[i], p[i]))
		}
		Dp := D.MulVec(p)
		for i := range k {
			assert.True(t, near(Dp[i], k[i]))
		}
	}
}

func TestExtractF(t *testing.T) {
	var (
		rmax = 5
		r    = 3
		src  = rand.NewPCG(5, 6)
	)
	F := utils.NewMatrix(rmax, CompactLen(rmax), randVec(rmax*CompactLen(rmax), src))
	Fr := ExtractF(F, r)
	frNr, frNc := Fr.Dims()
	assert.Equal(t, r, frNr)
	assert.Equal(t, CompactLen(r), frNc)

	// Applying the truncated operator to xr must match applying the full
	// operator to xr padded with zeros.
	for trial := 0; trial < 5; trial++ {
		xr := randVec(r, src)
		xPad := make([]float64, rmax)
		copy(xPad, xr)
		want := F.Mul(utils.NewMatrix(CompactLen(rmax), 1, ProdUnique(xPad)))
		got := Fr.Mul(utils.NewMatrix(CompactLen(r), 1, ProdUnique(xr)))
		for i := 0; i < r; i++ {
			assert.True(t, near(got.At(i, 0), want.At(i, 0)))
		}
	}

	// Extracting the full order is the identity
	Ffull := ExtractF(F, rmax)
	assert.Equal(t, F.RawMatrix().Data, Ffull.RawMatrix().Data)
}
