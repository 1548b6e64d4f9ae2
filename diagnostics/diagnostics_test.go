package diagnostics

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/smallpondtom/operator-inference/burgers"
	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/rom"
	"github.com/smallpondtom/operator-inference/utils"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestPairOffsetAgreesWithConstruction(t *testing.T) {
	// offset counting versus the closed-form index used by the assemblers
	for _, n := range []int{1, 2, 3, 5, 9} {
		for j := 0; j < n; j++ {
			for k := j; k < n; k++ {
				assert.Equal(t, quadratic.PairIndex(n, j, k), pairOffset(n, j, k))
			}
		}
	}
}

func TestResidualFOM(t *testing.T) {
	{ // F then H for the boundary-controlled operator at N=5
		fom, err := burgers.Assemble(5, 0.25, 1.e-3, 0.4)
		assert.NoError(t, err)
		rf, err := ResidualF(fom.F)
		assert.NoError(t, err)
		assert.True(t, rf < 1.e-8)
		rh, err := ResidualH(quadratic.ExpandF(fom.F))
		assert.NoError(t, err)
		assert.True(t, rh < 1.e-8)
	}
	{ // periodic skew form
		fom, err := burgers.AssembleConservative(8, 0.125, 0.1)
		assert.NoError(t, err)
		rf, err := ResidualF(fom.F)
		assert.NoError(t, err)
		assert.True(t, rf < 1.e-10)
	}
	{ // shape guards
		_, err := ResidualH(utils.NewMatrix(3, 8))
		assert.True(t, errors.Is(err, ErrInvalidDimension))
		_, err = ResidualF(utils.NewMatrix(3, 5))
		assert.True(t, errors.Is(err, ErrInvalidDimension))
	}
}

func TestResidualFMatchesResidualH(t *testing.T) {
	// the compact and redundant checks must agree entry for entry
	var (
		n = 4
		s = n * (n + 1) / 2
		F = utils.NewMatrix(n, s)
		u = distuv.Uniform{Min: -1, Max: 1, Src: rand.NewPCG(17, 18)}
	)
	for i := 0; i < n; i++ {
		for j := 0; j < s; j++ {
			F.Set(i, j, u.Rand())
		}
	}
	rf, err := ResidualF(F)
	assert.NoError(t, err)
	rh, err := ResidualH(quadratic.ExpandF(F))
	assert.NoError(t, err)
	assert.True(t, near(rf, rh, 1.e-10))
}

func TestProjectedConservativeResidual(t *testing.T) {
	// Galerkin projection preserves the conservation symmetry; a perturbed
	// operator is flagged by a residual far above tolerance.
	fom, err := burgers.AssembleConservative(8, 0.125, 0.1)
	assert.NoError(t, err)
	Vr := utils.NewIdentityMatrix(fom.N).Slice(0, fom.N, 0, 4)
	ops, err := rom.IntrusiveProject(fom, Vr)
	assert.NoError(t, err)

	rh, err := ResidualH(ops.H)
	assert.NoError(t, err)
	assert.True(t, rh < 1.e-8)

	bad := ops.F.Copy()
	bad.Set(0, 0, bad.At(0, 0)+0.2)
	rbad, err := ResidualF(bad)
	assert.NoError(t, err)
	assert.True(t, near(rbad, 0.6, 1.e-8))
}

func TestEnergyAndRates(t *testing.T) {
	var (
		n = 6
		X = utils.NewMatrix(n, 3)
		u = distuv.Uniform{Min: -1, Max: 1, Src: rand.NewPCG(3, 4)}
	)
	for j := 0; j < 3; j++ {
		for i := 0; i < n; i++ {
			X.Set(i, j, u.Rand())
		}
	}
	{ // energy is half the squared column norm
		e := Energy(X)
		for j := 0; j < 3; j++ {
			var s float64
			for i := 0; i < n; i++ {
				s += X.At(i, j) * X.At(i, j)
			}
			assert.True(t, near(e[j], s/2, 1.e-12))
		}
	}
	{ // conservative quadratic operator contributes no energy at any state
		fom, err := burgers.AssembleConservative(n, 1./float64(n), 0.05)
		assert.NoError(t, err)
		rs, err := EnergyRates(nil, fom.F, nil, X, nil)
		assert.NoError(t, err)
		for j := 0; j < 3; j++ {
			assert.True(t, near(rs.Quadratic[j], 0, 1.e-10))
			assert.True(t, near(rs.Total[j], rs.Quadratic[j], 1.e-12))
		}
	}
	{ // linear term with A = -I dissipates exactly twice the energy
		A := utils.NewIdentityMatrix(n).Scale(-1)
		rs, err := EnergyRates(A, nil, nil, X, nil)
		assert.NoError(t, err)
		e := Energy(X)
		for j := 0; j < 3; j++ {
			assert.True(t, near(rs.Linear[j], -2*e[j], 1.e-10))
		}
	}
	{ // control term is u * x^T b
		B := utils.NewMatrix(n, 1, utils.ConstArray(n, 1.))
		in := []float64{0.5, -1, 2}
		rs, err := EnergyRates(nil, nil, B, X, in)
		assert.NoError(t, err)
		for j := 0; j < 3; j++ {
			var s float64
			for i := 0; i < n; i++ {
				s += X.At(i, j)
			}
			assert.True(t, near(rs.Control[j], in[j]*s, 1.e-10))
		}
	}
	{ // dimension guards
		_, err := EnergyRates(utils.NewMatrix(2, 2), nil, nil, X, nil)
		assert.True(t, errors.Is(err, ErrInvalidDimension))
		_, err = EnergyRates(nil, nil, utils.NewMatrix(n, 1), X, []float64{1})
		assert.True(t, errors.Is(err, ErrInvalidDimension))
	}
}
