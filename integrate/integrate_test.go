package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/smallpondtom/operator-inference/burgers"
	"github.com/smallpondtom/operator-inference/utils"
	"github.com/stretchr/testify/assert"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestLinearDecay(t *testing.T) {
	// Stable A, no quadratic term, no input: trajectory decays toward zero
	A := utils.NewMatrix(2, 2, []float64{
		-1, 0,
		0, -2,
	})
	sys := System{A: A}
	ic := []float64{1, -1}
	traj, err := SemiImplicit(sys, ic, 0.1, make([]float64, 200))
	assert.NoError(t, err)
	assert.False(t, traj.Diverged)
	assert.Equal(t, 200, traj.Steps)
	prev := math.Inf(1)
	for k := 0; k <= 200; k += 20 {
		e := traj.X.Col(k).Norm2()
		assert.True(t, e <= prev)
		prev = e
	}
	assert.True(t, traj.X.Col(200).Norm2() < 1e-6)

	// Zero initial condition and zero input stays identically zero
	traj, err = SemiImplicit(sys, []float64{0, 0}, 0.1, make([]float64, 50))
	assert.NoError(t, err)
	assert.Equal(t, 0.0, traj.X.Max())
	assert.Equal(t, 0.0, traj.X.Min())
}

func TestBurgersReferenceTrajectory(t *testing.T) {
	// N=9, dx=1/8, dt=1e-4, mu=0.3, zero IC, u_ref = 1 for 10 steps
	var (
		N  = 9
		dx = 1.0 / 8.0
		dt = 1.0e-4
		K  = 10
	)
	fom, err := burgers.Assemble(N, dx, dt, 0.3)
	assert.NoError(t, err)
	sys := System{A: fom.A, F: fom.F, B: fom.B}
	traj, err := SemiImplicit(sys, burgers.ZeroIC(N), dt, burgers.ReferenceInput(K, 1))
	assert.NoError(t, err)
	assert.False(t, traj.Diverged)

	// every entry finite
	assert.True(t, utils.AllFinite(traj.X.Data()))

	// The Dirichlet rows decouple: the boundary entries relax geometrically
	// toward +-u_ref, s_k = (s_{k-1} +- u)/2
	for k := 1; k <= K; k++ {
		want := 1 - math.Pow(2, -float64(k))
		assert.True(t, near(traj.X.At(0, k), want, 1e-12))
		assert.True(t, near(traj.X.At(N-1, k), -want, 1e-12))
	}
}

func TestDivergenceIsReportedNotFatal(t *testing.T) {
	// A pure quadratic blow-up overflows within one step
	A := utils.NewMatrix(1, 1, []float64{0})
	F := utils.NewMatrix(1, 1, []float64{1e160})
	sys := System{A: A, F: F}
	traj, err := SemiImplicit(sys, []float64{1e160}, 1, []float64{0, 0, 0})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrationDiverged))
	assert.True(t, traj.Diverged)
	assert.Equal(t, 1, traj.Steps)
	// partial trajectory is returned, remaining columns zero
	_, nc := traj.X.Dims()
	assert.Equal(t, 4, nc)
	assert.Equal(t, 0.0, traj.X.At(0, 3))
}

func TestSingularImplicitMatrix(t *testing.T) {
	// dt*A = I makes (I - dt*A) exactly singular
	A := utils.NewMatrix(1, 1, []float64{10})
	sys := System{A: A}
	_, err := SemiImplicit(sys, []float64{1}, 0.1, []float64{0})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingularSystem) || errors.Is(err, ErrIntegrationDiverged))
}

func TestDimensionChecks(t *testing.T) {
	A := utils.NewMatrix(2, 2, []float64{-1, 0, 0, -1})
	B := utils.NewMatrix(3, 1, []float64{1, 0, 0})
	_, err := SemiImplicit(System{A: A, B: B}, []float64{0, 0}, 0.1, []float64{1})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDimension))

	_, err = SemiImplicit(System{}, []float64{0, 0}, 0.1, []float64{1})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDimension))
}
