package rom

import (
	"fmt"
	"math/rand/v2"

	"github.com/smallpondtom/operator-inference/integrate"
	"github.com/smallpondtom/operator-inference/utils"
	"gonum.org/v1/gonum/stat/distuv"
)

// InputDistribution is the uniform law the random training inputs are drawn
// from. The two study variants are UnitUniform and SmallUniform.
type InputDistribution struct {
	Min, Max float64
}

var (
	UnitUniform  = InputDistribution{Min: 0, Max: 1}
	SmallUniform = InputDistribution{Min: -0.1, Max: 0.1}
)

// SnapshotConfig drives one ensemble generation run.
type SnapshotConfig struct {
	K         int     // steps per trajectory
	M         int     // number of random-input trajectories
	Dt        float64 // integrator time step
	Dist      InputDistribution
	DiffOrder int    // derivative estimate: 1 = forward, 2 = central
	Seed      uint64 // fixed seed makes runs reproducible
}

// Ensemble is the column-aligned snapshot data of M trajectories: column j of
// Xdot is the derivative estimate at column j of X, driven by input U[j], and
// Xprev holds the predecessor state for discrete-time regression. Ordering is
// significant and preserved end to end.
type Ensemble struct {
	X     utils.Matrix
	Xprev utils.Matrix
	Xdot  utils.Matrix
	U     []float64
	Dt    float64
}

// GenerateSnapshots runs the integrator under M independent random input
// sequences from the same initial condition and concatenates the
// post-initial-condition states, their finite-difference derivatives and the
// aligned inputs.
func GenerateSnapshots(sys integrate.System, ic []float64, cfg SnapshotConfig) (Ensemble, error) {
	var (
		n = len(ic)
	)
	if cfg.K < 2 || cfg.M < 1 {
		return Ensemble{}, fmt.Errorf("%w: need K >= 2 and M >= 1, got K=%d M=%d", ErrInvalidDimension, cfg.K, cfg.M)
	}
	switch cfg.DiffOrder {
	case 0:
		cfg.DiffOrder = 1
	case 1, 2:
	default:
		return Ensemble{}, fmt.Errorf("%w: unsupported derivative order %d", ErrInvalidDimension, cfg.DiffOrder)
	}

	var (
		perTraj = cfg.K // forward difference keeps all K post-IC columns
	)
	if cfg.DiffOrder == 2 {
		perTraj = cfg.K - 1 // central difference drops the last column
	}
	var (
		cols = perTraj * cfg.M
		ens  = Ensemble{
			X:     utils.NewMatrix(n, cols),
			Xprev: utils.NewMatrix(n, cols),
			Xdot:  utils.NewMatrix(n, cols),
			U:     make([]float64, cols),
			Dt:    cfg.Dt,
		}
		uniform = distuv.Uniform{Min: cfg.Dist.Min, Max: cfg.Dist.Max, Src: rand.NewPCG(cfg.Seed, cfg.Seed+1)}
		diff    = make([]float64, n)
	)
	for m := 0; m < cfg.M; m++ {
		u := make([]float64, cfg.K)
		for k := range u {
			u[k] = uniform.Rand()
		}
		traj, err := integrate.SemiImplicit(sys, ic, cfg.Dt, u)
		if err != nil {
			return Ensemble{}, fmt.Errorf("trajectory %d: %w", m, err)
		}
		for k := 1; k <= perTraj; k++ {
			j := m*perTraj + (k - 1)
			ens.X.SetCol(j, traj.X.Col(k).Data())
			ens.Xprev.SetCol(j, traj.X.Col(k-1).Data())
			switch cfg.DiffOrder {
			case 1:
				for i := 0; i < n; i++ {
					diff[i] = (traj.X.At(i, k) - traj.X.At(i, k-1)) / cfg.Dt
				}
			case 2:
				for i := 0; i < n; i++ {
					diff[i] = (traj.X.At(i, k+1) - traj.X.At(i, k-1)) / (2 * cfg.Dt)
				}
			}
			ens.Xdot.SetCol(j, diff)
			ens.U[j] = u[k-1]
		}
	}
	return ens, nil
}
