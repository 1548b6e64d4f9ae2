/*
Package integrate advances any linear-quadratic-input system one step at a
time with the semi-implicit Euler scheme

	s(k) = (I - dt*A)^-1 * (s(k-1) + dt*F*prodUnique(s(k-1)) + dt*B*u(k))

The diffusion term is implicit, which keeps the stiff linear part stable at
fine grid spacing; the quadratic and input terms are evaluated at the previous
step. The same stepper serves the full-order model (sparse operators) and any
reduced model (dense operators), intrusive or inferred.
*/
package integrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/utils"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidDimension flags non-conforming operator shapes.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrIntegrationDiverged marks a step that produced a non-finite state.
	// The partial trajectory is still returned; divergence is a reportable
	// outcome, not a fault.
	ErrIntegrationDiverged = errors.New("integration diverged")
	// ErrSingularSystem marks a singular implicit step matrix (I - dt*A).
	ErrSingularSystem = errors.New("singular system")
)

// Operator is the common numeric interface shared by sparse full-order
// operators (utils.CSR) and dense reduced operators (utils.Matrix), so the
// stepper never needs to know which backing is in use.
type Operator interface {
	mat.Matrix
	MulVec(x []float64) []float64
}

// System is a linear-quadratic-input model ds/dt = A s + F s^(2) + B u.
// F and B may be nil to disable the corresponding term.
type System struct {
	A Operator
	F Operator
	B Operator
}

// Trajectory is the ordered sequence of K+1 states (columns) produced by a
// run, including the initial condition. On divergence, Steps marks the last
// completed step and the remaining columns are zero.
type Trajectory struct {
	X        utils.Matrix
	Steps    int
	Diverged bool
}

// SemiImplicit runs K = len(u) steps from the initial condition ic. The
// implicit step matrix is factored once per call, not per step.
func SemiImplicit(sys System, ic []float64, dt float64, u []float64) (Trajectory, error) {
	var (
		n = len(ic)
		K = len(u)
	)
	if err := sys.check(n); err != nil {
		return Trajectory{}, err
	}

	// (I - dt*A), factored once: A and dt are fixed for the whole trajectory
	M := utils.NewIdentityMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if a := sys.A.At(i, j); a != 0 {
				M.M.Set(i, j, M.M.At(i, j)-dt*a)
			}
		}
	}
	var lu mat.LU
	lu.Factorize(M.M)

	var (
		X    = utils.NewMatrix(n, K+1)
		s    = append([]float64{}, ic...)
		dst  = mat.NewVecDense(n, nil)
		rhs  = make([]float64, n)
		traj = Trajectory{}
	)
	X.SetCol(0, s)
	for k := 0; k < K; k++ {
		copy(rhs, s)
		if sys.F != nil {
			fp := sys.F.MulVec(quadratic.ProdUnique(s))
			for i := range rhs {
				rhs[i] += dt * fp[i]
			}
		}
		if sys.B != nil {
			bu := sys.B.MulVec([]float64{u[k]})
			for i := range rhs {
				rhs[i] += dt * bu[i]
			}
		}
		if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, rhs)); err != nil {
			if c, ill := err.(mat.Condition); !ill || math.IsInf(float64(c), 1) {
				traj.X = X
				traj.Steps = k
				return traj, fmt.Errorf("%w: implicit solve failed: %v", ErrSingularSystem, err)
			}
			// Ill-conditioned but solvable: keep the computed solution
		}
		copy(s, dst.RawVector().Data)
		X.SetCol(k+1, s)
		if !utils.AllFinite(s) {
			traj.X = X
			traj.Steps = k + 1
			traj.Diverged = true
			return traj, fmt.Errorf("%w at step %d", ErrIntegrationDiverged, k+1)
		}
	}
	traj.X = X
	traj.Steps = K
	return traj, nil
}

func (sys System) check(n int) error {
	if sys.A == nil {
		return fmt.Errorf("%w: system has no linear operator", ErrInvalidDimension)
	}
	ar, ac := sys.A.Dims()
	if ar != n || ac != n {
		return fmt.Errorf("%w: A is %dx%d, state has length %d", ErrInvalidDimension, ar, ac, n)
	}
	if sys.F != nil {
		fr, fc := sys.F.Dims()
		if fr != n || fc != quadratic.CompactLen(n) {
			return fmt.Errorf("%w: F is %dx%d, want %dx%d", ErrInvalidDimension, fr, fc, n, quadratic.CompactLen(n))
		}
	}
	if sys.B != nil {
		br, bc := sys.B.Dims()
		if br != n || bc != 1 {
			return fmt.Errorf("%w: B is %dx%d, want %dx1", ErrInvalidDimension, br, bc, n)
		}
	}
	return nil
}
