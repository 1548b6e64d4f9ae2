/*
Package burgers assembles the full-order operators of the 1D viscous Burgers
equation

	u_t = mu*u_xx + quadratic transport,   x in [0,1]

discretized on N uniform grid points. Two variants are provided:

Assemble builds the Dirichlet boundary-control form used for the data-driven
study: the diffusion stencil occupies the interior rows, rows 1 and N encode
the Dirichlet conditions folded together with the implicit-Euler structure the
integrator expects (-1/dt on the diagonal), and the input column B injects the
boundary value with +-1/dt into those rows.

AssembleConservative builds the periodic, skew-symmetric (1/3 flux + 2/3
advective) form of the quadratic term, whose discrete energy
0.5*||u||^2 is exactly conserved by the nonlinearity. It is the reference
operator for the energy-conservation diagnostics.
*/
package burgers

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/utils"
)

// ErrInvalidDimension rejects grids too small to carry the stencil.
var ErrInvalidDimension = fmt.Errorf("invalid dimension")

// FOM is the assembled full-order operator triple. It is computed once and
// read-only thereafter; the integrator, the intrusive projector and the
// regression all consume it without mutation.
type FOM struct {
	N          int
	Dx, Dt, Mu float64
	A          utils.CSR    // N x N diffusion with boundary rows folded in
	F          utils.CSR    // N x N(N+1)/2 compact quadratic operator
	B          utils.Matrix // N x 1 boundary-control injection
}

// Assemble builds the Dirichlet boundary-control operators for an N-point
// grid with spacing dx, time step dt and diffusion coefficient mu.
// mu must be positive for physical diffusion; that is the caller's
// responsibility and is not enforced here.
func Assemble(N int, dx, dt, mu float64) (*FOM, error) {
	if N < 3 {
		return nil, fmt.Errorf("%w: need at least 3 grid points, got %d", ErrInvalidDimension, N)
	}
	var (
		cDiff = mu / (dx * dx)
		cQuad = 1 / (2 * dx)
		A     = utils.NewDOK(N, N)
		F     = utils.NewDOK(N, quadratic.CompactLen(N))
		B     = utils.NewMatrix(N, 1)
	)
	// Second-difference diffusion stencil on the interior
	for i := 1; i < N-1; i++ {
		A.Set(i, i-1, cDiff)
		A.Set(i, i, -2*cDiff)
		A.Set(i, i+1, cDiff)
	}
	// Dirichlet rows carry the implicit-Euler boundary structure
	A.Set(0, 0, -1/dt)
	A.Set(N-1, N-1, -1/dt)

	// Forward-difference transport on the interior: forward-neighbor product
	// positive, backward negative. Boundary rows stay zero.
	for i := 1; i < N-1; i++ {
		F.Set(i, quadratic.PairIndex(N, i, i+1), cQuad)
		F.Set(i, quadratic.PairIndex(N, i-1, i), -cQuad)
	}

	B.Set(0, 0, 1/dt)
	B.Set(N-1, 0, -1/dt)

	fom := &FOM{
		N:  N,
		Dx: dx,
		Dt: dt,
		Mu: mu,
		A:  A.SetReadOnly("A").ToCSR(),
		F:  F.SetReadOnly("F").ToCSR(),
		B:  B.SetReadOnly("B"),
	}
	return fom, nil
}

// AssembleConservative builds the periodic skew-form operators. The quadratic
// term combines the conservative flux difference with the advective form in a
// 1/3 : 2/3 split, which makes the cubic energy contribution telescope to
// zero around the ring.
func AssembleConservative(N int, dx, mu float64) (*FOM, error) {
	if N < 3 {
		return nil, fmt.Errorf("%w: need at least 3 grid points, got %d", ErrInvalidDimension, N)
	}
	var (
		cDiff = mu / (dx * dx)
		cQuad = 1 / (6 * dx)
		A     = utils.NewDOK(N, N)
		F     = utils.NewDOK(N, quadratic.CompactLen(N))
		B     = utils.NewMatrix(N, 1)
	)
	for i := 0; i < N; i++ {
		im := (i - 1 + N) % N
		ip := (i + 1) % N
		A.Accum(i, im, cDiff)
		A.Accum(i, i, -2*cDiff)
		A.Accum(i, ip, cDiff)

		F.Accum(i, quadratic.PairIndex(N, ip, ip), -cQuad)
		F.Accum(i, quadratic.PairIndex(N, im, im), cQuad)
		F.Accum(i, quadratic.PairIndex(N, i, ip), -cQuad)
		F.Accum(i, quadratic.PairIndex(N, im, i), cQuad)
	}
	fom := &FOM{
		N:  N,
		Dx: dx,
		Mu: mu,
		A:  A.SetReadOnly("A").ToCSR(),
		F:  F.SetReadOnly("F").ToCSR(),
		B:  B.SetReadOnly("B"), // no boundary control on the ring
	}
	return fom, nil
}

// ZeroIC is the initial condition used throughout the study.
func ZeroIC(N int) []float64 {
	return make([]float64, N)
}

// ReferenceInput is the constant boundary forcing u_ref(t) = val used for the
// reference trajectory.
func ReferenceInput(K int, val float64) []float64 {
	return utils.ConstArray(K, val)
}
