package rom

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/burgers"
	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/utils"
)

// IntrusiveProject computes the classical Galerkin reduction of the
// full-order operators:
//
//	Aint = Vr^T A Vr
//	Bint = Vr^T B
//	Fint = Vr^T F Ln kron(Vr,Vr) Dr
//
// where Ln is the elimination matrix at the full order and Dr the duplication
// matrix at the reduced order, so the compact quadratic operator is pushed
// through the Kronecker-basis projection and compacted again. Deterministic
// given (A,F,B,Vr); no regression involved.
func IntrusiveProject(fom *burgers.FOM, Vr utils.Matrix) (Operators, error) {
	var (
		n, r = Vr.Dims()
	)
	if n != fom.N {
		return Operators{}, fmt.Errorf("%w: basis has dimension %d, FOM has %d", ErrInvalidDimension, n, fom.N)
	}
	var (
		Vt = Vr.Transpose()
		L  = quadratic.Elimination(n)
		D  = quadratic.Duplication(r)
	)
	ops := Operators{
		R:    r,
		Form: Linear | Quadratic | Input,
		A:    Vt.Mul(Vr.MulLeft(fom.A)),
		B:    Vt.Mul(fom.B),
	}
	// F Ln is a sparse row scatter; the remaining factors are dense products
	FL := fom.F.MulDense(L)
	ops.F = Vt.Mul(FL.Mul(quadratic.KronSelf(Vr)).Mul(D))
	ops.H = quadratic.ExpandF(ops.F)
	return ops, nil
}
