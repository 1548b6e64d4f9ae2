package rom

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/utils"
)

// RelativeError is the Frobenius-norm ratio ||Xref - Xapprox||_F / ||Xref||_F
// between a reference trajectory and a (lifted) reduced trajectory.
func RelativeError(Xref, Xapprox utils.Matrix) float64 {
	rn, rc := Xref.Dims()
	an, ac := Xapprox.Dims()
	if rn != an || rc != ac {
		err := fmt.Errorf("%w: trajectories are %dx%d and %dx%d", ErrInvalidDimension, rn, rc, an, ac)
		panic(err)
	}
	denom := Xref.FrobNorm()
	if denom == 0 {
		return Xref.Copy().Subtract(Xapprox).FrobNorm()
	}
	return Xref.Copy().Subtract(Xapprox).FrobNorm() / denom
}
