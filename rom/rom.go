/*
Package rom learns and projects reduced-order models of the Burgers
full-order dynamics. The pipeline is: generate random-input snapshot
ensembles, build a POD basis from one thin SVD, then either regress reduced
operators directly from the projected data (operator inference, non-intrusive)
or project the known full-order operators onto the basis (intrusive Galerkin),
and simulate both with the shared semi-implicit integrator.
*/
package rom

import (
	"errors"

	"github.com/smallpondtom/operator-inference/integrate"
	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/utils"
)

var (
	// ErrInvalidDimension flags mismatched snapshot/basis/operator shapes.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrNoStableModelFound means the stability-guarded search exhausted its
	// candidate basis sizes without an asymptotically stable linear part.
	ErrNoStableModelFound = errors.New("no stable model found")
)

// ModelForm selects which operator terms a reduced model carries.
type ModelForm uint8

const (
	Linear ModelForm = 1 << iota
	Quadratic
	Input
)

func (f ModelForm) Has(term ModelForm) bool { return f&term != 0 }

// TimeScheme selects the regression target: projected time derivatives
// (continuous) or the successor reduced state (discrete).
type TimeScheme uint8

const (
	Continuous TimeScheme = iota
	Discrete
)

// ModelConfig fixes the model form for one inference or projection run.
type ModelConfig struct {
	Form   ModelForm
	Scheme TimeScheme
}

// Operators is a reduced operator bundle, either inferred or intrusively
// projected. It is computed once per (basis, configuration), consumed by the
// integrator and the diagnostics, then discarded; nothing is persisted.
type Operators struct {
	R    int
	Form ModelForm
	A    utils.Matrix // r x r, when Form has Linear
	F    utils.Matrix // r x r(r+1)/2, when Form has Quadratic
	H    utils.Matrix // r x r^2, derived from F
	B    utils.Matrix // r x 1, when Form has Input
}

// System adapts the bundle for the semi-implicit integrator, leaving
// disabled terms nil.
func (ops Operators) System() (sys integrate.System) {
	if ops.Form.Has(Linear) {
		sys.A = ops.A
	}
	if ops.Form.Has(Quadratic) {
		sys.F = ops.F
	}
	if ops.Form.Has(Input) {
		sys.B = ops.B
	}
	return
}

// Stable reports whether the linear part has all eigenvalues with strictly
// negative real part, along with the spectral abscissa.
func (ops Operators) Stable() (stable bool, maxRe float64) {
	if !ops.Form.Has(Linear) {
		return false, 0
	}
	maxRe, ok := ops.A.MaxRealEigenvalue()
	return ok && maxRe < 0, maxRe
}

// Truncate restricts a bundle to its first r basis directions by pure index
// selection of the operator blocks.
func (ops Operators) Truncate(r int) Operators {
	if r >= ops.R {
		return ops
	}
	out := Operators{R: r, Form: ops.Form}
	if ops.Form.Has(Linear) {
		out.A = ops.A.Slice(0, r, 0, r)
	}
	if ops.Form.Has(Quadratic) {
		out.F = quadratic.ExtractF(ops.F, r)
		out.H = quadratic.ExpandF(out.F)
	}
	if ops.Form.Has(Input) {
		out.B = ops.B.Slice(0, r, 0, 1)
	}
	return out
}
