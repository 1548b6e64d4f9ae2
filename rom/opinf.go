package rom

import (
	"fmt"

	"github.com/smallpondtom/operator-inference/quadratic"
	"github.com/smallpondtom/operator-inference/utils"
	"gonum.org/v1/gonum/mat"
)

// Infer solves the operator-inference least-squares problem: project the
// snapshots onto the basis, assemble the design matrix with one row
// [xr^T, prodUnique(xr)^T, u] per snapshot column (restricted to the enabled
// model-form terms), and regress against the projected derivatives
// (continuous) or the successor reduced states (discrete). The solve is
// QR-based; a rank-deficient design matrix falls back to an SVD minimum-norm
// solution instead of failing.
func Infer(ens Ensemble, Vr utils.Matrix, cfg ModelConfig) (Operators, error) {
	var (
		n, r = Vr.Dims()
	)
	if cfg.Form == 0 {
		return Operators{}, fmt.Errorf("%w: empty model form", ErrInvalidDimension)
	}
	if xn, _ := ens.X.Dims(); xn != n {
		return Operators{}, fmt.Errorf("%w: snapshots have dimension %d, basis has %d", ErrInvalidDimension, xn, n)
	}

	var (
		data   = ens.X
		target = ens.Xdot
	)
	if cfg.Scheme == Discrete {
		data = ens.Xprev
		target = ens.X
	}
	var (
		Xr = Project(Vr, data)   // r x c
		Yr = Project(Vr, target) // r x c
	)
	_, c := Xr.Dims()

	// Design matrix, one row per snapshot column
	var (
		s = quadratic.CompactLen(r)
		p = 0
	)
	if cfg.Form.Has(Linear) {
		p += r
	}
	if cfg.Form.Has(Quadratic) {
		p += s
	}
	if cfg.Form.Has(Input) {
		p++
	}
	if c < p {
		return Operators{}, fmt.Errorf("%w: %d snapshot columns cannot determine %d unknowns per row", ErrInvalidDimension, c, p)
	}
	D := utils.NewMatrix(c, p)
	for j := 0; j < c; j++ {
		var (
			xr  = Xr.Col(j).Data()
			row = D.RawMatrix().Data[j*p : (j+1)*p]
			off = 0
		)
		if cfg.Form.Has(Linear) {
			copy(row[off:off+r], xr)
			off += r
		}
		if cfg.Form.Has(Quadratic) {
			copy(row[off:off+s], quadratic.ProdUnique(xr))
			off += s
		}
		if cfg.Form.Has(Input) {
			row[off] = ens.U[j]
		}
	}

	// Solve D * W = Yr^T for the stacked operator transpose W (p x r)
	var (
		Yt = Yr.Transpose()
		W  mat.Dense
	)
	if err := W.Solve(D.M, Yt.M); err != nil {
		// Rank-deficient or ill-conditioned: minimum-norm solution
		W = *minNormSolve(D, Yt)
	}

	ops := Operators{R: r, Form: cfg.Form}
	var (
		Wm  = utils.Matrix{M: &W}
		off = 0
	)
	if cfg.Form.Has(Linear) {
		ops.A = Wm.Slice(off, off+r, 0, r).Transpose()
		off += r
	}
	if cfg.Form.Has(Quadratic) {
		ops.F = Wm.Slice(off, off+s, 0, r).Transpose()
		ops.H = quadratic.ExpandF(ops.F)
		off += s
	}
	if cfg.Form.Has(Input) {
		ops.B = Wm.Slice(off, off+1, 0, r).Transpose()
	}
	return ops, nil
}

// minNormSolve computes the SVD pseudoinverse solution of D*W = Y.
func minNormSolve(D, Y utils.Matrix) *mat.Dense {
	var (
		c, p = D.Dims()
		_, q = Y.Dims()
	)
	var svd mat.SVD
	if !svd.Factorize(D.M, mat.SVDThin) {
		// A failed SVD leaves only the zero solution
		return mat.NewDense(p, q, nil)
	}
	var (
		u, v  mat.Dense
		sv    = svd.Values(nil)
		tol   = sv[0] * utils.NODETOL * float64(max(c, p))
		kEff  = 0
		UtY   mat.Dense
		scale mat.Dense
	)
	svd.UTo(&u)
	svd.VTo(&v)
	for _, val := range sv {
		if val > tol {
			kEff++
		}
	}
	if kEff == 0 {
		return mat.NewDense(p, q, nil)
	}
	UtY.Mul(u.Slice(0, c, 0, kEff).T(), Y.M)
	scale.CloneFrom(UtY.Slice(0, kEff, 0, q))
	for i := 0; i < kEff; i++ {
		for j := 0; j < q; j++ {
			scale.Set(i, j, scale.At(i, j)/sv[i])
		}
	}
	var W mat.Dense
	W.Mul(v.Slice(0, p, 0, kEff), &scale)
	return &W
}

// SearchStable infers operators at decreasing basis size until the linear
// part is asymptotically stable. The loop is bounded by the candidate count;
// if no order down to 1 yields a stable model it reports
// ErrNoStableModelFound.
func SearchStable(ens Ensemble, basis Basis, cfg ModelConfig, rmax int) (Operators, error) {
	if !cfg.Form.Has(Linear) {
		return Operators{}, fmt.Errorf("%w: stability search needs a linear term", ErrInvalidDimension)
	}
	if rmax > basis.MaxOrder() {
		rmax = basis.MaxOrder()
	}
	for r := rmax; r >= 1; r-- {
		ops, err := Infer(ens, basis.Vr(r), cfg)
		if err != nil {
			return Operators{}, err
		}
		if stable, _ := ops.Stable(); stable {
			return ops, nil
		}
	}
	return Operators{}, fmt.Errorf("%w: exhausted basis orders %d..1", ErrNoStableModelFound, rmax)
}
