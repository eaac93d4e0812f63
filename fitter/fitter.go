// Package fitter implements ConstrainedFitter: a linear fit of a composite
// histogram's Debye-transformed intensity against an experimental dataset,
// with an optional nonlinear refinement of the hydration and
// excluded-volume scaling factors, plus a distance-constraint penalty
// folded into the objective.
package fitter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/debye"
)

// ErrTooFewPoints is returned when the dataset has fewer points than the
// fit has free parameters, leaving chi-square's degrees of freedom
// undefined.
var ErrTooFewPoints = errors.New("fitter: dataset has fewer points than free parameters")

// reportWidth is the terminal-friendly wrap width for Result.Report, per
// the "fit reports written both to the terminal and to a text
// file".
const reportWidth = 80

// Status codes for Result.Status. Zero means the fit is trustworthy;
// non-zero flags a numerical degeneracy the caller (RigidBody) must treat
// as "worse than any feasible configuration" rather than a hard error.
const (
	StatusOK int = iota
	StatusNonConvergence
)

// defaultQGridBins is the resolution of the uniform q-grid the Debye
// transform is evaluated on before interpolating down to the experimental
// q points; TransformOnAxis only supports a uniform QAxis; dense sampling
// keeps the interpolation error well below typical experimental sigma.
const defaultQGridBins = 512

// Option configures a ConstrainedFitter.
type Option func(*options)

type options struct {
	nonlinear     bool
	qGridBins     int
	maxIterations int
	logger        *logrus.Logger
}

// WithNonlinearRefinement enables the (c_w, c_x) nonlinear refinement of
// the water and excluded-volume scaling factors. Disabled by default: a
// plain linear (a, b) fit against the histogram's current scaling is the
// cheaper default path RigidBody's per-iteration hot loop uses.
func WithNonlinearRefinement(enabled bool) Option {
	return func(o *options) { o.nonlinear = enabled }
}

// WithQGridBins overrides the resolution of the internal uniform q-grid.
// Panics on a non-positive value.
func WithQGridBins(n int) Option {
	if n <= 0 {
		panic("fitter: WithQGridBins(n<=0)")
	}
	return func(o *options) { o.qGridBins = n }
}

// WithMaxIterations bounds the nonlinear optimizer's major iteration count.
// Panics on a non-positive value.
func WithMaxIterations(n int) Option {
	if n <= 0 {
		panic("fitter: WithMaxIterations(n<=0)")
	}
	return func(o *options) { o.maxIterations = n }
}

// WithLogger overrides the default logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	if l == nil {
		panic("fitter: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

// ConstrainedFitter wraps a composite histogram and compares its
// Debye-transformed curve to an experimental dataset.
type ConstrainedFitter struct {
	data        *dataset.Dataset
	hist        composite.Histogram
	mol         *body.Molecule
	constraints []*body.Constraint
	opt         options
}

// New builds a ConstrainedFitter. constraints may be nil; mol is only
// consulted to evaluate constraint penalties and may be nil iff
// constraints is empty.
func New(data *dataset.Dataset, hist composite.Histogram, mol *body.Molecule, constraints []*body.Constraint, opts ...Option) *ConstrainedFitter {
	o := options{qGridBins: defaultQGridBins, maxIterations: 200, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &ConstrainedFitter{data: data, hist: hist, mol: mol, constraints: constraints, opt: o}
}

// ParamResult is one fitted parameter with its asymmetric error bars.
// ErrLow and ErrHigh are magnitudes (both non-negative); the parameter's
// confidence interval is [Value-ErrLow, Value+ErrHigh].
type ParamResult struct {
	Value, ErrLow, ErrHigh float64
}

// Result is the outcome of ConstrainedFitter.Fit.
type Result struct {
	A, B   ParamResult
	Cw, Cx ParamResult // zero value when nonlinear refinement was not requested.

	ChiSquare        float64
	DegreesOfFreedom int
	FuncEvaluations  int
	Status           int
}

// Converged reports whether Status indicates a trustworthy fit.
func (r *Result) Converged() bool { return r.Status == StatusOK }

// ReducedChiSquare returns ChiSquare / DegreesOfFreedom.
func (r *Result) ReducedChiSquare() float64 {
	if r.DegreesOfFreedom <= 0 {
		return math.Inf(1)
	}
	return r.ChiSquare / float64(r.DegreesOfFreedom)
}

// Report renders a terminal-friendly, 80-column-wrapped summary of the fit.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "a = %.6g (+%.2g/-%.2g)\n", r.A.Value, r.A.ErrHigh, r.A.ErrLow)
	fmt.Fprintf(&b, "b = %.6g (+%.2g/-%.2g)\n", r.B.Value, r.B.ErrHigh, r.B.ErrLow)
	if r.Cw.Value != 0 || r.Cw.ErrHigh != 0 || r.Cw.ErrLow != 0 {
		fmt.Fprintf(&b, "c_w = %.6g (+%.2g/-%.2g)\n", r.Cw.Value, r.Cw.ErrHigh, r.Cw.ErrLow)
		fmt.Fprintf(&b, "c_x = %.6g (+%.2g/-%.2g)\n", r.Cx.Value, r.Cx.ErrHigh, r.Cx.ErrLow)
	}
	fmt.Fprintf(&b, "chi^2 = %.6g over %d degrees of freedom (chi^2/dof = %.4g), %d function evaluations",
		r.ChiSquare, r.DegreesOfFreedom, r.ReducedChiSquare(), r.FuncEvaluations)
	if !r.Converged() {
		b.WriteString("; minimiser did not converge")
	}
	return wordwrap.WrapString(b.String(), reportWidth)
}

// Fit performs the linear (and optional nonlinear) fit and returns a
// Result. A non-converging nonlinear refinement still returns a Result,
// flagged with a non-zero Status rather than an error.
func (f *ConstrainedFitter) Fit() (*Result, error) {
	qExp, iExp, sigma := f.data.Q(), f.data.I(), f.data.Sigma()
	n := len(qExp)
	minParams := 2
	if f.opt.nonlinear {
		minParams = 4
	}
	if n < minParams {
		return nil, ErrTooFewPoints
	}

	if !f.opt.nonlinear {
		model := f.evaluate(1, 1, qExp)
		a, b, chi2, err := f.linearFitAndChiSquare(model, iExp, sigma)
		if err != nil {
			return nil, fmt.Errorf("fitter: Fit: %w", err)
		}
		return &Result{
			A: a, B: b,
			ChiSquare:        chi2,
			DegreesOfFreedom: n - 2,
			FuncEvaluations:  1,
			Status:           StatusOK,
		}, nil
	}

	objective := func(x []float64) float64 {
		cw, cx := x[0], x[1]
		model := f.evaluate(cw, cx, qExp)
		_, _, chi2, err := f.linearFitAndChiSquare(model, iExp, sigma)
		if err != nil {
			return math.Inf(1)
		}
		return chi2
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{MajorIterations: f.opt.maxIterations}
	res, err := optimize.Minimize(problem, []float64{1, 1}, settings, &optimize.NelderMead{})
	status := StatusOK
	if err != nil || res == nil || !statusConverged(res.Status) {
		status = StatusNonConvergence
		f.opt.logger.WithError(err).Debug("fitter: nonlinear refinement did not converge")
	}
	if res == nil {
		res = &optimize.Result{Location: optimize.Location{X: []float64{1, 1}}}
	}
	cw, cx := res.X[0], res.X[1]

	model := f.evaluate(cw, cx, qExp)
	a, b, chi2, err := f.linearFitAndChiSquare(model, iExp, sigma)
	if err != nil {
		return nil, fmt.Errorf("fitter: Fit: %w", err)
	}

	cwErr := curvatureError(objective, res.X, 0)
	cxErr := curvatureError(objective, res.X, 1)

	return &Result{
		A: a, B: b,
		Cw: ParamResult{Value: cw, ErrLow: cwErr, ErrHigh: cwErr},
		Cx: ParamResult{Value: cx, ErrLow: cxErr, ErrHigh: cxErr},
		ChiSquare:        chi2,
		DegreesOfFreedom: n - 4,
		FuncEvaluations:  res.FuncEvaluations,
		Status:           status,
	}, nil
}

// evaluate applies (cw, cx) to the histogram, Debye-transforms the result
// on a uniform q-grid spanning the experimental range, and linearly
// interpolates the curve down to qs.
func (f *ConstrainedFitter) evaluate(cw, cx float64, qs []float64) []float64 {
	f.hist.ApplyWaterScalingFactor(cw)
	f.hist.ApplyExcludedVolumeScalingFactor(cx)

	qMin, qMax := qs[0], qs[len(qs)-1]
	if qMax <= qMin {
		qMax = qMin + 1e-9
	}
	qAxis, err := axis.NewQAxis(qMin, qMax, f.opt.qGridBins)
	if err != nil {
		// A degenerate (single-point) dataset still needs an evaluable grid.
		qAxis, _ = axis.NewQAxis(qMin, qMin+1e-9, 2)
	}
	grid := debye.TransformOnAxis(f.hist.Total(), qAxis, f.hist.Axis())
	return interpolate(qAxis.Values(), grid, qs)
}

// linearFitAndChiSquare solves the weighted linear least-squares problem
// I_exp ~= a*model + b via gonum/mat's normal-equation solve, then folds
// the constraint penalty into chi-square.
func (f *ConstrainedFitter) linearFitAndChiSquare(model, iExp, sigma []float64) (a, b ParamResult, chi2 float64, err error) {
	n := len(model)
	x := mat.NewDense(n, 2, nil)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, model[i])
		x.Set(i, 1, 1)
		s := sigma[i]
		if s == 0 {
			s = 1
		}
		w[i] = 1 / (s * s)
	}
	weights := mat.NewDiagDense(n, w)

	var xtw mat.Dense
	xtw.Mul(x.T(), weights)
	var xtwx mat.Dense
	xtwx.Mul(&xtw, x)

	y := mat.NewVecDense(n, iExp)
	var xtwy mat.VecDense
	xtwy.MulVec(&xtw, y)

	var theta mat.VecDense
	if solveErr := theta.SolveVec(&xtwx, &xtwy); solveErr != nil {
		return ParamResult{}, ParamResult{}, 0, fmt.Errorf("linearFitAndChiSquare: normal equations: %w", solveErr)
	}
	aVal, bVal := theta.AtVec(0), theta.AtVec(1)

	var cov mat.Dense
	var sigmaA, sigmaB float64
	if invErr := cov.Inverse(&xtwx); invErr == nil {
		sigmaA = math.Sqrt(math.Abs(cov.At(0, 0)))
		sigmaB = math.Sqrt(math.Abs(cov.At(1, 1)))
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		resid := (iExp[i] - aVal*model[i] - bVal) / (1 / math.Sqrt(w[i]))
		sum += resid * resid
	}
	sum += f.constraintPenalty()

	return ParamResult{Value: aVal, ErrLow: sigmaA, ErrHigh: sigmaA},
		ParamResult{Value: bVal, ErrLow: sigmaB, ErrHigh: sigmaB},
		sum, nil
}

func (f *ConstrainedFitter) constraintPenalty() float64 {
	sum := 0.0
	for _, c := range f.constraints {
		sum += c.Penalty(f.mol)
	}
	return sum
}

// curvatureError estimates a 1-sigma error on parameter index i by central
// finite differences of the objective around x, using the standard
// delta-chi-square=1 relation sigma = sqrt(2 / d2F).
func curvatureError(objective func([]float64) float64, x []float64, i int) float64 {
	h := 1e-3 * math.Max(1, math.Abs(x[i]))
	xp := append([]float64(nil), x...)
	xm := append([]float64(nil), x...)
	xp[i] += h
	xm[i] -= h
	f0, fp, fm := objective(x), objective(xp), objective(xm)
	d2 := (fp - 2*f0 + fm) / (h * h)
	if d2 <= 0 {
		return 0
	}
	return math.Sqrt(2 / d2)
}

// statusConverged reports whether an optimize.Status represents a genuine
// minimum rather than a budget exhaustion or numerical failure.
func statusConverged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		return true
	default:
		return false
	}
}

// interpolate linearly samples (gridY at gridX) at each point in xs.
// Both slices are assumed ascending; xs is assumed to fall within
// [gridX[0], gridX[len-1]].
func interpolate(gridX, gridY, xs []float64) []float64 {
	out := make([]float64, len(xs))
	j := 0
	for i, x := range xs {
		for j < len(gridX)-2 && gridX[j+1] < x {
			j++
		}
		x0, x1 := gridX[j], gridX[j+1]
		y0, y1 := gridY[j], gridY[j+1]
		if x1 == x0 {
			out[i] = y0
			continue
		}
		t := (x - x0) / (x1 - x0)
		out[i] = y0 + t*(y1-y0)
	}
	return out
}
