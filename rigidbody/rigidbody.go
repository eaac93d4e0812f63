// Package rigidbody implements the RigidBody optimisation loop:
// repeatedly perturb one body (or a rigidly-connected group pivoting
// about a distance constraint), refit against the experimental curve,
// and keep the move only if it improves chi-square.
package rigidbody

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/fitter"
	"github.com/katalvlaran/saxshist/histmgr"
)

// HydrationGenerator regenerates the hydration shell after a body moves.
// It is an external collaborator: callers supply a concrete implementation, or nil for a
// run with a static (never regenerated) hydration layer.
type HydrationGenerator interface {
	Generate(mol *body.Molecule) []body.HydrationSite
}

// StepResult reports the outcome of one optimize_step call.
type StepResult struct {
	Accepted    bool
	BodyIndex   int
	Constraint  int
	ChiSquare   float64
	BestChi2    float64
	Fingerprint [32]byte
	AlreadySeen bool
}

// best is the running incumbent: the last accepted fit result plus enough
// state to know it is still current (nothing has been committed since).
type best struct {
	chi2 float64
	set  bool
}

// RigidBody drives the perturb/refit/accept-or-reject loop over one
// molecule, its constraints, and the strategies that choose and apply
// each move.
type RigidBody struct {
	mol         *body.Molecule
	constraints *ConstraintManager
	manager     histmgr.Manager
	managerOpt  distcalc.Options
	manChoice   histmgr.Choice
	distAxis    axis.Axis
	data        *dataset.Dataset
	hydrator    HydrationGenerator
	selector    BodySelector
	paramGen    ParameterGenerator
	transform   TransformStrategy
	fitOpts     []fitter.Option
	trajectory  *TrajectoryWriter
	logger      *logrus.Logger

	iteration int
	best      best
}

// Option configures a RigidBody at construction time.
type Option func(*RigidBody)

// WithHydrationGenerator supplies the regeneration strategy run after
// every accepted-or-not perturbation.
func WithHydrationGenerator(g HydrationGenerator) Option {
	return func(r *RigidBody) { r.hydrator = g }
}

// WithBodySelector overrides the default UniformBodySelector.
func WithBodySelector(s BodySelector) Option {
	if s == nil {
		panic("rigidbody: WithBodySelector: nil selector")
	}
	return func(r *RigidBody) { r.selector = s }
}

// WithParameterGenerator overrides the default UniformParameterGenerator.
func WithParameterGenerator(g ParameterGenerator) Option {
	if g == nil {
		panic("rigidbody: WithParameterGenerator: nil generator")
	}
	return func(r *RigidBody) { r.paramGen = g }
}

// WithTransformStrategy overrides the default DefaultTransformStrategy.
func WithTransformStrategy(t TransformStrategy) Option {
	if t == nil {
		panic("rigidbody: WithTransformStrategy: nil strategy")
	}
	return func(r *RigidBody) { r.transform = t }
}

// WithFitterOptions passes options through to the ConstrainedFitter built
// fresh each iteration.
func WithFitterOptions(opts ...fitter.Option) Option {
	return func(r *RigidBody) { r.fitOpts = opts }
}

// WithLogger overrides the default logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	if l == nil {
		panic("rigidbody: WithLogger: nil logger")
	}
	return func(r *RigidBody) { r.logger = l }
}

// New builds a RigidBody over mol/constraints, computing its histogram via
// the named manager choice on distAxis, and fitting against data.
func New(mol *body.Molecule, constraints []*body.Constraint, manChoice histmgr.Choice, distAxis axis.Axis, managerOpt distcalc.Options, data *dataset.Dataset, opts ...Option) (*RigidBody, error) {
	manager, err := histmgr.New(manChoice, mol, distAxis, managerOpt)
	if err != nil {
		return nil, fmt.Errorf("rigidbody: New: %w", err)
	}
	r := &RigidBody{
		mol:         mol,
		constraints: NewConstraintManager(constraints),
		manager:     manager,
		managerOpt:  managerOpt,
		manChoice:   manChoice,
		distAxis:    distAxis,
		data:        data,
		selector:    NewUniformBodySelector(0.5, nil),
		paramGen:    NewUniformParameterGenerator(0.1, 0.5, nil),
		transform:   DefaultTransformStrategy{},
		trajectory:  NewTrajectoryWriter(),
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Trajectory returns the writer recording every accepted frame.
func (r *RigidBody) Trajectory() *TrajectoryWriter { return r.trajectory }

// BestChiSquare returns the best chi-square committed so far, or +Inf if
// no iteration has run yet.
func (r *RigidBody) BestChiSquare() float64 {
	if !r.best.set {
		return math.Inf(1)
	}
	return r.best.chi2
}

// fit runs the histogram+Debye+constrained-fit pipeline once against the
// assembly's current coordinates and returns the fit result together with
// the histogram it was fitted against.
func (r *RigidBody) fit() (*fitter.Result, composite.Histogram, error) {
	hist := r.manager.CalculateAll()
	f := fitter.New(r.data, hist, r.mol, r.constraints.All(), r.fitOpts...)
	res, err := f.Fit()
	if err != nil {
		return nil, nil, err
	}
	return res, hist, nil
}

// regenerateHydration asks the configured HydrationGenerator (if any) for
// a new hydration shell and installs it.
func (r *RigidBody) regenerateHydration() {
	if r.hydrator == nil {
		return
	}
	sites := r.hydrator.Generate(r.mol)
	r.mol.ReplaceHydration(sites)
}

// Step performs exactly one perturb/refit/accept-or-reject cycle
// and returns its outcome.
func (r *RigidBody) Step() (StepResult, error) {
	r.iteration++

	bodyIndex, constraintIndex := r.selector.Select(r.mol, r.constraints.All())
	if bodyIndex < 0 {
		return StepResult{}, fmt.Errorf("rigidbody: Step: no bodies to perturb")
	}
	param := r.paramGen.Generate()

	if !r.best.set {
		base, _, err := r.fit()
		if err != nil {
			return StepResult{}, fmt.Errorf("rigidbody: Step: baseline fit: %w", err)
		}
		r.best.chi2, r.best.set = base.ChiSquare, true
	}

	pre := make(map[int][]body.AtomSite, r.mol.NumBodies())
	for i := 0; i < r.mol.NumBodies(); i++ {
		if b := r.mol.Body(i); b != nil {
			pre[i] = b.Snapshot()
		}
	}
	touched, err := r.transform.Apply(r.mol, r.constraints.All(), bodyIndex, constraintIndex, param)
	if err != nil {
		return StepResult{}, fmt.Errorf("rigidbody: Step: transform: %w", err)
	}
	snaps := make(map[int][]body.AtomSite, len(touched))
	for _, idx := range touched {
		snaps[idx] = pre[idx]
	}

	r.regenerateHydration()

	res, _, err := r.fit()
	if err != nil {
		r.rollback(snaps)
		return StepResult{}, fmt.Errorf("rigidbody: Step: fit: %w", err)
	}

	chi2 := res.ChiSquare
	accept := chi2 < r.best.chi2

	out := StepResult{BodyIndex: bodyIndex, Constraint: constraintIndex, ChiSquare: chi2}
	if accept {
		r.best.chi2 = chi2
		r.best.set = true
		out.Accepted = true
		out.Fingerprint = Fingerprint(r.mol)
		_, out.AlreadySeen = r.trajectory.Record(r.iteration, chi2, out.Fingerprint)
		r.logger.WithFields(logrus.Fields{"iteration": r.iteration, "chi2": chi2, "body": bodyIndex}).Debug("rigidbody: accepted move")
	} else {
		r.rollback(snaps)
		r.regenerateHydration()
		r.logger.WithFields(logrus.Fields{"iteration": r.iteration, "chi2": chi2, "best": r.best.chi2}).Debug("rigidbody: rejected move")
	}
	out.BestChi2 = r.best.chi2
	return out, nil
}

// rollback restores every snapshotted body and signals each change once.
func (r *RigidBody) rollback(snaps map[int][]body.AtomSite) {
	for idx, snap := range snaps {
		b := r.mol.Body(idx)
		b.Restore(snap)
		b.Notify()
	}
}

// Run executes iterations Step calls, stopping early only on error.
func (r *RigidBody) Run(iterations int) ([]StepResult, error) {
	out := make([]StepResult, 0, iterations)
	for i := 0; i < iterations; i++ {
		res, err := r.Step()
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}
