package histmgr

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/distribution"
)

// Simple is the reference HistogramManager: every call rebuilds every
// body's CompactCoordinates from scratch and recomputes the full
// decomposition, ignoring the StateManager's dirty bits entirely. It
// exists to be cheap to reason about and is the baseline Partial's
// incremental bookkeeping is tested against.
type Simple struct {
	mol *body.Molecule
	ax  axis.Axis
	opt distcalc.Options
}

// NewSimple constructs a Simple histogram manager over mol.
func NewSimple(mol *body.Molecule, ax axis.Axis, opt distcalc.Options) *Simple {
	return &Simple{mol: mol, ax: ax, opt: opt}
}

// Calculate returns the current total P(d).
func (s *Simple) Calculate() *distribution.Distribution1D { return s.CalculateAll().Total() }

// CalculateAll rebuilds the {aa, aw, ww} decomposition from the molecule's
// current geometry.
func (s *Simple) CalculateAll() composite.Histogram {
	n := s.mol.NumBodies()
	bodyCoords := make([]*coords.CompactCoordinates, n)
	for i := 0; i < n; i++ {
		b := s.mol.Body(i)
		if b == nil {
			continue
		}
		bodyCoords[i] = bodyCoordinates(b, false)
	}
	hydration := coords.FromSpeciesSource(s.mol.Hydration())

	aa := distribution.NewDistribution1D(s.ax.Bins, s.opt.Weighted)
	aw := distribution.NewDistribution1D(s.ax.Bins, s.opt.Weighted)
	for i := 0; i < n; i++ {
		if bodyCoords[i] == nil {
			continue
		}
		aa.AddFrom(distcalc.SelfCorrelation(bodyCoords[i], s.ax, s.opt))
		aw.AddFrom(distcalc.CrossCorrelation(bodyCoords[i], hydration, s.ax, s.opt))
		for j := i + 1; j < n; j++ {
			if bodyCoords[j] == nil {
				continue
			}
			aa.AddScaled(distcalc.CrossCorrelation(bodyCoords[i], bodyCoords[j], s.ax, s.opt), 2)
		}
	}
	ww := distcalc.SelfCorrelation(hydration, s.ax, s.opt)

	return composite.NewUnresolved(s.ax, aa, aw, ww)
}
