package histmgr

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/distribution"
	"github.com/katalvlaran/saxshist/state"
)

// crossKey canonicalizes an unordered body-pair index.
type crossKey struct{ i, j int }

func canonicalPair(i, j int) crossKey {
	if i < j {
		return crossKey{i, j}
	}
	return crossKey{j, i}
}

// Partial is the incremental HistogramManager : it keeps
// per-body self[i] and cross[i][j] blocks plus hydration self_w/cross_w[i]
// blocks, and on each Calculate/CalculateAll only recomputes the blocks
// touched by bodies the StateManager reports modified since the previous
// call, retiring the stale block from a running master accumulator before
// adding its replacement.
//
// The master accumulator folds the atom-atom channel's i<j cross blocks in
// at a factor of 2 so that P_aa is invariant to how atoms are partitioned
// into bodies (a single body of two atoms and two one-atom bodies at the
// same separation produce identical P_aa).
type Partial struct {
	mol      *body.Molecule
	ax       axis.Axis
	opt      distcalc.Options
	symmetry bool

	coordsCache map[int]*coords.CompactCoordinates
	hydration   *coords.CompactCoordinates

	self   map[int]*distribution.Distribution1D
	cross  map[crossKey]*distribution.Distribution1D
	crossW map[int]*distribution.Distribution1D
	selfW  *distribution.Distribution1D

	masterAA *distribution.Distribution1D
	masterAW *distribution.Distribution1D
	masterWW *distribution.Distribution1D

	initialized bool
}

// NewPartial constructs an incremental histogram manager over mol.
// withSymmetry expands each body's SymmetryOp list into virtual coordinate
// copies before binning.
func NewPartial(mol *body.Molecule, ax axis.Axis, opt distcalc.Options, withSymmetry bool) *Partial {
	return &Partial{
		mol: mol, ax: ax, opt: opt, symmetry: withSymmetry,
		coordsCache: make(map[int]*coords.CompactCoordinates),
		self:        make(map[int]*distribution.Distribution1D),
		cross:       make(map[crossKey]*distribution.Distribution1D),
		crossW:      make(map[int]*distribution.Distribution1D),
	}
}

// Calculate returns the current total P(d).
func (p *Partial) Calculate() *distribution.Distribution1D { return p.CalculateAll().Total() }

// CalculateAll applies the pending incremental update (or a full
// initialization on first call) and returns the refreshed decomposition.
func (p *Partial) CalculateAll() composite.Histogram {
	sm := p.mol.StateManager()
	snap := sm.Snapshot()
	if !p.initialized {
		p.fullInit()
	} else {
		p.update(snap)
	}
	sm.Reset()

	return composite.NewUnresolved(p.ax, p.masterAA.Clone(), p.masterAW.Clone(), p.masterWW.Clone())
}

func (p *Partial) zero() *distribution.Distribution1D {
	return distribution.NewDistribution1D(p.ax.Bins, p.opt.Weighted)
}

func (p *Partial) bodyAt(i int) *body.Body { return p.mol.Body(i) }

func (p *Partial) rebuildBodyCoords(i int) {
	b := p.bodyAt(i)
	if b == nil {
		delete(p.coordsCache, i)
		return
	}
	p.coordsCache[i] = bodyCoordinates(b, p.symmetry)
}

func (p *Partial) fullInit() {
	n := p.mol.NumBodies()
	p.masterAA, p.masterAW, p.masterWW = p.zero(), p.zero(), p.zero()

	for i := 0; i < n; i++ {
		p.rebuildBodyCoords(i)
	}
	p.hydration = coords.FromSpeciesSource(p.mol.Hydration())

	for i := 0; i < n; i++ {
		ci := p.coordsCache[i]
		if ci == nil {
			continue
		}
		self := distcalc.SelfCorrelation(ci, p.ax, p.opt)
		p.self[i] = self
		p.masterAA.AddFrom(self)

		cw := distcalc.CrossCorrelation(ci, p.hydration, p.ax, p.opt)
		p.crossW[i] = cw
		p.masterAW.AddFrom(cw)

		for j := i + 1; j < n; j++ {
			cj := p.coordsCache[j]
			if cj == nil {
				continue
			}
			cr := distcalc.CrossCorrelation(ci, cj, p.ax, p.opt)
			p.cross[crossKey{i, j}] = cr
			p.masterAA.AddScaled(cr, 2)
		}
	}
	p.selfW = distcalc.SelfCorrelation(p.hydration, p.ax, p.opt)
	p.masterWW.AddFrom(p.selfW)
	p.initialized = true
}

// update recomputes exactly the blocks invalidated by snap: stale values are
// subtracted out of the master accumulators using the pre-update
// coordinates, coordinates are then rebuilt, and fresh values computed from
// the new coordinates are added back in. Splitting into subtract/rebuild/add
// phases (rather than subtract-then-immediately-recompute per body) is what
// lets a single hydration change and a body change land on the same call
// without a body's cross_w block being computed twice against stale data.
func (p *Partial) update(snap state.Snapshot) {
	n := p.mol.NumBodies()
	dirty := make(map[int]bool)
	for i := 0; i < n; i++ {
		if snap.Modified(i) {
			dirty[i] = true
		}
	}

	// Phase 1: subtract everything about to be recomputed, from old values.
	if snap.HydrationModified {
		if old := p.selfW; old != nil {
			p.masterWW.SubFrom(old)
		}
		for i := 0; i < n; i++ {
			if old := p.crossW[i]; old != nil {
				p.masterAW.SubFrom(old)
			}
		}
	}
	for i := range dirty {
		if old := p.self[i]; old != nil {
			p.masterAA.SubFrom(old)
		}
		if !snap.HydrationModified {
			if old := p.crossW[i]; old != nil {
				p.masterAW.SubFrom(old)
			}
		}
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			key := canonicalPair(i, j)
			if old, ok := p.cross[key]; ok {
				p.masterAA.SubFrom(scaledCopy(old, 2))
				delete(p.cross, key)
			}
		}
	}

	// Phase 2: rebuild coordinates.
	for i := range dirty {
		p.rebuildBodyCoords(i)
	}
	if snap.HydrationModified {
		p.hydration = coords.FromSpeciesSource(p.mol.Hydration())
	}

	// Phase 3: recompute and add back, from the new coordinates.
	for i := range dirty {
		ci := p.coordsCache[i]
		if ci == nil {
			delete(p.self, i)
			continue
		}
		self := distcalc.SelfCorrelation(ci, p.ax, p.opt)
		p.self[i] = self
		p.masterAA.AddFrom(self)
	}

	if snap.HydrationModified {
		p.selfW = distcalc.SelfCorrelation(p.hydration, p.ax, p.opt)
		p.masterWW.AddFrom(p.selfW)
		for i := 0; i < n; i++ {
			ci := p.coordsCache[i]
			if ci == nil {
				delete(p.crossW, i)
				continue
			}
			cw := distcalc.CrossCorrelation(ci, p.hydration, p.ax, p.opt)
			p.crossW[i] = cw
			p.masterAW.AddFrom(cw)
		}
	} else {
		for i := range dirty {
			ci := p.coordsCache[i]
			if ci == nil {
				delete(p.crossW, i)
				continue
			}
			cw := distcalc.CrossCorrelation(ci, p.hydration, p.ax, p.opt)
			p.crossW[i] = cw
			p.masterAW.AddFrom(cw)
		}
	}

	processed := make(map[crossKey]bool)
	for i := range dirty {
		ci := p.coordsCache[i]
		if ci == nil {
			continue
		}
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			key := canonicalPair(i, j)
			if processed[key] {
				continue
			}
			processed[key] = true
			cj := p.coordsCache[j]
			if cj == nil {
				continue
			}
			var cr *distribution.Distribution1D
			if key.i == i {
				cr = distcalc.CrossCorrelation(ci, cj, p.ax, p.opt)
			} else {
				cr = distcalc.CrossCorrelation(cj, ci, p.ax, p.opt)
			}
			p.cross[key] = cr
			p.masterAA.AddScaled(cr, 2)
		}
	}
}

func scaledCopy(d *distribution.Distribution1D, factor float64) *distribution.Distribution1D {
	out := distribution.NewDistribution1D(d.Len(), d.Weighted())
	out.AddScaled(d, factor)
	return out
}
