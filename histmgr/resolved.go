package histmgr

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/distribution"
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/state"
)

// PartialFormFactor is the form-factor-resolved counterpart of Partial: the
// same incremental subtract/rebuild/add bookkeeping, but against
// Distribution3D (atom-atom, keyed by species pair) and Distribution2D
// (atom-water, keyed by species) blocks instead of plain Distribution1D.
//
// The excluded-volume channel (P_ax/P_xx on a grid-derived axis) is exposed
// on the returned composite.Resolved as an always-zero block: no grid
// generator is wired into this manager yet, so there is nothing to
// populate it with. ApplyExcludedVolumeScalingFactor on the result is
// therefore a no-op in effect until a grid source is added upstream.
type PartialFormFactor struct {
	mol      *body.Molecule
	ax       axis.Axis
	opt      distcalc.Options
	symmetry bool

	coordsCache map[int]*coords.CompactCoordinates
	hydration   *coords.CompactCoordinates

	self   map[int]*distribution.Distribution3D
	cross  map[crossKey]*distribution.Distribution3D
	crossW map[int]*distribution.Distribution2D
	selfW  *distribution.Distribution1D

	masterAA *distribution.Distribution3D
	masterAW *distribution.Distribution2D
	masterWW *distribution.Distribution1D

	initialized bool
}

// NewPartialFormFactor constructs a species-resolved incremental manager.
func NewPartialFormFactor(mol *body.Molecule, ax axis.Axis, opt distcalc.Options, withSymmetry bool) *PartialFormFactor {
	return &PartialFormFactor{
		mol: mol, ax: ax, opt: opt, symmetry: withSymmetry,
		coordsCache: make(map[int]*coords.CompactCoordinates),
		self:        make(map[int]*distribution.Distribution3D),
		cross:       make(map[crossKey]*distribution.Distribution3D),
		crossW:      make(map[int]*distribution.Distribution2D),
	}
}

// Calculate returns the current total P(d).
func (p *PartialFormFactor) Calculate() *distribution.Distribution1D {
	return p.CalculateAll().Total()
}

// CalculateAll applies the pending incremental update and returns the
// refreshed species-resolved decomposition.
func (p *PartialFormFactor) CalculateAll() composite.Histogram {
	sm := p.mol.StateManager()
	snap := sm.Snapshot()
	if !p.initialized {
		p.fullInit()
	} else {
		p.update(snap)
	}
	sm.Reset()

	nSpecies := int(formfactor.Count)
	emptyAX := distribution.NewDistribution2D(nSpecies, 0, false)
	emptyXX := distribution.NewDistribution1D(0, false)

	// No grid-derived excluded-volume source is wired into this manager, so
	// the excluded-volume channel reuses the primary axis as a placeholder
	// with zero populated bins rather than fabricating a second real axis.
	return composite.NewResolved(p.ax, p.ax, p.masterAA.Clone(), p.masterAW.Clone(), p.masterWW, emptyAX, emptyXX)
}

func (p *PartialFormFactor) zero3() *distribution.Distribution3D {
	return distribution.NewDistribution3D(int(formfactor.Count), p.ax.Bins, p.opt.Weighted)
}
func (p *PartialFormFactor) zero2() *distribution.Distribution2D {
	return distribution.NewDistribution2D(int(formfactor.Count), p.ax.Bins, p.opt.Weighted)
}
func (p *PartialFormFactor) zero1() *distribution.Distribution1D {
	return distribution.NewDistribution1D(p.ax.Bins, p.opt.Weighted)
}

func (p *PartialFormFactor) rebuildBodyCoords(i int) {
	b := p.mol.Body(i)
	if b == nil {
		delete(p.coordsCache, i)
		return
	}
	p.coordsCache[i] = bodyCoordinates(b, p.symmetry)
}

func (p *PartialFormFactor) fullInit() {
	n := p.mol.NumBodies()
	p.masterAA, p.masterAW, p.masterWW = p.zero3(), p.zero2(), p.zero1()

	for i := 0; i < n; i++ {
		p.rebuildBodyCoords(i)
	}
	p.hydration = coords.FromSpeciesSource(p.mol.Hydration())

	for i := 0; i < n; i++ {
		ci := p.coordsCache[i]
		if ci == nil {
			continue
		}
		self := distcalc.SelfCorrelationFF(ci, p.ax, p.opt)
		p.self[i] = self
		p.masterAA.AddFrom(self)

		cw := distcalc.CrossCorrelationFF(ci, p.hydration, p.ax, p.opt)
		p.crossW[i] = cw
		p.masterAW.AddFrom(cw)

		for j := i + 1; j < n; j++ {
			cj := p.coordsCache[j]
			if cj == nil {
				continue
			}
			cr := distcalc.CrossCorrelationFF(ci, cj, p.ax, p.opt)
			p.cross[crossKey{i, j}] = cr
			add3Scaled(p.masterAA, cr, 2)
		}
	}
	p.selfW = distcalc.SelfCorrelation(p.hydration, p.ax, p.opt)
	p.masterWW.AddFrom(p.selfW)
	p.initialized = true
}

func (p *PartialFormFactor) update(snap state.Snapshot) {
	n := p.mol.NumBodies()
	dirty := make(map[int]bool)
	for i := 0; i < n; i++ {
		if snap.Modified(i) {
			dirty[i] = true
		}
	}
	hydMod := snap.HydrationModified

	if hydMod {
		p.masterWW.SubFrom(p.selfW)
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
		if !hydMod {
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
				add3Scaled(p.masterAA, old, -2)
				delete(p.cross, key)
			}
		}
	}

	for i := range dirty {
		p.rebuildBodyCoords(i)
	}
	if hydMod {
		p.hydration = coords.FromSpeciesSource(p.mol.Hydration())
	}

	for i := range dirty {
		ci := p.coordsCache[i]
		if ci == nil {
			delete(p.self, i)
			continue
		}
		self := distcalc.SelfCorrelationFF(ci, p.ax, p.opt)
		p.self[i] = self
		p.masterAA.AddFrom(self)
	}

	if hydMod {
		p.selfW = distcalc.SelfCorrelation(p.hydration, p.ax, p.opt)
		p.masterWW.AddFrom(p.selfW)
		for i := 0; i < n; i++ {
			ci := p.coordsCache[i]
			if ci == nil {
				delete(p.crossW, i)
				continue
			}
			cw := distcalc.CrossCorrelationFF(ci, p.hydration, p.ax, p.opt)
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
			cw := distcalc.CrossCorrelationFF(ci, p.hydration, p.ax, p.opt)
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
			var cr *distribution.Distribution3D
			if key.i == i {
				cr = distcalc.CrossCorrelationFF(ci, cj, p.ax, p.opt)
			} else {
				cr = distcalc.CrossCorrelationFF(cj, ci, p.ax, p.opt)
			}
			p.cross[key] = cr
			add3Scaled(p.masterAA, cr, 2)
		}
	}
}

func add3Scaled(dst, src *distribution.Distribution3D, factor float64) {
	n, bins := dst.NSpecies(), dst.Bins()
	for s1 := 0; s1 < n; s1++ {
		for s2 := 0; s2 < n; s2++ {
			for b := 0; b < bins; b++ {
				v := src.At(s1, s2, b)
				if v == 0 {
					continue
				}
				dst.Add(s1, s2, b, factor*v)
			}
		}
	}
}
