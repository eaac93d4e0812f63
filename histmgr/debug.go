package histmgr

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/distribution"
)

// Debug is the independent double-summation HistogramManager used as a
// cross-check reference: unlike Simple and Partial, it never
// decomposes the molecule into per-body blocks at all. It merges every
// body's coordinates into one CompactCoordinates and runs a single
// SelfCorrelation over the merged set, so any bug in the per-body
// cross-term bookkeeping the other two managers share cannot also be
// present here. Agreement between Debug and the others is expected to
// ~1e-6 relative tolerance, not bit-for-bit, since summation order differs.
type Debug struct {
	mol *body.Molecule
	ax  axis.Axis
	opt distcalc.Options
}

// NewDebug constructs the independent reference manager over mol.
func NewDebug(mol *body.Molecule, ax axis.Axis, opt distcalc.Options) *Debug {
	return &Debug{mol: mol, ax: ax, opt: opt}
}

// Calculate returns the current total P(d).
func (d *Debug) Calculate() *distribution.Distribution1D { return d.CalculateAll().Total() }

// CalculateAll merges all bodies into one coordinate set and recomputes
// everything from first principles.
func (d *Debug) CalculateAll() composite.Histogram {
	n := d.mol.NumBodies()
	parts := make([]*coords.CompactCoordinates, 0, n)
	for i := 0; i < n; i++ {
		b := d.mol.Body(i)
		if b == nil {
			continue
		}
		parts = append(parts, bodyCoordinates(b, true))
	}
	var merged *coords.CompactCoordinates
	if len(parts) == 0 {
		merged = coords.FromSource(emptySource{})
	} else {
		merged = coords.Merge(parts...)
	}
	hydration := coords.FromSpeciesSource(d.mol.Hydration())

	aa := distcalc.SelfCorrelation(merged, d.ax, d.opt)
	aw := distcalc.CrossCorrelation(merged, hydration, d.ax, d.opt)
	ww := distcalc.SelfCorrelation(hydration, d.ax, d.opt)

	return composite.NewUnresolved(d.ax, aa, aw, ww)
}

type emptySource struct{}

func (emptySource) NumSites() int                { return 0 }
func (emptySource) Site(int) (x, y, z, w float64) { return 0, 0, 0, 0 }
