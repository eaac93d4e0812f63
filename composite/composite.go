// Package composite implements CompositeDistanceHistogram: the three-way
// decomposition of a total pair-distance distribution into
// {atom-atom, atom-water, water-water} (and, in the form-factor-resolved
// variant defined in resolved.go, per-species channels plus an
// excluded-volume channel on a second axis).
package composite

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/distribution"
)

// MinTailBins is the floor below which the tail-shortening invariant never
// truncates.
const MinTailBins = 10

// Histogram is the common surface every CompositeDistanceHistogram variant
// exposes to the Debye transform and fitter.
type Histogram interface {
	Axis() axis.Axis
	Total() *distribution.Distribution1D
	ApplyWaterScalingFactor(c float64)
	ApplyExcludedVolumeScalingFactor(cx float64)
}

// Unresolved is the plain {P_aa, P_aw, P_ww, P_total} decomposition
// (the "Unresolved (D1D)" form).
type Unresolved struct {
	ax axis.Axis

	baseAA, baseAW, baseWW *distribution.Distribution1D
	waterScale             float64

	total *distribution.Distribution1D
}

// NewUnresolved builds an Unresolved histogram from its three raw
// (unscaled, water-factor = 1) component blocks, truncating the tail to
// the last non-zero bin of P_total with a floor of MinTailBins.
func NewUnresolved(ax axis.Axis, aa, aw, ww *distribution.Distribution1D) *Unresolved {
	u := &Unresolved{ax: ax, baseAA: aa.Clone(), baseAW: aw.Clone(), baseWW: ww.Clone(), waterScale: 1}
	u.recompute()
	u.truncate()
	return u
}

// Axis returns the shared distance axis all channels are defined over.
func (u *Unresolved) Axis() axis.Axis { return u.ax }

// Total returns the current P_total = P_aa + 2*P_aw + P_ww.
func (u *Unresolved) Total() *distribution.Distribution1D { return u.total }

// AtomAtom returns the (scale-invariant) atom-atom channel.
func (u *Unresolved) AtomAtom() *distribution.Distribution1D { return u.baseAA }

// AtomWater returns the currently-scaled atom-water channel.
func (u *Unresolved) AtomWater() *distribution.Distribution1D {
	return scale1D(u.baseAW, u.waterScale)
}

// WaterWater returns the currently-scaled water-water channel.
func (u *Unresolved) WaterWater() *distribution.Distribution1D {
	return scale1D(u.baseWW, u.waterScale*u.waterScale)
}

// SansExcludedVolume is a no-op accessor on the unresolved histogram
// (there is no excluded-volume channel to subtract); returns Total() for
// interface symmetry with Resolved.
func (u *Unresolved) SansExcludedVolume() *distribution.Distribution1D { return u.Total() }

// ApplyWaterScalingFactor rescales the hydration-containing channels.
// Applying c1 then c2 must equal applying c2 alone to a
// fresh histogram: this is achieved by always recomputing from the
// unscaled base blocks rather than compounding successive factors.
func (u *Unresolved) ApplyWaterScalingFactor(c float64) {
	u.waterScale = c
	u.recompute()
}

// ApplyExcludedVolumeScalingFactor is a no-op on the unresolved histogram;
// present to satisfy the Histogram interface.
func (u *Unresolved) ApplyExcludedVolumeScalingFactor(float64) {}

func (u *Unresolved) recompute() {
	aw := scale1D(u.baseAW, u.waterScale)
	ww := scale1D(u.baseWW, u.waterScale*u.waterScale)
	total := distribution.NewDistribution1D(u.ax.Bins, false)
	for i := 0; i < u.ax.Bins; i++ {
		total.Set(i, u.baseAA.At(i)+2*aw.At(i)+ww.At(i))
	}
	u.total = total
}

func (u *Unresolved) truncate() {
	n := tailLength(u.total)
	if n >= u.ax.Bins {
		return
	}
	u.ax, _ = u.ax.Resize(n)
	u.baseAA.Resize(n)
	u.baseAW.Resize(n)
	u.baseWW.Resize(n)
	u.total.Resize(n)
}

// tailLength returns the truncation length: last non-zero index + 1,
// floored at MinTailBins (and never exceeding d.Len()).
func tailLength(d *distribution.Distribution1D) int {
	last := d.LastNonZero()
	n := last + 1
	if n < MinTailBins {
		n = MinTailBins
	}
	if n > d.Len() {
		n = d.Len()
	}
	return n
}

func scale1D(d *distribution.Distribution1D, factor float64) *distribution.Distribution1D {
	out := distribution.NewDistribution1D(d.Len(), false)
	for i := 0; i < d.Len(); i++ {
		out.Set(i, d.At(i)*factor)
	}
	return out
}
