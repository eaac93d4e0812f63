package composite

import (
	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/distribution"
)

// Resolved is the form-factor-resolved decomposition :
// P_aa[ff1,ff2] (Distribution3D), P_aw[ff] (Distribution2D), P_ww
// (Distribution1D) on the primary distance axis, plus P_ax[ff]
// (Distribution2D) and P_xx (Distribution1D) for the grid-derived
// excluded-volume channel on a second, possibly variable-width axis.
type Resolved struct {
	ax    axis.Axis
	exvAx axis.Axis

	baseAA *distribution.Distribution3D
	baseAW *distribution.Distribution2D
	baseWW *distribution.Distribution1D

	baseAX *distribution.Distribution2D
	baseXX *distribution.Distribution1D

	waterScale float64
	exvScale   float64

	total *distribution.Distribution1D
}

// NewResolved builds a Resolved histogram. ax and exvAx may be the same
// Axis when excluded volume is not grid-resolved; pass a zero-bin
// Distribution2D/1D pair for ax2/xx in that case.
func NewResolved(ax, exvAx axis.Axis, aa *distribution.Distribution3D, aw *distribution.Distribution2D, ww *distribution.Distribution1D, ax2 *distribution.Distribution2D, xx *distribution.Distribution1D) *Resolved {
	r := &Resolved{
		ax: ax, exvAx: exvAx,
		baseAA: aa, baseAW: aw, baseWW: ww.Clone(),
		baseAX: ax2, baseXX: xx,
		waterScale: 1, exvScale: 1,
	}
	r.recompute()
	return r
}

// Axis returns the primary (non-excluded-volume) distance axis.
func (r *Resolved) Axis() axis.Axis { return r.ax }

// ExcludedVolumeAxis returns the axis the excluded-volume channel lives on.
func (r *Resolved) ExcludedVolumeAxis() axis.Axis { return r.exvAx }

// Total returns the current P_total = P_aa + 2*P_aw + P_ww, collapsed
// across species dimensions.
func (r *Resolved) Total() *distribution.Distribution1D { return r.total }

// AtomAtom returns the species-resolved atom-atom channel (scale-invariant).
func (r *Resolved) AtomAtom() *distribution.Distribution3D { return r.baseAA }

// ExcludedVolumeSelf returns the currently-scaled P_xx channel.
func (r *Resolved) ExcludedVolumeSelf() *distribution.Distribution1D {
	return scale1D(r.baseXX, r.exvScale*r.exvScale)
}

// SansExcludedVolume returns P_total without any excluded-volume
// contribution mixed in (the primary-axis total never includes P_xx/P_ax,
// since those live on a separate axis; this accessor exists so the fitter
// can request the "no excluded volume" component explicitly).
func (r *Resolved) SansExcludedVolume() *distribution.Distribution1D { return r.total }

// ApplyWaterScalingFactor rescales hydration-containing channels; see
// Unresolved.ApplyWaterScalingFactor for the idempotence contract.
func (r *Resolved) ApplyWaterScalingFactor(c float64) {
	r.waterScale = c
	r.recompute()
}

// ApplyExcludedVolumeScalingFactor rescales the excluded-volume channel
// the same way water scaling rescales hydration: recomputed from the
// unscaled base each call, so repeated application is idempotent in
// effect.
func (r *Resolved) ApplyExcludedVolumeScalingFactor(cx float64) {
	r.exvScale = cx
}

func (r *Resolved) recompute() {
	awSum := scale2DSum(r.baseAW, r.waterScale)
	ww := scale1D(r.baseWW, r.waterScale*r.waterScale)
	aaSum := r.baseAA.Sum1D()

	total := distribution.NewDistribution1D(r.ax.Bins, false)
	for i := 0; i < r.ax.Bins; i++ {
		total.Set(i, aaSum.At(i)+2*awSum.At(i)+ww.At(i))
	}
	r.total = total
}

func scale2DSum(d *distribution.Distribution2D, factor float64) *distribution.Distribution1D {
	sum := d.Sum1D()
	return scale1D(sum, factor)
}
