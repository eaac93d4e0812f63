// Package distcalc implements DistanceCalculator: the stateless pairwise
// distance-binning kernel shared by every histogram manager. It has two
// entry points — SelfCorrelation and CrossCorrelation — each available in
// an unresolved (Distribution1D) and form-factor-resolved
// (Distribution3D/Distribution2D) flavor.
//
// The kernel itself never allocates a new thread: callers pass a
// *workerpool.Pool and a chunk size, and the calculator dispatches
// per-chunk private accumulators that are associative-summed by the
// caller after Wait() — the "no shared mutable state inside the
// inner loop" guarantee.
package distcalc

import (
	"math"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distribution"
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/workerpool"
)

// DefaultChunkSize is the default outer-index range handed to one job,
// sized to a few hundred reference sites per chunk.
const DefaultChunkSize = 256

// Options configures one calculator invocation.
type Options struct {
	// Weighted selects the weighted-bin-centre variant (tracks per-bin
	// distance-weighted sums) instead of nearest-bin-only accumulation.
	Weighted bool
	// ChunkSize overrides DefaultChunkSize; <=0 uses the default.
	ChunkSize int
	// Pool is the thread pool jobs are dispatched onto; nil uses
	// workerpool.Global().
	Pool *workerpool.Pool
}

func (o Options) pool() *workerpool.Pool {
	if o.Pool != nil {
		return o.Pool
	}
	return workerpool.Global()
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o Options) bin(ax axis.Axis, d *distribution.Distribution1D, i, bin int, frac, dist, w float64) {
	if o.Weighted {
		d.AddWeighted(bin, w*frac, dist)
		if bin+1 < ax.Bins {
			d.AddWeighted(bin+1, w*(1-frac), dist)
		}
		return
	}
	d.Add(bin, w)
}

func (o Options) lookup(ax axis.Axis, dist float64) (bin int, frac float64, ok bool) {
	if o.Weighted {
		return ax.BinWeighted(dist)
	}
	bin, ok = ax.BinRounded(dist)
	return bin, 1, ok
}

// SelfCorrelation accumulates, for each unordered pair (i<j) in c, 2*wi*wj
// into bin[d(i,j)], plus the diagonal sum(wi^2) into bin 0. Distances >=
// ax.Max() are discarded.
func SelfCorrelation(c *coords.CompactCoordinates, ax axis.Axis, opt Options) *distribution.Distribution1D {
	n := c.Size()
	out := distribution.NewDistribution1D(ax.Bins, opt.Weighted)
	if n == 0 {
		return out
	}
	pool := opt.pool()
	chunk := opt.chunkSize()

	var grp workerpool.Group[*distribution.Distribution1D]
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		grp.Go(pool, func() *distribution.Distribution1D {
			local := distribution.NewDistribution1D(ax.Bins, opt.Weighted)
			for i := lo; i < hi; i++ {
				for j := i + 1; j < n; j++ {
					dist, w := c.Dist(i, j)
					bin, frac, ok := opt.lookup(ax, dist)
					if !ok {
						continue
					}
					opt.bin(ax, local, i, bin, frac, dist, 2*w)
				}
			}
			return local
		})
	}
	for _, local := range grp.Wait() {
		out.AddFrom(local)
	}

	diag := 0.0
	for i := 0; i < n; i++ {
		w := c.At(i).W
		diag += w * w
	}
	out.Add(0, diag)
	return out
}

// CrossCorrelation accumulates, for each ordered pair (i,j) in A x B,
// wi*wj into bin[d(i,j)].
func CrossCorrelation(a, b *coords.CompactCoordinates, ax axis.Axis, opt Options) *distribution.Distribution1D {
	na, nb := a.Size(), b.Size()
	out := distribution.NewDistribution1D(ax.Bins, opt.Weighted)
	if na == 0 || nb == 0 {
		return out
	}
	pool := opt.pool()
	chunk := opt.chunkSize()

	var grp workerpool.Group[*distribution.Distribution1D]
	for lo := 0; lo < na; lo += chunk {
		hi := lo + chunk
		if hi > na {
			hi = na
		}
		lo, hi := lo, hi
		grp.Go(pool, func() *distribution.Distribution1D {
			local := distribution.NewDistribution1D(ax.Bins, opt.Weighted)
			for i := lo; i < hi; i++ {
				for j := 0; j < nb; j++ {
					dist, w := crossDist(a, b, i, j)
					bin, frac, ok := opt.lookup(ax, dist)
					if !ok {
						continue
					}
					opt.bin(ax, local, i, bin, frac, dist, w)
				}
			}
			return local
		})
	}
	for _, local := range grp.Wait() {
		out.AddFrom(local)
	}
	return out
}

func crossDist(a, b *coords.CompactCoordinates, i, j int) (dist, w float64) {
	sa, sb := a.At(i), b.At(j)
	dx, dy, dz := sa.X-sb.X, sa.Y-sb.Y, sa.Z-sb.Z
	d := dx*dx + dy*dy + dz*dz
	return math.Sqrt(d), sa.W * sb.W
}

// SelfCorrelationFF is the form-factor-resolved variant of SelfCorrelation,
// producing a Distribution3D keyed by (species_i, species_j, bin). c must
// have been built with species resolution.
func SelfCorrelationFF(c *coords.CompactCoordinates, ax axis.Axis, opt Options) *distribution.Distribution3D {
	n := c.Size()
	out := distribution.NewDistribution3D(int(formfactor.Count), ax.Bins, opt.Weighted)
	if n == 0 {
		return out
	}
	pool := opt.pool()
	chunk := opt.chunkSize()

	var grp workerpool.Group[*distribution.Distribution3D]
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		grp.Go(pool, func() *distribution.Distribution3D {
			local := distribution.NewDistribution3D(int(formfactor.Count), ax.Bins, opt.Weighted)
			for i := lo; i < hi; i++ {
				si := c.SpeciesAt(i)
				for j := i + 1; j < n; j++ {
					dist, w := c.Dist(i, j)
					bin, frac, ok := opt.lookup(ax, dist)
					if !ok {
						continue
					}
					sj := c.SpeciesAt(j)
					weight := 2 * w
					if opt.Weighted {
						local.AddWeighted(int(si), int(sj), bin, weight*frac, dist)
						if bin+1 < ax.Bins {
							local.AddWeighted(int(si), int(sj), bin+1, weight*(1-frac), dist)
						}
					} else {
						local.Add(int(si), int(sj), bin, weight)
					}
				}
			}
			return local
		})
	}
	for _, local := range grp.Wait() {
		out.AddFrom(local)
	}

	for i := 0; i < n; i++ {
		s := c.SpeciesAt(i)
		w := c.At(i).W
		out.Add(int(s), int(s), 0, w*w)
	}
	return out
}

// CrossCorrelationFF is the form-factor-resolved cross-correlation
// producing a Distribution2D keyed by (species_of_a, bin). b is treated as
// species-uniform (e.g. the hydration layer, whose oxygen species is
// implicit and not separately tracked).
func CrossCorrelationFF(a, b *coords.CompactCoordinates, ax axis.Axis, opt Options) *distribution.Distribution2D {
	na, nb := a.Size(), b.Size()
	out := distribution.NewDistribution2D(int(formfactor.Count), ax.Bins, opt.Weighted)
	if na == 0 || nb == 0 {
		return out
	}
	pool := opt.pool()
	chunk := opt.chunkSize()

	var grp workerpool.Group[*distribution.Distribution2D]
	for lo := 0; lo < na; lo += chunk {
		hi := lo + chunk
		if hi > na {
			hi = na
		}
		lo, hi := lo, hi
		grp.Go(pool, func() *distribution.Distribution2D {
			local := distribution.NewDistribution2D(int(formfactor.Count), ax.Bins, opt.Weighted)
			for i := lo; i < hi; i++ {
				si := a.SpeciesAt(i)
				for j := 0; j < nb; j++ {
					dist, w := crossDist(a, b, i, j)
					bin, frac, ok := opt.lookup(ax, dist)
					if !ok {
						continue
					}
					if opt.Weighted {
						local.AddWeighted(int(si), bin, w*frac, dist)
						if bin+1 < ax.Bins {
							local.AddWeighted(int(si), bin+1, w*(1-frac), dist)
						}
					} else {
						local.Add(int(si), bin, w)
					}
				}
			}
			return local
		})
	}
	for _, local := range grp.Wait() {
		out.AddFrom(local)
	}
	return out
}
