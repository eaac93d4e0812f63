// Package axis provides the uniform distance and momentum-transfer axes
// shared by the histogram and Debye-transform packages.
//
// Every exported method documents its time/space cost because these axes
// sit in hot per-pair loops.
package axis

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors. Checked with errors.Is; never stringified for control flow.
var (
	ErrInvalidBinWidth = errors.New("axis: bin width must be positive")
	ErrInvalidBinCount = errors.New("axis: bin count must be positive")
	ErrInvalidRange    = errors.New("axis: max must be greater than min")
)

// Axis is a uniform distance axis of Bins bins of width Width starting at
// Min. Bin i is centred at Min+i*Width; Max() = Min+Bins*Width is the
// exclusive upper bound on accepted distances.
type Axis struct {
	Min   float64
	Width float64
	Bins  int
}

// New constructs a uniform Axis covering [0, max) at the given bin width.
// Bins is ceil(max/width), with a minimum of 1.
// Complexity: O(1).
func New(width, max float64) (Axis, error) {
	if width <= 0 {
		return Axis{}, ErrInvalidBinWidth
	}
	if max <= 0 {
		return Axis{}, ErrInvalidRange
	}
	bins := int(math.Ceil(max / width))
	if bins < 1 {
		bins = 1
	}
	return Axis{Min: 0, Width: width, Bins: bins}, nil
}

// NewExplicit constructs an Axis from an explicit origin, bin width and
// bin count.
func NewExplicit(min, width float64, bins int) (Axis, error) {
	if width <= 0 {
		return Axis{}, ErrInvalidBinWidth
	}
	if bins <= 0 {
		return Axis{}, ErrInvalidBinCount
	}
	return Axis{Min: min, Width: width, Bins: bins}, nil
}

// Max returns the exclusive upper bound of the axis.
// Complexity: O(1).
func (a Axis) Max() float64 { return a.Min + float64(a.Bins)*a.Width }

// BinRounded returns the nearest-bin index for distance d
// rounded variant: floor(d/width + 0.5). ok is false when d falls outside
// [Min, Max) — that edge distance is to be discarded by the caller, not an
// error condition.
// Complexity: O(1).
func (a Axis) BinRounded(d float64) (int, bool) {
	if d < a.Min || d >= a.Max() {
		return 0, false
	}
	idx := int((d-a.Min)/a.Width + 0.5)
	if idx >= a.Bins {
		return 0, false
	}
	return idx, true
}

// BinWeighted returns the lower bin index and the fractional weight (in
// [0,1]) that belongs to the lower bin; (1-frac) belongs to bin+1, used by
// the weighted-bin distance calculator variant to split a pair's
// contribution across its two nearest bin centres. ok is false when d is
// out of range.
// Complexity: O(1).
func (a Axis) BinWeighted(d float64) (bin int, frac float64, ok bool) {
	if d < a.Min || d >= a.Max() {
		return 0, 0, false
	}
	pos := (d - a.Min) / a.Width
	bin = int(pos)
	if bin >= a.Bins {
		return 0, 0, false
	}
	frac = 1 - (pos - float64(bin))
	return bin, frac, true
}

// Center returns the centre distance represented by bin i.
// Complexity: O(1).
func (a Axis) Center(i int) float64 { return a.Min + float64(i)*a.Width }

// Resize returns a new Axis truncated/extended to n bins, keeping Min and
// Width. Used by the tail-shortening invariant (floor of 10 bins).
func (a Axis) Resize(n int) (Axis, error) {
	if n <= 0 {
		return Axis{}, ErrInvalidBinCount
	}
	return Axis{Min: a.Min, Width: a.Width, Bins: n}, nil
}

func (a Axis) String() string {
	return fmt.Sprintf("axis[%g,%g) width=%g bins=%d", a.Min, a.Max(), a.Width, a.Bins)
}

// QAxis is a uniform momentum-transfer axis trimmed to [QMin, QMax].
type QAxis struct {
	QMin, QMax float64
	Bins       int
}

// NewQAxis validates and constructs a QAxis.
func NewQAxis(qmin, qmax float64, bins int) (QAxis, error) {
	if bins <= 0 {
		return QAxis{}, ErrInvalidBinCount
	}
	if qmax <= qmin {
		return QAxis{}, ErrInvalidRange
	}
	return QAxis{QMin: qmin, QMax: qmax, Bins: bins}, nil
}

// Values returns the Bins evenly spaced q samples in [QMin, QMax].
// Complexity: O(Bins).
func (q QAxis) Values() []float64 {
	out := make([]float64, q.Bins)
	if q.Bins == 1 {
		out[0] = q.QMin
		return out
	}
	step := (q.QMax - q.QMin) / float64(q.Bins-1)
	for i := range out {
		out[i] = q.QMin + float64(i)*step
	}
	return out
}
