// Package debye implements the Debye intensity transform:
//
//	I(q_m) = sum_k P(d_k) * sinc(q_m * d_k), sinc(0) = 1
//
// via a precomputed table T[m,k] = sinc(q_m*d_k) so evaluation is an inner
// product per q. Table sharing across histograms on the same DistanceAxis
// allows sharing: the default uniform axis shares one table; a
// weighted-bin axis gets its own.
package debye

import (
	"math"
	"sync"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/distribution"
)

// sincSeriesCutoff is the |x| threshold below which sinc(x) is evaluated
// via its Taylor series rather than sin(x)/x, to avoid cancellation near
// zero.
const sincSeriesCutoff = 1e-4

// Sinc returns sin(x)/x with Sinc(0) = 1, using a stable small-x series.
func Sinc(x float64) float64 {
	if math.Abs(x) < sincSeriesCutoff {
		x2 := x * x
		return 1 - x2/6 + x2*x2/120
	}
	return math.Sin(x) / x
}

// Table is a precomputed sinc product table T[m][k] = sinc(q_m * d_k) for
// a fixed QAxis and DistanceAxis pairing.
type Table struct {
	q    axis.QAxis
	d    axis.Axis
	vals [][]float64 // vals[m][k]
}

// tableCache memoizes tables keyed by (QAxis, DistanceAxis) so histograms
// sharing the default uniform axis share one table.
var (
	cacheMu sync.Mutex
	cache   = map[tableKey]*Table{}
)

type tableKey struct {
	q axis.QAxis
	d axis.Axis
}

// BuildTable constructs (or returns a cached) sinc table for q x d.
func BuildTable(q axis.QAxis, d axis.Axis) *Table {
	key := tableKey{q: q, d: d}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if t, ok := cache[key]; ok {
		return t
	}
	qs := q.Values()
	t := &Table{q: q, d: d, vals: make([][]float64, len(qs))}
	for m, qm := range qs {
		row := make([]float64, d.Bins)
		for k := 0; k < d.Bins; k++ {
			row[k] = Sinc(qm * d.Center(k))
		}
		t.vals[m] = row
	}
	cache[key] = t
	return t
}

// TransformOnAxis computes I(q_m) = sum_k p.At(k) * sinc(q_m*d_k) for every
// q sample, d_k drawn from d's bin centres. Distribution1D itself doesn't
// carry its axis, so every caller must supply the matching one explicitly
// (composite.Histogram.Axis()) rather than let this package guess a bin
// width.
func TransformOnAxis(p *distribution.Distribution1D, q axis.QAxis, d axis.Axis) []float64 {
	t := BuildTable(q, d)
	out := make([]float64, len(t.vals))
	n := p.Len()
	for m, row := range t.vals {
		sum := 0.0
		for k := 0; k < n && k < len(row); k++ {
			v := p.At(k)
			if v == 0 {
				continue
			}
			sum += v * row[k]
		}
		out[m] = sum
	}
	return out
}
