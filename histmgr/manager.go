// Package histmgr implements the HistogramManager strategies: one
// calculate()/calculate_all() interface with interchangeable
// implementations differing in whether partial recomputation is enabled,
// whether form factors are tracked per bin, and whether a body's symmetry
// operations are expanded into virtual copies before binning.
//
// The concrete choice is selected by a factory (New) keyed on the
// hist.manager_choice configuration option.
package histmgr

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/distribution"
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/geom"
)

// Manager is the common surface of every histogram manager variant.
type Manager interface {
	// Calculate returns the current total pair-distance distribution. The
	// Partial variants recompute only what has changed since the previous
	// call; Simple and Debug recompute everything on every call.
	Calculate() *distribution.Distribution1D
	// CalculateAll returns the full {aa, aw, ww, total} decomposition.
	CalculateAll() composite.Histogram
}

// ErrUnknownManagerChoice is returned by New for a manager_choice string it
// does not recognize.
var ErrUnknownManagerChoice = errors.New("histmgr: unknown manager_choice")

// Choice enumerates the hist.manager_choice strings.
type Choice string

const (
	ChoiceSimple             Choice = "simple"
	ChoicePartial            Choice = "partial"
	ChoicePartialFormFactors Choice = "partial-with-form-factors"
	ChoicePartialSymmetry    Choice = "partial-with-symmetry"
	ChoiceFoxsStyle          Choice = "foxs-style"
	ChoiceCrysolStyle        Choice = "crysol-style"
)

// New builds the Manager named by choice. foxs-style and crysol-style are
// presets over the same three axes (partial recomputation, form-factor
// resolution, symmetry expansion) rather than distinct algorithms: neither
// this module nor the reference implementation documents a fourth binning
// strategy, so foxs-style is modeled as symmetry-aware + form-factor
// resolved with nearest-bin binning, and crysol-style as the same pairing
// with weighted-bin-centre binning (opt.Weighted forced true) — CRYSOL's
// published method note describes a smoothed bin assignment where FoXS
// documents a direct histogram. This is a deliberate modeling choice, not
// a literal transcription of either tool.
func New(choice Choice, mol *body.Molecule, ax axis.Axis, opt distcalc.Options) (Manager, error) {
	switch choice {
	case ChoiceSimple:
		return NewSimple(mol, ax, opt), nil
	case ChoicePartial:
		return NewPartial(mol, ax, opt, false), nil
	case ChoicePartialFormFactors:
		return NewPartialFormFactor(mol, ax, opt, false), nil
	case ChoicePartialSymmetry:
		return NewPartial(mol, ax, opt, true), nil
	case ChoiceFoxsStyle:
		return NewPartialFormFactor(mol, ax, opt, true), nil
	case ChoiceCrysolStyle:
		opt.Weighted = true
		return NewPartialFormFactor(mol, ax, opt, true), nil
	default:
		return nil, fmt.Errorf("histmgr: New(%q): %w", choice, ErrUnknownManagerChoice)
	}
}

// bodyCoordinates builds the CompactCoordinates contributed by one body,
// optionally expanding its symmetry operations.
func bodyCoordinates(b *body.Body, withSymmetry bool) *coords.CompactCoordinates {
	base := coords.FromSpeciesSource(b)
	if !withSymmetry || len(b.Symmetry()) == 0 {
		return base
	}
	parts := []*coords.CompactCoordinates{base}
	for _, op := range b.Symmetry() {
		parts = append(parts, expandSymmetryOp(b, op)...)
	}
	return coords.Merge(parts...)
}

// expandSymmetryOp generates op.Repeats virtual copies of b's atoms,
// compounding the rotation and translation Repeats times.
func expandSymmetryOp(b *body.Body, op body.SymmetryOp) []*coords.CompactCoordinates {
	n := b.NumAtoms()
	out := make([]*coords.CompactCoordinates, 0, op.Repeats)
	r := geom.RotationMatrix(op.RotationRad)
	cur := make([]body.AtomSite, n)
	for i := 0; i < n; i++ {
		cur[i] = b.Atom(i)
	}
	for rep := 0; rep < op.Repeats; rep++ {
		next := make([]body.AtomSite, n)
		for i, a := range cur {
			x, y, z := a.X, a.Y, a.Z
			nx := r[0][0]*x + r[0][1]*y + r[0][2]*z + op.Translation[0]
			ny := r[1][0]*x + r[1][1]*y + r[1][2]*z + op.Translation[1]
			nz := r[2][0]*x + r[2][1]*y + r[2][2]*z + op.Translation[2]
			next[i] = body.AtomSite{X: nx, Y: ny, Z: nz, W: a.W, Species: a.Species}
		}
		out = append(out, coords.FromSpeciesSource(atomSiteSource(next)))
		cur = next
	}
	return out
}

// atomSiteSource adapts a plain []body.AtomSite slice to
// coords.SpeciesSiteSource without requiring a Body.
type atomSiteSource []body.AtomSite

func (a atomSiteSource) NumSites() int { return len(a) }
func (a atomSiteSource) Site(i int) (x, y, z, w float64) {
	s := a[i]
	return s.X, s.Y, s.Z, s.W
}
func (a atomSiteSource) SpeciesAt(i int) formfactor.Species { return a[i].Species }
