// Package body implements the Body and Molecule types: an
// ordered sequence of atom sites (+ optional hydration sites) with a
// stable identifier and a change-notification handle, and the Molecule
// that owns an ordered sequence of Bodies plus the hydration layer.
package body

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/state"
)

// Sentinel errors. Checked with errors.Is.
var (
	ErrEmptyBody       = errors.New("body: body has no sites")
	ErrBodyNotFound    = errors.New("body: body id not found")
	ErrIndexOutOfRange = errors.New("body: atom index out of range")
)

// AtomSite is one scattering centre: position, weight (effective charge x
// occupancy), and form-factor species.
type AtomSite struct {
	X, Y, Z float64
	W       float64
	Species formfactor.Species
}

// SymmetryOp describes one virtual-copy transform: a rotation (as an
// Euler-like radian vector, applied XYZ-order), a translation, and a
// repetition count (the operation is applied Repeats times, compounding).
type SymmetryOp struct {
	RotationRad [3]float64
	Translation [3]float64
	Repeats     int
}

// Body is an ordered sequence of atom sites plus optional symmetry
// operations, a stable numeric identifier, and a change-notification
// handle. Once inserted into a Molecule its ID never changes.
type Body struct {
	id        int
	atoms     []AtomSite
	symmetry  []SymmetryOp
	signaller state.Signaller
}

// NewBody constructs a quiescent Body (Signaller = state.Unbound) from the
// given atom sites. Returns ErrEmptyBody if atoms is empty: an empty body
// has no coordinates to contribute and is almost certainly a caller bug.
func NewBody(atoms []AtomSite) (*Body, error) {
	if len(atoms) == 0 {
		return nil, ErrEmptyBody
	}
	cp := append([]AtomSite(nil), atoms...)
	return &Body{id: -1, atoms: cp, signaller: state.Unbound}, nil
}

// ID returns the body's stable identifier, or -1 if not yet attached to a
// Molecule.
func (b *Body) ID() int { return b.id }

// NumAtoms returns the number of atom sites.
func (b *Body) NumAtoms() int { return len(b.atoms) }

// Atom returns a copy of the i-th atom site.
func (b *Body) Atom(i int) AtomSite { return b.atoms[i] }

// Symmetry returns the body's symmetry operations, if any.
func (b *Body) Symmetry() []SymmetryOp { return b.symmetry }

// SetSymmetry replaces the body's symmetry operation list.
func (b *Body) SetSymmetry(ops []SymmetryOp) { b.symmetry = append([]SymmetryOp(nil), ops...) }

// attach binds the body to id and signaller; called only by Molecule.Add.
func (b *Body) attach(id int, s state.Signaller) {
	b.id = id
	b.signaller = s
}

// detach reverts the body to quiescent (Signaller = Unbound); called when
// a body is removed from a Molecule. The identifier is retained as a
// historical marker but is no longer meaningful for indexing.
func (b *Body) detach() { b.signaller = state.Unbound }

// Translate shifts every atom site by (dx,dy,dz) and signals an external
// modification.
func (b *Body) Translate(dx, dy, dz float64) {
	for i := range b.atoms {
		b.atoms[i].X += dx
		b.atoms[i].Y += dy
		b.atoms[i].Z += dz
	}
	b.signaller.NotifyExternal()
}

// Rotate applies rotation matrix r (row-major 3x3) about pivot and signals
// an external modification.
func (b *Body) Rotate(r [3][3]float64, pivot [3]float64) {
	for i := range b.atoms {
		a := b.atoms[i]
		x, y, z := a.X-pivot[0], a.Y-pivot[1], a.Z-pivot[2]
		nx := r[0][0]*x + r[0][1]*y + r[0][2]*z
		ny := r[1][0]*x + r[1][1]*y + r[1][2]*z
		nz := r[2][0]*x + r[2][1]*y + r[2][2]*z
		b.atoms[i].X = nx + pivot[0]
		b.atoms[i].Y = ny + pivot[1]
		b.atoms[i].Z = nz + pivot[2]
	}
	b.signaller.NotifyExternal()
}

// ReplaceAtoms swaps the body's atom list in place (e.g. after a
// higher-level structural edit) and signals an external modification.
func (b *Body) ReplaceAtoms(atoms []AtomSite) {
	if len(atoms) == 0 {
		panic("body: ReplaceAtoms: empty atom list")
	}
	b.atoms = append([]AtomSite(nil), atoms...)
	b.signaller.NotifyExternal()
}

// Snapshot captures the current atom positions for later restoration
// (RigidBody's reject-path rollback).
func (b *Body) Snapshot() []AtomSite { return append([]AtomSite(nil), b.atoms...) }

// Restore replaces the atom positions from a prior Snapshot without
// signalling (callers performing a rollback across several bodies call
// Notify themselves once, after restoring every affected body, to avoid
// redundant histogram recomputation per body).
func (b *Body) Restore(snap []AtomSite) {
	if len(snap) != len(b.atoms) {
		panic(fmt.Sprintf("body: Restore: snapshot size %d != body size %d", len(snap), len(b.atoms)))
	}
	copy(b.atoms, snap)
}

// Notify signals an external modification without changing any coordinate,
// for callers (e.g. a rigid-body rollback) that mutate several bodies via
// Restore and then announce the change once.
func (b *Body) Notify() { b.signaller.NotifyExternal() }

// NumSites / Site / SpeciesAt implement coords.SpeciesSiteSource so a
// CompactCoordinates can be built directly from one Body.
func (b *Body) NumSites() int { return len(b.atoms) }

func (b *Body) Site(i int) (x, y, z, w float64) {
	a := b.atoms[i]
	return a.X, a.Y, a.Z, a.W
}

func (b *Body) SpeciesAt(i int) formfactor.Species { return b.atoms[i].Species }
