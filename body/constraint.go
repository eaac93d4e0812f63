package body

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxConstraintDistance is the default physical cap on a distance
// constraint's equilibrium distance at construction.
const DefaultMaxConstraintDistance = 4.0

// Sentinel errors for constraint construction.
var (
	ErrSameBody          = errors.New("body: constraint endpoints must be in different bodies")
	ErrConstraintTooLong = errors.New("body: constraint equilibrium distance exceeds the configured cap")
)

// Constraint anchors atom AtomK of BodyI to atom AtomL of BodyJ at
// EquilibriumDistance. Constructed only via NewConstraint, which enforces
// the invariants: i != j, and the equilibrium distance does not
// exceed the configured physical cap.
type Constraint struct {
	BodyI, AtomK int
	BodyJ, AtomL int
	Equilibrium  float64
}

// NewConstraint validates and builds a Constraint from the current
// positions of atom k in bi and atom l in bj, using their current
// separation as the equilibrium distance. maxDistance <= 0 uses
// DefaultMaxConstraintDistance.
func NewConstraint(bi *Body, k int, bj *Body, l int, maxDistance float64) (*Constraint, error) {
	if bi.ID() == bj.ID() {
		return nil, ErrSameBody
	}
	if maxDistance <= 0 {
		maxDistance = DefaultMaxConstraintDistance
	}
	ai, aj := bi.Atom(k), bj.Atom(l)
	d := distance(ai, aj)
	if d > maxDistance {
		return nil, fmt.Errorf("body: NewConstraint: %.4f exceeds cap %.4f: %w", d, maxDistance, ErrConstraintTooLong)
	}
	return &Constraint{BodyI: bi.ID(), AtomK: k, BodyJ: bj.ID(), AtomL: l, Equilibrium: d}, nil
}

func distance(a, b AtomSite) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// CurrentDistance returns the live separation between the constraint's two
// anchor atoms, looking them up in molecule.
func (c *Constraint) CurrentDistance(m *Molecule) float64 {
	bi, bj := m.Body(c.BodyI), m.Body(c.BodyJ)
	return distance(bi.Atom(c.AtomK), bj.Atom(c.AtomL))
}

// Penalty evaluates the (Δd)^4 * 10 constraint penalty against the
// molecule's current geometry, where Δd = Equilibrium - current.
func (c *Constraint) Penalty(m *Molecule) float64 {
	delta := c.Equilibrium - c.CurrentDistance(m)
	d2 := delta * delta
	return 10 * d2 * d2
}
