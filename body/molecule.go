package body

import (
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/state"
)

// HydrationSite is a single water-layer scattering centre.
type HydrationSite struct {
	X, Y, Z float64
	W       float64 // scaled oxygen charge x occupancy.
}

// Site / SpeciesAt implement coords.SpeciesSiteSource over a hydration
// layer, reported uniformly as species O.
type HydrationLayer struct {
	sites []HydrationSite
}

// NewHydrationLayer wraps a slice of hydration sites.
func NewHydrationLayer(sites []HydrationSite) *HydrationLayer {
	return &HydrationLayer{sites: append([]HydrationSite(nil), sites...)}
}

func (h *HydrationLayer) NumSites() int { return len(h.sites) }
func (h *HydrationLayer) Site(i int) (x, y, z, w float64) {
	s := h.sites[i]
	return s.X, s.Y, s.Z, s.W
}
func (h *HydrationLayer) SpeciesAt(int) formfactor.Species { return formfactor.O }

// Replace swaps the hydration layer's contents in place.
func (h *HydrationLayer) Replace(sites []HydrationSite) {
	h.sites = append([]HydrationSite(nil), sites...)
}

// Molecule owns an ordered sequence of Bodies plus the hydration layer and
// a change-notification StateManager. The Molecule owns its Bodies'
// lifetime; the StateManager's Signaller handles are weak observers that
// never extend that lifetime.
type Molecule struct {
	bodies    []*Body
	hydration *HydrationLayer
	stateMgr  *state.Manager
}

// NewMolecule constructs an empty Molecule. Bodies are added with Add.
func NewMolecule() *Molecule {
	return &Molecule{stateMgr: state.NewManager(0), hydration: NewHydrationLayer(nil)}
}

// Add appends body to the Molecule, assigns it the next stable id, and
// binds its Signaller to the Molecule's StateManager. The returned id is
// body.ID() for convenience.
func (m *Molecule) Add(b *Body) int {
	id := len(m.bodies)
	m.bodies = append(m.bodies, b)
	m.stateMgr.Grow(len(m.bodies))
	b.attach(id, m.stateMgr.Signaller(id))
	return id
}

// NumBodies returns the number of bodies.
func (m *Molecule) NumBodies() int { return len(m.bodies) }

// Body returns the body at index i (its stable id).
func (m *Molecule) Body(i int) *Body { return m.bodies[i] }

// Bodies returns the live body slice; callers must not mutate the slice
// itself (mutating a Body's geometry through its own methods is fine and
// is how callers signal changes).
func (m *Molecule) Bodies() []*Body { return m.bodies }

// Hydration returns the Molecule's hydration layer.
func (m *Molecule) Hydration() *HydrationLayer { return m.hydration }

// ReplaceHydration swaps the hydration layer contents and marks it
// modified in the StateManager.
func (m *Molecule) ReplaceHydration(sites []HydrationSite) {
	m.hydration.Replace(sites)
	m.stateMgr.MarkHydrationModified()
}

// StateManager exposes the Molecule's change-notification substrate to the
// histogram manager.
func (m *Molecule) StateManager() *state.Manager { return m.stateMgr }

// Detach removes body id from the Molecule, reverting it to quiescent.
// Bodies are only ever appended (ids are stable and dense), so Detach
// nils the slot rather than shrinking the slice; a detached slot still
// occupies its StateManager bit, which simply never sets again.
func (m *Molecule) Detach(id int) {
	if id < 0 || id >= len(m.bodies) || m.bodies[id] == nil {
		return
	}
	m.bodies[id].detach()
	m.bodies[id] = nil
}

// TotalAtoms returns the sum of atom counts over all live bodies.
func (m *Molecule) TotalAtoms() int {
	n := 0
	for _, b := range m.bodies {
		if b != nil {
			n += b.NumAtoms()
		}
	}
	return n
}
