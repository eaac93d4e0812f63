// Package coords implements CompactCoordinates: a cache-friendly flat
// array of (x,y,z,w[,species]) per scattering site, built once from a
// body/molecule and treated as immutable read-only input for the
// remainder of one histogram job.
package coords

import (
	"math"

	"github.com/katalvlaran/saxshist/formfactor"
)

// Site is a single (x,y,z,w) scattering centre, 32 bytes wide so four of
// them share two cache lines, letting a batch evaluator stream
// reference/target pairs without aliasing.
type Site struct {
	X, Y, Z, W float64
}

// SiteSource is the external collaborator contract a Body/Molecule
// satisfies so CompactCoordinates can be built without coords depending on
// the body package (avoids an import cycle and keeps this package usable
// directly from hydration/grid generators too).
type SiteSource interface {
	// NumSites returns the number of scattering sites.
	NumSites() int
	// Site returns the i-th site's position and weight.
	Site(i int) (x, y, z, w float64)
}

// SpeciesSiteSource additionally exposes a form-factor species per site.
type SpeciesSiteSource interface {
	SiteSource
	SpeciesAt(i int) formfactor.Species
}

// CompactCoordinates is a contiguous, read-only (for its lifetime) packing
// of scattering sites, optionally paired with a parallel species array.
type CompactCoordinates struct {
	sites   []Site
	species []formfactor.Species // nil when built without species resolution.
}

// FromSource builds plain (species-less) CompactCoordinates.
// Complexity: O(n).
func FromSource(src SiteSource) *CompactCoordinates {
	n := src.NumSites()
	sites := make([]Site, n)
	for i := 0; i < n; i++ {
		x, y, z, w := src.Site(i)
		sites[i] = Site{x, y, z, w}
	}
	return &CompactCoordinates{sites: sites}
}

// FromSpeciesSource builds species-resolved CompactCoordinates.
// Complexity: O(n).
func FromSpeciesSource(src SpeciesSiteSource) *CompactCoordinates {
	cc := FromSource(src)
	n := src.NumSites()
	species := make([]formfactor.Species, n)
	for i := 0; i < n; i++ {
		species[i] = src.SpeciesAt(i)
	}
	cc.species = species
	return cc
}

// Merge concatenates several CompactCoordinates into one. All inputs must
// agree on whether they carry species (mixing is a programmer error).
func Merge(parts ...*CompactCoordinates) *CompactCoordinates {
	total := 0
	hasSpecies := false
	if len(parts) > 0 {
		hasSpecies = parts[0].HasSpecies()
	}
	for _, p := range parts {
		total += p.Size()
		if p.HasSpecies() != hasSpecies {
			panic("coords: Merge: mixed species-resolved and plain inputs")
		}
	}
	out := &CompactCoordinates{sites: make([]Site, 0, total)}
	if hasSpecies {
		out.species = make([]formfactor.Species, 0, total)
	}
	for _, p := range parts {
		out.sites = append(out.sites, p.sites...)
		if hasSpecies {
			out.species = append(out.species, p.species...)
		}
	}
	return out
}

// Size returns the number of sites.
func (c *CompactCoordinates) Size() int { return len(c.sites) }

// HasSpecies reports whether species resolution is available.
func (c *CompactCoordinates) HasSpecies() bool { return c.species != nil }

// Data returns the read-only backing slice of sites; callers must not
// mutate it. Suitable for batch distance evaluation.
func (c *CompactCoordinates) Data() []Site { return c.sites }

// At returns the i-th site.
func (c *CompactCoordinates) At(i int) Site { return c.sites[i] }

// SpeciesAt returns the species of site i. Panics if HasSpecies is false.
func (c *CompactCoordinates) SpeciesAt(i int) formfactor.Species {
	if c.species == nil {
		panic("coords: SpeciesAt: coordinates were built without species resolution")
	}
	return c.species[i]
}

// Dist computes the Euclidean distance between sites i and j and their
// weight product wi*wj.
func (c *CompactCoordinates) Dist(i, j int) (dist, wprod float64) {
	a, b := c.sites[i], c.sites[j]
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz), a.W * b.W
}
