package coords

import "math"

// Batch4 holds the distances and weight products for a reference site
// against four target sites, as the evaluate4 returns.
type Batch4 struct {
	Dist  [4]float64
	WProd [4]float64
}

// Batch8 is the 8-wide counterpart.
type Batch8 struct {
	Dist  [8]float64
	WProd [8]float64
}

// Evaluate4 computes distances/weight-products from ref against four
// consecutive target sites starting at index j. The caller is expected to
// have already checked j+3 < c.Size(); this keeps the hot loop free of
// per-call bounds-negotiation.
func (c *CompactCoordinates) Evaluate4(ref Site, j int) Batch4 {
	var out Batch4
	for k := 0; k < 4; k++ {
		t := c.sites[j+k]
		dx, dy, dz := ref.X-t.X, ref.Y-t.Y, ref.Z-t.Z
		out.Dist[k] = math.Sqrt(dx*dx + dy*dy + dz*dz)
		out.WProd[k] = ref.W * t.W
	}
	return out
}

// Evaluate8 is the 8-wide counterpart of Evaluate4.
func (c *CompactCoordinates) Evaluate8(ref Site, j int) Batch8 {
	var out Batch8
	for k := 0; k < 8; k++ {
		t := c.sites[j+k]
		dx, dy, dz := ref.X-t.X, ref.Y-t.Y, ref.Z-t.Z
		out.Dist[k] = math.Sqrt(dx*dx + dy*dy + dz*dz)
		out.WProd[k] = ref.W * t.W
	}
	return out
}
