package rigidbody

import (
	"math/rand"

	wr "github.com/mroth/weightedrand/v2"

	"github.com/katalvlaran/saxshist/body"
)

// BodySelector decides which body, and optionally which constraint pivot,
// to perturb next. A negative constraint index means
// "perturb the body alone", per DefaultTransformStrategy's branching.
type BodySelector interface {
	Select(mol *body.Molecule, constraints []*body.Constraint) (bodyIndex, constraintIndex int)
}

// UniformBodySelector picks a uniformly random body index in
// [0, NumBodies()) and, with
// probability PivotProbability, a uniformly random constraint touching it.
type UniformBodySelector struct {
	PivotProbability float64
	rng              *rand.Rand
}

// NewUniformBodySelector builds a selector seeded from rng (nil uses a new
// source with the fixed seed 1).
func NewUniformBodySelector(pivotProbability float64, rng *rand.Rand) *UniformBodySelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &UniformBodySelector{PivotProbability: pivotProbability, rng: rng}
}

// Select implements BodySelector.
func (s *UniformBodySelector) Select(mol *body.Molecule, constraints []*body.Constraint) (int, int) {
	n := mol.NumBodies()
	if n == 0 {
		return -1, -1
	}
	bodyIndex := s.rng.Intn(n)
	if s.rng.Float64() >= s.PivotProbability {
		return bodyIndex, -1
	}
	touching := touchingConstraints(bodyIndex, constraints)
	if len(touching) == 0 {
		return bodyIndex, -1
	}
	return bodyIndex, touching[s.rng.Intn(len(touching))]
}

// WeightedBodySelector draws the body to perturb with probability
// proportional to a caller-supplied badness score (e.g. its current
// total constraint-violation magnitude), so iterations concentrate on the
// parts of the assembly furthest from satisfying their constraints,
// rather than the plain uniform default.
type WeightedBodySelector struct {
	Badness          func(bodyIndex int) float64
	PivotProbability float64
	rng              *rand.Rand
}

// NewWeightedBodySelector builds a selector. badness must return a
// non-negative score per body index; a body that always returns 0 is
// still selectable (Select raises every weight below 1 to 1).
func NewWeightedBodySelector(badness func(int) float64, pivotProbability float64, rng *rand.Rand) *WeightedBodySelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &WeightedBodySelector{Badness: badness, PivotProbability: pivotProbability, rng: rng}
}

// Select implements BodySelector.
func (s *WeightedBodySelector) Select(mol *body.Molecule, constraints []*body.Constraint) (int, int) {
	n := mol.NumBodies()
	if n == 0 {
		return -1, -1
	}
	choices := make([]wr.Choice[int, int], n)
	for i := 0; i < n; i++ {
		w := int(s.Badness(i) * 1000)
		if w < 1 {
			w = 1
		}
		choices[i] = wr.NewChoice(i, w)
	}
	chooser, err := wr.NewChooser(choices...)
	if err != nil {
		return s.rng.Intn(n), -1
	}
	bodyIndex := chooser.PickSource(s.rng)

	if s.rng.Float64() >= s.PivotProbability {
		return bodyIndex, -1
	}
	touching := touchingConstraints(bodyIndex, constraints)
	if len(touching) == 0 {
		return bodyIndex, -1
	}
	return bodyIndex, touching[s.rng.Intn(len(touching))]
}

func touchingConstraints(bodyIndex int, constraints []*body.Constraint) []int {
	var out []int
	for i, c := range constraints {
		if c.BodyI == bodyIndex || c.BodyJ == bodyIndex {
			out = append(out, i)
		}
	}
	return out
}
