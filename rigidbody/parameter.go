package rigidbody

import "math/rand"

// Parameter is one proposed move: a rotation (radians, XYZ-order Euler
// vector) plus a translation vector.
type Parameter struct {
	RotationRad [3]float64
	Translation [3]float64
}

// ParameterGenerator decides how large a step to propose.
type ParameterGenerator interface {
	Generate() Parameter
}

// UniformParameterGenerator draws each rotation/translation component
// independently and uniformly from [-max, max], the bounded-transform
// default the "rigid-body descent" scenario assumes.
type UniformParameterGenerator struct {
	MaxRotationRad float64
	MaxTranslation float64
	rng            *rand.Rand
}

// NewUniformParameterGenerator builds a generator seeded from rng. A nil
// rng uses a new source with the fixed seed 1.
func NewUniformParameterGenerator(maxRotationRad, maxTranslation float64, rng *rand.Rand) *UniformParameterGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &UniformParameterGenerator{MaxRotationRad: maxRotationRad, MaxTranslation: maxTranslation, rng: rng}
}

// Generate implements ParameterGenerator.
func (g *UniformParameterGenerator) Generate() Parameter {
	u := func(max float64) float64 { return (g.rng.Float64()*2 - 1) * max }
	return Parameter{
		RotationRad: [3]float64{u(g.MaxRotationRad), u(g.MaxRotationRad), u(g.MaxRotationRad)},
		Translation: [3]float64{u(g.MaxTranslation), u(g.MaxTranslation), u(g.MaxTranslation)},
	}
}
