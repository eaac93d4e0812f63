package rigidbody

import "github.com/katalvlaran/saxshist/body"

// ConstraintManager owns the distance constraints of one assembly and the
// lookups the selector/transform strategies need against them.
type ConstraintManager struct {
	constraints []*body.Constraint
}

// NewConstraintManager wraps constraints (may be empty).
func NewConstraintManager(constraints []*body.Constraint) *ConstraintManager {
	return &ConstraintManager{constraints: append([]*body.Constraint(nil), constraints...)}
}

// All returns the live constraint slice.
func (m *ConstraintManager) All() []*body.Constraint { return m.constraints }

// Add appends a new constraint, which then persists across iterations.
func (m *ConstraintManager) Add(c *body.Constraint) { m.constraints = append(m.constraints, c) }

// TotalPenalty sums every constraint's current penalty against mol.
func (m *ConstraintManager) TotalPenalty(mol *body.Molecule) float64 {
	sum := 0.0
	for _, c := range m.constraints {
		sum += c.Penalty(mol)
	}
	return sum
}

// Badness returns, per body index, the sum of penalties of constraints
// touching that body — the score WeightedBodySelector is meant to consume
// so the optimiser spends more iterations near the worst violations.
func (m *ConstraintManager) Badness(mol *body.Molecule) func(bodyIndex int) float64 {
	scores := make(map[int]float64, len(m.constraints))
	for _, c := range m.constraints {
		p := c.Penalty(mol)
		scores[c.BodyI] += p
		scores[c.BodyJ] += p
	}
	return func(bodyIndex int) float64 { return scores[bodyIndex] }
}
