package rigidbody

import (
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/geom"
	"github.com/katalvlaran/saxshist/rigidbody/constraintgraph"
)

// TransformStrategy applies a Parameter to the assembly: either to one
// body alone, or to an entire rigidly-connected group pivoting about a
// constraint.
type TransformStrategy interface {
	// Apply mutates mol in place and returns the indices of every body it
	// touched, so the caller can snapshot/restore exactly those bodies.
	Apply(mol *body.Molecule, constraints []*body.Constraint, bodyIndex, constraintIndex int, p Parameter) ([]int, error)
}

// DefaultTransformStrategy is the sole production TransformStrategy:
// rotate-then-translate one body about its own centroid, or — when a
// constraint pivot is given — the whole rigidly-connected group about
// that constraint's anchor point.
type DefaultTransformStrategy struct{}

// Apply implements TransformStrategy.
func (DefaultTransformStrategy) Apply(mol *body.Molecule, constraints []*body.Constraint, bodyIndex, constraintIndex int, p Parameter) ([]int, error) {
	if constraintIndex < 0 {
		b := mol.Body(bodyIndex)
		if b == nil {
			return nil, nil
		}
		pivot := centroid(b)
		b.Rotate(geom.RotationMatrix(p.RotationRad), pivot)
		b.Translate(p.Translation[0], p.Translation[1], p.Translation[2])
		return []int{bodyIndex}, nil
	}

	c := constraints[constraintIndex]
	cg := constraintgraph.Build(mol.NumBodies(), constraints)
	group, err := constraintgraph.Group(cg, bodyIndex)
	if err != nil {
		return nil, err
	}
	pivotBody := mol.Body(c.BodyI)
	pivot := [3]float64{}
	if pivotBody != nil {
		a := pivotBody.Atom(c.AtomK)
		pivot = [3]float64{a.X, a.Y, a.Z}
	}
	r := geom.RotationMatrix(p.RotationRad)
	for _, idx := range group {
		b := mol.Body(idx)
		if b == nil {
			continue
		}
		b.Rotate(r, pivot)
		b.Translate(p.Translation[0], p.Translation[1], p.Translation[2])
	}
	return group, nil
}

func centroid(b *body.Body) [3]float64 {
	n := b.NumAtoms()
	if n == 0 {
		return [3]float64{}
	}
	var sx, sy, sz float64
	for i := 0; i < n; i++ {
		a := b.Atom(i)
		sx, sy, sz = sx+a.X, sy+a.Y, sz+a.Z
	}
	f := float64(n)
	return [3]float64{sx / f, sy / f, sz / f}
}
