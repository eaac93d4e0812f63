package rigidbody_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/debye"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/histmgr"
	"github.com/katalvlaran/saxshist/rigidbody"
)

// twoBodyMolecule builds two three-atom bodies separated along X, far
// enough apart that a bounded random perturbation can both tighten and
// loosen their separation.
func twoBodyMolecule(t *testing.T, sep float64) (*body.Molecule, *body.Body, *body.Body) {
	t.Helper()
	mol := body.NewMolecule()
	bi, err := body.NewBody([]body.AtomSite{
		{X: 0, Y: 0, Z: 0, W: 1, Species: formfactor.C},
		{X: 1, Y: 0, Z: 0, W: 1, Species: formfactor.C},
		{X: 0, Y: 1, Z: 0, W: 1, Species: formfactor.C},
	})
	require.NoError(t, err)
	bj, err := body.NewBody([]body.AtomSite{
		{X: sep, Y: 0, Z: 0, W: 1, Species: formfactor.C},
		{X: sep + 1, Y: 0, Z: 0, W: 1, Species: formfactor.C},
		{X: sep, Y: 1, Z: 0, W: 1, Species: formfactor.C},
	})
	require.NoError(t, err)
	mol.Add(bi)
	mol.Add(bj)
	return mol, bi, bj
}

// datasetFromMolecule fits a forward-model dataset off the molecule's own
// current geometry, so chi-square starts near zero and any perturbation
// away from this geometry can only raise it (absent noise).
func datasetFromMolecule(t *testing.T, mol *body.Molecule, distAxis axis.Axis, manChoice histmgr.Choice, opt distcalc.Options) *dataset.Dataset {
	t.Helper()
	manager, err := histmgr.New(manChoice, mol, distAxis, opt)
	require.NoError(t, err)
	hist := manager.CalculateAll()

	q, err := axis.NewQAxis(0.01, 0.3, 16)
	require.NoError(t, err)
	curve := debye.TransformOnAxis(hist.Total(), q, hist.Axis())

	var sb strings.Builder
	sb.WriteString("# q I sigma\n")
	for i, qv := range q.Values() {
		iv := curve[i]
		sigma := 0.02*iv + 1e-6
		fmt.Fprintf(&sb, "%.10f %.10f %.10f\n", qv, iv, sigma)
	}
	ds, err := dataset.Load(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return ds
}

func TestRigidBodyDescentNeverWorsensBestChiSquare(t *testing.T) {
	mol, _, bj := twoBodyMolecule(t, 3)
	distAxis, err := axis.New(0.5, 10)
	require.NoError(t, err)
	opt := distcalc.Options{}

	ds := datasetFromMolecule(t, mol, distAxis, histmgr.ChoiceSimple, opt)

	// Perturb away from the geometry the dataset was generated from, so
	// the starting chi-square is not already optimal.
	bj.Translate(0.7, -0.3, 0.2)

	rng := rand.New(rand.NewSource(42))
	rb, err := rigidbody.New(mol, nil, histmgr.ChoiceSimple, distAxis, opt, ds,
		rigidbody.WithBodySelector(rigidbody.NewUniformBodySelector(0, rng)),
		rigidbody.WithParameterGenerator(rigidbody.NewUniformParameterGenerator(0.05, 0.1, rng)),
	)
	require.NoError(t, err)

	first, err := rb.Step()
	require.NoError(t, err)
	initialBest := first.BestChi2

	results, err := rb.Run(40)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	finalBest := rb.BestChiSquare()
	require.LessOrEqual(t, finalBest, initialBest)

	for i := 1; i < len(results); i++ {
		require.LessOrEqual(t, results[i].BestChi2, results[i-1].BestChi2,
			"best chi-square must be monotonically non-increasing across accept/reject steps")
	}
}

func TestRigidBodyStepRejectsWorseMoveAndRestoresGeometry(t *testing.T) {
	mol, _, bj := twoBodyMolecule(t, 3)
	distAxis, err := axis.New(0.5, 10)
	require.NoError(t, err)
	opt := distcalc.Options{}
	ds := datasetFromMolecule(t, mol, distAxis, histmgr.ChoiceSimple, opt)

	before := bj.Snapshot()

	rng := rand.New(rand.NewSource(7))
	rb, err := rigidbody.New(mol, nil, histmgr.ChoiceSimple, distAxis, opt, ds,
		rigidbody.WithBodySelector(rigidbody.NewUniformBodySelector(0, rng)),
		rigidbody.WithParameterGenerator(rigidbody.NewUniformParameterGenerator(1.5, 3, rng)),
	)
	require.NoError(t, err)

	res, err := rb.Step()
	require.NoError(t, err)
	if !res.Accepted {
		after := bj.Snapshot()
		require.Equal(t, before, after)
	}
}

func TestConstraintManagerBadnessFavoursViolatedBody(t *testing.T) {
	mol, bi, bj := twoBodyMolecule(t, 2)
	c, err := body.NewConstraint(bi, 0, bj, 0, 0)
	require.NoError(t, err)
	cm := rigidbody.NewConstraintManager([]*body.Constraint{c})

	bj.Translate(1, 0, 0)
	badness := cm.Badness(mol)
	require.Greater(t, badness(bi.ID()), 0.0)
	require.Equal(t, badness(bi.ID()), badness(bj.ID()))
}

func TestTrajectoryRecordDetectsRepeatedFingerprint(t *testing.T) {
	mol, _, _ := twoBodyMolecule(t, 3)
	w := rigidbody.NewTrajectoryWriter()
	fp := rigidbody.Fingerprint(mol)

	_, seen := w.Record(1, 0.5, fp)
	require.False(t, seen)

	priorIteration, seen := w.Record(2, 0.4, fp)
	require.True(t, seen)
	require.Equal(t, 1, priorIteration)
	require.Len(t, w.Frames(), 1)
}
