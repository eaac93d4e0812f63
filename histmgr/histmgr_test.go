package histmgr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/debye"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/formfactor"
	"github.com/katalvlaran/saxshist/histmgr"
)

func mustAxis(t *testing.T, width, max float64) axis.Axis {
	t.Helper()
	ax, err := axis.New(width, max)
	require.NoError(t, err)
	return ax
}

func carbon(x, y, z, w float64) body.AtomSite {
	return body.AtomSite{X: x, Y: y, Z: z, W: w, Species: formfactor.C}
}

// TestTwoCarbonsSelfCorrelation reproduces the two-atom reference scenario:
// both carbons weight 6, separated by 3 A on a 1 A grid. The diagonal bin
// picks up the sum of squared weights, the separation bin picks up twice
// the weight product, matching the calc_pp self-correlation convention
// every histogram manager here shares.
func TestTwoCarbonsSelfCorrelation(t *testing.T) {
	b, err := body.NewBody([]body.AtomSite{carbon(0, 0, 0, 6), carbon(3, 0, 0, 6)})
	require.NoError(t, err)
	mol := body.NewMolecule()
	mol.Add(b)

	ax := mustAxis(t, 1, 10)
	mgr := histmgr.NewSimple(mol, ax, distcalc.Options{})
	hist := mgr.CalculateAll()
	total := hist.Total()

	require.InDelta(t, 72, total.At(0), 1e-9)
	require.InDelta(t, 72, total.At(3), 1e-9)
	for _, i := range []int{1, 2, 4, 5, 6, 7, 8, 9} {
		require.InDelta(t, 0, total.At(i), 1e-9)
	}

	q, err := axis.NewQAxis(0, 0.0001, 2)
	require.NoError(t, err)
	curve := debye.TransformOnAxis(total, q, hist.Axis())
	require.InDelta(t, 144, curve[0], 1e-6)
}

// TestBodyPartitionInvariance checks that splitting two atoms into separate
// one-atom bodies produces the same P_total as keeping them in a single
// two-atom body: the master accumulator's cross-body factor of 2 must
// exactly compensate for SelfCorrelation's internal factor of 2 on
// within-body pairs.
func TestBodyPartitionInvariance(t *testing.T) {
	ax := mustAxis(t, 1, 10)

	single, err := body.NewBody([]body.AtomSite{carbon(0, 0, 0, 6), carbon(3, 0, 0, 6)})
	require.NoError(t, err)
	molSingle := body.NewMolecule()
	molSingle.Add(single)
	singleTotal := histmgr.NewSimple(molSingle, ax, distcalc.Options{}).CalculateAll().Total()

	a, err := body.NewBody([]body.AtomSite{carbon(0, 0, 0, 6)})
	require.NoError(t, err)
	c, err := body.NewBody([]body.AtomSite{carbon(3, 0, 0, 6)})
	require.NoError(t, err)
	molSplit := body.NewMolecule()
	molSplit.Add(a)
	molSplit.Add(c)
	splitTotal := histmgr.NewSimple(molSplit, ax, distcalc.Options{}).CalculateAll().Total()

	require.Equal(t, singleTotal.Len(), splitTotal.Len())
	for i := 0; i < singleTotal.Len(); i++ {
		require.InDelta(t, singleTotal.At(i), splitTotal.At(i), 1e-9)
	}
}

// TestIncrementalMatchesFullRecompute drives a three-body molecule through
// Partial, translates one body, and checks the incrementally-updated
// result against a from-scratch Simple recompute on the same geometry.
func TestIncrementalMatchesFullRecompute(t *testing.T) {
	ax := mustAxis(t, 1, 30)
	opt := distcalc.Options{}

	build := func() *body.Molecule {
		mol := body.NewMolecule()
		b0, _ := body.NewBody([]body.AtomSite{carbon(0, 0, 0, 6), carbon(1, 0, 0, 6)})
		b1, _ := body.NewBody([]body.AtomSite{carbon(5, 0, 0, 6)})
		b2, _ := body.NewBody([]body.AtomSite{carbon(0, 5, 0, 6), carbon(0, 6, 0, 6)})
		mol.Add(b0)
		mol.Add(b1)
		mol.Add(b2)
		return mol
	}

	molPartial := build()
	partial := histmgr.NewPartial(molPartial, ax, opt, false)
	_ = partial.CalculateAll() // seed the incremental state.

	molPartial.Body(1).Translate(5, 0, 0)
	incremental := partial.CalculateAll().Total()

	molFresh := build()
	molFresh.Body(1).Translate(5, 0, 0)
	fresh := histmgr.NewSimple(molFresh, ax, opt).CalculateAll().Total()

	require.Equal(t, fresh.Len(), incremental.Len())
	for i := 0; i < fresh.Len(); i++ {
		require.InDelta(t, fresh.At(i), incremental.At(i), 1e-9, "bin %d", i)
	}
}

// TestDebugAgreesWithSimple checks that the independent double-summation
// reference manager agrees with the block-decomposed Simple manager to a
// tight relative tolerance, not bit-for-bit (summation order differs).
func TestDebugAgreesWithSimple(t *testing.T) {
	ax := mustAxis(t, 0.5, 20)
	mol := body.NewMolecule()
	b0, _ := body.NewBody([]body.AtomSite{carbon(0, 0, 0, 6), carbon(1.2, 0.3, 0, 6)})
	b1, _ := body.NewBody([]body.AtomSite{carbon(3, 1, 0, 6), carbon(3, 2, 0.5, 6)})
	mol.Add(b0)
	mol.Add(b1)
	mol.ReplaceHydration([]body.HydrationSite{{X: 0.5, Y: 0.5, Z: 0, W: 3}})

	simple := histmgr.NewSimple(mol, ax, distcalc.Options{}).CalculateAll().Total()
	dbg := histmgr.NewDebug(mol, ax, distcalc.Options{}).CalculateAll().Total()

	require.Equal(t, simple.Len(), dbg.Len())
	for i := 0; i < simple.Len(); i++ {
		if simple.At(i) == 0 && dbg.At(i) == 0 {
			continue
		}
		rel := math.Abs(simple.At(i)-dbg.At(i)) / math.Max(1, math.Abs(simple.At(i)))
		require.Less(t, rel, 1e-6, "bin %d: simple=%v debug=%v", i, simple.At(i), dbg.At(i))
	}
}

// TestUnknownManagerChoice checks the factory's sentinel error path.
func TestUnknownManagerChoice(t *testing.T) {
	mol := body.NewMolecule()
	ax := mustAxis(t, 1, 10)
	_, err := histmgr.New("not-a-real-choice", mol, ax, distcalc.Options{})
	require.ErrorIs(t, err, histmgr.ErrUnknownManagerChoice)
}
