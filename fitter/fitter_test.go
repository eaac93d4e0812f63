package fitter_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/composite"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/debye"
	"github.com/katalvlaran/saxshist/distribution"
	"github.com/katalvlaran/saxshist/fitter"
)

func syntheticHistogram(t *testing.T) (composite.Histogram, axis.Axis) {
	t.Helper()
	ax, err := axis.New(1, 10)
	require.NoError(t, err)

	aa := distribution.NewDistribution1D(ax.Bins, false)
	aa.Set(0, 72)
	aa.Set(3, 72)
	aw := distribution.NewDistribution1D(ax.Bins, false)
	aw.Set(2, 10)
	ww := distribution.NewDistribution1D(ax.Bins, false)
	ww.Set(0, 4)

	hist := composite.NewUnresolved(ax, aa, aw, ww)
	return hist, hist.Axis()
}

// buildSyntheticDataset generates a dataset from the system's own forward
// model (Debye transform) with known identity-ish a, b so a correct fit
// should recover them closely, mirroring the "fit reproducibility"
// scenario.
func buildSyntheticDataset(t *testing.T, hist composite.Histogram, dAxis axis.Axis, a, b float64) *dataset.Dataset {
	t.Helper()
	q, err := axis.NewQAxis(0.01, 0.3, 12)
	require.NoError(t, err)
	curve := debye.TransformOnAxis(hist.Total(), q, dAxis)

	var sb strings.Builder
	sb.WriteString("# q I sigma\n")
	for i, qv := range q.Values() {
		iv := a*curve[i] + b
		sigma := 0.01 * iv
		if sigma == 0 {
			sigma = 1e-6
		}
		fmt.Fprintf(&sb, "%.10f %.10f %.10f\n", qv, iv, sigma)
	}
	ds, err := dataset.Load(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return ds
}

func TestLinearFitRecoversKnownParameters(t *testing.T) {
	hist, dAxis := syntheticHistogram(t)
	const wantA, wantB = 2.5, 1.2
	ds := buildSyntheticDataset(t, hist, dAxis, wantA, wantB)

	mol := body.NewMolecule()
	f := fitter.New(ds, hist, mol, nil)
	result, err := f.Fit()
	require.NoError(t, err)
	require.True(t, result.Converged())

	require.InDelta(t, wantA, result.A.Value, 1e-6)
	require.InDelta(t, wantB, result.B.Value, 1e-6)
	require.Less(t, result.ReducedChiSquare(), 1.05)
}

func TestFitTooFewPoints(t *testing.T) {
	hist, _ := syntheticHistogram(t)
	ds, err := dataset.Load(strings.NewReader("0.1 1.0 0.1\n"))
	require.NoError(t, err)

	mol := body.NewMolecule()
	f := fitter.New(ds, hist, mol, nil)
	_, err = f.Fit()
	require.ErrorIs(t, err, fitter.ErrTooFewPoints)
}

func TestConstraintPenaltyIncreasesChiSquareWhenStretched(t *testing.T) {
	hist, dAxis := syntheticHistogram(t)
	ds := buildSyntheticDataset(t, hist, dAxis, 1.0, 0.0)
	mol := body.NewMolecule()

	bi, err := body.NewBody([]body.AtomSite{{X: 0, Y: 0, Z: 0, W: 1}})
	require.NoError(t, err)
	bj, err := body.NewBody([]body.AtomSite{{X: 2, Y: 0, Z: 0, W: 1}})
	require.NoError(t, err)
	mol.Add(bi)
	mol.Add(bj)
	c, err := body.NewConstraint(bi, 0, bj, 0, 0)
	require.NoError(t, err)

	without := fitter.New(ds, hist, mol, nil)
	r0, err := without.Fit()
	require.NoError(t, err)

	bj.Translate(1, 0, 0) // stretches the constraint away from equilibrium.
	withConstraint := fitter.New(ds, hist, mol, []*body.Constraint{c})
	r1, err := withConstraint.Fit()
	require.NoError(t, err)

	require.Greater(t, r1.ChiSquare, r0.ChiSquare)
}

func TestReportMentionsChiSquare(t *testing.T) {
	hist, dAxis := syntheticHistogram(t)
	ds := buildSyntheticDataset(t, hist, dAxis, 1.0, 0.0)
	mol := body.NewMolecule()
	f := fitter.New(ds, hist, mol, nil)
	result, err := f.Fit()
	require.NoError(t, err)
	require.Contains(t, result.Report(), "chi^2")
}
