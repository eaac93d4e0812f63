package distcalc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/coords"
	"github.com/katalvlaran/saxshist/formfactor"
)

type fakeSource struct{ sites []coords.Site }

func (f fakeSource) NumSites() int { return len(f.sites) }
func (f fakeSource) Site(i int) (x, y, z, w float64) {
	s := f.sites[i]
	return s.X, s.Y, s.Z, s.W
}

type fakeSpeciesSource struct {
	fakeSource
	species []formfactor.Species
}

func (f fakeSpeciesSource) SpeciesAt(i int) formfactor.Species { return f.species[i] }

func mustAxis(t *testing.T, width, max float64) axis.Axis {
	t.Helper()
	a, err := axis.New(width, max)
	require.NoError(t, err)
	return a
}

func TestSelfCorrelationAccumulatesDiagonalAndOffDiagonal(t *testing.T) {
	cc := coords.FromSource(fakeSource{sites: []coords.Site{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
	}})
	ax := mustAxis(t, 1.0, 5)
	d := SelfCorrelation(cc, ax, Options{})

	require.Equal(t, 2.0, d.At(0), "diagonal sum(w_i^2)")
	require.Equal(t, 2.0, d.At(1), "2*w_i*w_j at distance 1")
}

func TestSelfCorrelationEmptyCoordinatesReturnsZeroedDistribution(t *testing.T) {
	cc := coords.FromSource(fakeSource{})
	ax := mustAxis(t, 1.0, 5)
	d := SelfCorrelation(cc, ax, Options{})
	require.Equal(t, 0.0, d.At(0))
}

func TestSelfCorrelationDiscardsOutOfRangeDistances(t *testing.T) {
	cc := coords.FromSource(fakeSource{sites: []coords.Site{
		{0, 0, 0, 1},
		{100, 0, 0, 1},
	}})
	ax := mustAxis(t, 1.0, 5)
	d := SelfCorrelation(cc, ax, Options{})
	require.Equal(t, 2.0, d.At(0))
	for i := 1; i < d.Len(); i++ {
		require.Equal(t, 0.0, d.At(i))
	}
}

func TestSelfCorrelationMatchesAcrossChunkSizes(t *testing.T) {
	sites := make([]coords.Site, 30)
	for i := range sites {
		sites[i] = coords.Site{X: float64(i), Y: 0, Z: 0, W: 1}
	}
	cc := coords.FromSource(fakeSource{sites: sites})
	ax := mustAxis(t, 1.0, 40)

	full := SelfCorrelation(cc, ax, Options{})
	chunked := SelfCorrelation(cc, ax, Options{ChunkSize: 3})

	for i := 0; i < ax.Bins; i++ {
		require.InDelta(t, full.At(i), chunked.At(i), 1e-9, "bin %d", i)
	}
}

func TestCrossCorrelationAccumulatesOrderedPairs(t *testing.T) {
	a := coords.FromSource(fakeSource{sites: []coords.Site{{0, 0, 0, 2}}})
	b := coords.FromSource(fakeSource{sites: []coords.Site{{1, 0, 0, 3}}})
	ax := mustAxis(t, 1.0, 5)

	d := CrossCorrelation(a, b, ax, Options{})
	require.Equal(t, 6.0, d.At(1))
}

func TestCrossCorrelationEmptySideReturnsZeroedDistribution(t *testing.T) {
	a := coords.FromSource(fakeSource{})
	b := coords.FromSource(fakeSource{sites: []coords.Site{{0, 0, 0, 1}}})
	ax := mustAxis(t, 1.0, 5)
	d := CrossCorrelation(a, b, ax, Options{})
	for i := 0; i < d.Len(); i++ {
		require.Equal(t, 0.0, d.At(i))
	}
}

func TestSelfCorrelationFFBucketsBySpeciesPair(t *testing.T) {
	cc := coords.FromSpeciesSource(fakeSpeciesSource{
		fakeSource: fakeSource{sites: []coords.Site{{0, 0, 0, 1}, {1, 0, 0, 1}}},
		species:    []formfactor.Species{formfactor.C, formfactor.O},
	})
	ax := mustAxis(t, 1.0, 5)
	d := SelfCorrelationFF(cc, ax, Options{})

	require.Equal(t, 2.0, d.At(int(formfactor.C), int(formfactor.O), 1))
	require.Equal(t, 1.0, d.At(int(formfactor.C), int(formfactor.C), 0))
	require.Equal(t, 1.0, d.At(int(formfactor.O), int(formfactor.O), 0))
}

func TestCrossCorrelationFFTreatsBAsSpeciesUniform(t *testing.T) {
	a := coords.FromSpeciesSource(fakeSpeciesSource{
		fakeSource: fakeSource{sites: []coords.Site{{0, 0, 0, 1}}},
		species:    []formfactor.Species{formfactor.N},
	})
	b := coords.FromSource(fakeSource{sites: []coords.Site{{1, 0, 0, 1}, {2, 0, 0, 1}}})
	ax := mustAxis(t, 1.0, 5)

	d := CrossCorrelationFF(a, b, ax, Options{})
	require.Equal(t, 1.0, d.At(int(formfactor.N), 1))
	require.Equal(t, 1.0, d.At(int(formfactor.N), 2))
}

func TestWeightedOptionSplitsAcrossNeighboringBins(t *testing.T) {
	a := coords.FromSource(fakeSource{sites: []coords.Site{{0, 0, 0, 1}}})
	b := coords.FromSource(fakeSource{sites: []coords.Site{{2.5, 0, 0, 1}}})
	ax := mustAxis(t, 1.0, 5)

	d := CrossCorrelation(a, b, ax, Options{Weighted: true})
	require.Greater(t, d.At(2), 0.0)
	require.Greater(t, d.At(3), 0.0)
	require.InDelta(t, 1.0, d.At(2)+d.At(3), 1e-9)
}
