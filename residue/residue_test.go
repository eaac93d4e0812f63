package residue_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/residue"
)

type stubFetcher struct {
	table residue.Table
	err   error
	calls int
}

func (f *stubFetcher) Fetch(string) (residue.Table, error) {
	f.calls++
	return f.table, f.err
}

func openTestStorage(t *testing.T, f residue.Fetcher) *residue.Storage {
	t.Helper()
	s, err := residue.Open(":memory:", residue.WithFetcher(f), residue.WithMaxRetries(1))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLookupCachesFetchResult(t *testing.T) {
	f := &stubFetcher{table: residue.Table{"CA": 1, "CB": 2}}
	s := openTestStorage(t, f)

	got, err := s.Lookup("ALA")
	require.NoError(t, err)
	require.Equal(t, residue.Table{"CA": 1, "CB": 2}, got)
	require.Equal(t, 1, f.calls)

	got2, err := s.Lookup("ALA")
	require.NoError(t, err)
	require.Equal(t, got, got2)
	require.Equal(t, 1, f.calls, "second lookup must hit the cache, not the fetcher")
}

func TestLookupFallsBackToZeroHydrogensOnPersistentFetchFailure(t *testing.T) {
	f := &stubFetcher{err: errors.New("network unreachable")}
	s := openTestStorage(t, f)

	got, err := s.Lookup("XYZ")
	require.NoError(t, err)
	require.Empty(t, got)

	got2, err := s.Lookup("XYZ")
	require.NoError(t, err)
	require.Empty(t, got2)
}

func TestParseCIFImplicitHydrogensCountsHydrogenBonds(t *testing.T) {
	cif := `
data_ALA
loop_
_chem_comp_bond.comp_id
_chem_comp_bond.atom_id_1
_chem_comp_bond.atom_id_2
_chem_comp_bond.value_order
ALA N   H1  SING
ALA N   H2  SING
ALA CA  HA  SING
ALA CA  N   SING
ALA CA  CB  SING
#
`
	table, err := residue.ParseCIFImplicitHydrogens([]byte(cif))
	require.NoError(t, err)
	require.Equal(t, 2, table["N"])
	require.Equal(t, 1, table["CA"])
	require.NotContains(t, table, "CB")
}
