package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/saxshist/formfactor"
)

func TestParseMoleculeGroupsRowsByBodyIndex(t *testing.T) {
	input := `# body x y z w species
0 0.0 0.0 0.0 1.0 C
0 1.0 0.0 0.0 1.0 C
1 5.0 0.0 0.0 1.0 O
`
	mol, err := parseMolecule(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, mol.NumBodies())
	require.Equal(t, 2, mol.Body(0).NumAtoms())
	require.Equal(t, 1, mol.Body(1).NumAtoms())
	require.Equal(t, formfactor.O, mol.Body(1).Atom(0).Species)
}

func TestParseMoleculeRejectsUnknownSpecies(t *testing.T) {
	_, err := parseMolecule(strings.NewReader("0 0 0 0 1 Zz\n"))
	require.Error(t, err)
}

func TestParseMoleculeRejectsEmptyInput(t *testing.T) {
	_, err := parseMolecule(strings.NewReader("# just a comment\n"))
	require.Error(t, err)
}

func TestParseSpeciesIsCaseInsensitive(t *testing.T) {
	s, err := parseSpecies("ch2")
	require.NoError(t, err)
	require.Equal(t, formfactor.CH2, s)
}
