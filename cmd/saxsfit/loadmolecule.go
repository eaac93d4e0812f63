package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/saxshist/body"
	"github.com/katalvlaran/saxshist/formfactor"
)

// loadMolecule reads a minimal whitespace-columnar atom table: one atom
// per line, columns "body_index x y z w species", species as the
// conventional chemical shorthand (formfactor.Species.String()). It is
// deliberately not a PDB/mmCIF reader — real structure-file parsing is an
// external collaborator, referenced by
// coords.SiteSource; this loader exists only so the reference CLI has
// something runnable to point at.
func loadMolecule(path string) (*body.Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("saxsfit: loadMolecule: %w", err)
	}
	defer f.Close()
	return parseMolecule(f)
}

func parseMolecule(r io.Reader) (*body.Molecule, error) {
	type row struct {
		bodyIdx int
		atom    body.AtomSite
	}
	var rows []row
	maxBody := -1

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("saxsfit: parseMolecule: expected 6 columns, got %d: %q", len(fields), line)
		}
		bodyIdx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: body index: %w", err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: x: %w", err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: y: %w", err)
		}
		z, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: z: %w", err)
		}
		w, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: w: %w", err)
		}
		species, err := parseSpecies(fields[5])
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: %w", err)
		}
		if bodyIdx > maxBody {
			maxBody = bodyIdx
		}
		rows = append(rows, row{bodyIdx: bodyIdx, atom: body.AtomSite{X: x, Y: y, Z: z, W: w, Species: species}})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("saxsfit: parseMolecule: %w", err)
	}
	if maxBody < 0 {
		return nil, fmt.Errorf("saxsfit: parseMolecule: no atom rows")
	}

	buckets := make([][]body.AtomSite, maxBody+1)
	for _, r := range rows {
		buckets[r.bodyIdx] = append(buckets[r.bodyIdx], r.atom)
	}

	mol := body.NewMolecule()
	for _, atoms := range buckets {
		if len(atoms) == 0 {
			continue
		}
		b, err := body.NewBody(atoms)
		if err != nil {
			return nil, fmt.Errorf("saxsfit: parseMolecule: %w", err)
		}
		mol.Add(b)
	}
	return mol, nil
}

func parseSpecies(name string) (formfactor.Species, error) {
	for s := formfactor.H; s <= formfactor.EXCLUDED_VOLUME; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unrecognized species %q", name)
}
