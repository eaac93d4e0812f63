// Package residue implements the residue storage layer: a
// persistent keyed map from residue name to {atom_name ->
// number_of_implicit_hydrogens}. A cache miss attempts one CIF fetch
// over HTTP, retried with bounded exponential backoff; exhausting
// retries falls back to the deterministic zero-implicit-hydrogens entry
// so a missing or unreachable residue never aborts the calling pipeline.
package residue

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Table maps atom name to the number of implicit hydrogens attached to it
// in one residue.
type Table map[string]int

// Storage is a sqlite3-backed cache of residue name -> Table, with a
// network fetch-and-fill path for cache misses.
type Storage struct {
	db      *sql.DB
	fetcher Fetcher
	logger  *logrus.Logger
	retries uint64
}

// Fetcher retrieves a CIF definition for a residue name and parses it into
// a Table. The concrete HTTP-backed implementation is HTTPFetcher; tests
// substitute a stub.
type Fetcher interface {
	Fetch(residueName string) (Table, error)
}

// Option configures a Storage at construction time.
type Option func(*Storage)

// WithFetcher overrides the default HTTPFetcher (e.g. for tests, or to
// point at a mirror). Panics on nil.
func WithFetcher(f Fetcher) Option {
	if f == nil {
		panic("residue: WithFetcher: nil fetcher")
	}
	return func(s *Storage) { s.fetcher = f }
}

// WithLogger overrides the default logrus.StandardLogger(). Panics on nil.
func WithLogger(l *logrus.Logger) Option {
	if l == nil {
		panic("residue: WithLogger: nil logger")
	}
	return func(s *Storage) { s.logger = l }
}

// WithMaxRetries overrides the default of 2 retries (3 attempts total).
func WithMaxRetries(n uint64) Option {
	return func(s *Storage) { s.retries = n }
}

// Open opens (creating if necessary) a sqlite3 cache database at path.
// path may be ":memory:" for a process-local, non-persistent cache.
func Open(path string, opts ...Option) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("residue: Open: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("residue: Open: creating schema: %w", err)
	}
	s := &Storage{
		db:      db,
		fetcher: NewHTTPFetcher(DefaultBaseURL, nil),
		logger:  logrus.StandardLogger(),
		retries: 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error { return s.db.Close() }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS residue_hydrogens (
	residue    TEXT NOT NULL,
	atom_name  TEXT NOT NULL,
	implicit_h INTEGER NOT NULL,
	PRIMARY KEY (residue, atom_name)
);
`

// Lookup returns the implicit-hydrogen table for residueName, consulting
// the sqlite3 cache first. On a cache miss it retries a CIF fetch with
// bounded exponential backoff; if every attempt fails, it persists and
// returns the deterministic zero-implicit-hydrogens fallback so the
// caller's pipeline never aborts on an unknown residue.
func (s *Storage) Lookup(residueName string) (Table, error) {
	table, err := s.readCache(residueName)
	if err != nil {
		return nil, fmt.Errorf("residue: Lookup(%q): %w", residueName, err)
	}
	if table != nil {
		return table, nil
	}

	table, fetchErr := s.fetchWithRetry(residueName)
	if fetchErr != nil {
		s.logger.WithFields(logrus.Fields{"residue": residueName, "error": fetchErr}).
			Warn("residue: CIF fetch exhausted retries, using zero-implicit-hydrogens fallback")
		table = Table{}
	}
	if err := s.writeCache(residueName, table); err != nil {
		return nil, fmt.Errorf("residue: Lookup(%q): caching result: %w", residueName, err)
	}
	return table, nil
}

func (s *Storage) fetchWithRetry(residueName string) (Table, error) {
	var table Table
	op := func() error {
		t, err := s.fetcher.Fetch(residueName)
		if err != nil {
			return err
		}
		table = t
		return nil
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.retries)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *Storage) readCache(residueName string) (Table, error) {
	rows, err := s.db.Query(`SELECT atom_name, implicit_h FROM residue_hydrogens WHERE residue = ?`, residueName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := Table{}
	found := false
	for rows.Next() {
		found = true
		var atom string
		var n int
		if err := rows.Scan(&atom, &n); err != nil {
			return nil, err
		}
		if atom == "" {
			// the no-hydrogens-known sentinel written by writeCache, not a
			// real atom.
			continue
		}
		table[atom] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return table, nil
}

func (s *Storage) writeCache(residueName string, table Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if len(table) == 0 {
		// A residue with no atoms maps to nothing distinguishable from a
		// miss on re-read, so record one sentinel atom name.
		if _, err := tx.Exec(`INSERT OR REPLACE INTO residue_hydrogens(residue, atom_name, implicit_h) VALUES (?, ?, ?)`,
			residueName, "", 0); err != nil {
			tx.Rollback()
			return err
		}
	} else {
		for atom, n := range table {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO residue_hydrogens(residue, atom_name, implicit_h) VALUES (?, ?, ?)`,
				residueName, atom, n); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// DefaultBaseURL is the known CIF source used as the default fetch
// location; overridable via NewHTTPFetcher for self-hosted mirrors.
const DefaultBaseURL = "https://files.rcsb.org/ligands/download"

// HTTPFetcher fetches a residue's CIF file over HTTP and parses its
// implicit-hydrogen table.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher builds a fetcher against baseURL (residue name appended
// as "<name>.cif"). A nil client uses a 10-second-timeout default.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{baseURL: baseURL, client: client}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(residueName string) (Table, error) {
	url := fmt.Sprintf("%s/%s.cif", f.baseURL, residueName)
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("residue: HTTPFetcher.Fetch(%q): %w", residueName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("residue: HTTPFetcher.Fetch(%q): status %s", residueName, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("residue: HTTPFetcher.Fetch(%q): %w", residueName, err)
	}
	return ParseCIFImplicitHydrogens(body)
}
