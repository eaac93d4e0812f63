// Package dataset implements the experimental I(q) loader :
// whitespace/comma/tab-delimited (q, I, sigma_I) rows in either inverse
// angstrom or inverse nanometre, with header/unit detection, q-range
// filtering, and a q-sorted result ready to hand to the fitter.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Point is one (q, I, sigma_I) observation.
type Point struct {
	Q, I, SigmaI float64
}

// Dataset is a q-sorted collection of experimental points.
type Dataset struct {
	points []Point
}

// Sentinel errors. Checked with errors.Is.
var (
	// ErrEmpty is returned when no row in the input parsed as data, or every
	// parsed row fell outside the requested q-range.
	ErrEmpty = errors.New("dataset: no usable data rows")
)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	qMin, qMax float64 // qMax <= qMin disables range filtering.
	logger     *logrus.Logger
}

// WithQRange restricts the loaded rows to [qMin, qMax]; rows outside are
// silently dropped. The zero value (both 0) disables
// filtering.
func WithQRange(qMin, qMax float64) Option {
	return func(o *loadOptions) { o.qMin, o.qMax = qMin, qMax }
}

// WithLogger overrides the default logrus.StandardLogger() used for the
// unit-detection and row-count diagnostics a verbose load emits.
func WithLogger(l *logrus.Logger) Option {
	return func(o *loadOptions) { o.logger = l }
}

// Load reads an experimental dataset from r. Lines whose tokens don't all
// parse as three numbers are treated as header/comment lines and scanned
// for a `[nm]` or `[Å]`/`[AA]` unit marker (default: angstrom, no
// scaling). The result is sorted by q ascending.
func Load(r io.Reader, opts ...Option) (*Dataset, error) {
	o := loadOptions{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		rows    []Point
		headers []string
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p, ok := parseRow(line)
		if !ok {
			headers = append(headers, line)
			continue
		}
		rows = append(rows, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: Load: %w", err)
	}

	if nmUnits(headers) {
		o.logger.Debug("dataset: [nm] unit detected, scaling q by 1/10")
		for i := range rows {
			rows[i].Q /= 10
		}
	}

	if o.qMax > o.qMin {
		filtered := rows[:0:0]
		for _, p := range rows {
			if p.Q >= o.qMin && p.Q <= o.qMax {
				filtered = append(filtered, p)
			}
		}
		if len(rows)-len(filtered) > 0 {
			o.logger.Debugf("dataset: dropped %d rows outside [%g, %g]", len(rows)-len(filtered), o.qMin, o.qMax)
		}
		rows = filtered
	}

	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Q < rows[j].Q })

	return &Dataset{points: rows}, nil
}

// parseRow splits line on whitespace/comma/tab and reports whether exactly
// three tokens were produced and all parsed as floats.
func parseRow(line string) (Point, bool) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 3 {
		return Point{}, false
	}
	vals := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Point{}, false
		}
		vals[i] = v
	}
	return Point{Q: vals[0], I: vals[1], SigmaI: vals[2]}, true
}

func nmUnits(headers []string) bool {
	for _, h := range headers {
		if strings.Contains(h, "[nm]") {
			return true
		}
		if strings.Contains(h, "[Å]") || strings.Contains(h, "[AA]") {
			return false
		}
	}
	return false
}

// Len returns the number of points.
func (d *Dataset) Len() int { return len(d.points) }

// At returns the i-th point.
func (d *Dataset) At(i int) Point { return d.points[i] }

// Q returns the column of q values.
func (d *Dataset) Q() []float64 {
	out := make([]float64, len(d.points))
	for i, p := range d.points {
		out[i] = p.Q
	}
	return out
}

// I returns the column of intensity values.
func (d *Dataset) I() []float64 {
	out := make([]float64, len(d.points))
	for i, p := range d.points {
		out[i] = p.I
	}
	return out
}

// Sigma returns the column of intensity uncertainties.
func (d *Dataset) Sigma() []float64 {
	out := make([]float64, len(d.points))
	for i, p := range d.points {
		out[i] = p.SigmaI
	}
	return out
}
