// Package config collects every tunable the configuration surface into one
// Config value: the q/distance axes, the excluded-volume grid, molecule
// solvation defaults, the histogram manager choice, fit/rigidbody
// optimisation controls, and general run settings (threads, output,
// verbosity). Values are set with functional Options following the same
// validated-builder pattern used throughout this module: option
// constructors validate eagerly and panic on a programmer error (a
// negative bin count, an unrecognised displaced-volume set), since those can only
// come from a bug in the caller, not from data.
package config

import (
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/saxshist/histmgr"
)

// DisplacedVolumeSet names a residue excluded-volume table choice for
// molecule.displaced_volume_set.
type DisplacedVolumeSet string

const (
	Traube                      DisplacedVolumeSet = "Traube"
	VoronoiExplicitH            DisplacedVolumeSet = "Voronoi_explicit_H"
	VoronoiImplicitH            DisplacedVolumeSet = "Voronoi_implicit_H"
	MinimumFluctuationExplicitH DisplacedVolumeSet = "MinimumFluctuation_explicit_H"
	MinimumFluctuationImplicitH DisplacedVolumeSet = "MinimumFluctuation_implicit_H"
	VanDerWaals                 DisplacedVolumeSet = "vdw"
	Standard                    DisplacedVolumeSet = "standard"
)

// AxesConfig is the axes.* group.
type AxesConfig struct {
	QMin             float64
	QMax             float64
	QBins            int
	DistanceBinWidth float64
	MaxDistance      float64
}

// GridConfig is the grid.* group (excluded-volume grid controls;
// the grid generator itself is an external collaborator — these are just
// the numbers it would be configured with).
type GridConfig struct {
	CellWidth       float64
	MinExvRadius    float64
	ExvWidth        float64
	ExvSurfaceThick float64
}

// MoleculeConfig is the molecule.* group.
type MoleculeConfig struct {
	ImplicitHydrogens  bool
	DisplacedVolumeSet DisplacedVolumeSet
}

// HistConfig is the hist.* group.
type HistConfig struct {
	ManagerChoice histmgr.Choice
}

// FitConfig is the fit.* group.
type FitConfig struct {
	MaxIterations int
	Verbose       bool
}

// RigidBodyConfig is the rigidbody.* group.
type RigidBodyConfig struct {
	Iterations                   int
	BodySelector                 string
	TransformStrategy            string
	ParameterStrategy            string
	ConstraintGenerationStrategy string
	BondDistance                 float64
}

// GeneralConfig is the general.* group.
type GeneralConfig struct {
	Threads            int
	Output             string
	Verbose            bool
	SupplementaryPlots bool
}

// Config is the complete set of run options, plus the ambient Logger the
// CLI hands to the logging packages (dataset, fitter, rigidbody) through
// their WithLogger options.
type Config struct {
	Axes      AxesConfig
	Grid      GridConfig
	Molecule  MoleculeConfig
	Hist      HistConfig
	Fit       FitConfig
	RigidBody RigidBodyConfig
	General   GeneralConfig
	Logger    *logrus.Logger
}

// Option mutates a Config at construction time.
type Option func(*Config)

// defaults mirror the reference implementation's defaults where one is
// documented, and otherwise a conservative, documented choice.
func defaults() Config {
	return Config{
		Axes: AxesConfig{
			QMin: 0.0, QMax: 0.5, QBins: 256,
			DistanceBinWidth: 0.5, MaxDistance: 200,
		},
		Grid: GridConfig{
			CellWidth: 1.0, MinExvRadius: 1.4, ExvWidth: 1.0, ExvSurfaceThick: 3.0,
		},
		Molecule: MoleculeConfig{
			ImplicitHydrogens: true, DisplacedVolumeSet: Standard,
		},
		Hist: HistConfig{ManagerChoice: histmgr.ChoiceSimple},
		Fit:  FitConfig{MaxIterations: 200, Verbose: false},
		RigidBody: RigidBodyConfig{
			Iterations: 1000, BodySelector: "uniform",
			TransformStrategy: "default", ParameterStrategy: "uniform",
			ConstraintGenerationStrategy: "none", BondDistance: 4.0,
		},
		General: GeneralConfig{Threads: 0, Output: "", Verbose: false, SupplementaryPlots: false},
		Logger:  logrus.StandardLogger(),
	}
}

// New builds a Config from defaults, then applies opts in order.
func New(opts ...Option) *Config {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithQAxis sets axes.q_min/q_max/q_bins. Panics if qMax <= qMin or
// bins <= 0.
func WithQAxis(qMin, qMax float64, bins int) Option {
	if qMax <= qMin {
		panic("config: WithQAxis: qMax <= qMin")
	}
	if bins <= 0 {
		panic("config: WithQAxis: bins <= 0")
	}
	return func(c *Config) { c.Axes.QMin, c.Axes.QMax, c.Axes.QBins = qMin, qMax, bins }
}

// WithDistanceAxis sets axes.distance_bin_width/max_distance. Panics on a
// non-positive width or max.
func WithDistanceAxis(binWidth, maxDistance float64) Option {
	if binWidth <= 0 || maxDistance <= 0 {
		panic("config: WithDistanceAxis: width and max must be positive")
	}
	return func(c *Config) { c.Axes.DistanceBinWidth, c.Axes.MaxDistance = binWidth, maxDistance }
}

// WithGrid sets the grid.* excluded-volume controls. Panics on a
// non-positive cell width.
func WithGrid(cellWidth, minExvRadius, exvWidth, exvSurfaceThickness float64) Option {
	if cellWidth <= 0 {
		panic("config: WithGrid: cellWidth <= 0")
	}
	return func(c *Config) {
		c.Grid = GridConfig{CellWidth: cellWidth, MinExvRadius: minExvRadius, ExvWidth: exvWidth, ExvSurfaceThick: exvSurfaceThickness}
	}
}

// WithMolecule sets molecule.implicit_hydrogens and
// molecule.displaced_volume_set. Panics on an unrecognized set name.
func WithMolecule(implicitHydrogens bool, set DisplacedVolumeSet) Option {
	switch set {
	case Traube, VoronoiExplicitH, VoronoiImplicitH, MinimumFluctuationExplicitH, MinimumFluctuationImplicitH, VanDerWaals, Standard:
	default:
		panic("config: WithMolecule: unrecognized displaced volume set " + string(set))
	}
	return func(c *Config) {
		c.Molecule = MoleculeConfig{ImplicitHydrogens: implicitHydrogens, DisplacedVolumeSet: set}
	}
}

// WithHistManagerChoice sets hist.manager_choice.
func WithHistManagerChoice(choice histmgr.Choice) Option {
	return func(c *Config) { c.Hist.ManagerChoice = choice }
}

// WithFit sets fit.max_iterations and fit.verbose. Panics if
// maxIterations <= 0.
func WithFit(maxIterations int, verbose bool) Option {
	if maxIterations <= 0 {
		panic("config: WithFit: maxIterations <= 0")
	}
	return func(c *Config) { c.Fit = FitConfig{MaxIterations: maxIterations, Verbose: verbose} }
}

// WithRigidBody sets every rigidbody.* option. Panics if iterations <= 0
// or bondDistance <= 0.
func WithRigidBody(iterations int, bodySelector, transformStrategy, parameterStrategy, constraintGenerationStrategy string, bondDistance float64) Option {
	if iterations <= 0 {
		panic("config: WithRigidBody: iterations <= 0")
	}
	if bondDistance <= 0 {
		panic("config: WithRigidBody: bondDistance <= 0")
	}
	return func(c *Config) {
		c.RigidBody = RigidBodyConfig{
			Iterations: iterations, BodySelector: bodySelector,
			TransformStrategy: transformStrategy, ParameterStrategy: parameterStrategy,
			ConstraintGenerationStrategy: constraintGenerationStrategy, BondDistance: bondDistance,
		}
	}
}

// WithGeneral sets general.threads/output/verbose/supplementary_plots.
// Panics if threads < 0.
func WithGeneral(threads int, output string, verbose, supplementaryPlots bool) Option {
	if threads < 0 {
		panic("config: WithGeneral: threads < 0")
	}
	return func(c *Config) {
		c.General = GeneralConfig{Threads: threads, Output: output, Verbose: verbose, SupplementaryPlots: supplementaryPlots}
	}
}

// WithLogger overrides the default logrus.StandardLogger(). Panics on nil.
func WithLogger(l *logrus.Logger) Option {
	if l == nil {
		panic("config: WithLogger: nil logger")
	}
	return func(c *Config) { c.Logger = l }
}
