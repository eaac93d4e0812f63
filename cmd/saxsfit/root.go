// Command saxsfit is the reference CLI binding for the saxshist module:
// a thin cobra/viper adapter over config.Config, fitter.ConstrainedFitter,
// and rigidbody.RigidBody. Per the "CLI parsing is out of scope",
// this package supplies no argument-grammar logic of its own beyond
// flag-to-Config binding; all computation is delegated to the library
// packages.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/saxshist/config"
	"github.com/katalvlaran/saxshist/histmgr"
	"github.com/katalvlaran/saxshist/workerpool"
)

var v = viper.New()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "saxsfit",
		Short: "Compute and fit SAXS intensity curves against experimental data.",
		Long: "saxsfit computes pair-distance histograms and their Debye " +
			"transform from macromolecular structures, and fits or " +
			"rigid-body-optimises multi-body assemblies against experimental " +
			"I(q) data.\n\nFlags bind into configuration via an optional " +
			"--config file, environment variables prefixed SAXSFIT_, or the " +
			"flags themselves, in that ascending order of precedence.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a YAML/TOML configuration file")
	root.PersistentFlags().Float64("q-min", 0.0, "axes.q_min")
	root.PersistentFlags().Float64("q-max", 0.5, "axes.q_max")
	root.PersistentFlags().Int("q-bins", 256, "axes.q_bins")
	root.PersistentFlags().Float64("distance-bin-width", 0.5, "axes.distance_bin_width")
	root.PersistentFlags().Float64("max-distance", 200, "axes.max_distance")
	root.PersistentFlags().String("manager-choice", string(histmgr.ChoiceSimple), "hist.manager_choice")
	root.PersistentFlags().Int("threads", 0, "general.threads (0 = GOMAXPROCS)")
	root.PersistentFlags().Bool("verbose", false, "general.verbose")

	v.SetEnvPrefix("SAXSFIT")
	v.AutomaticEnv()
	_ = v.BindPFlags(root.PersistentFlags())

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("saxsfit: reading config file: %w", err)
			}
		}
		return nil
	}

	root.AddCommand(newCurveCmd(), newFitCmd(), newOptimizeCmd())
	return root
}

// loadConfig builds a config.Config from viper's currently bound values
// (flags, env, and config file, already merged by viper's precedence).
func loadConfig() (*config.Config, error) {
	logger := logrus.StandardLogger()
	if v.GetBool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	choice := histmgr.Choice(v.GetString("manager-choice"))
	cfg := config.New(
		config.WithQAxis(v.GetFloat64("q-min"), v.GetFloat64("q-max"), v.GetInt("q-bins")),
		config.WithDistanceAxis(v.GetFloat64("distance-bin-width"), v.GetFloat64("max-distance")),
		config.WithHistManagerChoice(choice),
		config.WithGeneral(v.GetInt("threads"), "", v.GetBool("verbose"), false),
		config.WithLogger(logger),
	)
	workerpool.SetGlobalWorkers(cfg.General.Threads)
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
