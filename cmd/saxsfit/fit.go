package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/fitter"
	"github.com/katalvlaran/saxshist/histmgr"
)

func newFitCmd() *cobra.Command {
	var moleculePath, datasetPath string
	var nonlinear bool
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a molecule's computed curve against an experimental dataset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mol, err := loadMolecule(moleculePath)
			if err != nil {
				return err
			}
			f, err := os.Open(datasetPath)
			if err != nil {
				return fmt.Errorf("saxsfit: fit: %w", err)
			}
			defer f.Close()
			data, err := dataset.Load(f, dataset.WithLogger(cfg.Logger))
			if err != nil {
				return fmt.Errorf("saxsfit: fit: %w", err)
			}

			distAxis, err := axis.New(cfg.Axes.DistanceBinWidth, cfg.Axes.MaxDistance)
			if err != nil {
				return fmt.Errorf("saxsfit: fit: %w", err)
			}
			manager, err := histmgr.New(cfg.Hist.ManagerChoice, mol, distAxis, distcalc.Options{})
			if err != nil {
				return fmt.Errorf("saxsfit: fit: %w", err)
			}
			hist := manager.CalculateAll()

			cf := fitter.New(data, hist, mol, nil,
				fitter.WithNonlinearRefinement(nonlinear),
				fitter.WithMaxIterations(cfg.Fit.MaxIterations),
				fitter.WithLogger(cfg.Logger),
			)
			result, err := cf.Fit()
			if err != nil {
				return fmt.Errorf("saxsfit: fit: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Report())
			return nil
		},
	}
	cmd.Flags().StringVar(&moleculePath, "molecule", "", "path to an atom table (see loadMolecule)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to an experimental q/I/sigma dataset")
	cmd.Flags().BoolVar(&nonlinear, "nonlinear", false, "refine hydration/excluded-volume scaling factors")
	_ = cmd.MarkFlagRequired("molecule")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
