package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/dataset"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/rigidbody"
)

func newOptimizeCmd() *cobra.Command {
	var moleculePath, datasetPath string
	var iterations int
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the rigid-body optimisation loop against an experimental dataset.",
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
				return fmt.Errorf("saxsfit: optimize: %w", err)
			}
			defer f.Close()
			data, err := dataset.Load(f, dataset.WithLogger(cfg.Logger))
			if err != nil {
				return fmt.Errorf("saxsfit: optimize: %w", err)
			}

			distAxis, err := axis.New(cfg.Axes.DistanceBinWidth, cfg.Axes.MaxDistance)
			if err != nil {
				return fmt.Errorf("saxsfit: optimize: %w", err)
			}

			rb, err := rigidbody.New(mol, nil, cfg.Hist.ManagerChoice, distAxis, distcalc.Options{}, data,
				rigidbody.WithLogger(cfg.Logger),
			)
			if err != nil {
				return fmt.Errorf("saxsfit: optimize: %w", err)
			}

			results, err := rb.Run(iterations)
			if err != nil {
				return fmt.Errorf("saxsfit: optimize: %w", err)
			}
			accepted := 0
			for _, r := range results {
				if r.Accepted {
					accepted++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "iterations=%d accepted=%d best_chi2=%.6f\n", len(results), accepted, rb.BestChiSquare())
			return nil
		},
	}
	cmd.Flags().StringVar(&moleculePath, "molecule", "", "path to an atom table (see loadMolecule)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to an experimental q/I/sigma dataset")
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "rigidbody.iterations")
	_ = cmd.MarkFlagRequired("molecule")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
