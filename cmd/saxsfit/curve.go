package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/saxshist/axis"
	"github.com/katalvlaran/saxshist/debye"
	"github.com/katalvlaran/saxshist/distcalc"
	"github.com/katalvlaran/saxshist/histmgr"
)

func newCurveCmd() *cobra.Command {
	var moleculePath string
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Compute the Debye-transformed I(q) curve for a molecule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mol, err := loadMolecule(moleculePath)
			if err != nil {
				return err
			}

			distAxis, err := axis.New(cfg.Axes.DistanceBinWidth, cfg.Axes.MaxDistance)
			if err != nil {
				return fmt.Errorf("saxsfit: curve: %w", err)
			}
			manager, err := histmgr.New(cfg.Hist.ManagerChoice, mol, distAxis, distcalc.Options{})
			if err != nil {
				return fmt.Errorf("saxsfit: curve: %w", err)
			}
			hist := manager.CalculateAll()

			qAxis, err := axis.NewQAxis(cfg.Axes.QMin, cfg.Axes.QMax, cfg.Axes.QBins)
			if err != nil {
				return fmt.Errorf("saxsfit: curve: %w", err)
			}
			curve := debye.TransformOnAxis(hist.Total(), qAxis, hist.Axis())

			for i, q := range qAxis.Values() {
				fmt.Fprintf(cmd.OutOrStdout(), "%.6f\t%.10g\n", q, curve[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&moleculePath, "molecule", "", "path to an atom table (see loadMolecule)")
	_ = cmd.MarkFlagRequired("molecule")
	return cmd
}
