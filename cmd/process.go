package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/analysis"
	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/store"
)

var processTop int

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Score every city and save an analysis snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		facilities, err := env.Store.ListFacilities(ctx, store.FacilityFilter{})
		if err != nil {
			return err
		}

		pipeline, err := analysis.NewPipeline(env.Roster, scoringWeights())
		if err != nil {
			return err
		}
		stats := pipeline.Run(facilities)

		snap, err := env.Store.SaveSnapshot(ctx, stats)
		if err != nil {
			return err
		}
		zap.L().Info("snapshot saved",
			zap.String("snapshot_id", snap.ID),
			zap.Int("cities", len(stats)),
		)

		printRanking(stats, processTop)
		return nil
	},
}

func printRanking(stats []model.CityStats, top int) {
	if top <= 0 || top > len(stats) {
		top = len(stats)
	}

	fmt.Printf("%-4s %-28s %7s %6s %7s %8s %9s\n",
		"#", "City", "Score", "Courts", "Rating", "Per 10k", "Gap (km)")
	for i, s := range stats[:top] {
		fmt.Printf("%-4d %-28s %7.1f %6d %7s %8s %9s\n",
			i+1, s.City, s.OpportunityScore, s.TotalFacilities,
			fmtOptional(s.AvgRating, "%.2f"),
			fmtOptional(s.FacilitiesPerCapita, "%.3f"),
			fmtOptional(s.AvgDistanceToNearest, "%.2f"),
		)
	}
}

func fmtOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func init() {
	processCmd.Flags().IntVar(&processTop, "top", 0, "limit the printed ranking to the top N cities (0=all)")
	rootCmd.AddCommand(processCmd)
}
