package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/export"
	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/store"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest analysis snapshot to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Store.LatestSnapshot(ctx)
		if err != nil {
			return err
		}
		if snap == nil {
			return eris.New("no snapshot found; run `market-cli process` first")
		}

		out, err := os.Create(exportOutput)
		if err != nil {
			return eris.Wrapf(err, "create %s", exportOutput)
		}
		defer out.Close() //nolint:errcheck

		switch exportFormat {
		case "csv":
			err = export.WriteCityStatsCSV(out, snap.Cities)
		case "xlsx":
			var facilities []model.Facility
			facilities, err = env.Store.ListFacilities(ctx, store.FacilityFilter{})
			if err != nil {
				return err
			}
			err = export.WriteReportXLSX(out, snap.Cities, facilities)
		default:
			return eris.Errorf("unsupported format: %s (want csv or xlsx)", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("format", exportFormat),
			zap.String("output", exportOutput),
			zap.Int("cities", len(snap.Cities)),
			zap.String("snapshot_id", snap.ID),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportOutput, "out", "", "output file path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
