package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/export"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import facilities from CSV into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrapf(err, "open %s", importCSVPath)
		}
		defer f.Close() //nolint:errcheck

		facilities, err := export.ReadFacilitiesCSV(f)
		if err != nil {
			return err
		}

		n, err := env.Store.UpsertFacilities(ctx, facilities)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("facilities", n),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
