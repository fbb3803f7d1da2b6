package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/enrich"
	"github.com/padel-insights/market-cli/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Classify court types for unclassified facilities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Anthropic.Key == "" {
			return eris.New("anthropic key is required (PADEL_ANTHROPIC_KEY)")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		facilities, err := env.Store.ListFacilities(ctx, store.FacilityFilter{})
		if err != nil {
			return err
		}

		classifier := enrich.NewClassifier(cfg.Anthropic.Key, cfg.Anthropic.Model, env.Store)
		n, err := classifier.Run(ctx, facilities)
		if err != nil {
			return err
		}

		zap.L().Info("enrich complete",
			zap.Int("facilities", len(facilities)),
			zap.Int("classified", n),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
