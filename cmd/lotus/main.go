package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/lotus-engine/internal/config"
)

// #region main

func main() {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "lotus",
		Short:         "Procedural life-event engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			loaded, err := config.Load(config.New())
			if err != nil {
				return err
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
			return nil
		},
	}

	rootCmd.AddCommand(
		newGenerateCommand(&cfg),
		newPlayCommand(&cfg),
		newReplayCommand(&cfg),
		newCatalogCommand(&cfg),
		newServeCommand(&cfg),
		newRemoteCommand(&cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main
