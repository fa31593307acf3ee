package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrobook/config"
	"astrobook/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "astrobook",
	Short: "Assemble personalized astrology books as an interactive viewer or a PDF",
	// Default to serving, like running the bare binary in a container
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded outside production")
}

// bootstrap loads configuration and builds the logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	loaded, err := config.LoadDotEnv(envFile)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	if loaded {
		log.Info("✓ Loaded environment variables (overriding system variables)", zap.String("path", envFile))
	}
	return cfg, log, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
