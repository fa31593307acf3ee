package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrobook/app"
)

var illustrationsDir string

var illustrationsCmd = &cobra.Command{
	Use:   "illustrations",
	Short: "Manage page illustrations",
}

var illustrationsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download Drive illustrations into a local directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.DriveFolderID == "" {
			return fmt.Errorf("ILLUSTRATIONS_DRIVE_FOLDER_ID is not set")
		}

		dir := illustrationsDir
		if dir == "" {
			dir = cfg.IllustrationsDir
		}
		if dir == "" {
			return fmt.Errorf("--dir or ILLUSTRATIONS_DIR is required")
		}
		// The app must not read from the directory it is about to fill
		cfg.IllustrationsDir = ""

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.SyncService.SyncAll(cmd.Context(), cfg.DriveFolderID, dir)
		if err != nil {
			return err
		}

		log.Info("✅ Illustrations synced",
			zap.Int("downloaded", result.Downloaded),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", len(result.Errors)))
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d illustrations failed to sync", len(result.Errors))
		}
		return nil
	},
}

func init() {
	illustrationsSyncCmd.Flags().StringVar(&illustrationsDir, "dir", "", "Target directory (defaults to ILLUSTRATIONS_DIR)")
	illustrationsCmd.AddCommand(illustrationsSyncCmd)
	rootCmd.AddCommand(illustrationsCmd)
}
