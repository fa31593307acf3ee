package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astrobook/app"
	"astrobook/models"
)

var (
	exportScope    string
	exportUserFile string
	exportUserID   string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a personalized book PDF",
	Example: `  astrobook export --user user.json --scope sample
  astrobook export --user-id 42 --scope 1,5,41 --out book.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (exportUserFile == "") == (exportUserID == "") {
			return fmt.Errorf("exactly one of --user or --user-id is required")
		}

		scope, err := models.ParseScope(exportScope)
		if err != nil {
			return err
		}

		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		var user models.UserData
		if exportUserFile != "" {
			if user, err = readUserFile(exportUserFile); err != nil {
				return err
			}
		} else {
			if a.Users == nil {
				return models.ErrUserStoreUnavailable
			}
			if user, err = a.Users.GetByUserID(ctx, exportUserID); err != nil {
				return err
			}
		}

		result, err := a.Books.GeneratePDF(ctx, scope, user)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = result.Filename
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(out, result.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		log.Info("✅ PDF written", zap.String("path", out), zap.Int("pages", result.Pages))
		return nil
	},
}

func readUserFile(path string) (models.UserData, error) {
	var user models.UserData
	data, err := os.ReadFile(path)
	if err != nil {
		return user, fmt.Errorf("failed to read user file: %w", err)
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return user, fmt.Errorf("failed to parse user file %s: %w", path, err)
	}
	return user, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportScope, "scope", "all", "Scope name or page list (e.g. preview, 1,5,41, 1-4)")
	exportCmd.Flags().StringVar(&exportUserFile, "user", "", "Path to a JSON file with the user data")
	exportCmd.Flags().StringVar(&exportUserID, "user-id", "", "Load the user data from the database")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (defaults to the generated file name)")
	rootCmd.AddCommand(exportCmd)
}
