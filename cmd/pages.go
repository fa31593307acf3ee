package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"astrobook/models"
	"astrobook/repository"
)

var pagesCmd = &cobra.Command{
	Use:   "pages [scope]",
	Short: "Print the page numbers and templates of a scope",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := repository.DefaultCatalog()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			summary := catalog.Summary()
			fmt.Fprintf(out, "%d pages\n", summary.TotalPages)
			names := make([]string, 0, len(summary.Scopes))
			for name := range summary.Scopes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%-10s %d pages\n", name, len(summary.Scopes[name]))
			}
			return nil
		}

		scope, err := models.ParseScope(args[0])
		if err != nil {
			return err
		}
		set, err := catalog.GetAvailablePages(scope)
		if err != nil {
			return err
		}
		for i, n := range set {
			page, err := catalog.GetPage(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%3d  page %-3d %s\n", i+1, n, page.TemplateID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
