package cmd

import (
	"github.com/spf13/cobra"

	"provkit/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse loaded units interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

func runBrowse() error {
	providers, _, err := resolveProviders()
	if err != nil {
		return err
	}
	return tui.Run(tui.Config{Providers: providers})
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
