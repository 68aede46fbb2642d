package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Attribute paths to the loaded providers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, _, err := resolveProviders()
		if err != nil {
			return err
		}

		var unclassified int
		for _, arg := range args {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			matched := false
			for _, p := range providers {
				cls, err := p.Classify(path)
				if err != nil {
					continue
				}
				fmt.Printf("%s: %s (provider %s, base %s)\n", path, cls.Role, p.Name(), cls.Base)
				matched = true
				break
			}
			if !matched {
				fmt.Printf("%s: not part of any provider\n", path)
				unclassified++
			}
		}
		if unclassified > 0 {
			return fmt.Errorf("%d path(s) could not be classified", unclassified)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
