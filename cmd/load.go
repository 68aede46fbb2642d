package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"provkit/internal/provider"
)

var (
	flagValidate bool
	flagStrict   bool
	flagCheck    bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load providers and report what they contain",
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, scanProblems, err := resolveProviders()
		if err != nil {
			return err
		}
		for _, problem := range scanProblems {
			fmt.Fprintf(os.Stderr, "warning: %v\n", problem)
		}

		opts := provider.LoadOptions{
			Validate: flagValidate,
			Strict:   flagStrict,
			Check:    flagCheck,
		}
		start := time.Now()
		var problemCount int
		for _, p := range providers {
			problems := p.Load(opts)
			fmt.Printf("%s\n", p)
			fmt.Printf("  Units:      %d\n", len(p.Units()))
			fmt.Printf("  Jobs:       %d\n", len(p.Jobs()))
			fmt.Printf("  Test plans: %d\n", len(p.TestPlans()))
			fmt.Printf("  Whitelists: %d\n", len(p.WhiteLists()))
			fmt.Printf("  Files:      %d\n", len(p.FileUnits()))
			fmt.Printf("  Problems:   %d\n", len(problems))
			for _, perr := range problems {
				fmt.Fprintf(os.Stderr, "  problem: %v\n", perr)
			}
			problemCount += len(problems)
		}
		fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))

		if problemCount > 0 {
			return fmt.Errorf("%d problem(s) found", problemCount)
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().BoolVar(&flagValidate, "validate", true, "validate unit definitions")
	loadCmd.Flags().BoolVar(&flagStrict, "strict", false, "also report fields that have no effect")
	loadCmd.Flags().BoolVar(&flagCheck, "check", false, "run live checks on unit definitions")
	rootCmd.AddCommand(loadCmd)
}
