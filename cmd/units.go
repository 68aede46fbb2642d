package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provkit/internal/provider"
	"provkit/internal/rfc822"
	"provkit/internal/unit"
)

var (
	flagKind        string
	flagWithVirtual bool
	flagUnitsJSON   bool
)

var unitsCmd = &cobra.Command{
	Use:   "units [id]",
	Short: "List loaded units, or show one in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, scanProblems, err := resolveProviders()
		if err != nil {
			return err
		}
		for _, problem := range scanProblems {
			fmt.Fprintf(os.Stderr, "warning: %v\n", problem)
		}

		if len(args) == 1 {
			return showUnit(providers, args[0])
		}
		if flagUnitsJSON {
			return printUnitsJSON(providers)
		}

		for _, p := range providers {
			fmt.Printf("%s\n", p)
			for _, u := range p.Units() {
				if !listedUnit(u) {
					continue
				}
				fmt.Printf("  %-10s %s\n", u.Kind(), u)
			}
		}
		return nil
	},
}

func listedUnit(u unit.Unit) bool {
	if flagKind != "" && u.Kind() != flagKind {
		return false
	}
	if u.Virtual() && !flagWithVirtual {
		return false
	}
	return true
}

// unitRow is the JSON shape of one listed unit.
type unitRow struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
	ID       string `json:"id,omitempty"`
	Path     string `json:"path,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Origin   string `json:"origin"`
	Virtual  bool   `json:"virtual,omitempty"`
}

func printUnitsJSON(providers []*provider.Provider) error {
	rows := []unitRow{}
	for _, p := range providers {
		for _, u := range p.Units() {
			if !listedUnit(u) {
				continue
			}
			rows = append(rows, unitRow{
				Provider: p.Name(),
				Kind:     u.Kind(),
				ID:       u.ID(),
				Path:     u.Get(unit.FieldPath),
				Summary:  u.Get(unit.FieldSummary),
				Origin:   u.Origin().String(),
				Virtual:  u.Virtual(),
			})
		}
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func showUnit(providers []*provider.Provider, id string) error {
	found := false
	for _, p := range providers {
		for _, u := range p.UnitsByID(id) {
			fmt.Printf("# %s unit at %s (provider %s)\n", u.Kind(), u.Origin(), p.Name())
			if err := rfc822.Write(os.Stdout, u.Record()); err != nil {
				return err
			}
			found = true
		}
	}
	if !found {
		return fmt.Errorf("no unit with id %q (run 'provkit units' to list known ids)", id)
	}
	return nil
}

func init() {
	unitsCmd.Flags().StringVar(&flagKind, "kind", "", "only list units of this kind (job, category, test plan, file)")
	unitsCmd.Flags().BoolVar(&flagWithVirtual, "with-virtual", false, "also list virtual units")
	unitsCmd.Flags().BoolVar(&flagUnitsJSON, "json", false, "print the listing as JSON")
	rootCmd.AddCommand(unitsCmd)
}
