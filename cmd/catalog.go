package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"provkit/internal/catalog"
	"provkit/internal/provider"
)

var flagCatalogDB string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain a queryable database of provider content",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Store loaded provider content in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, scanProblems, err := resolveProviders()
		if err != nil {
			return err
		}
		for _, problem := range scanProblems {
			fmt.Fprintf(os.Stderr, "warning: %v\n", problem)
		}

		dbPath, err := catalogPath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
		cat, err := catalog.Open(dbPath)
		if err != nil {
			return err
		}
		defer cat.Close()

		for _, p := range providers {
			p.Load(provider.DefaultLoadOptions())
			res, err := cat.SyncProvider(p)
			if err != nil {
				return fmt.Errorf("sync %s: %w", p.Name(), err)
			}
			state := "synced"
			if res.Unchanged {
				state = "unchanged"
			}
			fmt.Printf("%s: %s (%d units, %d files, %d problems)\n",
				p.Name(), state, res.Units, res.Files, res.Problems)
		}
		return nil
	},
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the catalog holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := catalogPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found at %s\nRun 'provkit catalog sync' first to build it", dbPath)
		}
		cat, err := catalog.Open(dbPath)
		if err != nil {
			return err
		}
		defer cat.Close()

		records, err := cat.Providers()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("The catalog is empty.")
			return nil
		}
		for _, pr := range records {
			units, err := cat.Units(catalog.UnitFilter{Provider: pr.Name})
			if err != nil {
				return err
			}
			files, err := cat.Files(pr.Name)
			if err != nil {
				return err
			}
			problems, err := cat.Problems(pr.Name)
			if err != nil {
				return err
			}
			fmt.Printf("%s, version %s\n", pr.Name, pr.Version)
			fmt.Printf("  Units: %d  Files: %d  Problems: %d  Synced: %s\n",
				len(units), len(files), len(problems), pr.SyncedAt.Local().Format(time.RFC3339))
			for _, prob := range problems {
				fmt.Printf("  problem: %s\n", prob.Message)
			}
		}
		return nil
	},
}

var (
	flagCatalogKind     string
	flagCatalogProvider string
)

var catalogUnitsCmd = &cobra.Command{
	Use:   "units [id]",
	Short: "Query units stored in the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := catalogPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found at %s\nRun 'provkit catalog sync' first to build it", dbPath)
		}
		cat, err := catalog.Open(dbPath)
		if err != nil {
			return err
		}
		defer cat.Close()

		filter := catalog.UnitFilter{Provider: flagCatalogProvider, Kind: flagCatalogKind}
		if len(args) == 1 {
			filter.UnitID = args[0]
		}
		units, err := cat.Units(filter)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			if len(args) == 1 {
				return fmt.Errorf("no unit with id %q in the catalog", args[0])
			}
			fmt.Println("The catalog holds no matching units.")
			return nil
		}
		for _, u := range units {
			if len(args) == 1 {
				fmt.Printf("# %s unit stored from %s\n", u.Kind, u.Origin)
				fmt.Print(u.Definition)
				continue
			}
			label := u.UnitID
			if label == "" {
				label = u.Origin
			}
			fmt.Printf("%-10s %s\n", u.Kind, label)
		}
		return nil
	},
}

var catalogDropCmd = &cobra.Command{
	Use:   "drop <provider-name>",
	Short: "Remove one provider snapshot from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := catalogPath()
		if err != nil {
			return err
		}
		cat, err := catalog.Open(dbPath)
		if err != nil {
			return err
		}
		defer cat.Close()
		if err := cat.DeleteProvider(args[0]); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Printf("Dropped %s\n", args[0])
		return nil
	},
}

// catalogPath resolves the database location, defaulting to
// <working dir>/.provkit/catalog.db.
func catalogPath() (string, error) {
	if flagCatalogDB != "" {
		return flagCatalogDB, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, ".provkit", "catalog.db"), nil
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&flagCatalogDB, "db", "", "database path (default <working dir>/.provkit/catalog.db)")
	catalogUnitsCmd.Flags().StringVar(&flagCatalogKind, "kind", "", "only this unit kind")
	catalogUnitsCmd.Flags().StringVar(&flagCatalogProvider, "provider", "", "only this provider's units")
	catalogCmd.AddCommand(catalogSyncCmd)
	catalogCmd.AddCommand(catalogInfoCmd)
	catalogCmd.AddCommand(catalogUnitsCmd)
	catalogCmd.AddCommand(catalogDropCmd)
	rootCmd.AddCommand(catalogCmd)
}
