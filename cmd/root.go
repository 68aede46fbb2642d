package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"provkit/internal/provider"
)

var (
	flagProviderDefs []string
	flagSearchPath   []string
	flagDebug        bool
	flagQuiet        bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "provkit",
	Short: "Inspect, validate and catalog test providers",
	Long: `provkit works with providers: namespaced directory trees that hold
test definitions, selection lists, data files and executables.

It loads provider content into typed units, reports anything broken
without giving up on the rest, and can keep a queryable catalog of
everything it found.

Run without arguments to browse loaded units interactively.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// the browser draws its own UI, keep logs out of it
		if cmd.Name() == "browse" || cmd.Name() == "provkit" {
			logger = zap.NewNop()
			return nil
		}
		config := zap.NewProductionConfig()
		if flagDebug {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if flagQuiet {
			config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&flagProviderDefs, "provider", nil, "path to a .provider definition file (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&flagSearchPath, "search-path", nil, "directories scanned for .provider files (default: system locations)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "only log errors")
}

// resolveProviders turns the global flags into providers: explicit
// --provider definitions win, then --search-path, then the system
// locations. Providers from system locations count as secure. An
// explicitly named definition that fails to load is an error, not a
// problem.
func resolveProviders() ([]*provider.Provider, []error, error) {
	if len(flagProviderDefs) > 0 {
		var providers []*provider.Provider
		for _, path := range flagProviderDefs {
			def, err := provider.LoadDefinition(path)
			if err != nil {
				return nil, nil, err
			}
			p, err := provider.New(def, provider.WithLogger(logger))
			if err != nil {
				return nil, nil, err
			}
			providers = append(providers, p)
		}
		return providers, nil, nil
	}
	searchPath := flagSearchPath
	secure := false
	if len(searchPath) == 0 {
		searchPath = provider.DefaultSearchPath()
		secure = true
	}
	providers, problems := provider.Scan(searchPath,
		provider.WithLogger(logger), provider.WithSecure(secure))
	if len(providers) == 0 && len(problems) == 0 {
		return nil, nil, fmt.Errorf("no providers found (searched %s)", strings.Join(searchPath, ", "))
	}
	return providers, problems, nil
}
