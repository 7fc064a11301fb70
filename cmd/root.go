package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/brettadin/Anything-SpecApp/internal/config"
	"github.com/brettadin/Anything-SpecApp/internal/logging"
	"github.com/brettadin/Anything-SpecApp/internal/parser"
	"github.com/brettadin/Anything-SpecApp/internal/store"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = logging.NewDefaultLogger()
)

var rootCmd = &cobra.Command{
	Use:   "specapp",
	Short: "specapp: ingest and analyze messy scientific tabular and spectral files",
	Long: `specapp classifies CSV, TSV, JSON, JCAMP-DX and spreadsheet files without hints,
extracts spectral metadata, stores the normalized datasets locally and runs
spectral analyses (FFT, peaks, baseline, smoothing, normalization, statistics).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.specapp/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		level = logging.InfoLevel
	}
	if debug {
		level = logging.DebugLevel
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// parserOptions returns the configured ingestion options with the CLI logger.
func parserOptions() (parser.Options, error) {
	c, err := requireConfig()
	if err != nil {
		return parser.Options{}, err
	}
	opt := c.ParserOptions()
	opt.Logger = logger
	return opt, nil
}

func openStore() (*store.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(c.StorePath)
}
