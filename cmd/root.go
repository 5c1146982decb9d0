package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/erosionwatch/internal/config"
	"github.com/KaramelBytes/erosionwatch/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

// logger is rebuilt per invocation and tagged with run_id; logOut receives
// its output.
var (
	logger zerolog.Logger = zerolog.Nop()
	logOut io.Writer      = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "erosionwatch",
	Short: "Erosion trend analysis for surveyed monitoring locations",
	Long: `erosionwatch reads survey tables of Y, X and A measurements per location,
flags locations below threshold, fits linear trends to project threshold
crossing dates, and combines the three variables into a composite risk status.`,
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
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.erosionwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if debug {
		lc.Level = "debug"
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		lc.Format = logFormat
	}
	l, err := logging.New(lc, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		l, _ = logging.New(logging.Config{}, logOut)
	}
	logger = l.With().Str("run_id", uuid.NewString()).Logger()
	logger.Debug().Str("config", cfgFile).Msg("configuration loaded")
}

// settings returns the loaded configuration or the defaults when none was loaded.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
