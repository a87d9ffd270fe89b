// =============================================================================
// DXF to XML Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI.
//
// COBRA CLI STRUCTURE:
//   rootCmd (dxf2xml)
//   ├── convertCmd (dxf2xml convert INPUT [OUTPUT])
//   ├── processCmd (dxf2xml process)
//   └── versionCmd (dxf2xml version)
//
// The root command owns the global flags (--config, --verbose) and loads the
// configuration before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/nrnickolov/dxf2xml/internal/config"
	"github.com/nrnickolov/dxf2xml/internal/converter"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// appConfig is the loaded configuration, set by PersistentPreRunE.
var appConfig *config.Config

// logger is shared by all commands, set by PersistentPreRunE.
var logger converter.Logger = converter.NopLogger()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dxf2xml",
	Short: "DXF to XML Converter - inspect DXF drawings as nested XML",
	Long: `dxf2xml converts DXF files (alternating group code / value lines) into XML.

DXF has no explicit nesting. dxf2xml rebuilds it from the marker pairs
(SECTION/ENDSEC, TABLE/ENDTAB, BLOCK/ENDBLK, ENTITIES and record markers)
so the result can be browsed and searched in any XML viewer.

Example Usage:
  dxf2xml convert drawing.dxf             # writes drawing.xml
  dxf2xml convert drawing.dxf out.xml     # explicit output path
  dxf2xml process --config ./my.yaml      # convert every .dxf in input_dir`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		appConfig = cfg

		level := converter.ParseLevel(cfg.LogLevel)
		if verbose {
			level = converter.LevelDebug
		}
		logger = converter.NewLogger(cmd.ErrOrStderr(), level)
		logger.Debug("Configuration loaded (log level %s)", cfg.LogLevel)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// loadConfig reads --config. The default path may be missing; an explicit
// one must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
