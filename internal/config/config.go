// =============================================================================
// DXF to XML Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. Every
// setting has a default, so the converter also runs without any config file.
//
// EXAMPLE (config.yaml):
//
//   input_dir: ./input
//   output_dir: ./output
//   input_archive_dir: ./input_archive
//   output_name_format: "{name}.xml"
//   log_level: info
//   max_concurrency: 4
//   archive_processed: false
//   archive_timestamp_subdirs: false
//   conversion:
//     max_generic_depth: 2
//     strict: false
//     indent: ""
//     line_ending: crlf
//     debug_stack: false
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS (batch mode)
	// =========================================================================

	// InputDir is scanned for .dxf files by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated XML files in batch mode.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives successfully converted inputs when
	// ArchiveProcessed is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputNameFormat names batch outputs.
	// Placeholders:
	//   {name}      - input file name without extension
	//   {uuid}      - a random UUID
	//   {timestamp} - current time (YYYYMMDD_HHMMSS)
	// Default: "{name}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files converted at once in batch mode.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// StopOnError cancels the remaining batch after the first failed file.
	StopOnError bool `yaml:"stop_on_error"`

	// ArchiveProcessed moves converted inputs into InputArchiveDir.
	ArchiveProcessed bool `yaml:"archive_processed"`

	// ArchiveTimestampSubdirs files archived inputs under YYYY/MM/DD.
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// WriteErrorLogs writes a <output>.errors.txt file next to every output
	// whose conversion reported structural problems.
	WriteErrorLogs bool `yaml:"write_error_logs"`

	// Conversion holds the settings of a single conversion.
	Conversion ConversionConfig `yaml:"conversion"`
}

// ConversionConfig holds the settings that shape a single conversion.
type ConversionConfig struct {
	// MaxGenericDepth is the nesting depth beyond which a new record marker
	// closes the current record instead of nesting inside it.
	// Default: 2
	MaxGenericDepth int `yaml:"max_generic_depth"`

	// Strict fails a conversion that reports any structural problem.
	Strict bool `yaml:"strict"`

	// Indent is repeated once per nesting level in front of each tag.
	Indent string `yaml:"indent"`

	// LineEnding is "crlf", "lf" or "none".
	// Default: "crlf"
	LineEnding string `yaml:"line_ending"`

	// DebugStack writes a <stack> element after each close marker.
	DebugStack bool `yaml:"debug_stack"`
}

// LineEndingString returns the characters for the configured line ending.
func (c ConversionConfig) LineEndingString() string {
	switch c.LineEnding {
	case "lf":
		return "\n"
	case "none":
		return ""
	default:
		return "\r\n"
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault behaves like Load but returns Default() when the file does
// not exist. Any other failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	config, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}.xml"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Conversion.MaxGenericDepth == 0 {
		config.Conversion.MaxGenericDepth = 2
	}
	if config.Conversion.LineEnding == "" {
		config.Conversion.LineEnding = "crlf"
	}
}

// Validate checks option ranges and enumerations.
func Validate(config *Config) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", config.LogLevel)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	if config.Conversion.MaxGenericDepth < 1 {
		return fmt.Errorf("conversion.max_generic_depth must be at least 1, got %d", config.Conversion.MaxGenericDepth)
	}

	switch config.Conversion.LineEnding {
	case "crlf", "lf", "none":
	default:
		return fmt.Errorf("conversion.line_ending must be crlf, lf or none, got %q", config.Conversion.LineEnding)
	}

	return nil
}
