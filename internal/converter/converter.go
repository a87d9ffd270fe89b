// =============================================================================
// DXF to XML Converter - Converter Module
// =============================================================================
//
// This module contains the conversion entry points.
//
// CONVERSION PIPELINE (Converter.Run, one file):
//   1. Resolve the output path (drawing.dxf -> drawing.xml)
//   2. Read and tokenize the DXF file (or read an exported .xlsx pair table)
//   3. Rebuild the nesting and generate the XML document
//   4. Optionally export the pair table to XLSX
//   5. Write the output file (and an error log when asked)
//   6. Optionally archive the input
//
// Convert and ConvertTokenized run step 3 alone on text already in memory.
//
// CONCURRENCY:
//   A conversion owns its sequence, frame stack and buffer. Separate
//   Converter values can run in parallel goroutines.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nrnickolov/dxf2xml/internal/config"
	"github.com/nrnickolov/dxf2xml/internal/dxf"
	"github.com/nrnickolov/dxf2xml/internal/validation"
	"github.com/nrnickolov/dxf2xml/internal/xlsxdump"
	"github.com/nrnickolov/dxf2xml/internal/xmlwriter"
	"github.com/nrnickolov/dxf2xml/pkg/utils"
)

// =============================================================================
// IN-MEMORY CONVERSION
// =============================================================================

// Options controls a single conversion.
type Options struct {
	// Nest tunes the nesting rules.
	Nest NestOptions

	// Layout controls line endings and indentation of the document.
	Layout xmlwriter.Options

	// Strict fails the conversion when any structural problem is reported.
	Strict bool
}

// DefaultOptions returns the options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		Nest:   NestOptions{MaxGenericDepth: DefaultMaxGenericDepth},
		Layout: xmlwriter.DefaultOptions(),
	}
}

// OptionsFromConfig maps the conversion section of the configuration to Options.
func OptionsFromConfig(cfg config.ConversionConfig) Options {
	return Options{
		Nest: NestOptions{
			MaxGenericDepth: cfg.MaxGenericDepth,
			Debug:           cfg.DebugStack,
		},
		Layout: xmlwriter.Options{
			LineEnding: cfg.LineEndingString(),
			Indent:     cfg.Indent,
		},
		Strict: cfg.Strict,
	}
}

// Output is the result of an in-memory conversion.
type Output struct {
	// XML is the complete document.
	XML string

	// Pairs is the tokenized input.
	Pairs []dxf.Pair

	// Lines is the number of input lines.
	Lines int

	// Wrappers is the number of wrapper elements in the document.
	Wrappers int

	// MaxDepth is the deepest wrapper nesting in the document.
	MaxDepth int

	// Diagnostics lists the structural problems found.
	Diagnostics *validation.Result
}

// Convert tokenizes text and converts it to XML.
func Convert(text string, opts Options) (*Output, error) {
	return ConvertTokenized(dxf.Tokenize(text), opts)
}

// ConvertTokenized converts an already tokenized input. In strict mode any
// structural problem fails the conversion with an error wrapping
// validation.ErrStructure and no output is returned.
func ConvertTokenized(tok *dxf.Tokenized, opts Options) (*Output, error) {
	w := xmlwriter.New(opts.Layout)

	diagnostics, err := Nest(tok.Sequence(), w, opts.Nest)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}

	if tok.Truncated {
		diagnostics.Add(validation.NewTruncatedInput(tok.DiscardedLine, tok.DiscardedText))
	}

	doc, err := w.Finish()
	if err != nil {
		return nil, fmt.Errorf("failed to finish document: %w", err)
	}

	if opts.Strict {
		if err := diagnostics.Err(); err != nil {
			return nil, err
		}
	}

	return &Output{
		XML:         doc,
		Pairs:       tok.Pairs,
		Lines:       tok.Lines,
		Wrappers:    w.Wrappers(),
		MaxDepth:    w.MaxDepth(),
		Diagnostics: diagnostics,
	}, nil
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// FilePath is the path to the input file.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// Empty if the conversion failed.
	OutputFile string

	// PairsFile is the path of the exported pair table, if one was written.
	PairsFile string

	// ErrorLog is the path of the written error log, if one was written.
	ErrorLog string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Success indicates whether the conversion was successful.
	Success bool

	// Error contains the error if the conversion failed.
	Error error

	// Diagnostics holds the structural problems of a finished conversion.
	Diagnostics []*validation.StructureError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about a conversion.
type ProcessingStats struct {
	Lines          int           `yaml:"lines" json:"lines"`
	Pairs          int           `yaml:"pairs" json:"pairs"`
	Wrappers       int           `yaml:"wrappers" json:"wrappers"`
	MaxDepth       int           `yaml:"max_depth" json:"max_depth"`
	Diagnostics    int           `yaml:"diagnostics" json:"diagnostics"`
	ProcessingTime time.Duration `yaml:"processing_time" json:"processing_time"`
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts one DXF file to an XML file.
type Converter struct {
	inputPath  string
	outputPath string
	pairsPath  string
	options    Options

	writeErrorLog bool
	fileManager   *utils.FileManager

	logger Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithOutputPath sets the output path. Without it the path is derived from
// the input path.
func WithOutputPath(path string) Option {
	return func(c *Converter) { c.outputPath = path }
}

// WithPairsXLSX exports the pair table to path.
func WithPairsXLSX(path string) Option {
	return func(c *Converter) { c.pairsPath = path }
}

// WithOptions sets the conversion options.
func WithOptions(opts Options) Option {
	return func(c *Converter) { c.options = opts }
}

// WithErrorLog writes <output>.errors.txt when diagnostics are reported.
func WithErrorLog(enabled bool) Option {
	return func(c *Converter) { c.writeErrorLog = enabled }
}

// WithArchive moves the input into the file manager's archive after a
// successful conversion.
func WithArchive(fm *utils.FileManager) Option {
	return func(c *Converter) { c.fileManager = fm }
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// New creates a Converter for inputPath.
func New(inputPath string, opts ...Option) *Converter {
	c := &Converter{
		inputPath: inputPath,
		options:   DefaultOptions(),
		logger:    NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{FilePath: c.inputPath}

	// =========================================================================
	// STEP 1: RESOLVE OUTPUT PATH
	// =========================================================================

	outputPath, err := utils.ResolveOutputPath(c.inputPath, c.outputPath)
	if err != nil {
		result.Error = err
		return result
	}

	c.logger.Info("Converting %s -> %s", c.inputPath, outputPath)

	// =========================================================================
	// STEP 2: READ AND TOKENIZE
	// =========================================================================

	tok, err := readInput(c.inputPath)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.Lines = tok.Lines
	result.Stats.Pairs = len(tok.Pairs)
	c.logger.Debug("Read %d lines, %d pairs", tok.Lines, len(tok.Pairs))

	// =========================================================================
	// STEP 3: BUILD THE XML DOCUMENT
	// =========================================================================

	out, err := ConvertTokenized(tok, c.options)
	if err != nil {
		result.Error = fmt.Errorf("failed to convert %s: %w", c.inputPath, err)
		return result
	}

	result.Diagnostics = out.Diagnostics.Errors
	result.Stats.Wrappers = out.Wrappers
	result.Stats.MaxDepth = out.MaxDepth
	result.Stats.Diagnostics = len(out.Diagnostics.Errors)

	for _, d := range out.Diagnostics.Errors {
		c.logger.Warn("%s: %s", c.inputPath, d.Error())
	}

	// =========================================================================
	// STEP 4: EXPORT PAIR TABLE
	// =========================================================================

	if c.pairsPath != "" {
		if err := xlsxdump.WritePairs(c.pairsPath, out.Pairs); err != nil {
			result.Error = err
			return result
		}
		result.PairsFile = c.pairsPath
		c.logger.Debug("Wrote pair table to %s", c.pairsPath)
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	if err := utils.WriteOutputFile(outputPath, []byte(out.XML)); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath

	if c.writeErrorLog && len(result.Diagnostics) > 0 {
		logPath := outputPath + ".errors.txt"
		if err := validation.WriteErrorLog(result.Diagnostics, c.inputPath, logPath); err != nil {
			c.logger.Warn("Failed to write error log: %v", err)
		} else {
			result.ErrorLog = logPath
		}
	}

	// =========================================================================
	// STEP 6: ARCHIVE INPUT
	// =========================================================================

	if c.fileManager != nil {
		archivePath, err := c.fileManager.ArchiveInputFile(c.inputPath)
		if err != nil {
			// The output is already written; archival failure is not fatal.
			c.logger.Warn("Failed to archive %s: %v", c.inputPath, err)
		} else {
			result.ArchivePath = archivePath
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Debug("Finished %s in %s", c.inputPath, result.Stats.ProcessingTime)

	return result
}

// readInput tokenizes a DXF file, or loads the pairs of a table written by
// xlsxdump.WritePairs when path ends in .xlsx.
func readInput(path string) (*dxf.Tokenized, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return dxf.ReadFile(path)
	}

	pairs, err := xlsxdump.ReadPairs(path)
	if err != nil {
		return nil, err
	}
	return &dxf.Tokenized{Pairs: pairs, Lines: 2 * len(pairs)}, nil
}
