// =============================================================================
// DXF to XML Converter - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   dxf2xml convert INPUT [OUTPUT] [flags]
//
// When OUTPUT is omitted it is derived from INPUT by replacing a trailing
// ".dxf" with ".xml". Flags override the "conversion" section of the config.
//
// FLAGS:
//   --strict        : Fail on any structural problem
//   --max-depth     : Record nesting depth limit
//   --indent        : Indentation string per level
//   --line-ending   : crlf, lf or none
//   --debug-stack   : Write <stack> elements after close markers
//   --pairs-xlsx    : Also export the pair table to this XLSX file
//   --report        : text, yaml or json
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/nrnickolov/dxf2xml/internal/config"
	"github.com/nrnickolov/dxf2xml/internal/converter"
	"github.com/nrnickolov/dxf2xml/internal/report"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	strictFlag     bool
	maxDepthFlag   int
	indentFlag     string
	lineEndingFlag string
	debugStackFlag bool
	pairsXLSXFlag  string
	reportFlag     string
)

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert INPUT [OUTPUT]",
	Short: "Convert a single DXF file to XML",
	Long: `Convert a DXF file to XML.

OUTPUT defaults to INPUT with its trailing .dxf replaced by .xml. If INPUT
does not end in .dxf an explicit OUTPUT is required.

INPUT may also be a pair table written by --pairs-xlsx. A .xlsx INPUT is read
back into pairs and converted like the DXF file it came from.

Structural problems (unmatched ENDSEC/ENDTAB/ENDBLK, sections left open,
an odd trailing line) are reported as warnings. With --strict they fail the
conversion and nothing is written.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.BoolVar(&strictFlag, "strict", false, "Fail on any structural problem")
	flags.IntVar(&maxDepthFlag, "max-depth", 0, "Record nesting depth limit (default from config, 2)")
	flags.StringVar(&indentFlag, "indent", "", "Indentation string repeated per nesting level")
	flags.StringVar(&lineEndingFlag, "line-ending", "", "Line ending: crlf, lf or none (default from config, crlf)")
	flags.BoolVar(&debugStackFlag, "debug-stack", false, "Write <stack> elements after close markers")
	flags.StringVar(&pairsXLSXFlag, "pairs-xlsx", "", "Also export the pair table to this XLSX file")
	flags.StringVar(&reportFlag, "report", "text", "Report format: text, yaml or json")
}

// =============================================================================
// MAIN FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(reportFlag)
	if err != nil {
		return err
	}

	conv, err := conversionFromFlags(cmd, appConfig.Conversion)
	if err != nil {
		return err
	}

	opts := []converter.Option{
		converter.WithOptions(converter.OptionsFromConfig(conv)),
		converter.WithLogger(logger),
		converter.WithPairsXLSX(pairsXLSXFlag),
		converter.WithErrorLog(appConfig.WriteErrorLogs),
	}
	if len(args) == 2 {
		opts = append(opts, converter.WithOutputPath(args[1]))
	}

	result := converter.New(args[0], opts...).Run()

	printer := &report.Printer{Format: format, Writer: cmd.OutOrStdout()}
	if err := printer.Print([]converter.Result{result}); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if !result.Success {
		return result.Error
	}
	return nil
}

// conversionFromFlags applies the flags the user set on top of cfg.
func conversionFromFlags(cmd *cobra.Command, cfg config.ConversionConfig) (config.ConversionConfig, error) {
	flags := cmd.Flags()

	if flags.Changed("strict") {
		cfg.Strict = strictFlag
	}
	if flags.Changed("max-depth") {
		cfg.MaxGenericDepth = maxDepthFlag
	}
	if flags.Changed("indent") {
		cfg.Indent = indentFlag
	}
	if flags.Changed("line-ending") {
		cfg.LineEnding = lineEndingFlag
	}
	if flags.Changed("debug-stack") {
		cfg.DebugStack = debugStackFlag
	}

	check := config.Default()
	check.Conversion = cfg
	if err := config.Validate(check); err != nil {
		return cfg, err
	}
	return cfg, nil
}
