// =============================================================================
// DXF to XML Converter - Conversion Reports
// =============================================================================
//
// Renders the outcome of one or more conversions for the terminal:
//   - text : coloured one-line status per file plus diagnostics
//   - yaml : machine-readable summary (gopkg.in/yaml.v3)
//   - json : machine-readable summary (encoding/json)
//
// =============================================================================

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/nrnickolov/dxf2xml/internal/converter"
	"gopkg.in/yaml.v3"
)

// Format is a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatText, "":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (use text, yaml or json)", name)
	}
}

// FileReport is the serializable form of converter.Result.
type FileReport struct {
	Input       string                    `yaml:"input" json:"input"`
	Output      string                    `yaml:"output,omitempty" json:"output,omitempty"`
	PairsFile   string                    `yaml:"pairs_file,omitempty" json:"pairs_file,omitempty"`
	ErrorLog    string                    `yaml:"error_log,omitempty" json:"error_log,omitempty"`
	Archived    string                    `yaml:"archived,omitempty" json:"archived,omitempty"`
	Success     bool                      `yaml:"success" json:"success"`
	Error       string                    `yaml:"error,omitempty" json:"error,omitempty"`
	Stats       converter.ProcessingStats `yaml:"stats" json:"stats"`
	Diagnostics []Diagnostic              `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// Diagnostic is the serializable form of validation.StructureError.
type Diagnostic struct {
	Kind    string `yaml:"kind" json:"kind"`
	Line    int    `yaml:"line,omitempty" json:"line,omitempty"`
	Value   string `yaml:"value,omitempty" json:"value,omitempty"`
	Message string `yaml:"message" json:"message"`
}

// FromResult converts a converter result to a report entry.
func FromResult(r converter.Result) FileReport {
	fr := FileReport{
		Input:     r.FilePath,
		Output:    r.OutputFile,
		PairsFile: r.PairsFile,
		ErrorLog:  r.ErrorLog,
		Archived:  r.ArchivePath,
		Success:   r.Success,
		Stats:     r.Stats,
	}
	if r.Error != nil {
		fr.Error = r.Error.Error()
	}
	for _, d := range r.Diagnostics {
		fr.Diagnostics = append(fr.Diagnostics, Diagnostic{
			Kind:    string(d.Kind),
			Line:    d.Line,
			Value:   d.Value,
			Message: d.Message,
		})
	}
	return fr
}

// Printer writes reports in one format.
type Printer struct {
	Format Format
	Writer io.Writer
}

// Print writes the reports for results.
func (p *Printer) Print(results []converter.Result) error {
	reports := make([]FileReport, len(results))
	for i, r := range results {
		reports[i] = FromResult(r)
	}

	switch p.Format {
	case FormatYAML:
		encoder := yaml.NewEncoder(p.Writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(reports); err != nil {
			return err
		}
		return encoder.Close()
	case FormatJSON:
		encoder := json.NewEncoder(p.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	default:
		for _, r := range reports {
			p.printText(r)
		}
		return nil
	}
}

func (p *Printer) printText(r FileReport) {
	name := filepath.Base(r.Input)

	switch {
	case !r.Success:
		fmt.Fprintf(p.Writer, "  %s %s: %s\n", color.RedString("✗"), name, r.Error)
	case len(r.Diagnostics) > 0:
		fmt.Fprintf(p.Writer, "  %s %s -> %s (%d pairs, %d structural problem(s))\n",
			color.YellowString("!"), name, r.Output, r.Stats.Pairs, len(r.Diagnostics))
	default:
		fmt.Fprintf(p.Writer, "  %s %s -> %s (%d pairs)\n",
			color.GreenString("✓"), name, r.Output, r.Stats.Pairs)
	}

	for _, d := range r.Diagnostics {
		if d.Line > 0 {
			fmt.Fprintf(p.Writer, "      line %d: %s\n", d.Line, d.Message)
		} else {
			fmt.Fprintf(p.Writer, "      %s\n", d.Message)
		}
	}
}
