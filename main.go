// =============================================================================
// DXF to XML Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   dxf2xml convert INPUT [OUTPUT]  - Convert one DXF file to XML
//   dxf2xml process                 - Convert every DXF file in the input directory
//   dxf2xml version                 - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : tokenizer, nesting converter, XML writer, config, reports
//   - pkg/        : file handling utilities
//
// =============================================================================

package main

import (
	"github.com/nrnickolov/dxf2xml/cmd"
)

func main() {
	cmd.Execute()
}
