// =============================================================================
// DXF to XML Converter - XLSX Pair Table
// =============================================================================
//
// Writes the tokenized pair sequence to a spreadsheet so a DXF file can be
// inspected, filtered and sorted in a spreadsheet program next to its XML.
//
// SHEET LAYOUT ("Pairs"):
//
//   | Line | Group Code | Value   | Role         |
//   |------|------------|---------|--------------|
//   | 1    | 0          | SECTION | open_marker  |
//   | 3    | 2          | HEADER  | value        |
//   | ...  |            |         |              |
//   | 9    | 0          | ENDSEC  | close_marker |
//
// ReadPairs reads the Line, Group Code and Value columns back.
//
// =============================================================================

package xlsxdump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nrnickolov/dxf2xml/internal/dxf"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the pair sheet.
const SheetName = "Pairs"

// Header is the first row of the pair sheet.
var Header = []interface{}{"Line", "Group Code", "Value", "Role"}

// Role classifies a pair the way the nesting converter sees it.
func Role(p dxf.Pair) string {
	switch {
	case p.IsCloseMarker():
		return "close_marker"
	case p.IsEntitiesMarker():
		return "entities"
	case p.IsOpenMarker():
		return "open_marker"
	default:
		return "value"
	}
}

// WritePairs saves pairs as an XLSX workbook at path.
func WritePairs(path string, pairs []dxf.Pair) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, p := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.Line, p.Code, p.Value, Role(p)}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write pair %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "C", "C", 40); err != nil {
		return fmt.Errorf("failed to size value column: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save pair table: %w", err)
	}
	return nil
}

// ReadPairs loads the pairs saved by WritePairs.
func ReadPairs(path string) ([]dxf.Pair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pair table: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	pairs := make([]dxf.Pair, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		// GetRows drops trailing empty cells, so short rows are normal.
		cell := func(col int) string {
			if col < len(row) {
				return row[col]
			}
			return ""
		}

		var line int
		if text := strings.TrimSpace(cell(0)); text != "" {
			line, err = strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid line number %q", i+1, text)
			}
		}

		pairs = append(pairs, dxf.Pair{
			Line:  line,
			Code:  cell(1),
			Value: cell(2),
		})
	}

	return pairs, nil
}
