package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/nrnickolov/dxf2xml/internal/converter"
	"github.com/nrnickolov/dxf2xml/internal/validation"
)

func sampleResults() []converter.Result {
	return []converter.Result{
		{
			FilePath:   "in/ok.dxf",
			OutputFile: "out/ok.xml",
			Success:    true,
			Stats:      converter.ProcessingStats{Pairs: 12, Wrappers: 3},
		},
		{
			FilePath:    "in/warn.dxf",
			OutputFile:  "out/warn.xml",
			Success:     true,
			Diagnostics: []*validation.StructureError{validation.NewUnclosedAtEOF(1, "SECTION")},
			Stats:       converter.ProcessingStats{Pairs: 2, Diagnostics: 1},
		},
		{
			FilePath: "in/bad.dxf",
			Error:    errors.New("failed to read DXF file"),
		},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "TEXT": FormatText, "yml": FormatYAML, "yaml": FormatYAML, "json": FormatJSON}
	for name, want := range cases {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestPrintText(t *testing.T) {
	color.NoColor = true

	var sb strings.Builder
	p := &Printer{Format: FormatText, Writer: &sb}
	if err := p.Print(sampleResults()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	out := sb.String()
	for _, want := range []string{
		"✓ ok.dxf -> out/ok.xml (12 pairs)",
		"! warn.dxf -> out/warn.xml (2 pairs, 1 structural problem(s))",
		"line 1: SECTION opened here is never closed",
		"✗ bad.dxf: failed to read DXF file",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintYAML(t *testing.T) {
	var sb strings.Builder
	p := &Printer{Format: FormatYAML, Writer: &sb}
	if err := p.Print(sampleResults()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	out := sb.String()
	for _, want := range []string{"input: in/ok.dxf", "success: true", "kind: unclosed_at_eof", "error: failed to read DXF file"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var sb strings.Builder
	p := &Printer{Format: FormatJSON, Writer: &sb}
	if err := p.Print(sampleResults()); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	var decoded []FileReport
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, sb.String())
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(decoded))
	}
	if decoded[0].Stats.Pairs != 12 || decoded[1].Diagnostics[0].Value != "SECTION" || decoded[2].Success {
		t.Fatalf("unexpected reports %+v", decoded)
	}
}
