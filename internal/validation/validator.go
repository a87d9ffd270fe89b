// =============================================================================
// DXF to XML Converter - Structural Validation
// =============================================================================
//
// DXF nesting is implicit, so a file can violate the grouping convention the
// converter relies on without any syntax error. This module names those
// violations and decides whether a conversion that hit them still counts.
//
// ERROR KINDS:
//   - truncated_input  : odd number of lines, last line discarded
//   - unmatched_close  : ENDSEC/ENDTAB/ENDBLK (or unknown END...) with no open level to close
//   - implicit_close   : SECTION/TABLE/BLOCK ended by another marker instead of its own closer
//   - unclosed_at_eof  : SECTION/TABLE/BLOCK still open when the input ended
//
// ERROR HANDLING:
//   - Diagnostics are collected during conversion, never thrown
//   - Lenient mode returns them next to the document
//   - Strict mode turns any diagnostic into an error wrapping ErrStructure
//
// =============================================================================

package validation

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrStructure is wrapped by every error produced from structural diagnostics.
var ErrStructure = errors.New("unbalanced DXF structure")

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind classifies a structural diagnostic.
type Kind string

const (
	// KindTruncatedInput marks an odd trailing line that could not be paired.
	KindTruncatedInput Kind = "truncated_input"

	// KindUnmatchedClose marks a close marker with no open level it could close.
	KindUnmatchedClose Kind = "unmatched_close"

	// KindImplicitClose marks a section, table or block that was ended by the
	// close marker of an enclosing level, or by a new marker that could not nest
	// inside it, instead of its own close marker.
	KindImplicitClose Kind = "implicit_close"

	// KindUnclosedAtEOF marks a section, table or block left open at end of input.
	KindUnclosedAtEOF Kind = "unclosed_at_eof"
)

// =============================================================================
// STRUCTURE ERROR
// =============================================================================

// StructureError describes a single structural problem in the input.
type StructureError struct {
	// Kind is the diagnostic class.
	Kind Kind

	// Line is the 1-based input line the problem was found at (0 at end of input).
	Line int

	// Code is the group code of the offending pair, if any.
	Code string

	// Value is the value of the offending pair, if any.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, ErrStructure) match any StructureError.
func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}

// NewTruncatedInput reports the discarded odd trailing line.
func NewTruncatedInput(line int, text string) *StructureError {
	return &StructureError{
		Kind:    KindTruncatedInput,
		Line:    line,
		Value:   text,
		Message: fmt.Sprintf("odd number of lines, unpaired last line %q discarded", text),
	}
}

// NewUnmatchedClose reports a close marker that no open level accepts.
func NewUnmatchedClose(line int, code, value string) *StructureError {
	return &StructureError{
		Kind:    KindUnmatchedClose,
		Line:    line,
		Code:    code,
		Value:   value,
		Message: fmt.Sprintf("close marker %s has no matching open level", value),
	}
}

// NewImplicitClose reports a level of the given kind, opened at openedAt,
// that was ended by the marker closeValue found at line.
func NewImplicitClose(line int, closeValue string, openedAt int, kind string) *StructureError {
	return &StructureError{
		Kind:    KindImplicitClose,
		Line:    line,
		Code:    "0",
		Value:   closeValue,
		Message: fmt.Sprintf("%s opened at line %d closed by %s without its own close marker", kind, openedAt, closeValue),
	}
}

// NewUnclosedAtEOF reports a level still open when the input ran out.
// openedAt is the line of the marker that opened it.
func NewUnclosedAtEOF(openedAt int, kind string) *StructureError {
	return &StructureError{
		Kind:    KindUnclosedAtEOF,
		Line:    openedAt,
		Value:   kind,
		Message: fmt.Sprintf("%s opened here is never closed", kind),
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result collects the diagnostics of one conversion.
type Result struct {
	// Errors contains every diagnostic in the order found.
	Errors []*StructureError
}

// Add appends a diagnostic.
func (r *Result) Add(err *StructureError) {
	r.Errors = append(r.Errors, err)
}

// IsValid is true when no diagnostic was recorded.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Count returns the number of diagnostics of the given kind.
func (r *Result) Count(kind Kind) int {
	n := 0
	for _, e := range r.Errors {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns nil for a clean result. Otherwise it returns an error wrapping
// ErrStructure that lists every diagnostic.
func (r *Result) Err() error {
	if r.IsValid() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return fmt.Errorf("%w: %d problems\n%s", ErrStructure, len(r.Errors), FormatErrors(r.Errors))
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats diagnostics as a numbered list.
func FormatErrors(errs []*StructureError) string {
	if len(errs) == 0 {
		return "No structural errors."
	}

	var builder strings.Builder
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// WriteErrorLog writes diagnostics for sourceFile to filePath.
func WriteErrorLog(errs []*StructureError, sourceFile, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "DXF to XML Converter - Structural Errors\n")
	fmt.Fprintf(writer, "Source:    %s\n", sourceFile)
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Total:     %d\n\n", len(errs))
	writer.WriteString(FormatErrors(errs))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush error log: %w", err)
	}
	return nil
}
