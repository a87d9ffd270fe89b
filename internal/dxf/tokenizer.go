// =============================================================================
// DXF to XML Converter - Tokenizer
// =============================================================================
//
// The tokenizer turns the raw text of a DXF file into pairs:
//   1. Strip a UTF-8 byte order mark
//   2. Normalize line endings to "\n"
//   3. Split into lines (the empty line after a final newline is not a line)
//   4. Pair line 1 with line 2, line 3 with line 4, ...
//
// Codes and values are opaque trimmed strings; nothing is checked against the
// DXF reference. An odd trailing line cannot be paired and is discarded, but
// the tokenizer records it so callers can tell a clean input from a
// truncated one.
//
// =============================================================================

package dxf

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tokenized is the output of the tokenizer.
type Tokenized struct {
	// Pairs is the ordered pair list.
	Pairs []Pair

	// Lines is the number of input lines seen.
	Lines int

	// Truncated is true when the input had an odd number of lines and the
	// last one was discarded.
	Truncated bool

	// DiscardedLine is the 1-based number of the discarded line, when Truncated.
	DiscardedLine int

	// DiscardedText is the trimmed content of the discarded line, when Truncated.
	DiscardedText string
}

// Sequence returns a fresh sequence over the tokenized pairs.
func (t *Tokenized) Sequence() *Sequence {
	return NewSequence(t.Pairs)
}

// Tokenize splits text into group code / value pairs.
func Tokenize(text string) *Tokenized {
	lines := splitLines(text)

	result := &Tokenized{
		Lines: len(lines),
		Pairs: make([]Pair, 0, len(lines)/2),
	}

	if len(lines)%2 != 0 {
		last := len(lines) - 1
		result.Truncated = true
		result.DiscardedLine = last + 1
		result.DiscardedText = strings.TrimSpace(lines[last])
		lines = lines[:last]
	}

	for i := 0; i < len(lines); i += 2 {
		result.Pairs = append(result.Pairs, Pair{
			Code:  strings.TrimSpace(lines[i]),
			Value: strings.TrimSpace(lines[i+1]),
			Line:  i + 1,
		})
	}

	return result
}

// splitLines normalizes line endings and splits text into lines.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")

	// A terminating newline ends the last line; it does not start a new one.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// Read tokenizes everything from r.
func Read(r io.Reader) (*Tokenized, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read DXF input: %w", err)
	}
	return Tokenize(string(data)), nil
}

// ReadFile tokenizes the file at path.
func ReadFile(path string) (*Tokenized, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read DXF file: %w", err)
	}
	return Tokenize(string(data)), nil
}

// Serialize writes pairs back in DXF line format, one "code\nvalue\n" block
// per pair. Tokenize(Serialize(p)).Pairs has the same codes and values as p.
func Serialize(pairs []Pair) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p.Code)
		sb.WriteByte('\n')
		sb.WriteString(p.Value)
		sb.WriteByte('\n')
	}
	return sb.String()
}
