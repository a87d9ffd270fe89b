// =============================================================================
// DXF to XML Converter - XML Writer Module
// =============================================================================
//
// This module builds the output document. The converter drives it one tag at
// a time while it walks the pair sequence, so the writer is an append-only
// buffer that only knows about open wrappers, not about DXF.
//
// XML STRUCTURE:
//
//   <xml>
//   <section>                  <!-- wrapper: lower-cased marker value -->
//   <key_0>SECTION</key_0>     <!-- flat tag: key_<group code> -->
//   <key_2>HEADER</key_2>
//   ...
//   <key_0>ENDSEC</key_0>
//   </section>
//   </xml>
//
// There is no XML declaration and no attributes. Every tag starts on a new
// line (LineEnding, "\r\n" by default) and may be indented by depth.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RootElement is the document element.
const RootElement = "xml"

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls the layout of the generated document.
type Options struct {
	// LineEnding is written before every tag after the root open tag.
	// An empty string produces a single-line document.
	// Default: "\r\n"
	LineEnding string

	// Indent is repeated once per nesting level in front of each tag.
	// Default: "" (no indentation)
	Indent string
}

// DefaultOptions returns the layout the converter has always produced.
func DefaultOptions() Options {
	return Options{
		LineEnding: "\r\n",
		Indent:     "",
	}
}

// =============================================================================
// WRITER
// =============================================================================

// Writer is an append-only XML document builder.
type Writer struct {
	buffer   bytes.Buffer
	options  Options
	open     []string
	finished bool

	wrappers int
	flats    int
	maxDepth int
}

// New creates a writer and writes the root open tag.
func New(options Options) *Writer {
	w := &Writer{options: options}
	w.buffer.WriteString("<" + RootElement + ">")
	return w
}

// Open writes a wrapper open tag and makes it the innermost open element.
func (w *Writer) Open(name string) {
	name = SafeName(name)
	w.newline(len(w.open) + 1)
	w.buffer.WriteString("<" + name + ">")

	w.open = append(w.open, name)
	w.wrappers++
	if len(w.open) > w.maxDepth {
		w.maxDepth = len(w.open)
	}
}

// Leaf writes an element with escaped text content.
func (w *Writer) Leaf(name, value string) {
	name = SafeName(name)
	w.newline(len(w.open) + 1)
	w.buffer.WriteString("<" + name + ">")
	w.buffer.WriteString(EscapeText(value))
	w.buffer.WriteString("</" + name + ">")
	w.flats++
}

// Close writes the close tag of the innermost open wrapper. name must match it.
func (w *Writer) Close(name string) error {
	name = SafeName(name)
	if len(w.open) == 0 {
		return fmt.Errorf("close </%s> with no open element", name)
	}
	top := w.open[len(w.open)-1]
	if top != name {
		return fmt.Errorf("close </%s> while <%s> is open", name, top)
	}

	w.open = w.open[:len(w.open)-1]
	w.newline(len(w.open) + 1)
	w.buffer.WriteString("</" + name + ">")
	return nil
}

// Depth returns the number of open wrappers (the root is not counted).
func (w *Writer) Depth() int {
	return len(w.open)
}

// Finish writes the root close tag and returns the document.
// It fails if any wrapper is still open.
func (w *Writer) Finish() (string, error) {
	if len(w.open) > 0 {
		return "", fmt.Errorf("document finished with %d open element(s): %s",
			len(w.open), strings.Join(w.open, " > "))
	}
	if !w.finished {
		w.newline(0)
		w.buffer.WriteString("</" + RootElement + ">")
		w.finished = true
	}
	return w.buffer.String(), nil
}

// Wrappers returns the number of wrapper elements opened so far.
func (w *Writer) Wrappers() int { return w.wrappers }

// Flats returns the number of flat elements written so far.
func (w *Writer) Flats() int { return w.flats }

// MaxDepth returns the deepest wrapper nesting reached.
func (w *Writer) MaxDepth() int { return w.maxDepth }

func (w *Writer) newline(level int) {
	w.buffer.WriteString(w.options.LineEnding)
	if w.options.Indent == "" {
		return
	}
	for i := 0; i < level; i++ {
		w.buffer.WriteString(w.options.Indent)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// EscapeText escapes special characters for XML. Characters XML does not allow
// (C0 controls other than tab, invalid UTF-8 bytes, U+FFFE/U+FFFF) are replaced
// with U+FFFD.
func EscapeText(s string) string {
	var buffer bytes.Buffer
	for _, r := range s {
		switch {
		case r == '&':
			buffer.WriteString("&amp;")
		case r == '<':
			buffer.WriteString("&lt;")
		case r == '>':
			buffer.WriteString("&gt;")
		case r == '"':
			buffer.WriteString("&quot;")
		case r == '\'':
			buffer.WriteString("&apos;")
		case !isXMLChar(r):
			buffer.WriteRune(utf8.RuneError)
		default:
			buffer.WriteRune(r)
		}
	}
	return buffer.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production. Ranging over
// invalid UTF-8 yields utf8.RuneError, which is allowed and so passes through
// as U+FFFD.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// SafeName turns s into a valid XML element name. Characters outside
// letters, digits, '_', '-' and '.' become '_', and a name that does not
// start with a letter or '_' gets a '_' prefix ("3dface" -> "_3dface").
func SafeName(s string) string {
	if s == "" {
		return "_"
	}

	var sb strings.Builder
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			sb.WriteByte('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
