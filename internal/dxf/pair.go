// =============================================================================
// DXF to XML Converter - Pair Sequence
// =============================================================================
//
// A DXF file is a flat list of (group code, value) pairs. Structure is never
// explicit: it is inferred from marker pairs by the nesting converter, which
// reads the sequence front to back and occasionally hands a pair back so an
// enclosing level can read it again.
//
// =============================================================================

package dxf

import "strings"

// Group codes with structural meaning.
const (
	// CodeMarker is the group code of record-type markers (SECTION, LINE, ENDSEC).
	CodeMarker = "0"

	// CodeName is the group code that carries a section name (ENTITIES, HEADER).
	CodeName = "2"
)

// Pair is a single group code / value pair.
type Pair struct {
	// Code is the trimmed group code line.
	Code string

	// Value is the trimmed value line.
	Value string

	// Line is the 1-based line number of the group code in the input.
	// Zero when the pair was not produced by the tokenizer.
	Line int
}

// IsMarker reports whether the pair is a record-type marker (group code 0).
func (p Pair) IsMarker() bool {
	return p.Code == CodeMarker
}

// IsCloseMarker reports whether the pair closes a structural level (0/END...).
func (p Pair) IsCloseMarker() bool {
	return p.IsMarker() && strings.HasPrefix(p.Value, "END")
}

// IsOpenMarker reports whether the pair starts a new record: group code 0 with
// a non-empty, fully upper-case value that is not a close marker.
func (p Pair) IsOpenMarker() bool {
	if !p.IsMarker() || p.Value == "" || p.IsCloseMarker() {
		return false
	}
	return p.Value == strings.ToUpper(p.Value)
}

// IsEntitiesMarker reports whether the pair names the ENTITIES section (2/ENTITIES).
func (p Pair) IsEntitiesMarker() bool {
	return p.Code == CodeName && p.Value == "ENTITIES"
}

// =============================================================================
// SEQUENCE
// =============================================================================

// Sequence is a queue of pairs consumed from the front with single-pair
// push back. It is not safe for concurrent use.
type Sequence struct {
	pairs   []Pair
	pos     int
	pending *Pair
}

// NewSequence creates a sequence over pairs. The slice is not copied.
func NewSequence(pairs []Pair) *Sequence {
	return &Sequence{pairs: pairs}
}

// Next removes and returns the front pair. ok is false once the sequence is drained.
func (s *Sequence) Next() (p Pair, ok bool) {
	if s.pending != nil {
		p = *s.pending
		s.pending = nil
		return p, true
	}
	if s.pos >= len(s.pairs) {
		return Pair{}, false
	}
	p = s.pairs[s.pos]
	s.pos++
	return p, true
}

// Peek returns the front pair without consuming it.
func (s *Sequence) Peek() (Pair, bool) {
	if s.pending != nil {
		return *s.pending, true
	}
	if s.pos >= len(s.pairs) {
		return Pair{}, false
	}
	return s.pairs[s.pos], true
}

// PushBack returns p to the front of the sequence. Only one pair may be pushed
// back before it is consumed again; a second push back panics.
func (s *Sequence) PushBack(p Pair) {
	if s.pending != nil {
		panic("dxf: PushBack called twice without Next")
	}
	s.pending = &p
}

// Len returns the number of pairs not yet consumed.
func (s *Sequence) Len() int {
	n := len(s.pairs) - s.pos
	if s.pending != nil {
		n++
	}
	return n
}
