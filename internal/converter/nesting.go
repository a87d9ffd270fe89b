// =============================================================================
// DXF to XML Converter - Nesting Converter
// =============================================================================
//
// DXF has no open/close tags. Levels are implied by markers:
//
//   0/SECTION ... 0/ENDSEC      explicit open and close
//   0/TABLE   ... 0/ENDTAB
//   0/BLOCK   ... 0/ENDBLK
//   2/ENTITIES                  opens the entity list, closed by its ENDSEC
//   0/LINE, 0/LAYER, ...        a record; it lasts until the next marker
//
// The converter walks the pairs once, keeping a stack of open frames. Each
// frame is one wrapper element in the output. A pair that belongs to an outer
// frame is left at the front of the sequence (peeked, not consumed) while the
// inner frames close, and is then read again by the frame it belongs to.
//
// RULES (checked in this order for the pair at the front):
//   1. Close marker: if the current frame is the matching opener, consume the
//      pair inside it and close it. If the opener is further out, close the
//      current frame and look again. If nothing open can match, keep the pair
//      as a flat tag and report it.
//   2. 2/ENTITIES: open an "entities" frame.
//   3. Open marker: close the current frame first when it is a record of the
//      same type, when nesting is already deeper than MaxGenericDepth, or when
//      it is a record directly inside ENTITIES. Otherwise open a frame.
//      SEQEND and similar values do not start with END, so they are records.
//   4. Anything else is a flat tag in the current frame.
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"

	"github.com/nrnickolov/dxf2xml/internal/dxf"
	"github.com/nrnickolov/dxf2xml/internal/validation"
	"github.com/nrnickolov/dxf2xml/internal/xmlwriter"
)

// DefaultMaxGenericDepth is the frame depth beyond which a new record marker
// closes the current record instead of nesting inside it. SECTION > TABLE >
// table entry is the deepest level real files need.
const DefaultMaxGenericDepth = 2

// kindEntities is the frame kind opened by 2/ENTITIES.
const kindEntities = "ENTITIES"

// closers maps each close marker to the marker that opens its level.
var closers = map[string]string{
	"ENDSEC": "SECTION",
	"ENDTAB": "TABLE",
	"ENDBLK": "BLOCK",
}

// OpenerFor returns the opener closed by the close marker value, or "" when
// the value is not a known close marker.
func OpenerFor(closeValue string) string {
	return closers[closeValue]
}

// needsCloser reports whether a frame kind must be closed by an explicit marker.
func needsCloser(kind string) bool {
	for _, opener := range closers {
		if opener == kind {
			return true
		}
	}
	return false
}

// NestOptions tunes the nesting rules.
type NestOptions struct {
	// MaxGenericDepth bounds record nesting; see DefaultMaxGenericDepth.
	// Zero means the default.
	MaxGenericDepth int

	// Debug writes a <stack> element listing the open frames after every
	// close marker.
	Debug bool
}

// frame is one open nesting level.
type frame struct {
	kind string
	tag  string
	line int
}

// nester holds the state of a single pass.
type nester struct {
	seq    *dxf.Sequence
	w      *xmlwriter.Writer
	opts   NestOptions
	frames []frame
	result *validation.Result
}

// Nest consumes the whole sequence and writes it into w. All frames are closed
// when it returns, so w can be finished. Structural problems are reported in
// the returned result; the error is only non-nil if the writer rejected a
// close, which means the frame stack and the writer disagree.
func Nest(seq *dxf.Sequence, w *xmlwriter.Writer, opts NestOptions) (*validation.Result, error) {
	if opts.MaxGenericDepth <= 0 {
		opts.MaxGenericDepth = DefaultMaxGenericDepth
	}

	n := &nester{
		seq:    seq,
		w:      w,
		opts:   opts,
		result: &validation.Result{},
	}
	if err := n.run(); err != nil {
		return n.result, err
	}
	return n.result, nil
}

func (n *nester) run() error {
	for {
		p, ok := n.seq.Peek()
		if !ok {
			break
		}

		var err error
		switch {
		case p.IsCloseMarker():
			err = n.closeMarker(p)
		case p.IsEntitiesMarker():
			n.seq.Next()
			n.open(kindEntities, p)
		case p.IsOpenMarker():
			if n.mustRestart(p.Value) {
				err = n.restart(p)
			} else {
				n.seq.Next()
				n.open(p.Value, p)
			}
		default:
			n.seq.Next()
			n.flat(p)
		}
		if err != nil {
			return err
		}
	}

	// End of input: close whatever is still open, innermost first.
	for len(n.frames) > 0 {
		top := n.frames[len(n.frames)-1]
		if needsCloser(top.kind) {
			n.result.Add(validation.NewUnclosedAtEOF(top.line, top.kind))
		}
		if err := n.pop(); err != nil {
			return err
		}
	}
	return nil
}

// closeMarker handles rule 1 for the pair at the front of the sequence.
func (n *nester) closeMarker(p dxf.Pair) error {
	opener := OpenerFor(p.Value)
	if opener == "" || !n.isOpen(opener) {
		n.seq.Next()
		n.flat(p)
		n.result.Add(validation.NewUnmatchedClose(p.Line, p.Code, p.Value))
		n.debugStack()
		return nil
	}

	top := n.frames[len(n.frames)-1]
	n.frames = n.frames[:len(n.frames)-1]

	if top.kind == opener {
		n.seq.Next()
		n.flat(p)
	} else if needsCloser(top.kind) {
		n.result.Add(validation.NewImplicitClose(p.Line, p.Value, top.line, top.kind))
	}
	// A pair not consumed above stays at the front for the enclosing frame.
	n.debugStack()
	return n.w.Close(top.tag)
}

// mustRestart decides rule 3: true when the record marker value ends the
// current frame rather than nesting inside it.
func (n *nester) mustRestart(value string) bool {
	depth := len(n.frames)
	if depth == 0 {
		return false
	}
	if n.frames[depth-1].kind == value {
		return true
	}
	if depth > n.opts.MaxGenericDepth {
		return true
	}
	return depth >= 2 && n.frames[depth-2].kind == kindEntities
}

// restart closes the current frame so p can be read again one level up. A
// section, table or block ended this way never saw its own close marker.
func (n *nester) restart(p dxf.Pair) error {
	top := n.frames[len(n.frames)-1]
	if needsCloser(top.kind) {
		n.result.Add(validation.NewImplicitClose(p.Line, p.Value, top.line, top.kind))
	}
	return n.pop()
}

func (n *nester) isOpen(kind string) bool {
	for i := len(n.frames) - 1; i >= 0; i-- {
		if n.frames[i].kind == kind {
			return true
		}
	}
	return false
}

func (n *nester) open(kind string, p dxf.Pair) {
	tag := strings.ToLower(p.Value)
	n.frames = append(n.frames, frame{kind: kind, tag: tag, line: p.Line})
	n.w.Open(tag)
	n.flat(p)
}

func (n *nester) pop() error {
	top := n.frames[len(n.frames)-1]
	n.frames = n.frames[:len(n.frames)-1]
	return n.w.Close(top.tag)
}

func (n *nester) flat(p dxf.Pair) {
	n.w.Leaf(FlatTag(p.Code), p.Value)
}

func (n *nester) debugStack() {
	if !n.opts.Debug {
		return
	}
	kinds := make([]string, len(n.frames))
	for i, f := range n.frames {
		kinds[i] = f.kind
	}
	n.w.Leaf("stack", strings.Join(kinds, " "))
}

// FlatTag returns the element name used for a pair with the given group code.
func FlatTag(code string) string {
	return fmt.Sprintf("key_%s", code)
}
