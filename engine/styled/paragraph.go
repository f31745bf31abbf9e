package styled

import (
	"errors"

	"github.com/npillmayer/cords"
	sty "github.com/npillmayer/cords/styled"
	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
)

// Paragraph represents a styled paragraph of text, from a rich text buffer.
type Paragraph struct {
	*sty.Text
}

// ParagraphFromBuffer creates a Paragraph holding a snapshot of the text and
// the attributes of buf. Every run of text gets the attributes in effect for
// it, unstyled runs get an empty Set.
func ParagraphFromBuffer(buf *richtext.Buffer) (*Paragraph, error) {
	if buf == nil {
		return nil, core.WrapError(cords.ErrIllegalArguments, core.EINVALID, "no buffer for paragraph")
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	b := cords.NewBuilder()
	type styledRun struct {
		from, to uint64
		set      Set
	}
	var runs []styledRun
	err := buf.EachRun(func(text string, r richtext.Range, attrs richtext.Attributes) error {
		b.Append(leaf(text))
		runs = append(runs, styledRun{uint64(r.Start), uint64(r.End), Set{attrs: attrs}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	para := &Paragraph{Text: sty.TextFromCord(b.Cord())}
	for _, run := range runs {
		tracer().Debugf("style run [%d,%d) = %v", run.from, run.to, run.set)
		para.Text.Style(run.set, run.from, run.to)
	}
	return para, nil
}

// ForEachStyleRun applies a function to each run of the same style set
// for a paragraph's text.
func (p *Paragraph) ForEachStyleRun(f func(run Run) error) error {
	if p.Text.Raw().IsVoid() {
		return nil
	}
	err := p.Text.EachStyleRun(func(content string, style sty.Style, pos uint64) error {
		r := Run{
			Text:     content,
			Position: pos,
		}
		if set, ok := style.(Set); ok {
			r.StyleSet = set
		}
		return f(r)
	})
	return err
}

// StyleAt returns the active style at text position pos, together with an
// index relative to the start of the style run.
//
// Overwrites StyleAt from cords.styled.Text, looking up the run containing
// pos from the paragraph's style runs.
func (p *Paragraph) StyleAt(pos uint64) (Set, uint64, error) {
	var set Set
	var i uint64
	found := false
	err := p.ForEachStyleRun(func(run Run) error {
		if pos >= run.Position && pos < run.Position+uint64(len(run.Text)) {
			set, i, found = run.StyleSet, pos-run.Position, true
			return errStop
		}
		return nil
	})
	if err != nil && err != errStop {
		return Set{}, pos, err
	}
	if !found {
		return Set{}, pos, core.WrapError(cords.ErrIllegalArguments, core.EINVALID,
			"no style run at position %d", pos)
	}
	return set, i, nil
}

// errStop ends an iteration over style runs early.
var errStop = errors.New("stop")

// Run is a simple container type to hold a run of text with equal style.
type Run struct {
	Text     string
	Position uint64
	StyleSet Set
}

// ---------------------------------------------------------------------------

// leaf is the leaf type for cords of a paragraph.
// Not intended for client usage.
type leaf string

// Weight is part of interface cords.Leaf.
func (l leaf) Weight() uint64 {
	return uint64(len(l))
}

// String is part of interface cords.Leaf.
func (l leaf) String() string {
	return string(l)
}

// Split is part of interface cords.Leaf.
func (l leaf) Split(i uint64) (cords.Leaf, cords.Leaf) {
	return l[:i], l[i:]
}

// Substring is part of interface cords.Leaf.
func (l leaf) Substring(i, j uint64) []byte {
	return []byte(l[i:j])
}

var _ cords.Leaf = leaf("")

// --- Styles ----------------------------------------------------------------

// Set holds the rich text attributes of a run of text of a Paragraph.
type Set struct {
	attrs richtext.Attributes
}

// Attributes returns the attributes of the set. Clients must not modify them.
func (set Set) Attributes() richtext.Attributes {
	return set.attrs
}

// Has is true if the set contains an attribute for key.
func (set Set) Has(key richtext.Key) bool {
	return set.attrs.Has(key)
}

// Get returns the value of the attribute for key, or nil.
func (set Set) Get(key richtext.Key) interface{} {
	return set.attrs[key]
}

// String is part of interface cords.styled.Style.
func (set Set) String() string {
	return set.attrs.String()
}

// Equals is part of interface cords.styled.Style, not intended for client usage.
func (set Set) Equals(other sty.Style) bool {
	if o, ok := other.(Set); ok {
		return o.attrs.Equals(set.attrs)
	}
	return false
}

var _ sty.Style = Set{}
