package richtext

import (
	"sort"
	"sync"

	"github.com/npillmayer/cords"
	"github.com/npillmayer/mdstyle/core"
)

// Buffer is a mutable text with a style overlay.
//
// A Buffer is safe for use by multiple goroutines in the sense that single
// operations are serialized. Sequences of operations (e.g. find a range,
// then style it) have to be coordinated by the client.
type Buffer struct {
	mu       sync.Mutex
	text     cords.Cord
	str      string // cached string representation of text
	strValid bool
	overlay  []entry
	anchors  []*Anchor
	revision uint64
}

type entry struct {
	Range
	attrs Attributes
}

// Entry is an overlay entry as reported by Buffer.Entries.
type Entry struct {
	Range
	Attributes Attributes
}

// NewBuffer creates a buffer for text, without any styling.
func NewBuffer(text string) *Buffer {
	b := &Buffer{str: text, strValid: true}
	if text != "" {
		b.text = cords.FromString(text)
	}
	return b
}

// String returns the current text of the buffer.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.string()
}

func (b *Buffer) string() string {
	if !b.strValid {
		b.str = b.text.String()
		b.strValid = true
	}
	return b.str
}

// Len returns the length of the text in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.text.Len())
}

// Slice returns the text in range [from,to).
func (b *Buffer) Slice(from, to int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkRange(from, to); err != nil {
		return "", err
	}
	return b.string()[from:to], nil
}

// Revision is a counter which is incremented with every mutation of the
// buffer, either of the text or of the overlay.
func (b *Buffer) Revision() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revision
}

func (b *Buffer) checkRange(from, to int) error {
	if from < 0 || to < from || to > int(b.text.Len()) {
		return core.Error(core.EINVALID, "range [%d,%d) out of bounds for text of length %d",
			from, to, b.text.Len())
	}
	return nil
}

// --- Styling ---------------------------------------------------------------

// AddAttributes attaches attrs to range [from,to). Empty ranges and empty
// attribute sets are ignored.
func (b *Buffer) AddAttributes(attrs Attributes, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkRange(from, to); err != nil {
		return err
	}
	if from == to || len(attrs) == 0 {
		return nil
	}
	b.overlay = append(b.overlay, entry{Range{from, to}, attrs.Clone()})
	b.revision++
	return nil
}

// AddAttribute attaches a single key/value pair to range [from,to).
func (b *Buffer) AddAttribute(key Key, value interface{}, from, to int) error {
	return b.AddAttributes(Attributes{key: value}, from, to)
}

// RemoveAttribute removes key from range [from,to). Overlay entries which
// extend beyond the range keep key outside of it.
func (b *Buffer) RemoveAttribute(key Key, from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkRange(from, to); err != nil {
		return err
	}
	r := Range{from, to}
	overlay := make([]entry, 0, len(b.overlay)+2)
	for _, e := range b.overlay {
		if !e.attrs.Has(key) || !e.Overlaps(r) {
			overlay = append(overlay, e)
			continue
		}
		if e.Start < from { // left remainder keeps key
			overlay = append(overlay, entry{Range{e.Start, from}, e.attrs})
		}
		if rest := e.attrs.Clone(); len(rest) > 1 {
			delete(rest, key)
			overlay = append(overlay, entry{Range{max(e.Start, from), min(e.End, to)}, rest})
		}
		if e.End > to { // right remainder keeps key
			overlay = append(overlay, entry{Range{to, e.End}, e.attrs})
		}
	}
	b.overlay = overlay
	b.revision++
	return nil
}

// AttributesAt returns the merged attributes at position pos.
func (b *Buffer) AttributesAt(pos int) Attributes {
	b.mu.Lock()
	defer b.mu.Unlock()
	attrs := Attributes{}
	for _, e := range b.overlay {
		if e.Contains(pos) {
			for k, v := range e.attrs {
				attrs[k] = v
			}
		}
	}
	return attrs
}

// HasAttribute is true if key is set anywhere on range [from,to).
func (b *Buffer) HasAttribute(key Key, from, to int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := Range{from, to}
	for _, e := range b.overlay {
		if e.Overlaps(r) && e.attrs.Has(key) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the overlay, in the order of insertion.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]Entry, len(b.overlay))
	for i, e := range b.overlay {
		entries[i] = Entry{Range: e.Range, Attributes: e.attrs.Clone()}
	}
	return entries
}

// RangesOf returns the ranges of all overlay entries carrying key.
func (b *Buffer) RangesOf(key Key) []Range {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ranges []Range
	for _, e := range b.overlay {
		if e.attrs.Has(key) {
			ranges = append(ranges, e.Range)
		}
	}
	return ranges
}

// EachRun calls f for each maximal run of text with identical merged
// attributes, from left to right. Unstyled text is reported with an empty
// attribute set. If f returns an error, iteration stops and the error is
// returned.
func (b *Buffer) EachRun(f func(text string, r Range, attrs Attributes) error) error {
	b.mu.Lock()
	text := b.string()
	bounds := []int{0, len(text)}
	for _, e := range b.overlay {
		bounds = append(bounds, e.Start, e.End)
	}
	sort.Ints(bounds)
	type run struct {
		Range
		attrs Attributes
	}
	var runs []run
	for i := 0; i+1 < len(bounds); i++ {
		seg := Range{bounds[i], bounds[i+1]}
		if seg.Empty() {
			continue
		}
		attrs := Attributes{}
		for _, e := range b.overlay {
			if e.Contains(seg.Start) {
				for k, v := range e.attrs {
					attrs[k] = v
				}
			}
		}
		if n := len(runs); n > 0 && runs[n-1].attrs.Equals(attrs) {
			runs[n-1].End = seg.End
			continue
		}
		runs = append(runs, run{seg, attrs})
	}
	b.mu.Unlock()
	for _, r := range runs {
		if err := f(text[r.Start:r.End], r.Range, r.attrs); err != nil {
			return err
		}
	}
	return nil
}

// --- Mutation --------------------------------------------------------------

// Replace replaces the text in range [from,to) by s. Overlay entries and
// anchors are mapped to the new text: positions before the range stay,
// positions after it are shifted. An entry starting inside the replaced
// range starts at from afterwards; an entry ending inside of it ends at the
// end of s. Entries of length 0 are dropped.
func (b *Buffer) Replace(from, to int, s string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replace(from, to, s)
}

// Delete removes the text in range [from,to).
func (b *Buffer) Delete(from, to int) error {
	return b.Replace(from, to, "")
}

// Insert inserts s at position pos. The inserted text does not inherit
// styles from its neighbours.
func (b *Buffer) Insert(pos int, s string) error {
	return b.Replace(pos, pos, s)
}

func (b *Buffer) replace(from, to int, s string) error {
	if err := b.checkRange(from, to); err != nil {
		return err
	}
	if from == to && s == "" {
		return nil
	}
	if err := b.splice(from, to, s); err != nil {
		return err
	}
	delta := len(s) - (to - from)
	overlay := b.overlay[:0]
	for _, e := range b.overlay {
		e.Range = mapRange(e.Range, from, to, delta)
		if !e.Empty() {
			overlay = append(overlay, e)
		}
	}
	b.overlay = overlay
	for _, a := range b.anchors {
		a.r = mapRange(a.r, from, to, delta)
	}
	b.revision++
	if err := b.validate(); err != nil {
		tracer().Errorf("buffer invariant violated after replace [%d,%d): %v", from, to, err)
		return err
	}
	return nil
}

// splice rebuilds the text cord from the edited string. Cords are never
// cut or inserted into in place.
func (b *Buffer) splice(from, to int, s string) error {
	str := b.string()
	if from < 0 || to > len(str) || from > to {
		return core.Error(core.EINTERNAL, "cannot splice [%d,%d) into text of length %d", from, to, len(str))
	}
	edited := str[:from] + s + str[to:]
	if edited == "" {
		b.text = cords.Cord{}
	} else {
		b.text = cords.FromString(edited)
	}
	b.str, b.strValid = edited, true
	return nil
}

func mapRange(r Range, from, to, delta int) Range {
	return Range{mapStart(r.Start, from, to, delta), mapEnd(r.End, from, to, delta)}
}

func mapStart(p, from, to, delta int) int {
	switch {
	case p < from:
		return p
	case p >= to:
		return p + delta
	}
	return from
}

func mapEnd(p, from, to, delta int) int {
	switch {
	case p <= from:
		return p
	case p >= to:
		return p + delta
	}
	return to + delta
}

// Validate checks that every overlay entry and every anchor lies within the
// bounds of the current text.
func (b *Buffer) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validate()
}

func (b *Buffer) validate() error {
	l := len(b.string())
	for _, e := range b.overlay {
		if e.Start < 0 || e.End > l || e.End < e.Start {
			return core.Error(core.EINTERNAL, "overlay entry %v %v out of bounds [0,%d)", e.Range, e.attrs, l)
		}
	}
	for _, a := range b.anchors {
		if a.r.Start < 0 || a.r.End > l || a.r.End < a.r.Start {
			return core.Error(core.EINTERNAL, "anchor %v out of bounds [0,%d)", a.r, l)
		}
	}
	return nil
}

// --- Anchors ---------------------------------------------------------------

// Anchor is a range of a buffer which follows mutations of the buffer's text.
// Anchors are used to remember a region of text across mutations performed
// by others, e.g. while waiting for an asynchronous result.
type Anchor struct {
	buf *Buffer
	r   Range
}

// Mark creates an anchor for range [from,to).
func (b *Buffer) Mark(from, to int) (*Anchor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkRange(from, to); err != nil {
		return nil, err
	}
	a := &Anchor{buf: b, r: Range{from, to}}
	b.anchors = append(b.anchors, a)
	return a, nil
}

// Range returns the current range of the anchor.
func (a *Anchor) Range() Range {
	a.buf.mu.Lock()
	defer a.buf.mu.Unlock()
	return a.r
}

// ReplaceText replaces the anchored text by s and styles s with attrs.
// Afterwards the anchor spans s.
func (a *Anchor) ReplaceText(s string, attrs Attributes) error {
	b := a.buf
	b.mu.Lock()
	defer b.mu.Unlock()
	from, to := a.r.Start, a.r.End
	if err := b.replace(from, to, s); err != nil {
		return err
	}
	a.r = Range{from, from + len(s)}
	if len(attrs) > 0 && s != "" {
		b.overlay = append(b.overlay, entry{a.r, attrs.Clone()})
	}
	return nil
}

// Release detaches the anchor from its buffer. The anchor's range is no
// longer updated afterwards.
func (a *Anchor) Release() {
	b := a.buf
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, x := range b.anchors {
		if x == a {
			b.anchors = append(b.anchors[:i], b.anchors[i+1:]...)
			break
		}
	}
}
