package richtext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Key is an attribute key of the style overlay. The set of keys is fixed by
// the engine; the values stored with a key are opaque to it.
type Key string

// Engine-defined attribute keys.
const (
	Bold         Key = "bold"
	Italic       Key = "italic"
	BoldItalic   Key = "boldItalic"
	Strike       Key = "strike"
	Monospace    Key = "monospace"
	LinkTarget   Key = "linkTarget"
	ImageContent Key = "imageContent"
	AltText      Key = "altText"
)

// Header returns the key for headers of level n (1…).
func Header(n int) Key {
	return levelKey("header", n)
}

// List returns the key for unordered list items of level n (1…).
func List(n int) Key {
	return levelKey("list", n)
}

// OrderedList returns the key for ordered list items of level n (1…).
func OrderedList(n int) Key {
	return levelKey("orderedList", n)
}

// Quote returns the key for block quotes of level n (1…).
func Quote(n int) Key {
	return levelKey("quote", n)
}

func levelKey(base string, n int) Key {
	return Key(fmt.Sprintf("%s[%d]", base, n))
}

// Level splits a level key into its base and its level. For keys without a
// level, Level returns the key as base and 0.
func (k Key) Level() (string, int) {
	s := string(k)
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return s, 0
	}
	var n int
	if _, err := fmt.Sscanf(s[i:], "[%d]", &n); err != nil {
		return s, 0
	}
	return s[:i], n
}

// Attributes maps attribute keys to host-supplied style values.
type Attributes map[Key]interface{}

// Has is true if key k is set, regardless of its value.
func (a Attributes) Has(k Key) bool {
	_, ok := a[k]
	return ok
}

// Clone returns a shallow copy of a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Merge returns the union of a and b, where values of b win.
// Neither a nor b is modified.
func (a Attributes) Merge(b Attributes) Attributes {
	m := make(Attributes, len(a)+len(b))
	for k, v := range a {
		m[k] = v
	}
	for k, v := range b {
		m[k] = v
	}
	return m
}

// Equals compares two attribute sets key by key. Values are compared
// deeply, as hosts may use non-comparable style values.
func (a Attributes) Equals(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

// Keys returns the keys of a in sorted order.
func (a Attributes) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (a Attributes) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range a.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(k))
	}
	b.WriteByte('}')
	return b.String()
}

// --- Ranges ----------------------------------------------------------------

// Range is a half-open interval [Start,End) of byte positions.
type Range struct {
	Start, End int
}

// Len returns the length of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty is true for ranges of length 0.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains is true if pos is inside r.
func (r Range) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// Overlaps is true if r and other share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
