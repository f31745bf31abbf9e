package markdown

import (
	"fmt"
	"strings"

	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/rules"
)

// blockLead describes the lead markup of a block construct.
type blockLead struct {
	kind  BlockKind
	unit  string // pattern for a single unit of lead markup
	first string // character class of lead markup, for the short form
	level func(lead string) int
}

func countRunes(lead string) int {
	return len([]rune(lead))
}

var blockLeads = []blockLead{
	{kind: HeaderBlock, unit: `#`, first: `#`, level: countRunes},
	{kind: ListBlock, unit: `[*+\-]`, first: `*+\-`, level: countRunes},
	{kind: OrderedListBlock, unit: `\d+\.`, first: `\d.`, level: func(lead string) int {
		return strings.Count(lead, ".")
	}},
	{kind: QuoteBlock, unit: `>`, first: `>`, level: countRunes},
}

// addBlockRules appends two rules per block construct: a long form, where
// lead and text are separated by blanks, and a short form, where the text
// immediately follows the lead. The short form must not start with lead
// markup, otherwise "##x" would split into a level-1 lead and text "#x".
func addBlockRules(set *rules.Set[*parseCall], maxLevel int) {
	for _, b := range blockLeads {
		lead := fmt.Sprintf(`(?P<lead>(?:%s){1,%d})`, b.unit, maxLevel)
		long := `(?m)^` + lead + `[ \t]+(?P<text>.*)$`
		short := `(?m)^` + lead + `(?P<text>[^` + b.first + `\s].*)$`
		set.Add(rules.Compile(b.kind.String()+"-long", long, blockHandler(b)))
		set.Add(rules.Compile(b.kind.String()+"-short", short, blockHandler(b)))
	}
}

func blockHandler(b blockLead) rules.Handler[*parseCall] {
	return func(m *rules.Match, buf *richtext.Buffer, call *parseCall) int {
		lead, _ := m.Group("lead")
		text, _ := m.Group("text")
		level := b.level(m.Submatch("lead"))
		tracer().Debugf("%s of level %d: %q", b.kind, level, m.Submatch("text"))
		if call.styles.Lead != nil {
			call.styles.Lead(buf, b.kind, level, lead.Start, text.Start)
		}
		if text.Empty() {
			return m.End
		}
		attrs := withKey(call.styles.Table(b.kind).At(level), b.kind.Key(level))
		if attrs == nil {
			return m.End
		}
		if err := buf.AddAttributes(attrs, text.Start, text.End); err != nil {
			tracer().Errorf("cannot style %s: %v", b.kind, err)
		}
		return m.End
	}
}

// withKey returns attrs with key set, if attrs is not nil. Hosts may leave
// the engine's key out of a style map; it is needed to detect existing styles.
func withKey(attrs richtext.Attributes, key richtext.Key) richtext.Attributes {
	if attrs == nil || attrs.Has(key) {
		return attrs
	}
	return attrs.Merge(richtext.Attributes{key: true})
}
