package markdown

import (
	"strings"

	"github.com/npillmayer/mdstyle/engine/escape"
	"github.com/npillmayer/mdstyle/engine/rules"
	"golang.org/x/text/unicode/norm"
)

// Markdown parsing here is local: no construct spans more than a line,
// except for code spans and images. There is no block context, and no AST.

// RuleSet is a compiled, ordered set of markdown rules. A RuleSet is
// immutable and may be shared between concurrent parses.
type RuleSet struct {
	conf  Config
	rules *rules.Set[*parseCall]
}

// parseCall is the per-call context handed to every rule handler.
type parseCall struct {
	styles *StyleConfig
	doc    *Document
}

// NewRuleSet compiles the markdown rules for a configuration. Rules which
// fail to compile (e.g. links with a malformed scheme list) are left out,
// disabling the constructs they recognize.
//
// Rules run in the following order:
//
//	sentinel        encode private use characters of the input
//	code spans      protect the content of code spans, longest fences first
//	escapes         protect backslash-escaped characters
//	images, links
//	monospace       strip code span fences
//	bold, italic, strike
//	headers, lists, ordered lists, quotes
//	unescape        restore protected characters
func NewRuleSet(conf Config) *RuleSet {
	conf = conf.normalized()
	set := rules.NewSet[*parseCall]()
	set.Add(escape.SentinelRule[*parseCall]())
	escape.AddCodeSpanRules(set, conf.MaxFence)
	set.Add(escape.Protect[*parseCall]())
	addLinkRules(set, conf.Schemes)
	addInlineRules(set, "monospace", '`', conf.MaxFence, monospaceStyle)
	addInlineRules(set, "bold", '*', 2, boldStyle)
	addInlineRules(set, "italic", '_', 2, italicStyle)
	addInlineRules(set, "strike", '~', 2, strikeStyle)
	addBlockRules(set, conf.MaxLevel)
	set.Add(escape.Unescape[*parseCall]())
	tracer().Debugf("markdown rule set with %d rules", set.Len())
	return &RuleSet{conf: conf, rules: set}
}

// Config returns the configuration rs has been created from.
func (rs *RuleSet) Config() Config {
	return rs.conf
}

// Has is true if rs contains a rule with the given name.
func (rs *RuleSet) Has(name string) bool {
	return rs.rules.Has(name)
}

// Parse converts markdown-flavoured text into a rich text document. A nil
// rule set or style configuration is replaced by the defaults.
//
// Parse never fails: unrecognized markup is left as it is. The returned
// document may still change while images are being resolved, see
// Document.Wait.
func Parse(text string, rs *RuleSet, styles *StyleConfig) *Document {
	if rs == nil {
		rs = NewRuleSet(DefaultConfig())
	}
	if styles == nil {
		styles = DefaultStyles()
	}
	text = strings.ToValidUTF8(text, "\uFFFD")
	if rs.conf.NormalizeNFC {
		text = norm.NFC.String(text)
	}
	doc := newDocument(text)
	rs.rules.Apply(doc.Buffer, &parseCall{styles: styles, doc: doc})
	doc.endPass()
	if n := doc.Outstanding(); n > 0 {
		tracer().Debugf("parse finished with %d images outstanding", n)
	}
	return doc
}
