package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/rules"
)

// inlineStyle selects the style of an inline construct from a style
// configuration.
type inlineStyle struct {
	key   richtext.Key
	other richtext.Key // emphasis key combining with key into BoldItalic
	style func(*StyleConfig) richtext.Attributes
}

var (
	monospaceStyle = inlineStyle{
		key:   richtext.Monospace,
		style: func(s *StyleConfig) richtext.Attributes { return s.Monospace },
	}
	boldStyle = inlineStyle{
		key:   richtext.Bold,
		other: richtext.Italic,
		style: func(s *StyleConfig) richtext.Attributes { return s.Bold },
	}
	italicStyle = inlineStyle{
		key:   richtext.Italic,
		other: richtext.Bold,
		style: func(s *StyleConfig) richtext.Attributes { return s.Italic },
	}
	strikeStyle = inlineStyle{
		key:   richtext.Strike,
		style: func(s *StyleConfig) richtext.Attributes { return s.Strike },
	}
)

// inlinePattern creates the pattern for a construct enclosed in runs of
// n delimiter characters d. The body must not contain d nor a line break,
// and must neither start nor end with white space. Before the opening and
// after the closing run there has to be the start or end of a line, or a
// character other than d. For word-bounded constructs, this character must
// not be a letter or a digit either.
func inlinePattern(d byte, n int, wordBounded bool) string {
	q := regexp.QuoteMeta(string(d))
	run := strings.Repeat(q, n)
	inner := fmt.Sprintf(`[^%s\n]`, q)
	edge := fmt.Sprintf(`[^%s\s]`, q)
	bound := fmt.Sprintf(`[^%s]`, q)
	if wordBounded {
		bound = fmt.Sprintf(`[^\p{L}\p{N}%s]`, q)
	}
	return fmt.Sprintf(`(?m)(?P<pre>^|%s)(?P<open>%s)(?P<body>%s|%s%s*%s)(?P<close>%s)(?P<post>%s|$)`,
		bound, run, edge, edge, inner, edge, run, bound)
}

// addInlineRules appends the rules for a construct with delimiter d, for
// runs from maxRun down to 1 characters.
func addInlineRules(set *rules.Set[*parseCall], name string, d byte, maxRun int, sty inlineStyle) {
	for n := maxRun; n > 0; n-- {
		pattern := inlinePattern(d, n, sty.key != richtext.Monospace)
		set.Add(rules.Compile(fmt.Sprintf("%s-%d", name, n), pattern, inlineHandler(sty)))
	}
}

// inlineHandler removes the delimiters and styles the body. The closing run
// is deleted first, so the body's position is still valid for styling.
func inlineHandler(sty inlineStyle) rules.Handler[*parseCall] {
	return func(m *rules.Match, buf *richtext.Buffer, call *parseCall) int {
		open, _ := m.Group("open")
		body, _ := m.Group("body")
		cl, _ := m.Group("close")
		if err := buf.Delete(cl.Start, cl.End); err != nil {
			tracer().Errorf("cannot remove delimiter %v: %v", cl, err)
			return m.End
		}
		emphasize(buf, call.styles, sty, body)
		if err := buf.Delete(open.Start, open.End); err != nil {
			tracer().Errorf("cannot remove delimiter %v: %v", open, err)
			return body.End
		}
		return body.End - open.Len()
	}
}

// emphasize styles range r. If r is already styled with the emphasis
// combining with sty, the combined style replaces it.
func emphasize(buf *richtext.Buffer, styles *StyleConfig, sty inlineStyle, r richtext.Range) {
	attrs := withKey(sty.style(styles), sty.key)
	if sty.other != "" && buf.HasAttribute(sty.other, r.Start, r.End) {
		if err := buf.RemoveAttribute(sty.other, r.Start, r.End); err != nil {
			tracer().Errorf("cannot remove %s from %v: %v", sty.other, r, err)
		}
		attrs = withKey(styles.BoldItalic, richtext.BoldItalic)
	}
	if attrs == nil {
		return
	}
	if err := buf.AddAttributes(attrs, r.Start, r.End); err != nil {
		tracer().Errorf("cannot style %v with %s: %v", r, sty.key, err)
	}
}
