package rules

import (
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
)

// PreGroup is the name of the optional leading context group of a pattern.
const PreGroup = "pre"

// Match is an occurrence of a rule's pattern in a buffer. All ranges are
// offsets into the buffer at the time of matching.
type Match struct {
	richtext.Range
	text   string // buffer text at the time of matching
	groups map[string]richtext.Range
}

// Group returns the range of a named capture group. If the group did not
// participate in the match, Group returns false.
func (m *Match) Group(name string) (richtext.Range, bool) {
	r, ok := m.groups[name]
	return r, ok
}

// Submatch returns the text of a named capture group, or "" if the group did
// not participate in the match.
func (m *Match) Submatch(name string) string {
	r, ok := m.groups[name]
	if !ok {
		return ""
	}
	return m.text[r.Start:r.End]
}

// String returns the text of the whole match.
func (m *Match) String() string {
	return m.text[m.Start:m.End]
}

// eligibleFrom is the position a match has to start from to be found at
// a cursor position.
func (m *Match) eligibleFrom() int {
	if pre, ok := m.groups[PreGroup]; ok {
		return pre.End
	}
	return m.Start
}

// Handler is called for every match of a rule. It may mutate the buffer and
// returns the position up to which the buffer is considered consumed. The
// engine continues searching from there. call is the per-call context of
// the current parse.
type Handler[C any] func(m *Match, buf *richtext.Buffer, call C) int

// Rule is a compiled pattern together with a handler. Rules are immutable.
type Rule[C any] struct {
	name     string
	re       *regexp.Regexp
	anchored bool // pattern contains '^'
	handler  Handler[C]
}

// Compile creates a rule from a regular expression. If the pattern does not
// compile, an error with code core.EINVALID is returned.
func Compile[C any](name, pattern string, handler Handler[C]) (*Rule[C], error) {
	if pattern == "" {
		return nil, core.Error(core.EINVALID, "rule %q: empty pattern", name)
	}
	if handler == nil {
		return nil, core.Error(core.EINVALID, "rule %q: no handler", name)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "rule %q: cannot compile pattern", name)
	}
	tree, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "rule %q: cannot parse pattern", name)
	}
	return &Rule[C]{
		name:     name,
		re:       re,
		anchored: usesLineAnchor(tree),
		handler:  handler,
	}, nil
}

// Name returns the name of the rule.
func (r *Rule[C]) Name() string {
	return r.name
}

// Pattern returns the source text of the rule's pattern.
func (r *Rule[C]) Pattern() string {
	return r.re.String()
}

// Find returns the first match in text which is eligible at position cursor,
// or nil.
//
// Searching restarts after every match which is not eligible. When a search
// starts in the middle of a line, a match at the very start of the search
// which owes its existence to a line anchor is rejected.
func (r *Rule[C]) Find(text string, cursor int) *Match {
	if cursor > len(text) {
		return nil
	}
	s := strings.LastIndexByte(text[:cursor], '\n') + 1
	for s <= len(text) {
		loc := r.re.FindStringSubmatchIndex(text[s:])
		if loc == nil {
			return nil
		}
		m := r.match(text, s, loc)
		midLine := s > 0 && text[s-1] != '\n'
		if m.eligibleFrom() >= cursor && !(midLine && m.Start == s && r.anchoredAt(m)) {
			return m
		}
		if m.Start >= len(text) {
			return nil
		}
		_, w := utf8.DecodeRuneInString(text[m.Start:])
		s = m.Start + w
	}
	return nil
}

func (r *Rule[C]) match(text string, offset int, loc []int) *Match {
	names := r.re.SubexpNames()
	m := &Match{
		Range:  richtext.Range{Start: loc[0] + offset, End: loc[1] + offset},
		text:   text,
		groups: make(map[string]richtext.Range, len(names)),
	}
	for i := 1; i < len(names); i++ {
		if names[i] == "" || loc[2*i] < 0 {
			continue
		}
		m.groups[names[i]] = richtext.Range{Start: loc[2*i] + offset, End: loc[2*i+1] + offset}
	}
	return m
}

// anchoredAt is true if m may have matched a line anchor at its start.
func (r *Rule[C]) anchoredAt(m *Match) bool {
	if !r.anchored {
		return false
	}
	pre, ok := m.groups[PreGroup]
	return !ok || pre.Empty()
}

// usesLineAnchor is true if a pattern contains a begin-of-line or
// begin-of-text assertion.
func usesLineAnchor(re *syntax.Regexp) bool {
	if re.Op == syntax.OpBeginLine || re.Op == syntax.OpBeginText {
		return true
	}
	for _, sub := range re.Sub {
		if usesLineAnchor(sub) {
			return true
		}
	}
	return false
}

// Apply runs the rule over buf until no eligible match remains. It returns
// the number of matches handled.
func (r *Rule[C]) Apply(buf *richtext.Buffer, call C) int {
	cursor, count := 0, 0
	for {
		m := r.Find(buf.String(), cursor)
		if m == nil {
			break
		}
		count++
		tracer().Debugf("rule %s matches %v: %q", r.name, m.Range, m.String())
		rev := buf.Revision()
		end := r.handler(m, buf, call)
		if end > cursor {
			cursor = end
		} else {
			// no progress: step over the match's first character
			text := buf.String()
			cursor = max(cursor, m.eligibleFrom())
			if cursor >= len(text) {
				break
			}
			_, w := utf8.DecodeRuneInString(text[cursor:])
			cursor += w
			if buf.Revision() == rev {
				tracer().Debugf("rule %s consumed nothing at %d", r.name, m.Start)
			}
		}
		if l := buf.Len(); cursor > l {
			cursor = l
		}
	}
	return count
}

// --- Rule sets -------------------------------------------------------------

// Set is an ordered list of rules. The order of registration is the order of
// precedence: earlier rules see the text first.
type Set[C any] struct {
	rules []*Rule[C]
}

// NewSet creates an empty rule set.
func NewSet[C any]() *Set[C] {
	return &Set[C]{}
}

// Add appends a rule. If err is non-nil or rule is nil, the rule is skipped:
// the feature it implements will not be available, but all other rules keep
// working. The signature matches the result of Compile, allowing
//
//	set.Add(rules.Compile(name, pattern, handler))
func (s *Set[C]) Add(rule *Rule[C], err error) *Set[C] {
	if err != nil {
		tracer().Errorf("skipping rule: %v", err)
		return s
	}
	if rule == nil {
		tracer().Errorf("skipping nil rule")
		return s
	}
	s.rules = append(s.rules, rule)
	return s
}

// Len returns the number of rules in s.
func (s *Set[C]) Len() int {
	return len(s.rules)
}

// Rules returns the rules of s in order of precedence.
func (s *Set[C]) Rules() []*Rule[C] {
	rules := make([]*Rule[C], len(s.rules))
	copy(rules, s.rules)
	return rules
}

// Has is true if a rule of the given name has been registered.
func (s *Set[C]) Has(name string) bool {
	for _, r := range s.rules {
		if r.name == name {
			return true
		}
	}
	return false
}

// Apply runs every rule of s over buf, in order.
func (s *Set[C]) Apply(buf *richtext.Buffer, call C) {
	Apply(s.rules, buf, call)
}

// Apply runs rules over buf, one rule after the other.
func Apply[C any](rules []*Rule[C], buf *richtext.Buffer, call C) {
	for _, r := range rules {
		if n := r.Apply(buf, call); n > 0 {
			tracer().Debugf("rule %s applied %d times", r.name, n)
		}
	}
	if err := buf.Validate(); err != nil {
		tracer().Errorf("buffer invalid after applying rules: %v", err)
	}
}
