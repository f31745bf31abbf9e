package escape

import (
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/rules"
)

// Marker is the escape character.
const Marker = '\\'

// SentinelRule returns a rule encoding every sentinel character already present
// in the input. It has to run before any other rule producing tokens, making
// Decode the exact inverse of all protection rules.
func SentinelRule[C any]() (*rules.Rule[C], error) {
	return rules.Compile("sentinel", `\x{E000}`,
		func(m *rules.Match, buf *richtext.Buffer, call C) int {
			return replace(buf, m.Range, Encode(Sentinel))
		})
}

// Protect returns a rule for backslash escapes: a marker followed by a
// character other than the marker is replaced by the token for the
// character. The marker is removed. A marker in front of a token is removed
// as well, the token stays.
func Protect[C any]() (*rules.Rule[C], error) {
	return rules.Compile("escape", `\\(?:(?P<token>\x{E000}[0-9a-fA-F]{4})|(?P<body>[^\\\n\x{E000}]))`,
		func(m *rules.Match, buf *richtext.Buffer, call C) int {
			if tok, ok := m.Group("token"); ok {
				if err := buf.Delete(m.Start, m.Start+1); err != nil {
					tracer().Errorf("cannot remove escape marker at %d: %v", m.Start, err)
				}
				return tok.End - 1
			}
			r, _ := utf8.DecodeRuneInString(m.Submatch("body"))
			return replace(buf, m.Range, Encode(r))
		})
}

// ProtectCodeSpan returns a rule for code spans delimited by runs of exactly n
// backticks. Every character between the fences is encoded, the fences
// themselves stay in place for the monospace rule. A fence preceded by a
// marker does not open a code span.
func ProtectCodeSpan[C any](n int) (*rules.Rule[C], error) {
	if n < 1 {
		return nil, core.Error(core.EINVALID, "code fence length must be positive, is %d", n)
	}
	pattern := fmt.Sprintf("(?P<pre>^|[^`\\\\])(?P<open>`{%d})(?P<body>[^`]|[^`](?s:.*?)[^`])(?P<close>`{%d})(?P<post>[^`]|$)", n, n)
	return rules.Compile(fmt.Sprintf("code-span-%d", n), pattern,
		func(m *rules.Match, buf *richtext.Buffer, call C) int {
			body, _ := m.Group("body")
			cl, _ := m.Group("close")
			end, err := ProtectRange(buf, body.Start, body.End)
			if err != nil {
				tracer().Errorf("cannot protect code span %v: %v", body, err)
				return cl.End
			}
			return end + cl.Len()
		})
}

// AddCodeSpanRules appends code span rules for fence lengths maxFence down
// to 1 to set. Longer fences have to be recognized first.
func AddCodeSpanRules[C any](set *rules.Set[C], maxFence int) {
	for n := maxFence; n > 0; n-- {
		set.Add(ProtectCodeSpan[C](n))
	}
}

// ProtectRange encodes the text in range [from,to) of buf in place. Existing
// tokens are left untouched. It returns the end position of the encoded
// range.
func ProtectRange(buf *richtext.Buffer, from, to int) (int, error) {
	text, err := buf.Slice(from, to)
	if err != nil {
		return to, err
	}
	enc := protectText(text)
	if err = buf.Replace(from, to, enc); err != nil {
		return to, err
	}
	return from + len(enc), nil
}

// Unescape returns a rule replacing every token (or token pair) by the
// character it encodes. Scanning continues after the replacement, so an
// unescaped character is never decoded twice.
func Unescape[C any]() (*rules.Rule[C], error) {
	return rules.Compile("unescape", TokenPattern,
		func(m *rules.Match, buf *richtext.Buffer, call C) int {
			return replace(buf, m.Range, decodeToken(m.String()))
		})
}

func replace(buf *richtext.Buffer, r richtext.Range, s string) int {
	if err := buf.Replace(r.Start, r.End, s); err != nil {
		tracer().Errorf("cannot replace %v: %v", r, err)
		return r.End
	}
	return r.Start + len(s)
}
