package markdown

import (
	"image"
	"net/url"
	"strings"
	"sync"

	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/escape"
	"github.com/npillmayer/mdstyle/engine/rules"
)

// ObjectReplacement is the placeholder character for a resolved image.
const ObjectReplacement = "\uFFFC"

// urlPattern returns the pattern fragment for an URL with one of the given
// schemes. Schemes are inserted verbatim.
func urlPattern(schemes []string) string {
	return `(?P<url>(?:` + strings.Join(schemes, "|") + `)://[^\s()]+)`
}

func addLinkRules(set *rules.Set[*parseCall], schemes []string) {
	set.Add(rules.Compile("image",
		`!\[(?P<alt>[^\[\]]*)\]\(`+urlPattern(schemes)+`\)`,
		imageHandler))
	set.Add(rules.Compile("link",
		`(?P<pre>^|[^!])\[(?P<text>[^\[\]\n]+)\]\(`+urlPattern(schemes)+`\)`,
		linkHandler))
}

// linkHandler removes the link markup, leaving the link text. If the URL is
// well-formed, the text is styled as a link with the URL as link target.
func linkHandler(m *rules.Match, buf *richtext.Buffer, call *parseCall) int {
	text, _ := m.Group("text")
	target, perr := url.PathUnescape(escape.Decode(m.Submatch("url")))
	var u *url.URL
	if perr == nil {
		u, perr = url.Parse(target)
	}
	if err := buf.Delete(text.End, m.End); err != nil { // "](url)"
		tracer().Errorf("cannot remove link markup: %v", err)
		return m.End
	}
	if err := buf.Delete(text.Start-1, text.Start); err != nil { // "["
		tracer().Errorf("cannot remove link markup: %v", err)
		return text.End
	}
	from, to := text.Start-1, text.End-1
	if perr != nil {
		tracer().Infof("link target %q not usable: %v", m.Submatch("url"), perr)
		return to
	}
	attrs := call.styles.Link.Merge(richtext.Attributes{richtext.LinkTarget: u.String()})
	if err := buf.AddAttributes(attrs, from, to); err != nil {
		tracer().Errorf("cannot style link: %v", err)
	}
	return to
}

// imageHandler hides the image markup from the inline and block rules and
// asks the resolver for the image. The final unescape rule restores the
// markup as plain text; it is replaced as soon as the resolver completes,
// which may be long after the parse has returned.
func imageHandler(m *rules.Match, buf *richtext.Buffer, call *parseCall) int {
	locator := escape.Decode(m.Submatch("url"))
	alt := escape.Decode(m.Submatch("alt"))
	end, err := escape.ProtectRange(buf, m.Start, m.End)
	if err != nil {
		tracer().Errorf("cannot protect image markup: %v", err)
		return m.End
	}
	anchor, err := buf.Mark(m.Start, end)
	if err != nil {
		tracer().Errorf("cannot anchor image markup: %v", err)
		return end
	}
	req := call.doc.request(anchor, locator, alt, call.styles)
	if call.styles.Resolver == nil {
		req.complete(nil)
	} else {
		call.styles.Resolver.ResolveImage(locator, req.complete)
	}
	return end
}

// imageRequest is an outstanding image resolution.
type imageRequest struct {
	doc     *Document
	anchor  *richtext.Anchor
	locator string
	alt     string
	styles  *StyleConfig
	once    sync.Once
}

// complete is handed to the resolver as completion callback. Only the first
// call has an effect.
func (req *imageRequest) complete(img image.Image) {
	req.once.Do(func() {
		req.doc.completed(req, img)
	})
}

// apply replaces the image markup, either by a placeholder for the image or
// by the alternative text.
func (req *imageRequest) apply(img image.Image) {
	defer req.anchor.Release()
	var err error
	if img != nil {
		attrs := req.styles.Image.Merge(richtext.Attributes{richtext.ImageContent: img})
		err = req.anchor.ReplaceText(ObjectReplacement, attrs)
	} else {
		tracer().Infof("image %q not available, using alt text", req.locator)
		attrs := withKey(req.styles.AltText, richtext.AltText)
		if attrs != nil {
			attrs = attrs.Merge(richtext.Attributes{richtext.AltText: req.locator})
		}
		err = req.anchor.ReplaceText(req.alt, attrs)
	}
	if err != nil {
		tracer().Errorf("cannot replace image markup for %q: %v", req.locator, err)
	}
}
