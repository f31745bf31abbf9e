package html

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/styled"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerClass is the class of the enclosing div element.
const ContainerClass = "markdown"

// Render writes a paragraph as an HTML fragment to w.
func Render(w io.Writer, para *styled.Paragraph) error {
	root, err := Fragment(para)
	if err != nil {
		return err
	}
	if err = html.Render(w, root); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot render HTML")
	}
	return nil
}

// Fragment converts a paragraph into an HTML node tree, rooted at a div
// element.
func Fragment(para *styled.Paragraph) (*html.Node, error) {
	if para == nil {
		return nil, core.Error(core.EINVALID, "no paragraph to render")
	}
	root := element(atom.Div, attr("class", ContainerClass))
	err := para.ForEachStyleRun(func(run styled.Run) error {
		for _, n := range runNodes(run) {
			root.AppendChild(n)
		}
		return nil
	})
	return root, err
}

// runNodes creates the nodes for a run of text. Elements nest, from outside
// to inside, as
//
//	span(levels) a s span(alt-text) b i code
func runNodes(run styled.Run) []*html.Node {
	set := run.StyleSet
	if img, ok := set.Get(richtext.ImageContent).(image.Image); ok {
		if n := imageNode(img); n != nil {
			return []*html.Node{n}
		}
	}
	nodes := textNodes(run.Text)
	if set.Has(richtext.Monospace) {
		nodes = wrap(nodes, element(atom.Code))
	}
	if set.Has(richtext.Italic) || set.Has(richtext.BoldItalic) {
		nodes = wrap(nodes, element(atom.I))
	}
	if set.Has(richtext.Bold) || set.Has(richtext.BoldItalic) {
		nodes = wrap(nodes, element(atom.B))
	}
	if locator, ok := set.Get(richtext.AltText).(string); ok {
		nodes = wrap(nodes, element(atom.Span, attr("class", "alt-text"), attr("title", locator)))
	}
	if set.Has(richtext.Strike) {
		nodes = wrap(nodes, element(atom.S))
	}
	if target, ok := set.Get(richtext.LinkTarget).(string); ok {
		nodes = wrap(nodes, element(atom.A, attr("href", target)))
	}
	if classes := levelClasses(set.Attributes()); classes != "" {
		nodes = wrap(nodes, element(atom.Span, attr("class", classes)))
	}
	return nodes
}

// levelClasses returns the class names for all keys with a level, sorted.
func levelClasses(attrs richtext.Attributes) string {
	var classes []string
	for _, k := range attrs.Keys() {
		if base, n := k.Level(); n > 0 {
			classes = append(classes, fmt.Sprintf("%s-%d", base, n))
		}
	}
	return strings.Join(classes, " ")
}

// textNodes splits text at newlines, which are rendered as <br> elements.
func textNodes(text string) []*html.Node {
	var nodes []*html.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			nodes = append(nodes, element(atom.Br))
		}
		if line != "" {
			nodes = append(nodes, &html.Node{Type: html.TextNode, Data: line})
		}
	}
	return nodes
}

// imageNode inlines an image as a PNG data URI.
func imageNode(img image.Image) *html.Node {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tracer().Errorf("cannot encode image: %v", err)
		return nil
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	b := img.Bounds()
	return element(atom.Img, attr("src", src),
		attr("width", fmt.Sprint(b.Dx())), attr("height", fmt.Sprint(b.Dy())))
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func wrap(nodes []*html.Node, parent *html.Node) []*html.Node {
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return []*html.Node{parent}
}
