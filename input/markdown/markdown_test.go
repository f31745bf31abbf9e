package markdown

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// styledTexts returns the text of all overlay entries carrying key.
func styledTexts(doc *Document, key richtext.Key) []string {
	var texts []string
	for _, r := range doc.RangesOf(key) {
		s, _ := doc.Slice(r.Start, r.End)
		texts = append(texts, s)
	}
	return texts
}

func TestInlineEmphasis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	rs := NewRuleSet(DefaultConfig())
	doc := Parse("Some **bold**, _italic_ and ~~gone~~ words, in a_snake_case id.", rs, nil)
	assert.Equal(t, "Some bold, italic and gone words, in a_snake_case id.", doc.String())
	assert.Equal(t, []string{"bold"}, styledTexts(doc, richtext.Bold))
	assert.Equal(t, []string{"italic"}, styledTexts(doc, richtext.Italic))
	assert.Equal(t, []string{"gone"}, styledTexts(doc, richtext.Strike))
	assert.True(t, doc.Stable())
}

func TestInlineBodyBoundaries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	rs := NewRuleSet(DefaultConfig())
	for _, s := range []string{
		"2 * 3 * 4",
		"* not bold*",
		"**not\nbold**",
		"x*y*z",
	} {
		doc := Parse(s, rs, nil)
		assert.Equal(t, s, doc.String())
		assert.Empty(t, doc.RangesOf(richtext.Bold), "%q should not be bold", s)
	}
}

func TestNestedEmphasisCombines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	rs := NewRuleSet(DefaultConfig())
	for _, s := range []string{"*__x__*", "__*x*__", "**_x_**"} {
		doc := Parse(s, rs, nil)
		assert.Equal(t, "x", doc.String(), "input %q", s)
		entries := doc.Entries()
		require.Len(t, entries, 1, "input %q: %v", s, entries)
		assert.Equal(t, richtext.Range{Start: 0, End: 1}, entries[0].Range)
		assert.True(t, entries[0].Attributes.Has(richtext.BoldItalic))
		assert.False(t, entries[0].Attributes.Has(richtext.Bold))
		assert.False(t, entries[0].Attributes.Has(richtext.Italic))
	}
}

func TestMonospaceProtectsContent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("run `*not bold*` and ``a ` b``", nil, nil)
	assert.Equal(t, "run *not bold* and a ` b", doc.String())
	assert.Empty(t, doc.RangesOf(richtext.Bold))
	// longer fences are handled first
	assert.Equal(t, []string{"a ` b", "*not bold*"}, styledTexts(doc, richtext.Monospace))
}

func TestEscapes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse(`\*not bold\* and \# no header`, nil, nil)
	assert.Equal(t, `*not bold* and # no header`, doc.String())
	assert.Empty(t, doc.Entries())
	doc = Parse("\\# not a header", nil, nil)
	assert.Equal(t, "# not a header", doc.String())
	assert.Empty(t, doc.Entries())
	doc = Parse("private \uE000 use", nil, nil)
	assert.Equal(t, "private \uE000 use", doc.String())
}

func TestBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	input := strings.Join([]string{
		"# Title",
		"##Short",
		"- item",
		"** nested item",
		"1.2. sub item",
		"> quoted",
		"####### too deep",
		"no #header",
	}, "\n")
	doc := Parse(input, nil, nil)
	assert.Equal(t, input, doc.String(), "block markup should stay in place")
	// lead markup is styled like the text by default
	assert.Equal(t, []string{"# ", "Title"}, styledTexts(doc, richtext.Header(1)))
	assert.Equal(t, []string{"##", "Short"}, styledTexts(doc, richtext.Header(2)))
	assert.Equal(t, []string{"- ", "item"}, styledTexts(doc, richtext.List(1)))
	assert.Equal(t, []string{"** ", "nested item"}, styledTexts(doc, richtext.List(2)))
	assert.Equal(t, []string{"1.2. ", "sub item"}, styledTexts(doc, richtext.OrderedList(2)))
	assert.Equal(t, []string{"> ", "quoted"}, styledTexts(doc, richtext.Quote(1)))
	assert.Empty(t, doc.RangesOf(richtext.Header(6)))
	assert.Empty(t, doc.RangesOf(richtext.Header(7)))
}

func TestLevelFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	styles := DefaultStyles()
	styles.Headers = LevelTable{{"size": 20}, {"size": 16}}
	var leads []string
	styles.Lead = func(buf *richtext.Buffer, kind BlockKind, level int, from, to int) {
		s, _ := buf.Slice(from, to)
		leads = append(leads, kind.String()+":"+s)
	}
	doc := Parse("# one\n##### five", nil, styles)
	assert.Equal(t, 20, doc.AttributesAt(2)["size"])
	pos := strings.Index(doc.String(), "five")
	assert.Equal(t, 16, doc.AttributesAt(pos)["size"])
	assert.True(t, doc.AttributesAt(pos).Has(richtext.Header(5)))
	assert.Equal(t, []string{"header:# ", "header:##### "}, leads)
	//
	assert.Nil(t, LevelTable{}.At(1))
	styles.Quotes = nil
	doc = Parse("> quote", nil, styles)
	assert.Empty(t, doc.Entries(), "empty level table disables styling")
}

func TestLink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("[site](https://example.com)", nil, nil)
	assert.Equal(t, "site", doc.String())
	for pos := 0; pos < 4; pos++ {
		assert.Equal(t, "https://example.com", doc.AttributesAt(pos)[richtext.LinkTarget])
	}
	doc = Parse("see [the docs](https://example.com/a%20b?q=1) now", nil, nil)
	assert.Equal(t, "see the docs now", doc.String())
	assert.Equal(t, []string{"the docs"}, styledTexts(doc, richtext.LinkTarget))
	assert.Equal(t, "https://example.com/a%20b?q=1", doc.AttributesAt(5)[richtext.LinkTarget])
}

func TestLinkUnusableTarget(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("[x](https://exa%zzmple.com)", nil, nil)
	assert.Equal(t, "x", doc.String())
	assert.Empty(t, doc.Entries())
}

func TestDisallowedScheme(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("[x](ftp://host)", nil, nil)
	assert.Equal(t, "[x](ftp://host)", doc.String())
	assert.Empty(t, doc.Entries())
	//
	rs := NewRuleSet(Config{Schemes: []string{"ftp"}})
	doc = Parse("[x](ftp://host)", rs, nil)
	assert.Equal(t, "x", doc.String())
	assert.Equal(t, "ftp://host", doc.AttributesAt(0)[richtext.LinkTarget])
}

func TestMalformedSchemeSkipsRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	rs := NewRuleSet(Config{Schemes: []string{"ht(tp"}})
	assert.False(t, rs.Has("link"))
	assert.False(t, rs.Has("image"))
	assert.True(t, rs.Has("bold-1"))
	doc := Parse("[x](https://a.b) and **y**", rs, nil)
	assert.Equal(t, "[x](https://a.b) and y", doc.String())
	assert.Equal(t, []string{"y"}, styledTexts(doc, richtext.Bold))
}

func TestDefaultSchemesAreReadAtCompileTime(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	saved := DefaultSchemes
	defer func() { DefaultSchemes = saved }()
	rs := NewRuleSet(DefaultConfig())
	DefaultSchemes = []string{"gopher"}
	doc := Parse("[x](gopher://h)", rs, nil)
	assert.Equal(t, "[x](gopher://h)", doc.String())
	doc = Parse("[x](gopher://h)", NewRuleSet(DefaultConfig()), nil)
	assert.Equal(t, "x", doc.String())
}

func TestNormalization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("Cafe\u0301", nil, nil)
	assert.Equal(t, "Caf\u00e9", doc.String())
	conf := DefaultConfig()
	conf.NormalizeNFC = false
	doc = Parse("Cafe\u0301", NewRuleSet(conf), nil)
	assert.Equal(t, "Cafe\u0301", doc.String())
}

func TestReadConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	conf, err := ReadConfig(strings.NewReader("schemes: [https, mailto]\nmax-level: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https", "mailto"}, conf.Schemes)
	assert.Equal(t, 3, conf.MaxLevel)
	assert.Equal(t, DefaultMaxFence, conf.MaxFence)
	conf, err = ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultSchemes, conf.Schemes)
	_, err = ReadConfig(strings.NewReader("max-level: [1"))
	assert.Error(t, err)
}

// --- Images ----------------------------------------------------------------

func TestImageFallback(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	styles := DefaultStyles()
	styles.AltText = richtext.Attributes{"color": "grey"}
	styles.Resolver = ImageResolverFunc(func(locator string, done func(image.Image)) {
		done(nil)
	})
	doc := Parse("![alt](https://example.com/x.png)", nil, styles)
	assert.True(t, doc.Stable())
	assert.Equal(t, "alt", doc.String())
	assert.Equal(t, "grey", doc.AttributesAt(0)["color"])
	assert.Equal(t, "https://example.com/x.png", doc.AttributesAt(0)[richtext.AltText])
	assert.Empty(t, doc.RangesOf(richtext.ImageContent))
	//
	doc = Parse("a ![*b*](https://example.com/x.png) c", nil, nil) // no resolver
	assert.Equal(t, "a *b* c", doc.String())
	assert.Empty(t, doc.RangesOf(richtext.Bold), "alt text is not parsed")
}

func TestImageResolvedSynchronously(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var calls int
	styles := DefaultStyles()
	styles.Resolver = ImageResolverFunc(func(locator string, done func(image.Image)) {
		calls++
		done(img)
		done(nil) // must be ignored
	})
	doc := Parse("**x** ![pic](https://h/p.png) [l](https://h)", nil, styles)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "x "+ObjectReplacement+" l", doc.String())
	pos := strings.Index(doc.String(), ObjectReplacement)
	assert.Same(t, img, doc.AttributesAt(pos)[richtext.ImageContent])
	assert.Equal(t, []string{"x"}, styledTexts(doc, richtext.Bold))
	assert.Equal(t, []string{"l"}, styledTexts(doc, richtext.LinkTarget))
	select {
	case <-doc.Done():
	default:
		t.Errorf("document should be stable")
	}
}

func TestImageResolvedAsynchronously(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	release := make(chan struct{})
	styles := DefaultStyles()
	styles.Resolver = ImageResolverFunc(func(locator string, done func(image.Image)) {
		go func() {
			<-release
			if strings.HasSuffix(locator, "missing.png") {
				done(nil)
				return
			}
			done(img)
		}()
	})
	doc := Parse("# Pics\n![one](https://h/1.png) and ![two](https://h/missing.png) *end*", nil, styles)
	assert.Equal(t, 2, doc.Outstanding())
	assert.False(t, doc.Stable())
	assert.Equal(t, "# Pics\n![one](https://h/1.png) and ![two](https://h/missing.png) end", doc.String(),
		"image markup stays visible until resolved")
	//
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	err := doc.Wait(ctx)
	cancel()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	//
	close(release)
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, doc.Wait(ctx))
	assert.True(t, doc.Stable())
	assert.Equal(t, "# Pics\n"+ObjectReplacement+" and two end", doc.String())
	assert.Equal(t, []string{"end"}, styledTexts(doc, richtext.Bold))
	assert.Equal(t, []string{"Pics"}, styledTexts(doc, richtext.Header(1))[1:])
	assert.Equal(t, []string{"two"}, styledTexts(doc, richtext.AltText))
	require.NoError(t, doc.Validate())
}

func TestParseParagraphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	doc := Parse("hello \\* world and ~~gone~~ and __it__ yes", nil, nil)
	assert.Equal(t, "hello * world and gone and it yes", doc.String())
	assert.Equal(t, []string{"gone"}, styledTexts(doc, richtext.Strike))
	assert.Equal(t, []string{"it"}, styledTexts(doc, richtext.Italic))
	//
	doc = Parse("x `ab` y", nil, nil)
	assert.Equal(t, "x ab y", doc.String())
	assert.Equal(t, []string{"ab"}, styledTexts(doc, richtext.Monospace))
	//
	doc = Parse("see [the site](https://example.com/a) and \\*not\\* here ok", nil, nil)
	assert.Equal(t, "see the site and *not* here ok", doc.String())
	assert.Equal(t, "https://example.com/a", doc.AttributesAt(4)[richtext.LinkTarget])
	assert.Empty(t, styledTexts(doc, richtext.Bold))
	//
	doc = Parse("para with `code *x*` and more words", nil, nil)
	assert.Equal(t, "para with code *x* and more words", doc.String())
	assert.Equal(t, []string{"code *x*"}, styledTexts(doc, richtext.Monospace))
	assert.Empty(t, styledTexts(doc, richtext.Bold))
}

func TestParseLongText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdstyle.markdown")
	defer teardown()
	//
	line := "Some **bold** words, `code \\*` and ~~old~~ text with \\_escapes\\_ and [a link](https://example.org/x).\n"
	want := "Some bold words, code \\* and old text with _escapes_ and a link.\n"
	doc := Parse(strings.Repeat(line, 40), nil, nil)
	assert.Equal(t, strings.Repeat(want, 40), doc.String())
	assert.Len(t, styledTexts(doc, richtext.Bold), 40)
	assert.Len(t, styledTexts(doc, richtext.Monospace), 40)
	assert.Len(t, styledTexts(doc, richtext.LinkTarget), 40)
	require.NoError(t, doc.Validate())
}
