package markdown

import (
	"image"
	"io"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
	"gopkg.in/yaml.v3"
)

// DefaultSchemes is the list of URL schemes links and images may use, if a
// Config does not name any. It is read when a rule set is created; changing
// it has no effect on rule sets created before.
var DefaultSchemes = []string{"http", "https"}

// Config configures the creation of a rule set. A Config is read once by
// NewRuleSet; a rule set never changes afterwards.
type Config struct {
	// Schemes are inserted into the link and image patterns as alternatives.
	// They are not quoted, so a malformed entry disables links and images.
	Schemes []string `yaml:"schemes"`
	// MaxLevel caps the nesting level of headers, lists and quotes. Deeper
	// constructs are not recognized.
	MaxLevel int `yaml:"max-level"`
	// MaxFence is the length of the longest backtick fence for code spans.
	MaxFence int `yaml:"max-fence"`
	// NormalizeNFC puts the input text into Unicode normal form C before
	// parsing.
	NormalizeNFC bool `yaml:"normalize-nfc"`
}

// Defaults for Config.
const (
	DefaultMaxLevel = 6
	DefaultMaxFence = 3
)

// DefaultConfig returns the configuration used for a nil rule set.
func DefaultConfig() Config {
	return Config{
		MaxLevel:     DefaultMaxLevel,
		MaxFence:     DefaultMaxFence,
		NormalizeNFC: true,
	}
}

// ReadConfig reads a configuration in YAML format. Missing fields are set to
// their defaults.
func ReadConfig(r io.Reader) (Config, error) {
	conf := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&conf); err != nil && err != io.EOF {
		return conf, core.WrapError(err, core.EINVALID, "cannot read markdown configuration")
	}
	return conf.normalized(), nil
}

func (conf Config) normalized() Config {
	if len(conf.Schemes) == 0 {
		conf.Schemes = append([]string(nil), DefaultSchemes...)
	}
	if conf.MaxLevel <= 0 {
		conf.MaxLevel = DefaultMaxLevel
	}
	if conf.MaxFence <= 0 {
		conf.MaxFence = DefaultMaxFence
	}
	return conf
}

// --- Styles ----------------------------------------------------------------

// LevelTable holds styles for the nesting levels of a block construct. Entry 0
// is for level 1.
type LevelTable []richtext.Attributes

// At returns the style for a level (1…). Levels beyond the table use the
// table's last entry. For an empty table, At returns nil, i.e. the construct
// is not styled.
func (t LevelTable) At(level int) richtext.Attributes {
	if len(t) == 0 {
		return nil
	}
	if level < 1 {
		level = 1
	}
	if level > len(t) {
		return t[len(t)-1]
	}
	return t[level-1]
}

// BlockKind tells the kinds of block constructs apart.
type BlockKind int

// Block constructs
const (
	HeaderBlock BlockKind = iota
	ListBlock
	OrderedListBlock
	QuoteBlock
)

func (k BlockKind) String() string {
	switch k {
	case HeaderBlock:
		return "header"
	case ListBlock:
		return "list"
	case OrderedListBlock:
		return "orderedList"
	case QuoteBlock:
		return "quote"
	}
	return "unknown"
}

// Key returns the attribute key of a block construct for a level.
func (k BlockKind) Key(level int) richtext.Key {
	switch k {
	case HeaderBlock:
		return richtext.Header(level)
	case ListBlock:
		return richtext.List(level)
	case OrderedListBlock:
		return richtext.OrderedList(level)
	}
	return richtext.Quote(level)
}

// LeadFormatter is called for the lead markup of a block construct, i.e. the
// range [from,to) from the start of the line up to the start of the text.
// Lead markup is never deleted; a formatter may style it.
type LeadFormatter func(buf *richtext.Buffer, kind BlockKind, level int, from, to int)

// ImageResolver resolves image locators. ResolveImage must call done at most
// once, either synchronously or from any goroutine, with the image or with
// nil if the image is not available. Malformed locators result in nil.
type ImageResolver interface {
	ResolveImage(locator string, done func(image.Image))
}

// ImageResolverFunc adapts a function to the ImageResolver interface.
type ImageResolverFunc func(locator string, done func(image.Image))

// ResolveImage calls f.
func (f ImageResolverFunc) ResolveImage(locator string, done func(image.Image)) {
	f(locator, done)
}

// StyleConfig holds the styles of a parse. Every map should carry the
// construct's attribute key (e.g. richtext.Bold for Bold); the engine adds
// it if missing. A StyleConfig must not be changed while parses using it are
// running.
type StyleConfig struct {
	Bold, Italic, BoldItalic richtext.Attributes
	Strike, Monospace        richtext.Attributes
	Link, Image, AltText     richtext.Attributes

	Headers, Lists, OrderedLists, Quotes LevelTable

	Lead     LeadFormatter // may be nil
	Resolver ImageResolver // nil: every image falls back to its alt text
}

// DefaultStyles returns a style configuration using the engine's keys with
// value true, for six levels of nesting. Lead markup is styled like the
// construct's text.
func DefaultStyles() *StyleConfig {
	styles := &StyleConfig{
		Bold:       richtext.Attributes{richtext.Bold: true},
		Italic:     richtext.Attributes{richtext.Italic: true},
		BoldItalic: richtext.Attributes{richtext.BoldItalic: true},
		Strike:     richtext.Attributes{richtext.Strike: true},
		Monospace:  richtext.Attributes{richtext.Monospace: true},
		Link:       richtext.Attributes{},
		Image:      richtext.Attributes{},
		AltText:    richtext.Attributes{},
	}
	for level := 1; level <= DefaultMaxLevel; level++ {
		styles.Headers = append(styles.Headers, richtext.Attributes{richtext.Header(level): true})
		styles.Lists = append(styles.Lists, richtext.Attributes{richtext.List(level): true})
		styles.OrderedLists = append(styles.OrderedLists, richtext.Attributes{richtext.OrderedList(level): true})
		styles.Quotes = append(styles.Quotes, richtext.Attributes{richtext.Quote(level): true})
	}
	styles.Lead = styles.styleLead
	return styles
}

// Table returns the level table for a kind of block construct.
func (styles *StyleConfig) Table(kind BlockKind) LevelTable {
	switch kind {
	case HeaderBlock:
		return styles.Headers
	case ListBlock:
		return styles.Lists
	case OrderedListBlock:
		return styles.OrderedLists
	}
	return styles.Quotes
}

func (styles *StyleConfig) styleLead(buf *richtext.Buffer, kind BlockKind, level int, from, to int) {
	if attrs := styles.Table(kind).At(level); len(attrs) > 0 {
		if err := buf.AddAttributes(attrs, from, to); err != nil {
			tracer().Errorf("cannot style lead markup of %s: %v", kind, err)
		}
	}
}
