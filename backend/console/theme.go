package console

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Theme maps attribute keys to terminal styles.
type Theme struct {
	Styles      map[string][]string `yaml:"styles"`
	ShowLinks   bool                `yaml:"show-links"`   // print link targets after link text
	ImageMarker string              `yaml:"image-marker"` // printed for resolved images
}

// DefaultTheme returns the theme used if clients do not provide one.
func DefaultTheme() *Theme {
	return &Theme{
		Styles: map[string][]string{
			string(richtext.Bold):       {"bold"},
			string(richtext.Italic):     {"italic"},
			string(richtext.BoldItalic): {"bold", "italic"},
			string(richtext.Strike):     {"strikethrough"},
			string(richtext.Monospace):  {"fgYellow"},
			string(richtext.LinkTarget): {"underscore", "fgBlue"},
			string(richtext.AltText):    {"italic", "fgGray"},
			"header":                    {"bold", "fgCyan"},
			"list":                      {"fgGreen"},
			"orderedList":               {"fgGreen"},
			"quote":                     {"fgGray"},
		},
		ShowLinks:   true,
		ImageMarker: "[image]",
	}
}

// ReadTheme reads a theme from YAML. Styles not mentioned in the YAML are
// unstyled. Unknown colour names are an error.
func ReadTheme(r io.Reader) (*Theme, error) {
	theme := &Theme{}
	if err := yaml.NewDecoder(r).Decode(theme); err != nil && !errors.Is(err, io.EOF) {
		return nil, core.WrapError(err, core.EINVALID, "cannot read console theme")
	}
	for key, names := range theme.Styles {
		for _, name := range names {
			if _, ok := colorNames[strings.ToLower(name)]; !ok {
				return nil, core.Error(core.EINVALID, "unknown colour %q for %s", name, key)
			}
		}
	}
	if theme.ImageMarker == "" {
		theme.ImageMarker = "[image]"
	}
	return theme, nil
}

// colorsFor returns the pterm colours for a set of attributes, in the order
// of the attribute keys.
func (theme *Theme) colorsFor(attrs richtext.Attributes) []pterm.Color {
	var colors []pterm.Color
	for _, k := range attrs.Keys() {
		names, ok := theme.Styles[string(k)]
		if !ok {
			base, _ := k.Level()
			names = theme.Styles[base]
		}
		for _, name := range names {
			if c, ok := colorNames[strings.ToLower(name)]; ok {
				colors = append(colors, c)
			}
		}
	}
	return colors
}

// ColorNames returns the colour names a theme may use.
func ColorNames() []string {
	names := make([]string, 0, len(colorNames))
	for n := range colorNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var colorNames = map[string]pterm.Color{
	"bold":          pterm.Bold,
	"italic":        pterm.Italic,
	"underscore":    pterm.Underscore,
	"strikethrough": pterm.Strikethrough,
	"reverse":       pterm.Reverse,
	"fgblack":       pterm.FgBlack,
	"fgred":         pterm.FgRed,
	"fggreen":       pterm.FgGreen,
	"fgyellow":      pterm.FgYellow,
	"fgblue":        pterm.FgBlue,
	"fgmagenta":     pterm.FgMagenta,
	"fgcyan":        pterm.FgCyan,
	"fgwhite":       pterm.FgWhite,
	"fggray":        pterm.FgGray,
	"bgblack":       pterm.BgBlack,
	"bgred":         pterm.BgRed,
	"bggreen":       pterm.BgGreen,
	"bgyellow":      pterm.BgYellow,
	"bgblue":        pterm.BgBlue,
	"bgmagenta":     pterm.BgMagenta,
	"bgcyan":        pterm.BgCyan,
	"bgwhite":       pterm.BgWhite,
	"bggray":        pterm.BgGray,
}
