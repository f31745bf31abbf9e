package console

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/mdstyle/core/richtext"
	"github.com/npillmayer/mdstyle/engine/styled"
	"github.com/pterm/pterm"
)

// Print writes a paragraph to w, styled with theme. A nil theme is replaced
// by the default theme.
func Print(w io.Writer, para *styled.Paragraph, theme *Theme) error {
	s, err := Sprint(para, theme)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(w, s); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot print paragraph")
	}
	return nil
}

// Sprint formats a paragraph with terminal styles.
func Sprint(para *styled.Paragraph, theme *Theme) (string, error) {
	if para == nil {
		return "", core.Error(core.EINVALID, "no paragraph to print")
	}
	if theme == nil {
		theme = DefaultTheme()
	}
	var b strings.Builder
	err := para.ForEachStyleRun(func(run styled.Run) error {
		attrs := run.StyleSet.Attributes()
		text := run.Text
		if img, ok := attrs[richtext.ImageContent].(image.Image); ok {
			bounds := img.Bounds()
			text = fmt.Sprintf("%s(%dx%d)", theme.ImageMarker, bounds.Dx(), bounds.Dy())
		}
		colors := theme.colorsFor(attrs)
		if len(colors) > 0 {
			text = pterm.NewStyle(colors...).Sprint(text)
		}
		b.WriteString(text)
		if target, ok := attrs[richtext.LinkTarget].(string); ok && theme.ShowLinks {
			b.WriteString(" <" + target + ">")
		}
		return nil
	})
	tracer().Debugf("printed paragraph of %d bytes", b.Len())
	return b.String(), err
}
