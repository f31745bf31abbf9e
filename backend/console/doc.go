/*
Package console prints styled paragraphs to a terminal.

Colours and text effects are taken from a Theme, which maps attribute keys to
pterm colour names. Themes may be read from YAML:

	styles:
	  bold:      [bold]
	  header:    [bold, fgCyan]
	  header[1]: [bold, fgMagenta]
	  linkTarget: [underscore, fgBlue]
	show-links: true

A key with a level (e.g. header[1]) is looked up first, then its base name.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package console

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.backend'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.backend")
}
