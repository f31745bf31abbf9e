/*
Package html renders styled paragraphs as HTML fragments.

The fragment is a single <div class="markdown">. Inline attributes map to
HTML elements (b, i, s, code, a, img); block attributes with a level map to
span elements with a class name, e.g.

	header[2]   →  <span class="header-2">

Styling by class is left to the page the fragment is embedded in.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package html

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.backend'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.backend")
}
