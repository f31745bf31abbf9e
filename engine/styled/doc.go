/*
Package styled creates styled paragraphs from rich text buffers.

A paragraph is a cords.styled.Text, where every run of text carries a Set
of attributes. Renderers iterate over the runs of a paragraph and never see
the buffer's overlay of (possibly overlapping) attribute ranges.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package styled

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.backend'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.backend")
}
