/*
Package richtext implements a mutable text buffer with a style overlay.

A Buffer holds a character sequence (stored as a cord) together with an
ordered list of overlay entries. Each entry attaches a set of attributes to a
range of the text. Entries may overlap; for a given position, attributes of
later entries win per key, and keys of all entries covering the position are
united.

All positions are byte offsets into the UTF-8 text. Every mutation of the
text maps the overlay entries (and any anchors) to their new positions, so
clients never have to re-compute ranges they handed to the buffer before:

	buf := richtext.NewBuffer("Hello *World*")
	buf.AddAttribute(richtext.Bold, true, 7, 12)
	buf.Delete(12, 13)                // remove closing '*'
	buf.Delete(6, 7)                  // remove opening '*', bold range is now [6,11)

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package richtext

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.richtext'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.richtext")
}
