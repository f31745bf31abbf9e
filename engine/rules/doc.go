/*
Package rules implements a small engine applying pattern rules to a rich text
buffer.

A rule is a compiled regular expression together with a handler. The engine
runs rules one after the other, in the order of registration. For each rule,
it repeatedly searches the live buffer for the next match at or after a
cursor, calls the handler and moves the cursor to the end of the region the
handler reports as consumed. Handlers are free to mutate the buffer; every
search re-reads the buffer, so no match offsets are ever cached across
mutations.

Handlers refer to capture groups by name, never by number. A few group names
have a meaning for the engine:

	pre   leading context, not part of the region a match consumes

A match is eligible if its 'pre' group (or, without one, the match itself)
ends at or after the cursor. As Go's regular expressions cannot start
matching in the middle of a text without losing the meaning of '^', the
engine searches from the start of the line containing the cursor and skips
matches which are not eligible.

Rules are generic over a per-call context type, which is handed to every
handler invocation. This lets a rule set be compiled once and shared between
concurrent parses, each with its own configuration.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package rules

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.rules'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.rules")
}
