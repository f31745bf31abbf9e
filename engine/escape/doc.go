/*
Package escape hides characters from pattern rules and restores them later.

Protected characters are replaced by tokens: the private use character
U+E000 followed by four upper-case hex digits, the character's UTF-16 code
unit. Characters outside the basic multilingual plane take two tokens. As no
rule except the unescaper matches tokens, protected punctuation cannot be
mistaken for markup.

The package provides rules for the three sources of protected text

	\*            backslash escapes (the marker is removed)
	`a*b*c`       code spans (fences are kept for the monospace rule)
	U+E000        sentinel characters already present in the input

and a rule reversing all of them, to be run last. Decode is the inverse of
every protection, i.e. Decode(EncodeString(s)) == s for all valid UTF-8 s.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package escape

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.rules'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.rules")
}
