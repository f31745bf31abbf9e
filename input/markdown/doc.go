/*
Package markdown converts markdown-flavoured plain text into rich text.

It is not a markdown parser in the sense of CommonMark. Instead, an ordered
set of pattern rules is applied to a rich text buffer, each rule styling
text and removing markup in place:

	**bold**  __italic__  ~~strike~~  `code`
	# header   * list   1. ordered list   > quote
	[text](https://…)   ![alt](https://…)

Block markup (headers, lists, quotes) is styled but kept in the text.
Inline markup is removed.

Styles are supplied by the client in a StyleConfig. The engine attaches
them to text ranges, using a fixed set of attribute keys, but never looks at
style values.

Images are resolved by an ImageResolver, possibly asynchronously. Until all
images are resolved, the text of a Document may change; clients wait for it
with Document.Wait.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2021–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package markdown

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.markdown'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.markdown")
}
