/*
Package resources resolves images for rich text documents.

As resource loading may be a time-consuming task, functions in this package
work in an async/await fashion by returning a promise. Functions named

	Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

An ImageLoader also offers a callback interface, ResolveImage(locator, done),
which is what the markdown package expects from an image resolver.

Locators may be

	https://host/path/img.png   fetched with the loader's HTTP client
	file:///abs/path/img.png    read from the file system
	img/logo.png                relative to the loader's base directory
	embed:logo.png              read from the loader's embedded file system

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'mdstyle.resources'.
func tracer() tracing.Trace {
	return tracing.Select("mdstyle.resources")
}
