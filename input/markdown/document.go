package markdown

import (
	"context"
	"image"
	"sync"

	"github.com/npillmayer/mdstyle/core/richtext"
)

// Document is the result of a parse: a rich text buffer, together with the
// bookkeeping for images still being resolved.
//
// As long as images are outstanding, the buffer may change at any time. Clients
// should wait for the document to become stable before handing the buffer
// to a renderer.
type Document struct {
	*richtext.Buffer
	mu          sync.Mutex
	inPass      bool          // rule pass is running
	queue       []queuedImage // completions arrived during the rule pass
	outstanding int           // unresolved image requests
	done        chan struct{} // closed when outstanding drops to 0 after the pass
}

type queuedImage struct {
	req *imageRequest
	img image.Image
}

func newDocument(text string) *Document {
	return &Document{
		Buffer: richtext.NewBuffer(text),
		inPass: true,
		done:   make(chan struct{}),
	}
}

// Outstanding returns the number of images not yet resolved.
func (doc *Document) Outstanding() int {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.outstanding
}

// Stable is true if no image resolutions are outstanding. The buffer of a
// stable document does not change anymore, except by the client.
func (doc *Document) Stable() bool {
	return doc.Outstanding() == 0
}

// Done returns a channel which is closed as soon as the document is stable.
func (doc *Document) Done() <-chan struct{} {
	return doc.done
}

// Wait blocks until the document is stable or ctx is done. There is no
// built-in timeout: a resolver which never completes leaves its image
// outstanding, and bounding the wait is up to the caller.
func (doc *Document) Wait(ctx context.Context) error {
	select {
	case <-doc.done:
		return nil
	case <-ctx.Done():
		tracer().Infof("stopped waiting for %d outstanding images", doc.Outstanding())
		return ctx.Err()
	}
}

func (doc *Document) request(anchor *richtext.Anchor, locator, alt string, styles *StyleConfig) *imageRequest {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.outstanding++
	return &imageRequest{
		doc:     doc,
		anchor:  anchor,
		locator: locator,
		alt:     alt,
		styles:  styles,
	}
}

// completed is called exactly once per image request. During the rule pass,
// completions are queued, as rules hold positions into the buffer.
func (doc *Document) completed(req *imageRequest, img image.Image) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.inPass {
		doc.queue = append(doc.queue, queuedImage{req, img})
		return
	}
	req.apply(img)
	doc.resolved()
}

// endPass applies all completions queued during the rule pass.
func (doc *Document) endPass() {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	for _, q := range doc.queue {
		q.req.apply(q.img)
		doc.outstanding--
	}
	doc.queue = nil
	doc.inPass = false
	if doc.outstanding == 0 {
		close(doc.done)
	}
}

// resolved has to be called with doc.mu held.
func (doc *Document) resolved() {
	doc.outstanding--
	if doc.outstanding == 0 {
		close(doc.done)
	}
}
