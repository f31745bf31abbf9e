package resources

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/npillmayer/mdstyle/core"
	"golang.org/x/sync/singleflight"
)

// NotFound returns an application error for a missing image.
func NotFound(locator string) error {
	e := fmt.Errorf("resource missing: %v", locator)
	return core.WrapError(e, core.EMISSING, "image not found: %s", locator)
}

// --- Promises --------------------------------------------------------------

// ImagePromise is the result of an asynchronous image resolution.
type ImagePromise interface {
	Image() (image.Image, error)                    // blocks until loaded
	Await(ctx context.Context) (image.Image, error) // blocks until loaded or ctx is done
}

type imagePromise struct {
	done chan struct{}
	img  image.Image
	err  error
}

func (p *imagePromise) Image() (image.Image, error) {
	return p.Await(context.Background())
}

func (p *imagePromise) Await(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return p.img, p.err
	}
}

// --- Image loader ----------------------------------------------------------

// Defaults for ImageLoader options.
const (
	DefaultCacheSize = 64
	DefaultTimeout   = 30 * time.Second
)

// Options configures an ImageLoader. The zero value is usable.
type Options struct {
	BaseDir   string       // directory for relative locators; default is the working directory
	Embedded  fs.FS        // images for 'embed:' locators and fallback for missing files
	Client    *http.Client // client for http(s) locators; default has a timeout of DefaultTimeout
	CacheSize int          // number of decoded images to keep
	DiskCache bool         // keep downloads in the user's cache directory, see CacheDirPath
}

// ImageLoader loads and decodes images. Decoded images are kept in an LRU
// cache, and concurrent requests for the same locator share a single load.
// An ImageLoader is safe for concurrent use.
type ImageLoader struct {
	opts   Options
	images *lru.Cache[string, image.Image]
	group  singleflight.Group
}

// NewImageLoader creates an image loader.
func NewImageLoader(opts Options) (*ImageLoader, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: DefaultTimeout}
	}
	images, err := lru.New[string, image.Image](opts.CacheSize)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create image cache")
	}
	return &ImageLoader{opts: opts, images: images}, nil
}

var defaultLoader struct {
	once   sync.Once
	loader *ImageLoader
}

// DefaultLoader returns a package-wide loader with default options.
func DefaultLoader() *ImageLoader {
	defaultLoader.once.Do(func() {
		var err error
		if defaultLoader.loader, err = NewImageLoader(Options{}); err != nil {
			panic(err) // cannot happen with default options
		}
	})
	return defaultLoader.loader
}

// ResolveImage resolves an image with the default loader.
func ResolveImage(locator string) ImagePromise {
	return DefaultLoader().Promise(locator)
}

// Promise starts loading an image and returns a promise for it.
func (l *ImageLoader) Promise(locator string) ImagePromise {
	p := &imagePromise{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.img, p.err = l.Load(context.Background(), locator)
	}()
	return p
}

// ResolveImage loads an image in the background and calls done exactly once,
// with nil if the image is not available.
func (l *ImageLoader) ResolveImage(locator string, done func(image.Image)) {
	go func() {
		done(l.loadOrNil(context.Background(), locator))
	}()
}

// Cached is true if the image for locator is in the cache.
func (l *ImageLoader) Cached(locator string) bool {
	return l.images.Contains(locator)
}

// Load loads an image synchronously.
func (l *ImageLoader) Load(ctx context.Context, locator string) (image.Image, error) {
	if img, ok := l.images.Get(locator); ok {
		return img, nil
	}
	v, err, shared := l.group.Do(locator, func() (interface{}, error) {
		img, err := l.fetch(ctx, locator)
		if err != nil {
			return nil, err
		}
		l.images.Add(locator, img)
		return img, nil
	})
	if shared {
		tracer().Debugf("shared load of image %q", locator)
	}
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (l *ImageLoader) loadOrNil(ctx context.Context, locator string) image.Image {
	img, err := l.Load(ctx, locator)
	if err != nil {
		tracer().Infof("cannot resolve image: %v", err)
		return nil
	}
	return img
}

func (l *ImageLoader) fetch(ctx context.Context, locator string) (image.Image, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, core.Error(core.EINVALID, "empty image locator")
	}
	u, err := url.Parse(locator)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "malformed image locator %q", locator)
	}
	switch u.Scheme {
	case "http", "https":
		return l.fetchHTTP(ctx, u)
	case "file":
		return l.readFile(u.Path)
	case "embed":
		name := u.Opaque
		if name == "" {
			name = strings.TrimPrefix(u.Path, "/")
		}
		return l.readEmbedded(name)
	case "":
		return l.readFile(u.Path)
	}
	return nil, core.Error(core.EINVALID, "unsupported image locator scheme %q", u.Scheme)
}

func (l *ImageLoader) readFile(p string) (image.Image, error) {
	fpath := filepath.FromSlash(p)
	if !filepath.IsAbs(fpath) && l.opts.BaseDir != "" {
		fpath = filepath.Join(l.opts.BaseDir, fpath)
	}
	f, err := os.Open(fpath)
	if err != nil {
		if os.IsNotExist(err) {
			if l.opts.Embedded != nil && !filepath.IsAbs(filepath.FromSlash(p)) {
				tracer().Debugf("image %s not found, trying embedded images", fpath)
				return l.readEmbedded(p)
			}
			return nil, NotFound(fpath)
		}
		return nil, core.WrapError(err, core.EMISSING, "cannot open image %s", fpath)
	}
	defer f.Close()
	return DecodeImage(f)
}

func (l *ImageLoader) readEmbedded(name string) (image.Image, error) {
	if l.opts.Embedded == nil {
		return nil, NotFound("embed:" + name)
	}
	f, err := l.opts.Embedded.Open(path.Clean(name))
	if err != nil {
		return nil, NotFound("embed:" + name)
	}
	defer f.Close()
	return DecodeImage(f)
}

func (l *ImageLoader) fetchHTTP(ctx context.Context, u *url.URL) (image.Image, error) {
	if l.opts.DiskCache {
		fpath, err := l.download(ctx, u)
		if err != nil {
			return nil, err
		}
		return l.readFile(fpath)
	}
	resp, err := get(ctx, l.opts.Client, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return DecodeImage(resp.Body)
}

// get issues a GET request and checks the response status.
func get(ctx context.Context, client *http.Client, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "malformed image URL %q", target)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot fetch image %s", target)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, NotFound(target)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, core.Error(core.ECONNECTION, "fetching image %s: %s", target, resp.Status)
	}
	return resp, nil
}

// SyncResolver resolves images on the caller's goroutine. Parsing with a
// SyncResolver returns documents which are already stable.
type SyncResolver struct {
	Loader *ImageLoader // nil: DefaultLoader()
}

// ResolveImage loads an image and calls done before returning.
func (r SyncResolver) ResolveImage(locator string, done func(image.Image)) {
	l := r.Loader
	if l == nil {
		l = DefaultLoader()
	}
	done(l.loadOrNil(context.Background(), locator))
}
