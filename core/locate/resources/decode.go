package resources

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/npillmayer/mdstyle/core"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Image size limits to prevent memory exhaustion.
const (
	MaxImageWidth  = 4096             // maximum width in pixels
	MaxImageHeight = 4096             // maximum height in pixels
	MaxImageBytes  = 16 * 1024 * 1024 // decoded size, RGBA at 4 bytes/pixel
)

// maxEncodedBytes limits how much of an image source is read at all.
const maxEncodedBytes = MaxImageBytes + 1

// DecodeImage reads an image in one of the registered formats (PNG, JPEG,
// GIF, BMP, WebP). The image header is checked against the size limits
// before the image data is decoded.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEncodedBytes))
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot read image data")
	}
	if len(data) >= maxEncodedBytes {
		return nil, core.Error(core.EINVALID, "image source exceeds %d bytes", MaxImageBytes)
	}
	conf, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot decode image")
	}
	if err = checkLimits(conf.Width, conf.Height); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot decode %s image", format)
	}
	tracer().Debugf("decoded %s image %dx%d", format, conf.Width, conf.Height)
	return img, nil
}

func checkLimits(width, height int) error {
	if width > MaxImageWidth || height > MaxImageHeight {
		return core.Error(core.EINVALID, "image too large: %dx%d (max %dx%d)",
			width, height, MaxImageWidth, MaxImageHeight)
	}
	if size := width * height * 4; size > MaxImageBytes {
		return core.WrapError(fmt.Errorf("%d bytes decoded", size), core.EINVALID,
			"image exceeds %d bytes when decoded", MaxImageBytes)
	}
	return nil
}
