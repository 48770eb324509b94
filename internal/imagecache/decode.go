package imagecache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/mmcdole/seerrpad/internal/domain"
)

// Poster bounds used when none are configured
const (
	DefaultWidth  = 300
	DefaultHeight = 450
)

const (
	// sourcePixelFactor is how many times the poster area a source may be
	sourcePixelFactor = 64
	// minSourcePixels keeps small poster bounds from rejecting ordinary art
	minSourcePixels = 4 << 20
)

var placeholderColor = color.RGBA{R: 60, G: 60, B: 80, A: 255}

// Decoder turns raw bytes into a display-ready image
type Decoder func(data []byte) (image.Image, error)

// NewDecoder returns a Decoder that shrinks images to fit within maxW x maxH.
// The header is read first and sources far larger than the bounds are
// rejected before any pixel memory is allocated.
func NewDecoder(maxW, maxH int) Decoder {
	limit := pixelLimit(maxW, maxH)
	return func(data []byte) (image.Image, error) {
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: empty image data", domain.ErrDecode)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > limit {
			return nil, fmt.Errorf("%w: %s image is %dx%d, limit is %d pixels",
				domain.ErrDecode, format, cfg.Width, cfg.Height, limit)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
		}
		return fit(img, maxW, maxH), nil
	}
}

// pixelLimit is the largest source area accepted for the given poster bounds
func pixelLimit(maxW, maxH int) int64 {
	if maxW <= 0 || maxH <= 0 {
		maxW, maxH = DefaultWidth, DefaultHeight
	}
	return max(int64(maxW)*int64(maxH)*sourcePixelFactor, minSourcePixels)
}

// Placeholder builds the flat image shown for missing art
func Placeholder(w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderColor}, image.Point{}, xdraw.Src)
	return img
}

// fit scales src down to fit within maxW x maxH, preserving aspect ratio.
// Images already inside the bounds are returned as is.
func fit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return src
	}

	var dw, dh int
	if w*maxH > h*maxW {
		dw, dh = maxW, h*maxW/w
	} else {
		dw, dh = w*maxH/h, maxH
	}

	dst := image.NewRGBA(image.Rect(0, 0, max(1, dw), max(1, dh)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// FetchLoader adapts a byte fetcher into a synchronous Loader. Each call gets
// its own timeout derived from ctx.
func FetchLoader(ctx context.Context, timeout time.Duration, fetch func(ctx context.Context, url string) ([]byte, error), decode Decoder) Loader {
	return func(url string) (image.Image, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		data, err := fetch(callCtx, url)
		if err != nil {
			return nil, err
		}
		return decode(data)
	}
}
