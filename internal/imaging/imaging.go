// Package imaging normalises uploaded images to bounded WebP files.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	MaxDimension = 1200
	Quality      = 82
	ContentType  = "image/webp"
	Extension    = ".webp"
)

var ErrUnsupported = errors.New("unsupported image format")

// Normalize decodes jpeg, png, gif or webp, downsizes so neither side
// exceeds MaxDimension and re-encodes as WebP.
func Normalize(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img := Fit(src, MaxDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales src down, keeping its aspect ratio. Smaller images are returned as is.
func Fit(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src
	}

	nw, nh := max, max
	if w >= h {
		nh = h * max / w
	} else {
		nw = w * max / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
