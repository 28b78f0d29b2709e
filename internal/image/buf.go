package image

import (
	"errors"
	stdimage "image"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// bytesPerPixel is the size of one RGBA8 pixel.
const bytesPerPixel = 4

// ImageBuf is an 8-bit RGBA image with straight alpha.
//
// ImageBuf is not safe for concurrent mutation.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
}

// NewImageBuf creates a transparent image of the given size.
func NewImageBuf(width, height int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	stride := width * bytesPerPixel
	return &ImageBuf{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
	}, nil
}

// Clone creates a deep, tightly packed copy of the image.
func (b *ImageBuf) Clone() *ImageBuf {
	c, _ := NewImageBuf(b.width, b.height)
	for y := range b.height {
		copy(c.RowBytes(y), b.RowBytes(y))
	}
	return c
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int { return b.height }

// Stride returns the number of bytes per row.
func (b *ImageBuf) Stride() int { return b.stride }

// Bounds returns the image dimensions as (width, height).
func (b *ImageBuf) Bounds() (int, int) { return b.width, b.height }

// Data returns the raw pixel data.
func (b *ImageBuf) Data() []byte { return b.data }

// RowBytes returns the pixels of row y, or nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.width*bytesPerPixel]
}

// PixelOffset returns the byte offset of pixel (x, y), or -1 when out of bounds.
func (b *ImageBuf) PixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return y*b.stride + x*bytesPerPixel
}

// GetRGBA returns the color at (x, y). Out-of-bounds reads return
// transparent black.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return 0, 0, 0, 0
	}
	p := b.data[off : off+4 : off+4]
	return p[0], p[1], p[2], p[3]
}

// SetRGBA sets the color at (x, y).
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	off := b.PixelOffset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}
	p := b.data[off : off+4 : off+4]
	p[0], p[1], p[2], p[3] = r, g, bl, a
	return nil
}

// Clear sets all pixels to transparent black.
func (b *ImageBuf) Clear() {
	for y := range b.height {
		clear(b.RowBytes(y))
	}
}

// Fill sets all pixels to the given color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	for y := range b.height {
		row := b.RowBytes(y)
		for x := 0; x < len(row); x += bytesPerPixel {
			row[x], row[x+1], row[x+2], row[x+3] = r, g, bl, a
		}
	}
}

// SubImage returns a view of the rectangle at (x, y) with the given size.
// The view shares pixel memory with b. It returns nil if the rectangle
// does not fit inside b.
func (b *ImageBuf) SubImage(x, y, width, height int) *ImageBuf {
	if width <= 0 || height <= 0 || x < 0 || y < 0 || x+width > b.width || y+height > b.height {
		return nil
	}
	start := y*b.stride + x*bytesPerPixel
	end := (y+height-1)*b.stride + (x+width)*bytesPerPixel
	return &ImageBuf{
		data:   b.data[start:end],
		width:  width,
		height: height,
		stride: b.stride,
	}
}

// NRGBA returns an *image.NRGBA that shares memory with b.
func (b *ImageBuf) NRGBA() *stdimage.NRGBA {
	return &stdimage.NRGBA{
		Pix:    b.data,
		Stride: b.stride,
		Rect:   stdimage.Rect(0, 0, b.width, b.height),
	}
}

// IsTransparent reports whether every pixel has zero alpha.
func (b *ImageBuf) IsTransparent() bool {
	for y := range b.height {
		row := b.RowBytes(y)
		for x := 3; x < len(row); x += bytesPerPixel {
			if row[x] != 0 {
				return false
			}
		}
	}
	return true
}
