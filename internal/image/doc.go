// Package image provides the pixel buffer the pipeline works on, plus
// decoding and encoding helpers.
//
// [ImageBuf] stores 8-bit RGBA with straight (non-premultiplied) alpha,
// which is what PNG stores and what the ninepatch control-pixel rules are
// defined against. [ImageBuf.NRGBA] exposes the same memory as an
// *image.NRGBA so golang.org/x/image/draw scalers can read and write it
// without copying.
//
// Decoding registers PNG, JPEG, GIF, BMP, TIFF and WebP.
package image
