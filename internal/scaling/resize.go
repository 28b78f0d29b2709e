package scaling

import (
	"golang.org/x/image/draw"

	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/image"
)

// Step returns the size of the next resize step from current toward
// target. Multi-step algorithms halve while half is still larger than
// target; everything else goes straight to target.
func Step(current, target int, alg Algorithm) int {
	if !alg.multiStep || target >= current {
		return target
	}
	if current/2 > target {
		return current / 2
	}
	return target
}

// Resize returns src resampled to width x height with alg. A background
// with non-zero alpha is composited under the result on the final step.
// src is never modified.
func Resize(src *image.ImageBuf, width, height int, alg Algorithm, background blend.Color) (*image.ImageBuf, error) {
	if alg.IsZero() {
		alg = Bilinear
	}
	if width == src.Width() && height == src.Height() {
		out := src.Clone()
		applyBackground(out, background)
		return out, nil
	}

	current := src
	for {
		nextW := Step(current.Width(), width, alg)
		nextH := Step(current.Height(), height, alg)

		next, err := image.NewImageBuf(nextW, nextH)
		if err != nil {
			return nil, err
		}
		dst := next.NRGBA()
		s := current.NRGBA()
		alg.interp.Scale(dst, dst.Bounds(), s, s.Bounds(), draw.Src, nil)
		current = next

		if nextW == width && nextH == height {
			break
		}
	}
	applyBackground(current, background)
	return current, nil
}

func applyBackground(buf *image.ImageBuf, bg blend.Color) {
	if bg.A == 0 {
		return
	}
	w, h := buf.Bounds()
	blend.OverBackground(buf, bg, 0, 0, w, h)
}
