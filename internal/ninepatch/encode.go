package ninepatch

import (
	"github.com/gogpu/respack/internal/image"
)

// Analyze reads the control border of buf and returns the splits, the pads
// and a copy of the content without the border.
func Analyze(buf *image.ImageBuf) (splits, pads *Rect, content *image.ImageBuf, err error) {
	splits, err = Splits(buf)
	if err != nil {
		return nil, nil, nil, err
	}
	pads, err = Pads(buf, splits)
	if err != nil {
		return nil, nil, nil, err
	}
	return splits, pads, Strip(buf), nil
}

// Strip returns a copy of buf without its 1px border, or nil when buf is
// smaller than 3x3.
func Strip(buf *image.ImageBuf) *image.ImageBuf {
	view := buf.SubImage(1, 1, buf.Width()-2, buf.Height()-2)
	if view == nil {
		return nil
	}
	return view.Clone()
}

// Encode returns content surrounded by a control border describing splits
// and pads. Nil rectangles and absent pad axes leave their rows empty.
func Encode(content *image.ImageBuf, splits, pads *Rect) (*image.ImageBuf, error) {
	w, h := content.Width(), content.Height()
	out, err := image.NewImageBuf(w+2, h+2)
	if err != nil {
		return nil, err
	}
	out.Blit(content, 1, 1)

	mark := func(x, y int) { _ = out.SetRGBA(x, y, 0, 0, 0, 255) }
	run := func(from, to int, at func(i int)) {
		for i := from; i < to; i++ {
			at(i + 1)
		}
	}

	if splits != nil {
		run(splits.Left, w-splits.Right, func(x int) { mark(x, 0) })
		run(splits.Top, h-splits.Bottom, func(y int) { mark(0, y) })
	}
	if pads != nil {
		if pads.Left >= 0 {
			run(pads.Left, w-pads.Right, func(x int) { mark(x, h+1) })
		}
		if pads.Top >= 0 {
			run(pads.Top, h-pads.Bottom, func(y int) { mark(w+1, y) })
		}
	}
	return out, nil
}
