package image

// Crop returns a tightly packed copy of the given rectangle.
func (b *ImageBuf) Crop(x, y, width, height int) (*ImageBuf, error) {
	view := b.SubImage(x, y, width, height)
	if view == nil {
		return nil, ErrOutOfBounds
	}
	return view.Clone(), nil
}

// TrimBottomRight removes fully transparent rows from the bottom and then
// fully transparent columns from the right. The result is at least 1x1.
// The top-left origin is kept so that coordinates into the image stay valid.
func (b *ImageBuf) TrimBottomRight() *ImageBuf {
	h := b.height
	for h > 1 && b.rowTransparent(h-1) {
		h--
	}
	w := b.width
	for w > 1 && b.columnTransparent(w-1, h) {
		w--
	}
	if w == b.width && h == b.height {
		return b
	}
	return b.SubImage(0, 0, w, h).Clone()
}

func (b *ImageBuf) rowTransparent(y int) bool {
	row := b.RowBytes(y)
	for x := 3; x < len(row); x += bytesPerPixel {
		if row[x] != 0 {
			return false
		}
	}
	return true
}

func (b *ImageBuf) columnTransparent(x, height int) bool {
	for y := range height {
		if _, _, _, a := b.GetRGBA(x, y); a != 0 {
			return false
		}
	}
	return true
}

// Blit copies src into b with its top-left corner at (dx, dy), clipping to
// b's bounds. Pixels are replaced, not blended.
func (b *ImageBuf) Blit(src *ImageBuf, dx, dy int) {
	for y := range src.height {
		ty := dy + y
		if ty < 0 || ty >= b.height {
			continue
		}
		x0 := max(0, -dx)
		x1 := min(src.width, b.width-dx)
		if x0 >= x1 {
			return
		}
		srcRow := src.RowBytes(y)[x0*bytesPerPixel : x1*bytesPerPixel]
		dstOff := b.PixelOffset(dx+x0, ty)
		copy(b.data[dstOff:dstOff+len(srcRow)], srcRow)
	}
}
