package blend

// Over composites the straight-alpha color src over dst (source-over).
//
// With an opaque dst each channel is (a*src + (255-a)*dst) / 255, rounded,
// and the result is opaque.
func Over(src, dst Color) Color {
	sa := uint32(src.A)
	da := uint32(dst.A)
	if sa == 255 || da == 0 {
		return src
	}
	if sa == 0 {
		return dst
	}

	// Everything below is scaled by 255 to stay in integers.
	da255 := da * (255 - sa)
	outA255 := sa*255 + da255
	channel := func(s, d uint8) uint8 {
		num := sa*uint32(s)*255 + da255*uint32(d)
		return uint8(divRound(num, outA255))
	}
	return Color{
		R: channel(src.R, dst.R),
		G: channel(src.G, dst.G),
		B: channel(src.B, dst.B),
		A: uint8(divRound(outA255, 255)),
	}
}

// Pixels is a straight-alpha RGBA8 pixel store. It is implemented by
// *image.ImageBuf.
type Pixels interface {
	Bounds() (int, int)
	GetRGBA(x, y int) (r, g, b, a uint8)
	SetRGBA(x, y int, r, g, b, a uint8) error
}

// OverBackground composites every pixel inside the rectangle
// [x0, x1) x [y0, y1) of p over bg in place. Coordinates are clipped to
// the image.
func OverBackground(p Pixels, bg Color, x0, y0, x1, y1 int) {
	w, h := p.Bounds()
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, w), min(y1, h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b, a := p.GetRGBA(x, y)
			c := Over(Color{r, g, b, a}, bg)
			_ = p.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}
}

// Multiply scales every channel of c by the matching channel of tint.
func Multiply(c, tint Color) Color {
	return Color{
		R: mulDiv255(c.R, tint.R),
		G: mulDiv255(c.G, tint.G),
		B: mulDiv255(c.B, tint.B),
		A: mulDiv255(c.A, tint.A),
	}
}
