// Package ninepatch reads and writes the 1px control border of ninepatch
// images.
//
// The top and left border rows mark the stretchable region (splits). The
// bottom and right rows mark the content region (pads). A marker pixel is
// opaque and dark; everything else on the border is transparent or
// bright. Border pixels that are neither clearly on nor clearly off are
// rejected with a [*ControlPixelError] instead of being guessed at.
package ninepatch

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by border analysis.
var (
	// ErrInvalidControlPixel is wrapped by every *ControlPixelError.
	ErrInvalidControlPixel = errors.New("ninepatch: invalid control pixel")

	// ErrTooSmall is returned for images without room for a border and content.
	ErrTooSmall = errors.New("ninepatch: image smaller than 3x3")
)

const (
	// tolerance is how far a channel may be from 0 or 255 and still count as clear.
	tolerance = 10

	// threshold separates on from off in alpha and red.
	threshold = 64
)

// Pixels is read access to a straight-alpha RGBA8 image.
type Pixels interface {
	Bounds() (int, int)
	GetRGBA(x, y int) (r, g, b, a uint8)
}

// Rect is a set of four offsets into the content area of a ninepatch (the
// image with its border removed). Left and Right are measured from the left
// and right edges, Top and Bottom from the top and bottom edges. A pad axis
// without markers is -1 on both sides.
type Rect struct {
	Left, Right, Top, Bottom int
}

// Scale maps r from a content area of origW x origH to one of
// targetW x targetH, rounding every offset to the nearest integer. Offsets
// of -1 mark an absent axis and are kept.
func (r Rect) Scale(targetW, targetH, origW, origH int) Rect {
	sx := float64(targetW) / float64(origW)
	sy := float64(targetH) / float64(origH)
	scale := func(v int, s float64) int {
		if v < 0 {
			return v
		}
		return int(math.Round(float64(v) * s))
	}
	return Rect{
		Left:   scale(r.Left, sx),
		Right:  scale(r.Right, sx),
		Top:    scale(r.Top, sy),
		Bottom: scale(r.Bottom, sy),
	}
}

// Slice returns the offsets in left, right, top, bottom order.
func (r Rect) Slice() []int {
	return []int{r.Left, r.Right, r.Top, r.Bottom}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.Left, r.Right, r.Top, r.Bottom)
}

// ControlPixelError describes a border pixel that is not clearly on or off.
type ControlPixelError struct {
	X, Y       int
	R, G, B, A uint8

	// Reason is "unclear" when a channel is mid-range and "incoherent" when
	// the color channels disagree.
	Reason string
}

func (e *ControlPixelError) Error() string {
	return fmt.Sprintf("ninepatch: %s control pixel at %d, %d (rgba %02x%02x%02x%02x)",
		e.Reason, e.X, e.Y, e.R, e.G, e.B, e.A)
}

// Unwrap returns ErrInvalidControlPixel.
func (e *ControlPixelError) Unwrap() error { return ErrInvalidControlPixel }

// CheckControlPixel validates one border pixel. Every channel must be
// within tolerance of 0 or 255, and red, green and blue must all be on the
// same side of the threshold.
func CheckControlPixel(x, y int, r, g, b, a uint8) error {
	sharp := func(c uint8) bool { return c <= tolerance || c >= 255-tolerance }
	if !sharp(r) || !sharp(g) || !sharp(b) || !sharp(a) {
		return &ControlPixelError{X: x, Y: y, R: r, G: g, B: b, A: a, Reason: "unclear"}
	}
	low := r < threshold && g < threshold && b < threshold
	high := r >= threshold && g >= threshold && b >= threshold
	if !low && !high {
		return &ControlPixelError{X: x, Y: y, R: r, G: g, B: b, A: a, Reason: "incoherent"}
	}
	return nil
}

// isMarker reports whether a border pixel is opaque and dark.
func isMarker(r, a uint8) bool {
	return a > threshold && r < threshold
}

// SplitPoint scans from (startX, startY) along the x axis, or the y axis
// when xAxis is false, up to the far edge. With startPoint set it returns
// the index of the first marker pixel; otherwise the index of the first
// pixel that is not a marker. It returns 0 when the scan reaches the edge
// without a hit, since index 0 is border and never a valid split.
func SplitPoint(p Pixels, startX, startY int, startPoint, xAxis bool) (int, error) {
	w, h := p.Bounds()
	next, end := startY, h
	if xAxis {
		next, end = startX, w
	}

	x, y := startX, startY
	for ; next < end; next++ {
		if xAxis {
			x = next
		} else {
			y = next
		}
		r, g, b, a := p.GetRGBA(x, y)
		if err := CheckControlPixel(x, y, r, g, b, a); err != nil {
			return 0, err
		}
		if isMarker(r, a) == startPoint {
			return next, nil
		}
	}
	return 0, nil
}

// Splits reads the stretch region from the top and left border rows. It
// returns nil when neither row has a marker.
func Splits(p Pixels) (*Rect, error) {
	w, h, err := size(p)
	if err != nil {
		return nil, err
	}

	startX, endX, err := axis(p, 1, 0, true)
	if err != nil {
		return nil, err
	}
	startY, endY, err := axis(p, 0, 1, false)
	if err != nil {
		return nil, err
	}

	// Pixels past the end must still be valid.
	if _, err := SplitPoint(p, endX+1, 0, true, true); err != nil {
		return nil, err
	}
	if _, err := SplitPoint(p, 0, endY+1, true, false); err != nil {
		return nil, err
	}

	if startX == 0 && endX == 0 && startY == 0 && endY == 0 {
		return nil, nil
	}

	left, right := contentRange(startX, endX, w)
	top, bottom := contentRange(startY, endY, h)
	return &Rect{Left: left, Right: right, Top: top, Bottom: bottom}, nil
}

// Pads reads the content region from the bottom and right border rows. It
// returns nil when neither row has a marker, or when the result equals
// splits.
func Pads(p Pixels, splits *Rect) (*Rect, error) {
	w, h, err := size(p)
	if err != nil {
		return nil, err
	}
	bottom, right := h-1, w-1

	startX, err := SplitPoint(p, 1, bottom, true, true)
	if err != nil {
		return nil, err
	}
	startY, err := SplitPoint(p, right, 1, true, false)
	if err != nil {
		return nil, err
	}

	var endX, endY int
	if startX != 0 {
		if endX, err = SplitPoint(p, startX+1, bottom, false, true); err != nil {
			return nil, err
		}
	}
	if startY != 0 {
		if endY, err = SplitPoint(p, right, startY+1, false, false); err != nil {
			return nil, err
		}
	}

	if _, err := SplitPoint(p, endX+1, bottom, true, true); err != nil {
		return nil, err
	}
	if _, err := SplitPoint(p, right, endY+1, true, false); err != nil {
		return nil, err
	}

	if startX == 0 && endX == 0 && startY == 0 && endY == 0 {
		return nil, nil
	}

	pads := Rect{Left: -1, Right: -1, Top: -1, Bottom: -1}
	if startX != 0 || endX != 0 {
		pads.Left, pads.Right = contentRange(startX, endX, w)
	}
	if startY != 0 || endY != 0 {
		pads.Top, pads.Bottom = contentRange(startY, endY, h)
	}

	if splits != nil && pads == *splits {
		return nil, nil
	}
	return &pads, nil
}

// axis finds the first marker run starting at (x, y).
func axis(p Pixels, x, y int, xAxis bool) (start, end int, err error) {
	start, err = SplitPoint(p, x, y, true, xAxis)
	if err != nil {
		return 0, 0, err
	}
	if xAxis {
		x = start
	} else {
		y = start
	}
	end, err = SplitPoint(p, x, y, false, xAxis)
	return start, end, err
}

// contentRange converts a border run [start, end) into offsets from both
// content edges. A run with no start stretches the whole axis.
func contentRange(start, end, size int) (int, int) {
	if start == 0 {
		return 0, size - 2
	}
	return start - 1, size - 2 - (end - 1)
}

func size(p Pixels) (int, int, error) {
	w, h := p.Bounds()
	if w < 3 || h < 3 {
		return 0, 0, ErrTooSmall
	}
	return w, h, nil
}

// CouldBeNinepatch reports whether p looks like it carries a control
// border: at least 3x3, transparent corners, a border made only of
// transparent or opaque black pixels, and at least one split marker.
func CouldBeNinepatch(p Pixels) bool {
	w, h := p.Bounds()
	if w < 3 || h < 3 {
		return false
	}
	for _, c := range [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if _, _, _, a := p.GetRGBA(c[0], c[1]); a != 0 {
			return false
		}
	}

	markers := false
	check := func(x, y int, split bool) bool {
		r, g, b, a := p.GetRGBA(x, y)
		switch {
		case a == 0:
			return true
		case a == 255 && r == 0 && g == 0 && b == 0:
			markers = markers || split
			return true
		}
		return false
	}
	for x := 1; x < w-1; x++ {
		if !check(x, 0, true) || !check(x, h-1, false) {
			return false
		}
	}
	for y := 1; y < h-1; y++ {
		if !check(0, y, true) || !check(w-1, y, false) {
			return false
		}
	}
	return markers
}
