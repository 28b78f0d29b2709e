package atlas

// ShelfAllocator packs rectangles into horizontal shelves of a fixed-size
// area. Each shelf is as tall as the tallest item placed on it; items go
// left to right until the shelf is full, then a new shelf starts below.
type ShelfAllocator struct {
	width, height int
	shelves       []shelf

	// extent of everything allocated so far
	usedW, usedH int
}

// shelf is a horizontal strip of the page.
type shelf struct {
	y      int // top
	height int // tallest item so far
	x      int // next free column
}

// NewShelfAllocator returns an empty allocator for a width x height area.
func NewShelfAllocator(width, height int) *ShelfAllocator {
	return &ShelfAllocator{width: width, height: height, shelves: make([]shelf, 0, 16)}
}

// Allocate reserves a w x h cell and returns its top-left corner.
func (a *ShelfAllocator) Allocate(w, h int) (x, y int, ok bool) {
	if w > a.width || h > a.height {
		return -1, -1, false
	}
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+w > a.width {
			continue
		}
		if h > s.height {
			// Only the last shelf can grow, and only into free space.
			if i != len(a.shelves)-1 || s.y+h > a.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += w
		a.grow(x+w, y+h)
		return x, y, true
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+h > a.height {
		return -1, -1, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: w})
	a.grow(w, newY+h)
	return 0, newY, true
}

func (a *ShelfAllocator) grow(right, bottom int) {
	a.usedW = max(a.usedW, right)
	a.usedH = max(a.usedH, bottom)
}

// Extent returns the bounding size of every allocation.
func (a *ShelfAllocator) Extent() (int, int) { return a.usedW, a.usedH }
