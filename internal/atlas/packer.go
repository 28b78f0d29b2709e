package atlas

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/ninepatch"
	"github.com/gogpu/respack/internal/parallel"
)

// Packer collects images and packs them into a [Result].
// A Packer is not safe for concurrent use, but Pack renders the added
// images concurrently, so each Image must be used by one Packer only.
type Packer struct {
	settings Settings
	scales   []int
	log      *slog.Logger

	sources []*source
	index   map[string]*source
}

// source is one named image supplied at one or more scales.
type source struct {
	name   string
	images map[int]Image
}

// item is a source rendered at every output scale.
type item struct {
	name         string
	baseW, baseH int
	splits, pads *ninepatch.Rect

	// images holds the full untrimmed rendering per output scale.
	images map[int]*image.ImageBuf

	// strip is the kept part of the image at scale 1.
	stripX, stripY, stripW, stripH int

	page, x, y int
}

// NewPacker returns a packer producing pages at scale 1 and at every factor
// in scales. A nil log discards messages.
func NewPacker(settings Settings, scales []int, log *slog.Logger) (*Packer, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if settings.MaxWidth <= 0 || settings.MaxHeight <= 0 || settings.PaddingX < 0 || settings.PaddingY < 0 || settings.Workers < 0 {
		return nil, fmt.Errorf("%w: page %dx%d, padding %d,%d", ErrInvalidSettings,
			settings.MaxWidth, settings.MaxHeight, settings.PaddingX, settings.PaddingY)
	}
	if settings.POT && (!isPowerOfTwo(settings.MaxWidth) || !isPowerOfTwo(settings.MaxHeight)) {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotPowerOfTwo, settings.MaxWidth, settings.MaxHeight)
	}
	if settings.DuplicatePadding && (settings.PaddingX < 2 || settings.PaddingY < 2) {
		log.Warn("duplicate padding has no room with padding below 2",
			"padding_x", settings.PaddingX, "padding_y", settings.PaddingY)
	}

	set := []int{1}
	for _, s := range scales {
		if s < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidScale, s)
		}
		if settings.POT && !isPowerOfTwo(s) {
			log.Warn("scale is not a power of two, skipping", "scale", s)
			continue
		}
		set = append(set, s)
	}
	slices.Sort(set)

	return &Packer{
		settings: settings,
		scales:   slices.Compact(set),
		log:      log,
		index:    make(map[string]*source),
	}, nil
}

// Scales returns the output scales in ascending order.
func (p *Packer) Scales() []int { return slices.Clone(p.scales) }

// Add registers img as the scale version of the image called name. Scales
// that are not output scales still serve as rendering sources. Adding the
// same name and scale twice keeps the first image.
func (p *Packer) Add(name string, scale int, img Image) error {
	if scale < 1 {
		return fmt.Errorf("%w: %d for %s", ErrInvalidScale, scale, name)
	}
	src, ok := p.index[name]
	if !ok {
		src = &source{name: name, images: make(map[int]Image)}
		p.index[name] = src
		p.sources = append(p.sources, src)
	}
	if _, dup := src.images[scale]; dup {
		p.log.Warn("image supplied twice for the same scale, keeping the first", "name", name, "scale", scale)
		return nil
	}
	src.images[scale] = img
	return nil
}

// Len returns the number of distinct image names added.
func (p *Packer) Len() int { return len(p.sources) }

// Pack renders every image at every output scale and lays them out on
// pages.
func (p *Packer) Pack() (*Result, error) {
	if len(p.sources) == 0 {
		return nil, ErrEmpty
	}
	items := make([]*item, len(p.sources))
	err := parallel.ForEach(p.settings.Workers, len(p.sources), func(i int) error {
		it, err := p.prepare(p.sources[i])
		items[i] = it
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, func(a, b *item) int {
		if c := cmp.Compare(b.stripH, a.stripH); c != 0 {
			return c
		}
		if c := cmp.Compare(b.stripW, a.stripW); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	pages, err := p.layout(items)
	if err != nil {
		return nil, err
	}

	res := &Result{Scales: slices.Clone(p.scales), Pages: make([]Page, len(pages))}
	err = parallel.ForEach(p.settings.Workers, len(pages), func(i int) error {
		page, err := p.render(i, pages[i], items)
		res.Pages[i] = page
		return err
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(items, func(a, b *item) int { return cmp.Compare(a.name, b.name) })
	padX, padY := p.settings.PaddingX/2, p.settings.PaddingY/2
	for _, it := range items {
		res.Regions = append(res.Regions, Region{
			Name:           it.name,
			Page:           it.page,
			X:              it.x + padX,
			Y:              it.y + padY,
			Width:          it.stripW,
			Height:         it.stripH,
			OffsetX:        it.stripX,
			OffsetY:        it.stripY,
			OriginalWidth:  it.baseW,
			OriginalHeight: it.baseH,
			Splits:         it.splits,
			Pads:           it.pads,
		})
	}
	return res, nil
}

// prepare resolves the scale 1 size from the smallest supplied scale,
// renders every output scale and computes the whitespace strip.
func (p *Packer) prepare(src *source) (*item, error) {
	given := slices.Sorted(maps.Keys(src.images))
	first := given[0]
	fw, fh, err := src.images[first].Size()
	if err != nil {
		return nil, fmt.Errorf("atlas: size of %s: %w", src.name, err)
	}
	it := &item{
		name:   src.name,
		baseW:  max(1, fw/first),
		baseH:  max(1, fh/first),
		images: make(map[int]*image.ImageBuf, len(p.scales)),
	}
	if fw%first != 0 || fh%first != 0 {
		p.log.Warn("image size is not divisible by its scale", "name", src.name, "scale", first, "width", fw, "height", fh)
	}

	nine, err := src.images[first].IsNinepatch()
	if err != nil {
		return nil, fmt.Errorf("atlas: %s: %w", src.name, err)
	}
	if nine {
		if it.splits, err = src.images[first].Splits(it.baseW, it.baseH); err != nil {
			return nil, fmt.Errorf("atlas: %s: %w", src.name, err)
		}
		if it.pads, err = src.images[first].Pads(it.baseW, it.baseH); err != nil {
			return nil, fmt.Errorf("atlas: %s: %w", src.name, err)
		}
	}

	for _, s := range p.scales {
		w, h := it.baseW*s, it.baseH*s
		img, ok := src.images[s]
		if ok {
			if iw, ih, err := img.Size(); err == nil && (iw != w || ih != h) {
				p.log.Warn("image has unexpected size for its scale, resizing",
					"name", src.name, "scale", s, "width", iw, "height", ih, "want_width", w, "want_height", h)
			}
		} else {
			from := deriveFrom(given, s)
			img = src.images[from]
			p.log.Debug("deriving missing scale", "name", src.name, "scale", s, "from", from)
		}
		buf, err := img.Render(w, h, img.Background())
		if err != nil {
			return nil, fmt.Errorf("atlas: render %s at %dx: %w", src.name, s, err)
		}
		it.images[s] = buf
	}

	it.stripX, it.stripY, it.stripW, it.stripH = 0, 0, it.baseW, it.baseH
	if p.settings.StripWhitespace && !nine {
		p.strip(it)
	}
	return it, nil
}

// deriveFrom picks the supplied scale to render a missing scale from: the
// nearest larger one, or else the largest smaller one.
func deriveFrom(given []int, scale int) int {
	for _, g := range given {
		if g > scale {
			return g
		}
	}
	return given[len(given)-1]
}

// strip shrinks the item to the union of its opaque bounds over all scales,
// measured at scale 1. Fully transparent images keep a single pixel.
func (p *Packer) strip(it *item) {
	x0, y0, x1, y1 := it.baseW, it.baseH, 0, 0
	for s, buf := range it.images {
		bx0, by0, bx1, by1, ok := opaqueBounds(buf, p.settings.AlphaThreshold)
		if !ok {
			continue
		}
		x0 = min(x0, bx0/s)
		y0 = min(y0, by0/s)
		x1 = max(x1, ceilDiv(bx1, s))
		y1 = max(y1, ceilDiv(by1, s))
	}
	if x0 >= x1 || y0 >= y1 {
		it.stripX, it.stripY, it.stripW, it.stripH = 0, 0, 1, 1
		return
	}
	it.stripX, it.stripY = x0, y0
	it.stripW, it.stripH = min(x1, it.baseW)-x0, min(y1, it.baseH)-y0
}

// opaqueBounds returns the half-open bounds of pixels whose alpha exceeds
// threshold.
func opaqueBounds(buf *image.ImageBuf, threshold uint8) (x0, y0, x1, y1 int, ok bool) {
	w, h := buf.Bounds()
	x0, y0 = w, h
	for y := range h {
		for x := range w {
			if _, _, _, a := buf.GetRGBA(x, y); a > threshold {
				x0, x1 = min(x0, x), max(x1, x+1)
				y0, y1 = min(y0, y), max(y1, y+1)
			}
		}
	}
	return x0, y0, x1, y1, x0 < x1
}

// layout assigns every item a page and a padded cell, first fit over the
// open pages.
func (p *Packer) layout(items []*item) ([]*ShelfAllocator, error) {
	var pages []*ShelfAllocator
	for _, it := range items {
		w, h := it.stripW+p.settings.PaddingX, it.stripH+p.settings.PaddingY
		if w > p.settings.MaxWidth || h > p.settings.MaxHeight {
			return nil, fmt.Errorf("%w: %s is %dx%d, page is %dx%d", ErrTooLarge,
				it.name, it.stripW, it.stripH, p.settings.MaxWidth, p.settings.MaxHeight)
		}
		placed := false
		for i, a := range pages {
			if x, y, ok := a.Allocate(w, h); ok {
				it.page, it.x, it.y = i, x, y
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		a := NewShelfAllocator(p.settings.MaxWidth, p.settings.MaxHeight)
		x, y, _ := a.Allocate(w, h)
		it.page, it.x, it.y = len(pages), x, y
		pages = append(pages, a)
	}
	return pages, nil
}

// render draws the items of one page at every output scale.
func (p *Packer) render(index int, alloc *ShelfAllocator, items []*item) (Page, error) {
	w, h := alloc.Extent()
	if p.settings.POT {
		w, h = nextPowerOfTwo(w), nextPowerOfTwo(h)
	}
	page := Page{Width: w, Height: h, Images: make(map[int]*image.ImageBuf, len(p.scales))}
	padX, padY := p.settings.PaddingX/2, p.settings.PaddingY/2

	for _, s := range p.scales {
		dst, err := image.NewImageBuf(w*s, h*s)
		if err != nil {
			return Page{}, fmt.Errorf("atlas: page %d at %dx: %w", index, s, err)
		}
		for _, it := range items {
			if it.page != index {
				continue
			}
			region, err := it.images[s].Crop(it.stripX*s, it.stripY*s, it.stripW*s, it.stripH*s)
			if err != nil {
				return Page{}, fmt.Errorf("atlas: crop %s: %w", it.name, err)
			}
			x, y := (it.x+padX)*s, (it.y+padY)*s
			dst.Blit(region, x, y)
			if p.settings.DuplicatePadding {
				duplicateEdges(dst, x, y, region.Width(), region.Height(), padX*s, padY*s)
			}
		}
		page.Images[s] = dst
	}
	return page, nil
}

// duplicateEdges copies the outermost pixels of the w x h region at (x, y)
// outwards by px columns and py rows, corners included.
func duplicateEdges(dst *image.ImageBuf, x, y, w, h, px, py int) {
	copyPixel := func(sx, sy, dx, dy int) {
		r, g, b, a := dst.GetRGBA(sx, sy)
		_ = dst.SetRGBA(dx, dy, r, g, b, a)
	}
	for row := y; row < y+h; row++ {
		for i := 1; i <= px; i++ {
			copyPixel(x, row, x-i, row)
			copyPixel(x+w-1, row, x+w-1+i, row)
		}
	}
	for col := x - px; col < x+w+px; col++ {
		for j := 1; j <= py; j++ {
			copyPixel(col, y, col, y-j)
			copyPixel(col, y+h-1, col, y+h-1+j)
		}
	}
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
