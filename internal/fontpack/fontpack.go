// Package fontpack renders TrueType and OpenType fonts into bitmap font
// pages with an AngelCode BMFont text descriptor.
package fontpack

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/respack/internal/atlas"
	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/image"
)

// Errors returned by Generate.
var (
	ErrInvalidSize = errors.New("fontpack: size must be positive")
	ErrNoGlyphs    = errors.New("fontpack: no glyph to render")
	ErrGlyphTooBig = errors.New("fontpack: glyph larger than a page")
)

const (
	// glyphPadding separates glyphs on a page.
	glyphPadding = 1

	minPageSize = 64
	maxPageSize = 4096

	// maxKerningGlyphs bounds the pairwise kerning scan.
	maxKerningGlyphs = 1024
)

// Outline describes a border drawn under every glyph.
type Outline struct {
	Width    int
	Color    blend.Color
	Straight bool // square corners instead of round ones
}

// Options configures Generate.
type Options struct {
	// Name is the font name in the descriptor and the base of page names.
	Name string

	// Size is the pixel size of the em square.
	Size int

	// CodePoints to render. Nil renders every code point the font maps;
	// code points the font does not map are skipped.
	CodePoints []rune

	Foreground blend.Color
	Outline    *Outline

	Logger *slog.Logger
}

// Glyph is a rendered code point. Glyphs without ink have a zero size.
type Glyph struct {
	Rune                      rune
	Page                      int
	X, Y, Width, Height       int
	XOffset, YOffset, Advance int
}

// Kerning adjusts the advance between two code points.
type Kerning struct {
	First, Second rune
	Amount        int
}

// Font is a rendered bitmap font.
type Font struct {
	Name       string
	Size       int
	LineHeight int
	Base       int
	Padding    int // outline width, added around every glyph

	Pages    []*image.ImageBuf
	Glyphs   []Glyph
	Kernings []Kerning
}

// Coverage returns every code point the font maps to a glyph, ascending.
func Coverage(data []byte) ([]rune, error) {
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fontpack: parse: %w", err)
	}
	var out []rune
	it := face.Font.Cmap.Iter()
	for it.Next() {
		r, gid := it.Char()
		if gid != 0 && r >= 0 && r <= 0x10FFFF {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// rendered is a glyph bitmap before packing.
type rendered struct {
	glyph  Glyph
	pixels *image.ImageBuf
}

// Generate rasterizes the font described by data.
func Generate(data []byte, opts Options) (*Font, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, opts.Size)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Foreground == (blend.Color{}) {
		opts.Foreground = blend.White
	}

	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fontpack: parse: %w", err)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    float64(opts.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("fontpack: face: %w", err)
	}
	defer func() { _ = face.Close() }()

	runes := opts.CodePoints
	if runes == nil {
		if runes, err = Coverage(data); err != nil {
			return nil, err
		}
	}

	outline := 0
	if opts.Outline != nil {
		outline = max(0, opts.Outline.Width)
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Round()
	f := &Font{
		Name:       opts.Name,
		Size:       opts.Size,
		LineHeight: metrics.Height.Round(),
		Base:       ascent,
		Padding:    outline,
	}

	var glyphs []rendered
	var mapped []rune
	for _, r := range runes {
		if idx, err := otf.GlyphIndex(nil, r); err != nil || idx == 0 {
			log.Debug("code point not in font", "rune", r)
			continue
		}
		g, ok := renderGlyph(face, r, opts, outline)
		if !ok {
			continue
		}
		g.glyph.YOffset += ascent
		glyphs = append(glyphs, g)
		mapped = append(mapped, r)
	}
	if len(glyphs) == 0 {
		return nil, ErrNoGlyphs
	}

	if err := f.pack(glyphs); err != nil {
		return nil, err
	}
	f.Kernings = kernings(face, mapped, log)
	return f, nil
}

// renderGlyph draws r with its baseline at y=0 and the outline around it.
func renderGlyph(face font.Face, r rune, opts Options, outline int) (rendered, bool) {
	dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
	if !ok {
		return rendered{}, false
	}
	g := rendered{glyph: Glyph{Rune: r, Advance: advance.Round()}}
	if dr.Empty() {
		return g, true
	}

	w, h := dr.Dx(), dr.Dy()
	alpha := make([]uint8, w*h)
	for y := range h {
		for x := range w {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			alpha[y*w+x] = uint8(a >> 8)
		}
	}

	var ring []uint8
	if outline > 0 {
		ring = dilate(alpha, w, h, outline, opts.Outline.Straight)
		w, h = w+2*outline, h+2*outline
	}
	pixels, err := image.NewImageBuf(w, h)
	if err != nil {
		return g, true
	}
	gw := w - 2*outline
	for y := range h {
		for x := range w {
			var a uint8
			gx, gy := x-outline, y-outline
			if gx >= 0 && gy >= 0 && gx < gw && gy < h-2*outline {
				a = alpha[gy*gw+gx]
			}
			c := blend.Multiply(opts.Foreground, blend.Color{R: 255, G: 255, B: 255, A: a})
			if ring != nil {
				under := blend.Multiply(opts.Outline.Color, blend.Color{R: 255, G: 255, B: 255, A: ring[y*w+x]})
				c = blend.Over(c, under)
			}
			_ = pixels.SetRGBA(x, y, c.R, c.G, c.B, c.A)
		}
	}

	g.pixels = pixels
	g.glyph.Width, g.glyph.Height = w, h
	g.glyph.XOffset = dr.Min.X - outline
	g.glyph.YOffset = dr.Min.Y - outline
	return g, true
}

// dilate grows the coverage mask by radius pixels in every direction and
// returns a mask of the enlarged size. Round dilation uses a disk, straight
// dilation a square.
func dilate(alpha []uint8, w, h, radius int, straight bool) []uint8 {
	ow, oh := w+2*radius, h+2*radius
	out := make([]uint8, ow*oh)
	limit := (2*radius + 1) * (2*radius + 1)
	for y := range h {
		for x := range w {
			a := alpha[y*w+x]
			if a == 0 {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					if !straight && 4*(dx*dx+dy*dy) > limit {
						continue
					}
					i := (y+radius+dy)*ow + x + radius + dx
					out[i] = max(out[i], a)
				}
			}
		}
	}
	return out
}

// pack places glyphs on pages sized from their total area.
func (f *Font) pack(glyphs []rendered) error {
	area := 0
	for _, g := range glyphs {
		area += (g.glyph.Width + glyphPadding) * (g.glyph.Height + glyphPadding)
	}
	pw, ph := pageSize(area + area/10)

	order := make([]int, len(glyphs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return glyphs[b].glyph.Height - glyphs[a].glyph.Height
	})

	var allocs []*atlas.ShelfAllocator
	for _, i := range order {
		g := &glyphs[i]
		if g.pixels == nil {
			continue
		}
		w, h := g.glyph.Width+glyphPadding, g.glyph.Height+glyphPadding
		if w > pw || h > ph {
			pw, ph = max(pw, nextPowerOfTwo(w)), max(ph, nextPowerOfTwo(h))
			if pw > maxPageSize || ph > maxPageSize {
				return fmt.Errorf("%w: %q is %dx%d", ErrGlyphTooBig, g.glyph.Rune, g.glyph.Width, g.glyph.Height)
			}
		}
		placed := false
		for p, a := range allocs {
			if x, y, ok := a.Allocate(w, h); ok {
				g.glyph.Page, g.glyph.X, g.glyph.Y = p, x, y
				placed = true
				break
			}
		}
		if !placed {
			a := atlas.NewShelfAllocator(pw, ph)
			x, y, _ := a.Allocate(w, h)
			g.glyph.Page, g.glyph.X, g.glyph.Y = len(allocs), x, y
			allocs = append(allocs, a)
		}
	}

	for range allocs {
		page, err := image.NewImageBuf(pw, ph)
		if err != nil {
			return fmt.Errorf("fontpack: page: %w", err)
		}
		f.Pages = append(f.Pages, page)
	}
	for _, g := range glyphs {
		if g.pixels != nil {
			f.Pages[g.glyph.Page].Blit(g.pixels, g.glyph.X, g.glyph.Y)
		}
		f.Glyphs = append(f.Glyphs, g.glyph)
	}
	return nil
}

// pageSize splits the next power of two above area into a page no smaller
// than minPageSize on either side.
func pageSize(area int) (int, int) {
	power := 0
	for n := nextPowerOfTwo(area); n > 1; n >>= 1 {
		power++
	}
	hp := power / 2
	wp := power - hp
	return min(maxPageSize, max(minPageSize, 1<<wp)), min(maxPageSize, max(minPageSize, 1<<hp))
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// kernings collects non-zero pair adjustments between the rendered code
// points.
func kernings(face font.Face, runes []rune, log *slog.Logger) []Kerning {
	if len(runes) > maxKerningGlyphs {
		log.Debug("too many glyphs for a kerning table, skipping", "glyphs", len(runes))
		return nil
	}
	var out []Kerning
	for _, a := range runes {
		for _, b := range runes {
			if k := face.Kern(a, b).Round(); k != 0 {
				out = append(out, Kerning{First: a, Second: b, Amount: k})
			}
		}
	}
	return out
}

// Finish trims empty bottom rows and right columns from every page and, when
// background is not transparent, composites the pages onto it.
func (f *Font) Finish(background blend.Color) {
	for i, p := range f.Pages {
		p = p.TrimBottomRight()
		if background.A != 0 {
			w, h := p.Bounds()
			blend.OverBackground(p, background, 0, 0, w, h)
		}
		f.Pages[i] = p
	}
}
