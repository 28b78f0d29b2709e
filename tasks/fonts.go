package tasks

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/fontpack"
)

// Font flags:
//
//	<N>                          pixel size, mandatory
//	<S>-<E>                      adds code points S to E inclusive
//	fg#<hex>                     glyph color, white by default
//	bg#<hex>                     page background, transparent by default
//	outline <W> <hex> [straight] outline of width W
var (
	fontSizePattern    = flagutil.Pattern(`(\d+)`)
	glyphRangePattern  = flagutil.Pattern(`(\d+)-(\d+)`)
	foregroundPattern  = flagutil.Pattern(`fg#([0-9A-Fa-f]{1,8})`)
	backgroundPattern  = flagutil.Pattern(`bg#([0-9A-Fa-f]{1,8})`)
	fontOutlinePattern = flagutil.Pattern(`outline (\d+) ([0-9A-Fa-f]{1,8}) ?(\w+)?`)
)

// CreateFonts rasterizes TrueType and OpenType fonts carrying a size flag
// into a BMFont: a .fnt descriptor plus PNG pages. Without range flags
// every glyph the font maps is rendered.
type CreateFonts struct{ respack.BaseTask }

func (*CreateFonts) Name() string { return "CreateFonts" }

func (*CreateFonts) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if !f.IsFont() {
		return false, nil
	}
	log := tc.Log().With("file", f.String())
	flags := f.Flags()

	m, ok := flagutil.MatchFirst(log, flags, fontSizePattern)
	if !ok {
		log.Debug("font not rasterized, size not specified")
		return false, nil
	}
	size := m.Int(1, 0)
	if size <= 0 {
		log.Error("font size must be bigger than 0", "flag", m.Group(0))
		return false, nil
	}

	opts := fontpack.Options{Name: f.Name(), Size: size, Logger: log}
	if m, ok := flagutil.MatchFirst(log, flags, foregroundPattern); ok {
		opts.Foreground = parseColor(log, m.Group(0), m.Group(1))
	}
	if m, ok := flagutil.MatchFirst(log, flags, fontOutlinePattern); ok {
		opts.Outline = &fontpack.Outline{
			Width:    m.Int(1, 0),
			Color:    parseColor(log, m.Group(0), m.Group(2)),
			Straight: strings.EqualFold(m.Group(3), "straight"),
		}
	}
	var background blend.Color
	if m, ok := flagutil.MatchFirst(log, flags, backgroundPattern); ok {
		background = parseColor(log, m.Group(0), m.Group(1))
	}
	for m := range flagutil.MatchAll(flags, glyphRangePattern) {
		from, to := m.Int(1, 0), m.Int(2, -1)
		for r := from; r <= to; r++ {
			opts.CodePoints = append(opts.CodePoints, rune(r))
		}
		log.Debug("glyph range added", "from", from, "to", to)
	}

	data, err := os.ReadFile(f.Path())
	if err != nil {
		return false, err
	}
	font, err := fontpack.Generate(data, opts)
	if err != nil {
		log.Error("font not rasterized", "err", err)
		return false, nil
	}
	font.Finish(background)
	switch n := len(font.Pages); {
	case n == 0:
		log.Warn("font did not render on any page")
	case n > 1:
		log.Warn("font rendered on more than one page, this may cause problems when loading it for a UI skin", "pages", n)
	}

	dir, err := tc.NewFolder()
	if err != nil {
		return false, err
	}
	paths, err := font.WriteFiles(dir)
	if err != nil {
		return false, err
	}
	parent := f.Parent()
	parent.RemoveChild(f)
	for _, p := range paths {
		parent.AddFile(generatedFile(p))
	}
	log.Info("font created", "size", size, "glyphs", len(font.Glyphs))
	return true, nil
}

// parseColor parses the hex color of flag. An invalid color is logged and
// yields the zero color.
func parseColor(log *slog.Logger, flag, hex string) blend.Color {
	c, err := blend.ParseHexColor(hex)
	if err != nil {
		log.Warn("invalid color", "flag", flag, "err", err)
	}
	return c
}
