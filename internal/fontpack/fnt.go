package fontpack

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// PageName returns the file name of page i.
func (f *Font) PageName(i int) string {
	return f.Name + strconv.Itoa(i) + ".png"
}

// WriteFNT writes the AngelCode BMFont text descriptor. Page sizes are
// taken from the first page.
func (f *Font) WriteFNT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	scaleW, scaleH := 0, 0
	if len(f.Pages) > 0 {
		scaleW, scaleH = f.Pages[0].Bounds()
	}
	p := f.Padding
	fmt.Fprintf(bw, "info face=%q size=%d bold=0 italic=0 charset=\"\" unicode=1 stretchH=100 smooth=1 aa=1 padding=%d,%d,%d,%d spacing=%d,%d outline=%d\n",
		f.Name, f.Size, p, p, p, p, glyphPadding, glyphPadding, p)
	fmt.Fprintf(bw, "common lineHeight=%d base=%d scaleW=%d scaleH=%d pages=%d packed=0\n",
		f.LineHeight, f.Base, scaleW, scaleH, len(f.Pages))
	for i := range f.Pages {
		fmt.Fprintf(bw, "page id=%d file=%q\n", i, f.PageName(i))
	}
	fmt.Fprintf(bw, "chars count=%d\n", len(f.Glyphs))
	for _, g := range f.Glyphs {
		fmt.Fprintf(bw, "char id=%d x=%d y=%d width=%d height=%d xoffset=%d yoffset=%d xadvance=%d page=%d chnl=15\n",
			g.Rune, g.X, g.Y, g.Width, g.Height, g.XOffset, g.YOffset, g.Advance, g.Page)
	}
	if len(f.Kernings) > 0 {
		fmt.Fprintf(bw, "kernings count=%d\n", len(f.Kernings))
		for _, k := range f.Kernings {
			fmt.Fprintf(bw, "kerning first=%d second=%d amount=%d\n", k.First, k.Second, k.Amount)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("fontpack: write fnt: %w", err)
	}
	return nil
}

// WriteFiles writes every page and "<Name>.fnt" into dir and returns the
// written paths, pages first.
func (f *Font) WriteFiles(dir string) ([]string, error) {
	var paths []string
	for i, page := range f.Pages {
		path := filepath.Join(dir, f.PageName(i))
		if err := page.SavePNG(path); err != nil {
			return paths, fmt.Errorf("fontpack: write page: %w", err)
		}
		paths = append(paths, path)
	}

	path := filepath.Join(dir, f.Name+".fnt")
	out, err := os.Create(path)
	if err != nil {
		return paths, fmt.Errorf("fontpack: %w", err)
	}
	if err := f.WriteFNT(out); err != nil {
		_ = out.Close()
		return paths, err
	}
	if err := out.Close(); err != nil {
		return paths, fmt.Errorf("fontpack: %w", err)
	}
	return append(paths, path), nil
}
