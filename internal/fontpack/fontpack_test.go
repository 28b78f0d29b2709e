package fontpack

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/image"
)

func glyph(t *testing.T, f *Font, r rune) Glyph {
	t.Helper()
	i := slices.IndexFunc(f.Glyphs, func(g Glyph) bool { return g.Rune == r })
	if i < 0 {
		t.Fatalf("glyph %q missing", r)
	}
	return f.Glyphs[i]
}

func TestCoverage(t *testing.T) {
	runes, err := Coverage(goregular.TTF)
	if err != nil {
		t.Fatalf("Coverage() error = %v", err)
	}
	for _, r := range []rune{'A', 'z', '0', ' '} {
		if _, ok := slices.BinarySearch(runes, r); !ok {
			t.Errorf("Coverage() misses %q", r)
		}
	}
	if !slices.IsSorted(runes) {
		t.Error("Coverage() is not sorted")
	}
	if _, err := Coverage([]byte("not a font")); err == nil {
		t.Error("Coverage(garbage) error = nil")
	}
}

func TestGenerate(t *testing.T) {
	f, err := Generate(goregular.TTF, Options{
		Name:       "go",
		Size:       16,
		CodePoints: []rune{'A', 'V', ' ', 0x4E00},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(f.Glyphs) != 3 {
		t.Fatalf("len(Glyphs) = %d, want 3 (unmapped code point skipped)", len(f.Glyphs))
	}
	if len(f.Pages) != 1 {
		t.Fatalf("len(Pages) = %d, want 1", len(f.Pages))
	}
	if f.LineHeight < 16 || f.Base <= 0 || f.Base > f.LineHeight {
		t.Errorf("LineHeight = %d, Base = %d", f.LineHeight, f.Base)
	}

	space := glyph(t, f, ' ')
	if space.Width != 0 || space.Height != 0 || space.Advance <= 0 {
		t.Errorf("space = %+v, want no ink and a positive advance", space)
	}

	a := glyph(t, f, 'A')
	if a.Width == 0 || a.Height == 0 {
		t.Fatalf("A = %+v, want ink", a)
	}
	if a.YOffset < 0 || a.YOffset+a.Height > f.LineHeight+1 {
		t.Errorf("A YOffset = %d, height %d, outside the line", a.YOffset, a.Height)
	}
	var ink bool
	for y := a.Y; y < a.Y+a.Height; y++ {
		for x := a.X; x < a.X+a.Width; x++ {
			r, g, b, al := f.Pages[0].GetRGBA(x, y)
			if al > 0 {
				ink = true
				if r != 255 || g != 255 || b != 255 {
					t.Fatalf("pixel (%d,%d) = %d,%d,%d, want white", x, y, r, g, b)
				}
			}
		}
	}
	if !ink {
		t.Error("A left no ink on its page")
	}

	for _, k := range f.Kernings {
		if k.Amount == 0 {
			t.Errorf("kerning %+v has zero amount", k)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(goregular.TTF, Options{Size: 0}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Generate(size 0) error = %v, want ErrInvalidSize", err)
	}
	_, err := Generate(goregular.TTF, Options{Size: 12, CodePoints: []rune{0x4E00}})
	if !errors.Is(err, ErrNoGlyphs) {
		t.Errorf("Generate(unmapped) error = %v, want ErrNoGlyphs", err)
	}
	if _, err := Generate([]byte("junk"), Options{Size: 12}); err == nil {
		t.Error("Generate(junk) error = nil")
	}
}

func TestGenerateOutline(t *testing.T) {
	plain, err := Generate(goregular.TTF, Options{Name: "go", Size: 20, CodePoints: []rune{'O'}})
	if err != nil {
		t.Fatal(err)
	}
	red := blend.Color{R: 255, A: 255}
	outlined, err := Generate(goregular.TTF, Options{
		Name:       "go",
		Size:       20,
		CodePoints: []rune{'O'},
		Outline:    &Outline{Width: 2, Color: red},
	})
	if err != nil {
		t.Fatal(err)
	}
	p, o := plain.Glyphs[0], outlined.Glyphs[0]
	if o.Width != p.Width+4 || o.Height != p.Height+4 {
		t.Errorf("outlined size = %dx%d, want %dx%d", o.Width, o.Height, p.Width+4, p.Height+4)
	}
	if o.XOffset != p.XOffset-2 || o.YOffset != p.YOffset-2 {
		t.Errorf("outlined offset = (%d,%d), want (%d,%d)", o.XOffset, o.YOffset, p.XOffset-2, p.YOffset-2)
	}
	if outlined.Padding != 2 {
		t.Errorf("Padding = %d, want 2", outlined.Padding)
	}

	// The ring of an O has outline pixels just outside its ink.
	var redSeen bool
	for y := o.Y; y < o.Y+o.Height; y++ {
		for x := o.X; x < o.X+o.Width; x++ {
			if r, g, _, a := outlined.Pages[0].GetRGBA(x, y); a == 255 && r == 255 && g == 0 {
				redSeen = true
			}
		}
	}
	if !redSeen {
		t.Error("no opaque outline pixel found")
	}
}

func TestDilate(t *testing.T) {
	alpha := []uint8{200}
	tests := []struct {
		straight bool
		corner   uint8
	}{
		{false, 0},
		{true, 200},
	}
	for _, tt := range tests {
		out := dilate(alpha, 1, 1, 2, tt.straight)
		if len(out) != 25 {
			t.Fatalf("len(dilate()) = %d, want 25", len(out))
		}
		if out[12] != 200 || out[2] != 200 || out[10] != 200 {
			t.Errorf("dilate(straight=%v) center or axis = %v", tt.straight, out)
		}
		if out[0] != tt.corner {
			t.Errorf("dilate(straight=%v) corner = %d, want %d", tt.straight, out[0], tt.corner)
		}
	}
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		area, w, h int
	}{
		{1, 64, 64},
		{100, 64, 64},
		{10000, 128, 128},
		{20000, 256, 128},
		{1 << 30, 4096, 4096},
	}
	for _, tt := range tests {
		if w, h := pageSize(tt.area); w != tt.w || h != tt.h {
			t.Errorf("pageSize(%d) = %dx%d, want %dx%d", tt.area, w, h, tt.w, tt.h)
		}
	}
}

func TestFinish(t *testing.T) {
	f, err := Generate(goregular.TTF, Options{Name: "go", Size: 12, CodePoints: []rune{'x'}})
	if err != nil {
		t.Fatal(err)
	}
	x := f.Glyphs[0]
	f.Finish(blend.Black)

	w, h := f.Pages[0].Bounds()
	if w > x.X+x.Width || h > x.Y+x.Height {
		t.Errorf("trimmed page = %dx%d, want at most %dx%d", w, h, x.X+x.Width, x.Y+x.Height)
	}
	for y := range h {
		for xx := range w {
			if _, _, _, a := f.Pages[0].GetRGBA(xx, y); a != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d after opaque background", xx, y, a)
			}
		}
	}
}

func TestWriteFiles(t *testing.T) {
	f, err := Generate(goregular.TTF, Options{Name: "go", Size: 12, CodePoints: []rune{'A', 'V'}})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	paths, err := f.WriteFiles(dir)
	if err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}
	want := []string{filepath.Join(dir, "go0.png"), filepath.Join(dir, "go.fnt")}
	if !slices.Equal(paths, want) {
		t.Errorf("WriteFiles() = %v, want %v", paths, want)
	}
	if _, err := image.LoadImage(want[0]); err != nil {
		t.Errorf("page is not a readable PNG: %v", err)
	}

	data, err := os.ReadFile(want[1])
	if err != nil {
		t.Fatal(err)
	}
	fnt := string(data)
	for _, line := range []string{
		`info face="go" size=12`,
		`page id=0 file="go0.png"`,
		"chars count=2",
		"char id=65 ",
		"char id=86 ",
	} {
		if !strings.Contains(fnt, line) {
			t.Errorf("fnt misses %q:\n%s", line, fnt)
		}
	}
}

func TestWriteFNTKernings(t *testing.T) {
	f := &Font{
		Name: "k", Size: 10, LineHeight: 12, Base: 9,
		Glyphs:   []Glyph{{Rune: 'A'}},
		Kernings: []Kerning{{First: 'A', Second: 'V', Amount: -1}},
	}
	var buf bytes.Buffer
	if err := f.WriteFNT(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "kernings count=1\nkerning first=65 second=86 amount=-1\n") {
		t.Errorf("WriteFNT() kerning section missing:\n%s", buf.String())
	}
}
