package image

import (
	"bytes"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestFromStdImage_NRGBA(t *testing.T) {
	src := stdimage.NewNRGBA(stdimage.Rect(0, 0, 10, 10))
	src.SetNRGBA(5, 5, color.NRGBA{R: 255, G: 128, B: 64, A: 100})

	buf := FromStdImage(src)
	r, g, b, a := buf.GetRGBA(5, 5)
	if r != 255 || g != 128 || b != 64 || a != 100 {
		t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (255,128,64,100)", r, g, b, a)
	}
}

func TestFromStdImage_Gray(t *testing.T) {
	src := stdimage.NewGray(stdimage.Rect(0, 0, 4, 4))
	src.SetGray(1, 2, color.Gray{Y: 200})

	buf := FromStdImage(src)
	r, g, b, a := buf.GetRGBA(1, 2)
	if r != 200 || g != 200 || b != 200 || a != 255 {
		t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (200,200,200,255)", r, g, b, a)
	}
}

func TestFromStdImage_OffsetBounds(t *testing.T) {
	src := stdimage.NewNRGBA(stdimage.Rect(10, 10, 14, 12))
	src.SetNRGBA(10, 10, color.NRGBA{R: 1, A: 255})

	buf := FromStdImage(src)
	if buf.Width() != 4 || buf.Height() != 2 {
		t.Fatalf("size = %dx%d, want 4x2", buf.Width(), buf.Height())
	}
	if r, _, _, _ := buf.GetRGBA(0, 0); r != 1 {
		t.Errorf("origin pixel red = %d, want 1", r)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	buf, _ := NewImageBuf(3, 2)
	_ = buf.SetRGBA(2, 1, 10, 20, 30, 77)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := buf.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	w, h, err := LoadConfig(path)
	if err != nil || w != 3 || h != 2 {
		t.Errorf("LoadConfig() = %d, %d, %v; want 3, 2, nil", w, h, err)
	}

	got, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	r, g, b, a := got.GetRGBA(2, 1)
	if r != 10 || g != 20 || b != 30 || a != 77 {
		t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (10,20,30,77)", r, g, b, a)
	}
}

func TestEncodeToBytes(t *testing.T) {
	buf, _ := NewImageBuf(2, 2)
	data, err := buf.EncodeToBytes()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("encoded data is not a PNG: %v", err)
	}
}

func TestLoadImageFromBytes_Empty(t *testing.T) {
	if _, err := LoadImageFromBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("LoadImageFromBytes(nil) error = %v, want ErrEmptyData", err)
	}
}

func TestLoadImage_Missing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("LoadImage(missing) should fail")
	}
}
