package image

import (
	"errors"
	"testing"
)

func TestNewImageBuf(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr error
	}{
		{"valid", 100, 100, nil},
		{"1x1 minimum", 1, 1, nil},
		{"zero width", 0, 100, ErrInvalidDimensions},
		{"zero height", 100, 0, ErrInvalidDimensions},
		{"negative width", -1, 100, ErrInvalidDimensions},
		{"negative height", 100, -1, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewImageBuf(tt.width, tt.height)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewImageBuf() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			if buf.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", buf.Width(), tt.width)
			}
			if buf.Height() != tt.height {
				t.Errorf("Height() = %d, want %d", buf.Height(), tt.height)
			}
			if buf.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", buf.Stride(), tt.width*4)
			}
			if len(buf.Data()) != tt.width*tt.height*4 {
				t.Errorf("len(Data()) = %d, want %d", len(buf.Data()), tt.width*tt.height*4)
			}
			if !buf.IsTransparent() {
				t.Error("new image should be transparent")
			}
		})
	}
}

func TestImageBuf_GetSetRGBA(t *testing.T) {
	buf, _ := NewImageBuf(4, 3)
	if err := buf.SetRGBA(2, 1, 10, 20, 30, 40); err != nil {
		t.Fatal(err)
	}
	r, g, b, a := buf.GetRGBA(2, 1)
	if r != 10 || g != 20 || b != 30 || a != 40 {
		t.Errorf("GetRGBA() = (%d,%d,%d,%d), want (10,20,30,40)", r, g, b, a)
	}
	if err := buf.SetRGBA(4, 0, 0, 0, 0, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetRGBA(out of bounds) error = %v, want ErrOutOfBounds", err)
	}
	if _, _, _, a := buf.GetRGBA(-1, 0); a != 0 {
		t.Errorf("GetRGBA(out of bounds) alpha = %d, want 0", a)
	}
}

func TestImageBuf_Clone(t *testing.T) {
	buf, _ := NewImageBuf(3, 3)
	buf.Fill(1, 2, 3, 255)
	c := buf.Clone()
	_ = c.SetRGBA(0, 0, 9, 9, 9, 9)
	if r, _, _, _ := buf.GetRGBA(0, 0); r != 1 {
		t.Error("Clone() shares memory with the original")
	}
}

func TestImageBuf_SubImage(t *testing.T) {
	buf, _ := NewImageBuf(10, 10)
	_ = buf.SetRGBA(5, 6, 255, 0, 0, 255)

	view := buf.SubImage(4, 4, 3, 3)
	if view == nil {
		t.Fatal("SubImage() = nil")
	}
	if r, _, _, _ := view.GetRGBA(1, 2); r != 255 {
		t.Errorf("view pixel = %d, want 255", r)
	}
	_ = view.SetRGBA(0, 0, 0, 255, 0, 255)
	if _, g, _, _ := buf.GetRGBA(4, 4); g != 255 {
		t.Error("SubImage() should share memory with the parent")
	}
	if got := view.NRGBA().Bounds().Dx(); got != 3 {
		t.Errorf("NRGBA().Bounds().Dx() = %d, want 3", got)
	}
}

func TestImageBuf_SubImage_Invalid(t *testing.T) {
	buf, _ := NewImageBuf(10, 10)
	tests := []struct {
		name       string
		x, y, w, h int
	}{
		{"negative x", -1, 0, 5, 5},
		{"overflow width", 6, 0, 5, 5},
		{"overflow height", 0, 8, 5, 5},
		{"zero size", 0, 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buf.SubImage(tt.x, tt.y, tt.w, tt.h); got != nil {
				t.Errorf("SubImage() = %v, want nil", got)
			}
		})
	}
}

func TestImageBuf_TrimBottomRight(t *testing.T) {
	tests := []struct {
		name         string
		opaque       [][2]int
		wantW, wantH int
	}{
		{"empty keeps 1x1", nil, 1, 1},
		{"single pixel top left", [][2]int{{0, 0}}, 1, 1},
		{"bottom right pixel", [][2]int{{7, 5}}, 8, 6},
		{"interior pixels", [][2]int{{2, 1}, {3, 4}}, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, _ := NewImageBuf(8, 6)
			for _, p := range tt.opaque {
				_ = buf.SetRGBA(p[0], p[1], 255, 255, 255, 255)
			}
			got := buf.TrimBottomRight()
			if got.Width() != tt.wantW || got.Height() != tt.wantH {
				t.Errorf("TrimBottomRight() = %dx%d, want %dx%d", got.Width(), got.Height(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageBuf_CropAndBlit(t *testing.T) {
	buf, _ := NewImageBuf(4, 4)
	_ = buf.SetRGBA(1, 1, 1, 2, 3, 4)

	c, err := buf.Crop(1, 1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, a := c.GetRGBA(0, 0); r != 1 || a != 4 {
		t.Errorf("Crop() pixel = (%d, %d), want (1, 4)", r, a)
	}
	if _, err := buf.Crop(3, 3, 2, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Crop(out of bounds) error = %v, want ErrOutOfBounds", err)
	}

	dst, _ := NewImageBuf(3, 3)
	dst.Blit(c, 2, 2)
	if r, _, _, _ := dst.GetRGBA(2, 2); r != 1 {
		t.Errorf("Blit() pixel = %d, want 1", r)
	}
	dst.Blit(c, -1, -1)
	if _, _, _, a := dst.GetRGBA(0, 0); a != 0 {
		t.Errorf("Blit() with negative offset alpha = %d, want 0", a)
	}
}
