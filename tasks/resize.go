package tasks

import (
	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/imagefile"
	"github.com/gogpu/respack/internal/scaling"
)

// DontUpsampleFlag keeps Resize from enlarging an image.
const DontUpsampleFlag = "dont-upsample"

// Resize scales bitmaps carrying a size flag (w<W>h<H> or <W>x<H>) in
// place. Ninepatches are resized with their control border re-encoded.
type Resize struct {
	respack.BaseTask
	cache *imagefile.Bitmaps
}

func (*Resize) Name() string { return "Resize" }

func (r *Resize) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if !f.IsBitmap() {
		return false, nil
	}
	flags := f.Flags()
	if !flagutil.Matches(flags, scaling.TileSizePattern) && !flagutil.Matches(flags, scaling.PixelSizePattern) {
		return false, nil
	}
	im, err := openImage(tc, f, r.cache)
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	w, h, err := targetSize(im)
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	nw, nh, err := im.NativeSize()
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	if w == nw && h == nh {
		return false, nil
	}
	if f.HasFlag(DontUpsampleFlag) && (w > nw || h > nh) {
		tc.Log().Debug("not upsampling", "file", f.String(), "width", w, "height", h)
		return false, nil
	}
	// Compare aspect ratios by cross-multiplying, allowing one pixel of rounding.
	if d := w*nh - h*nw; d > max(nw, nh) || -d > max(nw, nh) {
		tc.Log().Warn("resize changes the aspect ratio", "file", f.String(),
			"from", [2]int{nw, nh}, "to", [2]int{w, h})
	}

	buf, err := im.RenderNinepatch(w, h, im.Background())
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	if err := replaceWithPNG(tc, f, buf); err != nil {
		return false, err
	}
	tc.Log().Debug("resized", "file", f.String(), "width", w, "height", h)
	return true, nil
}
