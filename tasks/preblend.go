package tasks

import (
	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/imagefile"
	"github.com/gogpu/respack/internal/scaling"
)

// PreBlend composites bitmaps flagged "#<hex>" over that color at their
// native size. Ninepatch control borders are kept untouched.
type PreBlend struct {
	respack.BaseTask
	cache *imagefile.Bitmaps
}

func (*PreBlend) Name() string { return "PreBlend" }

func (p *PreBlend) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if !f.IsBitmap() || !flagutil.Matches(f.Flags(), scaling.BackgroundPattern) {
		return false, nil
	}
	im, err := openImage(tc, f, p.cache)
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	if im.Background().A == 0 {
		tc.Log().Debug("background is transparent, nothing to blend", "file", f.String())
		return false, nil
	}
	w, h, err := im.NativeSize()
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	buf, err := im.RenderNinepatch(w, h, im.Background())
	if err != nil {
		return false, skipImage(tc, f, err)
	}
	if err := replaceWithPNG(tc, f, buf); err != nil {
		return false, err
	}
	return true, nil
}
