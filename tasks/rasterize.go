package tasks

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/imagefile"
)

// Rasterize renders images flagged "rasterize" (or "r") to PNG at their
// target size. With "scaled" it also renders one copy per @Nx factor found
// on the ancestors, named <name>@Nx. A copy whose name already exists next
// to the image is not rendered.
//
// Ninepatches keep their control border and get a ".9" name suffix, so a
// ninepatch "button" turns into button.9.png.
type Rasterize struct {
	respack.BaseTask
	cache *imagefile.Bitmaps
}

func (*Rasterize) Name() string { return "Rasterize" }

func (r *Rasterize) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if !f.IsImage() || !(f.HasFlag("rasterize") || f.HasFlag("r")) {
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
	nine, err := im.IsNinepatch()
	if err != nil {
		return false, skipImage(tc, f, err)
	}

	scales := []int{1}
	if f.HasFlag("scaled") {
		for d := range f.Ancestors() {
			for _, s := range scaleFactors(d.Flags()) {
				if !slices.Contains(scales, s) {
					scales = append(scales, s)
				}
			}
		}
	}

	// Render every copy before touching the tree, so a failure leaves f
	// where it was.
	parent := f.Parent()
	var renditions []rendition
	for _, s := range scales {
		name := f.Name()
		if s != 1 {
			name += "@" + strconv.Itoa(s) + "x"
		}
		if nine {
			name += ".9"
		}
		if exists := parent.FindFile(func(o *respack.File) bool { return o != f && o.Name() == name }); exists != nil {
			tc.Log().Debug("rendition already exists", "file", exists.String())
			continue
		}

		var buf *image.ImageBuf
		if nine {
			buf, err = im.RenderNinepatch(w*s, h*s, im.Background())
		} else {
			buf, err = im.Render(w*s, h*s, im.Background())
		}
		if err != nil {
			return false, skipImage(tc, f, err)
		}
		renditions = append(renditions, rendition{name: name, buf: buf})
	}

	parent.RemoveChild(f)
	flags := renderedFlags(f)
	for _, rd := range renditions {
		path := tc.NewFileNamed(f, rd.name, "png")
		if err := rd.buf.SavePNG(path); err != nil {
			return true, fmt.Errorf("rasterize %s: %w", f, err)
		}
		parent.AddFile(respack.NewFileNamed(path, rd.name, flags, "png"))
		tc.Log().Debug("rasterized", "file", f.String(), "width", rd.buf.Width(), "height", rd.buf.Height())
	}
	return true, nil
}

type rendition struct {
	name string
	buf  *image.ImageBuf
}
