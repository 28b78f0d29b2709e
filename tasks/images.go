package tasks

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/imagefile"
	"github.com/gogpu/respack/internal/ninepatch"
	"github.com/gogpu/respack/internal/scaling"
)

// openImage views f as an image configured from the run settings. It
// returns imagefile.ErrUnsupported for files that are not images.
func openImage(tc *respack.TaskContext, f *respack.File, cache *imagefile.Bitmaps) (*imagefile.Image, error) {
	opts := imagefile.Options{
		TileSize: respack.TileSize.Get(tc.Settings()),
		Cache:    cache,
		Logger:   tc.Log(),
	}
	name := respack.DefaultImageScaling.Get(tc.Settings())
	if alg, err := scaling.ParseAlgorithm(name); err != nil {
		tc.Log().Warn("unknown default scaling algorithm, using bilinear", "name", name)
	} else {
		opts.DefaultScaling = alg
	}
	return imagefile.Open(f.Path(), f.Extension(), f.Flags(), opts)
}

var errEmptySize = errors.New("target size has an empty axis")

// targetSize loads im and returns its target size, rejecting sizes that
// leave nothing to render.
func targetSize(im *imagefile.Image) (int, int, error) {
	w, h, err := im.Size()
	if err != nil {
		return 0, 0, err
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d", errEmptySize, w, h)
	}
	return w, h, nil
}

// skipImage decides what a failed image operation on f means for the run.
// A corrupt ninepatch border is returned so the run aborts. Anything else
// (an undecodable file, a size flag resolving to nothing) is logged and
// nil is returned, leaving f untouched.
func skipImage(tc *respack.TaskContext, f *respack.File, err error) error {
	if errors.Is(err, ninepatch.ErrInvalidControlPixel) {
		return fmt.Errorf("%s: %w", f, err)
	}
	tc.Log().Error("image skipped", "file", f.String(), "err", err)
	return nil
}

// renderFlags are consumed when an image is rendered and must not reach
// the rendered copy.
var renderFlags = []string{"rasterize", "r", "scaled"}

// renderedFlags returns the flags of f that still apply after rendering:
// size, scaling and background flags are dropped along with renderFlags.
func renderedFlags(f *respack.File) []string {
	return f.FlagsExcept(func(flag string) bool {
		for _, r := range renderFlags {
			if flag == r {
				return true
			}
		}
		for _, re := range renderPatterns {
			if re.MatchString(flag) {
				return true
			}
		}
		return false
	})
}

var renderPatterns = []*regexp.Regexp{
	scaling.TileSizePattern,
	scaling.PixelSizePattern,
	scaling.ScalingPattern,
	scaling.BackgroundPattern,
}

// scaleFactors collects the N of every @Nx flag.
func scaleFactors(flags []string) []int {
	var out []int
	for m := range flagutil.MatchAll(flags, scaleFlagPattern) {
		out = append(out, m.Int(1, 1))
	}
	return out
}

var scaleFlagPattern = flagutil.Pattern(`@([1-9][0-9]*)x`)

// replaceWithPNG makes buf the new content of f. The node keeps its name
// and flags; a file that was not a PNG is replaced by a PNG node.
func replaceWithPNG(tc *respack.TaskContext, f *respack.File, buf *image.ImageBuf) error {
	path := tc.NewFile(f, "png")
	if err := buf.SavePNG(path); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if f.Extension() == "png" {
		f.SetPath(path)
		return nil
	}
	parent := f.Parent()
	parent.RemoveChild(f)
	parent.AddFile(respack.NewFileNamed(path, f.Name(), f.Flags(), "png"))
	return nil
}
