// Package imagefile presents bitmap and vector files as images with a
// flag-driven target size, scaling algorithm, background and ninepatch
// data.
//
// Flags are read when the Image is opened. The file itself is decoded on
// first use and the derived values are kept for the lifetime of the Image.
package imagefile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/respack/internal/blend"
	"github.com/gogpu/respack/internal/cache"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/ninepatch"
	"github.com/gogpu/respack/internal/scaling"
	"github.com/gogpu/respack/internal/svg"
)

// ErrUnsupported is returned by Open for files that are not images.
var ErrUnsupported = errors.New("imagefile: not an image")

// NinepatchFlag marks a bitmap whose 1px border is ninepatch control data.
const NinepatchFlag = "9"

// Kind tells bitmaps and vector documents apart.
type Kind int

const (
	// Bitmap is a decoded raster image.
	Bitmap Kind = iota
	// Vector is an SVG document.
	Vector
)

// KindOf classifies a lowercased file extension.
func KindOf(ext string) (Kind, bool) {
	switch strings.ToLower(ext) {
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp":
		return Bitmap, true
	case "svg":
		return Vector, true
	}
	return 0, false
}

// Bitmaps caches decoded source bitmaps.
type Bitmaps = cache.Cache[string, *image.ImageBuf]

// NewBitmaps creates a bitmap cache holding at most n images.
func NewBitmaps(n int) *Bitmaps {
	return cache.New[string, *image.ImageBuf](n)
}

// Options configures how images are opened.
type Options struct {
	// TileSize is the pixel size of one unit of the w<W>h<H> pattern.
	TileSize int

	// DefaultScaling is used when no "scaling <name>" flag is present.
	DefaultScaling scaling.Algorithm

	// Cache, when set, shares decoded bitmaps between Images.
	Cache *Bitmaps

	// Logger receives warnings about flags. Nil discards them.
	Logger *slog.Logger
}

// Image is a bitmap or vector file viewed through its flags.
type Image struct {
	path  string
	kind  Kind
	flags []string
	opts  Options
	log   *slog.Logger

	background blend.Color
	algorithm  scaling.Algorithm
	ninepatch  bool

	loaded  bool
	loadErr error

	bitmap *image.ImageBuf
	doc    *svg.Document

	fileW, fileH int
	size         scaling.Dimensions
	splits, pads *ninepatch.Rect
}

// Open returns an Image for the file at path. ext selects the decoder.
func Open(path, ext string, flags []string, opts Options) (*Image, error) {
	kind, ok := KindOf(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultScaling.IsZero() {
		opts.DefaultScaling = scaling.Bilinear
	}

	im := &Image{
		path:      path,
		kind:      kind,
		flags:     append([]string(nil), flags...),
		opts:      opts,
		log:       log.With("image", path),
		algorithm: opts.DefaultScaling,
	}
	im.readFlags()
	return im, nil
}

func (im *Image) readFlags() {
	for _, f := range im.flags {
		if f != NinepatchFlag {
			continue
		}
		if im.kind == Bitmap {
			im.ninepatch = true
		} else {
			im.log.Warn("ninepatch flag on an image that cannot be a ninepatch")
		}
		break
	}

	if m, ok := flagutil.MatchFirst(im.log, im.flags, scaling.BackgroundPattern); ok {
		c, err := blend.ParseHexColor(m.Group(1))
		if err != nil {
			im.log.Warn("invalid background color", "flag", m.Group(0), "err", err)
		} else {
			im.background = c
		}
	}

	if m, ok := flagutil.MatchFirst(im.log, im.flags, scaling.ScalingPattern); ok {
		alg, err := scaling.ParseAlgorithm(m.Group(1))
		if err != nil {
			im.log.Warn("unknown scaling algorithm", "name", m.Group(1))
		} else {
			im.algorithm = alg
		}
	}
}

// Path returns the backing file.
func (im *Image) Path() string { return im.path }

// Kind returns whether the image is a bitmap or a vector document.
func (im *Image) Kind() Kind { return im.kind }

// Background returns the color from the "#<hex>" flag, transparent if none.
func (im *Image) Background() blend.Color { return im.background }

// Algorithm returns the scaling algorithm to render with.
func (im *Image) Algorithm() scaling.Algorithm { return im.algorithm }

// load decodes the file, mines ninepatch data and resolves the target
// size. It runs once; later calls return the first result.
func (im *Image) load() error {
	if im.loaded {
		return im.loadErr
	}
	im.loaded = true
	im.loadErr = im.doLoad()
	return im.loadErr
}

func (im *Image) doLoad() error {
	switch im.kind {
	case Vector:
		doc, err := svg.Load(im.path)
		if err != nil {
			return err
		}
		im.doc = doc
		im.fileW, im.fileH = doc.PixelSize()

	case Bitmap:
		buf, err := im.decode()
		if err != nil {
			return err
		}
		if im.ninepatch {
			splits, pads, content, err := ninepatch.Analyze(buf)
			if err != nil {
				return fmt.Errorf("imagefile: %s: %w", im.path, err)
			}
			im.splits, im.pads = splits, pads
			buf = content
			if splits == nil {
				im.log.Warn("image claims to be a ninepatch but has no splits, losing ninepatch status")
				im.ninepatch = false
			}
		}
		im.bitmap = buf
		im.fileW, im.fileH = buf.Width(), buf.Height()
	}

	im.size = scaling.ResolveDimensions(im.log, im.flags, im.fileW, im.fileH, im.opts.TileSize)
	return nil
}

func (im *Image) decode() (*image.ImageBuf, error) {
	if im.opts.Cache == nil {
		return image.LoadImage(im.path)
	}
	info, err := os.Stat(im.path)
	if err != nil {
		return nil, fmt.Errorf("imagefile: %w", err)
	}
	key := fmt.Sprintf("%s|%d|%d", im.path, info.Size(), info.ModTime().UnixNano())
	return im.opts.Cache.GetOrLoad(key, func() (*image.ImageBuf, error) {
		return image.LoadImage(im.path)
	})
}

// Size returns the target size. For ninepatches it excludes the border.
func (im *Image) Size() (width, height int, err error) {
	if err := im.load(); err != nil {
		return 0, 0, err
	}
	return im.size.Width, im.size.Height, nil
}

// NativeSize returns the size of the file content. For ninepatches it
// excludes the border.
func (im *Image) NativeSize() (width, height int, err error) {
	if err := im.load(); err != nil {
		return 0, 0, err
	}
	return im.fileW, im.fileH, nil
}

// IsNinepatch reports whether the image carries usable ninepatch data.
func (im *Image) IsNinepatch() (bool, error) {
	if err := im.load(); err != nil {
		return false, err
	}
	return im.ninepatch, nil
}

// Splits returns the ninepatch splits scaled to a content size of
// width x height, or nil.
func (im *Image) Splits(width, height int) (*ninepatch.Rect, error) {
	if err := im.load(); err != nil {
		return nil, err
	}
	return im.scaleRect(im.splits, width, height), nil
}

// Pads returns the ninepatch pads scaled to a content size of
// width x height, or nil.
func (im *Image) Pads(width, height int) (*ninepatch.Rect, error) {
	if err := im.load(); err != nil {
		return nil, err
	}
	return im.scaleRect(im.pads, width, height), nil
}

func (im *Image) scaleRect(r *ninepatch.Rect, width, height int) *ninepatch.Rect {
	if r == nil || !im.ninepatch {
		return nil
	}
	s := r.Scale(width, height, im.fileW, im.fileH)
	return &s
}

// Render returns the content at width x height over background, which
// may be transparent. Ninepatch borders are never included.
func (im *Image) Render(width, height int, background blend.Color) (*image.ImageBuf, error) {
	if err := im.load(); err != nil {
		return nil, err
	}
	if im.kind == Vector {
		buf, err := im.doc.Rasterize(width, height)
		if err != nil {
			return nil, err
		}
		if background.A != 0 {
			blend.OverBackground(buf, background, 0, 0, width, height)
		}
		return buf, nil
	}
	return scaling.Resize(im.bitmap, width, height, im.algorithm, background)
}

// RenderDefault renders at the target size over the flag background.
func (im *Image) RenderDefault() (*image.ImageBuf, error) {
	w, h, err := im.Size()
	if err != nil {
		return nil, err
	}
	return im.Render(w, h, im.background)
}

// RenderNinepatch renders like Render and, for ninepatches, surrounds the
// result with a control border re-encoding the scaled splits and pads.
func (im *Image) RenderNinepatch(width, height int, background blend.Color) (*image.ImageBuf, error) {
	buf, err := im.Render(width, height, background)
	if err != nil || !im.ninepatch {
		return buf, err
	}
	return ninepatch.Encode(buf, im.scaleRect(im.splits, width, height), im.scaleRect(im.pads, width, height))
}

// CouldBeNinepatch decodes the bitmap at path and reports whether its
// border looks like ninepatch control data.
func CouldBeNinepatch(path string) (bool, error) {
	buf, err := image.LoadImage(path)
	if err != nil {
		return false, err
	}
	return ninepatch.CouldBeNinepatch(buf), nil
}
