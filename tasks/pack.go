package tasks

import (
	"fmt"
	"strings"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/atlas"
	"github.com/gogpu/respack/internal/config"
	"github.com/gogpu/respack/internal/flagutil"
	"github.com/gogpu/respack/internal/imagefile"
)

// PackFlag marks a directory whose images become a texture atlas.
const PackFlag = "pack"

// scaledNamePattern splits "name@2x" into the name and its scale.
var scaledNamePattern = flagutil.Pattern(`(.+)@([1-9][0-9]*)x?`)

// Pack turns every "pack" directory into a texture atlas named after the
// directory: one JSON descriptor plus pages for each @Nx factor on the
// directory. A pack.hcl file inside the directory overrides the packing
// settings. Other files are kept, and the directory is flattened
// afterwards.
//
// A pack directory waits until no pack directory is left below it, so
// nested atlases are packed inside-out and the pages of an inner atlas
// become images of the outer one.
type Pack struct {
	respack.BaseTask
	cache *imagefile.Bitmaps
}

func (*Pack) Name() string    { return "Pack" }
func (*Pack) Repeating() bool { return true }

func (p *Pack) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	if !d.HasFlag(PackFlag) {
		return false, nil
	}
	if d.Parent() == nil {
		tc.Log().Warn("root directory cannot be packed")
		return false, nil
	}
	if hasPackBelow(d) {
		return false, nil
	}

	settings := atlas.DefaultSettings()
	if f := d.FindFile(isPackSettings); f != nil {
		s, err := config.LoadPack(f.Path(), settings)
		if err != nil {
			return false, err
		}
		settings = s
		d.RemoveChild(f)
	}

	packer, err := atlas.NewPacker(settings, scaleFactors(d.Flags()), tc.Log().With("atlas", d.Name()))
	if err != nil {
		return false, fmt.Errorf("pack %s: %w", d, err)
	}
	for _, f := range d.Files() {
		if !f.IsImage() {
			continue
		}
		im, err := openImage(tc, f, p.cache)
		if err == nil {
			// Decode now so a broken image stays out of the atlas.
			_, _, err = targetSize(im)
		}
		if err != nil {
			if err := skipImage(tc, f, err); err != nil {
				return false, err
			}
			continue
		}
		name, scale := regionName(f)
		if err := packer.Add(name, scale, im); err != nil {
			return false, err
		}
		d.RemoveChild(f)
	}

	if packer.Len() == 0 {
		tc.Log().Warn("nothing to pack", "dir", d.String())
	} else {
		res, err := packer.Pack()
		if err != nil {
			return false, fmt.Errorf("pack %s: %w", d, err)
		}
		dir, err := tc.NewFolder()
		if err != nil {
			return false, err
		}
		paths, err := res.WriteFiles(dir, d.Name())
		if err != nil {
			return false, err
		}
		for _, path := range paths {
			d.AddFile(generatedFile(path))
		}
		tc.Log().Info("atlas packed", "name", d.Name(), "pages", len(res.Pages), "regions", len(res.Regions))
	}
	flattenDirectory(d)
	return true, nil
}

// hasPackBelow reports whether a live descendant of d is flagged "pack".
func hasPackBelow(d *respack.Directory) bool {
	for _, sub := range d.Directories() {
		if sub.HasFlag(PackFlag) || hasPackBelow(sub) {
			return true
		}
	}
	return false
}

func isPackSettings(f *respack.File) bool {
	return f.SimpleName() == config.PackFileName
}

// regionName returns the atlas region name and scale of an image file.
// "button@2x" is region "button" at scale 2; the ".9" suffix Rasterize
// gives ninepatches is dropped.
func regionName(f *respack.File) (string, int) {
	name := f.Name()
	if f.HasFlag(imagefile.NinepatchFlag) {
		name = strings.TrimSuffix(name, ".9")
	}
	m := scaledNamePattern.FindStringSubmatch(name)
	if m == nil {
		return name, 1
	}
	return strings.TrimSuffix(m[1], ".9"), flagutil.Match(m).Int(2, 1)
}
