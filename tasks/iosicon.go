package tasks

import (
	"fmt"
	"strings"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/imagefile"
)

// iconSize is one square iOS icon rendition.
type iconSize struct {
	size int
	name string
}

// Icon flags, matched case-insensitively as prefixes. Appending "Small"
// adds the spotlight and settings sizes, appending "Artwork" adds the
// iTunes artwork.
const (
	universalIconFlag = "iosicon"
	iPhoneIconFlag    = "iphoneicon"
	iPadIconFlag      = "ipadicon"
)

var (
	artworkIcons = []iconSize{
		{512, "iTunesArtwork"},
		{1024, "iTunesArtwork@2x"},
	}

	// The universal set equals the iPhone set.
	iPhoneIcons = []iconSize{
		{120, "Icon-60@2x"},
		{180, "Icon-60@3x"},
		{76, "Icon-76"},
		{152, "Icon-76@2x"},
		{57, "Icon"},
		{114, "Icon@2x"},
		{72, "Icon-72"},
		{144, "Icon-72@2x"},
	}
	iPhoneSmallIcons = []iconSize{
		{40, "Icon-Small-40"},
		{80, "Icon-Small-40@2x"},
		{120, "Icon-Small-40@3x"},
		{29, "Icon-Small"},
		{58, "Icon-Small@2x"},
		{87, "Icon-Small@3x"},
		{50, "Icon-Small-50"},
		{100, "Icon-Small-50@2x"},
	}

	iPadIcons = []iconSize{
		{76, "Icon-76"},
		{152, "Icon-76@2x"},
		{72, "Icon-72"},
		{144, "Icon-72@2x"},
	}
	iPadSmallIcons = []iconSize{
		{40, "Icon-Small-40"},
		{80, "Icon-Small-40@2x"},
		{29, "Icon-Small"},
		{58, "Icon-Small@2x"},
		{50, "Icon-Small-50"},
		{100, "Icon-Small-50@2x"},
	}
)

// CreateIOSIcon renders an image flagged iOSIcon, iPhoneIcon or iPadIcon
// to the full set of iOS icon PNGs next to it, then removes the source.
// An icon whose name already exists in the directory is not rendered, so
// hand-made renditions win. The remaining flags carry over to each icon.
type CreateIOSIcon struct {
	respack.BaseTask
	cache *imagefile.Bitmaps
}

func (*CreateIOSIcon) Name() string { return "CreateIOSIcon" }

func (c *CreateIOSIcon) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	var icons []iconSize
	for _, flag := range f.Flags() {
		if icons = iconSet(strings.ToLower(flag)); icons != nil {
			break
		}
	}
	if icons == nil {
		return false, nil
	}
	if !f.IsImage() {
		tc.Log().Warn("file is marked for iOS icon creation but is not an image", "file", f.String())
		return false, nil
	}
	im, err := openImage(tc, f, c.cache)
	if err != nil {
		return false, skipImage(tc, f, err)
	}

	flags := f.FlagsExcept(isIconFlag)
	parent := f.Parent()
	var renditions []rendition
	for _, icon := range icons {
		if parent.FindFile(func(o *respack.File) bool { return o != f && o.Name() == icon.name }) != nil {
			tc.Log().Debug("icon already exists", "name", icon.name)
			continue
		}
		buf, err := im.Render(icon.size, icon.size, im.Background())
		if err != nil {
			return false, skipImage(tc, f, err)
		}
		renditions = append(renditions, rendition{name: icon.name, buf: buf})
	}

	parent.RemoveChild(f)
	for _, rd := range renditions {
		path := tc.NewBlankFile(rd.name, "png")
		if err := rd.buf.SavePNG(path); err != nil {
			return true, fmt.Errorf("icon %s from %s: %w", rd.name, f, err)
		}
		parent.AddFile(respack.NewFileNamed(path, rd.name, flags, "png"))
		tc.Log().Debug("icon created", "name", rd.name, "size", rd.buf.Width())
	}
	return true, nil
}

// iconSet returns the icon sizes a lowercased flag asks for, or nil.
func iconSet(flag string) []iconSize {
	var base, small []iconSize
	switch {
	case strings.HasPrefix(flag, universalIconFlag), strings.HasPrefix(flag, iPhoneIconFlag):
		base, small = iPhoneIcons, iPhoneSmallIcons
	case strings.HasPrefix(flag, iPadIconFlag):
		base, small = iPadIcons, iPadSmallIcons
	default:
		return nil
	}
	out := append([]iconSize(nil), base...)
	if strings.Contains(flag, "small") {
		out = append(out, small...)
	}
	if strings.Contains(flag, "artwork") {
		out = append(out, artworkIcons...)
	}
	return out
}

func isIconFlag(flag string) bool {
	return iconSet(strings.ToLower(flag)) != nil
}
