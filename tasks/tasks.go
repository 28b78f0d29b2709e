// Package tasks implements the leaf tasks of the respack pipeline and the
// order they run in by default.
//
// Every task reads its directives from resource flags. A flag that cannot
// be interpreted is logged and the resource is left alone; only data that
// cannot be processed without guessing, such as a corrupt ninepatch border,
// aborts the run.
package tasks

import (
	"path/filepath"
	"strings"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/imagefile"
)

// bitmapCacheSize bounds the decoded images shared by one pipeline.
const bitmapCacheSize = 64

// Default returns the standard pipeline:
// Ignore, TransitiveFlag, CreateIOSIcon, CreateAppleStrings, CreateFonts,
// PyxelTiles, ConvertModels, Flatten, Rasterize, Pack and
// RemoveEmptyDirectories. The image tasks share one decoded-bitmap cache.
//
// PreBlend and Resize are not part of it; insert them where needed.
func Default() []respack.Task {
	cache := imagefile.NewBitmaps(bitmapCacheSize)
	return []respack.Task{
		&Ignore{},
		&TransitiveFlag{},
		&CreateIOSIcon{cache: cache},
		&CreateAppleStrings{},
		&CreateFonts{},
		&PyxelTiles{},
		&ConvertModels{},
		&Flatten{},
		&Rasterize{cache: cache},
		&Pack{cache: cache},
		&RemoveEmptyDirectories{},
	}
}

// generatedFile creates the node of a file a task wrote itself. The
// basename up to the last dot is the name, verbatim: generated names are
// never parsed for flags, so a name containing dots survives.
func generatedFile(path string) *respack.File {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return respack.NewFileNamed(path, strings.TrimSuffix(base, ext), nil, strings.ToLower(strings.TrimPrefix(ext, ".")))
}
