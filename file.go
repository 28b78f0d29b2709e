package respack

import (
	"path/filepath"
	"strings"
)

// File is a leaf of the resource tree backed by a file on disk.
//
// Tasks may redirect the backing path to a temporary file with SetPath
// without changing the node's identity or flags.
type File struct {
	node
	extension string
	path      string
}

// NewFile creates a detached file node whose name, flags and extension are
// parsed from the basename of path.
func NewFile(path string) *File {
	p := ParseName(filepath.Base(path), true)
	return &File{node: node{name: p.Name, flags: p.Flags}, extension: p.Extension, path: path}
}

// NewFileNamed creates a detached file node with explicit naming, backed by path.
func NewFileNamed(path, name string, flags []string, extension string) *File {
	return &File{
		node:      node{name: name, flags: append([]string(nil), flags...)},
		extension: strings.ToLower(extension),
		path:      path,
	}
}

// Extension returns the lowercased extension, possibly empty.
func (f *File) Extension() string { return f.extension }

// Path returns the current backing file.
func (f *File) Path() string { return f.path }

// SetPath redirects the node to a different backing file.
func (f *File) SetPath(path string) { f.path = path }

// SimpleName returns the name with the extension and without flags.
// This is the basename the file gets in the output directory.
func (f *File) SimpleName() string {
	if f.extension == "" {
		return f.name
	}
	return f.name + "." + f.extension
}

// Root returns the root of the tree the file belongs to, or nil when detached.
func (f *File) Root() *Directory { return f.root() }

// RemoveFromParent moves the file to its parent's removed list.
func (f *File) RemoveFromParent() bool {
	if f.parent == nil {
		return false
	}
	return f.parent.RemoveChild(f)
}

// IsBitmap reports whether the extension names a decodable raster format.
func (f *File) IsBitmap() bool {
	switch f.extension {
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp":
		return true
	}
	return false
}

// IsVector reports whether the file is an SVG document.
func (f *File) IsVector() bool { return f.extension == "svg" }

// IsImage reports whether the file is a bitmap or vector image.
func (f *File) IsImage() bool { return f.IsBitmap() || f.IsVector() }

// IsFont reports whether the file is a TrueType or OpenType font.
func (f *File) IsFont() bool { return f.extension == "ttf" || f.extension == "otf" }

func (f *File) String() string {
	return displayPath(f.root(), f.path) + " (" + FormatName(f.name, f.flags, f.extension) + ")"
}

func (f *File) applyTask(tc *TaskContext, task Task) (bool, error) {
	return task.OperateFile(tc, f)
}

// displayPath shortens p relative to the tree root's source directory.
func displayPath(root *Directory, p string) string {
	if root == nil || root.path == "" {
		return p
	}
	rel, err := filepath.Rel(root.path, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.Join("$SRC", rel)
}
