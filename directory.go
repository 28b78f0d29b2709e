package respack

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Directory is an inner node of the resource tree.
//
// Removing a child moves it to a shadow list of the same directory instead
// of forgetting it, so later tasks can still resolve consumed files by name
// (a model referencing a material referencing a texture, for instance).
type Directory struct {
	node
	path string

	files       []*File
	directories []*Directory

	removedFiles       []*File
	removedDirectories []*Directory
}

// NewDirectory creates a detached, empty directory node named after the
// basename of path. Directories never carry an extension.
func NewDirectory(path string) *Directory {
	p := ParseName(filepath.Base(path), false)
	return &Directory{node: node{name: p.Name, flags: p.Flags}, path: path}
}

// OpenTree builds a resource tree rooted at the directory path, eagerly
// materializing every non-dotfile entry below it.
func OpenTree(path string) (*Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("respack: open tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("respack: open tree %s: %w", path, ErrNotDirectory)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("respack: open tree: %w", err)
	}
	root := NewDirectory(abs)
	if err := root.materialize(); err != nil {
		return nil, err
	}
	return root, nil
}

// Path returns the backing directory. It is informational only once the tree
// has been built.
func (d *Directory) Path() string { return d.path }

// Root returns the topmost directory of the tree.
func (d *Directory) Root() *Directory {
	if r := d.root(); r != nil {
		return r
	}
	return d
}

// Files returns a snapshot of the live child files.
func (d *Directory) Files() []*File { return slices.Clone(d.files) }

// Directories returns a snapshot of the live child directories.
func (d *Directory) Directories() []*Directory { return slices.Clone(d.directories) }

// HasChildren reports whether the directory has any live child.
func (d *Directory) HasChildren() bool {
	return len(d.files) > 0 || len(d.directories) > 0
}

// materialize adds every entry of the backing directory as a child.
func (d *Directory) materialize() error {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return fmt.Errorf("respack: read %s: %w", d.path, err)
	}
	for _, e := range entries {
		if _, err := d.AddEntry(filepath.Join(d.path, e.Name()), true); err != nil {
			return err
		}
	}
	return nil
}

// AddEntry classifies a filesystem entry as a file or directory, creates its
// node and inserts it as a live child. Subdirectories are materialized
// recursively when createStructure is set.
//
// Dot-prefixed entries are never added. Entries that do not exist are skipped
// with a warning. Both cases return a nil Resource and a nil error.
func (d *Directory) AddEntry(path string, createStructure bool) (Resource, error) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return nil, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		Logger().Warn("child not added because it does not exist", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("respack: stat %s: %w", path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return d.AddFile(NewFile(path)), nil
	case info.IsDir():
		sub := d.AddDirectory(NewDirectory(path))
		if createStructure {
			if err := sub.materialize(); err != nil {
				return nil, err
			}
		}
		return sub, nil
	default:
		return nil, nil
	}
}

// AddFile inserts f as a live child and reparents it.
func (d *Directory) AddFile(f *File) *File {
	d.files = append(d.files, f)
	f.parent = d
	return f
}

// AddDirectory inserts sub as a live child and reparents it.
func (d *Directory) AddDirectory(sub *Directory) *Directory {
	d.directories = append(d.directories, sub)
	sub.parent = d
	return sub
}

// AddChild inserts r as a live child and reparents it.
func (d *Directory) AddChild(r Resource) Resource {
	switch r := r.(type) {
	case *File:
		return d.AddFile(r)
	case *Directory:
		return d.AddDirectory(r)
	}
	panic(fmt.Sprintf("respack: unknown resource %T", r))
}

// RemoveChild moves r from the live children to the removed list. Removing
// something that is not a live child logs a warning and returns false.
func (d *Directory) RemoveChild(r Resource) bool {
	switch r := r.(type) {
	case *File:
		if i := slices.Index(d.files, r); i >= 0 {
			d.files = slices.Delete(d.files, i, i+1)
			d.removedFiles = append(d.removedFiles, r)
			return true
		}
		Logger().Warn("removing file which is not a child", "file", r.String(), "dir", d.String())
	case *Directory:
		if i := slices.Index(d.directories, r); i >= 0 {
			d.directories = slices.Delete(d.directories, i, i+1)
			d.removedDirectories = append(d.removedDirectories, r)
			return true
		}
		Logger().Warn("removing directory which is not a child", "child", r.String(), "dir", d.String())
	}
	return false
}

// RemoveFromParent detaches the directory into its parent's removed list.
func (d *Directory) RemoveFromParent() bool {
	if d.parent == nil {
		return false
	}
	return d.parent.RemoveChild(d)
}

// ChildFile finds a child file by name. The name may carry an extension
// ("foo.png") to pick between files sharing a base name. Live children are
// searched first, then removed ones.
//
// A name with more than one dot cannot name a child file and is reported as
// an error; ChildFile returns nil rather than guessing.
func (d *Directory) ChildFile(name string) *File {
	if strings.Count(name, ".") > 1 {
		Logger().Error("there is no child file with two dots in its name", "name", name, "dir", d.String())
		return nil
	}
	match := func(f *File) bool { return f.name == name }
	if strings.Contains(name, ".") {
		p := ParseName(name, true)
		match = func(f *File) bool { return f.name == p.Name && f.extension == p.Extension }
	}
	if i := slices.IndexFunc(d.files, match); i >= 0 {
		return d.files[i]
	}
	if i := slices.IndexFunc(d.removedFiles, match); i >= 0 {
		return d.removedFiles[i]
	}
	return nil
}

// ChildDirectory finds a child directory by name, falling back to removed
// directories.
func (d *Directory) ChildDirectory(name string) *Directory {
	match := func(c *Directory) bool { return c.name == name }
	if i := slices.IndexFunc(d.directories, match); i >= 0 {
		return d.directories[i]
	}
	if i := slices.IndexFunc(d.removedDirectories, match); i >= 0 {
		return d.removedDirectories[i]
	}
	return nil
}

// FindFile returns the first live child file accepted by match.
func (d *Directory) FindFile(match func(*File) bool) *File {
	if i := slices.IndexFunc(d.files, match); i >= 0 {
		return d.files[i]
	}
	return nil
}

// ApplyTask runs the task's directory hook on d, then visits the live files
// and the live directories (recursively) as they were right after that hook.
// Children a hook adds are not visited in this sweep; children removed from d
// before their turn are skipped. The snapshot is therefore not visited
// exactly as taken: a sibling consumed earlier in the sweep is not offered
// to the task again.
//
// It reports whether any hook in the subtree did work. A hook error stops
// the traversal and is returned as is.
func (d *Directory) ApplyTask(tc *TaskContext, task Task) (bool, error) {
	return d.applyTask(tc, task)
}

func (d *Directory) applyTask(tc *TaskContext, task Task) (bool, error) {
	did, err := task.OperateDirectory(tc, d)
	if err != nil {
		return did, err
	}

	files := slices.Clone(d.files)
	dirs := slices.Clone(d.directories)

	for _, f := range files {
		if !slices.Contains(d.files, f) {
			continue
		}
		ok, err := f.applyTask(tc, task)
		did = did || ok
		if err != nil {
			return did, err
		}
	}
	for _, sub := range dirs {
		if !slices.Contains(d.directories, sub) {
			continue
		}
		ok, err := sub.applyTask(tc, task)
		did = did || ok
		if err != nil {
			return did, err
		}
	}
	return did, nil
}

// CopyOptions controls how [Directory.CopyToDisk] writes files.
type CopyOptions struct {
	// Symlink links files that still live under SourceRoot instead of
	// copying them. A failed link falls back to a copy.
	Symlink bool

	// SourceRoot is the directory the tree was built from.
	SourceRoot string
}

// CopyToDisk writes the current tree into outputDir: d's files first, then
// one subdirectory per child directory, recursively.
func (d *Directory) CopyToDisk(outputDir string, opts CopyOptions) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("respack: create %s: %w", outputDir, err)
	}
	for _, f := range d.files {
		dst := filepath.Join(outputDir, f.SimpleName())
		if err := copyFile(f, dst, opts); err != nil {
			return err
		}
	}
	for _, sub := range d.directories {
		if err := sub.CopyToDisk(filepath.Join(outputDir, sub.name), opts); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(f *File, dst string, opts CopyOptions) error {
	if opts.Symlink && isUnder(opts.SourceRoot, f.path) {
		src, err := filepath.Abs(f.path)
		if err == nil {
			err = os.Symlink(src, dst)
		}
		if err == nil {
			return nil
		}
		Logger().Warn("symlink not possible, copying instead", "file", f.String(), "err", err)
	}

	in, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("respack: copy %s: %w", f, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("respack: copy %s: %w", f, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("respack: copy %s: %w", f, err)
	}
	return out.Close()
}

func isUnder(root, path string) bool {
	if root == "" {
		return false
	}
	absRoot, err1 := filepath.Abs(root)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// PrettyString renders the live subtree with children sorted by name, one
// entry per line, indented four spaces per level.
func (d *Directory) PrettyString() string {
	var sb strings.Builder
	d.prettyString(&sb, 0)
	return sb.String()
}

func (d *Directory) prettyString(sb *strings.Builder, level int) {
	indent := strings.Repeat("    ", level)

	files := d.Files()
	sort.SliceStable(files, func(i, j int) bool { return files[i].name < files[j].name })
	for _, f := range files {
		sb.WriteString(indent)
		sb.WriteString(f.name)
		sb.WriteByte('.')
		sb.WriteString(f.extension)
		sb.WriteByte('\n')
	}

	dirs := d.Directories()
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	for _, sub := range dirs {
		sb.WriteString(indent)
		sb.WriteString(sub.name)
		sb.WriteString("/\n")
		sub.prettyString(sb, level+1)
	}
}

func (d *Directory) String() string {
	return "dir " + displayPath(d.root(), d.path) + " (" + d.flagSuffix() + ")"
}
