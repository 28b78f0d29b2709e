package tasks

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/flagutil"
)

// Model flags:
//
//	to <format>        output format: fbx, g3dj or g3db
//	options <args>     extra converter arguments
var (
	modelFormatPattern  = flagutil.Pattern(`to (fbx|g3dj|g3db)`)
	modelOptionsPattern = flagutil.Pattern(`options ?((?:\w| |-)+)`)

	mtlLibPattern  = flagutil.Pattern(`mtllib ((?:\w|/|-|\.)+\w\.mtl)`)
	texturePattern = flagutil.Pattern(`map_Kd ((?:\w|/|-|\.)+\w\.(?:png|jpg|jpeg))`)
)

// Converter converts the model at input to format ("FBX", "G3DJ" or
// "G3DB"), writing output. args are passed through from the options flag.
type Converter func(ctx context.Context, input, output, format string, args []string) error

// FBXConv returns a Converter running the fbx-conv executable.
func FBXConv(executable string) Converter {
	return func(ctx context.Context, input, output, format string, args []string) error {
		argv := append([]string{"-o", format}, args...)
		argv = append(argv, input, output)
		cmd := exec.CommandContext(ctx, executable, argv...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s: %w: %s", executable, err, strings.TrimSpace(string(out)))
		}
		return nil
	}
}

// ConvertModels converts .obj and .fbx models flagged "to <format>" with
// an external converter. Materials and textures an .obj references are
// converted along with it and removed from the tree afterwards.
type ConvertModels struct {
	respack.BaseTask

	// Converter runs the conversion. Nil means fbx-conv from PATH.
	Converter Converter
}

func (*ConvertModels) Name() string { return "ConvertModels" }

func (c *ConvertModels) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	if f.Extension() != "obj" && f.Extension() != "fbx" {
		return false, nil
	}
	log := tc.Log().With("file", f.String())
	flags := f.Flags()
	m, ok := flagutil.MatchFirst(log, flags, modelFormatPattern)
	if !ok {
		return false, nil
	}
	format := strings.ToUpper(m.Group(1))
	var args []string
	if m, ok := flagutil.MatchFirst(log, flags, modelOptionsPattern); ok {
		args = strings.Fields(m.Group(1))
	}

	isObj := f.Extension() == "obj"
	var deps []dependency
	if isObj {
		var err error
		if deps, err = objDependencies(log, f); err != nil {
			return false, err
		}
		if err := copyWithDependencies(tc, f, deps); err != nil {
			return false, err
		}
	}

	dir, err := tc.NewFolder()
	if err != nil {
		return false, err
	}
	output := filepath.Join(dir, f.Name()+"."+strings.ToLower(format))
	convert := c.Converter
	if convert == nil {
		convert = FBXConv("fbx-conv")
	}
	log.Info("converting model", "format", format, "args", args)
	if err := convert(tc.Context(), f.Path(), output, format, args); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			log.Error("model converter not found", "err", err)
		} else {
			log.Error("model not converted", "err", err)
		}
		return false, nil
	}
	if _, err := os.Stat(output); err != nil {
		log.Error("model converter produced no output", "output", output)
		return false, nil
	}

	parent := f.Parent()
	for _, d := range deps {
		removeLive(d.file)
	}
	parent.RemoveChild(f)
	parent.AddFile(generatedFile(output))
	return true, nil
}

// dependency is a file referenced by a model or material, with the
// reference as written relative to the referring file.
type dependency struct {
	file *respack.File
	rel  string
}

// objDependencies returns the materials of an .obj followed by the
// textures of each material. Textures are relative to their material.
func objDependencies(log *slog.Logger, obj *respack.File) ([]dependency, error) {
	mtls, err := references(log, obj, mtlLibPattern)
	if err != nil {
		return nil, err
	}
	var out []dependency
	for _, mtl := range mtls {
		out = append(out, mtl)
		textures, err := references(log, mtl.file, texturePattern)
		if err != nil {
			return nil, err
		}
		for _, tex := range textures {
			tex.rel = filepath.Join(filepath.Dir(mtl.rel), tex.rel)
			out = append(out, tex)
		}
	}
	return out, nil
}

// references resolves every line of f matching re against the tree,
// starting at the directory of f. Removed children are found too.
func references(log *slog.Logger, f *respack.File, re *regexp.Regexp) ([]dependency, error) {
	in, err := os.Open(f.Path())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	defer func() { _ = in.Close() }()

	var out []dependency
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		m := re.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		ref := m[1]
		parts := strings.Split(ref, "/")
		dir := f.Parent()
		for _, p := range parts[:len(parts)-1] {
			if dir = dir.ChildDirectory(p); dir == nil {
				break
			}
		}
		var dep *respack.File
		if dir != nil {
			dep = dir.ChildFile(parts[len(parts)-1])
		}
		if dep == nil {
			log.Error("file references a non-existing file", "file", f.String(), "reference", ref)
			continue
		}
		out = append(out, dependency{file: dep, rel: filepath.FromSlash(ref)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", f, err)
	}
	return out, nil
}

// copyWithDependencies copies an .obj and its dependencies into one scratch
// folder, keeping the relative layout, and points the nodes at the copies.
// The model itself is renamed object.obj so the converter never sees
// unusual characters in its path.
func copyWithDependencies(tc *respack.TaskContext, obj *respack.File, deps []dependency) error {
	dir, err := tc.NewFolder()
	if err != nil {
		return err
	}
	target := filepath.Join(dir, "object.obj")
	if err := copyPath(obj.Path(), target); err != nil {
		return err
	}
	obj.SetPath(target)
	for _, d := range deps {
		target := filepath.Join(dir, d.rel)
		if err := copyPath(d.file.Path(), target); err != nil {
			return err
		}
		d.file.SetPath(target)
	}
	return nil
}

func copyPath(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// removeLive removes f from its parent unless something removed it already.
func removeLive(f *respack.File) {
	parent := f.Parent()
	if parent != nil && parent.FindFile(func(o *respack.File) bool { return o == f }) != nil {
		parent.RemoveChild(f)
	}
}
