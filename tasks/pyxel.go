package tasks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zip"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/imagefile"
)

// PyxelTiles extracts the tiles of a Pyxel Edit archive flagged "tiles" or
// "ui-tiles" as <name><N>.png. With "ui-tiles", tiles that look like
// ninepatches are flagged as such.
type PyxelTiles struct{ respack.BaseTask }

func (*PyxelTiles) Name() string { return "PyxelTiles" }

func (*PyxelTiles) OperateFile(tc *respack.TaskContext, f *respack.File) (bool, error) {
	ui := f.HasFlag("ui-tiles")
	if !ui && !f.HasFlag("tiles") {
		return false, nil
	}
	zr, err := zip.OpenReader(f.Path())
	if err != nil {
		tc.Log().Error("tiles archive not readable", "file", f.String(), "err", err)
		return false, nil
	}
	defer func() { _ = zr.Close() }()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, e := range zr.File {
		entries[e.Name] = e
	}
	dir, err := tc.NewFolder()
	if err != nil {
		return false, err
	}

	parent := f.Parent()
	for id := 0; ; id++ {
		e, ok := entries["tile"+strconv.Itoa(id)+".png"]
		if !ok {
			break
		}
		path := filepath.Join(dir, f.Name()+strconv.Itoa(id)+".png")
		if err := extract(e, path); err != nil {
			return false, fmt.Errorf("extract %s from %s: %w", e.Name, f, err)
		}
		tile := parent.AddFile(generatedFile(path))
		if ui {
			nine, err := imagefile.CouldBeNinepatch(path)
			if err != nil {
				tc.Log().Warn("tile not decodable", "tile", tile.String(), "err", err)
			} else if nine {
				tile.AddFlag(imagefile.NinepatchFlag)
			}
		}
	}
	parent.RemoveChild(f)
	return true, nil
}

func extract(e *zip.File, path string) error {
	in, err := e.Open()
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
