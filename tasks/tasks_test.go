package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/image"
	"github.com/gogpu/respack/internal/ninepatch"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16" viewBox="0 0 16 16">
  <rect x="0" y="0" width="16" height="16" fill="#ff0000"/>
</svg>`

// writeTree creates files (slash path -> content) under a temp dir. A path
// ending in "/" creates an empty directory.
func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, content, 0o644))
	}
	return root
}

// listTree returns every entry below root as a sorted slash path;
// directories end in "/".
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		switch {
		case rel == ".":
		case d.IsDir():
			out = append(out, filepath.ToSlash(rel)+"/")
		default:
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

// run packs files with tasks and returns the output directory.
func run(t *testing.T, files map[string][]byte, tasks ...respack.Task) string {
	t.Helper()
	src := writeTree(t, files)
	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, respack.Run(context.Background(), src, dst, tasks))
	return dst
}

// solidPNG encodes a w x h image filled with one color.
func solidPNG(t *testing.T, w, h int, r, g, b, a uint8) []byte {
	t.Helper()
	buf, err := image.NewImageBuf(w, h)
	require.NoError(t, err)
	buf.Fill(r, g, b, a)
	data, err := buf.EncodeToBytes()
	require.NoError(t, err)
	return data
}

// ninepatchPNG encodes a white 4x4 content area inside a control border
// whose splits cover the middle two pixels of each axis.
func ninepatchPNG(t *testing.T) []byte {
	t.Helper()
	buf, err := image.NewImageBuf(6, 6)
	require.NoError(t, err)
	for y := 1; y < 5; y++ {
		for x := 1; x < 5; x++ {
			require.NoError(t, buf.SetRGBA(x, y, 255, 255, 255, 255))
		}
	}
	for i := 2; i < 4; i++ {
		require.NoError(t, buf.SetRGBA(i, 0, 0, 0, 0, 255))
		require.NoError(t, buf.SetRGBA(0, i, 0, 0, 0, 255))
	}
	data, err := buf.EncodeToBytes()
	require.NoError(t, err)
	return data
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	w, h, err := image.LoadConfig(path)
	require.NoError(t, err)
	return w, h
}

func TestDefaultOrder(t *testing.T) {
	var got []string
	for _, task := range Default() {
		got = append(got, task.Name())
	}
	require.Equal(t, []string{
		"Ignore", "TransitiveFlag", "CreateIOSIcon", "CreateAppleStrings",
		"CreateFonts", "PyxelTiles", "ConvertModels", "Flatten",
		"Rasterize", "Pack", "RemoveEmptyDirectories",
	}, got)
}

func TestRasterizeSVG(t *testing.T) {
	dst := run(t, map[string][]byte{
		"icon.rasterize.svg": []byte(redSquare),
		"notes.txt":          []byte("keep"),
	}, &Rasterize{})

	require.Equal(t, []string{"icon.png", "notes.txt"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "icon.png"))
	require.Equal(t, [2]int{16, 16}, [2]int{w, h})

	buf, err := image.LoadImage(filepath.Join(dst, "icon.png"))
	require.NoError(t, err)
	r, _, _, a := buf.GetRGBA(8, 8)
	require.GreaterOrEqual(t, r, uint8(250))
	require.GreaterOrEqual(t, a, uint8(250))
}

func TestRasterizeScaled(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.@2x/icon.rasterize.scaled.svg": []byte(redSquare),
		"ui.@2x/other.r.svg":               []byte(redSquare),
	}, &Rasterize{})

	require.Equal(t, []string{"ui/", "ui/icon.png", "ui/icon@2x.png", "ui/other.png"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "ui", "icon@2x.png"))
	require.Equal(t, [2]int{32, 32}, [2]int{w, h})
}

func TestRasterizeKeepsExistingRendition(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.@2x/icon.r.scaled.svg": []byte(redSquare),
		"ui.@2x/icon@2x.png":       solidPNG(t, 5, 5, 0, 0, 255, 255),
	}, &Rasterize{})

	require.Equal(t, []string{"ui/", "ui/icon.png", "ui/icon@2x.png"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "ui", "icon@2x.png"))
	require.Equal(t, [2]int{5, 5}, [2]int{w, h}, "hand-made rendition must win")
}

func TestRasterizeSizeFlags(t *testing.T) {
	dst := run(t, map[string][]byte{
		"logo.r.32x?.png": solidPNG(t, 8, 4, 0, 255, 0, 255),
	}, &Rasterize{})

	require.Equal(t, []string{"logo.png"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "logo.png"))
	require.Equal(t, [2]int{32, 16}, [2]int{w, h})
}

func TestRasterizeNinepatch(t *testing.T) {
	dst := run(t, map[string][]byte{
		"button.9.r.8x8.png": ninepatchPNG(t),
	}, &Rasterize{})

	require.Equal(t, []string{"button.9.png"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "button.9.png"))
	require.Equal(t, [2]int{10, 10}, [2]int{w, h}, "8x8 content plus the control border")
}

func TestRasterizeSkipsBadInput(t *testing.T) {
	dst := run(t, map[string][]byte{
		"empty.r.0x?.svg": []byte(redSquare),
		"broken.r.png":    []byte("not a png"),
		"good.r.svg":      []byte(redSquare),
	}, Default()...)

	require.Equal(t, []string{"broken.png", "empty.svg", "good.png"}, listTree(t, dst))
}

func TestRasterizeCorruptNinepatchAborts(t *testing.T) {
	buf, err := image.NewImageBuf(6, 6)
	require.NoError(t, err)
	require.NoError(t, buf.SetRGBA(2, 0, 0, 0, 0, 128))
	data, err := buf.EncodeToBytes()
	require.NoError(t, err)

	src := writeTree(t, map[string][]byte{
		"button.9.r.png": data,
		"good.r.svg":     []byte(redSquare),
	})
	err = respack.Run(context.Background(), src, t.TempDir(), []respack.Task{&Rasterize{}})
	require.ErrorIs(t, err, ninepatch.ErrInvalidControlPixel)
	var te *respack.TaskError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "Rasterize", te.Task)
}

type atlasFile struct {
	Textures []struct {
		Image  string                     `json:"image"`
		Frames map[string]json.RawMessage `json:"frames"`
	} `json:"textures"`
	Meta struct {
		Scales []int `json:"scales"`
	} `json:"meta"`
}

func readAtlas(t *testing.T, path string) atlasFile {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var a atlasFile
	require.NoError(t, json.Unmarshal(data, &a))
	return a
}

func TestPack(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.pack/a.png":     solidPNG(t, 8, 8, 255, 0, 0, 255),
		"ui.pack/b.png":     solidPNG(t, 4, 4, 0, 255, 0, 255),
		"ui.pack/readme.md": []byte("# ui"),
	}, &Pack{})

	require.Equal(t, []string{"readme.md", "ui.json", "ui.png"}, listTree(t, dst))
	a := readAtlas(t, filepath.Join(dst, "ui.json"))
	require.Len(t, a.Textures, 1)
	require.Equal(t, "ui.png", a.Textures[0].Image)
	require.Contains(t, a.Textures[0].Frames, "a")
	require.Contains(t, a.Textures[0].Frames, "b")
}

func TestPackScales(t *testing.T) {
	dst := run(t, map[string][]byte{
		"game/ui.pack.@2x/a.png":    solidPNG(t, 8, 8, 255, 0, 0, 255),
		"game/ui.pack.@2x/a@2x.png": solidPNG(t, 16, 16, 255, 0, 0, 255),
		"game/ui.pack.@2x/b.png":    solidPNG(t, 4, 4, 0, 255, 0, 255),
	}, &Pack{})

	require.Equal(t, []string{"game/", "game/ui.json", "game/ui.png", "game/ui@2x.png"}, listTree(t, dst))
	a := readAtlas(t, filepath.Join(dst, "game", "ui.json"))
	require.Equal(t, []int{1, 2}, a.Meta.Scales)
	require.Len(t, a.Textures[0].Frames, 2)
}

func TestPackSettingsFile(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.pack/a.png":    solidPNG(t, 3, 5, 255, 0, 0, 255),
		"ui.pack/pack.hcl": []byte("pot = false\npadding_x = 0\npadding_y = 0\n"),
	}, &Pack{})

	require.Equal(t, []string{"ui.json", "ui.png"}, listTree(t, dst))
	w, h := pngSize(t, filepath.Join(dst, "ui.png"))
	require.Equal(t, [2]int{3, 5}, [2]int{w, h})
}

func TestPackInvalidSettingsFile(t *testing.T) {
	src := writeTree(t, map[string][]byte{
		"ui.pack/a.png":    solidPNG(t, 3, 5, 255, 0, 0, 255),
		"ui.pack/pack.hcl": []byte("pot = \"maybe\"\n"),
	})
	err := respack.Run(context.Background(), src, t.TempDir(), []respack.Task{&Pack{}})
	var te *respack.TaskError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "Pack", te.Task)
}

func TestPackNested(t *testing.T) {
	dst := run(t, map[string][]byte{
		"outer.pack/a.png":            solidPNG(t, 4, 4, 255, 0, 0, 255),
		"outer.pack/inner.pack/b.png": solidPNG(t, 4, 4, 0, 255, 0, 255),
		"outer.pack/inner.pack/c.png": solidPNG(t, 4, 4, 0, 0, 255, 255),
	}, &Pack{})

	require.Equal(t, []string{"inner.json", "outer.json", "outer.png"}, listTree(t, dst))
	outer := readAtlas(t, filepath.Join(dst, "outer.json"))
	require.Len(t, outer.Textures, 1)
	frames := outer.Textures[0].Frames
	require.Len(t, frames, 2)
	require.Contains(t, frames, "a")
	require.Contains(t, frames, "inner", "inner page must be packed into the outer atlas")

	inner := readAtlas(t, filepath.Join(dst, "inner.json"))
	require.Contains(t, inner.Textures[0].Frames, "b")
	require.Contains(t, inner.Textures[0].Frames, "c")
}

func TestPackDottedName(t *testing.T) {
	dst := run(t, map[string][]byte{
		`ui."v2".pack/a.png`: solidPNG(t, 4, 4, 255, 0, 0, 255),
	}, &Pack{})

	require.Equal(t, []string{"ui.v2.json", "ui.v2.png"}, listTree(t, dst))
	a := readAtlas(t, filepath.Join(dst, "ui.v2.json"))
	require.Equal(t, "ui.v2.png", a.Textures[0].Image)
}

func TestPackSkipsUndecodableImage(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.pack/a.png":   solidPNG(t, 4, 4, 255, 0, 0, 255),
		"ui.pack/bad.png": []byte("not a png"),
	}, &Pack{})

	require.Equal(t, []string{"bad.png", "ui.json", "ui.png"}, listTree(t, dst))
	frames := readAtlas(t, filepath.Join(dst, "ui.json")).Textures[0].Frames
	require.Len(t, frames, 1)
	require.Contains(t, frames, "a")
}

func TestRasterizeThenPack(t *testing.T) {
	dst := run(t, map[string][]byte{
		"ui.pack.@2x/icon.r.scaled.svg": []byte(redSquare),
		"ui.pack.@2x/button.9.png":      ninepatchPNG(t),
	}, Default()...)

	require.Equal(t, []string{"ui.json", "ui.png", "ui@2x.png"}, listTree(t, dst))
	a := readAtlas(t, filepath.Join(dst, "ui.json"))
	frames := a.Textures[0].Frames
	require.Contains(t, frames, "icon")
	require.Contains(t, frames, "button")

	var button struct {
		Split []int `json:"split"`
	}
	require.NoError(t, json.Unmarshal(frames["button"], &button))
	require.Equal(t, []int{1, 1, 1, 1}, button.Split)
}
