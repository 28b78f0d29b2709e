package atlas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// JSON shapes follow the TexturePacker "array" export so existing
// loaders can read scale 1 directly; split, pad and scales are extras.
type (
	jsonRect struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	}

	jsonSize struct {
		W int `json:"w"`
		H int `json:"h"`
	}

	jsonFrame struct {
		Frame            jsonRect `json:"frame"`
		Rotated          bool     `json:"rotated"`
		Trimmed          bool     `json:"trimmed"`
		SpriteSourceSize jsonRect `json:"spriteSourceSize"`
		SourceSize       jsonSize `json:"sourceSize"`
		Split            []int    `json:"split,omitempty"`
		Pad              []int    `json:"pad,omitempty"`
	}

	jsonPage struct {
		Image  string               `json:"image"`
		Size   jsonSize             `json:"size"`
		Scales map[string]string    `json:"scales,omitempty"`
		Frames map[string]jsonFrame `json:"frames"`
	}

	jsonMeta struct {
		App    string `json:"app"`
		Scales []int  `json:"scales"`
	}

	jsonAtlas struct {
		Textures []jsonPage `json:"textures"`
		Meta     jsonMeta   `json:"meta"`
	}
)

// PageName returns the file name of a page image: the atlas name, the page
// number from the second page on, and "@Nx" for scales other than 1.
func PageName(atlasName string, page, scale int) string {
	name := atlasName
	if page > 0 {
		name += strconv.Itoa(page + 1)
	}
	if scale != 1 {
		name += "@" + strconv.Itoa(scale) + "x"
	}
	return name + ".png"
}

func (r *Result) descriptor(atlasName string) jsonAtlas {
	out := jsonAtlas{
		Textures: make([]jsonPage, len(r.Pages)),
		Meta:     jsonMeta{App: "respack", Scales: r.Scales},
	}
	for i, p := range r.Pages {
		jp := jsonPage{
			Image:  PageName(atlasName, i, 1),
			Size:   jsonSize{W: p.Width, H: p.Height},
			Frames: make(map[string]jsonFrame),
		}
		for _, s := range r.Scales {
			if s == 1 {
				continue
			}
			if jp.Scales == nil {
				jp.Scales = make(map[string]string)
			}
			jp.Scales[strconv.Itoa(s)] = PageName(atlasName, i, s)
		}
		out.Textures[i] = jp
	}
	for _, reg := range r.Regions {
		f := jsonFrame{
			Frame:            jsonRect{X: reg.X, Y: reg.Y, W: reg.Width, H: reg.Height},
			Trimmed:          reg.Trimmed(),
			SpriteSourceSize: jsonRect{X: reg.OffsetX, Y: reg.OffsetY, W: reg.Width, H: reg.Height},
			SourceSize:       jsonSize{W: reg.OriginalWidth, H: reg.OriginalHeight},
		}
		if reg.Splits != nil {
			f.Split = reg.Splits.Slice()
		}
		if reg.Pads != nil {
			f.Pad = reg.Pads.Slice()
		}
		out.Textures[reg.Page].Frames[reg.Name] = f
	}
	return out
}

// EncodeJSON writes the atlas descriptor.
func (r *Result) EncodeJSON(w io.Writer, atlasName string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.descriptor(atlasName)); err != nil {
		return fmt.Errorf("atlas: encode descriptor: %w", err)
	}
	return nil
}

// WriteFiles writes "<atlasName>.json" and every page image into dir and
// returns the written paths, descriptor first.
func (r *Result) WriteFiles(dir, atlasName string) ([]string, error) {
	descPath := filepath.Join(dir, atlasName+".json")
	f, err := os.Create(descPath)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	if err := r.EncodeJSON(f, atlasName); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}

	paths := []string{descPath}
	for i, p := range r.Pages {
		for _, s := range r.Scales {
			path := filepath.Join(dir, PageName(atlasName, i, s))
			if err := p.Images[s].SavePNG(path); err != nil {
				return paths, fmt.Errorf("atlas: write page: %w", err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
