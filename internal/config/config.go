// Package config decodes the HCL files that configure respack: the run file
// read by the command line tool and the per-directory pack.hcl read by the
// Pack task.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/gogpu/respack"
	"github.com/gogpu/respack/internal/atlas"
	"github.com/gogpu/respack/internal/scaling"
)

// ErrInvalid is returned for files that parse but hold unusable values.
var ErrInvalid = errors.New("config: invalid value")

// RunFileName is the run file the command line tool looks for by default.
const RunFileName = "respack.hcl"

// Run is the decoded run file.
//
//	source       = "assets"
//	destination  = "build/assets"
//	working_root = ".respack-work"
//	log_level    = "info"
//	settings {
//	  tile_size       = 64
//	  default_scaling = "quality"
//	  prefer_symlinks = true
//	}
type Run struct {
	Source      string       `hcl:"source,optional"`
	Destination string       `hcl:"destination,optional"`
	WorkingRoot string       `hcl:"working_root,optional"`
	LogLevel    string       `hcl:"log_level,optional"`
	Settings    *RunSettings `hcl:"settings,block"`
}

// RunSettings holds optional overrides of the core run settings.
type RunSettings struct {
	TileSize       *int    `hcl:"tile_size,optional"`
	DefaultScaling *string `hcl:"default_scaling,optional"`
	PreferSymlinks *bool   `hcl:"prefer_symlinks,optional"`
}

// LoadRun reads and decodes the run file at path.
func LoadRun(path string) (*Run, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return ParseRun(src, path)
}

// ParseRun decodes a run file; filename is used in diagnostics.
func ParseRun(src []byte, filename string) (*Run, error) {
	var r Run
	if err := decode(src, filename, &r); err != nil {
		return nil, err
	}
	if _, err := r.Level(); err != nil {
		return nil, err
	}
	if s := r.Settings; s != nil {
		if s.TileSize != nil && *s.TileSize <= 0 {
			return nil, fmt.Errorf("%w: tile_size %d in %s", ErrInvalid, *s.TileSize, filename)
		}
		if s.DefaultScaling != nil {
			if _, err := scaling.ParseAlgorithm(*s.DefaultScaling); err != nil {
				return nil, fmt.Errorf("%w: default_scaling in %s: %w", ErrInvalid, filename, err)
			}
		}
	}
	return &r, nil
}

// Level returns the configured log level, Info when unset.
func (r *Run) Level() (slog.Level, error) {
	var l slog.Level
	if r.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(r.LogLevel)); err != nil {
		return l, fmt.Errorf("%w: log_level %q", ErrInvalid, r.LogLevel)
	}
	return l, nil
}

// Bindings returns the run settings the file sets.
func (r *Run) Bindings() []respack.Setting {
	s := r.Settings
	if s == nil {
		return nil
	}
	var out []respack.Setting
	if s.TileSize != nil {
		out = append(out, respack.TileSize.To(*s.TileSize))
	}
	if s.DefaultScaling != nil {
		out = append(out, respack.DefaultImageScaling.To(*s.DefaultScaling))
	}
	if s.PreferSymlinks != nil {
		out = append(out, respack.PreferSymlinks.To(*s.PreferSymlinks))
	}
	return out
}

// PackFileName is the settings file the Pack task reads from a pack
// directory.
const PackFileName = "pack.hcl"

// Pack is the decoded pack.hcl. Absent attributes keep their defaults.
type Pack struct {
	MaxWidth         *int  `hcl:"max_width,optional"`
	MaxHeight        *int  `hcl:"max_height,optional"`
	PaddingX         *int  `hcl:"padding_x,optional"`
	PaddingY         *int  `hcl:"padding_y,optional"`
	POT              *bool `hcl:"pot,optional"`
	DuplicatePadding *bool `hcl:"duplicate_padding,optional"`
	StripWhitespace  *bool `hcl:"strip_whitespace,optional"`
	AlphaThreshold   *int  `hcl:"alpha_threshold,optional"`
	Workers          *int  `hcl:"workers,optional"`
}

// LoadPack reads the pack file at path and applies it over base.
func LoadPack(path string, base atlas.Settings) (atlas.Settings, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: %w", err)
	}
	return ParsePack(src, path, base)
}

// ParsePack decodes a pack file and applies it over base.
func ParsePack(src []byte, filename string, base atlas.Settings) (atlas.Settings, error) {
	var p Pack
	if err := decode(src, filename, &p); err != nil {
		return base, err
	}
	s := base
	setInt(&s.MaxWidth, p.MaxWidth)
	setInt(&s.MaxHeight, p.MaxHeight)
	setInt(&s.PaddingX, p.PaddingX)
	setInt(&s.PaddingY, p.PaddingY)
	setBool(&s.POT, p.POT)
	setBool(&s.DuplicatePadding, p.DuplicatePadding)
	setBool(&s.StripWhitespace, p.StripWhitespace)
	if t := p.AlphaThreshold; t != nil {
		if *t < 0 || *t > 255 {
			return base, fmt.Errorf("%w: alpha_threshold %d in %s", ErrInvalid, *t, filename)
		}
		s.AlphaThreshold = uint8(*t)
	}
	if w := p.Workers; w != nil {
		if *w < 0 {
			return base, fmt.Errorf("%w: workers %d in %s", ErrInvalid, *w, filename)
		}
		s.Workers = *w
	}
	return s, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func decode(src []byte, filename string, target any) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("config: parse %s: %w", filename, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, target); diags.HasErrors() {
		return fmt.Errorf("config: decode %s: %w", filename, diags)
	}
	return nil
}
