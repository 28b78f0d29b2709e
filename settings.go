package respack

import (
	"fmt"
	"sort"
)

// SettingKey names a run setting of type T together with its default value
// and a help text. Keys are immutable; values are bound per run through
// [Settings].
//
// Example:
//
//	var PageSize = respack.NewSettingKey("PageSize", 1024, "Atlas page size")
//
//	err := respack.Run(ctx, src, dst, tasks,
//	    respack.WithSettings(PageSize.To(2048), respack.TileSize.To(64)))
type SettingKey[T any] struct {
	name string
	def  T
	help string
}

// NewSettingKey creates a setting key.
func NewSettingKey[T any](name string, def T, help string) SettingKey[T] {
	return SettingKey[T]{name: name, def: def, help: help}
}

// Name returns the key name.
func (k SettingKey[T]) Name() string { return k.name }

// Default returns the value used when a run does not bind the key.
func (k SettingKey[T]) Default() T { return k.def }

// Help returns the key description.
func (k SettingKey[T]) Help() string { return k.help }

// To binds value to the key.
func (k SettingKey[T]) To(value T) Setting {
	return Setting{key: k.name, value: value}
}

// Get returns the value bound in s, or the default when s is nil or does
// not bind the key.
func (k SettingKey[T]) Get(s *Settings) T {
	if s == nil {
		return k.def
	}
	v, ok := s.values[k.name]
	if !ok {
		return k.def
	}
	if t, ok := v.(T); ok {
		return t
	}
	return k.def
}

// Setting is a key bound to a value, created by [SettingKey.To].
type Setting struct {
	key   string
	value any
}

// Key returns the bound key name.
func (s Setting) Key() string { return s.key }

func (s Setting) String() string { return fmt.Sprintf("%s=%v", s.key, s.value) }

// Settings is the set of bindings active for one run. A nil *Settings is
// valid and yields defaults for every key.
type Settings struct {
	values map[string]any
}

// NewSettings collects bindings. Later bindings of the same key win.
func NewSettings(bindings ...Setting) *Settings {
	s := &Settings{values: make(map[string]any, len(bindings))}
	for _, b := range bindings {
		s.values[b.key] = b.value
	}
	return s
}

// Keys returns the bound key names in sorted order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Core settings.
var (
	// TileSize is the pixel size of one tile unit in the w<W>h<H> flag pattern.
	TileSize = NewSettingKey("TileSize", 128, "Size of tile used by w<W>h<H> flag pattern")

	// DefaultImageScaling names the resampling algorithm used when a file has
	// no "scaling <algo>" flag.
	DefaultImageScaling = NewSettingKey("DefaultImageScaling", "bilinear", "Image scaling algorithm used by default")

	// PreferSymlinks makes the final copy link untouched source files
	// instead of copying them.
	PreferSymlinks = NewSettingKey("PreferSymlinks", false, "Symlink unchanged source files into the output")
)
