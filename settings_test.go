package respack

import "testing"

func TestSettingKeyDefaults(t *testing.T) {
	if got := TileSize.Get(nil); got != 128 {
		t.Errorf("TileSize.Get(nil) = %d, want 128", got)
	}
	if got := DefaultImageScaling.Get(NewSettings()); got != "bilinear" {
		t.Errorf("DefaultImageScaling default = %q, want bilinear", got)
	}
	if PreferSymlinks.Get(nil) {
		t.Error("PreferSymlinks default = true, want false")
	}
}

func TestSettingsBindings(t *testing.T) {
	custom := NewSettingKey("PageSize", 1024, "page size")
	s := NewSettings(TileSize.To(64), custom.To(2048), TileSize.To(32))

	if got := TileSize.Get(s); got != 32 {
		t.Errorf("TileSize.Get() = %d, want last binding 32", got)
	}
	if got := custom.Get(s); got != 2048 {
		t.Errorf("custom.Get() = %d, want 2048", got)
	}
	if got := DefaultImageScaling.Get(s); got != "bilinear" {
		t.Errorf("unbound key = %q, want default", got)
	}

	// Settings are per value: another run sees defaults again.
	if got := TileSize.Get(NewSettings()); got != 128 {
		t.Errorf("TileSize in a fresh run = %d, want 128", got)
	}
}

func TestSettingKeyTypeMismatch(t *testing.T) {
	asString := NewSettingKey("TileSize", "big", "")
	s := NewSettings(TileSize.To(64))
	if got := asString.Get(s); got != "big" {
		t.Errorf("mismatched Get() = %q, want default", got)
	}
}
