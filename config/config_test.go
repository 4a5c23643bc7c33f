package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/scrollsub/layout"
)

func TestDefaultResolve(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default config error: %v", err)
	}
	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if r.Theme != layout.ThemeModernBook || r.Geometry.Width != 1080 || r.Geometry.Height != 1920 {
		t.Fatalf("unexpected defaults: %+v", r)
	}
	if r.Style.FontSize != 60 || r.Style.StrokeWidth != 1.5 || r.Style.Position != layout.PositionBottom20 {
		t.Fatalf("unexpected style defaults: %+v", r.Style)
	}
	if r.Style.CustomPosition != 70 {
		t.Fatalf("default custom position should be 70%%, got %g", r.Style.CustomPosition)
	}
	if r.Style.Palette.Name != DefaultPalette {
		t.Fatalf("expected default palette, got %s", r.Style.Palette.Name)
	}
	if r.Style.Font.Src == "" {
		t.Fatalf("font should always resolve")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scrollsub.yaml")
	content := `theme: ancient_scroll
aspect: "16:9"
subtitle:
  font_size: 48
  palette: ink_wash
  position: custom
  custom_position: "30%"
  region:
    left: 10
    right: 90
    top: 15
title:
  text: "${book.title|无题}"
  anchor:
    x: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SCROLLSUB_SUBTITLE_STROKE_WIDTH", "3")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if r.Theme != layout.ThemeAncientScroll || r.Aspect != layout.AspectLandscape {
		t.Fatalf("unexpected theme/aspect: %s %s", r.Theme, r.Aspect)
	}
	if r.Style.FontSize != 48 || r.Style.StrokeWidth != 3 {
		t.Fatalf("file and env values should apply: %+v", r.Style)
	}
	if r.Style.Palette.Name != "ink_wash" || r.Style.Position != layout.PositionCustom || r.Style.CustomPosition != 30 {
		t.Fatalf("unexpected subtitle style: %+v", r.Style)
	}
	if r.Style.Region == nil || r.Style.Region.Right != 90 || r.Style.TitleAnchor == nil || r.Style.TitleAnchor.X != 50 {
		t.Fatalf("precise overrides missing: %+v %+v", r.Style.Region, r.Style.TitleAnchor)
	}
	if c.Title.Text != "${book.title|无题}" {
		t.Fatalf("title template should be kept verbatim, got %q", c.Title.Text)
	}
	if c.FontDirs[0] != dir {
		t.Fatalf("relative font dirs should resolve against the config file, got %v", c.FontDirs)
	}
}

func TestResolveRejectsInvalid(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.Theme = "comic" },
		func(c *Config) { c.Aspect = "4:3" },
		func(c *Config) { c.Subtitle.Position = "left" },
		func(c *Config) { c.Subtitle.Palette = "neon" },
		func(c *Config) { c.Subtitle.FontSize = 0 },
		func(c *Config) { c.Subtitle.TextColor = "#GGGGGG" },
	}
	for i, mutate := range cases {
		c, err := Default()
		if err != nil {
			t.Fatalf("default config error: %v", err)
		}
		mutate(c)
		if _, err := c.Resolve(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default config error: %v", err)
	}
	c.Theme = "cinema"
	c.Subtitle.Palette = "warm_sunset"
	c.Title.Anchor = &layout.Anchor{X: 40, Y: 12}

	path := filepath.Join(t.TempDir(), "out", "saved.yaml")
	if err := Save(path, c); err != nil {
		t.Fatalf("save error: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if back.Theme != "cinema" || back.Subtitle.Palette != "warm_sunset" || back.Title.Anchor == nil || back.Title.Anchor.Y != 12 {
		t.Fatalf("saved config did not round-trip: %+v", back)
	}
}

func TestPalettes(t *testing.T) {
	names := PaletteNames()
	if len(names) != 6 {
		t.Fatalf("expected 6 palettes, got %v", names)
	}
	p, err := Palette("Elegant_Blue")
	if err != nil {
		t.Fatalf("palette lookup should be case-insensitive: %v", err)
	}
	if p.Reading.Fill.Hex() != "#60A5FA" || p.Title != p.Read {
		t.Fatalf("unexpected palette: %+v", p)
	}
}

func TestResolveFont(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "STHeitiLight.ttc"), []byte("stub"), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}

	f, fellBack := ResolveFont("Missing.ttf", []string{dir})
	if !fellBack || f.Src != filepath.Join(dir, "STHeitiLight.ttc") || f.Name != "STHeitiLight" {
		t.Fatalf("expected fallback to STHeitiLight, got %+v (%v)", f, fellBack)
	}

	f, fellBack = ResolveFont("STHeitiLight.ttc", []string{dir})
	if fellBack || f.Name != "STHeitiLight" {
		t.Fatalf("existing font should not fall back: %+v", f)
	}

	f, _ = ResolveFont("", []string{t.TempDir()})
	if f.Src != "builtin:regular" || f.Name != "regular" {
		t.Fatalf("empty search dirs should end at the builtin font, got %+v", f)
	}
}
