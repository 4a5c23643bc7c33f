// Package config 加载渲染配置并解析为排版所需的几何与样式。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/scrollsub/layout"
)

// EnvPrefix 为环境变量前缀，例如 SCROLLSUB_SUBTITLE_FONT_SIZE=48。
const EnvPrefix = "SCROLLSUB"

// Config 对应配置文件（YAML/TOML/JSON）的结构。颜色使用 #RRGGBB 字符串，偏移量为百分比。
type Config struct {
	Theme    string  `mapstructure:"theme" yaml:"theme"`
	Aspect   string  `mapstructure:"aspect" yaml:"aspect"`
	Duration float64 `mapstructure:"duration" yaml:"duration,omitempty"`
	Workers  int     `mapstructure:"workers" yaml:"workers,omitempty"`
	// FontDirs 为查找字体文件的目录。
	FontDirs []string `mapstructure:"font_dirs" yaml:"font_dirs,omitempty"`

	Subtitle SubtitleConfig `mapstructure:"subtitle" yaml:"subtitle"`
	Title    TitleConfig    `mapstructure:"title" yaml:"title"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
}

type SubtitleConfig struct {
	Font           string  `mapstructure:"font" yaml:"font"`
	FontSize       float64 `mapstructure:"font_size" yaml:"font_size"`
	StrokeWidth    float64 `mapstructure:"stroke_width" yaml:"stroke_width"`
	TextColor      string  `mapstructure:"text_color" yaml:"text_color"`
	StrokeColor    string  `mapstructure:"stroke_color" yaml:"stroke_color"`
	Position       string  `mapstructure:"position" yaml:"position"`
	CustomPosition string  `mapstructure:"custom_position" yaml:"custom_position"`
	Palette        string  `mapstructure:"palette" yaml:"palette"`
	BookPrimary    string  `mapstructure:"book_primary" yaml:"book_primary"`
	BookSecondary  string  `mapstructure:"book_secondary" yaml:"book_secondary"`
	BookStroke     string  `mapstructure:"book_stroke" yaml:"book_stroke"`
	OffsetX        float64 `mapstructure:"offset_x" yaml:"offset_x,omitempty"`
	OffsetY        float64 `mapstructure:"offset_y" yaml:"offset_y,omitempty"`
	// Region 为精确边界，设置后优先于偏移量。
	Region *layout.Region `mapstructure:"region" yaml:"region,omitempty"`
}

type TitleConfig struct {
	// Text 可以包含 ${path|默认值} 占位符。
	Text    string         `mapstructure:"text" yaml:"text,omitempty"`
	OffsetX float64        `mapstructure:"offset_x" yaml:"offset_x,omitempty"`
	OffsetY float64        `mapstructure:"offset_y" yaml:"offset_y,omitempty"`
	Anchor  *layout.Anchor `mapstructure:"anchor" yaml:"anchor,omitempty"`
}

type RenderConfig struct {
	Background         string  `mapstructure:"background" yaml:"background"`
	StoryboardInterval float64 `mapstructure:"storyboard_interval" yaml:"storyboard_interval"`
	Keyframes          bool    `mapstructure:"keyframes" yaml:"keyframes,omitempty"`
	FFmpeg             string  `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	WorkDir            string  `mapstructure:"work_dir" yaml:"work_dir,omitempty"`
	Preset             string  `mapstructure:"preset" yaml:"preset,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", layout.ThemeModernBook.String())
	v.SetDefault("aspect", string(layout.AspectPortrait))
	v.SetDefault("duration", 0.0)
	v.SetDefault("workers", 0)
	v.SetDefault("font_dirs", []string{".", "fonts", "resource/fonts"})

	v.SetDefault("subtitle.font", FontFallbacks[0])
	v.SetDefault("subtitle.font_size", 60.0)
	v.SetDefault("subtitle.stroke_width", 1.5)
	v.SetDefault("subtitle.text_color", "#FFFFFF")
	v.SetDefault("subtitle.stroke_color", "#000000")
	v.SetDefault("subtitle.position", string(layout.PositionBottom20))
	v.SetDefault("subtitle.custom_position", "70%")
	v.SetDefault("subtitle.palette", DefaultPalette)
	v.SetDefault("subtitle.book_primary", "#000000")
	v.SetDefault("subtitle.book_secondary", "#666666")
	v.SetDefault("subtitle.book_stroke", "#FFFFFF")
	v.SetDefault("subtitle.offset_x", 0.0)
	v.SetDefault("subtitle.offset_y", 0.0)

	v.SetDefault("title.text", "")
	v.SetDefault("title.offset_x", 0.0)
	v.SetDefault("title.offset_y", 0.0)

	v.SetDefault("render.background", "#FFFFFF")
	v.SetDefault("render.storyboard_interval", 1.0)
	v.SetDefault("render.keyframes", false)
	v.SetDefault("render.ffmpeg", "ffmpeg")
	v.SetDefault("render.work_dir", "")
	v.SetDefault("render.preset", "")
}

// Default 返回只包含默认值的配置（同样会读取环境变量）。
func Default() (*Config, error) {
	return Load("")
}

// Load 读取配置文件；path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if path != "" {
		// 相对字体目录以配置文件所在目录为准
		base := filepath.Dir(path)
		for i, d := range c.FontDirs {
			if !filepath.IsAbs(d) {
				c.FontDirs[i] = filepath.Join(base, d)
			}
		}
	}
	return &c, nil
}

// Save 以 YAML 写出配置。
func Save(path string, c *Config) error {
	if c == nil {
		return fmt.Errorf("配置为空")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Resolved 是配置解析后的排版输入。
type Resolved struct {
	Theme    layout.Theme
	Aspect   layout.Aspect
	Geometry layout.Geometry
	Style    layout.Style
	// FontFallback 表示配置的字体不可用，已改用回退链中的字体。
	FontFallback bool
	Background   layout.Color
}

// Resolve 校验配置并换算为 layout 类型。
func (c *Config) Resolve() (*Resolved, error) {
	theme, err := layout.ParseTheme(c.Theme)
	if err != nil {
		return nil, err
	}
	aspect, err := layout.ParseAspect(c.Aspect)
	if err != nil {
		return nil, err
	}
	pos, err := layout.ParsePosition(c.Subtitle.Position)
	if err != nil {
		return nil, err
	}
	pal, err := Palette(c.Subtitle.Palette)
	if err != nil {
		return nil, err
	}
	if c.Subtitle.FontSize <= 0 {
		return nil, fmt.Errorf("字号必须大于 0，当前为 %g", c.Subtitle.FontSize)
	}
	if c.Subtitle.StrokeWidth < 0 {
		return nil, fmt.Errorf("描边宽度不能为负数，当前为 %g", c.Subtitle.StrokeWidth)
	}

	custom, err := layout.ParsePercent(c.Subtitle.CustomPosition)
	if err != nil {
		return nil, fmt.Errorf("subtitle.custom_position: %w", err)
	}

	var textColor, strokeColor, primary, secondary, bookStroke, background layout.Color
	for _, f := range []struct {
		key string
		val string
		dst *layout.Color
	}{
		{"subtitle.text_color", c.Subtitle.TextColor, &textColor},
		{"subtitle.stroke_color", c.Subtitle.StrokeColor, &strokeColor},
		{"subtitle.book_primary", c.Subtitle.BookPrimary, &primary},
		{"subtitle.book_secondary", c.Subtitle.BookSecondary, &secondary},
		{"subtitle.book_stroke", c.Subtitle.BookStroke, &bookStroke},
		{"render.background", c.Render.Background, &background},
	} {
		col, err := layout.ParseColor(f.val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = col
	}

	font, fellBack := ResolveFont(c.Subtitle.Font, c.FontDirs)
	return &Resolved{
		Theme:    theme,
		Aspect:   aspect,
		Geometry: layout.GeometryFor(aspect),
		Style: layout.Style{
			Font:           font,
			FontSize:       c.Subtitle.FontSize,
			StrokeWidth:    c.Subtitle.StrokeWidth,
			Palette:        pal,
			TextColor:      textColor,
			StrokeColor:    strokeColor,
			Position:       pos,
			CustomPosition: custom,
			BookPrimary:    primary,
			BookSecondary:  secondary,
			BookStroke:     bookStroke,
			Offsets: layout.Offsets{
				TitleX:    c.Title.OffsetX,
				TitleY:    c.Title.OffsetY,
				SubtitleX: c.Subtitle.OffsetX,
				SubtitleY: c.Subtitle.OffsetY,
			},
			Region:      c.Subtitle.Region,
			TitleAnchor: c.Title.Anchor,
		},
		FontFallback: fellBack,
		Background:   background,
	}, nil
}
