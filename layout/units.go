package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines the percent/pixel helpers shared by all themes.
// Config values are percentages of the frame; layout works in pixels.

// Percent is a fraction of a frame dimension expressed as 0..100.
type Percent float64

// Of resolves the percentage against a pixel extent.
func (p Percent) Of(extent int) float64 { return float64(p) / 100.0 * float64(extent) }

// Px resolves the percentage and truncates to a whole pixel, matching how
// boundaries are snapped before interpolation.
func (p Percent) Px(extent int) float64 { return math.Floor(p.Of(extent)) }

// Fraction returns the percentage as 0..1.
func (p Percent) Fraction() float64 { return float64(p) / 100.0 }

// ParsePercent parses "12", "12%" or "0.12x" (a fraction).
func ParsePercent(value string) (Percent, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, nil
	}
	scale := 1.0
	switch {
	case strings.HasSuffix(v, "%"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	case strings.HasSuffix(v, "x"):
		v = strings.TrimSpace(strings.TrimSuffix(v, "x"))
		scale = 100
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("无效百分比 %q: %w", value, err)
	}
	return Percent(f * scale), nil
}

// Multiplier scales a base size, e.g. the title font relative to the subtitle font.
type Multiplier float64

// Apply returns base × m.
func (m Multiplier) Apply(base float64) float64 { return base * float64(m) }

// Layout constants shared by the layout engine and both rendering backends.
const (
	// 竖简：字间距倍数与纵向可用范围
	ScrollCharSpacing    Multiplier = 1.4
	ScrollVerticalExtent Percent    = 76

	// 正在读的字放大倍数
	ReadingScale Multiplier = 1.1

	// 现代图书：行高倍数、可用高度、起点与折行宽度
	BookLineSpacing  Multiplier = 1.5
	BookUsableHeight Percent    = 60
	BookOriginX      Percent    = 10
	BookOriginY      Percent    = 30
	BookWrapWidth    Percent    = 80

	// 横排字幕折行宽度与 custom 位置的安全边距（像素）
	CaptionWrapWidth Percent = 90
	CaptionMargin            = 10.0

	// 标题
	TitleWrapWidth         Percent    = 80
	TitleStrokeScale       Multiplier = 1.5
	ScrollTitleScale       Multiplier = 1.2
	ScrollTitleSpacing     Multiplier = 1.2
	ScrollTitleX           Percent    = 85
	BookTitleScale         Multiplier = 1.5
	BookTitleY             Percent    = 20
	CinemaTitleScale       Multiplier = 2.5
	CinemaTitleStrokeScale Multiplier = 2
	CinemaTitleSeconds                = 3.0
	MinimalTitleScale      Multiplier = 1.8
	MinimalTitleY          Percent    = 10
)
