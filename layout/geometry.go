package layout

import (
	"fmt"
	"strings"
)

// Aspect 是画面比例预设。
type Aspect string

const (
	AspectLandscape     Aspect = "16:9"
	AspectPortrait      Aspect = "9:16"
	AspectSquare        Aspect = "1:1"
	AspectPortrait720p  Aspect = "9:16-720p"
	AspectLandscape720p Aspect = "16:9-720p"
)

// Resolution 返回预设对应的像素尺寸；未知比例按竖屏 1080x1920 处理。
func (a Aspect) Resolution() (int, int) {
	switch a {
	case AspectLandscape:
		return 1920, 1080
	case AspectPortrait:
		return 1080, 1920
	case AspectSquare:
		return 1080, 1080
	case AspectPortrait720p:
		return 720, 1280
	case AspectLandscape720p:
		return 1280, 720
	default:
		return 1080, 1920
	}
}

// ParseAspect 解析比例预设，空字符串视为 9:16。
func ParseAspect(s string) (Aspect, error) {
	switch a := Aspect(strings.TrimSpace(s)); a {
	case "":
		return AspectPortrait, nil
	case AspectLandscape, AspectPortrait, AspectSquare, AspectPortrait720p, AspectLandscape720p:
		return a, nil
	default:
		return "", fmt.Errorf("未知画面比例 %q", s)
	}
}

// Geometry 是一次生成任务的画面几何信息。
type Geometry struct {
	Width    int  `json:"width" yaml:"width"`
	Height   int  `json:"height" yaml:"height"`
	Portrait bool `json:"portrait" yaml:"portrait"`
}

// GeometryFor 由比例预设推导几何信息。
func GeometryFor(a Aspect) Geometry {
	w, h := a.Resolution()
	return NewGeometry(w, h)
}

// NewGeometry 由像素尺寸构造几何信息，高大于宽即为竖屏。
func NewGeometry(width, height int) Geometry {
	return Geometry{Width: width, Height: height, Portrait: height > width}
}

// Validate 检查画面尺寸。
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return &GeometryMismatchError{Region: "frame", Detail: fmt.Sprintf("画面尺寸 %dx%d 非法", g.Width, g.Height)}
	}
	return nil
}

// validateRegion 在排版前拒绝倒置的精确边界。
func validateRegion(name string, r *Region) error {
	if r == nil {
		return nil
	}
	if r.Left >= r.Right {
		return &GeometryMismatchError{Region: name, Detail: fmt.Sprintf("left(%.2f%%) >= right(%.2f%%)", r.Left, r.Right)}
	}
	if r.Bottom != 0 && r.Top >= r.Bottom {
		return &GeometryMismatchError{Region: name, Detail: fmt.Sprintf("top(%.2f%%) >= bottom(%.2f%%)", r.Top, r.Bottom)}
	}
	return nil
}
