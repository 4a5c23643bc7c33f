package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义排版输入（字幕句、几何、样式）与输出（Fragment、Plan），供布局计算、渲染后端与调试输出共用。

// Phrase 是一条带时间戳的字幕（秒）。
type Phrase struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Text  string  `json:"text" yaml:"text"`
}

// Duration 返回字幕句的持续时间。
func (p Phrase) Duration() float64 { return p.End - p.Start }

// FontResource 描述字体资源，src 可以是文件路径、builtin:* 或 embed:* 形式。
type FontResource struct {
	Name string `json:"name" yaml:"name"`
	Src  string `json:"src" yaml:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r" yaml:"r"`
	G int `json:"g" yaml:"g"`
	B int `json:"b" yaml:"b"`
}

// Hex 以 #RRGGBB 形式输出颜色。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

func (c Color) String() string { return c.Hex() }

// ParseColor 解析 #RGB / #RRGGBB（# 可省略）。
func ParseColor(s string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(v) {
	case 3:
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	case 6:
	default:
		return Color{}, fmt.Errorf("无效颜色 %q", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效颜色 %q: %w", s, err)
	}
	return Color{R: int(n >> 16 & 0xFF), G: int(n >> 8 & 0xFF), B: int(n & 0xFF)}, nil
}

// MustColor 用于常量调色板，解析失败时 panic。
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// StateColors 是某一状态下的填充色与描边色。
type StateColors struct {
	Fill   Color `json:"fill" yaml:"fill"`
	Stroke Color `json:"stroke" yaml:"stroke"`
}

// Palette 描述古书卷轴主题的三态颜色与标题颜色。
type Palette struct {
	Name    string      `json:"name" yaml:"name"`
	Unread  StateColors `json:"unread" yaml:"unread"`
	Reading StateColors `json:"reading" yaml:"reading"`
	Read    StateColors `json:"read" yaml:"read"`
	Title   StateColors `json:"title" yaml:"title"`
}

// Position 是横排字幕的纵向位置策略。
type Position string

const (
	PositionTop      Position = "top"
	PositionCenter   Position = "center"
	PositionBottom   Position = "bottom"
	PositionBottom20 Position = "bottom_20"
	PositionCustom   Position = "custom"
)

// ParsePosition 解析字幕位置，空字符串视为 bottom_20。
func ParsePosition(s string) (Position, error) {
	switch p := Position(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PositionBottom20, nil
	case PositionTop, PositionCenter, PositionBottom, PositionBottom20, PositionCustom:
		return p, nil
	default:
		return "", fmt.Errorf("未知字幕位置 %q", s)
	}
}

// Offsets 为标题与字幕的位置偏移，单位是画面尺寸的百分比。
type Offsets struct {
	TitleX    float64 `json:"titleX" yaml:"title_x"`
	TitleY    float64 `json:"titleY" yaml:"title_y"`
	SubtitleX float64 `json:"subtitleX" yaml:"subtitle_x"`
	SubtitleY float64 `json:"subtitleY" yaml:"subtitle_y"`
}

// Region 是精确边界（百分比）。Bottom 为 0 表示沿用默认的纵向范围。
type Region struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
}

// Anchor 是标题的精确锚点（百分比）。Y 为 0 表示保持垂直居中。
type Anchor struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y,omitempty" yaml:"y,omitempty"`
}

// Style 是已经完全解析的样式配置，所有偏移量均为百分比，由布局阶段换算为像素。
type Style struct {
	Font        FontResource `json:"font" yaml:"font"`
	FontSize    float64      `json:"fontSize" yaml:"font_size"`
	StrokeWidth float64      `json:"strokeWidth" yaml:"stroke_width"`

	Palette Palette `json:"palette" yaml:"palette"`

	// 横排字幕（cinema/minimal）
	TextColor      Color    `json:"textColor" yaml:"text_color"`
	StrokeColor    Color    `json:"strokeColor" yaml:"stroke_color"`
	Position       Position `json:"position" yaml:"position"`
	CustomPosition Percent  `json:"customPosition" yaml:"custom_position"`

	// 现代图书：当前行、已读行与描边
	BookPrimary   Color `json:"bookPrimary" yaml:"book_primary"`
	BookSecondary Color `json:"bookSecondary" yaml:"book_secondary"`
	BookStroke    Color `json:"bookStroke" yaml:"book_stroke"`

	Offsets     Offsets `json:"offsets" yaml:"offsets"`
	Region      *Region `json:"region,omitempty" yaml:"region,omitempty"`
	TitleAnchor *Anchor `json:"titleAnchor,omitempty" yaml:"title_anchor,omitempty"`
}

// FragmentKind 区分字幕与标题片段。
type FragmentKind int

const (
	KindSubtitle FragmentKind = iota
	KindTitle
)

func (k FragmentKind) String() string {
	if k == KindTitle {
		return "title"
	}
	return "subtitle"
}

// MarshalText 让调试输出使用可读名称。
func (k FragmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText 用于读回调试输出。
func (k *FragmentKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "subtitle":
		*k = KindSubtitle
	case "title":
		*k = KindTitle
	default:
		return fmt.Errorf("未知片段类型 %q", b)
	}
	return nil
}

// CharState 是逐字高亮的三种状态；横排字幕与标题为 StateNone。
type CharState int

const (
	StateNone CharState = iota
	StateUnread
	StateReading
	StateRead
)

func (s CharState) String() string {
	switch s {
	case StateUnread:
		return "unread"
	case StateReading:
		return "reading"
	case StateRead:
		return "read"
	default:
		return "none"
	}
}

// MarshalText 让调试输出使用可读名称。
func (s CharState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *CharState) UnmarshalText(b []byte) error {
	for _, v := range []CharState{StateNone, StateUnread, StateReading, StateRead} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("未知字符状态 %q", b)
}

// Align 是多行文本块内各行的水平对齐方式，零值为左对齐。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
)

// Fragment 是排版的输出单元：已定位、已定时、已定样式的一段文本。
// X/Y 为文本块左上角（像素）；Text 可能含有换行，逐行间距为 LineHeight。
// 可见区间为 [From, Until)。Fragment 创建后不再修改。
type Fragment struct {
	Kind        FragmentKind `json:"kind" yaml:"kind"`
	State       CharState    `json:"state" yaml:"state"`
	Text        string       `json:"text" yaml:"text"`
	Align       Align        `json:"align,omitempty" yaml:"align,omitempty"`
	X           float64      `json:"x" yaml:"x"`
	Y           float64      `json:"y" yaml:"y"`
	Width       float64      `json:"width" yaml:"width"`
	Height      float64      `json:"height" yaml:"height"`
	LineHeight  float64      `json:"lineHeight" yaml:"line_height"`
	FontSize    float64      `json:"fontSize" yaml:"font_size"`
	Fill        Color        `json:"fill" yaml:"fill"`
	Stroke      Color        `json:"stroke" yaml:"stroke"`
	StrokeWidth float64      `json:"strokeWidth" yaml:"stroke_width"`
	From        float64      `json:"from" yaml:"from"`
	Until       float64      `json:"until" yaml:"until"`
}

// Lines 按换行拆分文本。
func (f Fragment) Lines() []string { return strings.Split(f.Text, "\n") }

// VisibleAt 判断时刻 t 是否落在 [From, Until) 内。
func (f Fragment) VisibleAt(t float64) bool { return t >= f.From && t < f.Until }

// Plan 是交给渲染后端的完整排版结果。
type Plan struct {
	Width     int        `json:"width" yaml:"width"`
	Height    int        `json:"height" yaml:"height"`
	Duration  float64    `json:"duration" yaml:"duration"`
	Theme     Theme      `json:"theme" yaml:"theme"`
	Fragments []Fragment `json:"fragments" yaml:"fragments"`
}

// ActiveAt 返回在时刻 t 可见的片段，保持原有顺序。
func (p *Plan) ActiveAt(t float64) []Fragment {
	if p == nil {
		return nil
	}
	var out []Fragment
	for _, f := range p.Fragments {
		if f.VisibleAt(t) {
			out = append(out, f)
		}
	}
	return out
}

// Count 统计指定类型的片段数量。
func (p *Plan) Count(kind FragmentKind) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, f := range p.Fragments {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
