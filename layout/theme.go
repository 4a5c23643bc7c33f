package layout

import (
	"fmt"
	"strings"
)

// Theme 是封闭的主题枚举。新增主题需要同时在 layoutSubtitles 与 layoutTitle 中补充分支。
type Theme int

const (
	ThemeModernBook Theme = iota
	ThemeCinema
	ThemeAncientScroll
	ThemeMinimal
)

var themeNames = [...]string{
	ThemeModernBook:    "modern_book",
	ThemeCinema:        "cinema",
	ThemeAncientScroll: "ancient_scroll",
	ThemeMinimal:       "minimal",
}

// Themes 按声明顺序列出全部主题。
func Themes() []Theme {
	return []Theme{ThemeModernBook, ThemeCinema, ThemeAncientScroll, ThemeMinimal}
}

func (t Theme) String() string {
	if t >= 0 && int(t) < len(themeNames) {
		return themeNames[t]
	}
	return fmt.Sprintf("Theme(%d)", int(t))
}

// Valid 判断是否为已知主题。
func (t Theme) Valid() bool { return t >= 0 && int(t) < len(themeNames) }

// ParseTheme 解析主题名称，空字符串视为 modern_book。
func ParseTheme(s string) (Theme, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return ThemeModernBook, nil
	}
	for i, n := range themeNames {
		if n == name {
			return Theme(i), nil
		}
	}
	return 0, fmt.Errorf("未知主题 %q", s)
}

// MarshalText 实现 encoding.TextMarshaler。
func (t Theme) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("未知主题 %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (t *Theme) UnmarshalText(b []byte) error {
	v, err := ParseTheme(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// layoutSubtitles 按主题选择字幕策略。
func layoutSubtitles(c *buildContext) ([]Fragment, error) {
	switch c.theme {
	case ThemeModernBook:
		return layoutBookPages(c)
	case ThemeAncientScroll:
		return layoutScroll(c)
	case ThemeCinema, ThemeMinimal:
		return layoutCaptions(c)
	default:
		return nil, fmt.Errorf("layout: 未处理的主题 %s", c.theme)
	}
}

// layoutTitle 按主题选择标题策略；标题为空时不输出。
func layoutTitle(c *buildContext) ([]Fragment, error) {
	if strings.TrimSpace(c.title) == "" {
		return nil, nil
	}
	switch c.theme {
	case ThemeModernBook:
		return bookTitle(c)
	case ThemeCinema:
		return cinemaTitle(c)
	case ThemeAncientScroll:
		return scrollTitle(c)
	case ThemeMinimal:
		return minimalTitle(c)
	default:
		return nil, fmt.Errorf("layout: 未处理的主题 %s", c.theme)
	}
}
