package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/scrollsub/layout"
)

// DefaultPalette 是未指定配色时使用的卷轴三态配色。
const DefaultPalette = "classic_gold"

func palette(name, unread, unreadStroke, reading, readingStroke, read, readStroke string) layout.Palette {
	return layout.Palette{
		Name:    name,
		Unread:  layout.StateColors{Fill: layout.MustColor(unread), Stroke: layout.MustColor(unreadStroke)},
		Reading: layout.StateColors{Fill: layout.MustColor(reading), Stroke: layout.MustColor(readingStroke)},
		Read:    layout.StateColors{Fill: layout.MustColor(read), Stroke: layout.MustColor(readStroke)},
		// 标题跟随已读颜色
		Title: layout.StateColors{Fill: layout.MustColor(read), Stroke: layout.MustColor(readStroke)},
	}
}

var palettes = map[string]layout.Palette{
	"classic_gold": palette("classic_gold", "#000000", "#8B4513", "#FFD700", "#8B4513", "#8B4513", "#FFD700"),
	"elegant_blue": palette("elegant_blue", "#1E3A8A", "#93C5FD", "#60A5FA", "#1E3A8A", "#E0F2FE", "#60A5FA"),
	"warm_sunset":  palette("warm_sunset", "#7C2D12", "#FED7AA", "#FB923C", "#7C2D12", "#FEF3C7", "#FB923C"),
	"fresh_green":  palette("fresh_green", "#14532D", "#BBF7D0", "#22C55E", "#14532D", "#DCFCE7", "#22C55E"),
	"purple_dream": palette("purple_dream", "#581C87", "#E9D5FF", "#C084FC", "#581C87", "#F3E8FF", "#C084FC"),
	"ink_wash":     palette("ink_wash", "#1F2937", "#D1D5DB", "#6B7280", "#1F2937", "#F3F4F6", "#6B7280"),
}

// Palette 按名称查找配色，空名称返回默认配色。
func Palette(name string) (layout.Palette, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultPalette
	}
	p, ok := palettes[key]
	if !ok {
		return layout.Palette{}, fmt.Errorf("未知配色 %q，可选: %s", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// PaletteNames 返回全部配色名称（按字母序）。
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
