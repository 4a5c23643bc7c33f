package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/scrollsub/fonts"
	"github.com/ByLCY/scrollsub/layout"
)

// FontFallbacks 是字体回退链，最后一项为内置字体，保证总能得到可用字体。
var FontFallbacks = []string{
	"LXGWWenKai-Regular.ttf",
	"STHeitiMedium.ttc",
	"MicrosoftYaHeiNormal.ttc",
	"STHeitiLight.ttc",
	"builtin:regular",
}

// ResolveFont 依次尝试 name 与回退链，在 dirs 中查找第一个存在的字体文件。
// 第二个返回值表示是否使用了回退字体。
func ResolveFont(name string, dirs []string) (layout.FontResource, bool) {
	candidates := FontFallbacks
	if name != "" {
		candidates = append([]string{name}, FontFallbacks...)
	}
	for i, c := range candidates {
		if path, ok := locateFont(c, dirs); ok {
			return layout.FontResource{Name: fontName(c), Src: path}, name != "" && i > 0
		}
	}
	// 回退链以内置字体结尾，不会走到这里
	return layout.FontResource{Name: "regular", Src: "builtin:regular"}, true
}

func locateFont(src string, dirs []string) (string, bool) {
	if fonts.IsBuiltin(src) {
		_, err := fonts.Load(src)
		return src, err == nil
	}
	if filepath.IsAbs(src) {
		return src, fileExists(src)
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, src)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func fontName(src string) string {
	if fonts.IsBuiltin(src) {
		_, name, _ := strings.Cut(src, ":")
		return name
	}
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
