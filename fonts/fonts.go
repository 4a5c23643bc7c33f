package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体来自 Go 字体族，作为字体回退链的最后一环，也用于测试。
var builtin = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
	"italic":  goitalic.TTF,
	"mono":    gomono.TTF,
}

// IsBuiltin 判断 src 是否指向内置字体（builtin:<name> 或 embed:<name>）。
func IsBuiltin(src string) bool {
	_, ok := trimScheme(src)
	return ok
}

// Names 返回全部内置字体名称。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load 返回内置字体的字节数据，src 可写为 "builtin:regular"、"embed:bold" 或直接 "mono"。
func Load(src string) ([]byte, error) {
	name, ok := trimScheme(src)
	if !ok {
		name = strings.TrimSpace(src)
	}
	data, found := builtin[strings.ToLower(name)]
	if !found {
		return nil, fmt.Errorf("找不到内置字体 %s", src)
	}
	return data, nil
}

// Materialize 把内置字体写到 dir 下，返回文件路径；外部工具（如 ffmpeg）只能读取文件。
// 文件已存在时直接复用。
func Materialize(src, dir string) (string, error) {
	data, err := Load(src)
	if err != nil {
		return "", err
	}
	name, _ := trimScheme(src)
	if name == "" {
		name = strings.TrimSpace(src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建字体目录失败: %w", err)
	}
	path := filepath.Join(dir, "go-"+strings.ToLower(name)+".ttf")
	if st, err := os.Stat(path); err == nil && st.Size() == int64(len(data)) {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入内置字体 %s 失败: %w", path, err)
	}
	return path, nil
}

func trimScheme(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:", "embed:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return "", false
}
