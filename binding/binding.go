// Package binding 为标题模板填充 JSON 数据。
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ${path}、${path|默认值}
var exprPattern = regexp.MustCompile(`\$\{([^}|]*)(?:\|([^}]*))?\}`)

// Result 是一次模板替换的结果。
type Result struct {
	Text string
	// Missing 列出既无数据也无默认值、因此原样保留的路径。
	Missing []string
}

// Interpolate 将 text 中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时使用 | 之后的默认值，没有默认值则保留占位符。
func Interpolate(text string, data any) string {
	return Bind(text, data).Text
}

// Bind 与 Interpolate 相同，但同时报告未解析的路径。
func Bind(text string, data any) Result {
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		hasDefault := strings.Contains(match, "|")
		if path != "" {
			if val, ok := Lookup(data, path); ok {
				return format(val)
			}
		}
		if hasDefault {
			return groups[2]
		}
		missing = append(missing, path)
		return match
	})
	return Result{Text: out, Missing: missing}
}

// Decode 解析 JSON 数据，空串返回 nil。
func Decode(raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析绑定数据失败: %w", err)
	}
	return data, nil
}

// Lookup 按 a.b[0].c 形式的路径取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, current != nil
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON 数字统一为 float64，整数不带小数点
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, strings.TrimSpace(rest[1:end]))
			rest = rest[end+1:]
		}
	}
	return strings.TrimSpace(name), indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
