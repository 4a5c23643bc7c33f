package layout

import (
	"errors"
	"math"
	"strings"
	"unicode"
)

var errNoMeasurer = errors.New("layout: 缺少测量后端 Measurer")

// Wrapped 是折行结果。
type Wrapped struct {
	Text       string   `json:"text"`
	Lines      []string `json:"lines"`
	Width      float64  `json:"width"` // 最宽一行
	Height     float64  `json:"height"`
	LineHeight float64  `json:"lineHeight"`
	// CharFallback 表示至少一段因单词超宽而改用逐字折行。
	CharFallback bool `json:"charFallback"`
}

// Wrap 使用贪心算法把 text 折成不超过 maxWidth 像素的多行。
// 先尝试按空格分词；若任何单词本身就超宽（例如没有空格的中文），则改为逐字折行。
// 已有的换行符视为硬换行，因此对结果再次折行不会改变断行位置。
func Wrap(m Measurer, text string, maxWidth float64, font FontResource, size float64) (Wrapped, error) {
	if text == "" {
		return Wrapped{}, nil
	}
	if m == nil {
		return Wrapped{}, errNoMeasurer
	}
	w := &wrapper{m: m, font: font, size: size, limit: maxWidth}
	if maxWidth <= 0 {
		w.limit = math.MaxFloat64
	}

	var out Wrapped
	for _, para := range strings.Split(text, "\n") {
		lines, fallback, err := w.paragraph(para)
		if err != nil {
			return Wrapped{}, err
		}
		out.Lines = append(out.Lines, lines...)
		out.CharFallback = out.CharFallback || fallback
	}

	for _, ln := range out.Lines {
		lw, err := w.width(ln)
		if err != nil {
			return Wrapped{}, err
		}
		out.Width = math.Max(out.Width, lw)
	}
	out.Text = strings.Join(out.Lines, "\n")
	out.LineHeight = w.lineHeight
	out.Height = float64(len(out.Lines)) * w.lineHeight
	return out, nil
}

type wrapper struct {
	m          Measurer
	font       FontResource
	size       float64
	limit      float64
	lineHeight float64
}

func (w *wrapper) width(s string) (float64, error) {
	width, height, err := w.m.Measure(s, w.font, w.size)
	if err != nil {
		return 0, err
	}
	if height > w.lineHeight {
		w.lineHeight = height
	}
	return width, nil
}

func (w *wrapper) paragraph(p string) ([]string, bool, error) {
	whole, err := w.width(p)
	if err != nil {
		return nil, false, err
	}
	if whole <= w.limit {
		return []string{p}, false, nil
	}
	lines, ok, err := w.byWords(p)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return lines, false, nil
	}
	lines, err = w.byChars(p)
	return lines, true, err
}

// byWords 返回 ok=false 表示遇到单独超宽的单词，需要改用逐字折行。
func (w *wrapper) byWords(p string) ([]string, bool, error) {
	var lines []string
	current := ""
	for _, word := range strings.Fields(p) {
		if current != "" {
			cw, err := w.width(current + " " + word)
			if err != nil {
				return nil, false, err
			}
			if cw <= w.limit {
				current += " " + word
				continue
			}
			lines = append(lines, current)
			current = ""
		}
		ww, err := w.width(word)
		if err != nil {
			return nil, false, err
		}
		if ww > w.limit {
			return nil, false, nil
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines, true, nil
}

func (w *wrapper) byChars(p string) ([]string, error) {
	var lines []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimRightFunc(current.String(), unicode.IsSpace); s != "" {
			lines = append(lines, s)
		}
		current.Reset()
	}
	for _, g := range SplitCharacters(p) {
		if current.Len() == 0 && strings.TrimSpace(g) == "" {
			continue
		}
		if current.Len() > 0 {
			cw, err := w.width(current.String() + g)
			if err != nil {
				return nil, err
			}
			if cw > w.limit {
				flush()
				if strings.TrimSpace(g) == "" {
					continue
				}
			}
		}
		current.WriteString(g)
	}
	flush()
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines, nil
}
