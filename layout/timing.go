package layout

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// SeparatorChar 是句与句之间插入的分隔单元的文本，只占位不渲染。
const SeparatorChar = " "

// Window 是一个半开时间区间 [Start, End)。
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Empty 判断区间是否不含任何时刻。
func (w Window) Empty() bool { return w.End <= w.Start }

// CharacterUnit 是展开后的字符流中的一个单元。
type CharacterUnit struct {
	Char      string  `json:"char"`
	Index     int     `json:"index"`  // 在字符流中的全局序号
	Phrase    int     `json:"phrase"` // 来源字幕句序号
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Separator bool    `json:"separator,omitempty"`
}

// SplitCharacters 以 NFC 规范化后的字素簇为单位拆分文本，
// 这样组合附加符号和 emoji 序列不会被拆成多个字。
func SplitCharacters(text string) []string {
	text = norm.NFC.String(text)
	if text == "" {
		return nil
	}
	out := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// CharacterCount 返回 SplitCharacters 的长度。
func CharacterCount(text string) int {
	return uniseg.GraphemeClusterCount(norm.NFC.String(text))
}

// CharacterWindows 把字幕句的 [start, end) 均分给每个字。
// 最后一个字的结束时间对齐到 end；空文本返回 nil（零时长，不渲染）。
func CharacterWindows(p Phrase) []Window {
	n := CharacterCount(p.Text)
	if n == 0 {
		return nil
	}
	d := (p.End - p.Start) / float64(n)
	out := make([]Window, n)
	for i := range out {
		start := p.Start + float64(i)*d
		out[i] = Window{Start: start, End: start + d}
	}
	out[n-1].End = p.End
	return out
}

// Flatten 把多句字幕展开为字符流，相邻两句之间插入一个零时长分隔单元 (end_k, end_k)。
func Flatten(phrases []Phrase) []CharacterUnit {
	var units []CharacterUnit
	for k, p := range phrases {
		text := strings.TrimSpace(p.Text)
		if k > 0 {
			prev := phrases[k-1]
			units = append(units, CharacterUnit{
				Char:      SeparatorChar,
				Index:     len(units),
				Phrase:    k - 1,
				Start:     prev.End,
				End:       prev.End,
				Separator: true,
			})
		}
		chars := SplitCharacters(text)
		windows := CharacterWindows(Phrase{Start: p.Start, End: p.End, Text: text})
		for i, ch := range chars {
			units = append(units, CharacterUnit{
				Char:   ch,
				Index:  len(units),
				Phrase: k,
				Start:  windows[i].Start,
				End:    windows[i].End,
			})
		}
	}
	return units
}

// LineWindows 计算段落式显示的时间窗口：每一行从本句开始显示到下一句开始，
// 最后一句显示到视频结束。
func LineWindows(phrases []Phrase, duration float64) []Window {
	out := make([]Window, len(phrases))
	for i, p := range phrases {
		next := duration
		if i+1 < len(phrases) {
			next = phrases[i+1].Start
		}
		out[i] = Window{Start: p.Start, End: next}
	}
	return out
}
