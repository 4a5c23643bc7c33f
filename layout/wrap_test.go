package layout

import (
	"strings"
	"testing"
)

var body = FontResource{Name: "Body", Src: "builtin:regular"}

// TestWrapWords 按空格分词贪心折行。
func TestWrapWords(t *testing.T) {
	w, err := Wrap(&stubMeasurer{}, "the quick brown fox", 80, body, 20)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if w.Text != "the quick\nbrown fox" {
		t.Fatalf("折行结果错误: %q", w.Text)
	}
	if !eq(w.Height, 2*w.LineHeight) || !eq(w.LineHeight, 24) {
		t.Fatalf("高度应为 2×行高: h=%g lh=%g", w.Height, w.LineHeight)
	}
	if w.CharFallback {
		t.Fatalf("有空格的英文不应回退到逐字折行")
	}
}

// TestWrapCJKFallback 没有空格的中文回退为逐字折行，每行不超过上限。
func TestWrapCJKFallback(t *testing.T) {
	m := &stubMeasurer{}
	w, err := Wrap(m, "春天的花海如诗如画", 60, body, 20)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if !w.CharFallback {
		t.Fatalf("应走逐字折行分支")
	}
	if len(w.Lines) != 3 {
		t.Fatalf("应折成 3 行，实际 %q", w.Lines)
	}
	for _, ln := range w.Lines {
		lw, _, _ := m.Measure(ln, body, 20)
		if lw > 60 {
			t.Fatalf("行 %q 宽度 %g 超过 60", ln, lw)
		}
	}
}

// TestWrapIdempotent 对折行结果再次折行不应改变断行。
func TestWrapIdempotent(t *testing.T) {
	m := &stubMeasurer{}
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"春天的花海如诗如画，夏天的海浪拍打礁石",
		"mixed 中英文 text with 很长很长很长的词",
	}
	for _, in := range inputs {
		first, err := Wrap(m, in, 100, body, 20)
		if err != nil {
			t.Fatalf("折行失败: %v", err)
		}
		second, err := Wrap(m, first.Text, 100, body, 20)
		if err != nil {
			t.Fatalf("二次折行失败: %v", err)
		}
		if first.Text != second.Text {
			t.Fatalf("折行不幂等:\n%q\n%q", first.Text, second.Text)
		}
	}
}

func TestWrapEdgeCases(t *testing.T) {
	w, err := Wrap(nil, "", 10, body, 20)
	if err != nil || len(w.Lines) != 0 || w.Height != 0 {
		t.Fatalf("空文本应返回零值: %+v %v", w, err)
	}
	if _, err := Wrap(nil, "x", 10, body, 20); err == nil {
		t.Fatalf("缺少 Measurer 应报错")
	}
	// 上限 <= 0 表示不限宽
	w, err = Wrap(&stubMeasurer{}, strings.Repeat("word ", 50), 0, body, 20)
	if err != nil || len(w.Lines) != 1 {
		t.Fatalf("不限宽时应为单行: %d %v", len(w.Lines), err)
	}
	// 单字超宽时仍独占一行
	w, err = Wrap(&stubMeasurer{}, "春天", 5, body, 20)
	if err != nil || len(w.Lines) != 2 {
		t.Fatalf("单字超宽应各占一行: %q %v", w.Lines, err)
	}
}
