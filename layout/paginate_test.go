package layout

import (
	"strings"
	"testing"
)

// TestPaginatorResetBoundary maxLines=3 时第 4 句追加后翻页，缓冲区只剩第 4 句。
func TestPaginatorResetBoundary(t *testing.T) {
	phrases := []Phrase{
		{Start: 0, End: 1, Text: "1"},
		{Start: 1, End: 2, Text: "2"},
		{Start: 2, End: 3, Text: "3"},
		{Start: 3, End: 4, Text: "4"},
		{Start: 4, End: 5, Text: "5"},
	}
	steps := Paginate(phrases, 3, 6)
	resets := 0
	for i, st := range steps {
		if st.Reset {
			resets++
			if i != 3 {
				t.Fatalf("应在第 4 句翻页，实际第 %d 句", i+1)
			}
		}
	}
	if resets != 1 {
		t.Fatalf("应恰好翻页一次，实际 %d", resets)
	}
	if len(steps[3].Lines) != 1 || steps[3].Lines[0].Text != "4" {
		t.Fatalf("翻页后缓冲区应只剩第 4 句: %+v", steps[3].Lines)
	}
	if len(steps[4].Lines) != 2 || steps[2].Lines[2].NextStart != 3 {
		t.Fatalf("缓冲区内容错误: %+v", steps)
	}
	if steps[4].Window != (Window{Start: 4, End: 6}) {
		t.Fatalf("最后一步窗口应到视频结束: %+v", steps[4].Window)
	}
}

func TestPaginatorPush(t *testing.T) {
	p := NewPaginator(0)
	if p.MaxLines() != 1 {
		t.Fatalf("行数上限至少为 1")
	}
	if p.Push(PageLine{Text: "a"}) {
		t.Fatalf("第一行不应翻页")
	}
	if !p.Push(PageLine{Text: "b"}) || len(p.Lines()) != 1 || p.Resets() != 1 {
		t.Fatalf("超过上限应翻页")
	}
}

func TestMaxLinesPerScreen(t *testing.T) {
	// floor(0.6×1920 / 60) = 19
	if n := MaxLinesPerScreen(GeometryFor(AspectPortrait), 40); n != 19 {
		t.Fatalf("期望 19 行，实际 %d", n)
	}
	if n := MaxLinesPerScreen(GeometryFor(AspectLandscape), 1000); n != 1 {
		t.Fatalf("至少 1 行，实际 %d", n)
	}
}

// TestPaginatorCountsRows 折行后的句子按视觉行计入上限。
func TestPaginatorCountsRows(t *testing.T) {
	p := NewPaginator(5)
	if p.Push(PageLine{Phrase: 0, Rows: 2}) || p.Push(PageLine{Phrase: 1, Rows: 3}) {
		t.Fatalf("5 行以内不应翻页")
	}
	if p.Rows() != 5 {
		t.Fatalf("已占用 5 行，实际 %d", p.Rows())
	}
	if !p.Push(PageLine{Phrase: 2}) || p.Rows() != 1 {
		t.Fatalf("第 6 行应翻页: rows=%d", p.Rows())
	}
	// 单独一句超过上限时先清屏，不会无限翻页
	if !p.Push(PageLine{Phrase: 3, Rows: 9}) || len(p.Lines()) != 1 {
		t.Fatalf("超长句应独占一页: %+v", p.Lines())
	}
	if !p.Push(PageLine{Phrase: 4}) || p.Resets() != 3 {
		t.Fatalf("超长句之后应翻页，翻页次数 %d", p.Resets())
	}
}

func TestPaginateRowsDefaultsToOne(t *testing.T) {
	phrases := []Phrase{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 2, End: 3, Text: "c"},
	}
	steps := PaginateRows(phrases, []int{2}, 3, 3)
	if steps[1].Reset || !steps[2].Reset {
		t.Fatalf("2+1 行不翻页，2+1+1 行应翻页: %+v", steps)
	}
	if steps[0].Lines[0].Rows != 2 || steps[2].Lines[0].Rows != 0 {
		t.Fatalf("行数记录错误: %+v", steps)
	}
}

// TestBookPagesStayInsideFrame 16:9、字号 60 下每句折成两行，整页必须留在可用高度内且互不重叠。
func TestBookPagesStayInsideFrame(t *testing.T) {
	geo := GeometryFor(AspectLandscape)
	style := testStyle()
	style.FontSize = 60
	var phrases []Phrase
	for i := 0; i < 7; i++ {
		phrases = append(phrases, Phrase{Start: float64(i), End: float64(i) + 1, Text: strings.Repeat("字", 40)})
	}
	plan, err := Build(phrases, "", ThemeModernBook, geo, style, BuildOptions{Measurer: &stubMeasurer{}})
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	// 宽 1536 可放 25 字，每句 2 行；行高 90，每页 7 行，即 3 句一页
	limit := BookOriginY.Of(geo.Height) + BookUsableHeight.Of(geo.Height)
	for _, f := range plan.Fragments {
		if f.Y+f.Height > limit+1e-6 || f.Y+f.Height > float64(geo.Height) {
			t.Fatalf("片段越界: y=%g h=%g limit=%g", f.Y, f.Height, limit)
		}
		if !eq(f.Height, 180) {
			t.Fatalf("每句应占 2 行: h=%g", f.Height)
		}
	}
	for ts := 0.5; ts < 7; ts++ {
		active := plan.ActiveAt(ts)
		if len(active) > 3 {
			t.Fatalf("t=%g 时一页最多 3 句，实际 %d", ts, len(active))
		}
		for i := 1; i < len(active); i++ {
			if active[i].Y < active[i-1].Y+active[i-1].Height-1e-6 {
				t.Fatalf("t=%g 第 %d 句与上一句重叠", ts, i)
			}
		}
	}
}
