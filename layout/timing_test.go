package layout

import (
	"testing"
)

// TestFlattenSeparatorTiming 句间插入零时长分隔单元，时间取上一句的结束时间。
func TestFlattenSeparatorTiming(t *testing.T) {
	units := Flatten([]Phrase{{Start: 0, End: 2, Text: "AB"}, {Start: 2, End: 5, Text: "C"}})
	type want struct {
		char       string
		start, end float64
		sep        bool
	}
	expect := []want{
		{"A", 0, 1, false},
		{"B", 1, 2, false},
		{SeparatorChar, 2, 2, true},
		{"C", 2, 5, false},
	}
	if len(units) != len(expect) {
		t.Fatalf("单元数量错误: %d", len(units))
	}
	for i, w := range expect {
		u := units[i]
		if u.Char != w.char || !eq(u.Start, w.start) || !eq(u.End, w.end) || u.Separator != w.sep || u.Index != i {
			t.Fatalf("第 %d 个单元错误: %+v", i, u)
		}
	}
	if units[2].Phrase != 0 || units[3].Phrase != 1 {
		t.Fatalf("单元来源句序号错误: %+v", units)
	}
}

// TestCharacterWindowsPartition 每句的逐字区间首尾相接且恰好覆盖 [start, end)。
func TestCharacterWindowsPartition(t *testing.T) {
	phrases := []Phrase{
		{Start: 0.3, End: 2.9, Text: "春天的花海如诗如画"},
		{Start: 5, End: 5.7, Text: "abc"},
		{Start: 1, End: 4, Text: "一"},
	}
	for _, p := range phrases {
		ws := CharacterWindows(p)
		if len(ws) != CharacterCount(p.Text) {
			t.Fatalf("%q 区间数量错误", p.Text)
		}
		if ws[0].Start != p.Start || ws[len(ws)-1].End != p.End {
			t.Fatalf("%q 区间未覆盖整句: %+v", p.Text, ws)
		}
		for i := 1; i < len(ws); i++ {
			if !eq(ws[i].Start, ws[i-1].End) {
				t.Fatalf("%q 第 %d 个区间不连续", p.Text, i)
			}
		}
	}
	if CharacterWindows(Phrase{Start: 0, End: 1}) != nil {
		t.Fatalf("空文本应返回 nil")
	}
}

// TestSplitCharactersGraphemes 组合字符与 emoji 序列按一个字计算。
func TestSplitCharactersGraphemes(t *testing.T) {
	// e + 组合重音，NFC 后为 é
	chars := SplitCharacters("cafe\u0301")
	if len(chars) != 4 || chars[3] != "é" {
		t.Fatalf("组合字符拆分错误: %q", chars)
	}
	if n := CharacterCount("👨‍👩‍👧好"); n != 2 {
		t.Fatalf("emoji 序列应计为 1 个字，实际总数 %d", n)
	}
}

func TestLineWindows(t *testing.T) {
	ws := LineWindows([]Phrase{{Start: 0, End: 1}, {Start: 1.5, End: 2}, {Start: 3, End: 4}}, 10)
	want := []Window{{0, 1.5}, {1.5, 3}, {3, 10}}
	for i := range want {
		if ws[i] != want[i] {
			t.Fatalf("第 %d 行窗口错误: %+v", i, ws[i])
		}
	}
}
