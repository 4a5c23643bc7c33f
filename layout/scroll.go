package layout

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
)

// 竖简（古书卷轴）布局：字从上到下填满一列，列从右向左排列。

// scrollFrame 是某一方向下的默认边界（百分比）与列参数。
type scrollFrame struct {
	left, right, top Percent
	columns          int
	columnSpacing    Multiplier
}

var (
	portraitScroll  = scrollFrame{left: 10, right: 70, top: 12, columns: 6, columnSpacing: 1.5}
	landscapeScroll = scrollFrame{left: 18, right: 80, top: 12, columns: 15, columnSpacing: 0.75}
)

// ScrollGrid 是竖简排版的网格，坐标均为整数像素。
type ScrollGrid struct {
	Left          float64 `json:"left"`
	Right         float64 `json:"right"`
	Top           float64 `json:"top"`
	Columns       int     `json:"columns"`
	Rows          int     `json:"rows"`
	CharSpacing   float64 `json:"charSpacing"`
	ColumnSpacing float64 `json:"columnSpacing"`
}

// NewScrollGrid 根据画面方向、字号、偏移量与精确边界推导网格。
// 精确边界优先于偏移量；纵向范围默认是画面高度的 76%。
func NewScrollGrid(g Geometry, s Style) (ScrollGrid, error) {
	if err := g.Validate(); err != nil {
		return ScrollGrid{}, err
	}
	if s.FontSize <= 0 {
		return ScrollGrid{}, fmt.Errorf("layout: 字号必须为正数，当前 %g", s.FontSize)
	}
	frame := landscapeScroll
	if g.Portrait {
		frame = portraitScroll
	}

	left := frame.left + Percent(s.Offsets.SubtitleX)
	right := frame.right + Percent(s.Offsets.SubtitleX)
	top := frame.top + Percent(s.Offsets.SubtitleY)
	extent := ScrollVerticalExtent
	if r := s.Region; r != nil {
		if err := validateRegion("subtitle", r); err != nil {
			return ScrollGrid{}, err
		}
		left, right, top = Percent(r.Left), Percent(r.Right), Percent(r.Top)
		if r.Bottom != 0 {
			extent = Percent(r.Bottom - r.Top)
		}
	}

	grid := ScrollGrid{
		Left:          left.Px(g.Width),
		Right:         right.Px(g.Width),
		Top:           top.Px(g.Height),
		Columns:       frame.columns,
		CharSpacing:   math.Floor(ScrollCharSpacing.Apply(s.FontSize)),
		ColumnSpacing: math.Floor(frame.columnSpacing.Apply(s.FontSize)),
	}
	if grid.Left >= grid.Right {
		return ScrollGrid{}, &GeometryMismatchError{
			Region: "subtitle",
			Detail: fmt.Sprintf("left(%.0fpx) >= right(%.0fpx)", grid.Left, grid.Right),
		}
	}
	if grid.CharSpacing <= 0 {
		grid.CharSpacing = ScrollCharSpacing.Apply(s.FontSize)
	}
	grid.Rows = int(extent.Of(g.Height) / grid.CharSpacing)
	if grid.Rows < 1 {
		return ScrollGrid{}, &GeometryMismatchError{
			Region: "subtitle",
			Detail: fmt.Sprintf("纵向范围不足以容纳一个字（字号 %gpx）", s.FontSize),
		}
	}
	return grid, nil
}

// Capacity 是一屏可容纳的字数。
func (g ScrollGrid) Capacity() int { return g.Columns * g.Rows }

// ColumnX 由右边界向左边界线性插值，保证首列与末列恰好落在边界上。
func (g ScrollGrid) ColumnX(c int) float64 {
	if g.Columns <= 1 {
		return g.Right
	}
	return g.Right - math.Floor((g.Right-g.Left)*float64(c)/float64(g.Columns-1))
}

// RowY 返回第 r 行的纵坐标。
func (g ScrollGrid) RowY(r int) float64 { return g.Top + float64(r)*g.CharSpacing }

// WithColumns 返回列数不同但边界相同的网格，用于容纳超长单句。
func (g ScrollGrid) WithColumns(n int) ScrollGrid {
	g.Columns = n
	return g
}

// PlacedChar 是放入网格的一个字符单元。
type PlacedChar struct {
	Unit   CharacterUnit `json:"unit"`
	Column int           `json:"column"`
	Row    int           `json:"row"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

// PackColumns 按流顺序先填满第 0 列（最右）再填下一列；超出一屏容量的部分被截断，
// 返回被截断的单元数。分隔单元也占一个位置。
func PackColumns(units []CharacterUnit, g ScrollGrid) ([]PlacedChar, int) {
	capacity := g.Capacity()
	n := len(units)
	dropped := 0
	if n > capacity {
		dropped = n - capacity
		n = capacity
	}
	placed := make([]PlacedChar, 0, n)
	for i := 0; i < n; i++ {
		col, row := i/g.Rows, i%g.Rows
		placed = append(placed, PlacedChar{
			Unit:   units[i],
			Column: col,
			Row:    row,
			X:      g.ColumnX(col),
			Y:      g.RowY(row),
		})
	}
	return placed, dropped
}

// Screen 是竖简的一屏：若干完整字幕句。
type Screen struct {
	First   int      `json:"first"` // 第一句在全部字幕中的序号
	Phrases []Phrase `json:"phrases"`
	Chars   int      `json:"chars"` // 含分隔单元
}

// Overflow 判断该屏是否超出名义容量（仅当单句本身就超长时发生）。
func (s Screen) Overflow(capacity int) bool { return s.Chars > capacity }

// ChunkScreens 以整句为边界按容量分屏，句间的分隔单元计入容量。
// 单句超过容量时独占一屏并允许超出容量，而不是把一句拆到两屏。
func ChunkScreens(phrases []Phrase, capacity int) []Screen {
	var screens []Screen
	var cur *Screen
	for i, p := range phrases {
		n := CharacterCount(strings.TrimSpace(p.Text))
		if cur != nil && cur.Chars+1+n > capacity {
			screens = append(screens, *cur)
			cur = nil
		}
		if cur == nil {
			cur = &Screen{First: i, Phrases: []Phrase{p}, Chars: n}
			continue
		}
		cur.Phrases = append(cur.Phrases, p)
		cur.Chars += 1 + n
	}
	if cur != nil {
		screens = append(screens, *cur)
	}
	return screens
}

// screenWindows 计算每屏的可见区间：第一屏从 0 开始，之后每屏从首句开始，
// 到下一屏首句开始（或视频结束）为止。
func screenWindows(screens []Screen, duration float64) []Window {
	out := make([]Window, len(screens))
	for i, s := range screens {
		start := 0.0
		if i > 0 {
			start = s.Phrases[0].Start
		}
		end := duration
		if i+1 < len(screens) {
			end = screens[i+1].Phrases[0].Start
		}
		out[i] = Window{Start: start, End: end}
	}
	return out
}

func layoutScroll(c *buildContext) ([]Fragment, error) {
	grid, err := NewScrollGrid(c.geometry, c.style)
	if err != nil {
		return nil, err
	}
	screens := ChunkScreens(c.phrases, grid.Capacity())
	windows := screenWindows(screens, c.duration)

	// 各屏之间互不依赖，可以并行计算；结果按屏序拼接。
	results := make([][]Fragment, len(screens))
	var g errgroup.Group
	if c.workers > 0 {
		g.SetLimit(c.workers)
	}
	for i := range screens {
		g.Go(func() error {
			results[i] = scrollScreen(screens[i], windows[i], grid, c.style)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Fragment
	for _, frags := range results {
		out = append(out, frags...)
	}
	return out, nil
}

func scrollScreen(s Screen, window Window, grid ScrollGrid, style Style) []Fragment {
	units := Flatten(s.Phrases)
	if s.Overflow(grid.Capacity()) {
		grid = grid.WithColumns((len(units) + grid.Rows - 1) / grid.Rows)
	}
	placed, _ := PackColumns(units, grid)
	out := make([]Fragment, 0, len(placed)*3)
	for _, pc := range placed {
		if pc.Unit.Separator {
			continue
		}
		out = append(out, charFragments(pc, window, grid, style)...)
	}
	return out
}

// charFragments 为一个字输出未读/正在读/已读三个片段，空区间的片段不输出。
func charFragments(pc PlacedChar, screen Window, grid ScrollGrid, style Style) []Fragment {
	base := Fragment{
		Kind:        KindSubtitle,
		Text:        pc.Unit.Char,
		X:           pc.X,
		Y:           pc.Y,
		Width:       style.FontSize,
		Height:      style.FontSize,
		LineHeight:  grid.CharSpacing,
		FontSize:    style.FontSize,
		StrokeWidth: style.StrokeWidth,
	}
	states := []struct {
		state  CharState
		colors StateColors
		win    Window
		scale  Multiplier
	}{
		{StateUnread, style.Palette.Unread, Window{Start: screen.Start, End: pc.Unit.Start}, 1},
		{StateReading, style.Palette.Reading, Window{Start: pc.Unit.Start, End: pc.Unit.End}, ReadingScale},
		{StateRead, style.Palette.Read, Window{Start: pc.Unit.End, End: screen.End}, 1},
	}
	out := make([]Fragment, 0, 3)
	for _, st := range states {
		if st.win.Empty() {
			continue
		}
		f := base
		f.State = st.state
		f.Fill = st.colors.Fill
		f.Stroke = st.colors.Stroke
		f.FontSize = st.scale.Apply(style.FontSize)
		f.From, f.Until = st.win.Start, st.win.End
		out = append(out, f)
	}
	return out
}
