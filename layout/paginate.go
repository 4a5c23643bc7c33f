package layout

// PageLine 是翻页缓冲区中的一行（一条字幕句）。
// Rows 为该句折行后占用的视觉行数，小于 1 时按 1 计。
type PageLine struct {
	Phrase    int     `json:"phrase"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	NextStart float64 `json:"nextStart"`
	Rows      int     `json:"rows"`
}

func (l PageLine) rows() int { return max(l.Rows, 1) }

// Paginator 实现“累积后清屏”：新句追加到缓冲区末尾，占用的视觉行数超过上限时整页翻过，
// 只保留刚追加的一句。单独一句超过上限时照常显示，不再继续翻页。
type Paginator struct {
	maxLines int
	buf      []PageLine
	rows     int
	resets   int
}

// NewPaginator 创建翻页器，maxLines 小于 1 时按 1 处理。
func NewPaginator(maxLines int) *Paginator {
	if maxLines < 1 {
		maxLines = 1
	}
	return &Paginator{maxLines: maxLines}
}

// Push 追加一行，返回是否发生了翻页。
func (p *Paginator) Push(line PageLine) bool {
	if len(p.buf) == 0 || p.rows+line.rows() <= p.maxLines {
		p.buf = append(p.buf, line)
		p.rows += line.rows()
		return false
	}
	p.buf = []PageLine{line}
	p.rows = line.rows()
	p.resets++
	return true
}

// Lines 返回当前缓冲区的副本，最后一行即最新追加的一行。
func (p *Paginator) Lines() []PageLine {
	out := make([]PageLine, len(p.buf))
	copy(out, p.buf)
	return out
}

// Rows 返回当前页已占用的视觉行数。
func (p *Paginator) Rows() int { return p.rows }

// MaxLines 返回每页行数上限。
func (p *Paginator) MaxLines() int { return p.maxLines }

// Resets 返回已经翻页的次数。
func (p *Paginator) Resets() int { return p.resets }

// PageStep 是处理完一条字幕句后的页面快照。
type PageStep struct {
	Phrase int        `json:"phrase"`
	Reset  bool       `json:"reset"`
	Lines  []PageLine `json:"lines"`
	// Window 是该快照的显示区间：从本句开始到下一句开始（最后一句到视频结束）。
	Window Window `json:"window"`
}

// MaxLinesPerScreen 计算 floor(0.6×高度 / (字号×1.5))，至少为 1。
func MaxLinesPerScreen(g Geometry, fontSize float64) int {
	lh := BookLineSpacing.Apply(fontSize)
	if lh <= 0 {
		return 1
	}
	n := int(BookUsableHeight.Of(g.Height) / lh)
	if n < 1 {
		return 1
	}
	return n
}

// Paginate 依次把字幕句推入翻页器，返回每一步的页面快照。每句按一行计。
func Paginate(phrases []Phrase, maxLines int, duration float64) []PageStep {
	return PaginateRows(phrases, nil, maxLines, duration)
}

// PaginateRows 与 Paginate 相同，但 rows[i] 给出第 i 句折行后的行数，缺省按 1 行计。
func PaginateRows(phrases []Phrase, rows []int, maxLines int, duration float64) []PageStep {
	windows := LineWindows(phrases, duration)
	pg := NewPaginator(maxLines)
	steps := make([]PageStep, 0, len(phrases))
	for i, ph := range phrases {
		line := PageLine{
			Phrase:    i,
			Text:      ph.Text,
			Start:     ph.Start,
			End:       ph.End,
			NextStart: windows[i].End,
		}
		if i < len(rows) {
			line.Rows = rows[i]
		}
		reset := pg.Push(line)
		steps = append(steps, PageStep{
			Phrase: i,
			Reset:  reset,
			Lines:  pg.Lines(),
			Window: windows[i],
		})
	}
	return steps
}

func layoutBookPages(c *buildContext) ([]Fragment, error) {
	g, s := c.geometry, c.style
	lineHeight := BookLineSpacing.Apply(s.FontSize)
	baseX := BookOriginX.Of(g.Width)
	baseY := BookOriginY.Of(g.Height)
	maxWidth := BookWrapWidth.Of(g.Width)

	// 每句只折行一次，之后在各个快照中复用。
	wrapped := make([]Wrapped, len(c.phrases))
	rows := make([]int, len(c.phrases))
	for i, ph := range c.phrases {
		w, err := Wrap(c.measurer, ph.Text, maxWidth, s.Font, s.FontSize)
		if err != nil {
			return nil, err
		}
		wrapped[i] = w
		rows[i] = max(len(w.Lines), 1)
	}

	var out []Fragment
	for _, step := range PaginateRows(c.phrases, rows, MaxLinesPerScreen(g, s.FontSize), c.duration) {
		// 一句折成多行时，后续句向下顺延；翻页按视觉行计数，整页不会超出可用高度。
		row := 0
		for i, ln := range step.Lines {
			w := wrapped[ln.Phrase]
			fill := s.BookSecondary
			if i == len(step.Lines)-1 {
				fill = s.BookPrimary
			}
			out = append(out, Fragment{
				Kind:        KindSubtitle,
				Text:        w.Text,
				X:           baseX,
				Y:           baseY + float64(row)*lineHeight,
				Width:       w.Width,
				Height:      float64(rows[ln.Phrase]) * lineHeight,
				LineHeight:  lineHeight,
				FontSize:    s.FontSize,
				Fill:        fill,
				Stroke:      s.BookStroke,
				StrokeWidth: s.StrokeWidth,
				From:        step.Window.Start,
				Until:       step.Window.End,
			})
			row += rows[ln.Phrase]
		}
	}
	return out, nil
}
