package layout

import (
	"fmt"
	"math"
	"strings"
)

// buildContext 携带一次排版所需的全部输入，各主题策略只读不写。
type buildContext struct {
	theme    Theme
	title    string
	phrases  []Phrase
	geometry Geometry
	style    Style
	duration float64
	measurer Measurer
	workers  int
}

// Build 根据字幕句、标题、主题与样式生成排版结果。
// 返回的片段先是字幕片段，后是标题片段；空区间的片段会被丢弃。
func Build(phrases []Phrase, title string, theme Theme, geo Geometry, style Style, opts BuildOptions) (*Plan, error) {
	if !theme.Valid() {
		return nil, fmt.Errorf("layout: 未知主题 %d", int(theme))
	}
	if opts.Measurer == nil {
		return nil, errNoMeasurer
	}
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	if err := validateRegion("subtitle", style.Region); err != nil {
		return nil, err
	}
	if style.FontSize <= 0 {
		return nil, fmt.Errorf("layout: 字号必须为正数，当前 %g", style.FontSize)
	}

	kept, err := validatePhrases(phrases)
	if err != nil {
		return nil, err
	}

	c := &buildContext{
		theme:    theme,
		title:    title,
		phrases:  kept,
		geometry: geo,
		style:    style,
		duration: kept[len(kept)-1].End,
		measurer: opts.Measurer,
		workers:  opts.Workers,
	}

	if finite(opts.Duration) && opts.Duration > c.duration {
		c.duration = opts.Duration
	}

	subs, err := layoutSubtitles(c)
	if err != nil {
		return nil, fmt.Errorf("排版字幕失败: %w", err)
	}
	titles, err := layoutTitle(c)
	if err != nil {
		return nil, fmt.Errorf("排版标题失败: %w", err)
	}

	frags := make([]Fragment, 0, len(subs)+len(titles))
	for _, f := range append(subs, titles...) {
		if f.Until <= f.From {
			continue
		}
		frags = append(frags, f)
	}
	return &Plan{
		Width:     geo.Width,
		Height:    geo.Height,
		Duration:  c.duration,
		Theme:     theme,
		Fragments: frags,
	}, nil
}

// validatePhrases 检查时间轴并丢弃只含空白的字幕句。
// 时间轴要求 0 <= start < end，且 start 不早于上一条的 start。
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func validatePhrases(phrases []Phrase) ([]Phrase, error) {
	kept := make([]Phrase, 0, len(phrases))
	prevStart := math.Inf(-1)
	for i, p := range phrases {
		switch {
		case !finite(p.Start) || !finite(p.End):
			return nil, &InvalidTimingError{Index: i, Phrase: p, Reason: "时间戳不是有限数"}
		case p.Start < 0:
			return nil, &InvalidTimingError{Index: i, Phrase: p, Reason: "start 为负数"}
		case p.Start >= p.End:
			return nil, &InvalidTimingError{Index: i, Phrase: p, Reason: "start >= end"}
		case p.Start < prevStart:
			return nil, &InvalidTimingError{Index: i, Phrase: p, Reason: "start 早于上一条"}
		}
		prevStart = p.Start
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		kept = append(kept, Phrase{Start: p.Start, End: p.End, Text: text})
	}
	if len(kept) == 0 {
		return nil, ErrEmptyScript
	}
	return kept, nil
}
