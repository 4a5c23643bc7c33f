package layout

import (
	"math"
	"strings"
)

var (
	titleBlack = Color{}
	titleWhite = Color{R: 255, G: 255, B: 255}
)

// horizontalTitle 描述一个横排标题块的摆放方式。
type horizontalTitle struct {
	scale       Multiplier
	strokeScale Multiplier
	fill        Color
	stroke      Color
	// top 为 nil 时垂直居中
	top   *Percent
	until float64
}

func (c *buildContext) placeTitle(h horizontalTitle) ([]Fragment, error) {
	g, s := c.geometry, c.style
	size := h.scale.Apply(s.FontSize)
	w, err := Wrap(c.measurer, strings.TrimSpace(c.title), TitleWrapWidth.Of(g.Width), s.Font, size)
	if err != nil {
		return nil, err
	}

	centerX := float64(g.Width) / 2
	var y float64
	if h.top != nil {
		y = h.top.Of(g.Height)
	} else {
		y = (float64(g.Height) - w.Height) / 2
	}
	if a := s.TitleAnchor; a != nil {
		centerX = Percent(a.X).Of(g.Width)
		if a.Y != 0 {
			y = Percent(a.Y).Of(g.Height)
		}
	}
	centerX += Percent(s.Offsets.TitleX).Of(g.Width)
	y += Percent(s.Offsets.TitleY).Of(g.Height)

	return []Fragment{{
		Kind:        KindTitle,
		Text:        w.Text,
		Align:       AlignCenter,
		X:           centerX - w.Width/2,
		Y:           y,
		Width:       w.Width,
		Height:      w.Height,
		LineHeight:  w.LineHeight,
		FontSize:    size,
		Fill:        h.fill,
		Stroke:      h.stroke,
		StrokeWidth: h.strokeScale.Apply(s.StrokeWidth),
		From:        0,
		Until:       h.until,
	}}, nil
}

// bookTitle：顶部居中，黑字白边，全程显示。
func bookTitle(c *buildContext) ([]Fragment, error) {
	top := BookTitleY
	return c.placeTitle(horizontalTitle{
		scale:       BookTitleScale,
		strokeScale: 1,
		fill:        titleBlack,
		stroke:      titleWhite,
		top:         &top,
		until:       c.duration,
	})
}

// cinemaTitle：全屏居中的大标题，只在开头显示 3 秒。
func cinemaTitle(c *buildContext) ([]Fragment, error) {
	return c.placeTitle(horizontalTitle{
		scale:       CinemaTitleScale,
		strokeScale: CinemaTitleStrokeScale,
		fill:        c.style.TextColor,
		stroke:      c.style.StrokeColor,
		until:       math.Min(CinemaTitleSeconds, c.duration),
	})
}

// minimalTitle：顶部居中，全程显示。
func minimalTitle(c *buildContext) ([]Fragment, error) {
	top := MinimalTitleY
	return c.placeTitle(horizontalTitle{
		scale:       MinimalTitleScale,
		strokeScale: 1,
		fill:        c.style.TextColor,
		stroke:      c.style.StrokeColor,
		top:         &top,
		until:       c.duration,
	})
}

// scrollTitle 把标题拆成单字竖排在右侧，整体垂直居中，全程显示。
func scrollTitle(c *buildContext) ([]Fragment, error) {
	g, s := c.geometry, c.style
	chars := SplitCharacters(strings.TrimSpace(c.title))
	size := ScrollTitleScale.Apply(s.FontSize)
	spacing := ScrollTitleSpacing.Apply(size)
	total := float64(len(chars)) * spacing

	xPct := ScrollTitleX
	y0 := (float64(g.Height) - total) / 2
	if a := s.TitleAnchor; a != nil {
		xPct = Percent(a.X)
		if a.Y != 0 {
			y0 = Percent(a.Y).Of(g.Height)
		}
	}
	x := (xPct + Percent(s.Offsets.TitleX)).Of(g.Width)
	y0 += Percent(s.Offsets.TitleY).Of(g.Height)

	out := make([]Fragment, 0, len(chars))
	for i, ch := range chars {
		if strings.TrimSpace(ch) == "" {
			continue
		}
		out = append(out, Fragment{
			Kind:        KindTitle,
			Text:        ch,
			X:           x,
			Y:           y0 + float64(i)*spacing,
			Width:       size,
			Height:      size,
			LineHeight:  spacing,
			FontSize:    size,
			Fill:        s.Palette.Title.Fill,
			Stroke:      s.Palette.Title.Stroke,
			StrokeWidth: TitleStrokeScale.Apply(s.StrokeWidth),
			From:        0,
			Until:       c.duration,
		})
	}
	return out, nil
}
