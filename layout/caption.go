package layout

import "math"

// 横排字幕（cinema/minimal）：每句一个片段，不累积。
const (
	captionTop      Percent = 5
	captionBottom   Percent = 95
	captionBottom20 Percent = 80
)

// CaptionY 按位置策略计算高度为 blockHeight 的字幕块的顶部坐标。
// custom 取 (H-h)×p/100，并限制在距上下边缘 10px 的安全区内。
func CaptionY(g Geometry, pos Position, custom Percent, blockHeight float64) float64 {
	h := float64(g.Height)
	switch pos {
	case PositionTop:
		return captionTop.Of(g.Height)
	case PositionCenter:
		return (h - blockHeight) / 2
	case PositionBottom:
		return captionBottom.Of(g.Height) - blockHeight
	case PositionCustom:
		y := (h - blockHeight) * custom.Fraction()
		lo, hi := CaptionMargin, h-blockHeight-CaptionMargin
		if hi < lo {
			return math.Max(0, (h-blockHeight)/2)
		}
		return math.Min(math.Max(y, lo), hi)
	default:
		return captionBottom20.Of(g.Height) - blockHeight
	}
}

func layoutCaptions(c *buildContext) ([]Fragment, error) {
	g, s := c.geometry, c.style
	maxWidth := CaptionWrapWidth.Of(g.Width)
	dx := Percent(s.Offsets.SubtitleX).Of(g.Width)
	dy := Percent(s.Offsets.SubtitleY).Of(g.Height)

	out := make([]Fragment, 0, len(c.phrases))
	for _, ph := range c.phrases {
		w, err := Wrap(c.measurer, ph.Text, maxWidth, s.Font, s.FontSize)
		if err != nil {
			return nil, err
		}
		out = append(out, Fragment{
			Kind:        KindSubtitle,
			Text:        w.Text,
			Align:       AlignCenter,
			X:           (float64(g.Width)-w.Width)/2 + dx,
			Y:           CaptionY(g, s.Position, s.CustomPosition, w.Height) + dy,
			Width:       w.Width,
			Height:      w.Height,
			LineHeight:  w.LineHeight,
			FontSize:    s.FontSize,
			Fill:        s.TextColor,
			Stroke:      s.StrokeColor,
			StrokeWidth: s.StrokeWidth,
			From:        ph.Start,
			Until:       ph.End,
		})
	}
	return out, nil
}
